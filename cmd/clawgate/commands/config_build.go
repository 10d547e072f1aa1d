package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wrenlabs/clawgate/pkg/clawgate/gate"
	"github.com/wrenlabs/clawgate/pkg/clawgate/gateconfig"
)

// buildConfig assembles a *gate.Config from the persistent flags on
// cmd, in order: built-in defaults, then config file, then CLI
// overrides.
func buildConfig(cmd *cobra.Command) (*gate.Config, error) {
	cfg := gate.NewConfig()

	path, _ := cmd.Flags().GetString("config")
	if path != "" {
		gateconfig.LoadFile(cfg, path, slog.Default())
	}

	categories, _ := cmd.Flags().GetStringArray("allow-category")
	if err := gateconfig.ApplyAllowCategoryFlags(cfg, categories); err != nil {
		return nil, fmt.Errorf("clawgate: %w", err)
	}

	allows, _ := cmd.Flags().GetStringArray("allow")
	if err := gateconfig.ApplyAllowFlags(cfg, allows); err != nil {
		return nil, fmt.Errorf("clawgate: %w", err)
	}

	yolo, _ := cmd.Flags().GetBool("yolo")
	gateconfig.ApplyYolo(cfg, yolo)

	dialect, _ := cmd.Flags().GetString("dialect")
	if err := gateconfig.ApplyDialectFlag(cfg, dialect); err != nil {
		return nil, fmt.Errorf("clawgate: %w", err)
	}

	return cfg, nil
}
