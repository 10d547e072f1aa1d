package commands

import (
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/wrenlabs/clawgate/pkg/clawgate/gate"
	"github.com/wrenlabs/clawgate/pkg/clawgate/gateconfig"
)

func newConfigCmd() *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect approval-gate configuration",
	}
	configCmd.AddCommand(newConfigValidateCmd())
	return configCmd
}

func newConfigValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <path>",
		Short: "Load a config file and print the resulting category table and allowlist counts",
		Long: `validate loads path the same way the engine does at process start:
warnings for unreadable files, malformed documents, or unknown values
are logged rather than failing the command, since the engine itself
never fails open on a bad config.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := gate.NewConfig()
			gateconfig.LoadFile(cfg, args[0], slog.Default())

			fmt.Fprintf(cmd.OutOrStdout(), "master_enable=%t\n", cfg.MasterEnable)
			for _, cat := range []gate.Category{
				gate.CategoryFileRead, gate.CategoryFileWrite, gate.CategoryShell,
				gate.CategoryNetwork, gate.CategoryMemory, gate.CategorySubagent,
				gate.CategoryMCP, gate.CategoryPythonDynamic,
			} {
				fmt.Fprintf(cmd.OutOrStdout(), "category=%s action=%s\n", cat, cfg.Categories[cat])
			}
			fmt.Fprintf(cmd.OutOrStdout(), "shell_allowlist_entries=%d\n", len(cfg.ShellAllowlist))
			fmt.Fprintf(cmd.OutOrStdout(), "regex_allowlist_entries=%d\n", len(cfg.RegexAllowlist))
			return nil
		},
	}
}
