// Package commands implements the clawgate CLI's cobra command tree.
package commands

import (
	"github.com/spf13/cobra"
)

// NewRootCmd builds the root command with every subcommand registered.
func NewRootCmd(version string) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:     "clawgate",
		Short:   "Approval-gate policy engine for AI-assistant tool calls",
		Version: version,
		Long: `clawgate decides whether a model-proposed tool call may run,
must be confirmed interactively, or is refused outright.

Examples:
  echo '{"name":"shell","arguments":{"command":"git status"}}' | clawgate run
  clawgate allow list --config ./clawgate.yaml
  clawgate config validate ./clawgate.yaml
  clawgate relay -- ./my-subagent-worker`,
	}

	rootCmd.AddCommand(
		newRunCmd(),
		newAllowCmd(),
		newConfigCmd(),
		newRelayCmd(),
	)

	rootCmd.PersistentFlags().StringP("config", "c", "", "path to the approval-gate config file")
	rootCmd.PersistentFlags().Bool("yolo", false, "disable the approval gate for this process")
	rootCmd.PersistentFlags().StringArray("allow", nil, "repeatable session allowlist entry, <tool>:<spec>")
	rootCmd.PersistentFlags().StringArray("allow-category", nil, "repeatable category to force-allow for this process")
	rootCmd.PersistentFlags().String("dialect", "", "override shell dialect auto-detection (posix, cmd, powershell)")

	return rootCmd
}
