package commands

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/wrenlabs/clawgate/pkg/clawgate/gate"
)

func newAllowCmd() *cobra.Command {
	allowCmd := &cobra.Command{
		Use:   "allow",
		Short: "Inspect and dry-run the session allowlist",
	}
	allowCmd.AddCommand(newAllowListCmd(), newAllowTestCmd())
	return allowCmd
}

func newAllowListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "Print the resolved allowlist for this process",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}
			for _, e := range cfg.ShellAllowlist {
				fmt.Fprintf(cmd.OutOrStdout(), "shell_prefix\tdialect=%s\t%v\n", e.Dialect, e.Prefix)
			}
			for _, e := range cfg.RegexAllowlist {
				fmt.Fprintf(cmd.OutOrStdout(), "regex\ttool=%s\t%s\n", e.Tool, e.Source)
			}
			return nil
		},
	}
}

func newAllowTestCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "test <tool> <args-json>",
		Short: "Dry-run the evaluator for one tool call without prompting",
		Long: `test resolves category, allowlist, and rate-limit state for a tool
call exactly as run does, but never prompts: a call that would reach
the interactive prompt reports Aborted, since this process has no
Prompter wired in.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := buildConfig(cmd)
			if err != nil {
				return err
			}

			tool, argsJSON := args[0], args[1]
			if !json.Valid([]byte(argsJSON)) {
				return fmt.Errorf("clawgate: arguments is not valid JSON: %q", argsJSON)
			}

			result := cfg.Evaluate(gate.ToolCall{Name: tool, Arguments: json.RawMessage(argsJSON)})
			fmt.Fprintf(cmd.OutOrStdout(), "outcome=%s category=%s\n", result.Outcome, result.Category)
			return nil
		},
	}
}
