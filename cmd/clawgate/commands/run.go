package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/wrenlabs/clawgate/pkg/clawgate/gate"
	"github.com/wrenlabs/clawgate/pkg/clawgate/prompt"
)

// runRequest is the stdin payload for `clawgate run`: the tool call to
// evaluate.
type runRequest struct {
	Name      string          `json:"name"`
	Arguments json.RawMessage `json:"arguments"`
}

func newRunCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "run",
		Short: "Evaluate one tool call read as JSON from stdin",
		Long: `run reads a single {"name":..., "arguments":...} JSON object from
stdin, evaluates it against the approval gate, prompting on this
process's own terminal if the policy requires confirmation, and prints
the outcome as JSON to stdout.`,
		RunE: runRun,
	}
}

func runRun(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	cfg.Prompter = prompt.NewTerminalPrompter(os.Stdin, os.Stderr)

	raw, err := io.ReadAll(cmd.InOrStdin())
	if err != nil {
		return fmt.Errorf("clawgate: reading stdin: %w", err)
	}
	var req runRequest
	if err := json.Unmarshal(raw, &req); err != nil {
		return fmt.Errorf("clawgate: stdin is not a valid tool call: %w", err)
	}

	result := cfg.Evaluate(gate.ToolCall{Name: req.Name, Arguments: req.Arguments})

	out, err := json.Marshal(map[string]any{
		"outcome":     result.Outcome,
		"category":    result.Category,
		"retry_after": result.RetryAfter.String(),
	})
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(out))

	switch result.Outcome {
	case gate.Denied, gate.RateLimited, gate.Aborted:
		os.Exit(1)
	}
	return nil
}
