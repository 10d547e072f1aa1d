package commands

import (
	"fmt"
	"os"
	"os/exec"
	"time"

	"github.com/spf13/cobra"

	"github.com/wrenlabs/clawgate/pkg/clawgate/prompt"
	"github.com/wrenlabs/clawgate/pkg/clawgate/subagent"
)

// pollInterval is how often runRelay's poll loop checks the
// subagent's request pipe once the child process is running.
const pollInterval = 20 * time.Millisecond

func newRelayCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "relay -- <program> [args...]",
		Short: "Spawn a subagent and answer its approval requests on this terminal",
		Long: `relay spawns program as a child process wired with the approval-proxy
pipes described by the subagent package: the child asks for approval over
a pair of pipes instead of owning a terminal of its own, and relay answers
those requests by running the interactive prompt here, on the parent's
own TTY, exactly as a root process would for its own tool calls.`,
		Args: cobra.MinimumNArgs(1),
		RunE: runRelay,
	}
	return cmd
}

func runRelay(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd)
	if err != nil {
		return err
	}
	prompter := prompt.NewTerminalPrompter(os.Stdin, os.Stderr)

	child := exec.Command(args[0], args[1:]...)
	child.Stdin = os.Stdin
	child.Stdout = os.Stdout
	child.Stderr = os.Stderr

	parentCh, err := subagent.Prepare(child)
	if err != nil {
		return fmt.Errorf("clawgate: preparing subagent channel: %w", err)
	}

	if err := child.Start(); err != nil {
		return fmt.Errorf("clawgate: starting subagent: %w", err)
	}
	parentCh.Release()
	parentCh.ChildPID = child.Process.Pid

	mux := subagent.NewMultiplexer(cfg, prompter)
	mux.Register(parentCh)

	done := make(chan error, 1)
	go func() { done <- child.Wait() }()

	var waitErr error
	polling := true
	for polling {
		select {
		case waitErr = <-done:
			polling = false
		case <-time.After(pollInterval):
			mux.PollOnce()
		}
	}
	// Drain any request the subagent sent just before exiting.
	mux.PollOnce()
	mux.Unregister(parentCh)
	parentCh.CloseParentEnds()

	if waitErr != nil {
		if exitErr, ok := waitErr.(*exec.ExitError); ok {
			os.Exit(exitErr.ExitCode())
		}
		return fmt.Errorf("clawgate: subagent exited: %w", waitErr)
	}
	return nil
}
