// Package prompt implements the interactive four-choice approval
// prompt: the only place in the engine that reads a keystroke
// from the controlling terminal.
package prompt

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/google/uuid"
	"golang.org/x/term"

	"github.com/wrenlabs/clawgate/pkg/clawgate/gate"
)

// TerminalPrompter implements gate.Prompter against the process's own
// controlling terminal. It must never be shared across processes —
// only the root process constructs one.
type TerminalPrompter struct {
	in  *os.File
	out io.Writer

	// Describe renders the human-readable detail shown for "?".
	// NewTerminalPrompter sets it to defaultDescribe; callers may replace it.
	Describe func(call gate.ToolCall, category gate.Category) string
}

// NewTerminalPrompter builds a prompter reading from in (normally
// os.Stdin) and writing prompt text to out (normally os.Stderr, so it
// doesn't interleave with a tool's stdout).
func NewTerminalPrompter(in *os.File, out io.Writer) *TerminalPrompter {
	return &TerminalPrompter{in: in, out: out, Describe: defaultDescribe}
}

func defaultDescribe(call gate.ToolCall, category gate.Category) string {
	return fmt.Sprintf("tool=%s category=%s arguments=%s", call.Name, category, call.Arguments)
}

// Prompt implements gate.Prompter. Each call gets its own correlation
// id, used only for log correlation — it has no protocol meaning.
func (p *TerminalPrompter) Prompt(call gate.ToolCall, category gate.Category) (gate.Outcome, error) {
	correlationID := uuid.New().String()
	fmt.Fprintf(p.out, "[%s] approval requested: %s (%s)\n", correlationID, call.Name, category)

	oldState, err := term.MakeRaw(int(p.in.Fd()))
	if err != nil {
		// No controllable terminal (e.g. stdin redirected from a
		// file): there is no one to answer, so this is Aborted, never
		// a silent allow.
		return gate.Aborted, nil
	}
	defer term.Restore(int(p.in.Fd()), oldState)

	interrupted := make(chan os.Signal, 1)
	signal.Notify(interrupted, interruptSignals()...)
	defer signal.Stop(interrupted)

	describe := func() string { return p.Describe(call, category) }
	return runPromptLoop(bufio.NewReader(p.in), p.out, interrupted, describe), nil
}

// runPromptLoop is the protocol itself, independent of raw-mode setup
// and signal wiring, so it can be exercised without a real terminal.
// '?' is handled iteratively: it prints detail and loops back to the
// same read, never recursing.
func runPromptLoop(r *bufio.Reader, out io.Writer, interrupted <-chan os.Signal, describe func() string) gate.Outcome {
	for {
		fmt.Fprint(out, "approve? [y/n/a/?] ")

		key, aborted := readKey(r, interrupted)
		if aborted {
			fmt.Fprintln(out)
			return gate.Aborted
		}

		switch key {
		case 'y', 'Y':
			fmt.Fprintln(out, "y")
			return gate.Allowed
		case 'n', 'N':
			fmt.Fprintln(out, "n")
			return gate.Denied
		case 'a', 'A':
			fmt.Fprintln(out, "a")
			return gate.AllowedAlways
		case '?':
			fmt.Fprintln(out, "?")
			fmt.Fprintln(out, describe())
			continue
		default:
			// Anything else re-prompts without consuming a protocol
			// choice — no feedback beyond the prompt reappearing.
			continue
		}
	}
}

// readKey reads one byte, returning (0, true) if an interrupt signal
// or EOF arrives first. No signal-unsafe work happens from the signal
// handler itself — the channel receive does the work on this goroutine.
func readKey(r *bufio.Reader, interrupted <-chan os.Signal) (byte, bool) {
	type result struct {
		b   byte
		err error
	}
	done := make(chan result, 1)
	go func() {
		b, err := r.ReadByte()
		done <- result{b, err}
	}()

	select {
	case <-interrupted:
		return 0, true
	case res := <-done:
		if res.err != nil {
			return 0, true
		}
		return res.b, false
	}
}
