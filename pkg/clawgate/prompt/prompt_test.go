package prompt

import (
	"bufio"
	"bytes"
	"os"
	"strings"
	"testing"

	"github.com/wrenlabs/clawgate/pkg/clawgate/gate"
)

func TestRunPromptLoop_Allow(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("y"))
	outcome := runPromptLoop(r, &out, nil, nil)
	if outcome != gate.Allowed {
		t.Errorf("outcome = %v, want Allowed", outcome)
	}
}

func TestRunPromptLoop_Deny(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("n"))
	outcome := runPromptLoop(r, &out, nil, nil)
	if outcome != gate.Denied {
		t.Errorf("outcome = %v, want Denied", outcome)
	}
}

func TestRunPromptLoop_AllowAlways(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("a"))
	outcome := runPromptLoop(r, &out, nil, nil)
	if outcome != gate.AllowedAlways {
		t.Errorf("outcome = %v, want AllowedAlways", outcome)
	}
}

func TestRunPromptLoop_DetailThenReprompt(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("?y"))
	called := 0
	describe := func() string { called++; return "detail text" }
	outcome := runPromptLoop(r, &out, nil, describe)
	if outcome != gate.Allowed {
		t.Errorf("outcome = %v, want Allowed after detail", outcome)
	}
	if called != 1 {
		t.Errorf("describe called %d times, want 1", called)
	}
	if !strings.Contains(out.String(), "detail text") {
		t.Error("expected detail text to be printed")
	}
}

func TestRunPromptLoop_UnknownKeyReprompts(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader("zn"))
	outcome := runPromptLoop(r, &out, nil, nil)
	if outcome != gate.Denied {
		t.Errorf("outcome = %v, want Denied after ignoring unknown key", outcome)
	}
}

func TestRunPromptLoop_EOFAborts(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	r := bufio.NewReader(strings.NewReader(""))
	outcome := runPromptLoop(r, &out, nil, nil)
	if outcome != gate.Aborted {
		t.Errorf("outcome = %v, want Aborted on EOF", outcome)
	}
}

func TestRunPromptLoop_InterruptAborts(t *testing.T) {
	t.Parallel()
	var out bytes.Buffer
	interrupted := make(chan os.Signal, 1)
	interrupted <- os.Interrupt

	// A reader that never yields a byte, so the interrupt channel must
	// be what resolves the select.
	r := bufio.NewReader(blockingReader{})
	outcome := runPromptLoop(r, &out, interrupted, nil)
	if outcome != gate.Aborted {
		t.Errorf("outcome = %v, want Aborted on interrupt", outcome)
	}
}

type blockingReader struct{}

func (blockingReader) Read(p []byte) (int, error) {
	select {}
}

func TestPrompt_NoTTYAborts(t *testing.T) {
	t.Parallel()
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("Pipe: %v", err)
	}
	defer r.Close()
	defer w.Close()

	p := NewTerminalPrompter(r, &bytes.Buffer{})
	call := gate.ToolCall{Name: "shell"}
	outcome, err := p.Prompt(call, gate.CategoryShell)
	if err != nil {
		t.Fatalf("Prompt: %v", err)
	}
	if outcome != gate.Aborted {
		t.Errorf("outcome = %v, want Aborted (pipe is not a tty)", outcome)
	}
}
