package subagent

import (
	"bufio"
	"bytes"
	"testing"
)

func TestWriteReadMessage_RoundTrip(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	req := Request{ToolName: "shell", ArgumentsJSON: `{"command":"ls"}`, DisplaySummary: "run: ls", RequestID: 7}
	if err := writeMessage(&buf, req); err != nil {
		t.Fatalf("writeMessage: %v", err)
	}

	if b := buf.Bytes(); len(b) == 0 || b[len(b)-1] != 0 {
		t.Fatal("expected a trailing null byte")
	}

	var got Request
	if err := readMessage(bufio.NewReader(&buf), &got); err != nil {
		t.Fatalf("readMessage: %v", err)
	}
	if got != req {
		t.Errorf("got %+v, want %+v", got, req)
	}
}

func TestWriteReadMessage_MultipleInSequence(t *testing.T) {
	t.Parallel()
	var buf bytes.Buffer
	writeMessage(&buf, Response{RequestID: 1, Result: "allowed"})
	writeMessage(&buf, Response{RequestID: 2, Result: "denied"})

	r := bufio.NewReader(&buf)
	var a, b Response
	if err := readMessage(r, &a); err != nil {
		t.Fatalf("readMessage 1: %v", err)
	}
	if err := readMessage(r, &b); err != nil {
		t.Fatalf("readMessage 2: %v", err)
	}
	if a.RequestID != 1 || b.RequestID != 2 {
		t.Errorf("got ids %d, %d", a.RequestID, b.RequestID)
	}
}
