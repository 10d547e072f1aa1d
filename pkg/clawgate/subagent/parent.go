package subagent

import (
	"bufio"
	"encoding/json"
	"runtime"
	"time"

	"github.com/wrenlabs/clawgate/pkg/clawgate/gate"
)

// pollSubTimeout bounds how long one channel's read attempt blocks
// before the multiplexer moves on to the next, so new channels (and a
// shutdown request) are noticed within about 100ms.
const pollSubTimeout = 100 * time.Millisecond

// Multiplexer polls every registered subagent's request pipe and
// answers readable requests by running the interactive prompt on the
// single TTY the parent process owns.
type Multiplexer struct {
	cfg      *gate.Config
	prompter gate.Prompter
	channels []*ParentChannel
	bufs     map[*ParentChannel]*bufio.Reader
}

// NewMultiplexer builds a multiplexer that prompts via prompter and
// applies allow-always responses to cfg — the parent's own config, the
// only copy that persists across the process's lifetime.
func NewMultiplexer(cfg *gate.Config, prompter gate.Prompter) *Multiplexer {
	return &Multiplexer{
		cfg:      cfg,
		prompter: prompter,
		bufs:     make(map[*ParentChannel]*bufio.Reader),
	}
}

// Register adds a subagent's channel to the poll set.
func (m *Multiplexer) Register(ch *ParentChannel) {
	m.channels = append(m.channels, ch)
	m.bufs[ch] = bufio.NewReader(ch.reqRead)
}

// Unregister removes a subagent's channel, e.g. once it has exited.
func (m *Multiplexer) Unregister(ch *ParentChannel) {
	delete(m.bufs, ch)
	for i, c := range m.channels {
		if c == ch {
			m.channels = append(m.channels[:i], m.channels[i+1:]...)
			break
		}
	}
}

// PollOnce sweeps every registered channel once, servicing at most one
// readable request per channel, and reports whether any request was
// serviced. Callers loop on this (typically from the same goroutine
// that also drives everything else in the single-threaded core).
func (m *Multiplexer) PollOnce() bool {
	serviced := false
	for _, ch := range m.channels {
		if m.tryService(ch) {
			serviced = true
		}
	}
	return serviced
}

func (m *Multiplexer) tryService(ch *ParentChannel) bool {
	ch.reqRead.SetReadDeadline(time.Now().Add(pollSubTimeout))
	defer ch.reqRead.SetReadDeadline(time.Time{})

	var req Request
	if err := readMessage(m.bufs[ch], &req); err != nil {
		return false
	}

	resp := m.handle(req)
	writeMessage(ch.respWrite, resp)
	return true
}

func (m *Multiplexer) handle(req Request) Response {
	call := gate.ToolCall{
		Name:      req.ToolName,
		Arguments: json.RawMessage(req.ArgumentsJSON),
	}
	category := m.cfg.ResolveCategory(call)

	if m.prompter == nil {
		return Response{RequestID: req.RequestID, Result: string(gate.Aborted)}
	}
	outcome, err := m.prompter.Prompt(call, category)
	if err != nil {
		outcome = gate.Aborted
	}

	resp := Response{RequestID: req.RequestID, Result: string(outcome)}
	if outcome == gate.AllowedAlways {
		resp.Pattern = m.cfg.ApplyAllowAlways(call, category, runtime.GOOS)
	}
	return resp
}
