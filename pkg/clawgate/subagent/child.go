package subagent

import (
	"bufio"
	"time"

	"github.com/wrenlabs/clawgate/pkg/clawgate/gate"
)

// responseDeadline bounds how long the child waits for the parent to
// answer one request. A var so tests can shrink it.
var responseDeadline = 5 * time.Minute

// RequestApproval asks the parent process to run the interactive
// prompt on this subagent's behalf. Requests from one ChildChannel are
// always serialised — there is at most one request in flight, matching
// the single in-flight request per subagent the proxy assumes. Any IPC
// failure, deadline, or request_id mismatch fails closed to Denied.
func (c *ChildChannel) RequestApproval(call gate.ToolCall, displaySummary string) (gate.Outcome, string) {
	c.nextID++
	id := c.nextID

	req := Request{
		ToolName:       call.Name,
		ArgumentsJSON:  string(call.Arguments),
		DisplaySummary: displaySummary,
		RequestID:      id,
	}
	if err := writeMessage(c.reqWrite, req); err != nil {
		return gate.Denied, ""
	}

	c.respRead.SetReadDeadline(time.Now().Add(responseDeadline))
	defer c.respRead.SetReadDeadline(time.Time{})

	if c.respBuf == nil {
		c.respBuf = bufio.NewReader(c.respRead)
	}
	var resp Response
	if err := readMessage(c.respBuf, &resp); err != nil {
		return gate.Denied, ""
	}
	if resp.RequestID != id {
		return gate.Denied, ""
	}

	outcome := gate.Outcome(resp.Result)
	switch outcome {
	case gate.Allowed, gate.AllowedAlways, gate.Denied, gate.Aborted, gate.RateLimited:
		return outcome, resp.Pattern
	default:
		return gate.Denied, ""
	}
}
