// Package subagent implements the approval proxy a worker process uses
// to ask its parent to run the interactive prompt on its behalf: only
// the root process owns a terminal, so a subagent that needs a
// decision from the user serialises the request across a pipe instead
// of prompting directly.
package subagent

import (
	"bufio"
	"os"
	"os/exec"
)

// ParentChannel is the parent process's end of one subagent's approval
// channel: it reads requests and writes responses. The read end is put
// in non-blocking mode via a short per-poll deadline rather than true
// O_NONBLOCK, since that's what *os.File exposes portably.
type ParentChannel struct {
	ChildPID int

	reqRead   *os.File
	respWrite *os.File

	// childReqWrite/childRespRead are the parent's own copies of the
	// descriptors handed to the child via ExtraFiles; Release closes
	// them once the child holds its own.
	childReqWrite *os.File
	childRespRead *os.File
}

// ChildChannel is the subagent's end: it writes requests and reads
// responses.
type ChildChannel struct {
	reqWrite *os.File
	respRead *os.File
	respBuf  *bufio.Reader

	nextID uint64 // monotone per process; not thread-safe by design
}

// childRequestFD and childResponseFD are the ExtraFiles slots the
// subagent binary expects its ends of the channel on, i.e. fd 3 and 4
// once exec.Cmd's stdin/stdout/stderr occupy 0-2.
const (
	childRequestFD  = 3
	childResponseFD = 4
)

// Prepare creates the pipe pair for a not-yet-spawned subagent and
// arranges cmd's ExtraFiles so the child inherits its two ends at
// childRequestFD/childResponseFD. The caller must call Release on the
// returned ParentChannel after cmd has been started, to close the
// parent's copies of the child's inherited descriptors.
func Prepare(cmd *exec.Cmd) (*ParentChannel, error) {
	reqRead, reqWrite, err := os.Pipe()
	if err != nil {
		return nil, err
	}
	respRead, respWrite, err := os.Pipe()
	if err != nil {
		reqRead.Close()
		reqWrite.Close()
		return nil, err
	}

	cmd.ExtraFiles = append(cmd.ExtraFiles, reqWrite, respRead)
	return &ParentChannel{
		reqRead:       reqRead,
		respWrite:     respWrite,
		childReqWrite: reqWrite,
		childRespRead: respRead,
	}, nil
}

// Release closes the parent's copies of the descriptors it handed to
// the child. Call once after cmd.Start() returns.
func (p *ParentChannel) Release() {
	if p.childReqWrite != nil {
		p.childReqWrite.Close()
	}
	if p.childRespRead != nil {
		p.childRespRead.Close()
	}
}

// NewChildChannel constructs the subagent's own end of the channel
// from the well-known inherited file descriptors. Call this once, early,
// from the subagent binary's entry point.
func NewChildChannel() *ChildChannel {
	return &ChildChannel{
		reqWrite: os.NewFile(childRequestFD, "subagent-request"),
		respRead: os.NewFile(childResponseFD, "subagent-response"),
	}
}

// NewChannelPair creates an in-memory pipe pair for same-process tests,
// without an exec.Cmd in the picture.
func NewChannelPair() (*ParentChannel, *ChildChannel, error) {
	reqRead, reqWrite, err := os.Pipe()
	if err != nil {
		return nil, nil, err
	}
	respRead, respWrite, err := os.Pipe()
	if err != nil {
		reqRead.Close()
		reqWrite.Close()
		return nil, nil, err
	}

	parent := &ParentChannel{reqRead: reqRead, respWrite: respWrite}
	child := &ChildChannel{reqWrite: reqWrite, respRead: respRead}
	return parent, child, nil
}

// CloseParentEnds closes the parent's held file descriptors. Call once
// the subagent has exited.
func (p *ParentChannel) CloseParentEnds() {
	p.reqRead.Close()
	p.respWrite.Close()
}

// CloseChildEnds closes the subagent's held file descriptors. Call at
// subagent process exit.
func (c *ChildChannel) CloseChildEnds() {
	c.reqWrite.Close()
	c.respRead.Close()
}
