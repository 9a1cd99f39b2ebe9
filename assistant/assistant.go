// Package assistant drives the external assistant CLI: one-shot
// instructions against a workspace and the session-listing subcommand.
package assistant

import (
	"context"
	"strings"
)

// DefaultCommand launches the assistant through npx.
var DefaultCommand = []string{"npx", "@augmentcode/auggie"}

type Mode int

const (
	ModeFresh Mode = iota
	ModeContinue
	ModeResume
)

func (m Mode) String() string {
	switch m {
	case ModeContinue:
		return "continue"
	case ModeResume:
		return "resume"
	default:
		return "fresh"
	}
}

type Request struct {
	Instruction string
	Workspace   string
	Mode        Mode
	SessionID   string // only read for ModeResume
}

// Result is the outcome of one invocation. A failed run is not an
// error: its Diagnostic is spoken like any other reply.
type Result struct {
	OK         bool
	Output     string
	Diagnostic string
}

func (r Result) Text() string {
	if r.OK {
		return r.Output
	}
	return "Error: " + r.Diagnostic
}

type Client interface {
	Run(ctx context.Context, req Request) Result
	// LatestSession returns the most recently created session id.
	// Absence covers every failure.
	LatestSession(ctx context.Context) (string, bool)
}

// NewRequest picks the mode from what the caller knows about the
// conversation: a known id resumes it, otherwise continuing attaches to
// the latest one.
func NewRequest(instruction, workspace, sessionID string, continuing bool) Request {
	req := Request{Instruction: instruction, Workspace: workspace}
	switch {
	case sessionID != "":
		req.Mode = ModeResume
		req.SessionID = sessionID
	case continuing:
		req.Mode = ModeContinue
	}
	return req
}

// ShortID is the prefix accepted by the assistant's -r flag.
func ShortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}

func trimOutput(b []byte) string {
	return strings.TrimSpace(string(b))
}
