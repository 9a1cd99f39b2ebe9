package assistant

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"time"

	"github.com/bytedance/sonic"

	"voicechat/log"
)

type CLI struct {
	Command []string

	command func(ctx context.Context, name string, args ...string) *exec.Cmd
}

func NewCLI(command []string) *CLI {
	if len(command) == 0 {
		command = DefaultCommand
	}
	return &CLI{Command: command, command: exec.CommandContext}
}

// Args is the argument list for req, launcher excluded.
func (c *CLI) Args(req Request) []string {
	args := []string{
		"-i", req.Instruction,
		"-w", req.Workspace,
		"--print",
		"--quiet",
	}
	switch req.Mode {
	case ModeResume:
		args = append(args, "--resume", req.SessionID)
	case ModeContinue:
		args = append(args, "--continue")
	}
	return args
}

func (c *CLI) cmd(ctx context.Context, args ...string) *exec.Cmd {
	full := append(append([]string{}, c.Command[1:]...), args...)
	return c.command(ctx, c.Command[0], full...)
}

func (c *CLI) Run(ctx context.Context, req Request) Result {
	cmd := c.cmd(ctx, c.Args(req)...)
	cmd.Dir = req.Workspace
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	elapsed := time.Since(start)

	var res Result
	switch {
	case err == nil:
		res = Result{OK: true, Output: trimOutput(stdout.Bytes())}
	case stderr.Len() > 0:
		res = Result{Diagnostic: stderr.String()}
	default:
		res = Result{Diagnostic: describe(err)}
	}
	log.Dispatch(req.Mode.String(), req.SessionID, res.OK, elapsed)
	if !res.OK {
		log.Warnf("assistant failed: %v", err)
	}
	return res
}

func describe(err error) string {
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		return fmt.Sprintf("assistant exited with status %d", exitErr.ExitCode())
	}
	return err.Error()
}

type sessionRecord struct {
	ID string `json:"id"`
}

func (c *CLI) LatestSession(ctx context.Context) (string, bool) {
	cmd := c.cmd(ctx, "session", "list", "--json")
	out, err := cmd.Output()
	if err != nil {
		log.Warnf("session list: %v", err)
		return "", false
	}
	return parseLatest(out)
}

func parseLatest(out []byte) (string, bool) {
	out = bytes.TrimSpace(out)
	if len(out) == 0 {
		return "", false
	}
	var sessions []sessionRecord
	if err := sonic.Unmarshal(out, &sessions); err != nil {
		log.Warnf("session list: malformed output: %v", err)
		return "", false
	}
	if len(sessions) == 0 || sessions[0].ID == "" {
		return "", false
	}
	return sessions[0].ID, true
}
