package speech

import (
	"context"
	"fmt"
	"os/exec"
	"strconv"
)

// DefaultRate is the speaking rate in words per minute.
const DefaultRate = 180

type Speaker interface {
	Say(ctx context.Context, text string) error
}

// System speaks through the platform synthesizer and blocks until the
// utterance finishes.
type System struct {
	Rate int

	lookPath func(string) (string, error)
	command  func(ctx context.Context, name string, args ...string) *exec.Cmd
}

func NewSystem(rate int) *System {
	if rate <= 0 {
		rate = DefaultRate
	}
	return &System{Rate: rate, lookPath: exec.LookPath, command: exec.CommandContext}
}

func (s *System) Say(ctx context.Context, text string) error {
	if text == "" {
		return nil
	}
	name, args, err := s.synthCommand(text)
	if err != nil {
		return err
	}
	cmd := s.command(ctx, name, args...)
	if out, err := cmd.CombinedOutput(); err != nil {
		return fmt.Errorf("speech failed: %w\n%s", err, out)
	}
	return nil
}

// Available reports the synthesizer binary that Say would run.
func (s *System) Available() (string, error) {
	name, _, err := s.synthCommand("")
	return name, err
}

func (s *System) rateArg() string {
	return strconv.Itoa(s.Rate)
}
