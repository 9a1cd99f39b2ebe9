package chat

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"voicechat/shutdown"
)

// ErrInterrupted is returned by Input.ReadLine when the user interrupts
// instead of answering.
var ErrInterrupted = errors.New("interrupted")

type Input interface {
	ReadLine(prompt string) (string, error)
}

type lineResult struct {
	line string
	err  error
}

// Console reads lines from a terminal. A read abandoned by an interrupt
// stays pending and satisfies the next ReadLine, so at most one reader
// goroutine ever touches in.
type Console struct {
	in         *bufio.Reader
	out        io.Writer
	interrupts <-chan os.Signal
	pending    chan lineResult
}

func NewConsole(in io.Reader, out io.Writer, interrupts <-chan os.Signal) *Console {
	return &Console{in: bufio.NewReader(in), out: out, interrupts: interrupts}
}

func (c *Console) ReadLine(prompt string) (string, error) {
	fmt.Fprint(c.out, prompt)
	if c.pending == nil {
		ch := make(chan lineResult, 1)
		c.pending = ch
		go func() {
			line, err := c.in.ReadString('\n')
			ch <- lineResult{line: line, err: err}
		}()
	}

	select {
	case r := <-c.pending:
		c.pending = nil
		if r.err != nil && r.line == "" {
			return "", r.err
		}
		return strings.TrimRight(r.line, "\r\n"), nil
	case <-c.interrupts:
		fmt.Fprintln(c.out)
		return "", ErrInterrupted
	}
}

// Drain discards interrupts that arrived while no prompt was showing,
// such as Ctrl+C during the last chunk of a reply.
func (c *Console) Drain() {
	shutdown.Drain(c.interrupts)
}
