package shutdown

import (
	"os"
	"testing"
)

func TestDrain(t *testing.T) {
	ch := make(chan os.Signal, 2)
	ch <- os.Interrupt
	ch <- os.Interrupt
	Drain(ch)
	select {
	case <-ch:
		t.Fatal("channel should be empty after Drain")
	default:
	}
	Drain(ch)
}
