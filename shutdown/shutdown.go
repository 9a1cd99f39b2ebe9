// Package shutdown routes process signals. Ctrl+C is a control input
// for the voice loop, not a reason to exit, so it is delivered on a
// channel; termination requests run a cleanup hook instead.
package shutdown

import (
	"os"
	"os/signal"
	"sync"
)

// Interrupts starts delivering Ctrl+C presses on the returned channel.
// While registered, SIGINT no longer kills the process.
func Interrupts() <-chan os.Signal {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt)
	return ch
}

// Drain discards interrupts that arrived while nobody was listening.
func Drain(ch <-chan os.Signal) {
	for {
		select {
		case <-ch:
		default:
			return
		}
	}
}

// OnTerminate runs fn once when the process is asked to stop.
func OnTerminate(fn func()) {
	ch := make(chan os.Signal, 1)
	signal.Notify(ch, terminateSignals...)
	var once sync.Once
	go func() {
		<-ch
		once.Do(fn)
	}()
}
