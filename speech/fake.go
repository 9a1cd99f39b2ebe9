package speech

import (
	"context"
	"sync"
)

// Fake records every utterance instead of speaking it.
type Fake struct {
	mu     sync.Mutex
	spoken []string
	err    error
}

func NewFake(err error) *Fake {
	return &Fake{err: err}
}

func (f *Fake) Say(_ context.Context, text string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.spoken = append(f.spoken, text)
	return f.err
}

func (f *Fake) Spoken() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.spoken...)
}
