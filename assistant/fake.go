package assistant

import (
	"context"
	"sync"
)

// Fake records every request and answers from a queue of results. Once
// the queue is exhausted the last result repeats.
type Fake struct {
	mu       sync.Mutex
	results  []Result
	requests []Request
	latest   string
	lookups  int
}

func NewFake(results ...Result) *Fake {
	return &Fake{results: results}
}

// SetLatest sets the id LatestSession reports; empty means none.
func (f *Fake) SetLatest(id string) {
	f.mu.Lock()
	f.latest = id
	f.mu.Unlock()
}

func (f *Fake) Run(_ context.Context, req Request) Result {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requests = append(f.requests, req)
	if len(f.results) == 0 {
		return Result{OK: true}
	}
	r := f.results[0]
	if len(f.results) > 1 {
		f.results = f.results[1:]
	}
	return r
}

func (f *Fake) LatestSession(context.Context) (string, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lookups++
	return f.latest, f.latest != ""
}

func (f *Fake) Requests() []Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Request(nil), f.requests...)
}

func (f *Fake) Lookups() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.lookups
}
