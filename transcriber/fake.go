package transcriber

import (
	"context"
	"fmt"
	"sync"

	"voicechat/encoder"
)

type FakeTranscriber struct {
	text string
	err  error
	lang string

	mu       sync.Mutex
	sessions int
	fed      int
}

func NewFake(text string, err error) *FakeTranscriber {
	return &FakeTranscriber{text: text, err: err}
}

func (f *FakeTranscriber) Name() string            { return "fake" }
func (f *FakeTranscriber) SetLanguage(lang string) { f.lang = lang }
func (f *FakeTranscriber) GetLanguage() string     { return f.lang }
func (f *FakeTranscriber) Close() error            { return nil }

// Sessions reports how many sessions were opened.
func (f *FakeTranscriber) Sessions() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sessions
}

// Fed reports the total number of samples fed across sessions.
func (f *FakeTranscriber) Fed() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.fed
}

func (f *FakeTranscriber) NewSession(_ context.Context, _ SessionConfig) (Session, error) {
	f.mu.Lock()
	f.sessions++
	f.mu.Unlock()
	return &fakeSession{parent: f}, nil
}

type fakeSession struct {
	parent  *FakeTranscriber
	samples int
}

func (s *fakeSession) Feed(pcm []int16) {
	s.samples += len(pcm)
	s.parent.mu.Lock()
	s.parent.fed += len(pcm)
	s.parent.mu.Unlock()
}

func (s *fakeSession) Close() (SessionResult, error) {
	if s.parent.err != nil {
		return SessionResult{}, fmt.Errorf("fake transcriber error: %w", s.parent.err)
	}
	text := s.parent.text
	return SessionResult{
		Text:     text,
		HasText:  text != "",
		NoSpeech: text == "",
		Batch: &BatchStats{
			AudioLengthS: encoder.DurationSeconds(s.samples),
			TotalTimeMs:  10,
		},
		Metrics: []string{"total: 10ms (fake)"},
	}, nil
}
