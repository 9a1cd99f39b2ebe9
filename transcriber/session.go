package transcriber

import "context"

type SessionConfig struct {
	Language string
}

type BatchStats struct {
	AudioLengthS     float64
	RawSizeKB        float64
	CompressedSizeKB float64
	EncodeTimeMs     float64
	TTFBMs           float64
	TotalTimeMs      float64
	ConnReused       bool
}

type SessionResult struct {
	Text      string
	HasText   bool
	NoSpeech  bool
	RateLimit string // "remaining/limit" or empty
	Batch     *BatchStats
	Metrics   []string // pre-formatted lines for the diagnostics log
}

// Session collects one utterance. Feed may be called any number of
// times; Close runs the transcription.
type Session interface {
	Feed(pcm []int16)
	Close() (SessionResult, error)
}

// Transcribe runs a whole recording through a fresh session.
func Transcribe(ctx context.Context, t Transcriber, pcm []int16) (SessionResult, error) {
	s, err := t.NewSession(ctx, SessionConfig{Language: t.GetLanguage()})
	if err != nil {
		return SessionResult{}, err
	}
	s.Feed(pcm)
	return s.Close()
}
