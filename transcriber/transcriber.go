package transcriber

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

type NetworkMetrics struct {
	DNS         time.Duration
	ConnWait    time.Duration
	TCP         time.Duration
	TLS         time.Duration
	ReqHeaders  time.Duration
	ReqBody     time.Duration
	TTFB        time.Duration
	Download    time.Duration
	Total       time.Duration
	ConnReused  bool
	TLSProtocol string
}

func (m *NetworkMetrics) Sum() time.Duration {
	if m == nil {
		return 0
	}
	return m.ConnWait + m.DNS + m.TCP + m.TLS + m.ReqHeaders + m.ReqBody + m.TTFB + m.Download
}

func firstNonEmpty(h http.Header, keys ...string) string {
	for _, k := range keys {
		if v := h.Get(k); v != "" {
			return v
		}
	}
	return "?"
}

type Result struct {
	Text         string
	Metrics      *NetworkMetrics // nil when the backend hides the transport
	RateLimit    string
	NoSpeechProb float64
	Duration     float64
}

type Transcriber interface {
	Name() string
	SetLanguage(lang string)
	GetLanguage() string
	NewSession(ctx context.Context, cfg SessionConfig) (Session, error)
	Close() error
}

type baseTranscriber struct {
	client *TracedClient
	apiURL string
	lang   string
}

func (b *baseTranscriber) SetLanguage(lang string) { b.lang = lang }

func (b *baseTranscriber) GetLanguage() string { return b.lang }

const (
	ProviderWhisper = "whisper"
	ProviderGroq    = "groq"
	ProviderOpenAI  = "openai"
)

type Options struct {
	Provider  string
	Language  string
	GroqKey   string
	OpenAIKey string
	OpenAIURL string
	Whisper   WhisperConfig
}

// New builds the configured backend. Nothing is started here; the
// local whisper server comes up on first use.
func New(opts Options) (Transcriber, error) {
	var t Transcriber
	switch opts.Provider {
	case "", ProviderWhisper:
		t = NewWhisper(opts.Whisper)
	case ProviderGroq:
		if opts.GroqKey == "" {
			return nil, fmt.Errorf("groq transcriber needs GROQ_API_KEY")
		}
		t = NewGroq(opts.GroqKey)
	case ProviderOpenAI:
		if opts.OpenAIKey == "" {
			return nil, fmt.Errorf("openai transcriber needs OPENAI_API_KEY")
		}
		t = NewOpenAI(opts.OpenAIKey, opts.OpenAIURL)
	default:
		return nil, fmt.Errorf("unknown transcriber %q", opts.Provider)
	}
	if opts.Language != "" {
		t.SetLanguage(opts.Language)
	}
	return t, nil
}
