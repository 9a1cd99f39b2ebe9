package transcriber

import (
	"bytes"
	"context"
	"fmt"

	openai "github.com/sashabaranov/go-openai"

	"voicechat/encoder"
)

type OpenAI struct {
	baseTranscriber
	client *openai.Client
}

// NewOpenAI talks to the public API unless baseURL points elsewhere
// (a proxy or a compatible local server).
func NewOpenAI(apiKey, baseURL string) *OpenAI {
	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}
	return &OpenAI{client: openai.NewClientWithConfig(cfg)}
}

func (o *OpenAI) Name() string { return ProviderOpenAI }

func (o *OpenAI) Close() error { return nil }

func (o *OpenAI) NewSession(ctx context.Context, cfg SessionConfig) (Session, error) {
	if cfg.Language != "" {
		o.SetLanguage(cfg.Language)
	}
	return newBatchSession(ctx, encoder.NewWav(), "wav", o.transcribe), nil
}

func (o *OpenAI) transcribe(ctx context.Context, audioData []byte, format string) (*Result, error) {
	resp, err := o.client.CreateTranscription(ctx, openai.AudioRequest{
		Model:    openai.Whisper1,
		FilePath: "audio." + format,
		Reader:   bytes.NewReader(audioData),
		Language: o.lang,
		Format:   openai.AudioResponseFormatVerboseJSON,
	})
	if err != nil {
		return nil, fmt.Errorf("openai transcription: %w", err)
	}

	var noSpeechProb float64
	for _, seg := range resp.Segments {
		noSpeechProb = max(noSpeechProb, seg.NoSpeechProb)
	}
	return &Result{
		Text:         resp.Text,
		NoSpeechProb: noSpeechProb,
		Duration:     resp.Duration,
	}, nil
}
