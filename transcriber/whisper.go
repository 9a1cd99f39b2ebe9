package transcriber

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"os/exec"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	"voicechat/encoder"
	"voicechat/log"
)

const (
	DefaultWhisperBinary = "whisper-server"
	DefaultWhisperPort   = 8178
)

type WhisperConfig struct {
	Binary       string
	ModelPath    string
	Port         int
	Threads      int
	StartTimeout time.Duration
	// URL of an already-running server. When set nothing is spawned.
	URL string
}

// Whisper runs transcription on a local whisper.cpp server. The server
// holds the model in memory, so it is started at most once per process
// and reused by every session.
type Whisper struct {
	baseTranscriber
	cfg WhisperConfig

	once     sync.Once
	startErr error

	mu     sync.Mutex
	cmd    *exec.Cmd
	exited chan struct{}
}

func NewWhisper(cfg WhisperConfig) *Whisper {
	if cfg.Binary == "" {
		cfg.Binary = DefaultWhisperBinary
	}
	if cfg.Port == 0 {
		cfg.Port = DefaultWhisperPort
	}
	if cfg.StartTimeout == 0 {
		cfg.StartTimeout = 60 * time.Second
	}
	apiURL := cfg.URL
	if apiURL == "" {
		apiURL = "http://127.0.0.1:" + strconv.Itoa(cfg.Port)
	}
	return &Whisper{
		baseTranscriber: baseTranscriber{
			client: NewTracedClient(""),
			apiURL: apiURL,
		},
		cfg: cfg,
	}
}

func (w *Whisper) Name() string { return ProviderWhisper }

// Start loads the model. Safe to call repeatedly; only the first call
// does any work and later calls return its outcome.
func (w *Whisper) Start(ctx context.Context) error {
	w.once.Do(func() {
		w.startErr = w.start(ctx)
	})
	return w.startErr
}

func (w *Whisper) start(ctx context.Context) error {
	if w.cfg.URL != "" {
		return w.waitReady(ctx, nil)
	}
	if w.cfg.ModelPath == "" {
		return errors.New("whisper: no model configured")
	}
	if _, err := os.Stat(w.cfg.ModelPath); err != nil {
		return fmt.Errorf("whisper model: %w", err)
	}

	args := []string{
		"-m", w.cfg.ModelPath,
		"--host", "127.0.0.1",
		"--port", strconv.Itoa(w.cfg.Port),
	}
	if w.cfg.Threads > 0 {
		args = append(args, "-t", strconv.Itoa(w.cfg.Threads))
	}
	cmd := exec.Command(w.cfg.Binary, args...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	start := time.Now()
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting %s: %w", w.cfg.Binary, err)
	}
	exited := make(chan struct{})
	go func() {
		_ = cmd.Wait()
		close(exited)
	}()

	w.mu.Lock()
	w.cmd = cmd
	w.exited = exited
	w.mu.Unlock()

	if err := w.waitReady(ctx, exited); err != nil {
		w.Close()
		if tail := lastLine(stderr.String()); tail != "" {
			return fmt.Errorf("%w: %s", err, tail)
		}
		return err
	}
	log.Infof("whisper server ready: model=%s port=%d load=%s",
		filepath.Base(w.cfg.ModelPath), w.cfg.Port, time.Since(start).Round(time.Millisecond))
	return nil
}

func (w *Whisper) waitReady(ctx context.Context, exited <-chan struct{}) error {
	ctx, cancel := context.WithTimeout(ctx, w.cfg.StartTimeout)
	defer cancel()

	ticker := time.NewTicker(200 * time.Millisecond)
	defer ticker.Stop()
	for {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, w.apiURL+"/", nil)
		if err != nil {
			return err
		}
		if resp, err := w.client.client.Do(req); err == nil {
			_, _ = io.Copy(io.Discard, resp.Body)
			resp.Body.Close()
			if resp.StatusCode < 500 {
				return nil
			}
		}
		select {
		case <-ctx.Done():
			return fmt.Errorf("whisper server not ready: %w", ctx.Err())
		case <-exited:
			return errors.New("whisper server exited during startup")
		case <-ticker.C:
		}
	}
}

func (w *Whisper) NewSession(ctx context.Context, cfg SessionConfig) (Session, error) {
	if err := w.Start(ctx); err != nil {
		return nil, err
	}
	if cfg.Language != "" {
		w.SetLanguage(cfg.Language)
	}
	return newBatchSession(ctx, encoder.NewWav(), "wav", w.transcribe), nil
}

type whisperResponse struct {
	Text  string `json:"text"`
	Error string `json:"error"`
}

// transcribe stages the recording as a temporary WAV file, which is
// removed whatever the outcome.
func (w *Whisper) transcribe(ctx context.Context, audioData []byte, format string) (*Result, error) {
	tmp, err := os.CreateTemp("", "voicechat-*."+format)
	if err != nil {
		return nil, fmt.Errorf("temp audio: %w", err)
	}
	path := tmp.Name()
	defer os.Remove(path)

	if _, err := tmp.Write(audioData); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("temp audio: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("temp audio: %w", err)
	}

	body, contentType, err := w.multipartBody(path)
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, w.apiURL+"/inference", body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	resp, err := w.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("whisper request: %w", err)
	}

	var wResp whisperResponse
	if err := json.Unmarshal(resp.Body, &wResp); err != nil && resp.StatusCode == http.StatusOK {
		return nil, fmt.Errorf("whisper response parse error: %w", err)
	}
	if resp.StatusCode != http.StatusOK || wResp.Error != "" {
		msg := wResp.Error
		if msg == "" {
			msg = string(resp.Body)
		}
		return nil, fmt.Errorf("whisper server error %d: %s", resp.StatusCode, msg)
	}

	return &Result{Text: wResp.Text, Metrics: resp.Metrics}, nil
}

func (w *Whisper) multipartBody(path string) (*bytes.Buffer, string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, "", err
	}
	defer f.Close()

	var body bytes.Buffer
	writer := multipart.NewWriter(&body)
	part, err := writer.CreateFormFile("file", filepath.Base(path))
	if err != nil {
		return nil, "", err
	}
	if _, err := io.Copy(part, f); err != nil {
		return nil, "", err
	}
	_ = writer.WriteField("response_format", "json")
	_ = writer.WriteField("temperature", "0.0")
	if w.lang != "" {
		_ = writer.WriteField("language", w.lang)
	}
	if err := writer.Close(); err != nil {
		return nil, "", err
	}
	return &body, writer.FormDataContentType(), nil
}

// Close stops the server if this process started it.
func (w *Whisper) Close() error {
	w.mu.Lock()
	cmd, exited := w.cmd, w.exited
	w.cmd = nil
	w.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return nil
	}
	select {
	case <-exited:
		return nil
	default:
	}
	if err := cmd.Process.Kill(); err != nil {
		return fmt.Errorf("stopping whisper server: %w", err)
	}
	<-exited
	return nil
}

func lastLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.LastIndexByte(s, '\n'); i >= 0 {
		return s[i+1:]
	}
	return s
}
