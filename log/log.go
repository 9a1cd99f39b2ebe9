package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/rs/xid"
	"github.com/rs/zerolog"
)

const (
	diagFileName         = "diagnostics_log.txt"
	conversationFileName = "conversation_log.txt"
)

var (
	diagLog          zerolog.Logger
	diagFile         *os.File
	conversationFile *os.File
	logMu            sync.Mutex
	logReady         bool
	runID            string
	dir              string
)

func ResolveDir(flagPath string) (string, error) {
	// Priority 1: -logpath flag
	if flagPath != "" {
		return absFromWd(flagPath)
	}

	// Priority 2: VOICECHAT_LOG_PATH environment variable
	if envPath := os.Getenv("VOICECHAT_LOG_PATH"); envPath != "" {
		return absFromWd(envPath)
	}

	// Priority 3: Default OS-specific location
	return getDefaultDir()
}

func absFromWd(p string) (string, error) {
	if filepath.IsAbs(p) {
		return p, nil
	}
	wd, err := os.Getwd()
	if err != nil {
		return "", err
	}
	return filepath.Join(wd, p), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func EnsureDir() error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}
	return nil
}

// RunID identifies the current process in every diagnostics line.
func RunID() string {
	return runID
}

func Init() error {
	logMu.Lock()
	defer logMu.Unlock()

	if err := EnsureDir(); err != nil {
		return err
	}

	var err error

	diagFile, err = os.OpenFile(filepath.Join(dir, diagFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	conversationFile, err = os.OpenFile(filepath.Join(dir, conversationFileName), os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		diagFile.Close()
		diagFile = nil
		return err
	}

	runID = xid.New().String()
	consoleWriter := zerolog.ConsoleWriter{
		Out:        diagFile,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Str("run", runID).Int("pid", os.Getpid()).Logger()

	logReady = true
	return nil
}

func Close() {
	logMu.Lock()
	defer logMu.Unlock()
	if diagFile != nil {
		diagFile.Close()
		diagFile = nil
	}
	if conversationFile != nil {
		conversationFile.Close()
		conversationFile = nil
	}
	logReady = false
}

func Info(msg string) {
	if logReady {
		diagLog.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if logReady {
		diagLog.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Error(msg string) {
	if logReady {
		diagLog.Error().Msg(msg)
	}
}

func Errorf(format string, args ...any) {
	if logReady {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

func Warn(msg string) {
	if logReady {
		diagLog.Warn().Msg(msg)
	}
}

func Warnf(format string, args ...any) {
	if logReady {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

// Turn records one conversation line. role is "you" or "assistant".
func Turn(role, text string) {
	logMu.Lock()
	defer logMu.Unlock()
	if !logReady || conversationFile == nil {
		return
	}
	line := fmt.Sprintf("%s\t[%s]\t%s\t%s\n", time.Now().Format("2006-01-02 15:04:05"), runID, role, text)
	conversationFile.WriteString(line)
}

func Dispatch(mode, sessionID string, ok bool, elapsed time.Duration) {
	if !logReady {
		return
	}
	ev := diagLog.Info().
		Str("mode", mode).
		Bool("ok", ok).
		Float64("elapsed_ms", float64(elapsed.Milliseconds()))
	if sessionID != "" {
		ev = ev.Str("session", sessionID)
	}
	ev.Msg("dispatch")
}

func Transcription(provider string, audioS float64, elapsed time.Duration, chars int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("provider", provider).
		Float64("audio_s", audioS).
		Float64("elapsed_ms", float64(elapsed.Milliseconds())).
		Int("chars", chars).
		Msg("transcription")
}

func Playback(chunks, spoken int, outcome string) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("chunks", chunks).
		Int("spoken", spoken).
		Str("outcome", outcome).
		Msg("playback")
}

func SessionStart(workspace, provider string, continuing bool) {
	if !logReady {
		return
	}
	diagLog.Info().
		Str("workspace", workspace).
		Str("provider", provider).
		Bool("continue", continuing).
		Msg("session_start")
}

func SessionEnd(turns int) {
	if !logReady {
		return
	}
	diagLog.Info().
		Int("turns", turns).
		Msg("session_end")
}
