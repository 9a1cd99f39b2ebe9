// Package config resolves settings from defaults, an optional YAML
// file, a .env file and the environment, in that order of precedence
// (later wins).
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"voicechat/assistant"
	"voicechat/speech"
	"voicechat/textclean"
	"voicechat/transcriber"
)

const (
	appName         = "voicechat"
	DefaultModelURL = "https://huggingface.co/ggerganov/whisper.cpp/resolve/main/ggml-base.en.bin"
)

type AssistantConfig struct {
	Command []string `yaml:"command"`
}

type TranscriberConfig struct {
	Provider     string `yaml:"provider"`
	Language     string `yaml:"language"`
	ServerBinary string `yaml:"server_binary"`
	ServerURL    string `yaml:"server_url"`
	ModelPath    string `yaml:"model_path"`
	ModelURL     string `yaml:"model_url"`
	ModelSHA256  string `yaml:"model_sha256"`
	Port         int    `yaml:"port"`
	Threads      int    `yaml:"threads"`
	OpenAIURL    string `yaml:"openai_url"`
}

type Config struct {
	Rate           int               `yaml:"rate"`
	ChunkSentences int               `yaml:"chunk_sentences"`
	Beep           bool              `yaml:"beep"`
	Device         string            `yaml:"device"`
	MicGain        int               `yaml:"mic_gain"`
	LogPath        string            `yaml:"log_path"`
	Assistant      AssistantConfig   `yaml:"assistant"`
	Transcriber    TranscriberConfig `yaml:"transcriber"`

	GroqKey   string `yaml:"-"`
	OpenAIKey string `yaml:"-"`

	// Source is the config file that was read, empty if none.
	Source string `yaml:"-"`
}

func Default() Config {
	return Config{
		Rate:           speech.DefaultRate,
		ChunkSentences: textclean.DefaultChunkSentences,
		Beep:           true,
		MicGain:        1,
		Assistant:      AssistantConfig{Command: append([]string(nil), assistant.DefaultCommand...)},
		Transcriber: TranscriberConfig{
			Provider:     transcriber.ProviderWhisper,
			Language:     "en",
			ServerBinary: transcriber.DefaultWhisperBinary,
			ModelPath:    DefaultModelPath(),
			ModelURL:     DefaultModelURL,
			Port:         transcriber.DefaultWhisperPort,
		},
	}
}

// Dir is the per-user configuration directory.
func Dir() string {
	base, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(base, appName)
}

func DefaultPath() string {
	if d := Dir(); d != "" {
		return filepath.Join(d, "config.yaml")
	}
	return ""
}

func DefaultModelPath() string {
	base, err := os.UserCacheDir()
	if err != nil {
		base = os.TempDir()
	}
	return filepath.Join(base, appName, "models", "ggml-base.en.bin")
}

// Load builds the effective configuration. path names the YAML file;
// an empty path means the default location, which may be absent. An
// explicitly named file must exist.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}
	if path != "" {
		data, err := os.ReadFile(path)
		switch {
		case err == nil:
			if err := yaml.Unmarshal(data, &cfg); err != nil {
				return cfg, fmt.Errorf("parse %s: %w", path, err)
			}
			cfg.Source = path
		case explicit || !errors.Is(err, fs.ErrNotExist):
			return cfg, fmt.Errorf("read config: %w", err)
		}
	}

	if err := loadDotEnv(".env", filepath.Join(Dir(), ".env")); err != nil {
		return cfg, err
	}
	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	return cfg, cfg.Validate()
}

// loadDotEnv never overrides variables already set in the environment.
func loadDotEnv(paths ...string) error {
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("load %s: %w", p, err)
		}
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("VOICECHAT_RATE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("VOICECHAT_RATE: %w", err)
		}
		c.Rate = n
	}
	if v := os.Getenv("VOICECHAT_BEEP"); v != "" {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return fmt.Errorf("VOICECHAT_BEEP: %w", err)
		}
		c.Beep = b
	}
	if v := os.Getenv("VOICECHAT_TRANSCRIBER"); v != "" {
		c.Transcriber.Provider = strings.ToLower(v)
	}
	if v := os.Getenv("VOICECHAT_MODEL"); v != "" {
		c.Transcriber.ModelPath = v
	}
	if v := os.Getenv("VOICECHAT_ASSISTANT"); v != "" {
		c.Assistant.Command = strings.Fields(v)
	}
	c.GroqKey = os.Getenv("GROQ_API_KEY")
	c.OpenAIKey = os.Getenv("OPENAI_API_KEY")
	return nil
}

func (c Config) Validate() error {
	var errs []error
	if c.Rate <= 0 {
		errs = append(errs, fmt.Errorf("rate must be positive, got %d", c.Rate))
	}
	if c.ChunkSentences <= 0 {
		errs = append(errs, fmt.Errorf("chunk_sentences must be positive, got %d", c.ChunkSentences))
	}
	if len(c.Assistant.Command) == 0 {
		errs = append(errs, errors.New("assistant.command is empty"))
	}
	switch c.Transcriber.Provider {
	case transcriber.ProviderWhisper, transcriber.ProviderGroq, transcriber.ProviderOpenAI:
	default:
		errs = append(errs, fmt.Errorf("unknown transcriber %q", c.Transcriber.Provider))
	}
	return errors.Join(errs...)
}

func (c Config) TranscriberOptions() transcriber.Options {
	t := c.Transcriber
	return transcriber.Options{
		Provider:  t.Provider,
		Language:  t.Language,
		GroqKey:   c.GroqKey,
		OpenAIKey: c.OpenAIKey,
		OpenAIURL: t.OpenAIURL,
		Whisper: transcriber.WhisperConfig{
			Binary:    t.ServerBinary,
			ModelPath: t.ModelPath,
			Port:      t.Port,
			Threads:   t.Threads,
			URL:       t.ServerURL,
		},
	}
}
