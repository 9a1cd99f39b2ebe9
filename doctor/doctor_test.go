package doctor

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"voicechat/config"
)

type fakeEnv struct {
	present  map[string]bool
	fetched  []string
	ran      []string
	fetchErr error
}

func newTestDoctor(t *testing.T, cfg config.Config, env *fakeEnv) (*Doctor, *bytes.Buffer) {
	t.Helper()
	var out bytes.Buffer
	d := New(cfg, &out)
	d.lookPath = func(name string) (string, error) {
		if env.present[name] {
			return "/usr/bin/" + name, nil
		}
		return "", errors.New("not found")
	}
	d.fetch = func(_ context.Context, url, dest, _ string, _ io.Writer) error {
		env.fetched = append(env.fetched, url+" -> "+dest)
		return env.fetchErr
	}
	d.run = func(_ context.Context, name string, args ...string) error {
		env.ran = append(env.ran, name+" "+strings.Join(args, " "))
		return nil
	}
	return d, &out
}

func find(checks []Check, name string) *Check {
	for i := range checks {
		if checks[i].Name == name {
			return &checks[i]
		}
	}
	return nil
}

func TestChecksWhisper(t *testing.T) {
	cfg := config.Default()
	cfg.Transcriber.ModelPath = filepath.Join(t.TempDir(), "missing.bin")
	env := &fakeEnv{present: map[string]bool{"npx": true}}
	d, _ := newTestDoctor(t, cfg, env)

	checks := d.Checks()
	if c := find(checks, "assistant launcher"); c == nil || !c.OK {
		t.Errorf("assistant launcher = %+v", c)
	}
	if c := find(checks, "whisper server"); c == nil || c.OK || c.Fix != FixInstallWhisper {
		t.Errorf("whisper server = %+v", c)
	}
	if c := find(checks, "speech model"); c == nil || c.OK || c.Fix != FixDownloadModel {
		t.Errorf("speech model = %+v", c)
	}
}

func TestChecksModelPresent(t *testing.T) {
	cfg := config.Default()
	cfg.Transcriber.ModelPath = filepath.Join(t.TempDir(), "base.bin")
	if err := os.WriteFile(cfg.Transcriber.ModelPath, []byte("ggml"), 0o644); err != nil {
		t.Fatal(err)
	}
	env := &fakeEnv{present: map[string]bool{"npx": true, "whisper-server": true}}
	d, _ := newTestDoctor(t, cfg, env)
	checks := d.Checks()
	for _, name := range []string{"assistant launcher", "whisper server", "speech model"} {
		if c := find(checks, name); c == nil || !c.OK {
			t.Errorf("%s = %+v", name, c)
		}
	}
}

func TestChecksRemoteProviders(t *testing.T) {
	cfg := config.Default()
	cfg.Transcriber.Provider = "groq"
	d, _ := newTestDoctor(t, cfg, &fakeEnv{})
	checks := d.Checks()
	if find(checks, "speech model") != nil {
		t.Error("remote provider should not need a local model")
	}
	if c := find(checks, "api key"); c == nil || c.OK || !strings.Contains(c.Detail, "GROQ_API_KEY") {
		t.Errorf("api key = %+v", c)
	}

	cfg.Transcriber.Provider = "openai"
	cfg.OpenAIKey = "sk"
	d, _ = newTestDoctor(t, cfg, &fakeEnv{})
	if c := find(d.Checks(), "api key"); c == nil || !c.OK {
		t.Errorf("api key = %+v", c)
	}
}

func TestChecksExternalServer(t *testing.T) {
	cfg := config.Default()
	cfg.Transcriber.ServerURL = "http://127.0.0.1:9000"
	d, _ := newTestDoctor(t, cfg, &fakeEnv{})
	checks := d.Checks()
	if c := find(checks, "whisper server"); c == nil || !c.OK {
		t.Errorf("whisper server = %+v", c)
	}
	if find(checks, "speech model") != nil {
		t.Error("external server owns its model")
	}
}

func TestInstallDownloadsModel(t *testing.T) {
	cfg := config.Default()
	cfg.Transcriber.ModelPath = "/models/base.bin"
	env := &fakeEnv{}
	d, _ := newTestDoctor(t, cfg, env)

	attempted := d.Install(context.Background(), []Check{{Name: "speech model", Fix: FixDownloadModel}})
	if !attempted {
		t.Error("expected an install attempt")
	}
	if len(env.fetched) != 1 || env.fetched[0] != config.DefaultModelURL+" -> /models/base.bin" {
		t.Errorf("fetched = %q", env.fetched)
	}
}

func TestInstallWhisper(t *testing.T) {
	t.Run("darwin with brew", func(t *testing.T) {
		env := &fakeEnv{present: map[string]bool{"brew": true}}
		d, _ := newTestDoctor(t, config.Default(), env)
		d.goos = "darwin"
		if !d.Install(context.Background(), []Check{{Fix: FixInstallWhisper}}) {
			t.Error("expected an install attempt")
		}
		if len(env.ran) != 1 || env.ran[0] != "brew install whisper-cpp" {
			t.Errorf("ran = %q", env.ran)
		}
	})
	t.Run("linux", func(t *testing.T) {
		env := &fakeEnv{present: map[string]bool{"brew": true}}
		d, out := newTestDoctor(t, config.Default(), env)
		d.goos = "linux"
		if d.Install(context.Background(), []Check{{Fix: FixInstallWhisper}}) {
			t.Error("no automatic install on linux")
		}
		if len(env.ran) != 0 || !strings.Contains(out.String(), "whisper-server") {
			t.Errorf("ran=%q out=%q", env.ran, out.String())
		}
	})
}

func TestReport(t *testing.T) {
	d, out := newTestDoctor(t, config.Default(), &fakeEnv{})
	ok := d.Report([]Check{
		{Name: "a", OK: true, Detail: "fine"},
		{Name: "b", Detail: "broken"},
	})
	if ok {
		t.Error("Report should fail when any check fails")
	}
	want := "[1/2] a\n  PASS: fine\n[2/2] b\n  FAIL: broken\n"
	if out.String() != want {
		t.Errorf("report = %q, want %q", out.String(), want)
	}
	if len(Failed([]Check{{OK: true}, {Name: "x"}})) != 1 {
		t.Error("Failed should keep only failing checks")
	}
}
