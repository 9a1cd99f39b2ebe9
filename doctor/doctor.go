// Package doctor verifies the local tools the voice chat depends on and
// makes a best-effort attempt to install what is missing.
package doctor

import (
	"context"
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"voicechat/config"
	"voicechat/model"
	"voicechat/speech"
	"voicechat/transcriber"
)

type Fix int

const (
	FixNone Fix = iota
	FixDownloadModel
	FixInstallWhisper
)

type Check struct {
	Name   string
	OK     bool
	Detail string
	Fix    Fix
}

type Doctor struct {
	Config config.Config
	Out    io.Writer

	goos     string
	lookPath func(string) (string, error)
	fetch    func(ctx context.Context, url, dest, sha string, progress io.Writer) error
	run      func(ctx context.Context, name string, args ...string) error
}

func New(cfg config.Config, out io.Writer) *Doctor {
	return &Doctor{
		Config:   cfg,
		Out:      out,
		goos:     runtime.GOOS,
		lookPath: exec.LookPath,
		fetch:    model.Fetch,
		run:      runAttached(out),
	}
}

func runAttached(out io.Writer) func(ctx context.Context, name string, args ...string) error {
	return func(ctx context.Context, name string, args ...string) error {
		cmd := exec.CommandContext(ctx, name, args...)
		cmd.Stdout = out
		cmd.Stderr = out
		return cmd.Run()
	}
}

// Checks inspects every dependency without changing anything.
func (d *Doctor) Checks() []Check {
	var checks []Check

	synth := speech.NewSystem(d.Config.Rate)
	if name, err := synth.Available(); err != nil {
		checks = append(checks, Check{Name: "speech synthesizer", Detail: err.Error()})
	} else {
		checks = append(checks, Check{Name: "speech synthesizer", OK: true, Detail: name})
	}

	launcher := d.Config.Assistant.Command[0]
	if path, err := d.lookPath(launcher); err != nil {
		checks = append(checks, Check{Name: "assistant launcher", Detail: launcher + " not found in PATH"})
	} else {
		checks = append(checks, Check{Name: "assistant launcher", OK: true, Detail: path})
	}

	t := d.Config.Transcriber
	switch t.Provider {
	case transcriber.ProviderWhisper:
		if t.ServerURL == "" {
			if path, err := d.lookPath(t.ServerBinary); err != nil {
				checks = append(checks, Check{Name: "whisper server", Detail: t.ServerBinary + " not found in PATH", Fix: FixInstallWhisper})
			} else {
				checks = append(checks, Check{Name: "whisper server", OK: true, Detail: path})
			}
			if model.Present(t.ModelPath) {
				checks = append(checks, Check{Name: "speech model", OK: true, Detail: t.ModelPath})
			} else {
				checks = append(checks, Check{Name: "speech model", Detail: "missing " + t.ModelPath, Fix: FixDownloadModel})
			}
		} else {
			checks = append(checks, Check{Name: "whisper server", OK: true, Detail: "external " + t.ServerURL})
		}
	case transcriber.ProviderGroq:
		checks = append(checks, keyCheck("GROQ_API_KEY", d.Config.GroqKey))
	case transcriber.ProviderOpenAI:
		checks = append(checks, keyCheck("OPENAI_API_KEY", d.Config.OpenAIKey))
	}
	return checks
}

func keyCheck(name, value string) Check {
	if value == "" {
		return Check{Name: "api key", Detail: name + " is not set"}
	}
	return Check{Name: "api key", OK: true, Detail: name + " set"}
}

func Failed(checks []Check) []Check {
	var out []Check
	for _, c := range checks {
		if !c.OK {
			out = append(out, c)
		}
	}
	return out
}

// Report prints checks in order and returns true when all passed.
func (d *Doctor) Report(checks []Check) bool {
	allPass := true
	for i, c := range checks {
		status := "PASS"
		if !c.OK {
			status = "FAIL"
			allPass = false
		}
		fmt.Fprintf(d.Out, "[%d/%d] %s\n  %s: %s\n", i+1, len(checks), c.Name, status, c.Detail)
	}
	return allPass
}

// Install tries to fix each failed check and reports whether any
// attempt was made. Checks with no automatic fix get a hint instead.
func (d *Doctor) Install(ctx context.Context, failed []Check) bool {
	attempted := false
	for _, c := range failed {
		switch c.Fix {
		case FixDownloadModel:
			attempted = true
			t := d.Config.Transcriber
			fmt.Fprintf(d.Out, "Downloading speech model to %s\n", t.ModelPath)
			if err := d.fetch(ctx, t.ModelURL, t.ModelPath, t.ModelSHA256, d.Out); err != nil {
				fmt.Fprintf(d.Out, "  FAIL: %v\n", err)
			}
		case FixInstallWhisper:
			if d.goos == "darwin" {
				if _, err := d.lookPath("brew"); err == nil {
					attempted = true
					fmt.Fprintln(d.Out, "Installing whisper-cpp with Homebrew...")
					if err := d.run(ctx, "brew", "install", "whisper-cpp"); err != nil {
						fmt.Fprintf(d.Out, "  FAIL: %v\n", err)
					}
					continue
				}
			}
			fmt.Fprintln(d.Out, "Install whisper.cpp so that whisper-server is on PATH: https://github.com/ggml-org/whisper.cpp")
		default:
			fmt.Fprintf(d.Out, "%s: %s\n", c.Name, c.Detail)
		}
	}
	return attempted
}
