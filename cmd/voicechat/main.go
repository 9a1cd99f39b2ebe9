package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"runtime/debug"
	"time"

	"golang.org/x/term"

	"voicechat/assistant"
	"voicechat/audio"
	"voicechat/beep"
	"voicechat/chat"
	"voicechat/config"
	"voicechat/doctor"
	"voicechat/encoder"
	"voicechat/log"
	"voicechat/shutdown"
	"voicechat/speech"
	"voicechat/transcriber"
)

var version = "dev"

func main() {
	os.Exit(run(os.Args[1:]))
}

func run(args []string) int {
	opts, err := parseArgs(args, os.Stderr)
	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 2
	}

	if opts.version {
		fmt.Printf("voicechat %s\n", version)
		return 0
	}

	cfg, err := config.Load(opts.configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	setupLogging(opts.logPath, cfg.LogPath)
	defer log.Close()

	if opts.noBeep || !cfg.Beep || opts.testWAV != "" {
		beep.Disable()
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	d := doctor.New(cfg, os.Stdout)
	if opts.doctor {
		return d.Run(ctx)
	}

	if opts.testWAV == "" {
		if failed := doctor.Failed(d.Checks()); len(failed) > 0 {
			fmt.Println("Missing dependencies:")
			d.Report(failed)
			fmt.Println()
			if d.Install(ctx, failed) {
				fmt.Println("\nRestart after install.")
			} else {
				fmt.Println("\nFix the problems above and restart.")
			}
			return 1
		}
	}

	workspace, err := resolveWorkspace(opts.workspace)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}

	tr, err := transcriber.New(cfg.TranscriberOptions())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer tr.Close()

	if w, ok := tr.(*transcriber.Whisper); ok {
		fmt.Println("Starting speech recognizer...")
		if err := w.Start(ctx); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
	}

	openAudio := audio.NewContext
	if opts.testWAV != "" {
		pcm, rate, err := encoder.ReadWAVFile(opts.testWAV)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}
		if rate != audio.SampleRate {
			fmt.Fprintf(os.Stderr, "Error: %s is %d Hz, want %d Hz\n", opts.testWAV, rate, audio.SampleRate)
			return 1
		}
		openAudio = func() (audio.Context, error) {
			return audio.NewFakeContext(pcm, true), nil
		}
	}

	interrupts := shutdown.Interrupts()
	tty := term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stdout.Fd()))
	recorder := newMicRecorder(openAudio, cfg.Device, cfg.MicGain, interrupts, tty, os.Stdout)
	defer recorder.Close()

	loop := &chat.Loop{
		In:             chat.NewConsole(os.Stdin, os.Stdout, interrupts),
		Out:            os.Stdout,
		Speaker:        speech.NewSystem(cfg.Rate),
		Recorder:       recorder,
		Transcriber:    tr,
		Assistant:      assistant.NewCLI(cfg.Assistant.Command),
		Workspace:      workspace,
		ChunkSentences: cfg.ChunkSentences,
		State:          chat.State{Continuing: opts.continuing},
	}

	shutdown.OnTerminate(func() {
		log.SessionEnd(loop.Turns())
		log.Close()
		tr.Close()
		os.Exit(0)
	})

	log.SessionStart(workspace, tr.Name(), opts.continuing)
	loop.Banner()
	err = loop.Run(ctx)
	log.SessionEnd(loop.Turns())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v (run %s, logs in %s)\n", err, log.RunID(), log.Dir())
		return 1
	}
	return 0
}

// setupLogging resolves the log directory (flag, then
// VOICECHAT_LOG_PATH, then the config file, then the OS default) and
// routes crash output there.
func setupLogging(flagPath, configPath string) {
	if flagPath == "" && os.Getenv("VOICECHAT_LOG_PATH") == "" {
		flagPath = configPath
	}
	logPath, err := log.ResolveDir(flagPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to resolve log directory: %v\n", err)
		return
	}
	log.SetDir(logPath)

	if err := log.EnsureDir(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: could not create log directory: %v\n", err)
		return
	}

	crashPath := filepath.Join(log.Dir(), "crash_log.txt")
	crashFile, err := os.OpenFile(crashPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err == nil {
		fmt.Fprintf(crashFile, "\n=== Session %s [pid=%d] ===\n", time.Now().Format("2006-01-02 15:04:05"), os.Getpid())
		debug.SetCrashOutput(crashFile, debug.CrashOptions{})
	}

	if err := log.Init(); err != nil {
		fmt.Fprintf(os.Stderr, "Warning: logging disabled: %v\n", err)
	}
}

// resolveWorkspace returns the absolute workspace directory, defaulting
// to the current directory.
func resolveWorkspace(arg string) (string, error) {
	if arg == "" {
		return os.Getwd()
	}
	abs, err := filepath.Abs(arg)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(abs)
	if err != nil {
		return "", fmt.Errorf("workspace: %w", err)
	}
	if !info.IsDir() {
		return "", fmt.Errorf("workspace %s is not a directory", abs)
	}
	return abs, nil
}
