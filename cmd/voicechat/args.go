package main

import (
	"flag"
	"fmt"
	"io"
)

type options struct {
	workspace  string
	continuing bool
	configPath string
	logPath    string
	doctor     bool
	version    bool
	testWAV    string
	noBeep     bool
}

// parseArgs accepts flags before or after the workspace argument, so
// `voicechat ~/proj -c` and `voicechat -c ~/proj` mean the same thing.
func parseArgs(args []string, stderr io.Writer) (options, error) {
	var opts options
	fs := flag.NewFlagSet("voicechat", flag.ContinueOnError)
	fs.SetOutput(stderr)
	fs.Usage = func() {
		fmt.Fprintf(stderr, "Usage: voicechat [workspace] [-c|--continue] [flags]\n\n")
		fs.PrintDefaults()
	}
	fs.BoolVar(&opts.continuing, "c", false, "Continue the most recent assistant session")
	fs.BoolVar(&opts.continuing, "continue", false, "Continue the most recent assistant session")
	fs.StringVar(&opts.configPath, "config", "", "Config file path (default: user config dir)")
	fs.StringVar(&opts.logPath, "logpath", "", "log directory path (default: OS-specific location, use ./ for current dir)")
	fs.BoolVar(&opts.doctor, "doctor", false, "Run system diagnostics and exit")
	fs.BoolVar(&opts.version, "version", false, "Print version and exit")
	fs.StringVar(&opts.testWAV, "test-wav", "", "Replay a 16kHz mono WAV file instead of the microphone")
	fs.BoolVar(&opts.noBeep, "nobeep", false, "Disable recording beeps")

	var positional []string
	for {
		if err := fs.Parse(args); err != nil {
			return opts, err
		}
		rest := fs.Args()
		if len(rest) == 0 {
			break
		}
		positional = append(positional, rest[0])
		args = rest[1:]
	}
	switch len(positional) {
	case 0:
	case 1:
		opts.workspace = positional[0]
	default:
		return opts, fmt.Errorf("expected at most one workspace, got %d: %v", len(positional), positional)
	}
	return opts, nil
}
