package main

import (
	"errors"
	"flag"
	"io"
	"testing"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name       string
		args       []string
		workspace  string
		continuing bool
	}{
		{"none", nil, "", false},
		{"workspace only", []string{"/tmp/proj"}, "/tmp/proj", false},
		{"short flag first", []string{"-c", "/tmp/proj"}, "/tmp/proj", true},
		{"short flag after", []string{"/tmp/proj", "-c"}, "/tmp/proj", true},
		{"long flag after", []string{"/tmp/proj", "--continue"}, "/tmp/proj", true},
		{"flag alone", []string{"--continue"}, "", true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := parseArgs(tt.args, io.Discard)
			if err != nil {
				t.Fatalf("parseArgs: %v", err)
			}
			if opts.workspace != tt.workspace {
				t.Errorf("workspace = %q, want %q", opts.workspace, tt.workspace)
			}
			if opts.continuing != tt.continuing {
				t.Errorf("continuing = %v, want %v", opts.continuing, tt.continuing)
			}
		})
	}
}

func TestParseArgsOtherFlags(t *testing.T) {
	opts, err := parseArgs([]string{"proj", "-logpath", "./logs", "-test-wav", "in.wav", "-doctor"}, io.Discard)
	if err != nil {
		t.Fatal(err)
	}
	if opts.workspace != "proj" || opts.logPath != "./logs" || opts.testWAV != "in.wav" || !opts.doctor {
		t.Errorf("unexpected options: %+v", opts)
	}
}

func TestParseArgsErrors(t *testing.T) {
	if _, err := parseArgs([]string{"a", "b"}, io.Discard); err == nil {
		t.Error("expected error for two workspaces")
	}
	if _, err := parseArgs([]string{"-bogus"}, io.Discard); err == nil {
		t.Error("expected error for unknown flag")
	}
	if _, err := parseArgs([]string{"-h"}, io.Discard); !errors.Is(err, flag.ErrHelp) {
		t.Errorf("-h: got %v, want flag.ErrHelp", err)
	}
}
