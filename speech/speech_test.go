package speech

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"testing"
)

// TestHelperProcess stands in for the synthesizer binary.
func TestHelperProcess(t *testing.T) {
	if os.Getenv("GO_WANT_HELPER_PROCESS") != "1" {
		return
	}
	args := os.Args
	for i, a := range args {
		if a == "--" {
			args = args[i+1:]
			break
		}
	}
	if os.Getenv("HELPER_FAIL") == "1" {
		fmt.Fprint(os.Stderr, "synth exploded")
		os.Exit(3)
	}
	fmt.Print(strings.Join(args, " "))
	os.Exit(0)
}

func fakeSystem(t *testing.T, fail bool) (*System, *[]string) {
	t.Helper()
	var got []string
	s := NewSystem(200)
	s.lookPath = func(name string) (string, error) { return "/usr/bin/" + name, nil }
	s.command = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		got = append([]string{name}, args...)
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1")
		if fail {
			cmd.Env = append(cmd.Env, "HELPER_FAIL=1")
		}
		return cmd
	}
	return s, &got
}

func TestSayPassesRateAndText(t *testing.T) {
	if runtime.GOOS != "darwin" && runtime.GOOS != "linux" {
		t.Skip("no synthesizer mapping on " + runtime.GOOS)
	}
	s, got := fakeSystem(t, false)
	if err := s.Say(context.Background(), "hello there"); err != nil {
		t.Fatalf("Say: %v", err)
	}
	args := *got
	if len(args) != 5 {
		t.Fatalf("args = %q, want 5 entries", args)
	}
	if args[1] != "-r" && args[1] != "-s" {
		t.Errorf("rate flag = %q", args[1])
	}
	if args[2] != "200" {
		t.Errorf("rate = %q, want 200", args[2])
	}
	if args[3] != "--" || args[4] != "hello there" {
		t.Errorf("text args = %q", args[3:])
	}
}

func TestSayTextStartingWithDash(t *testing.T) {
	if runtime.GOOS != "darwin" && runtime.GOOS != "linux" {
		t.Skip("no synthesizer mapping on " + runtime.GOOS)
	}
	chunk := "- added tests. - bumped deps"
	s, got := fakeSystem(t, false)
	if err := s.Say(context.Background(), chunk); err != nil {
		t.Fatalf("Say: %v", err)
	}
	args := *got
	n := len(args)
	if n < 2 || args[n-1] != chunk || args[n-2] != "--" {
		t.Fatalf("args = %q, want text after an end-of-options marker", args)
	}
	for _, a := range args[1 : n-2] {
		if a == chunk {
			t.Errorf("text appears among options: %q", args)
		}
	}
}

func TestSayEmptyIsNoop(t *testing.T) {
	s, got := fakeSystem(t, false)
	if err := s.Say(context.Background(), ""); err != nil {
		t.Fatalf("Say: %v", err)
	}
	if *got != nil {
		t.Errorf("expected no command, got %q", *got)
	}
}

func TestSayReportsOutput(t *testing.T) {
	if runtime.GOOS != "darwin" && runtime.GOOS != "linux" {
		t.Skip("no synthesizer mapping on " + runtime.GOOS)
	}
	s, _ := fakeSystem(t, true)
	err := s.Say(context.Background(), "boom")
	if err == nil {
		t.Fatal("expected error")
	}
	if !strings.Contains(err.Error(), "synth exploded") {
		t.Errorf("error %q does not carry synthesizer output", err)
	}
}

func TestSayMissingSynthesizer(t *testing.T) {
	s := NewSystem(0)
	if s.Rate != DefaultRate {
		t.Errorf("Rate = %d, want %d", s.Rate, DefaultRate)
	}
	s.lookPath = func(string) (string, error) { return "", exec.ErrNotFound }
	if err := s.Say(context.Background(), "hi"); err == nil {
		t.Error("expected error when no synthesizer is installed")
	}
}

func TestFakeRecords(t *testing.T) {
	f := NewFake(errors.New("muted"))
	if err := f.Say(context.Background(), "one"); err == nil {
		t.Error("expected configured error")
	}
	if got := f.Spoken(); len(got) != 1 || got[0] != "one" {
		t.Errorf("Spoken() = %q", got)
	}
}
