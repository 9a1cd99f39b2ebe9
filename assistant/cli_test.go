package assistant

import (
	"context"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
)

// TestHelperProcess plays the assistant CLI. HELPER_MODE picks the
// behaviour; the received argv and cwd are echoed on stdout.
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
	switch os.Getenv("HELPER_MODE") {
	case "fail":
		fmt.Fprint(os.Stderr, "auth required")
		os.Exit(1)
	case "silent-fail":
		os.Exit(2)
	case "sessions":
		fmt.Print(`[{"id":"0123456789abcdef","title":"latest"},{"id":"older"}]`)
	case "sessions-empty":
		fmt.Print(`[]`)
	case "sessions-garbage":
		fmt.Print(`not json`)
	default:
		wd, _ := os.Getwd()
		fmt.Printf("  cwd=%s\nargs=%s\n\n", wd, strings.Join(args, "|"))
	}
	os.Exit(0)
}

func helperCLI(t *testing.T, mode string) (*CLI, *[]string) {
	t.Helper()
	var got []string
	c := NewCLI([]string{"npx", "@augmentcode/auggie"})
	c.command = func(ctx context.Context, name string, args ...string) *exec.Cmd {
		got = append([]string{name}, args...)
		cs := append([]string{"-test.run=TestHelperProcess", "--", name}, args...)
		cmd := exec.CommandContext(ctx, os.Args[0], cs...)
		cmd.Env = append(os.Environ(), "GO_WANT_HELPER_PROCESS=1", "HELPER_MODE="+mode)
		return cmd
	}
	return c, &got
}

func TestArgs(t *testing.T) {
	c := NewCLI(nil)
	base := []string{"-i", "fix it", "-w", "/ws", "--print", "--quiet"}
	tests := []struct {
		name string
		req  Request
		want []string
	}{
		{"fresh", Request{Instruction: "fix it", Workspace: "/ws"}, base},
		{"continue", Request{Instruction: "fix it", Workspace: "/ws", Mode: ModeContinue},
			append(append([]string{}, base...), "--continue")},
		{"resume", Request{Instruction: "fix it", Workspace: "/ws", Mode: ModeResume, SessionID: "abc"},
			append(append([]string{}, base...), "--resume", "abc")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Args(tt.req); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Args = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestNewRequestMode(t *testing.T) {
	tests := []struct {
		name       string
		sessionID  string
		continuing bool
		want       Mode
	}{
		{"first turn", "", false, ModeFresh},
		{"continue latest", "", true, ModeContinue},
		{"resume known", "abc", true, ModeResume},
		{"resume wins without flag", "abc", false, ModeResume},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := NewRequest("hi", "/ws", tt.sessionID, tt.continuing)
			if req.Mode != tt.want {
				t.Errorf("Mode = %v, want %v", req.Mode, tt.want)
			}
		})
	}
}

func TestRunSuccess(t *testing.T) {
	ws := t.TempDir()
	c, got := helperCLI(t, "ok")
	res := c.Run(context.Background(), Request{Instruction: "hello world", Workspace: ws, Mode: ModeContinue})
	if !res.OK {
		t.Fatalf("Run failed: %+v", res)
	}
	if (*got)[0] != "npx" || (*got)[1] != "@augmentcode/auggie" {
		t.Errorf("launcher = %q", (*got)[:2])
	}
	if strings.HasPrefix(res.Output, " ") || strings.HasSuffix(res.Output, "\n") {
		t.Errorf("output not trimmed: %q", res.Output)
	}
	wantArgs := "args=npx|@augmentcode/auggie|-i|hello world|-w|" + ws + "|--print|--quiet|--continue"
	if !strings.Contains(res.Output, wantArgs) {
		t.Errorf("output %q missing %q", res.Output, wantArgs)
	}
	realWS, _ := filepath.EvalSymlinks(ws)
	if !strings.Contains(res.Output, "cwd="+ws) && !strings.Contains(res.Output, "cwd="+realWS) {
		t.Errorf("subprocess did not run in workspace: %q", res.Output)
	}
	if res.Text() != res.Output {
		t.Errorf("Text() = %q, want output", res.Text())
	}
}

func TestRunFailureEmbedsStderr(t *testing.T) {
	c, _ := helperCLI(t, "fail")
	res := c.Run(context.Background(), Request{Instruction: "x", Workspace: t.TempDir()})
	if res.OK {
		t.Fatal("expected failure")
	}
	if res.Text() != "Error: auth required" {
		t.Errorf("Text() = %q", res.Text())
	}
}

func TestRunFailureWithoutStderr(t *testing.T) {
	c, _ := helperCLI(t, "silent-fail")
	res := c.Run(context.Background(), Request{Instruction: "x", Workspace: t.TempDir()})
	if res.OK {
		t.Fatal("expected failure")
	}
	if !strings.HasPrefix(res.Text(), "Error: ") || !strings.Contains(res.Diagnostic, "2") {
		t.Errorf("Text() = %q", res.Text())
	}
}

func TestRunMissingLauncher(t *testing.T) {
	c := NewCLI([]string{filepath.Join(t.TempDir(), "no-such-binary")})
	res := c.Run(context.Background(), Request{Instruction: "x", Workspace: t.TempDir()})
	if res.OK || res.Diagnostic == "" {
		t.Errorf("expected diagnostic, got %+v", res)
	}
}

func TestLatestSession(t *testing.T) {
	tests := []struct {
		mode   string
		wantID string
		wantOK bool
	}{
		{"sessions", "0123456789abcdef", true},
		{"sessions-empty", "", false},
		{"sessions-garbage", "", false},
		{"fail", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			c, got := helperCLI(t, tt.mode)
			id, ok := c.LatestSession(context.Background())
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("LatestSession = %q, %v; want %q, %v", id, ok, tt.wantID, tt.wantOK)
			}
			want := []string{"npx", "@augmentcode/auggie", "session", "list", "--json"}
			if !reflect.DeepEqual(*got, want) {
				t.Errorf("argv = %q, want %q", *got, want)
			}
		})
	}
}

func TestParseLatest(t *testing.T) {
	tests := []struct {
		in     string
		wantID string
		wantOK bool
	}{
		{`[{"id":"a"},{"id":"b"}]`, "a", true},
		{`  [{"id":"a"}]  `, "a", true},
		{``, "", false},
		{`{"id":"a"}`, "", false},
		{`[{"name":"x"}]`, "", false},
		{`[`, "", false},
	}
	for _, tt := range tests {
		id, ok := parseLatest([]byte(tt.in))
		if id != tt.wantID || ok != tt.wantOK {
			t.Errorf("parseLatest(%q) = %q, %v; want %q, %v", tt.in, id, ok, tt.wantID, tt.wantOK)
		}
	}
}

func TestShortID(t *testing.T) {
	if got := ShortID("0123456789"); got != "01234567" {
		t.Errorf("ShortID = %q", got)
	}
	if got := ShortID("abc"); got != "abc" {
		t.Errorf("ShortID = %q", got)
	}
}

func TestFakeQueue(t *testing.T) {
	f := NewFake(Result{OK: true, Output: "one"}, Result{OK: true, Output: "two"})
	ctx := context.Background()
	outs := []string{
		f.Run(ctx, Request{}).Output,
		f.Run(ctx, Request{}).Output,
		f.Run(ctx, Request{}).Output,
	}
	if !reflect.DeepEqual(outs, []string{"one", "two", "two"}) {
		t.Errorf("outputs = %q", outs)
	}
	if len(f.Requests()) != 3 {
		t.Errorf("requests = %d", len(f.Requests()))
	}
}
