package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

type fakeExec struct {
	calls []string
	args  [][]string
	err   error
}

func (f *fakeExec) record(name string, args []string) error {
	f.calls = append(f.calls, name)
	f.args = append(f.args, args)
	return f.err
}

func (f *fakeExec) Upload(_ context.Context, args []string) error  { return f.record("upload", args) }
func (f *fakeExec) Replace(_ context.Context, args []string) error { return f.record("replace", args) }
func (f *fakeExec) List(_ context.Context, args []string) error    { return f.record("list", args) }
func (f *fakeExec) Latest(_ context.Context, args []string) error  { return f.record("latest", args) }
func (f *fakeExec) Delete(_ context.Context, args []string) error  { return f.record("delete", args) }

func captureOutput(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, fmt.Sprintln(a...))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_DispatchesCommands(t *testing.T) {
	out := captureOutput(t)

	input := strings.NewReader(strings.Join([]string{
		"help",
		"upload Tenant 42 TenantImage ./me.png",
		"",
		"replace Tenant 42 TenantImage ./me2.png 7",
		"l Tenant 42",
		"latest Tenant 42 TenantImage",
		"delete 7",
		"foobar",
		"exit",
		"upload never reached",
	}, "\n"))

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "status" }, bufio.NewReader(input))

	want := []string{"upload", "replace", "list", "latest", "delete"}
	if strings.Join(exec.calls, ",") != strings.Join(want, ",") {
		t.Fatalf("calls = %v, want %v", exec.calls, want)
	}
	if got := strings.Join(exec.args[0], " "); got != "Tenant 42 TenantImage ./me.png" {
		t.Fatalf("upload args = %q", got)
	}
	joined := strings.Join(*out, "")
	if !strings.Contains(joined, "Unknown command: foobar") {
		t.Fatalf("unknown command not reported: %q", joined)
	}
	if !strings.Contains(joined, "Bye!") {
		t.Fatalf("no goodbye: %q", joined)
	}
}

func TestRunREPL_PrintsErrorsAndContinues(t *testing.T) {
	out := captureOutput(t)

	exec := &fakeExec{err: errors.New("kaput")}
	runREPL(context.Background(), exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("delete 1\ndelete 2")))

	if len(exec.calls) != 2 {
		t.Fatalf("expected both commands to run, got %v", exec.calls)
	}
	if !strings.Contains(strings.Join(*out, ""), "Error: kaput") {
		t.Fatalf("error not printed: %v", *out)
	}
}

func TestRunREPL_StopsWhenContextDone(t *testing.T) {
	captureOutput(t)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	exec := &fakeExec{}
	runREPL(ctx, exec, func() string { return "s" }, bufio.NewReader(strings.NewReader("delete 1\n")))
	if len(exec.calls) != 0 {
		t.Fatalf("unexpected calls: %v", exec.calls)
	}
}
