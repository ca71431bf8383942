package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

type fakeExec struct {
	loggedIn bool
	calls    []string
	fail     error
}

func (f *fakeExec) isLoggedIn() bool { return f.loggedIn }

func (f *fakeExec) record(name string, args ...string) error {
	f.calls = append(f.calls, strings.TrimSpace(name+" "+strings.Join(args, " ")))
	return f.fail
}

func (f *fakeExec) Register(context.Context) error { return f.record("register") }
func (f *fakeExec) Login(context.Context) error {
	f.loggedIn = true
	return f.record("login")
}
func (f *fakeExec) Logout(context.Context) error {
	f.loggedIn = false
	return f.record("logout")
}
func (f *fakeExec) Me(context.Context) error   { return f.record("me") }
func (f *fakeExec) List(context.Context) error { return f.record("list") }
func (f *fakeExec) Add(context.Context) error  { return f.record("add") }
func (f *fakeExec) Show(_ context.Context, args []string) error {
	return f.record("show", args...)
}
func (f *fakeExec) Done(_ context.Context, args []string) error {
	return f.record("done", args...)
}
func (f *fakeExec) Delete(_ context.Context, args []string) error {
	return f.record("delete", args...)
}

func capturePrints(t *testing.T) *[]string {
	t.Helper()
	var lines []string
	orig := printlnFn
	printlnFn = func(a ...any) (int, error) {
		lines = append(lines, strings.TrimSuffix(fmt.Sprintln(a...), "\n"))
		return 0, nil
	}
	t.Cleanup(func() { printlnFn = orig })
	return &lines
}

func TestRunREPL_Dispatch(t *testing.T) {
	lines := capturePrints(t)

	input := strings.Join([]string{
		"help",
		"login",
		"help",
		"",
		"me",
		"l",
		"add",
		"show 7",
		"done 7",
		"delete 7",
		"foobar",
		"logout",
		"exit",
		"list",
	}, "\n")

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr(input))

	assert.Equal(t, []string{"login", "me", "list", "add", "show 7", "done 7", "delete 7", "logout"}, exec.calls)
	assert.Contains(t, *lines, "Available commands: register, login, exit")
	assert.Contains(t, *lines, "Available commands: me, (l)ist, add, show <id>, done <id>, delete <id>, logout, exit")
	assert.Contains(t, *lines, "Unknown command: foobar")
	assert.Equal(t, "Bye!", (*lines)[len(*lines)-1])
}

func TestRunREPL_StopsAtEOF(t *testing.T) {
	capturePrints(t)

	exec := &fakeExec{}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("register"))

	assert.Equal(t, []string{"register"}, exec.calls)
}

func TestRunREPL_PrintsErrorsAndContinues(t *testing.T) {
	lines := capturePrints(t)

	exec := &fakeExec{fail: errors.New("nope")}
	runREPL(context.Background(), exec, func() string { return "" }, rdr("list\nme\nquit\n"))

	assert.Equal(t, []string{"list", "me"}, exec.calls)
	assert.Contains(t, *lines, "Error: nope")
}
