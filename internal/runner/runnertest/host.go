// Package runnertest provides a scripted runner.Host for tests.
package runnertest

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/tinkerbelle-io/tb-asset/internal/runner"
)

// Host answers commands and file reads from fixed tables. Commands are keyed
// by their full command line ("name arg1 arg2"). Unscripted commands behave
// like a missing binary.
type Host struct {
	commands map[string]runner.Result
	errors   map[string]error
	files    map[string]string

	// Calls records every command run, in order.
	Calls []runner.Command
}

// New creates an empty Host.
func New() *Host {
	return &Host{
		commands: make(map[string]runner.Result),
		errors:   make(map[string]error),
		files:    make(map[string]string),
	}
}

// On scripts a successful command.
func (h *Host) On(cmdline, stdout string) *Host {
	h.commands[cmdline] = runner.Result{Stdout: stdout}
	return h
}

// OnExit scripts a command that exits with code.
func (h *Host) OnExit(cmdline string, code int, stderr string) *Host {
	h.commands[cmdline] = runner.Result{Stderr: stderr, ExitCode: code}
	return h
}

// Fail scripts a command that returns err.
func (h *Host) Fail(cmdline string, err error) *Host {
	h.errors[cmdline] = err
	return h
}

// File adds a host file.
func (h *Host) File(name, content string) *Host {
	h.files[name] = content
	return h
}

// Run implements runner.Runner.
func (h *Host) Run(_ context.Context, c runner.Command) (runner.Result, error) {
	h.Calls = append(h.Calls, c)
	key := c.String()
	if err, ok := h.errors[key]; ok {
		return runner.Result{ExitCode: -1}, err
	}
	if res, ok := h.commands[key]; ok {
		return res, nil
	}
	return runner.Result{ExitCode: -1}, fmt.Errorf("%s: %w", key, runner.ErrCommandUnavailable)
}

// ReadFile implements runner.Host.
func (h *Host) ReadFile(name string) (string, error) {
	content, ok := h.files[name]
	if !ok {
		return "", &fs.PathError{Op: "open", Path: name, Err: fs.ErrNotExist}
	}
	return content, nil
}

// Glob matches pattern against scripted files and their parent directories.
func (h *Host) Glob(pattern string) ([]string, error) {
	seen := make(map[string]bool)
	for name := range h.files {
		for p := name; p != "/" && p != "."; p = path.Dir(p) {
			ok, err := path.Match(pattern, p)
			if err != nil {
				return nil, err
			}
			if ok {
				seen[p] = true
			}
		}
	}
	matches := make([]string, 0, len(seen))
	for p := range seen {
		matches = append(matches, p)
	}
	sort.Strings(matches)
	return matches, nil
}

// Ran reports whether any recorded command line contains substr.
func (h *Host) Ran(substr string) bool {
	for _, c := range h.Calls {
		if strings.Contains(c.String(), substr) {
			return true
		}
	}
	return false
}

// Call returns the first recorded command whose line starts with prefix.
func (h *Host) Call(prefix string) (runner.Command, bool) {
	for _, c := range h.Calls {
		if strings.HasPrefix(c.String(), prefix) {
			return c, true
		}
	}
	return runner.Command{}, false
}
