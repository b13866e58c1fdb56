// Package runner executes local diagnostic commands and reads host files.
package runner

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"
)

// DefaultTimeout bounds a command that does not set its own timeout.
const DefaultTimeout = 10 * time.Second

var (
	// ErrCommandUnavailable means the binary is missing or could not be started.
	ErrCommandUnavailable = errors.New("command unavailable")
	// ErrCommandTimeout means the command was killed after its timeout.
	ErrCommandTimeout = errors.New("command timed out")
	// ErrCommandFailed means the command ran but exited non-zero.
	ErrCommandFailed = errors.New("command failed")
)

// Command is one invocation of an external tool. Arguments are passed
// directly, without a shell.
type Command struct {
	Name    string
	Args    []string
	Timeout time.Duration // zero uses the runner default
}

// Cmd builds a Command with the default timeout.
func Cmd(name string, args ...string) Command {
	return Command{Name: name, Args: args}
}

// WithTimeout returns a copy of c with an explicit timeout.
func (c Command) WithTimeout(d time.Duration) Command {
	c.Timeout = d
	return c
}

func (c Command) String() string {
	if len(c.Args) == 0 {
		return c.Name
	}
	return c.Name + " " + strings.Join(c.Args, " ")
}

// Result holds the captured output of a command.
type Result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// OK reports whether the command exited zero.
func (r Result) OK() bool {
	return r.ExitCode == 0
}

// Runner executes commands. A non-zero exit is reported in Result, not as an error;
// errors are limited to ErrCommandUnavailable and ErrCommandTimeout.
type Runner interface {
	Run(ctx context.Context, cmd Command) (Result, error)
}

// Host is a Runner that can also read the host filesystem.
type Host interface {
	Runner
	ReadFile(path string) (string, error)
	Glob(pattern string) ([]string, error)
}

// Output runs cmd and returns stdout when it exits zero.
func Output(ctx context.Context, r Runner, cmd Command) (string, error) {
	res, err := r.Run(ctx, cmd)
	if err != nil {
		return "", err
	}
	if !res.OK() {
		return res.Stdout, fmt.Errorf("%s: %w (exit %d: %s)", cmd, ErrCommandFailed, res.ExitCode, strings.TrimSpace(res.Stderr))
	}
	return res.Stdout, nil
}

// Local runs commands on the machine the agent is running on.
type Local struct {
	timeout time.Duration
	log     *slog.Logger
}

// NewLocal creates a Local runner. A zero timeout selects DefaultTimeout.
func NewLocal(timeout time.Duration) *Local {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &Local{
		timeout: timeout,
		log:     slog.Default().With("component", "runner"),
	}
}

// Run executes cmd with its timeout and captures stdout and stderr.
func (l *Local) Run(ctx context.Context, c Command) (Result, error) {
	timeout := c.Timeout
	if timeout <= 0 {
		timeout = l.timeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, c.Name, c.Args...)
	cmd.WaitDelay = time.Second

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	start := time.Now()
	err := cmd.Run()
	res := Result{
		Stdout: stdout.String(),
		Stderr: stderr.String(),
	}

	var exitErr *exec.ExitError
	switch {
	case err == nil:
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		res.ExitCode = -1
		err = fmt.Errorf("%s: %w after %s", c, ErrCommandTimeout, timeout)
	case ctx.Err() != nil:
		res.ExitCode = -1
		err = fmt.Errorf("%s: %w", c, ctx.Err())
	case errors.As(err, &exitErr):
		res.ExitCode = exitErr.ExitCode()
		err = nil
	default:
		res.ExitCode = -1
		err = fmt.Errorf("%s: %w: %v", c, ErrCommandUnavailable, err)
	}

	l.log.Debug("command finished",
		"command", c.Name,
		"args", c.Args,
		"exit_code", res.ExitCode,
		"duration", time.Since(start),
		"error", err,
	)
	return res, err
}

// ReadFile reads a file from the host filesystem.
func (l *Local) ReadFile(path string) (string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// Glob returns the host paths matching pattern.
func (l *Local) Glob(pattern string) ([]string, error) {
	return filepath.Glob(pattern)
}
