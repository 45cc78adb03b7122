// Package runner builds argv for delegated commands, executes them with
// inherited stdio, and propagates their exit status.
package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/exec"
	"time"

	"github.com/charmbracelet/log"
	"github.com/mattn/go-shellwords"
)

// Runner errors.
var (
	ErrMissingCommand = errors.New("missing command")
	ErrEmptyCommand   = errors.New("command is empty")
)

// ExitError carries the exit status of a delegated command.
type ExitError struct {
	// Argv is the argument vector that was executed.
	Argv []string
	// Code is the subprocess exit status.
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("%s exited with status %d", e.Argv[0], e.Code)
}

// Run describes a completed delegated command.
type Run struct {
	Argv      []string
	ExitCode  int
	StartedAt time.Time
	Duration  time.Duration
}

// Recorder receives completed runs for the history store. Recording is
// best-effort: failures are logged and never change the delegated exit
// status.
type Recorder interface {
	Record(run Run) error
}

// Runner executes delegated commands. Zero value is not usable; use New.
type Runner struct {
	// Logger receives debug/warn output. Required.
	Logger *log.Logger
	// Recorder, when set, receives every completed run.
	Recorder Recorder
	// Stdin, Stdout, Stderr are handed to the subprocess.
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
}

// New creates a Runner with stdio inherited from this process.
func New(logger *log.Logger) *Runner {
	return &Runner{
		Logger: logger,
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
	}
}

// Argv tokenizes command shell-style and appends param as a single element.
// The parameter is never re-split: a param containing whitespace reaches the
// subprocess as one argument.
func Argv(command, param string) ([]string, error) {
	tokens, err := shellwords.Parse(command)
	if err != nil {
		return nil, fmt.Errorf("parsing command: %w", err)
	}
	if len(tokens) == 0 {
		return nil, ErrEmptyCommand
	}
	if param != "" {
		tokens = append(tokens, param)
	}
	return tokens, nil
}

// RunConditional implements the conditional dispatch contract: no arguments
// is an error, a lone command is a successful no-op, otherwise the command
// runs with the parameter appended.
func (r *Runner) RunConditional(ctx context.Context, args []string) error {
	switch len(args) {
	case 0:
		return ErrMissingCommand
	case 1:
		r.Logger.Debug("no parameter given, nothing to run", "command", args[0])
		return nil
	default:
		return r.Run(ctx, args[0], args[1])
	}
}

// Run executes command with param appended as one argv element.
func (r *Runner) Run(ctx context.Context, command, param string) error {
	argv, err := Argv(command, param)
	if err != nil {
		return err
	}
	return r.RunArgv(ctx, argv)
}

// RunCommand executes a command string with no extra parameter.
func (r *Runner) RunCommand(ctx context.Context, command string) error {
	argv, err := Argv(command, "")
	if err != nil {
		return err
	}
	return r.RunArgv(ctx, argv)
}

// RunArgv executes argv directly, blocking until the subprocess exits. A
// nonzero exit status is returned as an *ExitError so callers can propagate
// it as their own.
func (r *Runner) RunArgv(ctx context.Context, argv []string) error {
	if len(argv) == 0 {
		return ErrEmptyCommand
	}

	cmd := exec.CommandContext(ctx, argv[0], argv[1:]...)
	cmd.Stdin = r.Stdin
	cmd.Stdout = r.Stdout
	cmd.Stderr = r.Stderr

	r.Logger.Debug("executing", "argv", argv)

	start := time.Now()
	err := cmd.Run()
	duration := time.Since(start)

	if err != nil {
		var exitErr *exec.ExitError
		if !errors.As(err, &exitErr) {
			// The subprocess never started (e.g. command not found).
			return fmt.Errorf("running %s: %w", argv[0], err)
		}
		code := exitErr.ExitCode()
		r.record(Run{Argv: argv, ExitCode: code, StartedAt: start, Duration: duration})
		return &ExitError{Argv: argv, Code: code}
	}

	r.record(Run{Argv: argv, ExitCode: 0, StartedAt: start, Duration: duration})
	return nil
}

func (r *Runner) record(run Run) {
	if r.Recorder == nil {
		return
	}
	if err := r.Recorder.Record(run); err != nil {
		r.Logger.Warn("recording run failed", "err", err)
	}
}
