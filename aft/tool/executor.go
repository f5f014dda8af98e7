package tool

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/protalal11-ops/apk-forensic-toolkit/internal/log"
)

const redacted = "*******"

// Command is a single invocation of an external tool.
type Command struct {
	Tool Tool
	Args []string
	Dir  string
	// Redact lists argument values (e.g. passwords) that must never appear in logs or errors.
	Redact []string
	// SkipToolArgs omits the user-configured extra arguments (used for version probing).
	SkipToolArgs bool
}

// Argv is the full argument list, with the configured extra arguments placed before the invocation arguments.
func (c Command) Argv() []string {
	var argv []string
	if !c.SkipToolArgs {
		argv = append(argv, c.Tool.Args...)
	}
	return append(argv, c.Args...)
}

func (c Command) String() string {
	name := c.Tool.Path
	if name == "" {
		name = c.Tool.Name
	}
	return c.redact(strings.Join(append([]string{name}, c.Argv()...), " "))
}

func (c Command) redact(s string) string {
	for _, secret := range c.Redact {
		if secret == "" {
			continue
		}
		s = strings.ReplaceAll(s, secret, redacted)
	}
	return s
}

// Executor locates and runs external tools.
type Executor interface {
	// Locate returns the executable path for the tool, or an error wrapping afterr.ErrToolNotFound.
	Locate(t Tool) (string, error)
	// Run executes the command, streaming its output into the logger.
	Run(ctx context.Context, cmd Command) error
	// Output executes the command and returns its combined output.
	Output(ctx context.Context, cmd Command) ([]byte, error)
}

var _ Executor = (*ExecExecutor)(nil)

// ExecExecutor runs tools as child processes of the current process.
type ExecExecutor struct{}

func NewExecutor() ExecExecutor {
	return ExecExecutor{}
}

func (e ExecExecutor) Locate(t Tool) (string, error) {
	return t.Resolve()
}

func (e ExecExecutor) Run(ctx context.Context, cmd Command) error {
	ctx, cancel, cmdObj, err := e.prepare(ctx, cmd)
	if err != nil {
		return err
	}
	defer cancel()

	stdout := newLogWriter(cmd.Tool.Name)
	stderr := newLogWriter(cmd.Tool.Name)
	cmdObj.Stdout = stdout
	cmdObj.Stderr = stderr

	start := time.Now()
	runErr := cmdObj.Run()
	_ = stdout.Close()
	_ = stderr.Close()
	log.Debugf("%s finished in %s", cmd.Tool.Name, time.Since(start).Round(time.Millisecond))

	if runErr != nil {
		detail := stderr.LastLine()
		if detail == "" {
			detail = stdout.LastLine()
		}
		return cmd.wrapErr(ctx, runErr, detail)
	}
	return nil
}

func (e ExecExecutor) Output(ctx context.Context, cmd Command) ([]byte, error) {
	ctx, cancel, cmdObj, err := e.prepare(ctx, cmd)
	if err != nil {
		return nil, err
	}
	defer cancel()

	var buf bytes.Buffer
	cmdObj.Stdout = &buf
	cmdObj.Stderr = &buf

	if err := cmdObj.Run(); err != nil {
		return buf.Bytes(), cmd.wrapErr(ctx, err, strings.TrimSpace(buf.String()))
	}
	return buf.Bytes(), nil
}

func (e ExecExecutor) prepare(ctx context.Context, cmd Command) (context.Context, context.CancelFunc, *exec.Cmd, error) {
	path, err := cmd.Tool.Resolve()
	if err != nil {
		return ctx, nil, nil, err
	}

	cancel := context.CancelFunc(func() {})
	if cmd.Tool.Timeout > 0 {
		ctx, cancel = context.WithTimeout(ctx, cmd.Tool.Timeout)
	}

	log.Tracef("running %s (dir=%q): %s", cmd.Tool.Name, cmd.Dir, cmd.String())

	cmdObj := exec.CommandContext(ctx, path, cmd.Argv()...)
	cmdObj.Dir = cmd.Dir
	return ctx, cancel, cmdObj, nil
}

func (c Command) wrapErr(ctx context.Context, err error, detail string) error {
	if ctxErr := ctx.Err(); ctxErr != nil {
		return fmt.Errorf("%s interrupted: %w", c.Tool.Name, ctxErr)
	}

	detail = c.redact(detail)
	var exitErr *exec.ExitError
	if errors.As(err, &exitErr) {
		if detail != "" {
			return fmt.Errorf("%s failed (exit code %d): %s", c.Tool.Name, exitErr.ExitCode(), detail)
		}
		return fmt.Errorf("%s failed (exit code %d)", c.Tool.Name, exitErr.ExitCode())
	}
	return fmt.Errorf("%s failed: %w", c.Tool.Name, err)
}
