package command

import (
	"bytes"
	"context"
	"errors"
	"os/exec"
	"runtime"
	"time"

	"go.uber.org/zap"
)

const waitDelay = time.Second

var (
	ErrDisabled    = errors.New("command execution is disabled")
	ErrUnsupported = errors.New("command execution is not supported")
)

// Output is what a finished command wrote. Err is set when the command could
// not start or exited unsuccessfully; both streams are kept in either case.
type Output struct {
	Stdout string
	Stderr string
	Err    error
}

// Runner executes shell command lines on the host.
type Runner struct {
	refusal error
	logger  *zap.Logger
}

func NewRunner(enabled bool, logger *zap.Logger) *Runner {
	if enabled {
		return newRunner(nil, logger)
	}
	return newRunner(ErrDisabled, logger)
}

// NewRefusingRunner returns a Runner that answers every command with reason.
// It serves workspaces whose files do not live on the host.
func NewRefusingRunner(reason error, logger *zap.Logger) *Runner {
	return newRunner(reason, logger)
}

func newRunner(refusal error, logger *zap.Logger) *Runner {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Runner{refusal: refusal, logger: logger.Named("command")}
}

// Execute runs line through the platform shell in cwd, or in the process
// working directory when cwd is empty. Cancelling ctx kills the command.
func (r *Runner) Execute(ctx context.Context, line, cwd string) Output {
	if r.refusal != nil {
		return Output{Err: r.refusal}
	}

	cmd := shellCommand(ctx, line)
	cmd.Dir = cwd
	// Children of the shell may hold the output pipes open after it is killed.
	cmd.WaitDelay = waitDelay

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	err := cmd.Run()
	if err != nil {
		r.logger.Info("command failed", zap.String("command", line), zap.String("cwd", cwd), zap.Error(err))
	} else {
		r.logger.Debug("command finished", zap.String("command", line), zap.String("cwd", cwd))
	}
	return Output{Stdout: stdout.String(), Stderr: stderr.String(), Err: err}
}

func shellCommand(ctx context.Context, line string) *exec.Cmd {
	if runtime.GOOS == "windows" {
		return exec.CommandContext(ctx, "cmd", "/C", line)
	}
	return exec.CommandContext(ctx, "sh", "-c", line)
}
