// Package shellrun builds executor.RunFunc task bodies that shell out to an
// external command, piping its stdout/stderr through a ports.Logger line by
// line.
package shellrun

import (
	"context"
	"os/exec"
	"strings"

	"go.trai.ch/zerr"

	"go.trai.ch/ergo/executor"
	"go.trai.ch/ergo/internal/core/ports"
)

// New returns a RunFunc that runs name with args in dir (the process's
// current directory if dir is empty), logging its combined output through
// logger and translating a non-zero exit into a task failure carrying the
// exit code as error metadata.
func New(logger ports.Logger, dir string, name string, args ...string) executor.RunFunc {
	return func(ctx context.Context) error {
		cmd := exec.CommandContext(ctx, name, args...) //nolint:gosec // caller-provided command
		cmd.Dir = dir
		cmd.Stdout = &logWriter{logger: logger, isErr: false}
		cmd.Stderr = &logWriter{logger: logger, isErr: true}

		if err := cmd.Run(); err != nil {
			exitCode := -1
			var exitErr *exec.ExitError
			if ok := asExitError(err, &exitErr); ok {
				exitCode = exitErr.ExitCode()
			}
			return zerr.With(zerr.Wrap(err, "command failed"), "exit_code", exitCode)
		}

		return nil
	}
}

func asExitError(err error, target **exec.ExitError) bool {
	exitErr, ok := err.(*exec.ExitError)
	if !ok {
		return false
	}
	*target = exitErr
	return true
}

// logWriter adapts a ports.Logger to io.Writer, splitting on newlines since
// a Logger deals in whole messages, not byte streams.
type logWriter struct {
	logger ports.Logger
	isErr  bool
}

func (w *logWriter) Write(p []byte) (int, error) {
	for _, line := range strings.Split(strings.TrimSuffix(string(p), "\n"), "\n") {
		if line == "" {
			continue
		}
		if w.isErr {
			w.logger.Error(zerr.New(line))
		} else {
			w.logger.Info(line)
		}
	}
	return len(p), nil
}
