package logger_test

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/require"

	"go.trai.ch/ergo/internal/adapters/logger"
	"go.trai.ch/zerr"
)

func TestLogger_Info(t *testing.T) {
	var buf bytes.Buffer
	lg := logger.New()
	lg.SetOutput(&buf)

	lg.Info("task submitted")

	require.Contains(t, buf.String(), "task submitted")
	require.Contains(t, buf.String(), "INFO")
}

func TestLogger_Error_SurfacesTaskMetadata(t *testing.T) {
	var buf bytes.Buffer
	lg := logger.New()
	lg.SetOutput(&buf)

	err := zerr.With(zerr.Wrap(zerr.New("command failed"), "task failed"), "task.fingerprint", "deadbeef")
	lg.Error(err)

	out := buf.String()
	require.Contains(t, out, "ERROR")
	require.Contains(t, out, "task failed")
	require.Contains(t, out, "task.fingerprint: deadbeef")
	require.Contains(t, out, "command failed")
}

func TestLogger_Error_NilIsNoop(t *testing.T) {
	var buf bytes.Buffer
	lg := logger.New()
	lg.SetOutput(&buf)

	lg.Error(nil)

	require.Empty(t, buf.String())
}
