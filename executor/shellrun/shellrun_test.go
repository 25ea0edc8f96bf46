package shellrun_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"go.trai.ch/ergo/executor/shellrun"
)

type recordingLogger struct {
	infos  []string
	errors []error
}

func (l *recordingLogger) Info(msg string) { l.infos = append(l.infos, msg) }
func (l *recordingLogger) Error(err error) { l.errors = append(l.errors, err) }

func TestNew_Success(t *testing.T) {
	lg := &recordingLogger{}
	run := shellrun.New(lg, "", "echo", "hello")

	require.NoError(t, run(context.Background()))
	require.Contains(t, lg.infos, "hello")
	require.Empty(t, lg.errors)
}

func TestNew_NonZeroExit(t *testing.T) {
	lg := &recordingLogger{}
	run := shellrun.New(lg, "", "sh", "-c", "exit 3")

	err := run(context.Background())
	require.Error(t, err)
	require.Contains(t, err.Error(), "command failed")
}
