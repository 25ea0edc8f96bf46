package clock_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"go.trai.ch/ergo/internal/adapters/clock"
)

func TestReal_Now(t *testing.T) {
	before := time.Now()
	got := clock.Real{}.Now()
	after := time.Now()

	require.False(t, got.Before(before))
	require.False(t, got.After(after))
}
