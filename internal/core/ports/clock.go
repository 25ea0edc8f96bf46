package ports

import "time"

// Clock defines the interface for reading the current wall-clock time.
//
// The executor core never calls time.Now() directly; it reads time only
// through this port, so time triggers can be tested without real sleeps.
//
//go:generate go run go.uber.org/mock/mockgen -source=clock.go -destination=mocks/mock_clock.go -package=mocks
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}
