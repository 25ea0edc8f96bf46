// Package clock implements ports.Clock over the system wall clock.
package clock

import "time"

// Real reads wall-clock time straight from the time package. It carries no
// state and is safe for concurrent use.
type Real struct{}

// Now returns time.Now().
func (Real) Now() time.Time {
	return time.Now()
}
