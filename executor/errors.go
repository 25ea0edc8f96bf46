package executor

import "go.trai.ch/zerr"

// ErrTaskPanicked wraps a recovered panic from inside a task body. The
// executor treats it like any other run failure: the task moves to FAILED
// and its error is ErrTaskPanicked with the panic value attached as
// "recovered" metadata.
var ErrTaskPanicked = zerr.New("task panicked")
