package nixutil

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// Once runs a library bootstrap call at most once and caches its outcome.
//
// Concurrent first callers block until the single execution completes and
// all observe the same result. A failure is never retried. If the bootstrap
// panics, every later Do panics with the same value.
//
// Thread-safety: safe for concurrent use.
type Once struct {
	do    func() error
	calls atomic.Int32
}

// NewOnce returns a Once that runs fn. name identifies the bootstrap call in
// errors and logs.
func NewOnce(name string, fn func() error) *Once {
	o := &Once{}
	o.do = sync.OnceValue(func() error {
		o.calls.Add(1)
		if err := fn(); err != nil {
			slog.Error("native library initialization failed", "call", name, "error", err)
			return &Error{
				Kind:    KindInitialization,
				Message: fmt.Sprintf("%s failed", name),
				Err:     err,
			}
		}
		return nil
	})
	return o
}

// Do runs the bootstrap on first use and returns the cached outcome.
// A failure is returned as a KindInitialization *Error.
func (o *Once) Do() error {
	return o.do()
}

// Calls returns how many times the bootstrap ran: 0 or 1.
func (o *Once) Calls() int {
	return int(o.calls.Load())
}
