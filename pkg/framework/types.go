// Package framework provides the execution skeleton of the instrument:
// a cooperative polling loop for the main context, a runner supervising
// background goroutines, and the tick source that stands in for the
// periodic hardware interrupt.
package framework

import "context"

// Named is an abstraction for things with a name.
type Named interface {
	Name() string
}

// Runnable defines a generic interface for background runners.
type Runnable interface {
	Run(context.Context) error
}

// RunFunc is the func form of Runnable.
type RunFunc func(context.Context) error

// Run implements Runnable.
func (f RunFunc) Run(ctx context.Context) error {
	return f(ctx)
}

// Pollable is a component serviced by the cooperative loop. Poll must
// never block: it does whatever work is currently pending and returns.
type Pollable interface {
	Poll()
}

// PollFunc is the func form of Pollable.
type PollFunc func()

// Poll implements Pollable.
func (f PollFunc) Poll() {
	f()
}
