package framework

import (
	"context"
	"time"
)

// DefaultLoopInterval paces the loop when nothing asks for an immediate
// next iteration.
const DefaultLoopInterval = time.Millisecond

// Loop is the cooperative main context of the instrument. Every
// registered Pollable is serviced once per iteration, in registration
// order; nothing serviced by the loop may block. Timer sweeps, protocol
// endpoint hubs and the acquisition engine all run here, which is what
// lets them share mutable state without any guard of their own.
type Loop struct {
	Interval time.Duration

	pollables []Pollable
	wakeUpCh  chan struct{}
}

// NewLoop creates a Loop with the default interval.
func NewLoop() *Loop {
	return &Loop{
		Interval: DefaultLoopInterval,
		wakeUpCh: make(chan struct{}, 1),
	}
}

// Add registers Pollables. Not safe once the loop is running.
func (l *Loop) Add(pollables ...Pollable) *Loop {
	l.pollables = append(l.pollables, pollables...)
	return l
}

// AddFunc registers a bare poll function.
func (l *Loop) AddFunc(fn func()) *Loop {
	return l.Add(PollFunc(fn))
}

// TriggerNext schedules the next iteration to run immediately after the
// current one. Safe from any goroutine.
func (l *Loop) TriggerNext() {
	select {
	case l.wakeUpCh <- struct{}{}:
	default:
	}
}

// RunOnce services every Pollable once.
func (l *Loop) RunOnce() {
	for _, p := range l.pollables {
		p.Poll()
	}
}

// Run implements Runnable.
func (l *Loop) Run(ctx context.Context) error {
	interval := l.Interval
	if interval == 0 {
		interval = DefaultLoopInterval
	}
	pace := time.NewTicker(interval)
	defer pace.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-pace.C:
			l.RunOnce()
		case <-l.wakeUpCh:
			l.RunOnce()
		}
	}
}
