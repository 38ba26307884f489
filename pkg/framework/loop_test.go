package framework

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/chargelab/meter.go/pkg/rt/clock"
)

func TestLoopServicesInRegistrationOrder(t *testing.T) {
	loop := NewLoop()
	var order []string
	loop.AddFunc(func() { order = append(order, "a") })
	loop.Add(PollFunc(func() { order = append(order, "b") }))

	loop.RunOnce()
	loop.RunOnce()
	require.Equal(t, []string{"a", "b", "a", "b"}, order)
}

func TestLoopRunStopsOnContext(t *testing.T) {
	loop := NewLoop()
	loop.Interval = time.Millisecond

	polled := make(chan struct{}, 1)
	loop.AddFunc(func() {
		select {
		case polled <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- loop.Run(ctx) }()

	select {
	case <-polled:
	case <-time.After(time.Second):
		t.Fatal("loop never polled")
	}
	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}

func TestLoopTriggerNext(t *testing.T) {
	loop := NewLoop()
	loop.Interval = time.Hour // only wake-ups drive iterations

	polled := make(chan struct{}, 1)
	loop.AddFunc(func() {
		select {
		case polled <- struct{}{}:
		default:
		}
	})

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go loop.Run(ctx)

	loop.TriggerNext()
	select {
	case <-polled:
	case <-time.After(time.Second):
		t.Fatal("TriggerNext did not wake the loop")
	}
}

func TestRunnerAggregatesErrors(t *testing.T) {
	errBoom := errors.New("boom")
	runner := NewRunner()
	runner.Go(RunFunc(func(ctx context.Context) error { return errBoom }))
	runner.Go(RunFunc(func(ctx context.Context) error { return nil }))

	err := runner.Wait()
	require.Error(t, err)
	var agg *AggregatedError
	require.ErrorAs(t, err, &agg)
	require.Equal(t, []error{errBoom}, agg.Errors)
}

func TestRunnerTreatsCancelAsCleanStop(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	runner := NewRunnerWith(ctx)
	runner.Go(RunFunc(func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	}))
	cancel()
	require.NoError(t, runner.Wait())
}

func TestNamedRun(t *testing.T) {
	r := NamedRun("probe", RunFunc(func(ctx context.Context) error { return nil }))
	named, ok := r.(Named)
	require.True(t, ok)
	require.Equal(t, "probe", named.Name())
}

func TestTickSourceDrivesClock(t *testing.T) {
	tk := clock.MustNew(1024)
	src := NewTickSource(tk)
	require.Equal(t, "ticksource", src.Name())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- src.Run(ctx) }()

	require.Eventually(t, func() bool {
		return tk.Ticks() >= 64
	}, 2*time.Second, time.Millisecond)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)
}
