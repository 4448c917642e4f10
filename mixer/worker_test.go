// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/ik5/mixbridge/internal/audiotest"
)

func waitFor(t *testing.T, cond func() bool) {
	t.Helper()

	deadline := time.Now().Add(2 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatal("condition not met before deadline")
		}
		time.Sleep(time.Millisecond)
	}
}

func newFastEngine(t *testing.T) *Engine {
	t.Helper()

	cfg := DefaultConfig()
	cfg.Interval = time.Millisecond
	e, err := NewEngine(cfg, WithLogger(zaptest.NewLogger(t)))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { e.Close() })

	return e
}

func TestWorker_StartStop(t *testing.T) {
	t.Parallel()

	e := newFastEngine(t)
	e.Register(audiotest.NewConstantFeed(1024*64, 0.5))

	if err := e.Start(); err != nil {
		t.Fatalf("Start() error = %v", err)
	}
	if err := e.Start(); !errors.Is(err, ErrRunning) {
		t.Errorf("second Start() error = %v, want ErrRunning", err)
	}
	if !e.Running() {
		t.Error("Running() = false after Start()")
	}

	waitFor(t, func() bool { return e.Stats().Cycles >= 3 })

	e.Stop()
	e.Stop()

	if e.Running() {
		t.Error("Running() = true after Stop()")
	}
	assertAll(t, e.Snapshot(), 0)

	cycles := e.Stats().Cycles
	time.Sleep(10 * time.Millisecond)
	if e.Stats().Cycles != cycles {
		t.Error("worker kept mixing after Stop()")
	}
}

func TestWorker_Restart(t *testing.T) {
	t.Parallel()

	e := newFastEngine(t)

	for range 3 {
		if err := e.Start(); err != nil {
			t.Fatalf("Start() error = %v", err)
		}
		e.Stop()
	}
}

func TestWorker_Run(t *testing.T) {
	t.Parallel()

	e := newFastEngine(t)
	ctx, cancel := context.WithCancel(context.Background())

	errc := make(chan error, 1)
	go func() { errc <- e.Run(ctx) }()

	waitFor(t, func() bool { return e.Stats().Cycles > 0 })
	cancel()

	select {
	case err := <-errc:
		if err != nil {
			t.Errorf("Run() error = %v", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Run() did not return after cancel")
	}
	if e.Running() {
		t.Error("worker still running after Run() returned")
	}
}

func TestWorker_CloseStopsWorker(t *testing.T) {
	t.Parallel()

	e := newFastEngine(t)
	f := audiotest.NewMockFeed()
	e.Register(f)

	if err := e.Start(); err != nil {
		t.Fatal(err)
	}
	if err := e.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if e.Running() || !f.Closed() {
		t.Error("Close() left the worker running or the feed open")
	}
}
