// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"context"
	"time"

	"go.uber.org/zap"
)

// Start launches the periodic worker. It fails with ErrRunning if the
// worker is already up.
func (e *Engine) Start() error {
	e.workerMu.Lock()
	defer e.workerMu.Unlock()

	if e.stop != nil {
		return ErrRunning
	}

	e.stop = make(chan struct{})
	e.done = make(chan struct{})
	go e.loop(e.stop, e.done)

	e.log.Info("worker started", zap.Duration("interval", e.cfg.interval()))

	return nil
}

// Stop signals the worker and waits for its in-flight cycle to finish.
// It is a no-op when the worker is not running.
func (e *Engine) Stop() {
	e.workerMu.Lock()
	defer e.workerMu.Unlock()

	if e.stop == nil {
		return
	}

	close(e.stop)
	<-e.done
	e.stop, e.done = nil, nil

	e.log.Info("worker stopped")
}

func (e *Engine) Running() bool {
	e.workerMu.Lock()
	defer e.workerMu.Unlock()
	return e.stop != nil
}

// Run starts the worker and keeps it running until ctx is done.
func (e *Engine) Run(ctx context.Context) error {
	if err := e.Start(); err != nil {
		return err
	}
	<-ctx.Done()
	e.Stop()

	return nil
}

func (e *Engine) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(e.cfg.interval())
	defer ticker.Stop()

	for {
		e.MixOnce()

		select {
		case <-stop:
			e.silence()
			return
		case <-ticker.C:
		}
	}
}

// silence publishes an all-zero bus so a running stream does not keep
// replaying the last mix.
func (e *Engine) silence() {
	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()

	clear(e.back)
	e.publish()
}
