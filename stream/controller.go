// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"

	"github.com/ik5/mixbridge/mixer"
)

type State int

const (
	StateStopped State = iota
	StateStarted
	StateFailed
)

func (s State) String() string {
	switch s {
	case StateStopped:
		return "stopped"
	case StateStarted:
		return "started"
	case StateFailed:
		return "failed"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

type Option func(*Controller)

func WithLogger(l *zap.Logger) Option {
	return func(c *Controller) {
		if l != nil {
			c.log = l
		}
	}
}

// WithStateHook registers fn to be told about every state change. err is
// only set with StateFailed. fn runs on the goroutine that caused the
// change, after the controller's lock is released.
func WithStateHook(fn func(State, error)) Option {
	return func(c *Controller) { c.hook = fn }
}

// Controller sequences the engine worker and the hardware stream.
type Controller struct {
	engine  *mixer.Engine
	backend Backend
	log     *zap.Logger
	hook    func(State, error)

	mu     sync.Mutex
	stream Stream
	closed bool
}

// NewController initializes backend and binds it to engine.
func NewController(engine *mixer.Engine, backend Backend, opts ...Option) (*Controller, error) {
	c := &Controller{
		engine:  engine,
		backend: backend,
		log:     zap.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.Named("controller")

	if err := backend.Init(); err != nil {
		return nil, fmt.Errorf("initializing audio backend: %w", err)
	}

	return c, nil
}

func (c *Controller) Engine() *mixer.Engine { return c.engine }

// Start opens a duplex stream on the default devices, starts the engine
// worker and then the stream. On failure nothing is left running.
func (c *Controller) Start() error {
	if err := c.start(); err != nil {
		if !errors.Is(err, ErrAlreadyRunning) && !errors.Is(err, ErrClosed) {
			c.log.Error("audio processing failed", zap.Error(err))
			c.notify(StateFailed, err)
		}
		return err
	}

	c.notify(StateStarted, nil)
	return nil
}

func (c *Controller) start() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrClosed
	}
	if c.stream != nil {
		return ErrAlreadyRunning
	}

	in, err := c.backend.DefaultInput()
	if err != nil || in == nil {
		return fmt.Errorf("%w: input: %w", ErrNoDevice, orMissing(err))
	}
	out, err := c.backend.DefaultOutput()
	if err != nil || out == nil {
		return fmt.Errorf("%w: output: %w", ErrNoDevice, orMissing(err))
	}

	cfg := c.engine.Config()
	s, err := c.backend.Open(Params{
		Input:           in,
		Output:          out,
		SampleRate:      cfg.SampleRate,
		Channels:        cfg.Channels,
		FramesPerBuffer: cfg.FramesPerBuffer,
	}, c.engine.Process)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrStreamOpen, err)
	}

	if err := c.engine.Start(); err != nil && !errors.Is(err, mixer.ErrRunning) {
		return errors.Join(err, closeOnRollback(s))
	}

	if err := s.Start(); err != nil {
		c.engine.Stop()
		return errors.Join(fmt.Errorf("%w: %w", ErrStreamStart, err), closeOnRollback(s))
	}
	c.stream = s

	c.log.Info("audio processing started",
		zap.String("input", in.Name),
		zap.String("output", out.Name),
		zap.Int("sample_rate", cfg.SampleRate),
		zap.Int("channels", cfg.Channels),
		zap.Int("frames_per_buffer", cfg.FramesPerBuffer),
	)

	return nil
}

func closeOnRollback(s Stream) error {
	if err := s.Close(); err != nil {
		return fmt.Errorf("closing stream: %w", err)
	}
	return nil
}

var errMissing = errors.New("device missing")

func orMissing(err error) error {
	if err == nil {
		return errMissing
	}
	return err
}

func (c *Controller) notify(s State, err error) {
	if c.hook != nil {
		c.hook(s, err)
	}
}

// Stop halts the worker and closes the stream. Calling it while stopped is
// a no-op.
func (c *Controller) Stop() error {
	c.mu.Lock()
	if c.stream == nil {
		c.mu.Unlock()
		return nil
	}
	c.engine.Stop()
	err := c.closeStream()
	c.mu.Unlock()

	c.notify(StateStopped, nil)

	return err
}

// closeStream stops and closes the open stream. Called with c.mu held.
func (c *Controller) closeStream() error {
	s := c.stream
	c.stream = nil

	var errs []error
	if err := s.Stop(); err != nil {
		errs = append(errs, fmt.Errorf("stopping stream: %w", err))
	}
	if err := s.Close(); err != nil {
		errs = append(errs, fmt.Errorf("closing stream: %w", err))
	}
	c.log.Info("audio processing stopped")

	return errors.Join(errs...)
}

func (c *Controller) Running() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.stream != nil
}

// RegisterSource adds f to the mix.
func (c *Controller) RegisterSource(f mixer.Feed) {
	c.engine.Register(f)
}

// DeregisterSource removes f from the mix and releases it.
func (c *Controller) DeregisterSource(f mixer.Feed) error {
	return c.engine.Deregister(f)
}

// InputDevices lists devices able to capture.
func (c *Controller) InputDevices() ([]Device, error) {
	return c.devices(func(d Device) bool { return d.MaxInputChannels > 0 })
}

// OutputDevices lists devices able to play.
func (c *Controller) OutputDevices() ([]Device, error) {
	return c.devices(func(d Device) bool { return d.MaxOutputChannels > 0 })
}

func (c *Controller) devices(keep func(Device) bool) ([]Device, error) {
	all, err := c.backend.Devices()
	if err != nil {
		return nil, fmt.Errorf("listing devices: %w", err)
	}

	var out []Device
	for _, d := range all {
		if keep(d) {
			out = append(out, d)
		}
	}
	return out, nil
}

// Close tears everything down: the worker is stopped first, then every
// source is released, then the stream is closed and the backend
// terminated.
func (c *Controller) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true

	var errs []error
	if err := c.engine.Close(); err != nil {
		errs = append(errs, fmt.Errorf("releasing sources: %w", err))
	}
	wasRunning := c.stream != nil
	if wasRunning {
		errs = append(errs, c.closeStream())
	}
	if err := c.backend.Terminate(); err != nil {
		errs = append(errs, fmt.Errorf("terminating audio backend: %w", err))
	}
	c.mu.Unlock()

	if wasRunning {
		c.notify(StateStopped, nil)
	}

	return errors.Join(errs...)
}
