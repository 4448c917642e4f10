// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	"go.uber.org/zap"

	"github.com/ik5/mixbridge/utils"
)

type feedState struct {
	id    uint64
	feed  Feed
	rate  float64
	steps int // rate reductions applied so far
}

// Engine blends registered feeds into one published buffer per cycle.
//
// The feed set and the published bus are guarded by separate mutexes, so
// Process only ever competes with the short buffer swap at the end of a
// cycle, never with feed bookkeeping.
type Engine struct {
	cfg Config
	log *zap.Logger

	// cycleMu serializes MixOnce; it owns back, scratch and active.
	cycleMu sync.Mutex
	back    []float32
	scratch []float32
	active  []*feedState
	removed []*feedState

	mu     sync.Mutex
	feeds  []*feedState
	nextID uint64

	busMu sync.Mutex
	bus   []float32

	workerMu sync.Mutex
	stop     chan struct{}
	done     chan struct{}

	stats counters
}

type Option func(*Engine)

// WithLogger sets the logger; the engine logs under the "engine" name.
func WithLogger(l *zap.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.log = l
		}
	}
}

func NewEngine(cfg Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{
		cfg:     cfg,
		log:     zap.NewNop(),
		back:    make([]float32, cfg.BufferSamples()),
		scratch: make([]float32, cfg.BufferSamples()),
		bus:     make([]float32, cfg.BufferSamples()),
	}
	for _, opt := range opts {
		opt(e)
	}
	e.log = e.log.Named("engine")

	return e, nil
}

func (e *Engine) Config() Config { return e.cfg }

// Register adds f to the mix at nominal rate. Registering a feed twice is a
// no-op.
func (e *Engine) Register(f Feed) {
	if f == nil {
		return
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.indexOf(f) >= 0 {
		return
	}
	e.nextID++
	e.feeds = append(e.feeds, &feedState{id: e.nextID, feed: f, rate: 1})

	e.log.Debug("feed registered", zap.Uint64("feed", e.nextID), zap.Int("feeds", len(e.feeds)))
}

// Deregister removes f and closes it when it implements io.Closer.
// Unknown feeds are ignored.
func (e *Engine) Deregister(f Feed) error {
	e.mu.Lock()
	i := e.indexOf(f)
	if i < 0 {
		e.mu.Unlock()
		return nil
	}
	fs := e.feeds[i]
	e.feeds = slices.Delete(e.feeds, i, i+1)
	e.mu.Unlock()

	e.log.Debug("feed deregistered", zap.Uint64("feed", fs.id))

	return closeFeed(fs.feed)
}

// Len returns the number of registered feeds.
func (e *Engine) Len() int {
	e.mu.Lock()
	defer e.mu.Unlock()
	return len(e.feeds)
}

// Rate returns the rate multiplier the engine holds for f.
func (e *Engine) Rate(f Feed) (float64, bool) {
	e.mu.Lock()
	defer e.mu.Unlock()

	i := e.indexOf(f)
	if i < 0 {
		return 0, false
	}
	return e.feeds[i].rate, true
}

func (e *Engine) indexOf(f Feed) int {
	return slices.IndexFunc(e.feeds, func(fs *feedState) bool { return fs.feed == f })
}

// MixOnce runs a single mixing cycle and publishes the result.
func (e *Engine) MixOnce() {
	e.cycleMu.Lock()
	defer e.cycleMu.Unlock()

	clear(e.back)

	e.mu.Lock()
	e.active = e.active[:0]
	for _, fs := range e.feeds {
		if fs.feed.Active() {
			e.active = append(e.active, fs)
		}
	}

	if len(e.active) > 0 {
		weight := 1 / float32(len(e.active))
		for _, fs := range e.active {
			e.throttle(fs)

			if n := fs.feed.Drain(e.scratch); n < len(e.scratch) {
				e.stats.skipped.Add(1)
				continue
			}
			for i, v := range e.scratch {
				e.back[i] += v * weight
			}
		}
	}

	e.removed = e.removed[:0]
	e.feeds = slices.DeleteFunc(e.feeds, func(fs *feedState) bool {
		fin, ok := fs.feed.(Finisher)
		if ok && fin.Finished() {
			e.removed = append(e.removed, fs)
			return true
		}
		return false
	})
	e.mu.Unlock()

	for _, fs := range e.removed {
		e.log.Debug("feed finished", zap.Uint64("feed", fs.id))
		if err := closeFeed(fs.feed); err != nil {
			e.log.Warn("closing finished feed", zap.Uint64("feed", fs.id), zap.Error(err))
		}
	}
	clear(e.removed)

	if peak := utils.PeakAbs(e.back); peak > e.cfg.Ceiling {
		utils.Scale(e.back, e.cfg.Ceiling/peak)
		e.stats.normalizations.Add(1)
	}

	e.publish()
	e.stats.cycles.Add(1)
}

// throttle lowers the feed's rate when its backlog is too deep.
// Called with e.mu held.
func (e *Engine) throttle(fs *feedState) {
	latency := e.cfg.Latency(fs.feed.Backlog())
	if latency <= e.cfg.LatencyThreshold {
		return
	}

	// rate = 1 - steps*RateStep, floored at MinRate
	rate := max(1-float64(fs.steps+1)*e.cfg.RateStep, e.cfg.MinRate)
	if rate >= fs.rate {
		return
	}
	fs.steps++
	fs.rate = rate
	e.stats.throttles.Add(1)

	if rc, ok := fs.feed.(RateController); ok {
		rc.SetRate(rate)
	}

	e.log.Warn("feed latency above threshold, slowing down",
		zap.Uint64("feed", fs.id),
		zap.Duration("latency", latency),
		zap.Duration("threshold", e.cfg.LatencyThreshold),
		zap.Float64("rate", rate),
	)
}

// publish swaps the back buffer in as the current bus.
func (e *Engine) publish() {
	e.busMu.Lock()
	e.bus, e.back = e.back, e.bus
	e.busMu.Unlock()
}

// Snapshot copies the currently published bus.
func (e *Engine) Snapshot() []float32 {
	e.busMu.Lock()
	defer e.busMu.Unlock()
	return slices.Clone(e.bus)
}

func (e *Engine) Stats() Stats { return e.stats.snapshot() }

// Close stops the worker, then deregisters and closes every feed.
func (e *Engine) Close() error {
	e.Stop()

	e.mu.Lock()
	feeds := e.feeds
	e.feeds = nil
	e.mu.Unlock()

	var errs []error
	for _, fs := range feeds {
		if err := closeFeed(fs.feed); err != nil {
			errs = append(errs, err)
		}
	}

	return errors.Join(errs...)
}

func closeFeed(f Feed) error {
	c, ok := f.(io.Closer)
	if !ok {
		return nil
	}
	if err := c.Close(); err != nil {
		return fmt.Errorf("closing feed: %w", err)
	}
	return nil
}
