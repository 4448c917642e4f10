// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"errors"
	"fmt"
	"io"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/ik5/mixbridge/audio"
	"github.com/ik5/mixbridge/mixer"
)

var (
	_ mixer.Feed           = (*Player)(nil)
	_ mixer.RateController = (*Player)(nil)
	_ mixer.Finisher       = (*Player)(nil)
	_ io.Closer            = (*Player)(nil)
)

// Player turns a decoded audio.Source into a mixer.Feed.
//
// The source is resampled and remapped to the engine format and decoded one
// buffer period at a time into a backlog the engine drains. Production
// cadence is one period every Period/rate, so a throttled player falls
// behind real time and its backlog shrinks.
type Player struct {
	cfg        mixer.Config
	log        *zap.Logger
	opts       options
	maxBacklog int // samples

	// srcMu guards the decoding pipeline and chunk.
	srcMu     sync.Mutex
	resampler *audio.Resampler
	pipeline  audio.Source
	chunk     []float32

	mu      sync.Mutex
	backlog []float32
	rate    float64
	playing bool
	closed  bool
	eof     bool
	err     error
	stop    chan struct{}
	done    chan struct{}
}

// New wraps src in a Player producing audio in cfg's format. The player
// owns src and closes it on Close.
func New(src audio.Source, cfg mixer.Config, opts ...Option) (*Player, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if src.Channels() <= 0 {
		return nil, ErrInvalidSource
	}
	if src.SampleRate() <= 0 {
		return nil, audio.ErrInvalidRate
	}

	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	log := o.log.Named("player")
	if o.name != "" {
		log = log.With(zap.String("name", o.name))
	}

	res := audio.NewResampler(src, cfg.SampleRate)
	maxBacklog := int(o.maxBacklog * time.Duration(cfg.SampleRate) / time.Second)

	return &Player{
		cfg:        cfg,
		log:        log,
		opts:       o,
		maxBacklog: max(maxBacklog, cfg.FramesPerBuffer) * cfg.Channels,
		resampler:  res,
		pipeline:   audio.NewChannelMixer(res, cfg.Channels),
		chunk:      make([]float32, cfg.BufferSamples()),
		rate:       1,
	}, nil
}

// Play starts or resumes production.
func (p *Player) Play() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if p.playing {
		p.mu.Unlock()
		return nil
	}
	p.playing = true
	p.mu.Unlock()

	for range p.opts.prefill {
		if _, err := p.Fill(p.cfg.FramesPerBuffer); err != nil {
			break
		}
	}

	if p.opts.manual {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed || !p.playing || p.stop != nil {
		return nil
	}
	p.stop = make(chan struct{})
	p.done = make(chan struct{})
	go p.pump(p.stop, p.done)

	p.log.Debug("playback started")

	return nil
}

// Pause stops production and makes the player inactive. Queued audio is
// kept for when playback resumes.
func (p *Player) Pause() {
	p.mu.Lock()
	p.playing = false
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
		p.log.Debug("playback paused")
	}
}

func (p *Player) pump(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	// next advances by whole intervals; a late pump fills back to back
	// until it catches up
	next := time.Now().Add(p.interval())
	timer := time.NewTimer(time.Until(next))
	defer timer.Stop()

	for {
		select {
		case <-stop:
			return
		case <-timer.C:
		}

		if _, err := p.Fill(p.cfg.FramesPerBuffer); err != nil {
			return
		}

		next = next.Add(p.interval())
		if now := time.Now(); now.Sub(next) > p.opts.maxBacklog {
			// stalled for longer than the backlog can hold
			next = now
		}
		timer.Reset(time.Until(next))
	}
}

func (p *Player) interval() time.Duration {
	return time.Duration(float64(p.cfg.Period()) / p.Rate())
}

// Fill decodes up to frames frames into the backlog and returns the number
// of samples queued. It stops early when the backlog is full. Once the
// source is exhausted the last partial period is padded with silence and
// io.EOF is returned.
func (p *Player) Fill(frames int) (int, error) {
	p.srcMu.Lock()
	defer p.srcMu.Unlock()

	p.mu.Lock()
	switch {
	case p.closed:
		p.mu.Unlock()
		return 0, ErrClosed
	case p.eof:
		err := p.err
		p.mu.Unlock()
		if err != nil {
			return 0, err
		}
		return 0, io.EOF
	}
	room := p.maxBacklog - len(p.backlog)
	rate := p.rate
	p.mu.Unlock()

	want := min(frames*p.cfg.Channels, room)
	want -= want % p.cfg.Channels
	if want <= 0 {
		return 0, nil
	}
	if cap(p.chunk) < want {
		p.chunk = make([]float32, want)
	}
	buf := p.chunk[:want]

	if p.resampler.Speed() != rate {
		p.resampler.SetSpeed(rate)
	}

	n, err := readFull(p.pipeline, buf)
	eof := errors.Is(err, io.EOF)
	if err != nil && !eof {
		p.log.Error("decoding failed", zap.Error(err))
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0, ErrClosed
	}
	p.backlog = append(p.backlog, buf[:n]...)
	if err == nil {
		return n, nil
	}

	// pad the tail so the engine never skips it as a short read
	if tail := len(p.backlog) % p.cfg.BufferSamples(); tail > 0 {
		p.backlog = append(p.backlog, make([]float32, p.cfg.BufferSamples()-tail)...)
	}
	p.eof = true
	if !eof {
		p.err = fmt.Errorf("playback: %w", err)
		return n, p.err
	}
	p.log.Debug("source exhausted", zap.Int("backlog", len(p.backlog)))

	return n, io.EOF
}

// readFull keeps reading until buf is full or src reports an error.
func readFull(src audio.Source, buf []float32) (int, error) {
	n := 0
	for n < len(buf) {
		m, err := src.ReadSamples(buf[n:])
		n += m
		if err != nil {
			return n, err
		}
		if m == 0 {
			break
		}
	}
	return n, nil
}

// Active reports whether the player is playing and has audio left.
func (p *Player) Active() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.playing && !p.closed && !(p.eof && len(p.backlog) == 0)
}

// Drain moves queued samples into dst. It returns 0 once the player is closed.
func (p *Player) Drain(dst []float32) int {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.closed {
		return 0
	}
	n := copy(dst, p.backlog)
	p.backlog = p.backlog[:copy(p.backlog, p.backlog[n:])]

	return n
}

func (p *Player) Backlog() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.backlog)
}

// SetRate sets the playback rate multiplier. It takes effect on the next
// Fill. Non-positive rates are ignored.
func (p *Player) SetRate(rate float64) {
	if rate <= 0 {
		return
	}

	p.mu.Lock()
	p.rate = rate
	p.mu.Unlock()

	p.log.Debug("playback rate changed", zap.Float64("rate", rate))
}

func (p *Player) Rate() float64 {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rate
}

// Finished reports whether the source is exhausted and the backlog drained.
func (p *Player) Finished() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.eof && len(p.backlog) == 0
}

// Err returns the decoding error that ended playback, if any.
func (p *Player) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}

// Close stops production, drops the backlog and closes the source.
// Closing twice is a no-op.
func (p *Player) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	p.playing = false
	p.backlog = nil
	stop, done := p.stop, p.done
	p.stop, p.done = nil, nil
	p.mu.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	p.srcMu.Lock()
	defer p.srcMu.Unlock()

	if err := p.pipeline.Close(); err != nil {
		return fmt.Errorf("playback: %w", err)
	}
	p.log.Debug("player closed")

	return nil
}
