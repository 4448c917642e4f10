// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"fmt"
	"time"
)

// Config fixes the shape of the mix and the correction heuristics.
// The zero value is not usable; start from DefaultConfig.
type Config struct {
	SampleRate      int
	Channels        int
	FramesPerBuffer int

	// Interval between worker cycles. Zero means one buffer period.
	Interval time.Duration

	// A feed whose backlog represents more than LatencyThreshold of audio
	// has its rate lowered by RateStep, never below MinRate.
	LatencyThreshold time.Duration
	RateStep         float64
	MinRate          float64

	// Ceiling is the peak amplitude the published mix is normalized to.
	Ceiling float32
}

func DefaultConfig() Config {
	return Config{
		SampleRate:       44100,
		Channels:         2,
		FramesPerBuffer:  512,
		LatencyThreshold: 50 * time.Millisecond,
		RateStep:         0.05,
		MinRate:          0.5,
		Ceiling:          1.0,
	}
}

func (c Config) Validate() error {
	switch {
	case c.SampleRate <= 0:
		return fmt.Errorf("%w: sample rate %d", ErrInvalidConfig, c.SampleRate)
	case c.Channels <= 0:
		return fmt.Errorf("%w: channels %d", ErrInvalidConfig, c.Channels)
	case c.FramesPerBuffer <= 0:
		return fmt.Errorf("%w: frames per buffer %d", ErrInvalidConfig, c.FramesPerBuffer)
	case c.Interval < 0:
		return fmt.Errorf("%w: interval %s", ErrInvalidConfig, c.Interval)
	case c.LatencyThreshold <= 0:
		return fmt.Errorf("%w: latency threshold %s", ErrInvalidConfig, c.LatencyThreshold)
	case c.RateStep <= 0:
		return fmt.Errorf("%w: rate step %g", ErrInvalidConfig, c.RateStep)
	case c.MinRate <= 0 || c.MinRate > 1:
		return fmt.Errorf("%w: minimum rate %g outside (0, 1]", ErrInvalidConfig, c.MinRate)
	case c.Ceiling <= 0:
		return fmt.Errorf("%w: ceiling %g", ErrInvalidConfig, c.Ceiling)
	}

	return nil
}

// BufferSamples is the length of one period of interleaved samples.
func (c Config) BufferSamples() int { return c.FramesPerBuffer * c.Channels }

// Period is the wall-clock duration of one buffer.
func (c Config) Period() time.Duration {
	return time.Duration(c.FramesPerBuffer) * time.Second / time.Duration(c.SampleRate)
}

// Latency converts a backlog of interleaved samples into playback time.
func (c Config) Latency(backlog int) time.Duration {
	return time.Duration(backlog) * time.Second / time.Duration(c.SampleRate*c.Channels)
}

func (c Config) interval() time.Duration {
	if c.Interval > 0 {
		return c.Interval
	}
	return c.Period()
}
