// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/mixbridge/utils"
)

// maxEmptyReads bounds how many (0, nil) reads in a row a source may return.
const maxEmptyReads = 100

// Resampler streams from src to a target sample rate using cubic interpolation.
// Works on interleaved samples; preserves channel count.
//
// The playback speed scales how fast the source is consumed: a speed of 0.5
// stretches every source frame over twice as many output frames. A basic
// one-pole low-pass filter runs whenever source frames are skipped.
type Resampler struct {
	src      Source
	srcRate  float64
	dstRate  float64
	speed    float64
	ratio    float64 // source frames consumed per output frame
	channels int

	// frames[1] and frames[2] bracket the current position, frames[0] and
	// frames[3] are the outer neighbours for the cubic.
	frames [4][]float32
	valid  [4]bool
	primed bool
	pos    float64

	in     []float32
	inPos  int
	inLen  int
	eof    bool
	srcErr error

	lowpass     bool
	alpha       float32
	state       []float32
	stateLoaded bool
}

func NewResampler(src Source, dstRate int) *Resampler {
	channels := src.Channels()

	r := &Resampler{
		src:      src,
		srcRate:  float64(src.SampleRate()),
		dstRate:  float64(dstRate),
		speed:    1,
		channels: channels,
		in:       make([]float32, 1024*channels),
		alpha:    0.5,
		state:    make([]float32, channels),
	}
	for i := range r.frames {
		r.frames[i] = make([]float32, channels)
	}
	r.updateRatio()

	return r
}

func (r *Resampler) SampleRate() int { return int(r.dstRate) }
func (r *Resampler) Channels() int   { return r.channels }

// Speed returns the current playback speed multiplier.
func (r *Resampler) Speed() float64 { return r.speed }

// SetSpeed changes the playback speed multiplier. Values <= 0 are ignored.
// It must be called from the goroutine that reads samples.
func (r *Resampler) SetSpeed(speed float64) {
	if speed <= 0 {
		return
	}
	r.speed = speed
	r.updateRatio()
}

func (r *Resampler) updateRatio() {
	r.ratio = r.srcRate / r.dstRate * r.speed
	r.lowpass = r.ratio > 1.0
}

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("resampler: %w", err)
	}
	return nil
}

// fetch copies the next source frame into dst. It reports false once the
// source has nothing more to give.
func (r *Resampler) fetch(dst []float32) (bool, error) {
	empty := 0
	for r.inPos+r.channels > r.inLen {
		if r.eof {
			return false, nil
		}

		n, err := r.src.ReadSamples(r.in)
		r.inLen = n - n%r.channels
		r.inPos = 0

		switch {
		case err == io.EOF:
			r.eof = true
		case err != nil:
			r.eof = true
			r.srcErr = fmt.Errorf("resampler: %w", err)
		case r.inLen == 0:
			empty++
			if empty >= maxEmptyReads {
				r.eof = true
				r.srcErr = fmt.Errorf("resampler: %w", io.ErrNoProgress)
			}
		default:
			empty = 0
		}
	}

	copy(dst, r.in[r.inPos:r.inPos+r.channels])
	r.inPos += r.channels

	if r.lowpass {
		if !r.stateLoaded {
			copy(r.state, dst)
			r.stateLoaded = true
		}
		for c := range r.channels {
			// y[n] = alpha * x[n] + (1-alpha) * y[n-1]
			dst[c] = r.alpha*dst[c] + (1-r.alpha)*r.state[c]
			r.state[c] = dst[c]
		}
	}

	return true, nil
}

// load fills slot i with the next source frame, or repeats slot i-1 past EOF.
func (r *Resampler) load(i int) error {
	ok, err := r.fetch(r.frames[i])
	if err != nil {
		return err
	}
	if !ok {
		copy(r.frames[i], r.frames[i-1])
	}
	r.valid[i] = ok

	return nil
}

func (r *Resampler) prime() error {
	r.primed = true

	ok, err := r.fetch(r.frames[1])
	if err != nil {
		return err
	}
	if !ok {
		if r.srcErr != nil {
			return r.srcErr
		}
		return io.EOF
	}
	r.valid[1] = true
	copy(r.frames[0], r.frames[1])
	r.valid[0] = true

	for i := 2; i < 4; i++ {
		if err := r.load(i); err != nil {
			return err
		}
	}

	return nil
}

// advance shifts the window one source frame forward.
func (r *Resampler) advance() error {
	oldest := r.frames[0]
	copy(r.frames[:3], r.frames[1:])
	copy(r.valid[:3], r.valid[1:])
	r.frames[3] = oldest

	return r.load(3)
}

// ReadSamples produces dst samples at r.dstRate.
// dst length should be a multiple of r.channels.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	framesNeeded := len(dst) / r.channels
	written := 0

	for written < framesNeeded {
		for r.pos >= 1.0 {
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		if !r.valid[1] {
			if r.srcErr != nil {
				return written * r.channels, r.srcErr
			}
			return written * r.channels, io.EOF
		}

		alpha := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range r.channels {
			out[c] = utils.CubicInterpolate(r.frames[0][c], r.frames[1][c], r.frames[2][c], r.frames[3][c], alpha)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
