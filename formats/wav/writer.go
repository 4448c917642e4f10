// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/mixbridge/utils"
)

// Writer streams interleaved float32 samples into an integer PCM WAV file.
// Samples are clamped to [-1, 1]. Close must be called to finalize the header;
// it does not close the underlying writer.
type Writer struct {
	enc      *gowav.Encoder
	buf      *goaudio.IntBuffer
	bitDepth int
	written  int
}

// NewWriter prepares a WAV stream on w. bitDepth must be 16, 24 or 32.
func NewWriter(w io.WriteSeeker, sampleRate, channels, bitDepth int) (*Writer, error) {
	switch bitDepth {
	case 16, 24, 32:
	default:
		return nil, ErrUnsupportedBitDepth
	}
	if sampleRate <= 0 || channels <= 0 {
		return nil, ErrUnsupportedWavLayout
	}

	return &Writer{
		enc: gowav.NewEncoder(w, sampleRate, bitDepth, channels, formatPCM),
		buf: &goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: channels, SampleRate: sampleRate},
			SourceBitDepth: bitDepth,
		},
		bitDepth: bitDepth,
	}, nil
}

// WriteSamples appends interleaved samples.
func (w *Writer) WriteSamples(samples []float32) error {
	if len(samples) == 0 {
		return nil
	}

	if cap(w.buf.Data) < len(samples) {
		w.buf.Data = make([]int, len(samples))
	}
	w.buf.Data = w.buf.Data[:len(samples)]
	for i, v := range samples {
		w.buf.Data[i] = utils.FloatToPCM(v, w.bitDepth)
	}

	if err := w.enc.Write(w.buf); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	w.written += len(samples)

	return nil
}

// Written returns the number of samples written so far.
func (w *Writer) Written() int { return w.written }

func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("wav: %w", err)
	}
	return nil
}

// WriteWAV16 writes a mono 16-bit PCM WAV at sampleRate.
func WriteWAV16(w io.WriteSeeker, sampleRate int, samples []int16) error {
	ww, err := NewWriter(w, sampleRate, 1, 16)
	if err != nil {
		return err
	}

	ww.buf.Data = make([]int, len(samples))
	for i, s := range samples {
		ww.buf.Data[i] = int(s)
	}
	if len(samples) > 0 {
		if err := ww.enc.Write(ww.buf); err != nil {
			return fmt.Errorf("wav: %w", err)
		}
	}

	return ww.Close()
}
