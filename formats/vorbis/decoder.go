package vorbis

import (
	"fmt"
	"io"

	"github.com/ik5/mixbridge/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is the part of oggvorbis.Reader the source needs, split out for tests.
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec        oggReader
	r          io.Reader
	sampleRate int
	channels   int
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) Close() error    { return audio.CloseReader(s.r) }

func (s *source) ReadSamples(dst []float32) (int, error) {
	// Keep reads frame aligned so channels never drift.
	dst = dst[:len(dst)-len(dst)%s.channels]
	if len(dst) == 0 {
		return 0, nil
	}

	// oggvorbis counts interleaved values, not frames.
	n, err := s.dec.Read(dst)
	if err != nil && err != io.EOF {
		return n, fmt.Errorf("vorbis: %w", err)
	}

	return n, err
}

// Decoder decodes Ogg Vorbis streams through oggvorbis.
type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotVorbisFile, err)
	}
	if dec.Channels() <= 0 || dec.SampleRate() <= 0 {
		return nil, ErrNotVorbisFile
	}

	return &source{
		dec:        dec,
		r:          r,
		sampleRate: dec.SampleRate(),
		channels:   dec.Channels(),
	}, nil
}
