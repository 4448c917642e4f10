// SPDX-License-Identifier: EPL-2.0

package mixbridge

import (
	"context"
	"errors"
	"fmt"
	"io"

	"go.uber.org/zap"

	"github.com/ik5/mixbridge/audio"
	"github.com/ik5/mixbridge/formats/wav"
	"github.com/ik5/mixbridge/mixer"
	"github.com/ik5/mixbridge/playback"
	"github.com/ik5/mixbridge/utils"
)

type options struct {
	log *zap.Logger
}

type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// Render mixes sources to completion and writes the result to w as 16-bit
// PCM WAV in cfg's format. It returns the number of frames written.
// The sources are closed when Render returns.
func Render(ctx context.Context, w io.WriteSeeker, cfg mixer.Config, sources []audio.Source, opts ...Option) (int, error) {
	if err := cfg.Validate(); err != nil {
		closeAll(sources)
		return 0, err
	}

	ww, err := wav.NewWriter(w, cfg.SampleRate, cfg.Channels, 16)
	if err != nil {
		closeAll(sources)
		return 0, err
	}

	frames, err := mixdown(ctx, cfg, sources, ww.WriteSamples, opts...)
	if cerr := ww.Close(); err == nil {
		err = cerr
	}

	return frames, err
}

// RenderPCM16 mixes sources to completion and returns the interleaved
// 16-bit samples.
func RenderPCM16(ctx context.Context, cfg mixer.Config, sources []audio.Source, opts ...Option) ([]int16, error) {
	if err := cfg.Validate(); err != nil {
		closeAll(sources)
		return nil, err
	}

	// start with about two seconds and grow as needed
	pcm16 := make([]int16, 0, cfg.SampleRate*cfg.Channels*2)
	_, err := mixdown(ctx, cfg, sources, func(buf []float32) error {
		for _, v := range buf {
			pcm16 = append(pcm16, utils.Float32ToInt16(v))
		}
		return nil
	}, opts...)
	if err != nil {
		return nil, err
	}

	return pcm16, nil
}

// mixdown drives an engine by hand: every cycle each player decodes one
// period, the engine mixes once and emit receives the published bus.
func mixdown(ctx context.Context, cfg mixer.Config, sources []audio.Source, emit func([]float32) error, opts ...Option) (int, error) {
	o := options{log: zap.NewNop()}
	for _, opt := range opts {
		opt(&o)
	}
	log := o.log.Named("render")

	eng, err := mixer.NewEngine(cfg, mixer.WithLogger(o.log))
	if err != nil {
		closeAll(sources)
		return 0, err
	}
	defer eng.Close()

	players := make([]*playback.Player, 0, len(sources))
	for i, src := range sources {
		p, err := playback.New(src, cfg,
			playback.WithLogger(o.log),
			playback.WithManualFill(),
			playback.WithPrefill(0),
		)
		if err != nil {
			closeAll(sources[i:])
			return 0, fmt.Errorf("source %d: %w", i, err)
		}
		eng.Register(p)
		if err := p.Play(); err != nil {
			closeAll(sources[i+1:])
			return 0, fmt.Errorf("source %d: %w", i, err)
		}
		players = append(players, p)
	}

	frames := 0
	for {
		if err := ctx.Err(); err != nil {
			return frames, err
		}

		active := false
		for i, p := range players {
			if _, err := p.Fill(cfg.FramesPerBuffer); err != nil && !errors.Is(err, io.EOF) && !errors.Is(err, playback.ErrClosed) {
				return frames, fmt.Errorf("source %d: %w", i, err)
			}
			active = active || p.Active()
		}
		if !active {
			break
		}

		eng.MixOnce()
		if err := emit(eng.Snapshot()); err != nil {
			return frames, err
		}
		frames += cfg.FramesPerBuffer
	}

	st := eng.Stats()
	log.Debug("mixdown finished",
		zap.Int("frames", frames),
		zap.Int("sources", len(sources)),
		zap.Uint64("normalizations", st.Normalizations),
	)

	return frames, nil
}

func closeAll(sources []audio.Source) {
	for _, src := range sources {
		src.Close()
	}
}
