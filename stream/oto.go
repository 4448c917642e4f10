// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package stream

import (
	"fmt"
	"sync"
	"time"

	"github.com/ebitengine/oto/v3"
)

// oto allows a single context per process.
var otoContext struct {
	once       sync.Once
	ctx        *oto.Context
	err        error
	sampleRate int
	channels   int
}

func sharedOtoContext(sampleRate, channels int, buffer time.Duration) (*oto.Context, error) {
	otoContext.once.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   sampleRate,
			ChannelCount: channels,
			Format:       oto.FormatFloat32LE,
			BufferSize:   buffer,
		})
		if err != nil {
			otoContext.err = fmt.Errorf("oto: %w", err)
			return
		}
		<-ready

		otoContext.ctx = ctx
		otoContext.sampleRate = sampleRate
		otoContext.channels = channels
	})

	if otoContext.err != nil {
		return nil, otoContext.err
	}
	if otoContext.sampleRate != sampleRate || otoContext.channels != channels {
		return nil, fmt.Errorf("oto: context already running at %d Hz/%d ch", otoContext.sampleRate, otoContext.channels)
	}
	return otoContext.ctx, nil
}

// OtoBackend plays through the platform output with oto. It has no capture
// side: the input handed to the callback is silence.
type OtoBackend struct{}

func NewOtoBackend() *OtoBackend { return &OtoBackend{} }

var (
	otoInput  = Device{Index: -1, Name: "silence"}
	otoOutput = Device{Index: 0, Name: "oto default output", MaxOutputChannels: 2}
)

func (*OtoBackend) Init() error      { return nil }
func (*OtoBackend) Terminate() error { return nil }

func (*OtoBackend) DefaultInput() (*Device, error) {
	d := otoInput
	return &d, nil
}

func (*OtoBackend) DefaultOutput() (*Device, error) {
	d := otoOutput
	return &d, nil
}

func (*OtoBackend) Devices() ([]Device, error) {
	return []Device{otoOutput}, nil
}

func (*OtoBackend) Open(p Params, cb Callback) (Stream, error) {
	if p.SampleRate <= 0 || p.Channels <= 0 || p.FramesPerBuffer <= 0 {
		return nil, ErrStreamOpen
	}

	period := time.Duration(p.FramesPerBuffer) * time.Second / time.Duration(p.SampleRate)
	ctx, err := sharedOtoContext(p.SampleRate, p.Channels, period)
	if err != nil {
		return nil, err
	}

	r := newCallbackReader(cb, p.FramesPerBuffer*p.Channels)
	return &otoStream{player: ctx.NewPlayer(r)}, nil
}

type otoStream struct {
	player *oto.Player
}

func (s *otoStream) Start() error {
	s.player.Play()
	return nil
}

func (s *otoStream) Stop() error {
	s.player.Pause()
	return nil
}

func (s *otoStream) Close() error {
	if err := s.player.Close(); err != nil {
		return fmt.Errorf("oto: %w", err)
	}
	return nil
}
