// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package stream

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

var errNotPortAudioDevice = errors.New("device does not belong to PortAudio")

// PortAudioBackend opens full-duplex streams through PortAudio.
type PortAudioBackend struct{}

func NewPortAudioBackend() *PortAudioBackend { return &PortAudioBackend{} }

func (*PortAudioBackend) Init() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("portaudio: %w", err)
	}
	return nil
}

func (*PortAudioBackend) Terminate() error {
	if err := portaudio.Terminate(); err != nil {
		return fmt.Errorf("portaudio: %w", err)
	}
	return nil
}

func (*PortAudioBackend) DefaultInput() (*Device, error) {
	info, err := portaudio.DefaultInputDevice()
	if err != nil {
		return nil, fmt.Errorf("portaudio: %w", err)
	}
	d := fromPortAudio(info)
	return &d, nil
}

func (*PortAudioBackend) DefaultOutput() (*Device, error) {
	info, err := portaudio.DefaultOutputDevice()
	if err != nil {
		return nil, fmt.Errorf("portaudio: %w", err)
	}
	d := fromPortAudio(info)
	return &d, nil
}

func (*PortAudioBackend) Devices() ([]Device, error) {
	infos, err := portaudio.Devices()
	if err != nil {
		return nil, fmt.Errorf("portaudio: %w", err)
	}

	devices := make([]Device, 0, len(infos))
	for _, info := range infos {
		devices = append(devices, fromPortAudio(info))
	}
	return devices, nil
}

func fromPortAudio(info *portaudio.DeviceInfo) Device {
	d := Device{
		Index:             info.Index,
		Name:              info.Name,
		MaxInputChannels:  info.MaxInputChannels,
		MaxOutputChannels: info.MaxOutputChannels,
		DefaultSampleRate: info.DefaultSampleRate,
		InputLatency:      info.DefaultLowInputLatency,
		OutputLatency:     info.DefaultLowOutputLatency,
		ref:               info,
	}
	if info.HostApi != nil {
		d.HostAPI = info.HostApi.Name
	}
	return d
}

func (*PortAudioBackend) Open(p Params, cb Callback) (Stream, error) {
	out, ok := p.Output.ref.(*portaudio.DeviceInfo)
	if !ok {
		return nil, errNotPortAudioDevice
	}

	params := portaudio.StreamParameters{
		Output: portaudio.StreamDeviceParameters{
			Device:   out,
			Channels: p.Channels,
			Latency:  out.DefaultLowOutputLatency,
		},
		SampleRate:      float64(p.SampleRate),
		FramesPerBuffer: p.FramesPerBuffer,
		Flags:           portaudio.ClipOff,
	}

	var adapt *inputAdapter
	if p.Input != nil {
		in, ok := p.Input.ref.(*portaudio.DeviceInfo)
		if !ok {
			return nil, errNotPortAudioDevice
		}
		inChannels := min(p.Channels, in.MaxInputChannels)
		params.Input = portaudio.StreamDeviceParameters{
			Device:   in,
			Channels: inChannels,
			Latency:  in.DefaultLowInputLatency,
		}
		if inChannels != p.Channels {
			adapt = newInputAdapter(inChannels, p.Channels, p.FramesPerBuffer, cb)
		}
	}

	var (
		s   *portaudio.Stream
		err error
	)
	switch {
	case p.Input == nil:
		s, err = portaudio.OpenStream(params, func(out []float32) { cb(nil, out) })
	case adapt != nil:
		s, err = portaudio.OpenStream(params, adapt.process)
	default:
		s, err = portaudio.OpenStream(params, func(in, out []float32) { cb(in, out) })
	}
	if err != nil {
		return nil, fmt.Errorf("portaudio: %w", err)
	}

	return s, nil
}

// inputAdapter widens capture with fewer channels than the output before
// handing it to the callback.
type inputAdapter struct {
	from, to int
	buf      []float32
	cb       Callback
}

func newInputAdapter(from, to, frames int, cb Callback) *inputAdapter {
	return &inputAdapter{from: from, to: to, buf: make([]float32, frames*to), cb: cb}
}

func (a *inputAdapter) process(in, out []float32) {
	frames := min(len(in)/a.from, len(a.buf)/a.to)
	for f := range frames {
		for c := range a.to {
			a.buf[f*a.to+c] = in[f*a.from+c%a.from]
		}
	}
	a.cb(a.buf[:frames*a.to], out)
}
