// SPDX-License-Identifier: EPL-2.0

package stream

import "time"

// Device describes one audio endpoint as reported by a Backend.
type Device struct {
	Index             int
	Name              string
	HostAPI           string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
	InputLatency      time.Duration
	OutputLatency     time.Duration

	ref any // backend handle
}

// Params fixes the shape of a duplex stream. Input may be nil for an
// output-only stream.
type Params struct {
	Input           *Device
	Output          *Device
	SampleRate      int
	Channels        int
	FramesPerBuffer int
}

// Callback is invoked by the backend once per buffer period with
// interleaved input and output. It runs on the audio thread and must not
// block.
type Callback func(in, out []float32)

type Stream interface {
	Start() error
	Stop() error
	Close() error
}

// Backend is an audio subsystem able to open callback-driven streams.
type Backend interface {
	Init() error
	Terminate() error
	DefaultInput() (*Device, error)
	DefaultOutput() (*Device, error)
	Devices() ([]Device, error)
	Open(p Params, cb Callback) (Stream, error)
}
