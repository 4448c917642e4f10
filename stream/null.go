// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"sync"
	"time"
)

// NullBackend drives streams from a timer instead of hardware. Input is
// always silence. It is used for headless runs and tests.
type NullBackend struct {
	// Sink, if set, receives every output buffer from the stream goroutine.
	// The slice is reused after Sink returns.
	Sink func(out []float32)
}

var nullDevice = Device{
	Name:              "null",
	MaxInputChannels:  2,
	MaxOutputChannels: 2,
}

func (*NullBackend) Init() error      { return nil }
func (*NullBackend) Terminate() error { return nil }

func (*NullBackend) DefaultInput() (*Device, error) {
	d := nullDevice
	return &d, nil
}

func (*NullBackend) DefaultOutput() (*Device, error) {
	d := nullDevice
	return &d, nil
}

func (*NullBackend) Devices() ([]Device, error) {
	return []Device{nullDevice}, nil
}

func (b *NullBackend) Open(p Params, cb Callback) (Stream, error) {
	if p.SampleRate <= 0 || p.Channels <= 0 || p.FramesPerBuffer <= 0 {
		return nil, ErrStreamOpen
	}

	return &nullStream{
		cb:     cb,
		sink:   b.Sink,
		period: time.Duration(p.FramesPerBuffer) * time.Second / time.Duration(p.SampleRate),
		in:     make([]float32, p.FramesPerBuffer*p.Channels),
		out:    make([]float32, p.FramesPerBuffer*p.Channels),
	}, nil
}

type nullStream struct {
	cb     Callback
	sink   func([]float32)
	period time.Duration
	in     []float32
	out    []float32

	mu   sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func (s *nullStream) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop != nil {
		return nil
	}
	s.stop = make(chan struct{})
	s.done = make(chan struct{})
	go s.loop(s.stop, s.done)

	return nil
}

func (s *nullStream) loop(stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	ticker := time.NewTicker(s.period)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
		}

		s.cb(s.in, s.out)
		if s.sink != nil {
			s.sink(s.out)
		}
	}
}

func (s *nullStream) Stop() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.stop == nil {
		return nil
	}
	close(s.stop)
	<-s.done
	s.stop, s.done = nil, nil

	return nil
}

func (s *nullStream) Close() error { return s.Stop() }
