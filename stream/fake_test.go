// SPDX-License-Identifier: EPL-2.0

package stream

import "sync"

// recorder collects lifecycle events from fakes in order.
type recorder struct {
	mu     sync.Mutex
	events []string
}

func (r *recorder) add(e string) {
	r.mu.Lock()
	r.events = append(r.events, e)
	r.mu.Unlock()
}

func (r *recorder) list() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string(nil), r.events...)
}

type fakeBackend struct {
	rec *recorder

	initErr    error
	inputErr   error
	noOutput   bool
	openErr    error
	startErr   error
	closeErr   error
	devices    []Device
	lastParams Params
	streams    []*fakeStream
}

func (b *fakeBackend) Init() error {
	b.rec.add("init")
	return b.initErr
}

func (b *fakeBackend) Terminate() error {
	b.rec.add("terminate")
	return nil
}

func (b *fakeBackend) DefaultInput() (*Device, error) {
	if b.inputErr != nil {
		return nil, b.inputErr
	}
	return &Device{Name: "mic", MaxInputChannels: 2}, nil
}

func (b *fakeBackend) DefaultOutput() (*Device, error) {
	if b.noOutput {
		return nil, nil
	}
	return &Device{Name: "speakers", MaxOutputChannels: 2}, nil
}

func (b *fakeBackend) Devices() ([]Device, error) { return b.devices, nil }

func (b *fakeBackend) Open(p Params, cb Callback) (Stream, error) {
	if b.openErr != nil {
		return nil, b.openErr
	}
	b.lastParams = p
	s := &fakeStream{rec: b.rec, cb: cb, startErr: b.startErr, closeErr: b.closeErr}
	b.streams = append(b.streams, s)
	b.rec.add("open")
	return s, nil
}

type fakeStream struct {
	rec      *recorder
	cb       Callback
	startErr error
	closeErr error

	mu      sync.Mutex
	running bool
	closed  bool
}

func (s *fakeStream) Start() error {
	if s.startErr != nil {
		return s.startErr
	}
	s.mu.Lock()
	s.running = true
	s.mu.Unlock()
	s.rec.add("stream start")
	return nil
}

func (s *fakeStream) Stop() error {
	s.mu.Lock()
	s.running = false
	s.mu.Unlock()
	s.rec.add("stream stop")
	return nil
}

func (s *fakeStream) Close() error {
	s.mu.Lock()
	s.closed = true
	s.mu.Unlock()
	s.rec.add("stream close")
	return s.closeErr
}

func (s *fakeStream) state() (running, closed bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.running, s.closed
}

// recordingFeed logs its Close into the shared recorder.
type recordingFeed struct {
	rec *recorder
}

func (f *recordingFeed) Active() bool        { return false }
func (f *recordingFeed) Drain([]float32) int { return 0 }
func (f *recordingFeed) Backlog() int        { return 0 }

func (f *recordingFeed) Close() error {
	f.rec.add("feed close")
	return nil
}
