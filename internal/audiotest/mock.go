// SPDX-License-Identifier: EPL-2.0

// Package audiotest holds test doubles shared by the mixbridge packages.
// The types satisfy audio.Source and mixer.Feed structurally so that the
// package imports neither.
package audiotest

import (
	"io"
	"math"
	"sync"
)

// MockSource is a decoded-stream double generating frames from a waveform.
type MockSource struct {
	sampleRate   int
	channels     int
	totalSamples int // frames to generate
	generated    int // frames generated so far
	waveform     func(sample int, channel int) float32

	mu     sync.Mutex
	closed bool
}

// NewMockSource creates a new mock audio source producing totalSamples frames.
func NewMockSource(sampleRate, channels, totalSamples int, waveform func(sample int, channel int) float32) *MockSource {
	return &MockSource{
		sampleRate:   sampleRate,
		channels:     channels,
		totalSamples: totalSamples,
		waveform:     waveform,
	}
}

// NewSilentSource creates a mock source that generates silence.
func NewSilentSource(sampleRate, channels, totalSamples int) *MockSource {
	return NewConstantSource(sampleRate, channels, totalSamples, 0)
}

// NewSineSource creates a mock source that generates a sine wave.
func NewSineSource(sampleRate, channels, totalSamples int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(sample int, channel int) float32 {
		t := float64(sample) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a mock source with constant value.
func NewConstantSource(sampleRate, channels, totalSamples int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, totalSamples, func(int, int) float32 {
		return value
	})
}

func (m *MockSource) SampleRate() int { return m.sampleRate }
func (m *MockSource) Channels() int   { return m.channels }

func (m *MockSource) Close() error {
	m.mu.Lock()
	m.closed = true
	m.mu.Unlock()
	return nil
}

// Closed reports whether Close was called.
func (m *MockSource) Closed() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.closed
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.generated >= m.totalSamples {
		return 0, io.EOF
	}

	frames := min(len(dst)/m.channels, m.totalSamples-m.generated)
	for frame := range frames {
		for ch := range m.channels {
			dst[frame*m.channels+ch] = m.waveform(m.generated+frame, ch)
		}
	}
	m.generated += frames

	if m.generated >= m.totalSamples {
		return frames * m.channels, io.EOF
	}

	return frames * m.channels, nil
}

// MockFeed is a playback feed double with a manually filled backlog.
type MockFeed struct {
	mu       sync.Mutex
	active   bool
	finished bool
	closed   bool
	backlog  []float32
	rates    []float64
	drains   int
}

// NewMockFeed returns an active feed with an empty backlog.
func NewMockFeed() *MockFeed {
	return &MockFeed{active: true}
}

// NewConstantFeed returns an active feed holding n samples of value.
func NewConstantFeed(n int, value float32) *MockFeed {
	f := NewMockFeed()
	f.PushConstant(n, value)
	return f
}

// Push appends samples to the backlog.
func (f *MockFeed) Push(samples ...float32) {
	f.mu.Lock()
	f.backlog = append(f.backlog, samples...)
	f.mu.Unlock()
}

// PushConstant appends n samples of value to the backlog.
func (f *MockFeed) PushConstant(n int, value float32) {
	f.mu.Lock()
	for range n {
		f.backlog = append(f.backlog, value)
	}
	f.mu.Unlock()
}

func (f *MockFeed) SetActive(active bool) {
	f.mu.Lock()
	f.active = active
	f.mu.Unlock()
}

func (f *MockFeed) SetFinished(finished bool) {
	f.mu.Lock()
	f.finished = finished
	f.mu.Unlock()
}

func (f *MockFeed) Active() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.active && !f.closed
}

func (f *MockFeed) Finished() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.finished
}

func (f *MockFeed) Drain(dst []float32) int {
	f.mu.Lock()
	defer f.mu.Unlock()

	f.drains++
	if f.closed {
		return 0
	}
	n := copy(dst, f.backlog)
	f.backlog = f.backlog[:copy(f.backlog, f.backlog[n:])]

	return n
}

func (f *MockFeed) Backlog() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.backlog)
}

func (f *MockFeed) SetRate(rate float64) {
	f.mu.Lock()
	f.rates = append(f.rates, rate)
	f.mu.Unlock()
}

// Rates returns every rate propagated to the feed, oldest first.
func (f *MockFeed) Rates() []float64 {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]float64(nil), f.rates...)
}

// Drains returns how many times Drain was called.
func (f *MockFeed) Drains() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.drains
}

func (f *MockFeed) Close() error {
	f.mu.Lock()
	f.closed = true
	f.backlog = nil
	f.mu.Unlock()
	return nil
}

func (f *MockFeed) Closed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}
