// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"errors"
	"io"
	"math"
	"os"
	"path/filepath"
	"testing"

	goaudio "github.com/go-audio/audio"
)

// writeTempWAV encodes samples with Writer and returns the file path.
func writeTempWAV(t *testing.T, sampleRate, channels, bitDepth int, samples []float32) string {
	t.Helper()

	path := filepath.Join(t.TempDir(), "clip.wav")
	f, err := os.Create(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	w, err := NewWriter(f, sampleRate, channels, bitDepth)
	if err != nil {
		t.Fatalf("NewWriter() error = %v", err)
	}
	if err := w.WriteSamples(samples); err != nil {
		t.Fatalf("WriteSamples() error = %v", err)
	}
	if err := w.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}

	return path
}

func TestDecoder_RoundTrip(t *testing.T) {
	t.Parallel()

	samples := []float32{0, 0.25, -0.25, 0.5, -0.5, 0.75}

	for _, bits := range []int{16, 24, 32} {
		path := writeTempWAV(t, 22050, 2, bits, samples)

		f, err := os.Open(path)
		if err != nil {
			t.Fatal(err)
		}

		src, err := Decoder{}.Decode(f)
		if err != nil {
			t.Fatalf("%d-bit Decode() error = %v", bits, err)
		}
		if src.SampleRate() != 22050 || src.Channels() != 2 {
			t.Errorf("%d-bit format = %d Hz/%d ch, want 22050 Hz/2 ch", bits, src.SampleRate(), src.Channels())
		}

		buf := make([]float32, 16)
		n, err := src.ReadSamples(buf)
		if err != io.EOF {
			t.Errorf("%d-bit ReadSamples() error = %v, want io.EOF on short read", bits, err)
		}
		if n != len(samples) {
			t.Fatalf("%d-bit ReadSamples() n = %d, want %d", bits, n, len(samples))
		}
		for i, want := range samples {
			if math.Abs(float64(buf[i]-want)) > 1e-4 {
				t.Errorf("%d-bit sample %d = %v, want %v", bits, i, buf[i], want)
			}
		}

		if err := src.Close(); err != nil {
			t.Errorf("Close() error = %v", err)
		}
		if _, err := f.Read(make([]byte, 1)); !errors.Is(err, os.ErrClosed) {
			t.Errorf("file still open after Close(): %v", err)
		}
	}
}

func TestDecoder_NonSeekableReader(t *testing.T) {
	t.Parallel()

	data, err := os.ReadFile(writeTempWAV(t, 8000, 1, 16, []float32{0.5, -0.5}))
	if err != nil {
		t.Fatal(err)
	}

	src, err := Decoder{}.Decode(io.MultiReader(bytes.NewReader(data)))
	if err != nil {
		t.Fatalf("Decode() error = %v", err)
	}
	if src.Channels() != 1 {
		t.Errorf("Channels() = %d, want 1", src.Channels())
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"not riff", []byte("this is definitely not a wav file, just some text padding it out")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := (Decoder{}).Decode(bytes.NewReader(tt.data)); err == nil {
				t.Error("Decode() error = nil, want error")
			}
		})
	}
}

// fakePCM replays fixed integer samples through the pcmReader interface.
type fakePCM struct {
	data []int
	err  error
}

func (f *fakePCM) PCMBuffer(buf *goaudio.IntBuffer) (int, error) {
	if f.err != nil {
		return 0, f.err
	}
	n := copy(buf.Data, f.data)
	f.data = f.data[n:]
	return n, nil
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	src := &source{
		dec:        &fakePCM{data: []int{16384, -16384, 32767, -32768, 0, 8192}},
		sampleRate: 8000,
		channels:   2,
		bitDepth:   16,
	}

	buf := make([]float32, 4)
	n, err := src.ReadSamples(buf)
	if err != nil || n != 4 {
		t.Fatalf("first ReadSamples() = (%d, %v), want (4, nil)", n, err)
	}
	if buf[0] != 0.5 || buf[1] != -0.5 || buf[3] != -1 {
		t.Errorf("converted samples = %v", buf)
	}

	n, err = src.ReadSamples(buf)
	if n != 2 || err != io.EOF {
		t.Errorf("second ReadSamples() = (%d, %v), want (2, io.EOF)", n, err)
	}

	n, err = src.ReadSamples(buf)
	if n != 0 || err != io.EOF {
		t.Errorf("third ReadSamples() = (%d, %v), want (0, io.EOF)", n, err)
	}
}

func TestSource_ReadError(t *testing.T) {
	t.Parallel()

	boom := errors.New("boom")
	src := &source{dec: &fakePCM{err: boom}, channels: 1, bitDepth: 16}

	if _, err := src.ReadSamples(make([]float32, 4)); !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want wrapped boom", err)
	}
}
