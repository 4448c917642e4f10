// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"testing"
	"time"

	"github.com/ik5/mixbridge/internal/audiotest"
)

func constant(n int, v float32) []float32 {
	buf := make([]float32, n)
	for i := range buf {
		buf[i] = v
	}
	return buf
}

func TestProcess(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	e.Register(audiotest.NewConstantFeed(1024, 0.25))
	e.MixOnce()

	tests := []struct {
		name string
		in   []float32
		out  int
		want float32
	}{
		{"passthrough plus mix", constant(1024, 0.1), 1024, 0.35},
		{"no input", nil, 1024, 0.25},
		{"length mismatch", constant(256, 0.1), 256, 0.1},
	}

	for _, tt := range tests {
		out := constant(tt.out, 9)
		e.Process(tt.in, out)
		for i, v := range out {
			if d := v - tt.want; d > epsilon || d < -epsilon {
				t.Fatalf("%s: out[%d] = %v, want %v", tt.name, i, v, tt.want)
			}
		}
	}
}

func TestProcess_DoesNotBlockOnHeldBus(t *testing.T) {
	t.Parallel()

	e := newTestEngine(t)
	e.Register(audiotest.NewConstantFeed(1024, 0.5))
	e.MixOnce()

	in := constant(1024, 0.1)
	out := make([]float32, 1024)

	e.busMu.Lock()
	done := make(chan struct{})
	go func() {
		e.Process(in, out)
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("Process blocked on the bus lock")
	}
	e.busMu.Unlock()

	assertAll(t, out, 0.1)
	if st := e.Stats(); st.Contended != 1 {
		t.Errorf("Contended = %d, want 1", st.Contended)
	}
}

func TestProcess_DoesNotAllocate(t *testing.T) {
	e, err := NewEngine(DefaultConfig())
	if err != nil {
		t.Fatal(err)
	}
	e.Register(audiotest.NewConstantFeed(1024, 0.5))
	e.MixOnce()

	in := constant(1024, 0.1)
	out := make([]float32, 1024)

	if allocs := testing.AllocsPerRun(100, func() { e.Process(in, out) }); allocs != 0 {
		t.Errorf("Process allocated %v times per call", allocs)
	}
}

func BenchmarkProcess(b *testing.B) {
	e, err := NewEngine(DefaultConfig())
	if err != nil {
		b.Fatal(err)
	}
	e.MixOnce()

	in := constant(1024, 0.1)
	out := make([]float32, 1024)

	b.ReportAllocs()
	for b.Loop() {
		e.Process(in, out)
	}
}
