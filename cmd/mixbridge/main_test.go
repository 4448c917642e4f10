// SPDX-License-Identifier: EPL-2.0

package main

import (
	"testing"
	"time"

	"go.uber.org/zap/zaptest"

	"github.com/ik5/mixbridge/internal/audiotest"
	"github.com/ik5/mixbridge/mixer"
	"github.com/ik5/mixbridge/playback"
	"github.com/ik5/mixbridge/stream"
)

// openingBackend is a null backend whose Open takes as long as a real
// device does.
type openingBackend struct {
	stream.NullBackend
	delay time.Duration
}

func (b *openingBackend) Open(p stream.Params, cb stream.Callback) (stream.Stream, error) {
	time.Sleep(b.delay)
	return b.NullBackend.Open(p, cb)
}

func TestStartPlayback_KeepsNominalRate(t *testing.T) {
	if testing.Short() {
		t.Skip("runs in real time")
	}
	t.Parallel()

	log := zaptest.NewLogger(t)
	cfg := mixer.DefaultConfig()

	eng, err := mixer.NewEngine(cfg, mixer.WithLogger(log))
	if err != nil {
		t.Fatal(err)
	}
	ctl, err := stream.NewController(eng, &openingBackend{delay: 150 * time.Millisecond}, stream.WithLogger(log))
	if err != nil {
		t.Fatal(err)
	}
	defer ctl.Close()

	players := make([]*playback.Player, 0, 2)
	for range 2 {
		p, err := playback.New(audiotest.NewConstantSource(44100, 2, 44100*20, 0.2), cfg, playback.WithLogger(log))
		if err != nil {
			t.Fatal(err)
		}
		ctl.RegisterSource(p)
		players = append(players, p)
	}

	if err := startPlayback(ctl, players); err != nil {
		t.Fatalf("startPlayback() error = %v", err)
	}
	time.Sleep(500 * time.Millisecond)

	for i, p := range players {
		if !p.Active() {
			t.Errorf("player %d not active", i)
		}
		if got := p.Rate(); got != 1 {
			t.Errorf("player %d Rate() = %v, want 1", i, got)
		}
	}
	if st := eng.Stats(); st.Throttles != 0 {
		t.Errorf("Throttles = %d, want 0", st.Throttles)
	}
}
