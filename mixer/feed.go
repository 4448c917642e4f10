// SPDX-License-Identifier: EPL-2.0

package mixer

// Feed is one playback source as seen by the engine. Samples are interleaved
// float32 at the engine's sample rate and channel count.
//
// Implementations must be safe for concurrent use: the engine calls them
// from its worker while producers keep filling the backlog.
type Feed interface {
	// Active reports whether the feed is currently producing audio.
	Active() bool
	// Drain moves up to len(dst) samples out of the backlog into dst and
	// returns how many were written. It never blocks and returns 0 once the
	// feed has been closed.
	Drain(dst []float32) int
	// Backlog is the number of queued samples not yet drained.
	Backlog() int
}

// RateController is implemented by feeds that can slow their production
// when the engine detects excessive latency.
type RateController interface {
	SetRate(rate float64)
}

// Finisher is implemented by feeds with a natural end. Finished feeds are
// removed from the engine and closed if they implement io.Closer.
type Finisher interface {
	Finished() bool
}
