// SPDX-License-Identifier: EPL-2.0

package mixer

import "sync/atomic"

// Stats counts what the engine corrected or skipped since it was created.
type Stats struct {
	Cycles         uint64 // mix cycles published
	Skipped        uint64 // contributions dropped for a short read
	Throttles      uint64 // rate reductions applied
	Normalizations uint64 // cycles scaled down to the ceiling
	Contended      uint64 // bridge calls that found the bus locked
}

type counters struct {
	cycles         atomic.Uint64
	skipped        atomic.Uint64
	throttles      atomic.Uint64
	normalizations atomic.Uint64
	contended      atomic.Uint64
}

func (c *counters) snapshot() Stats {
	return Stats{
		Cycles:         c.cycles.Load(),
		Skipped:        c.skipped.Load(),
		Throttles:      c.throttles.Load(),
		Normalizations: c.normalizations.Load(),
		Contended:      c.contended.Load(),
	}
}
