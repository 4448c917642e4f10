// SPDX-License-Identifier: EPL-2.0

package mixer

// Process is the real-time callback body: it copies in to out and adds the
// published mix on top. Missing input is treated as silence.
//
// It never blocks and never allocates. If the bus is being swapped, or its
// length does not match out, the mix is left out for this call.
func (e *Engine) Process(in, out []float32) {
	n := copy(out, in)
	clear(out[n:])

	if !e.busMu.TryLock() {
		e.stats.contended.Add(1)
		return
	}
	if len(e.bus) == len(out) {
		for i, v := range e.bus {
			out[i] += v
		}
	}
	e.busMu.Unlock()
}
