// SPDX-License-Identifier: EPL-2.0

package stream

import (
	"encoding/binary"
	"math"
)

// callbackReader runs the callback one period at a time and serves its
// output as float32 little-endian bytes to oto's pull loop.
type callbackReader struct {
	cb      Callback
	in      []float32
	out     []float32
	pcm     []byte
	pending []byte
}

func newCallbackReader(cb Callback, samples int) *callbackReader {
	return &callbackReader{
		cb:  cb,
		in:  make([]float32, samples),
		out: make([]float32, samples),
		pcm: make([]byte, samples*4),
	}
}

func (r *callbackReader) Read(p []byte) (int, error) {
	n := 0
	for n < len(p) {
		if len(r.pending) == 0 {
			r.cb(r.in, r.out)
			for i, v := range r.out {
				binary.LittleEndian.PutUint32(r.pcm[i*4:], math.Float32bits(v))
			}
			r.pending = r.pcm
		}
		m := copy(p[n:], r.pending)
		r.pending = r.pending[m:]
		n += m
	}
	return n, nil
}
