// SPDX-License-Identifier: EPL-2.0

package utils

// Float32ToInt16 clamps x to [-1, 1] and scales it to 16-bit PCM.
func Float32ToInt16(x float32) int16 {
	return int16(FloatToPCM(x, 16))
}

// FloatToPCM clamps x to [-1, 1] and scales it to a signed integer of the
// given bit depth. The positive maximum is 2^(bits-1)-1 so 1.0 never overflows.
func FloatToPCM(x float32, bitDepth int) int {
	x = Clamp(x)
	full := float64(int64(1)<<(bitDepth-1) - 1)

	return int(float64(x) * full)
}

// PCMToFloat normalizes a signed integer sample of the given bit depth to
// [-1, 1). 8-bit samples are treated as signed, the way go-audio decodes them.
func PCMToFloat(v int, bitDepth int) float32 {
	full := float64(int64(1) << (bitDepth - 1))

	return float32(float64(v) / full)
}

// Clamp limits x to [-1, 1].
func Clamp(x float32) float32 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}

	return x
}

// PeakAbs returns the largest absolute sample value in buf.
func PeakAbs(buf []float32) float32 {
	var peak float32
	for _, v := range buf {
		if v < 0 {
			v = -v
		}
		if v > peak {
			peak = v
		}
	}

	return peak
}

// Scale multiplies every sample of buf by k in place.
func Scale(buf []float32, k float32) {
	for i := range buf {
		buf[i] *= k
	}
}
