// SPDX-License-Identifier: EPL-2.0

// Package wav decodes and encodes integer PCM WAV files using
// github.com/go-audio/wav.
//
// Decoding supports 16, 24 and 32-bit PCM at any sample rate and channel
// count. The decoder seeks between chunks; readers that cannot seek are
// buffered in memory first.
//
//	f, _ := os.Open("clip.wav")
//	src, err := wav.Decoder{}.Decode(f)
//	defer src.Close() // closes f
//
// Writer streams float32 samples into a WAV file, which is how offline
// mixdowns are stored:
//
//	w, _ := wav.NewWriter(out, 44100, 2, 16)
//	w.WriteSamples(mixed)
//	w.Close()
package wav
