// SPDX-License-Identifier: EPL-2.0

// Package audio provides the streaming primitives that feed the mixer.
//
//   - Source: interleaved float32 stream with a fixed rate and channel count
//   - Decoder and Registry: turn files into Sources by extension
//   - Resampler: sample rate conversion with a playback speed control
//   - ChannelMixer: channel layout conversion (mono <-> stereo and friends)
//
// # Pipelines
//
// A decoded file is brought to the mixer's fixed format by chaining:
//
//	src, _ := registry.Open("clip.mp3")
//	res := audio.NewResampler(src, 44100)
//	out := audio.NewChannelMixer(res, 2)
//
// Changing res.SetSpeed between reads slows or speeds up consumption of the
// source without changing the output sample rate.
//
// # Sample Format
//
// Samples are float32 in [-1.0, 1.0]. Sums of several sources may exceed that
// range; the mixer normalizes them before they reach a device.
//
// # Error Handling
//
// ReadSamples returns io.EOF once the stream is exhausted, possibly together
// with the last samples:
//
//	for {
//	    n, err := source.ReadSamples(buf)
//	    process(buf[:n])
//	    if err == io.EOF {
//	        break
//	    }
//	    if err != nil {
//	        return err
//	    }
//	}
package audio
