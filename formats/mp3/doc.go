// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 streams using github.com/hajimehoshi/go-mp3.
//
// The decoder always yields stereo float32 samples at the stream's own
// sample rate. Feed the source through audio.NewResampler and
// audio.NewChannelMixer to reach the mixing engine's format:
//
//	src, err := mp3.Decoder{}.Decode(f)
//	if err != nil {
//		return err
//	}
//	defer src.Close() // closes f
//
//	stereo := audio.NewChannelMixer(audio.NewResampler(src, 44100), 2)
package mp3
