// SPDX-License-Identifier: EPL-2.0

// Package mixbridge mixes audio files into a live input stream.
//
// The real work happens in the subpackages:
//
//   - mixer: the mixing engine and its real-time callback
//   - playback: adapts decoded sources into engine feeds
//   - stream: device backends and the lifecycle controller
//   - audio: decoding pipeline (resampler, channel mapping, registry)
//   - formats/wav, formats/mp3, formats/vorbis, formats/aiff: decoders
//
// This package ties them together for the common cases.
//
// # Live mixing
//
//	eng, _ := mixer.NewEngine(mixer.DefaultConfig())
//	ctl, _ := stream.NewController(eng, stream.NewPortAudioBackend())
//	defer ctl.Close()
//
//	p, err := mixbridge.OpenFile("jingle.ogg", eng.Config())
//	if err != nil {
//		return err
//	}
//	ctl.RegisterSource(p)
//	p.Play()
//	ctl.Start()
//
// # Offline mixdown
//
// Render runs the same engine without a device, one cycle per buffer
// period, and writes a 16-bit WAV:
//
//	out, _ := os.Create("mix.wav")
//	frames, err := mixbridge.Render(ctx, out, mixer.DefaultConfig(), sources)
//
// # Supported Formats
//
// DefaultRegistry maps file extensions to decoders:
//   - WAV (PCM 16/24/32-bit): .wav
//   - MP3: .mp3
//   - Ogg Vorbis: .ogg, .oga
//   - AIFF (PCM 8/16/24/32-bit): .aiff, .aif
package mixbridge
