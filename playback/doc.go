// SPDX-License-Identifier: EPL-2.0

// Package playback adapts decoded audio sources to the mixer.
//
// A Player pulls from an audio.Source through a resampler and channel
// mapper, keeps a bounded backlog in the engine's format and implements
// mixer.Feed, mixer.RateController and mixer.Finisher:
//
//	p, err := playback.New(src, eng.Config(), playback.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	eng.Register(p)
//	p.Play()
//
// When the engine lowers a player's rate the pump produces audio more
// slowly and the resampler stretches the source to match.
package playback
