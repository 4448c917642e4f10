// SPDX-License-Identifier: EPL-2.0

// Package stream connects a mixer.Engine to an audio device.
//
// A Backend abstracts the audio subsystem: PortAudio for full duplex
// capture and playback, oto for output-only playback, and a timer-driven
// NullBackend for headless use. Build with the headless tag to leave out
// the cgo backends.
//
// The Controller owns the lifecycle. Start resolves the default devices,
// opens a stream whose callback is Engine.Process, starts the mixing
// worker and then the stream. Close stops the worker, releases every
// registered source and only then closes the stream and terminates the
// backend.
//
//	ctl, err := stream.NewController(eng, stream.NewPortAudioBackend(),
//		stream.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	defer ctl.Close()
//
//	if err := ctl.Start(); errors.Is(err, stream.ErrNoDevice) {
//		// no microphone or speakers
//	}
package stream
