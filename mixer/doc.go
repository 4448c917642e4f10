// SPDX-License-Identifier: EPL-2.0

// Package mixer implements the real-time mixing core.
//
// An Engine owns a set of Feeds. Every cycle its worker drains one buffer
// period from each active feed, averages the contributions with equal
// weight, scales the result down if its peak exceeds the ceiling and
// publishes it. The hardware callback calls Process, which passes input
// through and adds the published mix when it can take the bus lock
// without waiting.
//
// Feeds whose backlog grows past Config.LatencyThreshold are slowed by
// Config.RateStep per cycle, never below Config.MinRate. The rate is never
// raised again.
//
//	eng, err := mixer.NewEngine(mixer.DefaultConfig(), mixer.WithLogger(log))
//	if err != nil {
//		return err
//	}
//	eng.Register(feed)
//	if err := eng.Start(); err != nil {
//		return err
//	}
//	defer eng.Close()
//
//	// from the audio callback
//	eng.Process(in, out)
package mixer
