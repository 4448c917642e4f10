// SPDX-License-Identifier: EPL-2.0

package playback

import (
	"time"

	"go.uber.org/zap"
)

type options struct {
	log        *zap.Logger
	name       string
	maxBacklog time.Duration
	prefill    int
	manual     bool
}

func defaultOptions() options {
	return options{
		log:        zap.NewNop(),
		maxBacklog: time.Second,
		prefill:    2,
	}
}

type Option func(*options)

func WithLogger(l *zap.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.log = l
		}
	}
}

// WithName labels the player's log entries, usually with the file name.
func WithName(name string) Option {
	return func(o *options) { o.name = name }
}

// WithMaxBacklog caps how much decoded audio may wait for the engine.
func WithMaxBacklog(d time.Duration) Option {
	return func(o *options) {
		if d > 0 {
			o.maxBacklog = d
		}
	}
}

// WithPrefill sets how many buffer periods Play decodes up front.
func WithPrefill(periods int) Option {
	return func(o *options) {
		if periods >= 0 {
			o.prefill = periods
		}
	}
}

// WithManualFill disables the pump goroutine. The caller drives production
// through Fill, as offline rendering does.
func WithManualFill() Option {
	return func(o *options) { o.manual = true }
}
