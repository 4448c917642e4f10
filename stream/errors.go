// SPDX-License-Identifier: EPL-2.0

package stream

import "errors"

var (
	ErrNoDevice       = errors.New("no audio device available")
	ErrStreamOpen     = errors.New("failed to open audio stream")
	ErrStreamStart    = errors.New("failed to start audio stream")
	ErrAlreadyRunning = errors.New("audio stream already running")
	ErrClosed         = errors.New("controller closed")
)
