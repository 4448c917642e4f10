// SPDX-License-Identifier: EPL-2.0

package mixer

import "errors"

var (
	ErrInvalidConfig = errors.New("invalid mixer configuration")
	ErrRunning       = errors.New("mixer worker already running")
)
