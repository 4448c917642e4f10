// SPDX-License-Identifier: EPL-2.0

package playback

import "errors"

var (
	ErrClosed        = errors.New("player closed")
	ErrInvalidSource = errors.New("source has no channels")
)
