// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis streams using
// github.com/jfreymuth/oggvorbis.
//
// Samples come out interleaved at the stream's native rate and channel
// count:
//
//	[L0, R0, L1, R1, L2, R2, ...]
//
// Reads are truncated to whole frames, so a destination buffer that is not
// a multiple of Channels() is only partially filled.
package vorbis
