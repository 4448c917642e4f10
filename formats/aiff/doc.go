// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes uncompressed AIFF files using github.com/go-audio/aiff.
//
// Sample sizes of 8, 16, 24 and 32 bits are normalized to float32 in
// [-1.0, 1.0). AIFF-C compressed variants are rejected.
//
// Like the WAV decoder, go-audio seeks between chunks, so readers that
// cannot seek are loaded into memory before decoding.
package aiff
