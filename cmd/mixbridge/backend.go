// SPDX-License-Identifier: EPL-2.0

//go:build !headless

package main

import (
	"fmt"

	"github.com/ik5/mixbridge/stream"
)

const (
	defaultBackend = "portaudio"
	backendNames   = "portaudio, oto, null"
)

func newBackend(name string) (stream.Backend, error) {
	switch name {
	case "portaudio":
		return stream.NewPortAudioBackend(), nil
	case "oto":
		return stream.NewOtoBackend(), nil
	case "null":
		return &stream.NullBackend{}, nil
	}
	return nil, fmt.Errorf("unknown backend %q (want %s)", name, backendNames)
}
