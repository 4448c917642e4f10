// SPDX-License-Identifier: EPL-2.0

//go:build headless

package main

import (
	"fmt"

	"github.com/ik5/mixbridge/stream"
)

const (
	defaultBackend = "null"
	backendNames   = "null"
)

func newBackend(name string) (stream.Backend, error) {
	if name != "null" {
		return nil, fmt.Errorf("unknown backend %q (built headless, only null is available)", name)
	}
	return &stream.NullBackend{}, nil
}
