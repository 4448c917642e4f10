package vorbis

import "errors"

var ErrNotVorbisFile = errors.New("not an Ogg Vorbis stream")
