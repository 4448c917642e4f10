// SPDX-License-Identifier: EPL-2.0

package mixbridge

import (
	"fmt"
	"path/filepath"

	"github.com/ik5/mixbridge/audio"
	"github.com/ik5/mixbridge/formats/aiff"
	"github.com/ik5/mixbridge/formats/mp3"
	"github.com/ik5/mixbridge/formats/vorbis"
	"github.com/ik5/mixbridge/formats/wav"
	"github.com/ik5/mixbridge/mixer"
	"github.com/ik5/mixbridge/playback"
)

// DefaultRegistry returns a registry with every bundled decoder.
func DefaultRegistry() *audio.Registry {
	r := audio.NewRegistry()
	r.Register("wav", wav.Decoder{})
	r.Register("mp3", mp3.Decoder{})
	r.Register("ogg", vorbis.Decoder{})
	r.Register("oga", vorbis.Decoder{})
	r.Register("aiff", aiff.Decoder{})
	r.Register("aif", aiff.Decoder{})

	return r
}

// OpenFile decodes path and wraps it in a player producing cfg's format.
// The player is not started.
func OpenFile(path string, cfg mixer.Config, opts ...playback.Option) (*playback.Player, error) {
	src, err := DefaultRegistry().Open(path)
	if err != nil {
		return nil, err
	}

	opts = append([]playback.Option{playback.WithName(filepath.Base(path))}, opts...)
	p, err := playback.New(src, cfg, opts...)
	if err != nil {
		src.Close()
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return p, nil
}
