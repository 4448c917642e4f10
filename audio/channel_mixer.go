// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMixer converts the channel layout of src to a fixed channel count.
//
//   - N -> 1 averages all channels
//   - 1 -> N duplicates the mono channel
//   - N -> M copies channel c from source channel c % N
type ChannelMixer struct {
	src      Source
	channels int
	tmp      []float32
}

// NewChannelMixer returns a Source that presents src with the given channel count.
func NewChannelMixer(src Source, channels int) *ChannelMixer {
	return &ChannelMixer{
		src:      src,
		channels: channels,
		tmp:      make([]float32, 4096),
	}
}

// NewMonoMixer returns a ChannelMixer that averages src down to one channel.
func NewMonoMixer(src Source) *ChannelMixer {
	return NewChannelMixer(src, 1)
}

func (m *ChannelMixer) SampleRate() int { return m.src.SampleRate() }
func (m *ChannelMixer) Channels() int   { return m.channels }

func (m *ChannelMixer) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("channel mixer: %w", err)
	}

	return nil
}

func (m *ChannelMixer) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if len(dst)%m.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	in := m.src.Channels()
	if in == m.channels {
		return m.src.ReadSamples(dst)
	}

	frames := len(dst) / m.channels
	need := frames * in
	if cap(m.tmp) < need {
		m.tmp = make([]float32, need)
	}
	tmp := m.tmp[:need]

	n, err := m.src.ReadSamples(tmp)
	got := n / in
	if got == 0 {
		return 0, err
	}

	switch {
	case m.channels == 1 && in == 2:
		for f := range got {
			dst[f] = (tmp[2*f] + tmp[2*f+1]) * 0.5
		}
	case m.channels == 1:
		inv := 1 / float32(in)
		for f := range got {
			var sum float32
			for _, v := range tmp[f*in : (f+1)*in] {
				sum += v
			}
			dst[f] = sum * inv
		}
	case in == 1:
		for f := range got {
			frame := dst[f*m.channels : (f+1)*m.channels]
			for c := range frame {
				frame[c] = tmp[f]
			}
		}
	default:
		for f := range got {
			for c := range m.channels {
				dst[f*m.channels+c] = tmp[f*in+c%in]
			}
		}
	}

	return got * m.channels, err
}
