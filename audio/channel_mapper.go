// SPDX-License-Identifier: EPL-2.0

package audio

import "fmt"

// ChannelMapper converts an interleaved stream to a different channel count.
//
//   - mono input is copied to every output channel
//   - mono output is the average of all input channels
//   - when reducing, each input channel is averaged into output channel
//     in*out/inChannels
//   - when expanding from more than one channel, extra outputs are silent
type ChannelMapper struct {
	src Source
	in  int
	out int
	tmp []float32
}

func NewChannelMapper(src Source, channels int) *ChannelMapper {
	return &ChannelMapper{
		src: src,
		in:  src.Format().Channels,
		out: channels,
		tmp: make([]float32, 4096),
	}
}

func (m *ChannelMapper) Format() Format {
	return Format{SampleRate: m.src.Format().SampleRate, Channels: m.out}
}

func (m *ChannelMapper) Close() error {
	if err := m.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (m *ChannelMapper) ReadSamples(dst []float32) (int, error) {
	if len(dst) == 0 {
		return 0, nil
	}
	if len(dst)%m.out != 0 {
		return 0, ErrInvalidDstSize
	}
	if m.in == m.out {
		return m.src.ReadSamples(dst)
	}

	frames := len(dst) / m.out
	needed := frames * m.in

	// Grow but never shrink to avoid thrashing
	if cap(m.tmp) < needed {
		m.tmp = make([]float32, max(needed, 8192))
	}
	m.tmp = m.tmp[:needed]

	n, err := m.src.ReadSamples(m.tmp)
	if n == 0 {
		return 0, err
	}
	frames = n / m.in

	switch {
	case m.in == 1:
		for f := range frames {
			v := m.tmp[f]
			out := dst[f*m.out : (f+1)*m.out]
			for c := range out {
				out[c] = v
			}
		}
	case m.out == 1 && m.in == 2:
		for f := range frames {
			idx := f << 1
			dst[f] = (m.tmp[idx] + m.tmp[idx+1]) * 0.5
		}
	case m.out < m.in:
		m.fold(dst, frames)
	default:
		for f := range frames {
			in := m.tmp[f*m.in : (f+1)*m.in]
			out := dst[f*m.out : (f+1)*m.out]
			copy(out, in)
			clear(out[m.in:])
		}
	}

	return frames * m.out, err
}

// fold averages groups of input channels into fewer output channels.
func (m *ChannelMapper) fold(dst []float32, frames int) {
	var (
		sums   [MaxChannels]float32
		counts [MaxChannels]float32
	)

	for c := range m.in {
		counts[c*m.out/m.in]++
	}

	for f := range frames {
		clear(sums[:m.out])
		in := m.tmp[f*m.in : (f+1)*m.in]
		for c, v := range in {
			sums[c*m.out/m.in] += v
		}
		out := dst[f*m.out : (f+1)*m.out]
		for c := range out {
			out[c] = sums[c] / counts[c]
		}
	}
}
