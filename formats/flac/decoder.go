// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"fmt"
	"io"

	"github.com/gopxl/beep/v2"
	beepflac "github.com/gopxl/beep/v2/flac"
	"github.com/ik5/audmix/audio"
)

// streamer is the part of beep.StreamSeekCloser the source needs.
type streamer interface {
	Stream(samples [][2]float64) (n int, ok bool)
	Err() error
	Close() error
}

type source struct {
	st     streamer
	format audio.Format
	frames int64
	buf    [][2]float64
	done   bool
}

func (s *source) Format() audio.Format { return s.format }
func (s *source) Frames() int64        { return s.frames }

func (s *source) Close() error {
	if err := s.st.Close(); err != nil {
		return fmt.Errorf("closing flac: %w", err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	if s.done {
		return 0, io.EOF
	}

	frames := len(dst) / s.format.Channels
	if frames == 0 {
		return 0, nil
	}
	if cap(s.buf) < frames {
		s.buf = make([][2]float64, frames)
	}
	s.buf = s.buf[:frames]

	n, ok := s.st.Stream(s.buf)
	for i, f := range s.buf[:n] {
		if s.format.Channels == 1 {
			dst[i] = float32(f[0])
			continue
		}
		dst[2*i] = float32(f[0])
		dst[2*i+1] = float32(f[1])
	}

	if !ok {
		s.done = true
		if err := s.st.Err(); err != nil {
			return n * s.format.Channels, fmt.Errorf("decoding flac: %w", err)
		}
		return n * s.format.Channels, io.EOF
	}
	return n * s.format.Channels, nil
}

// Decoder reads native FLAC streams. Files with more than two channels are
// folded to stereo by beep.
type Decoder struct{}

func (Decoder) Name() string { return "flac" }

func (Decoder) Sniff(header []byte) bool {
	return bytes.HasPrefix(header, []byte("fLaC"))
}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	st, bf, err := beepflac.Decode(r)
	if err != nil {
		return nil, fmt.Errorf("opening flac: %w", err)
	}

	return newSource(st, bf, int64(st.Len())), nil
}

func newSource(st streamer, bf beep.Format, frames int64) *source {
	channels := min(max(bf.NumChannels, 1), 2)
	if frames <= 0 {
		frames = -1
	}

	return &source{
		st:     st,
		format: audio.Format{SampleRate: int(bf.SampleRate), Channels: channels},
		frames: frames,
	}
}
