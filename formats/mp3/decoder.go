// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"encoding/binary"
	"errors"
	"fmt"
	"io"

	gomp3 "github.com/hajimehoshi/go-mp3"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/utils"
)

// go-mp3 always produces 16-bit little-endian stereo.
const (
	channels       = 2
	bytesPerSample = 2
	bytesPerFrame  = channels * bytesPerSample
)

// ErrEmptyStream is returned when the decoder cannot find a single frame.
var ErrEmptyStream = errors.New("mp3 stream has no frames")

// mp3Reader is the part of gomp3.Decoder the source needs, split out so
// tests can feed synthetic PCM.
type mp3Reader interface {
	Read([]byte) (int, error)
}

type source struct {
	dec     mp3Reader
	format  audio.Format
	frames  int64
	buf     []byte
	pending int // bytes of a partial frame kept at the front of buf
}

func (s *source) Format() audio.Format { return s.format }
func (s *source) Frames() int64        { return s.frames }
func (s *source) Close() error         { return nil }

func (s *source) ReadSamples(dst []float32) (int, error) {
	frames := len(dst) / channels
	if frames == 0 {
		return 0, nil
	}

	need := frames * bytesPerFrame
	if cap(s.buf) < need {
		grown := make([]byte, need)
		copy(grown, s.buf[:s.pending])
		s.buf = grown
	}
	s.buf = s.buf[:need]

	n, err := s.dec.Read(s.buf[s.pending:])
	total := s.pending + n
	whole := total - total%bytesPerFrame

	samples := whole / bytesPerSample
	for i := range samples {
		v := int16(binary.LittleEndian.Uint16(s.buf[2*i:]))
		dst[i] = utils.Int16ToFloat32(v)
	}

	s.pending = copy(s.buf, s.buf[whole:total])

	if err == io.EOF {
		return samples, io.EOF
	}
	if err != nil {
		return samples, fmt.Errorf("decoding mp3: %w", err)
	}
	return samples, nil
}

// Decoder reads MPEG-1/2 Layer III streams. Output is always stereo.
type Decoder struct{}

func (Decoder) Name() string { return "mp3" }

// Sniff accepts an ID3v2 tag or a bare MPEG frame sync.
func (Decoder) Sniff(header []byte) bool {
	if len(header) >= 3 && string(header[:3]) == "ID3" {
		return true
	}
	return len(header) >= 2 && header[0] == 0xFF && header[1]&0xE0 == 0xE0
}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := gomp3.NewDecoder(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, ErrEmptyStream
		}
		return nil, fmt.Errorf("opening mp3: %w", err)
	}

	frames := int64(-1)
	// Length is only known when r can seek
	if l := dec.Length(); l > 0 {
		frames = l / bytesPerFrame
	}

	return &source{
		dec:    dec,
		format: audio.Format{SampleRate: dec.SampleRate(), Channels: channels},
		frames: frames,
		buf:    make([]byte, 4096*bytesPerFrame),
	}, nil
}
