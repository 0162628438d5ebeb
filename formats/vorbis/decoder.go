// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"fmt"
	"io"

	"github.com/ik5/audmix/audio"
	"github.com/jfreymuth/oggvorbis"
)

// oggReader is the part of oggvorbis.Reader the source needs, split out
// so tests can feed synthetic PCM.
type oggReader interface {
	// Read returns the number of float32 values, always whole frames.
	Read([]float32) (int, error)
}

type source struct {
	dec    oggReader
	format audio.Format
	frames int64
}

func (s *source) Format() audio.Format { return s.format }
func (s *source) Frames() int64        { return s.frames }
func (s *source) Close() error         { return nil }

func (s *source) ReadSamples(dst []float32) (int, error) {
	dst = dst[:len(dst)-len(dst)%s.format.Channels]
	if len(dst) == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst)
	if err == io.EOF {
		return n, io.EOF
	}
	if err != nil {
		return n, fmt.Errorf("decoding vorbis: %w", err)
	}
	return n, nil
}

// Decoder reads Ogg Vorbis streams.
type Decoder struct{}

func (Decoder) Name() string { return "vorbis" }

// Sniff accepts any Ogg container page header.
func (Decoder) Sniff(header []byte) bool {
	return bytes.HasPrefix(header, []byte("OggS"))
}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("opening vorbis: %w", err)
	}

	format := audio.Format{SampleRate: dec.SampleRate(), Channels: dec.Channels()}
	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("vorbis header: %w", err)
	}

	frames := int64(-1)
	if l := dec.Length(); l > 0 {
		frames = l
	}

	return &source{dec: dec, format: format, frames: frames}, nil
}
