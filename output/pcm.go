// SPDX-License-Identifier: EPL-2.0

package output

import (
	"encoding/binary"
	"io"
	"math"
)

const bytesPerSample = 4

// PCMReader exposes a Renderer as a stream of float32 little-endian bytes
// for backends that pull through io.Reader.
type PCMReader struct {
	r        Renderer
	channels int
	buf      []float32
}

func NewPCMReader(r Renderer, channels int) *PCMReader {
	return &PCMReader{r: r, channels: channels}
}

// Read renders as many whole frames as fit in p. It never returns io.EOF.
func (p *PCMReader) Read(b []byte) (int, error) {
	frames := len(b) / (bytesPerSample * p.channels)
	if frames == 0 {
		return 0, io.ErrShortBuffer
	}

	n := frames * p.channels
	if cap(p.buf) < n {
		p.buf = make([]float32, n)
	}
	p.buf = p.buf[:n]

	p.r.Mix(p.buf)
	for i, s := range p.buf {
		binary.LittleEndian.PutUint32(b[i*bytesPerSample:], math.Float32bits(s))
	}
	return n * bytesPerSample, nil
}
