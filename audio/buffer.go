// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"time"
)

// Buffer is fully decoded, immutable sample data. A Buffer may be shared
// by any number of readers and goroutines; none of them may modify the
// slice returned by Samples.
type Buffer struct {
	format  Format
	samples []float32
}

// NewBuffer wraps interleaved samples in format. The slice is retained,
// not copied.
func NewBuffer(format Format, samples []float32) (*Buffer, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}
	if len(samples) == 0 {
		return nil, ErrEmptySource
	}
	if len(samples)%format.Channels != 0 {
		return nil, ErrInvalidDstSize
	}

	return &Buffer{format: format, samples: samples}, nil
}

func (b *Buffer) Format() Format          { return b.format }
func (b *Buffer) Samples() []float32      { return b.samples }
func (b *Buffer) Frames() int64           { return int64(len(b.samples) / b.format.Channels) }
func (b *Buffer) Duration() time.Duration { return b.format.Duration(b.Frames()) }

// ReaderOptions controls how a BufferReader walks a Buffer.
type ReaderOptions struct {
	// Start skips this much audio. Values past the end are clamped to the
	// last frame.
	Start time.Duration
	// Loop restarts at Start whenever the end is reached, forever.
	Loop bool
}

// BufferReader is a Source over a shared Buffer.
type BufferReader struct {
	buf   *Buffer
	start int // sample index where playback (and every loop) begins
	pos   int
	loop  bool
	loops int
}

// NewReader returns a Source that reads b from the configured offset.
func (b *Buffer) NewReader(opts ReaderOptions) *BufferReader {
	frame := b.format.Frames(opts.Start)
	if last := b.Frames() - 1; frame > last {
		frame = last
	}
	start := int(frame) * b.format.Channels

	return &BufferReader{
		buf:   b,
		start: start,
		pos:   start,
		loop:  opts.Loop,
	}
}

func (r *BufferReader) Format() Format { return r.buf.format }
func (r *BufferReader) Close() error   { return nil }

// Frames reports the length of one pass, or -1 when looping forever.
func (r *BufferReader) Frames() int64 {
	if r.loop {
		return -1
	}
	return int64((len(r.buf.samples) - r.start) / r.buf.format.Channels)
}

// Loops returns how many times the reader wrapped around.
func (r *BufferReader) Loops() int { return r.loops }

// StartFrame is the frame every pass begins at.
func (r *BufferReader) StartFrame() int64 {
	return int64(r.start / r.buf.format.Channels)
}

func (r *BufferReader) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.buf.format.Channels != 0 {
		return 0, fmt.Errorf("%w: got %d", ErrInvalidDstSize, len(dst))
	}

	written := 0
	for written < len(dst) {
		if r.pos >= len(r.buf.samples) {
			if !r.loop {
				break
			}
			r.pos = r.start
			r.loops++
		}
		n := copy(dst[written:], r.buf.samples[r.pos:])
		r.pos += n
		written += n
	}

	if !r.loop && r.pos >= len(r.buf.samples) {
		return written, io.EOF
	}
	return written, nil
}
