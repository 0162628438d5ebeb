// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
)

// ReadAll drains src into a Buffer in the target format.
//
// The pipeline resamples to target.SampleRate using cubic interpolation and
// maps channels to target.Channels. When the channel count shrinks the
// mapping runs first so that fewer channels are resampled.
//
// ReadAll does not close src.
//
// Example:
//
//	src, _ := decoder.Decode(file)
//	buf, err := audio.ReadAll(src, audio.Format{SampleRate: 48000, Channels: 2})
//	if err != nil {
//	    return err
//	}
//	// buf.Samples() is now interleaved stereo at 48kHz
func ReadAll(src Source, target Format) (*Buffer, error) {
	if err := target.Validate(); err != nil {
		return nil, err
	}
	in := src.Format()
	if err := in.Validate(); err != nil {
		return nil, err
	}

	var s Source = src
	if target.Channels < in.Channels {
		s = NewChannelMapper(s, target.Channels)
	}
	if in.SampleRate != target.SampleRate {
		s = NewResampler(s, target.SampleRate)
	}
	if s.Format().Channels != target.Channels {
		s = NewChannelMapper(s, target.Channels)
	}

	// Pre-allocate when the length is known to reduce allocations
	estimated := target.SampleRate * target.Channels
	if l, ok := src.(Lengther); ok && l.Frames() > 0 {
		frames := l.Frames() * int64(target.SampleRate) / int64(in.SampleRate)
		estimated = int(frames+1) * target.Channels
	}
	samples := make([]float32, 0, estimated)
	chunk := make([]float32, 1024*target.Channels)
	empty := 0

	for {
		n, err := s.ReadSamples(chunk)
		samples = append(samples, chunk[:n]...)

		if n == 0 && err == nil {
			empty++
			if empty > maxEmptyReads {
				return nil, io.ErrNoProgress
			}
			continue
		}
		empty = 0

		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading source: %w", err)
		}
	}

	if len(samples) == 0 {
		return nil, ErrEmptySource
	}
	// A decoder may end on a partial frame
	samples = samples[:len(samples)-len(samples)%target.Channels]

	return NewBuffer(target, samples)
}
