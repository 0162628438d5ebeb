// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"errors"
	"io"
	"math"
)

// mockSource generates frames from a waveform function. It lives here
// rather than in internal/audiotest because that package imports audio.
type mockSource struct {
	format    Format
	total     int // frames to generate
	generated int
	chunk     int // max frames per read, 0 for unlimited
	waveform  func(frame int, channel int) float32
	closed    bool
	failAfter int // return errMock once generated reaches this, 0 disables
}

var errMock = errors.New("mock failure")

func newMockSource(sampleRate, channels, frames int, waveform func(frame int, channel int) float32) *mockSource {
	return &mockSource{
		format:   Format{SampleRate: sampleRate, Channels: channels},
		total:    frames,
		waveform: waveform,
	}
}

func newSilentSource(sampleRate, channels, frames int) *mockSource {
	return newMockSource(sampleRate, channels, frames, func(int, int) float32 { return 0 })
}

func newConstantSource(sampleRate, channels, frames int, value float32) *mockSource {
	return newMockSource(sampleRate, channels, frames, func(int, int) float32 { return value })
}

func newSineSource(sampleRate, channels, frames int, frequency float64) *mockSource {
	return newMockSource(sampleRate, channels, frames, func(frame int, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// newRampSource produces frame/frames on every channel, offset by channel.
func newRampSource(sampleRate, channels, frames int) *mockSource {
	return newMockSource(sampleRate, channels, frames, func(frame int, channel int) float32 {
		return float32(frame)/float32(frames) + float32(channel)
	})
}

func (m *mockSource) Format() Format { return m.format }
func (m *mockSource) Close() error   { m.closed = true; return nil }
func (m *mockSource) Frames() int64  { return int64(m.total) }

func (m *mockSource) ReadSamples(dst []float32) (int, error) {
	if m.failAfter > 0 && m.generated >= m.failAfter {
		return 0, errMock
	}
	if m.generated >= m.total {
		return 0, io.EOF
	}

	frames := min(len(dst)/m.format.Channels, m.total-m.generated)
	if m.chunk > 0 {
		frames = min(frames, m.chunk)
	}

	for f := range frames {
		for c := range m.format.Channels {
			dst[f*m.format.Channels+c] = m.waveform(m.generated+f, c)
		}
	}
	m.generated += frames

	if m.generated >= m.total {
		return frames * m.format.Channels, io.EOF
	}
	return frames * m.format.Channels, nil
}

// drain reads s until io.EOF and returns everything it produced.
func drain(s Source, chunk int) ([]float32, error) {
	var out []float32
	buf := make([]float32, chunk)
	for {
		n, err := s.ReadSamples(buf)
		out = append(out, buf[:n]...)
		if err == io.EOF {
			return out, nil
		}
		if err != nil {
			return out, err
		}
	}
}
