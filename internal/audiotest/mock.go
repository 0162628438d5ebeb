// SPDX-License-Identifier: EPL-2.0

// Package audiotest provides synthetic audio sources and fixtures for
// tests across the module.
package audiotest

import (
	"io"
	"math"

	"github.com/ik5/audmix/audio"
)

// MockSource generates frames from a waveform function.
type MockSource struct {
	format    audio.Format
	total     int // frames to generate
	generated int
	waveform  func(frame int, channel int) float32
}

// NewMockSource creates a source of frames frames. waveform returns the
// value for a given frame index and channel.
func NewMockSource(sampleRate, channels, frames int, waveform func(frame int, channel int) float32) *MockSource {
	return &MockSource{
		format:   audio.Format{SampleRate: sampleRate, Channels: channels},
		total:    frames,
		waveform: waveform,
	}
}

// NewSilentSource creates a source that generates silence.
func NewSilentSource(sampleRate, channels, frames int) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return 0 })
}

// NewSineSource creates a source that generates a sine wave on every channel.
func NewSineSource(sampleRate, channels, frames int, frequency float64) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(frame int, _ int) float32 {
		t := float64(frame) / float64(sampleRate)
		return float32(math.Sin(2 * math.Pi * frequency * t))
	})
}

// NewConstantSource creates a source with a constant value.
func NewConstantSource(sampleRate, channels, frames int, value float32) *MockSource {
	return NewMockSource(sampleRate, channels, frames, func(int, int) float32 { return value })
}

func (m *MockSource) Format() audio.Format { return m.format }
func (m *MockSource) Frames() int64        { return int64(m.total) }
func (m *MockSource) Close() error         { return nil }

// Reset rewinds the source so it can be read again.
func (m *MockSource) Reset() {
	m.generated = 0
}

func (m *MockSource) ReadSamples(dst []float32) (int, error) {
	if m.generated >= m.total {
		return 0, io.EOF
	}

	frames := min(len(dst)/m.format.Channels, m.total-m.generated)
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

// Buffer decodes a MockSource straight into a Buffer, panicking on error.
// Intended for test setup only.
func Buffer(src *MockSource) *audio.Buffer {
	b, err := audio.ReadAll(src, src.Format())
	if err != nil {
		panic(err)
	}
	return b
}
