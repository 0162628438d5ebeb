// SPDX-License-Identifier: EPL-2.0

package vorbis

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/ik5/audmix/audio"
)

// mockOggVorbisReader simulates oggvorbis.Reader, which counts values
// rather than frames.
type mockOggVorbisReader struct {
	channels int
	samples  []float32
	offset   int
	err      error
}

func (m *mockOggVorbisReader) Read(buf []float32) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.offset >= len(m.samples) {
		return 0, io.EOF
	}

	n := copy(buf, m.samples[m.offset:])
	n -= n % m.channels
	m.offset += n
	return n, nil
}

func newSource(channels int, samples []float32) *source {
	return &source{
		dec:    &mockOggVorbisReader{channels: channels, samples: samples},
		format: audio.Format{SampleRate: 44100, Channels: channels},
		frames: int64(len(samples) / channels),
	}
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		data []byte
	}{
		{"empty", nil},
		{"text", []byte("This is not Ogg Vorbis data")},
		{"truncated page", []byte("OggS\x00\x02")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if _, err := (Decoder{}).Decode(bytes.NewReader(tt.data)); err == nil {
				t.Error("Decode() error = nil, want error")
			}
		})
	}
}

func TestDecoder_Sniff(t *testing.T) {
	t.Parallel()

	if !(Decoder{}).Sniff([]byte("OggS\x00\x02\x00\x00")) {
		t.Error("Sniff(OggS) = false, want true")
	}
	if (Decoder{}).Sniff([]byte("fLaC\x00\x00\x00\x22")) {
		t.Error("Sniff(fLaC) = true, want false")
	}
}

func TestSource_ReadSamples_ValuesNotFrames(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
	}{
		{"mono", 1},
		{"stereo", 2},
		{"5.1", 6},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			samples := make([]float32, tt.channels*10)
			for i := range samples {
				samples[i] = float32(i) / 100
			}
			s := newSource(tt.channels, samples)

			var got []float32
			buf := make([]float32, tt.channels*3)
			for {
				n, err := s.ReadSamples(buf)
				got = append(got, buf[:n]...)
				if err == io.EOF {
					break
				}
				if err != nil {
					t.Fatalf("ReadSamples() error = %v", err)
				}
			}

			if len(got) != len(samples) {
				t.Fatalf("read %d samples, want %d", len(got), len(samples))
			}
			for i := range samples {
				if got[i] != samples[i] {
					t.Fatalf("sample %d = %f, want %f", i, got[i], samples[i])
				}
			}
		})
	}
}

func TestSource_ReadSamples_PartialFrameDst(t *testing.T) {
	t.Parallel()

	s := newSource(2, []float32{0.1, 0.2, 0.3, 0.4})

	// Three values only fit one stereo frame
	n, err := s.ReadSamples(make([]float32, 3))
	if err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != 2 {
		t.Errorf("ReadSamples() n = %d, want 2", n)
	}
}

func TestSource_ReadSamples_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("corrupt page")
	s := &source{
		dec:    &mockOggVorbisReader{channels: 1, err: boom},
		format: audio.Format{SampleRate: 8000, Channels: 1},
	}

	if _, err := s.ReadSamples(make([]float32, 4)); !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want %v", err, boom)
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	s := newSource(2, make([]float32, 20))

	if s.Format() != (audio.Format{SampleRate: 44100, Channels: 2}) {
		t.Errorf("Format() = %v", s.Format())
	}
	if s.Frames() != 10 {
		t.Errorf("Frames() = %d, want 10", s.Frames())
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}
}
