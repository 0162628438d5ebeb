// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"bytes"
	"encoding/binary"
	"os"
	"path/filepath"
	"testing"
)

// WAV builds a canonical 44-byte-header PCM WAV file in memory.
func WAV(sampleRate, channels, bitsPerSample int, samples []int16) []byte {
	buf := new(bytes.Buffer)

	bytesPerSample := bitsPerSample / 8
	dataSize := uint32(len(samples) * bytesPerSample)

	buf.WriteString("RIFF")
	_ = binary.Write(buf, binary.LittleEndian, 36+dataSize)
	buf.WriteString("WAVE")

	buf.WriteString("fmt ")
	_ = binary.Write(buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(buf, binary.LittleEndian, uint16(1)) // PCM
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate))
	_ = binary.Write(buf, binary.LittleEndian, uint32(sampleRate*channels*bytesPerSample))
	_ = binary.Write(buf, binary.LittleEndian, uint16(channels*bytesPerSample))
	_ = binary.Write(buf, binary.LittleEndian, uint16(bitsPerSample))

	buf.WriteString("data")
	_ = binary.Write(buf, binary.LittleEndian, dataSize)

	for _, s := range samples {
		switch bitsPerSample {
		case 8:
			buf.WriteByte(byte(int(s>>8) + 128))
		default:
			_ = binary.Write(buf, binary.LittleEndian, s)
		}
	}

	return buf.Bytes()
}

// Tone returns frames frames of a constant value on every channel as
// 16-bit PCM.
func Tone(channels, frames int, value int16) []int16 {
	samples := make([]int16, channels*frames)
	for i := range samples {
		samples[i] = value
	}
	return samples
}

// WriteWAV stores a mono 16-bit WAV of frames constant frames at name
// inside dir and returns the file path.
func WriteWAV(tb testing.TB, dir, name string, sampleRate, frames int) string {
	tb.Helper()

	p := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		tb.Fatalf("creating %s: %v", filepath.Dir(p), err)
	}
	if err := os.WriteFile(p, WAV(sampleRate, 1, 16, Tone(1, frames, 8192)), 0o644); err != nil {
		tb.Fatalf("writing %s: %v", p, err)
	}
	return p
}
