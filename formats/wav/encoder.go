// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"fmt"
	"io"

	goaudio "github.com/go-audio/audio"
	gowav "github.com/go-audio/wav"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/utils"
)

// Writer streams float32 samples into a 16-bit PCM WAV file. The RIFF
// sizes are patched on Close, which is why the destination must seek.
type Writer struct {
	enc    *gowav.Encoder
	format audio.Format
	intBuf *goaudio.IntBuffer
	frames int64
}

// NewWriter starts a 16-bit PCM WAV in format on ws.
func NewWriter(ws io.WriteSeeker, format audio.Format) (*Writer, error) {
	if err := format.Validate(); err != nil {
		return nil, err
	}

	return &Writer{
		enc:    gowav.NewEncoder(ws, format.SampleRate, 16, format.Channels, formatPCM),
		format: format,
		intBuf: &goaudio.IntBuffer{
			Format: &goaudio.Format{
				NumChannels: format.Channels,
				SampleRate:  format.SampleRate,
			},
			SourceBitDepth: 16,
		},
	}, nil
}

func (w *Writer) Format() audio.Format { return w.format }

// Frames returns how many frames have been written so far.
func (w *Writer) Frames() int64 { return w.frames }

// WriteSamples appends interleaved samples. Values outside [-1, 1] are
// clipped.
func (w *Writer) WriteSamples(samples []float32) error {
	if len(samples)%w.format.Channels != 0 {
		return fmt.Errorf("%w: got %d", audio.ErrInvalidDstSize, len(samples))
	}
	if len(samples) == 0 {
		return nil
	}

	if cap(w.intBuf.Data) < len(samples) {
		w.intBuf.Data = make([]int, len(samples))
	}
	w.intBuf.Data = w.intBuf.Data[:len(samples)]
	for i, s := range samples {
		w.intBuf.Data[i] = int(utils.Float32ToInt16(s))
	}

	if err := w.enc.Write(w.intBuf); err != nil {
		return fmt.Errorf("writing wav data: %w", err)
	}
	w.frames += int64(len(samples) / w.format.Channels)
	return nil
}

// Close finalizes the headers. It does not close the underlying writer.
func (w *Writer) Close() error {
	if err := w.enc.Close(); err != nil {
		return fmt.Errorf("finalizing wav: %w", err)
	}
	return nil
}

// Encode writes buf as a complete 16-bit PCM WAV file.
func Encode(ws io.WriteSeeker, buf *audio.Buffer) error {
	w, err := NewWriter(ws, buf.Format())
	if err != nil {
		return err
	}
	if err := w.WriteSamples(buf.Samples()); err != nil {
		return err
	}
	return w.Close()
}
