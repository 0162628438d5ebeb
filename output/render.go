// SPDX-License-Identifier: EPL-2.0

package output

import (
	"errors"
	"io"
	"time"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats/wav"
)

// ErrNoDuration is returned by RenderWAV without an upper bound.
var ErrNoDuration = errors.New("render duration must be positive")

// RenderOptions bound an offline render.
type RenderOptions struct {
	// Duration is the maximum length rendered.
	Duration time.Duration
	// BlockFrames is the size of each Mix call. Zero uses
	// DefaultBufferFrames.
	BlockFrames int
	// Until, when set, is checked after every block and ends the render
	// early once it reports true.
	Until func() bool
}

// RenderWAV pulls from r as fast as it can and writes the result as a
// 16-bit PCM WAV to ws. It returns the number of frames written.
func RenderWAV(ws io.WriteSeeker, r Renderer, format audio.Format, opts RenderOptions) (int64, error) {
	if opts.Duration <= 0 {
		return 0, ErrNoDuration
	}
	if opts.BlockFrames <= 0 {
		opts.BlockFrames = DefaultBufferFrames
	}

	w, err := wav.NewWriter(ws, format)
	if err != nil {
		return 0, err
	}

	total := format.Frames(opts.Duration)
	block := make([]float32, opts.BlockFrames*format.Channels)

	for w.Frames() < total {
		frames := min(int64(opts.BlockFrames), total-w.Frames())
		dst := block[:frames*int64(format.Channels)]

		r.Mix(dst)
		if err := w.WriteSamples(dst); err != nil {
			_ = w.Close()
			return w.Frames(), err
		}

		if opts.Until != nil && opts.Until() {
			break
		}
	}

	return w.Frames(), w.Close()
}
