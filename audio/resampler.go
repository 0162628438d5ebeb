// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"

	"github.com/ik5/audmix/utils"
)

// maxEmptyReads bounds how many times in a row a source may return no
// samples without an error before the resampler gives up.
const maxEmptyReads = 64

// Resampler streams from src to a target sample rate using cubic
// interpolation. Works on interleaved samples; preserves channel count.
//
// The step between output frames can be changed while streaming with
// SetSpeed, which shifts pitch and tempo together. A one-pole low-pass
// filter is applied to the input whenever the effective step is above 1
// (downsampling).
type Resampler struct {
	src      Source
	format   Format
	channels int

	baseRatio float64 // source frames per output frame at speed 1
	ratio     float64 // current step, baseRatio * speed

	// Window over the source: w[0]=t-1, w[1]=t0, w[2]=t+1, w[3]=t+2.
	// pos is the fraction between w[1] and w[2].
	w      [4][]float32
	pos    float64
	real   int // frames of w[1..3] that came from the source
	primed bool

	// consumed counts the source frames moved past w[1].
	consumed int64

	srcBuf         []float32
	bufPos, bufLen int
	eof            bool

	filterState []float32
	filterAlpha float32
	filterReady bool
}

func NewResampler(src Source, dstRate int) *Resampler {
	in := src.Format()
	channels := in.Channels

	r := &Resampler{
		src:         src,
		format:      Format{SampleRate: dstRate, Channels: channels},
		channels:    channels,
		baseRatio:   float64(in.SampleRate) / float64(dstRate),
		srcBuf:      make([]float32, 1024*channels),
		filterState: make([]float32, channels),
		filterAlpha: 0.5,
	}
	r.ratio = r.baseRatio

	for i := range r.w {
		r.w[i] = make([]float32, channels)
	}

	return r
}

func (r *Resampler) Format() Format { return r.format }

// Ratio returns the number of source frames consumed per output frame.
func (r *Resampler) Ratio() float64 { return r.ratio }

// SetSpeed scales the conversion step. 2 plays twice as fast and an octave
// higher, 0.5 half as fast and an octave lower. Non-positive values are
// ignored.
func (r *Resampler) SetSpeed(speed float64) {
	if speed <= 0 {
		return
	}
	r.ratio = r.baseRatio * speed
}

// Consumed returns how many source frames have been played through.
func (r *Resampler) Consumed() int64 { return r.consumed }

func (r *Resampler) Close() error {
	if err := r.src.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

// pull copies the next source frame into dst. It reports false once the
// source is exhausted.
func (r *Resampler) pull(dst []float32) (bool, error) {
	empty := 0
	for r.bufPos >= r.bufLen {
		if r.eof {
			return false, nil
		}

		n, err := r.src.ReadSamples(r.srcBuf)
		r.bufPos, r.bufLen = 0, n-n%r.channels

		if err == io.EOF {
			r.eof = true
		} else if err != nil {
			return false, fmt.Errorf("%w", err)
		}

		if r.bufLen == 0 && !r.eof {
			empty++
			if empty > maxEmptyReads {
				return false, io.ErrNoProgress
			}
		}
	}

	copy(dst, r.srcBuf[r.bufPos:r.bufPos+r.channels])
	r.bufPos += r.channels

	if !r.filterReady {
		// Start from the first sample to avoid a warm-up transient.
		copy(r.filterState, dst)
		r.filterReady = true
	}

	if r.ratio > 1 {
		// y[n] = alpha * x[n] + (1-alpha) * y[n-1]
		for c := range r.channels {
			dst[c] = r.filterAlpha*dst[c] + (1-r.filterAlpha)*r.filterState[c]
			r.filterState[c] = dst[c]
		}
	} else {
		copy(r.filterState, dst)
	}

	return true, nil
}

func (r *Resampler) prime() error {
	ok, err := r.pull(r.w[1])
	if err != nil {
		return err
	}
	if !ok {
		return io.EOF
	}

	// The first frame doubles as its own predecessor so that it is
	// emitted unchanged.
	copy(r.w[0], r.w[1])
	r.real = 1

	for i := 2; i < 4; i++ {
		ok, err := r.pull(r.w[i])
		if err != nil {
			return err
		}
		if !ok {
			copy(r.w[i], r.w[i-1])
			continue
		}
		r.real++
	}

	r.primed = true
	return nil
}

// advance shifts the window one source frame forward.
func (r *Resampler) advance() error {
	first := r.w[0]
	r.w[0], r.w[1], r.w[2] = r.w[1], r.w[2], r.w[3]
	r.w[3] = first
	r.real--
	r.consumed++

	ok, err := r.pull(r.w[3])
	if err != nil {
		return err
	}
	if ok && r.real == 2 {
		r.real++
	} else {
		copy(r.w[3], r.w[2])
	}

	return nil
}

// ReadSamples produces samples at the target rate. len(dst) must be a
// multiple of the channel count.
func (r *Resampler) ReadSamples(dst []float32) (int, error) {
	if len(dst)%r.channels != 0 {
		return 0, ErrInvalidDstSize
	}

	if !r.primed {
		if err := r.prime(); err != nil {
			return 0, err
		}
	}

	framesNeeded := len(dst) / r.channels
	written := 0

	for written < framesNeeded {
		for r.pos >= 1.0 {
			if r.real <= 0 {
				break
			}
			r.pos -= 1.0
			if err := r.advance(); err != nil {
				return written * r.channels, err
			}
		}

		if r.real <= 0 {
			return written * r.channels, io.EOF
		}

		alpha := float32(r.pos)
		out := dst[written*r.channels : (written+1)*r.channels]
		for c := range r.channels {
			out[c] = utils.CubicInterpolate(r.w[0][c], r.w[1][c], r.w[2][c], r.w[3][c], alpha)
		}

		written++
		r.pos += r.ratio
	}

	return written * r.channels, nil
}
