// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"time"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/utils"
)

// voice is one playing instance of a Buffer. It is built on the control
// side and owned by the audio side once it has been sent.
type voice struct {
	gen    uint32
	reader *audio.BufferReader
	res    *audio.Resampler
	speed  float64

	fadeFrames int64
	played     int64 // output frames, drives the fade-in

	start   int64 // first frame of every pass
	segment int64 // frames from start to the end of the buffer
	loop    bool
}

type voiceOptions struct {
	fadeIn time.Duration
	repeat bool
	start  time.Duration
}

func newVoice(buf *audio.Buffer, out audio.Format, gen uint32, opts voiceOptions) *voice {
	r := buf.NewReader(audio.ReaderOptions{Start: opts.start, Loop: opts.repeat})
	start := r.StartFrame()

	return &voice{
		gen:        gen,
		reader:     r,
		res:        audio.NewResampler(r, out.SampleRate),
		speed:      1,
		fadeFrames: out.Frames(opts.fadeIn),
		start:      start,
		segment:    buf.Frames() - start,
		loop:       opts.repeat,
	}
}

// read renders up to len(dst)/channels frames at the given pitch. done
// reports that the voice has nothing left to play.
func (v *voice) read(dst []float32, pitch float64, channels int) (frames int, done bool) {
	if pitch != v.speed {
		v.res.SetSpeed(pitch)
		v.speed = pitch
	}

	n, err := v.res.ReadSamples(dst)
	// Decoding already happened, so any error here means the end.
	return n / channels, err != nil
}

// apply scales frames rendered by read by the fade envelope and the
// per-channel gains and adds them to out.
func (v *voice) apply(out, rendered []float32, gains []float32) {
	channels := len(gains)
	frames := len(rendered) / channels

	for f := range frames {
		g := utils.Gain(v.played, v.fadeFrames)
		v.played++
		for c := range channels {
			out[f*channels+c] += rendered[f*channels+c] * g * gains[c]
		}
	}
}

// position is the frame offset inside the sound currently being heard.
func (v *voice) position() int64 {
	consumed := v.res.Consumed()
	if v.loop && v.segment > 0 {
		return v.start + consumed%v.segment
	}
	return min(v.start+consumed, v.start+v.segment)
}
