// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"time"

	"github.com/spf13/pflag"

	"github.com/ik5/audmix/mixer"
)

// playbackFlags are the handle settings shared by play and render.
type playbackFlags struct {
	pitch  float64
	volume float32
	pan    float32
	fadeIn time.Duration
	repeat bool
	start  time.Duration
}

func (p *playbackFlags) register(fs *pflag.FlagSet) {
	fs.Float64Var(&p.pitch, "pitch", 1, "playback speed ratio, 2 is an octave up")
	fs.Float32Var(&p.volume, "volume", 1, "volume, 1 is unchanged")
	fs.Float32Var(&p.pan, "pan", 0, "stereo balance from -1 (left) to 1 (right)")
	fs.DurationVar(&p.fadeIn, "fade-in", 0, "fade in from silence over this long")
	fs.BoolVar(&p.repeat, "repeat", false, "loop until stopped")
	fs.DurationVar(&p.start, "start", 0, "skip this much of the sound")
}

func (p *playbackFlags) apply(h *mixer.Handle) error {
	if err := h.SetPitch(p.pitch); err != nil {
		return err
	}
	h.SetVolume(p.volume)
	h.SetPan(p.pan)
	h.SetFadeIn(p.fadeIn)
	h.SetRepeat(p.repeat)
	h.SetStart(p.start)
	return nil
}
