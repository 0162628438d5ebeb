// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"context"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
	"github.com/ik5/audmix/audio"
)

// Handle controls playback of one sound on its own track.
//
// Volume, pitch, pan and pause apply to whatever the track is playing right
// now. Fade-in, repeat and start offset are captured when a play is
// submitted. All methods are safe for concurrent use.
type Handle struct {
	id    uuid.UUID
	mixer *Mixer
	buf   *audio.Buffer
	track *track

	mtx    sync.Mutex
	fadeIn time.Duration
	repeat bool
	start  time.Duration

	closed atomic.Bool
}

func newHandle(m *Mixer, buf *audio.Buffer) *Handle {
	return &Handle{
		id:    uuid.New(),
		mixer: m,
		buf:   buf,
		track: newTrack(),
	}
}

func (h *Handle) ID() uuid.UUID { return h.id }

// Buffer returns the decoded sound this handle plays.
func (h *Handle) Buffer() *audio.Buffer { return h.buf }

func (h *Handle) options() voiceOptions {
	h.mtx.Lock()
	defer h.mtx.Unlock()

	return voiceOptions{fadeIn: h.fadeIn, repeat: h.repeat, start: h.start}
}

func (h *Handle) submit(t *track) error {
	if h.closed.Load() {
		return ErrClosed
	}

	opts := h.options()
	format := h.mixer.format
	return h.mixer.submit(t, func(gen uint32) *voice {
		return newVoice(h.buf, format, gen, opts)
	})
}

// Play stops whatever the handle is playing and starts the sound from the
// start offset.
func (h *Handle) Play() error {
	if h.closed.Load() {
		return ErrClosed
	}
	h.reset()
	return h.submit(h.track)
}

// PlayLater queues the sound to start when everything already queued on
// the handle has finished.
func (h *Handle) PlayLater() error {
	return h.submit(h.track)
}

// PlayDetached starts an independent instance with the handle's current
// settings. It cannot be paused or stopped through the handle and keeps
// playing after the handle is closed.
func (h *Handle) PlayDetached() error {
	return h.submit(h.track.copySettings())
}

func (h *Handle) reset() {
	_, dropped := h.track.stop()
	h.mixer.release(dropped)
	h.track.paused.Store(false)
	h.track.elapsed.Store(0)
	h.track.position.Store(0)
}

// Stop drops everything queued on the handle. Stopped reports true as
// soon as Stop returns.
func (h *Handle) Stop() {
	h.reset()
}

func (h *Handle) Pause()  { h.track.paused.Store(true) }
func (h *Handle) Resume() { h.track.paused.Store(false) }

func (h *Handle) Paused() bool { return h.track.paused.Load() }

// Stopped reports whether nothing is queued or playing on the handle. It
// is always true once the mixer is closed.
func (h *Handle) Stopped() bool {
	return h.mixer.closed.Load() || h.track.queued() == 0
}

// Playing reports whether the handle has something queued and is not
// paused.
func (h *Handle) Playing() bool { return !h.Paused() && !h.Stopped() }

func (h *Handle) Volume() float32 { return h.track.volume.Load() }

// SetVolume sets the linear gain. Negative values are treated as zero.
func (h *Handle) SetVolume(v float32) {
	h.track.volume.Store(max(v, 0))
}

func (h *Handle) Pitch() float64 { return h.track.pitch.Load() }

// SetPitch sets the playback speed ratio. 2 is an octave up at double
// speed. It takes effect on the next mixed block.
func (h *Handle) SetPitch(ratio float64) error {
	if !(ratio > 0) || math.IsInf(ratio, 0) {
		return fmt.Errorf("%w: %g", ErrInvalidPitch, ratio)
	}
	h.track.pitch.Store(ratio)
	return nil
}

func (h *Handle) Pan() float32 { return h.track.pan.Load() }

// SetPan balances stereo output from -1 (left only) to 1 (right only).
// Values are clamped. It has no effect on other channel layouts.
func (h *Handle) SetPan(p float32) {
	h.track.pan.Store(min(max(p, -1), 1))
}

func (h *Handle) FadeIn() time.Duration {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.fadeIn
}

// SetFadeIn sets a linear fade from silence for later plays. Zero
// disables it.
func (h *Handle) SetFadeIn(d time.Duration) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	h.fadeIn = max(d, 0)
}

func (h *Handle) Repeat() bool {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.repeat
}

// SetRepeat makes later plays loop until stopped.
func (h *Handle) SetRepeat(repeat bool) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	h.repeat = repeat
}

func (h *Handle) Start() time.Duration {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	return h.start
}

// SetStart skips d of the sound on later plays. Offsets past the end are
// clamped to the last frame.
func (h *Handle) SetStart(d time.Duration) {
	h.mtx.Lock()
	defer h.mtx.Unlock()
	h.start = min(max(d, 0), h.buf.Duration())
}

// Elapsed is the output time played since the last Play or Stop,
// including queued plays and repeats.
func (h *Handle) Elapsed() time.Duration {
	return h.mixer.format.Duration(h.track.elapsed.Load())
}

// Position is the offset inside the sound currently playing.
func (h *Handle) Position() time.Duration {
	return h.buf.Format().Duration(h.track.position.Load())
}

// Duration is the length of the sound.
func (h *Handle) Duration() time.Duration { return h.buf.Duration() }

// Wait blocks until the handle stops or ctx is done, calling fn with the
// elapsed time every interval. fn may be nil.
func (h *Handle) Wait(ctx context.Context, interval time.Duration, fn func(elapsed time.Duration)) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for !h.Stopped() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if fn != nil && !h.Stopped() {
				fn(h.Elapsed())
			}
		}
	}
	return nil
}

// Close stops the handle's track. Detached instances keep playing.
func (h *Handle) Close() error {
	if h.closed.Swap(true) {
		return nil
	}
	h.Stop()
	return nil
}
