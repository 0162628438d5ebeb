// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"math"
	"sync/atomic"
)

type atomicFloat32 struct{ bits atomic.Uint32 }

func (a *atomicFloat32) Load() float32   { return math.Float32frombits(a.bits.Load()) }
func (a *atomicFloat32) Store(v float32) { a.bits.Store(math.Float32bits(v)) }

type atomicFloat64 struct{ bits atomic.Uint64 }

func (a *atomicFloat64) Load() float64   { return math.Float64frombits(a.bits.Load()) }
func (a *atomicFloat64) Store(v float64) { a.bits.Store(math.Float64bits(v)) }

// track is a playback queue. Control goroutines only touch the atomics;
// queue and active belong to the goroutine running Mix.
type track struct {
	volume atomicFloat32
	pitch  atomicFloat64
	pan    atomicFloat32
	paused atomic.Bool

	// state packs generation<<32 | queued voices of that generation.
	state atomic.Uint64

	elapsed  atomic.Int64 // output frames since the last Play or Stop
	position atomic.Int64 // frame offset inside the head voice's sound

	queue  []*voice
	active bool
}

func newTrack() *track {
	t := &track{}
	t.volume.Store(1)
	t.pitch.Store(1)
	return t
}

func unpack(state uint64) (gen uint32, queued uint32) {
	return uint32(state >> 32), uint32(state)
}

func pack(gen, queued uint32) uint64 {
	return uint64(gen)<<32 | uint64(queued)
}

func (t *track) generation() uint32 {
	gen, _ := unpack(t.state.Load())
	return gen
}

func (t *track) queued() uint32 {
	_, n := unpack(t.state.Load())
	return n
}

// begin reserves a queue slot in the current generation.
func (t *track) begin() uint32 {
	for {
		old := t.state.Load()
		gen, n := unpack(old)
		if t.state.CompareAndSwap(old, pack(gen, n+1)) {
			return gen
		}
	}
}

// finish releases a slot taken by begin and reports whether it did. Slots
// of an older generation were already dropped by stop.
func (t *track) finish(gen uint32) bool {
	for {
		old := t.state.Load()
		g, n := unpack(old)
		if g != gen || n == 0 {
			return false
		}
		if t.state.CompareAndSwap(old, pack(g, n-1)) {
			return true
		}
	}
}

// stop invalidates every queued voice. It returns the new generation and
// how many slots it dropped.
func (t *track) stop() (gen uint32, dropped uint32) {
	for {
		old := t.state.Load()
		g, n := unpack(old)
		if t.state.CompareAndSwap(old, pack(g+1, 0)) {
			return g + 1, n
		}
	}
}

// copySettings gives a fresh track the live settings of t.
func (t *track) copySettings() *track {
	c := newTrack()
	c.volume.Store(t.volume.Load())
	c.pitch.Store(t.pitch.Load())
	c.pan.Store(t.pan.Load())
	return c
}

// gains fills dst with the per-channel gain. Pan follows the usual
// convention: -1 silences the right speaker, +1 the left one.
func (t *track) gains(dst []float32) {
	vol := t.volume.Load()
	if len(dst) != 2 {
		for i := range dst {
			dst[i] = vol
		}
		return
	}

	pan := t.pan.Load()
	dst[0] = vol * min(1, 1-pan)
	dst[1] = vol * min(1, 1+pan)
}
