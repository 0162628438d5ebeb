// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/utils"
)

const (
	DefaultMaxVoices = 64
	DefaultQueueSize = 256
)

// Options configures a Mixer.
type Options struct {
	// Format of the blocks passed to Mix.
	Format audio.Format
	// MaxVoices bounds queued plus playing voices across all tracks.
	MaxVoices int
	// QueueSize is the capacity of the control to audio command queue.
	QueueSize int
	// MasterVolume scales the final mix before clipping.
	MasterVolume float32
}

// DefaultOptions returns options for format with the package defaults.
func DefaultOptions(format audio.Format) Options {
	return Options{
		Format:       format,
		MaxVoices:    DefaultMaxVoices,
		QueueSize:    DefaultQueueSize,
		MasterVolume: 1,
	}
}

func (o Options) validate() error {
	if err := o.Format.Validate(); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidOptions, err)
	}
	if o.MaxVoices < 1 {
		return fmt.Errorf("%w: max voices %d", ErrInvalidOptions, o.MaxVoices)
	}
	if o.QueueSize < 1 {
		return fmt.Errorf("%w: queue size %d", ErrInvalidOptions, o.QueueSize)
	}
	if o.MasterVolume < 0 {
		return fmt.Errorf("%w: master volume %g", ErrInvalidOptions, o.MasterVolume)
	}
	return nil
}

type command struct {
	track *track
	voice *voice
}

// Mixer sums the voices of every track into one output stream.
//
// Control methods and Handle methods are safe for concurrent use. Mix is
// the audio callback: it must be called from one goroutine at a time, it
// takes no locks and it never blocks.
type Mixer struct {
	format    audio.Format
	maxVoices int64

	cmds     chan command
	inflight atomic.Int64
	master   atomicFloat32
	closed   atomic.Bool

	// Owned by the goroutine calling Mix.
	tracks  []*track
	scratch []float32
	gains   []float32
}

func New(opts Options) (*Mixer, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	m := &Mixer{
		format:    opts.Format,
		maxVoices: int64(opts.MaxVoices),
		cmds:      make(chan command, opts.QueueSize),
		gains:     make([]float32, opts.Format.Channels),
	}
	m.master.Store(opts.MasterVolume)

	return m, nil
}

func (m *Mixer) Format() audio.Format { return m.format }

func (m *Mixer) MasterVolume() float32 { return m.master.Load() }

// SetMasterVolume changes the gain of the whole mix. Negative values are
// treated as zero.
func (m *Mixer) SetMasterVolume(v float32) {
	m.master.Store(max(v, 0))
}

// ActiveVoices counts voices that are queued or playing.
func (m *Mixer) ActiveVoices() int { return int(m.inflight.Load()) }

// Idle reports whether no voice is queued or playing. A closed mixer is
// always idle.
func (m *Mixer) Idle() bool { return m.closed.Load() || m.inflight.Load() == 0 }

// WaitIdle polls every interval until the mixer is idle or ctx is done.
func (m *Mixer) WaitIdle(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for !m.Idle() {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
	return nil
}

// Close makes every later control call fail with ErrClosed. Mix renders
// silence from then on and every queued voice counts as finished.
func (m *Mixer) Close() error {
	m.closed.Store(true)
	m.inflight.Store(0)
	return nil
}

// NewHandle wraps buf in a playback handle on a fresh track. buf is
// converted first when its format differs from the mixer's.
func (m *Mixer) NewHandle(buf *audio.Buffer) (*Handle, error) {
	if m.closed.Load() {
		return nil, ErrClosed
	}

	if buf.Format() != m.format {
		converted, err := audio.ReadAll(buf.NewReader(audio.ReaderOptions{}), m.format)
		if err != nil {
			return nil, fmt.Errorf("converting %s to %s: %w", buf.Format(), m.format, err)
		}
		buf = converted
	}

	return newHandle(m, buf), nil
}

// submit hands a voice built for the track's current generation to the
// audio side.
func (m *Mixer) submit(t *track, build func(gen uint32) *voice) error {
	if m.closed.Load() {
		return ErrClosed
	}
	if m.inflight.Add(1) > m.maxVoices {
		m.inflight.Add(-1)
		return ErrTooManyVoices
	}

	gen := t.begin()
	select {
	case m.cmds <- command{track: t, voice: build(gen)}:
		return nil
	default:
		if t.finish(gen) {
			m.inflight.Add(-1)
		}
		return ErrQueueFull
	}
}

// release gives back voice slots that stop dropped from a track.
func (m *Mixer) release(n uint32) {
	if n > 0 {
		m.inflight.Add(-int64(n))
	}
}

// drain moves pending commands onto their tracks without blocking.
func (m *Mixer) drain() {
	for {
		select {
		case cmd := <-m.cmds:
			t := cmd.track
			t.queue = append(t.queue, cmd.voice)
			if !t.active {
				t.active = true
				m.tracks = append(m.tracks, t)
			}
		default:
			return
		}
	}
}

// Mix renders the next len(dst) samples. len(dst) should be a multiple of
// the channel count; a trailing partial frame is left silent.
func (m *Mixer) Mix(dst []float32) {
	clear(dst)
	if m.closed.Load() {
		return
	}

	m.drain()

	channels := m.format.Channels
	frames := len(dst) / channels
	if cap(m.scratch) < frames*channels {
		m.scratch = make([]float32, frames*channels)
	}
	m.scratch = m.scratch[:frames*channels]

	live := m.tracks[:0]
	for _, t := range m.tracks {
		m.mixTrack(t, dst[:frames*channels])
		if len(t.queue) > 0 {
			live = append(live, t)
			continue
		}
		t.active = false
	}
	clear(m.tracks[len(live):])
	m.tracks = live

	master := m.master.Load()
	for i, s := range dst {
		dst[i] = utils.Clamp(s * master)
	}
}

func (m *Mixer) mixTrack(t *track, dst []float32) {
	channels := m.format.Channels
	frames := len(dst) / channels
	gen := t.generation()

	out := 0
	for out < frames && len(t.queue) > 0 {
		v := t.queue[0]
		if v.gen != gen {
			m.pop(t)
			continue
		}
		if t.paused.Load() {
			return
		}

		t.gains(m.gains)
		n, done := v.read(m.scratch[out*channels:frames*channels], t.pitch.Load(), channels)
		v.apply(dst[out*channels:], m.scratch[out*channels:(out+n)*channels], m.gains)
		out += n

		if n == 0 && !done {
			return
		}
		if t.generation() == gen {
			t.elapsed.Add(int64(n))
			t.position.Store(v.position())
		}

		if done {
			m.pop(t)
			if t.finish(gen) {
				m.inflight.Add(-1)
			}
		}
	}
}

// pop drops the head voice. Its slot is released by finish or stop.
func (m *Mixer) pop(t *track) {
	t.queue[0] = nil
	t.queue = t.queue[1:]
}
