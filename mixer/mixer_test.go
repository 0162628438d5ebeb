// SPDX-License-Identifier: EPL-2.0

package mixer_test

import (
	"context"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/mixer"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// 1 kHz keeps frame counts and milliseconds interchangeable.
const rate = 1000

func newMixer(t testing.TB, channels int, tweak ...func(*mixer.Options)) *mixer.Mixer {
	t.Helper()

	opts := mixer.DefaultOptions(audio.Format{SampleRate: rate, Channels: channels})
	for _, f := range tweak {
		f(&opts)
	}
	m, err := mixer.New(opts)
	require.NoError(t, err)
	return m
}

func constBuffer(t testing.TB, channels, frames int, value float32) *audio.Buffer {
	t.Helper()

	samples := make([]float32, channels*frames)
	for i := range samples {
		samples[i] = value
	}
	buf, err := audio.NewBuffer(audio.Format{SampleRate: rate, Channels: channels}, samples)
	require.NoError(t, err)
	return buf
}

func newHandle(t testing.TB, m *mixer.Mixer, frames int) *mixer.Handle {
	t.Helper()

	h, err := m.NewHandle(constBuffer(t, m.Format().Channels, frames, 0.5))
	require.NoError(t, err)
	return h
}

func mix(m *mixer.Mixer, frames int) []float32 {
	out := make([]float32, frames*m.Format().Channels)
	m.Mix(out)
	return out
}

func countNonZero(samples []float32) int {
	n := 0
	for _, s := range samples {
		if s != 0 {
			n++
		}
	}
	return n
}

func TestNew_InvalidOptions(t *testing.T) {
	t.Parallel()

	valid := mixer.DefaultOptions(audio.Format{SampleRate: rate, Channels: 2})

	tests := []struct {
		name  string
		tweak func(*mixer.Options)
	}{
		{"format", func(o *mixer.Options) { o.Format.Channels = 0 }},
		{"max voices", func(o *mixer.Options) { o.MaxVoices = 0 }},
		{"queue size", func(o *mixer.Options) { o.QueueSize = -1 }},
		{"master volume", func(o *mixer.Options) { o.MasterVolume = -0.5 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			opts := valid
			tt.tweak(&opts)
			_, err := mixer.New(opts)
			assert.ErrorIs(t, err, mixer.ErrInvalidOptions)
		})
	}
}

func TestMix_PlaysToEnd(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 1)
	h := newHandle(t, m, 100)

	require.NoError(t, h.Play())
	assert.True(t, h.Playing())
	assert.Equal(t, 1, m.ActiveVoices())

	out := mix(m, 60)
	assert.InDeltaSlice(t, constBuffer(t, 1, 60, 0.5).Samples(), out, 1e-6)

	out = mix(m, 60)
	assert.Equal(t, 40, countNonZero(out))
	assert.True(t, h.Stopped())
	assert.False(t, h.Playing())
	assert.True(t, m.Idle())
	assert.Equal(t, 100*time.Millisecond, h.Elapsed())
}

func TestMix_PlayLaterIsSeamless(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 1)
	h := newHandle(t, m, 10)

	require.NoError(t, h.Play())
	require.NoError(t, h.PlayLater())
	require.NoError(t, h.PlayLater())

	out := mix(m, 40)
	for i := range 30 {
		require.InDelta(t, 0.5, out[i], 1e-6, "frame %d", i)
	}
	assert.Zero(t, countNonZero(out[30:]))
	assert.True(t, h.Stopped())
	assert.Equal(t, 30*time.Millisecond, h.Elapsed())
}

func TestMix_StopIsImmediate(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 1)
	h := newHandle(t, m, 100)

	require.NoError(t, h.Play())
	mix(m, 10)

	h.Stop()
	assert.True(t, h.Stopped())
	assert.Zero(t, h.Elapsed())

	assert.Zero(t, countNonZero(mix(m, 50)))
	assert.True(t, m.Idle())
}

func TestMix_StopBeforeFirstBlock(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 1)
	h := newHandle(t, m, 100)

	require.NoError(t, h.Play())
	require.NoError(t, h.PlayLater())
	h.Stop()

	assert.Zero(t, countNonZero(mix(m, 50)))
	assert.Equal(t, 0, m.ActiveVoices())
}

func TestMix_PlayRestarts(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 1)
	h := newHandle(t, m, 100)

	require.NoError(t, h.Play())
	mix(m, 70)

	require.NoError(t, h.Play())
	assert.Zero(t, h.Elapsed())

	out := mix(m, 100)
	assert.Equal(t, 100, countNonZero(out))
	assert.Equal(t, 1, m.ActiveVoices(), "old voice dropped, new one still draining")
}

func TestMix_PauseResume(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 1)
	h := newHandle(t, m, 100)

	require.NoError(t, h.Play())
	mix(m, 10)

	h.Pause()
	assert.True(t, h.Paused())
	assert.False(t, h.Playing())
	assert.False(t, h.Stopped())
	assert.Zero(t, countNonZero(mix(m, 20)))
	assert.Equal(t, 10*time.Millisecond, h.Elapsed())

	h.Resume()
	assert.True(t, h.Playing())
	assert.Equal(t, 20, countNonZero(mix(m, 20)))
	assert.Equal(t, 30*time.Millisecond, h.Elapsed())
}

func TestMix_Volume(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 1)
	h := newHandle(t, m, 100)

	h.SetVolume(0.5)
	require.NoError(t, h.Play())
	out := mix(m, 10)
	assert.InDelta(t, 0.25, out[0], 1e-6)

	// Live change applies from the next block
	h.SetVolume(-3)
	assert.Zero(t, h.Volume())
	assert.Zero(t, countNonZero(mix(m, 10)))
}

func TestMix_Pan(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 2)
	h := newHandle(t, m, 100)

	h.SetPan(-5)
	assert.Equal(t, float32(-1), h.Pan())

	require.NoError(t, h.Play())
	out := mix(m, 4)
	for f := range 4 {
		assert.InDelta(t, 0.5, out[2*f], 1e-6)
		assert.Zero(t, out[2*f+1])
	}
}

func TestMix_Pitch(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name  string
		pitch float64
		want  int
	}{
		{"unchanged", 1, 100},
		{"octave up", 2, 50},
		{"octave down", 0.5, 200},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			m := newMixer(t, 1)
			h := newHandle(t, m, 100)
			require.NoError(t, h.SetPitch(tt.pitch))
			require.NoError(t, h.Play())

			out := mix(m, 300)
			assert.Equal(t, tt.want, countNonZero(out))
			assert.True(t, h.Stopped())
		})
	}
}

func TestHandle_SetPitchInvalid(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 1)
	h := newHandle(t, m, 10)

	for _, p := range []float64{0, -1, math.NaN(), math.Inf(1)} {
		assert.ErrorIs(t, h.SetPitch(p), mixer.ErrInvalidPitch, "pitch %v", p)
	}
	assert.Equal(t, 1.0, h.Pitch())
}

func TestMix_FadeIn(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 1)
	h := newHandle(t, m, 100)

	h.SetFadeIn(10 * time.Millisecond)
	require.NoError(t, h.Play())

	out := mix(m, 20)
	for i := range 10 {
		assert.InDelta(t, 0.5*float64(i)/10, out[i], 1e-6, "frame %d", i)
	}
	for i := 10; i < 20; i++ {
		assert.InDelta(t, 0.5, out[i], 1e-6, "frame %d", i)
	}
}

func TestMix_RepeatAndFadeOnce(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 1)
	h := newHandle(t, m, 10)

	h.SetRepeat(true)
	h.SetFadeIn(5 * time.Millisecond)
	require.NoError(t, h.Play())

	out := mix(m, 35)
	assert.Equal(t, 34, countNonZero(out), "only the first frame of the fade is silent")
	assert.False(t, h.Stopped())
	assert.Equal(t, 35*time.Millisecond, h.Elapsed())

	h.Stop()
	assert.Zero(t, countNonZero(mix(m, 10)))
}

func TestMix_Start(t *testing.T) {
	t.Parallel()

	ramp := make([]float32, 100)
	for i := range ramp {
		ramp[i] = float32(i) / 100
	}
	buf, err := audio.NewBuffer(audio.Format{SampleRate: rate, Channels: 1}, ramp)
	require.NoError(t, err)

	m := newMixer(t, 1)
	h, err := m.NewHandle(buf)
	require.NoError(t, err)

	h.SetStart(50 * time.Millisecond)
	require.NoError(t, h.Play())

	out := mix(m, 60)
	assert.InDelta(t, 0.5, out[0], 1e-6)
	assert.InDelta(t, 0.99, out[49], 1e-6)
	assert.Zero(t, countNonZero(out[50:]))

	h.SetStart(time.Hour)
	assert.Equal(t, buf.Duration(), h.Start())
}

func TestHandle_Position(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 1)
	h := newHandle(t, m, 100)

	require.NoError(t, h.Play())
	mix(m, 30)

	assert.InDelta(t, float64(30*time.Millisecond), float64(h.Position()), float64(2*time.Millisecond))
	assert.Equal(t, 100*time.Millisecond, h.Duration())
}

func TestHandle_DetachedOutlivesHandle(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 1)
	h := newHandle(t, m, 100)

	h.SetVolume(0.5)
	require.NoError(t, h.PlayDetached())
	require.NoError(t, h.PlayDetached())
	assert.True(t, h.Stopped(), "detached voices are not on the handle's track")

	require.NoError(t, h.Close())
	assert.ErrorIs(t, h.Play(), mixer.ErrClosed)

	out := mix(m, 10)
	assert.InDelta(t, 0.5, out[0], 1e-6)
	assert.Equal(t, 2, m.ActiveVoices())
}

func TestMix_MasterVolumeAndClip(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 1)
	h := newHandle(t, m, 100)

	for range 3 {
		require.NoError(t, h.PlayDetached())
	}
	m.SetMasterVolume(0.5)
	assert.InDelta(t, 0.75, mix(m, 1)[0], 1e-6)

	m.SetMasterVolume(4)
	assert.Equal(t, float32(1), mix(m, 1)[0])

	m.SetMasterVolume(-1)
	assert.Zero(t, m.MasterVolume())
}

func TestMixer_QueueFull(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 1, func(o *mixer.Options) { o.QueueSize = 1 })
	h := newHandle(t, m, 10)

	require.NoError(t, h.Play())
	assert.ErrorIs(t, h.PlayLater(), mixer.ErrQueueFull)
	assert.Equal(t, 1, m.ActiveVoices())
	assert.False(t, h.Stopped())

	mix(m, 1)
	assert.NoError(t, h.PlayLater())
}

func TestMixer_TooManyVoices(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 1, func(o *mixer.Options) { o.MaxVoices = 2 })
	h := newHandle(t, m, 10)

	require.NoError(t, h.PlayDetached())
	require.NoError(t, h.PlayDetached())
	assert.ErrorIs(t, h.PlayDetached(), mixer.ErrTooManyVoices)

	mix(m, 20)
	assert.NoError(t, h.PlayDetached())
}

func TestMixer_RestartFreesVoices(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 1, func(o *mixer.Options) { o.MaxVoices = 2 })
	h := newHandle(t, m, 10)

	for i := range 3 {
		require.NoError(t, h.Play(), "play %d", i)
		assert.Equal(t, 1, m.ActiveVoices())
	}

	h.Stop()
	assert.Zero(t, m.ActiveVoices())

	require.NoError(t, h.Play())
	require.NoError(t, h.PlayDetached())
	assert.ErrorIs(t, h.PlayDetached(), mixer.ErrTooManyVoices)

	// Dropped voices are discarded without giving their slot back twice
	mix(m, 20)
	assert.True(t, m.Idle())
	assert.Zero(t, m.ActiveVoices())
}

func TestMixer_CloseIsIdle(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 1)
	h := newHandle(t, m, 100)
	require.NoError(t, h.Play())
	require.NoError(t, h.PlayLater())

	require.NoError(t, m.Close())
	mix(m, 100)

	assert.True(t, m.Idle())
	assert.Zero(t, m.ActiveVoices())
	assert.True(t, h.Stopped())
	assert.False(t, h.Playing())

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	assert.NoError(t, h.Wait(ctx, time.Millisecond, nil))
	assert.NoError(t, m.WaitIdle(ctx, time.Millisecond))
}

func TestMixer_Close(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 1)
	h := newHandle(t, m, 100)
	require.NoError(t, h.Play())

	require.NoError(t, m.Close())
	assert.Zero(t, countNonZero(mix(m, 10)))
	assert.ErrorIs(t, h.PlayLater(), mixer.ErrClosed)

	_, err := m.NewHandle(constBuffer(t, 1, 10, 0.5))
	assert.ErrorIs(t, err, mixer.ErrClosed)
}

func TestMixer_NewHandleConverts(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 2)

	mono, err := audio.NewBuffer(audio.Format{SampleRate: rate / 2, Channels: 1}, make([]float32, 50))
	require.NoError(t, err)

	h, err := m.NewHandle(mono)
	require.NoError(t, err)
	assert.Equal(t, m.Format(), h.Buffer().Format())
	assert.Equal(t, mono.Duration(), h.Duration())
}

// runMixer stands in for an output device.
func runMixer(ctx context.Context, m *mixer.Mixer) *sync.WaitGroup {
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		out := make([]float32, 10*m.Format().Channels)
		for ctx.Err() == nil {
			m.Mix(out)
			time.Sleep(time.Millisecond)
		}
	}()
	return &wg
}

func TestHandle_Wait(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 1)
	h := newHandle(t, m, 100)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	wg := runMixer(ctx, m)
	defer wg.Wait()
	defer cancel()

	require.NoError(t, h.Play())

	var last time.Duration
	err := h.Wait(ctx, time.Millisecond, func(elapsed time.Duration) {
		assert.GreaterOrEqual(t, elapsed, last)
		last = elapsed
	})
	require.NoError(t, err)
	assert.True(t, h.Stopped())
	assert.NoError(t, m.WaitIdle(ctx, time.Millisecond))
}

func TestHandle_WaitCancelled(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 1)
	h := newHandle(t, m, 100)
	h.SetRepeat(true)
	require.NoError(t, h.Play())

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	assert.ErrorIs(t, h.Wait(ctx, time.Millisecond, nil), context.DeadlineExceeded)
	assert.ErrorIs(t, m.WaitIdle(ctx, time.Millisecond), context.DeadlineExceeded)
}

func TestHandle_IDsAreUnique(t *testing.T) {
	t.Parallel()

	m := newMixer(t, 1)
	a, b := newHandle(t, m, 1), newHandle(t, m, 1)
	assert.NotEqual(t, a.ID(), b.ID())
}
