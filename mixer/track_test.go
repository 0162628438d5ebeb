// SPDX-License-Identifier: EPL-2.0

package mixer

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestTrack_Generation(t *testing.T) {
	t.Parallel()

	tr := newTrack()
	g0 := tr.begin()
	tr.begin()
	assert.Equal(t, uint32(2), tr.queued())

	assert.True(t, tr.finish(g0))
	assert.Equal(t, uint32(1), tr.queued())

	g1, dropped := tr.stop()
	assert.Equal(t, g0+1, g1)
	assert.Equal(t, uint32(1), dropped)
	assert.Equal(t, uint32(0), tr.queued())

	// A voice from before the stop must not release a new slot
	tr.begin()
	assert.False(t, tr.finish(g0))
	assert.Equal(t, uint32(1), tr.queued())

	assert.True(t, tr.finish(g1))
	assert.False(t, tr.finish(g1))
	assert.Equal(t, uint32(0), tr.queued(), "finish never goes below zero")

	_, dropped = tr.stop()
	assert.Zero(t, dropped)
}

func TestTrack_ConcurrentBegin(t *testing.T) {
	t.Parallel()

	tr := newTrack()
	var wg sync.WaitGroup
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tr.begin()
		}()
	}
	wg.Wait()

	assert.Equal(t, uint32(50), tr.queued())
}

func TestTrack_Gains(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		channels int
		volume   float32
		pan      float32
		want     []float32
	}{
		{"mono ignores pan", 1, 0.5, -1, []float32{0.5}},
		{"center", 2, 1, 0, []float32{1, 1}},
		{"hard left", 2, 1, -1, []float32{1, 0}},
		{"hard right", 2, 0.5, 1, []float32{0, 0.5}},
		{"half right", 2, 1, 0.5, []float32{0.5, 1}},
		{"quad ignores pan", 4, 0.25, 1, []float32{0.25, 0.25, 0.25, 0.25}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			tr := newTrack()
			tr.volume.Store(tt.volume)
			tr.pan.Store(tt.pan)

			got := make([]float32, tt.channels)
			tr.gains(got)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestTrack_CopySettings(t *testing.T) {
	t.Parallel()

	tr := newTrack()
	tr.volume.Store(0.3)
	tr.pitch.Store(1.5)
	tr.pan.Store(-0.2)
	tr.paused.Store(true)
	tr.begin()

	c := tr.copySettings()
	assert.Equal(t, float32(0.3), c.volume.Load())
	assert.Equal(t, 1.5, c.pitch.Load())
	assert.Equal(t, float32(-0.2), c.pan.Load())
	assert.False(t, c.paused.Load())
	assert.Equal(t, uint32(0), c.queued())
}
