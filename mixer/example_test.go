// SPDX-License-Identifier: EPL-2.0

package mixer_test

import (
	"fmt"
	"time"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/internal/audiotest"
	"github.com/ik5/audmix/mixer"
)

// Example shows queued playback driven by a fake audio callback.
func Example() {
	format := audio.Format{SampleRate: 8000, Channels: 2}
	m, _ := mixer.New(mixer.DefaultOptions(format))

	sound := audiotest.Buffer(audiotest.NewConstantSource(8000, 2, 800, 0.25))
	h, _ := m.NewHandle(sound)

	_ = h.Play()
	_ = h.PlayLater()
	fmt.Println("playing:", h.Playing())

	block := make([]float32, 400*format.Channels)
	for !m.Idle() {
		m.Mix(block)
	}

	fmt.Println("elapsed:", h.Elapsed())
	fmt.Println("stopped:", h.Stopped())
	// Output:
	// playing: true
	// elapsed: 200ms
	// stopped: true
}

// ExampleHandle_SetPitch plays a sound an octave up, which halves its
// length.
func ExampleHandle_SetPitch() {
	m, _ := mixer.New(mixer.DefaultOptions(audio.Format{SampleRate: 8000, Channels: 1}))
	h, _ := m.NewHandle(audiotest.Buffer(audiotest.NewConstantSource(8000, 1, 8000, 0.5)))

	_ = h.SetPitch(2)
	_ = h.Play()

	block := make([]float32, 1000)
	for !m.Idle() {
		m.Mix(block)
	}

	fmt.Println(h.Duration(), h.Elapsed().Round(time.Millisecond))
	// Output:
	// 1s 500ms
}
