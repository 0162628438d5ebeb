// SPDX-License-Identifier: EPL-2.0

// Package mixer plays decoded sounds on any number of concurrent tracks.
//
// A track is a queue: its head voice sounds, and when it ends the next
// queued voice starts in the same output block. A Handle owns one track and
// offers the usual transport controls (play, queue, detach, pause, stop)
// plus live volume, pitch and pan.
//
// Control calls never touch audio-side state directly. Live settings are
// atomics; new voices travel through a buffered channel that Mix drains
// without blocking at the start of every block. Stop works by bumping the
// track's generation, so it is visible to Stopped and Playing immediately
// and the audio side discards stale voices on its next block.
//
//	m, _ := mixer.New(mixer.DefaultOptions(format))
//	h, _ := m.NewHandle(buf)
//	h.SetPitch(2)
//	_ = h.Play()
//
//	// audio callback
//	m.Mix(out)
//
// Decoded buffers are shared and immutable, so a detached voice keeps
// playing after its handle is closed and the sound is released once the
// last voice is done with it.
package mixer
