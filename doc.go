// SPDX-License-Identifier: EPL-2.0

// Package audmix plays short sounds through a software mixer.
//
// An Engine ties together three parts, each usable on its own:
//
//   - sound.Loader finds a file in the resource directories, decodes it
//     with the decoders in formats and converts it to the output format.
//   - mixer.Mixer keeps one queue of voices per handle and sums them into
//     blocks for the device.
//   - output.Device pulls blocks from the mixer on its own schedule.
//
// # Quick Start
//
//	cfg, _ := config.Load(config.LoadOptions{})
//	eng, _ := audmix.New(cfg)
//	_ = eng.Start(ctx)
//	defer eng.Close()
//
//	h, _ := eng.NewSource(ctx, "pew.ogg")
//	_ = h.SetPitch(2)
//	_ = h.Play()
//	_ = h.Wait(ctx, 10*time.Millisecond, nil)
//
// # Handles
//
// A handle plays one buffer. Play restarts it, PlayLater queues another
// run behind the current one, and PlayDetached starts an independent copy
// that keeps the handle's volume, pitch and pan. Setters take effect on
// the next mixed block.
//
// # Formats
//
// WAV, AIFF, FLAC, Ogg Vorbis and MP3 are registered by default. Files
// are matched by extension first and by their header otherwise.
package audmix
