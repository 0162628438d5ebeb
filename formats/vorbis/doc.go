// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis files with github.com/jfreymuth/oggvorbis.
//
//	file, _ := os.Open("music.ogg")
//	src, err := vorbis.Decoder{}.Decode(file)
//
// oggvorbis already produces interleaved float32 samples, so ReadSamples
// hands the destination straight to the decoder. The channel count comes
// from the stream and may be anything up to audio.MaxChannels.
package vorbis
