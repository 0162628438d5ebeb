// SPDX-License-Identifier: EPL-2.0

// Package formats wires every built-in decoder into an audio.Registry.
package formats

import (
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/formats/aiff"
	"github.com/ik5/audmix/formats/flac"
	"github.com/ik5/audmix/formats/mp3"
	"github.com/ik5/audmix/formats/vorbis"
	"github.com/ik5/audmix/formats/wav"
)

// Register adds the built-in decoders to r. Registration order is the
// order Detect tries them in.
func Register(r *audio.Registry) {
	r.Register(wav.Decoder{}, "wav", "wave")
	r.Register(aiff.Decoder{}, "aif", "aiff", "aifc")
	r.Register(flac.Decoder{}, "flac")
	r.Register(vorbis.Decoder{}, "ogg", "oga")
	// Frame sync is the weakest signature, so mp3 goes last
	r.Register(mp3.Decoder{}, "mp3")
}

// NewRegistry returns a registry holding every built-in decoder.
func NewRegistry() *audio.Registry {
	r := audio.NewRegistry()
	Register(r)
	return r
}
