// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MP3 files with github.com/hajimehoshi/go-mp3.
//
//	file, _ := os.Open("pew.mp3")
//	src, err := mp3.Decoder{}.Decode(file)
//
// The decoder always yields interleaved stereo; mono files are duplicated
// by go-mp3. When the input is an io.Seeker the total length is known and
// the source implements audio.Lengther.
//
// Sniff recognizes streams that open with an ID3v2 tag or an MPEG frame
// sync word.
package mp3
