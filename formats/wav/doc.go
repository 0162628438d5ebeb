// SPDX-License-Identifier: EPL-2.0

// Package wav reads and writes RIFF/WAVE files.
//
// Decoding and encoding both go through github.com/go-audio/wav.
//
// # Decoding
//
// Decoder accepts integer PCM at 8, 16, 24 or 32 bits, any channel count
// up to audio.MaxChannels and any sample rate:
//
//	file, _ := os.Open("boom.wav")
//	src, err := wav.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
// Samples come out as float32 in [-1.0, 1.0). 8-bit data, which WAV stores
// unsigned, is re-centered on zero. The source implements audio.Lengther
// so callers can size buffers up front.
//
// go-audio needs an io.ReadSeeker. Plain readers are buffered into memory
// first.
//
// # Encoding
//
// Writer streams float32 samples as 16-bit PCM and fixes the RIFF sizes on
// Close; Encode writes a whole audio.Buffer in one call:
//
//	out, _ := os.Create("mix.wav")
//	defer out.Close()
//	err := wav.Encode(out, buf)
//
// # Errors
//
//   - ErrNotWavFile: the stream has no RIFF/WAVE header
//   - ErrUnsupportedEncoding: the format tag is not integer PCM
//   - ErrUnsupportedBitDepth: the sample width is not 8, 16, 24 or 32
package wav
