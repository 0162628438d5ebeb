// SPDX-License-Identifier: EPL-2.0

// Package aiff provides AIFF (Audio Interchange File Format) decoding.
//
// This package uses github.com/go-audio/aiff to decode AIFF files.
// AIFF is Apple's standard audio file format, commonly used on macOS.
//
// # Supported Formats
//
//   - AIFF and uncompressed AIFC
//   - Signed PCM at 8, 16, 24 or 32 bits
//   - Up to audio.MaxChannels channels at any sample rate
//
// # Decoding AIFF Files
//
//	file, _ := os.Open("audio.aif")
//	source, err := aiff.Decoder{}.Decode(file)
//	if err != nil {
//	    // Handle error
//	}
//
// Samples come out as float32 values in [-1.0, 1.0). The frame count from
// the COMM chunk is exposed through audio.Lengther.
//
// # Error Handling
//
//   - ErrNotAiffFile: The input is not a valid AIFF file
//   - ErrUnsupportedBitDepth: The sample width is not supported
//   - ErrUnsupportedAiffLayout: The COMM chunk describes no usable format
//
// # Limitations
//
// AIFF writing is not supported. go-audio needs an io.ReadSeeker, so other
// readers are buffered into memory first.
package aiff
