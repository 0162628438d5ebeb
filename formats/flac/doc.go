// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC files through github.com/gopxl/beep/v2/flac.
//
// beep streams frames as stereo float64 pairs. Mono files keep a single
// channel; everything else is delivered as interleaved stereo.
//
// Close closes the reader passed to Decode when it implements io.Closer.
package flac
