// SPDX-License-Identifier: EPL-2.0

// Package utils holds small sample-level helpers shared by the decoders,
// the resampler and the mixer. Every function here is allocation free.
package utils
