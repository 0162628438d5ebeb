// SPDX-License-Identifier: EPL-2.0

package utils

// Clamp limits x to the normalized sample range [-1, 1].
func Clamp(x float32) float32 {
	if x > 1 {
		return 1
	}
	if x < -1 {
		return -1
	}
	return x
}

// Float32ToInt16 converts a normalized sample to 16-bit PCM, clamping
// values outside [-1, 1].
func Float32ToInt16(x float32) int16 {
	// 32767 for the positive side avoids overflow at exactly 1.0
	return int16(Clamp(x) * 32767.0)
}

// Int16ToFloat32 converts a 16-bit PCM sample to the normalized range.
func Int16ToFloat32(v int16) float32 {
	return float32(v) / 32768.0
}

// PCMScale returns the divisor that maps signed integer PCM of the given
// bit depth into [-1, 1). Unknown depths are treated as 16-bit.
func PCMScale(bitDepth int) float32 {
	switch bitDepth {
	case 8:
		return 128.0
	case 24:
		return 8388608.0
	case 32:
		return 2147483648.0
	default:
		return 32768.0
	}
}

// Gain returns the linear fade-in gain for a voice that has produced
// played frames of a fade lasting fadeFrames. A non-positive fade is
// treated as already complete.
func Gain(played, fadeFrames int64) float32 {
	if fadeFrames <= 0 || played >= fadeFrames {
		return 1
	}
	if played <= 0 {
		return 0
	}
	return float32(played) / float32(fadeFrames)
}
