// SPDX-License-Identifier: EPL-2.0

package mixer

import "errors"

var (
	// ErrQueueFull is returned when the command queue to the audio side has
	// no room. The call had no effect apart from the stop implied by Play.
	ErrQueueFull = errors.New("mixer command queue is full")

	// ErrTooManyVoices is returned when MaxVoices voices are already queued
	// or playing.
	ErrTooManyVoices = errors.New("too many voices")

	// ErrClosed is returned by control calls after Close.
	ErrClosed = errors.New("mixer closed")

	// ErrInvalidPitch is returned for pitch ratios that are not finite and
	// positive.
	ErrInvalidPitch = errors.New("pitch must be a finite positive ratio")

	// ErrInvalidOptions wraps every Options validation failure.
	ErrInvalidOptions = errors.New("invalid mixer options")
)
