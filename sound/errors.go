// SPDX-License-Identifier: EPL-2.0

package sound

import "errors"

var (
	// ErrNotFound is returned when no resource directory holds the name.
	ErrNotFound = errors.New("sound not found")

	// ErrInvalidName is returned for empty names and names that climb out
	// of the resource root.
	ErrInvalidName = errors.New("invalid sound name")
)
