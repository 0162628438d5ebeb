// SPDX-License-Identifier: EPL-2.0

package output

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/ik5/audmix/audio"
)

var (
	// ErrUnknownBackend is returned by New for names it does not know.
	ErrUnknownBackend = errors.New("unknown output backend")

	// ErrAlreadyOpen is returned when Open is called twice on a device.
	ErrAlreadyOpen = errors.New("output device already open")

	// ErrFormatMismatch is returned when a process-wide audio context was
	// already created with another format.
	ErrFormatMismatch = errors.New("output format differs from the running context")
)

const DefaultBufferFrames = 1024

// Renderer produces the next block of interleaved samples. Devices call it
// from their audio goroutine; it must not block.
type Renderer interface {
	Mix(dst []float32)
}

// Device plays whatever a Renderer produces.
type Device interface {
	// Name of the backend, as accepted by New.
	Name() string
	// Open starts pulling from r in format. It returns once the stream
	// is running.
	Open(format audio.Format, r Renderer) error
	// Close stops pulling from the renderer and releases the device.
	Close() error
}

// Options are shared by every backend.
type Options struct {
	// BufferFrames is the block size the renderer is asked for.
	BufferFrames int
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

func (o Options) withDefaults() Options {
	if o.BufferFrames <= 0 {
		o.BufferFrames = DefaultBufferFrames
	}
	if o.Logger == nil {
		o.Logger = slog.Default()
	}
	return o
}

// latency is the duration of one block in format.
func (o Options) latency(format audio.Format) time.Duration {
	return format.Duration(int64(o.BufferFrames))
}

var backends = map[string]func(Options) Device{
	"oto":       func(o Options) Device { return NewOto(o) },
	"portaudio": func(o Options) Device { return NewPortAudio(o) },
	"null":      func(o Options) Device { return NewNull(o) },
}

// Backends lists the names New accepts.
func Backends() []string {
	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)
	return names
}

// New returns an unopened device for the named backend.
func New(name string, opts Options) (Device, error) {
	mk, ok := backends[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, name)
	}
	return mk(opts.withDefaults()), nil
}
