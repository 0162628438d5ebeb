// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"io"
	"slices"
	"strings"
	"sync"
	"time"
)

// MaxChannels is the largest channel count a Format may carry.
const MaxChannels = 8

// DefaultHeaderSize is the number of leading bytes every Sniffer needs to
// recognize its format.
const DefaultHeaderSize = 16

// Format describes an interleaved PCM stream.
type Format struct {
	// SampleRate of the stream in Hz.
	SampleRate int
	// Channels count (e.g., 1=mono, 2=stereo).
	Channels int
}

// Validate reports whether f can be used for processing.
func (f Format) Validate() error {
	if f.SampleRate <= 0 || f.Channels < 1 || f.Channels > MaxChannels {
		return fmt.Errorf("%w: %s", ErrInvalidFormat, f)
	}
	return nil
}

// Frames converts d into a frame count at f's sample rate.
func (f Format) Frames(d time.Duration) int64 {
	if d <= 0 || f.SampleRate <= 0 {
		return 0
	}
	return int64(d) * int64(f.SampleRate) / int64(time.Second)
}

// Duration converts a frame count into playback time at f's sample rate.
func (f Format) Duration(frames int64) time.Duration {
	if frames <= 0 || f.SampleRate <= 0 {
		return 0
	}
	return time.Duration(frames * int64(time.Second) / int64(f.SampleRate))
}

func (f Format) String() string {
	return fmt.Sprintf("%d Hz, %d ch", f.SampleRate, f.Channels)
}

type Source interface {
	// Format of the samples produced by ReadSamples.
	Format() Format
	// ReadSamples fills dst with interleaved float32 samples in [-1,1].
	// Returns number of float32 values written (not frames). io.EOF may come
	// with the final chunk or alone once the stream is finished.
	ReadSamples(dst []float32) (n int, err error)
	// Close releases any resources.
	Close() error
}

// Lengther is implemented by sources that know their length up front.
type Lengther interface {
	// Frames returns the total number of frames, or -1 when unknown.
	Frames() int64
}

// Decoder constructs a Source from an input reader.
type Decoder interface {
	Decode(r io.Reader) (Source, error)
	// Name is a short human readable format name, e.g. "wav".
	Name() string
}

// Sniffer is implemented by decoders that can recognize their format from
// the first DefaultHeaderSize bytes of a stream.
type Sniffer interface {
	Sniff(header []byte) bool
}

// Registry maps file extensions to decoders.
type Registry struct {
	mtx      sync.RWMutex
	byExt    map[string]Decoder
	decoders []Decoder
}

func NewRegistry() *Registry {
	return &Registry{
		byExt: make(map[string]Decoder),
	}
}

func normalizeExt(ext string) string {
	return strings.ToLower(strings.TrimPrefix(ext, "."))
}

// Register adds d under every extension in exts. A later registration for
// the same extension replaces the earlier one.
func (r *Registry) Register(d Decoder, exts ...string) {
	r.mtx.Lock()
	defer r.mtx.Unlock()

	if !slices.Contains(r.decoders, d) {
		r.decoders = append(r.decoders, d)
	}
	for _, ext := range exts {
		r.byExt[normalizeExt(ext)] = d
	}
}

// Get returns the decoder registered for ext. The leading dot and case
// are ignored.
func (r *Registry) Get(ext string) (Decoder, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	d, ok := r.byExt[normalizeExt(ext)]
	return d, ok
}

// Detect returns the first registered decoder whose Sniffer accepts header.
func (r *Registry) Detect(header []byte) (Decoder, bool) {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	for _, d := range r.decoders {
		if s, ok := d.(Sniffer); ok && s.Sniff(header) {
			return d, true
		}
	}
	return nil, false
}

// Names returns the names of all registered decoders in registration order.
func (r *Registry) Names() []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	names := make([]string, 0, len(r.decoders))
	for _, d := range r.decoders {
		names = append(names, d.Name())
	}
	return names
}

// Extensions returns the sorted extensions registered for the decoder
// called name.
func (r *Registry) Extensions(name string) []string {
	r.mtx.RLock()
	defer r.mtx.RUnlock()

	var exts []string
	for ext, d := range r.byExt {
		if d.Name() == name {
			exts = append(exts, ext)
		}
	}
	slices.Sort(exts)
	return exts
}
