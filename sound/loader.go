// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/internal/log"
	gocache "github.com/patrickmn/go-cache"
)

// Options configures a Loader.
type Options struct {
	// Registry picks decoders. Required.
	Registry *audio.Registry
	// Resolver finds files. Defaults to NewResolver().
	Resolver *Resolver
	// Format every loaded sound is converted to. Required.
	Format audio.Format
	// CacheTTL keeps decoded sounds for this long. Zero disables caching.
	CacheTTL time.Duration
	// Logger defaults to slog.Default().
	Logger *slog.Logger
}

// Loader resolves, decodes and converts sounds, caching the result.
type Loader struct {
	reg    *audio.Registry
	res    *Resolver
	format audio.Format
	cache  *gocache.Cache
	logger *slog.Logger
}

func NewLoader(opts Options) (*Loader, error) {
	if opts.Registry == nil {
		return nil, errors.New("sound: loader needs a registry")
	}
	if err := opts.Format.Validate(); err != nil {
		return nil, fmt.Errorf("sound: %w", err)
	}
	if opts.Resolver == nil {
		opts.Resolver = NewResolver()
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	l := &Loader{
		reg:    opts.Registry,
		res:    opts.Resolver,
		format: opts.Format,
		logger: log.Component(opts.Logger, "loader"),
	}
	if opts.CacheTTL > 0 {
		l.cache = gocache.New(opts.CacheTTL, 2*opts.CacheTTL)
	}

	return l, nil
}

func (l *Loader) Format() audio.Format      { return l.format }
func (l *Loader) Resolver() *Resolver       { return l.res }
func (l *Loader) Registry() *audio.Registry { return l.reg }

// Load returns the sound called name in the loader's format. Repeated
// loads of one file share a single Buffer while it stays cached.
func (l *Loader) Load(ctx context.Context, name string) (*audio.Buffer, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	p, err := l.res.Resolve(name)
	if err != nil {
		return nil, err
	}

	if l.cache != nil {
		if v, ok := l.cache.Get(p); ok {
			l.logger.Debug("sound cache hit", "name", name, "path", p)
			return v.(*audio.Buffer), nil
		}
	}

	start := time.Now()
	buf, dec, err := l.loadFile(p)
	if err != nil {
		return nil, fmt.Errorf("loading %s: %w", name, err)
	}

	if l.cache != nil {
		l.cache.Set(p, buf, gocache.DefaultExpiration)
	}

	l.logger.Info("sound loaded",
		"name", name,
		"path", p,
		"decoder", dec,
		"duration", buf.Duration(),
		"took", time.Since(start),
	)
	return buf, nil
}

func (l *Loader) loadFile(p string) (*audio.Buffer, string, error) {
	f, err := os.Open(p)
	if err != nil {
		return nil, "", fmt.Errorf("%w", err)
	}
	defer closeFile(f)

	src, dec, err := l.decode(f, filepath.Ext(p))
	if err != nil {
		return nil, "", err
	}
	defer src.Close()

	buf, err := audio.ReadAll(src, l.format)
	if err != nil {
		return nil, "", err
	}
	return buf, dec.Name(), nil
}

// LoadReader decodes r without touching the cache. ext selects the
// decoder; content sniffing is used when it is empty or unknown.
func (l *Loader) LoadReader(r io.Reader, ext string) (*audio.Buffer, error) {
	rs, ok := r.(io.ReadSeeker)
	if !ok {
		data, err := io.ReadAll(r)
		if err != nil {
			return nil, fmt.Errorf("reading sound: %w", err)
		}
		rs = bytes.NewReader(data)
	}

	src, _, err := l.decode(rs, ext)
	if err != nil {
		return nil, err
	}
	defer src.Close()

	return audio.ReadAll(src, l.format)
}

// Info describes a sound file as stored, before any conversion.
type Info struct {
	Path    string
	Decoder string
	Format  audio.Format
	// Frames is -1 when the decoder cannot tell without decoding.
	Frames int64
}

func (i Info) Duration() time.Duration {
	return i.Format.Duration(i.Frames)
}

// Stat resolves name and reads its header.
func (l *Loader) Stat(name string) (Info, error) {
	p, err := l.res.Resolve(name)
	if err != nil {
		return Info{}, err
	}

	f, err := os.Open(p)
	if err != nil {
		return Info{}, fmt.Errorf("opening %s: %w", name, err)
	}
	defer closeFile(f)

	src, dec, err := l.decode(f, filepath.Ext(p))
	if err != nil {
		return Info{}, fmt.Errorf("reading %s: %w", name, err)
	}
	defer src.Close()

	info := Info{Path: p, Decoder: dec.Name(), Format: src.Format(), Frames: -1}
	if lr, ok := src.(audio.Lengther); ok {
		info.Frames = lr.Frames()
	}
	return info, nil
}

// decode opens r with the decoder registered for ext. When there is none,
// or it rejects the data, the header is sniffed instead.
func (l *Loader) decode(r io.ReadSeeker, ext string) (audio.Source, audio.Decoder, error) {
	var firstErr error
	byExt, ok := l.reg.Get(ext)
	if ok {
		src, err := byExt.Decode(r)
		if err == nil {
			return src, byExt, nil
		}
		firstErr = err
		if _, err := r.Seek(0, io.SeekStart); err != nil {
			return nil, nil, fmt.Errorf("rewinding: %w", err)
		}
	}

	header := make([]byte, audio.DefaultHeaderSize)
	n, err := io.ReadFull(r, header)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, nil, fmt.Errorf("reading header: %w", err)
	}
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return nil, nil, fmt.Errorf("rewinding: %w", err)
	}

	sniffed, found := l.reg.Detect(header[:n])
	switch {
	case found && sniffed != byExt:
		src, err := sniffed.Decode(r)
		if err != nil {
			return nil, nil, fmt.Errorf("%s: %w", sniffed.Name(), err)
		}
		l.logger.Debug("decoder picked by content", "ext", ext, "decoder", sniffed.Name())
		return src, sniffed, nil
	case firstErr != nil:
		return nil, nil, fmt.Errorf("%s: %w", byExt.Name(), firstErr)
	default:
		return nil, nil, fmt.Errorf("%w: extension %q", audio.ErrUnknownFormat, ext)
	}
}

// Invalidate drops the cached copy of name, if any.
func (l *Loader) Invalidate(name string) {
	if l.cache == nil {
		return
	}
	if p, err := l.res.Resolve(name); err == nil {
		l.cache.Delete(p)
	}
}

// Cached reports how many decoded sounds are held.
func (l *Loader) Cached() int {
	if l.cache == nil {
		return 0
	}
	return l.cache.ItemCount()
}

func closeFile(f *os.File) {
	// Some decoders close their reader themselves
	if err := f.Close(); err != nil && !errors.Is(err, os.ErrClosed) {
		slog.Default().Debug("closing sound file", "path", f.Name(), log.Err(err))
	}
}
