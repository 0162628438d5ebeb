// SPDX-License-Identifier: EPL-2.0

package audmix

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/config"
	"github.com/ik5/audmix/formats"
	"github.com/ik5/audmix/internal/log"
	"github.com/ik5/audmix/mixer"
	"github.com/ik5/audmix/output"
	"github.com/ik5/audmix/sound"
)

var (
	ErrStarted = errors.New("engine already started")
	ErrClosed  = errors.New("engine closed")
)

// Option customizes New.
type Option func(*Engine)

// WithLogger sets the logger handed to every component.
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithDevice replaces the device the configuration would pick.
func WithDevice(d output.Device) Option {
	return func(e *Engine) { e.device = d }
}

// WithRegistry replaces the built-in decoders.
func WithRegistry(r *audio.Registry) Option {
	return func(e *Engine) { e.registry = r }
}

// Engine owns a loader, a mixer and the device the mixer plays through.
type Engine struct {
	cfg      config.Config
	logger   *slog.Logger
	registry *audio.Registry
	loader   *sound.Loader
	mixer    *mixer.Mixer
	device   output.Device

	mtx     sync.Mutex
	started bool
	closed  bool
	cancel  context.CancelFunc
	wg      sync.WaitGroup
}

// New wires the components described by cfg. Nothing is played until
// Start.
func New(cfg config.Config, opts ...Option) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	e := &Engine{cfg: cfg}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = slog.Default()
	}
	if e.registry == nil {
		e.registry = formats.NewRegistry()
	}

	dirs := cfg.Resources.Dirs
	if len(dirs) == 0 {
		dirs = sound.DefaultDirs()
	}

	var err error
	e.loader, err = sound.NewLoader(sound.Options{
		Registry: e.registry,
		Resolver: sound.NewResolver(dirs...),
		Format:   cfg.Audio.Format(),
		CacheTTL: cfg.Resources.CacheTTL,
		Logger:   e.logger,
	})
	if err != nil {
		return nil, fmt.Errorf("creating loader: %w", err)
	}

	e.mixer, err = mixer.New(mixer.Options{
		Format:       cfg.Audio.Format(),
		MaxVoices:    cfg.Audio.MaxVoices,
		QueueSize:    cfg.Audio.QueueSize,
		MasterVolume: float32(cfg.Audio.MasterVolume),
	})
	if err != nil {
		return nil, fmt.Errorf("creating mixer: %w", err)
	}

	if e.device == nil {
		e.device, err = output.New(cfg.Audio.Backend, output.Options{
			BufferFrames: cfg.Audio.BufferFrames,
			Logger:       e.logger,
		})
		if err != nil {
			return nil, err
		}
	}

	e.logger = log.Component(e.logger, "engine")
	return e, nil
}

// Start opens the device and, when configured, starts watching the
// resource directories. The watcher stops with ctx or Close.
func (e *Engine) Start(ctx context.Context) error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	switch {
	case e.closed:
		return ErrClosed
	case e.started:
		return ErrStarted
	}

	if err := e.device.Open(e.mixer.Format(), e.mixer); err != nil {
		return fmt.Errorf("opening %s output: %w", e.device.Name(), err)
	}
	e.started = true

	ctx, e.cancel = context.WithCancel(ctx)
	if e.cfg.Resources.Watch {
		e.wg.Go(func() {
			if err := e.loader.Watch(ctx); err != nil {
				e.logger.Warn("resource watcher stopped", log.Err(err))
			}
		})
	}

	e.logger.Info("engine started",
		"backend", e.device.Name(),
		"format", e.mixer.Format().String(),
		"dirs", e.loader.Resolver().Dirs(),
	)
	return nil
}

// NewSource loads name through the loader and wraps it in a handle.
func (e *Engine) NewSource(ctx context.Context, name string) (*mixer.Handle, error) {
	buf, err := e.loader.Load(ctx, name)
	if err != nil {
		return nil, err
	}
	return e.mixer.NewHandle(buf)
}

func (e *Engine) Config() config.Config { return e.cfg }
func (e *Engine) Mixer() *mixer.Mixer   { return e.mixer }
func (e *Engine) Loader() *sound.Loader { return e.loader }
func (e *Engine) Device() output.Device { return e.device }
func (e *Engine) Logger() *slog.Logger  { return e.logger }

// Close stops the device, the watcher and the mixer. It is safe to call
// more than once.
func (e *Engine) Close() error {
	e.mtx.Lock()
	defer e.mtx.Unlock()

	if e.closed {
		return nil
	}
	e.closed = true

	if e.cancel != nil {
		e.cancel()
	}
	e.wg.Wait()

	err := errors.Join(e.device.Close(), e.mixer.Close())
	if err != nil {
		e.logger.Error("engine close", log.Err(err))
		return err
	}
	e.logger.Info("engine closed")
	return nil
}
