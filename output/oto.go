// SPDX-License-Identifier: EPL-2.0

package output

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/ebitengine/oto/v3"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/internal/log"
)

// oto allows a single context per process.
var (
	otoOnce   sync.Once
	otoCtx    *oto.Context
	otoFormat audio.Format
	otoErr    error
)

func otoContext(format audio.Format, opts Options) (*oto.Context, error) {
	otoOnce.Do(func() {
		ctx, ready, err := oto.NewContext(&oto.NewContextOptions{
			SampleRate:   format.SampleRate,
			ChannelCount: format.Channels,
			Format:       oto.FormatFloat32LE,
			BufferSize:   opts.latency(format),
		})
		if err != nil {
			otoErr = fmt.Errorf("creating oto context: %w", err)
			return
		}
		<-ready
		otoCtx, otoFormat = ctx, format
	})

	if otoErr != nil {
		return nil, otoErr
	}
	if format != otoFormat {
		return nil, fmt.Errorf("%w: want %s, running %s", ErrFormatMismatch, format, otoFormat)
	}
	return otoCtx, nil
}

// Oto plays through github.com/ebitengine/oto/v3.
type Oto struct {
	opts   Options
	logger *slog.Logger

	mtx    sync.Mutex
	player *oto.Player
}

func NewOto(opts Options) *Oto {
	opts = opts.withDefaults()
	return &Oto{opts: opts, logger: log.Component(opts.Logger, "output").With("backend", "oto")}
}

func (d *Oto) Name() string { return "oto" }

func (d *Oto) Open(format audio.Format, r Renderer) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.player != nil {
		return ErrAlreadyOpen
	}

	ctx, err := otoContext(format, d.opts)
	if err != nil {
		return err
	}

	p := ctx.NewPlayer(NewPCMReader(r, format.Channels))
	p.SetBufferSize(d.opts.BufferFrames * format.Channels * bytesPerSample)
	p.Play()
	d.player = p

	d.logger.Info("output opened", "format", format.String(), "buffer_frames", d.opts.BufferFrames)
	return nil
}

func (d *Oto) Close() error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.player == nil {
		return nil
	}
	p := d.player
	d.player = nil

	p.Pause()
	if err := p.Close(); err != nil {
		return fmt.Errorf("closing oto player: %w", err)
	}
	d.logger.Info("output closed")
	return nil
}
