// SPDX-License-Identifier: EPL-2.0

package output

import (
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/internal/log"
)

// Null renders blocks at real-time pace and throws them away. It stands
// in for a sound card on headless machines and in tests.
type Null struct {
	opts   Options
	logger *slog.Logger
	frames atomic.Int64

	mtx  sync.Mutex
	stop chan struct{}
	done chan struct{}
}

func NewNull(opts Options) *Null {
	opts = opts.withDefaults()
	return &Null{opts: opts, logger: log.Component(opts.Logger, "output").With("backend", "null")}
}

func (d *Null) Name() string { return "null" }

// Frames returns how many frames have been rendered since Open.
func (d *Null) Frames() int64 { return d.frames.Load() }

func (d *Null) Open(format audio.Format, r Renderer) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.stop != nil {
		return ErrAlreadyOpen
	}
	if err := format.Validate(); err != nil {
		return err
	}

	d.frames.Store(0)
	d.stop = make(chan struct{})
	d.done = make(chan struct{})
	go d.run(format, r, d.stop, d.done)

	d.logger.Debug("output opened", "format", format.String(), "buffer_frames", d.opts.BufferFrames)
	return nil
}

func (d *Null) run(format audio.Format, r Renderer, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	block := make([]float32, d.opts.BufferFrames*format.Channels)
	ticker := time.NewTicker(d.opts.latency(format))
	defer ticker.Stop()

	for {
		r.Mix(block)
		d.frames.Add(int64(d.opts.BufferFrames))

		select {
		case <-stop:
			return
		case <-ticker.C:
		}
	}
}

func (d *Null) Close() error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.stop == nil {
		return nil
	}
	close(d.stop)
	<-d.done
	d.stop, d.done = nil, nil

	d.logger.Debug("output closed", "frames", d.frames.Load())
	return nil
}
