// SPDX-License-Identifier: EPL-2.0

package output

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/gordonklaus/portaudio"
	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/internal/log"
)

// PortAudio plays through the default PortAudio output device.
type PortAudio struct {
	opts   Options
	logger *slog.Logger

	mtx    sync.Mutex
	stream *portaudio.Stream
}

func NewPortAudio(opts Options) *PortAudio {
	opts = opts.withDefaults()
	return &PortAudio{opts: opts, logger: log.Component(opts.Logger, "output").With("backend", "portaudio")}
}

func (d *PortAudio) Name() string { return "portaudio" }

func (d *PortAudio) Open(format audio.Format, r Renderer) error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.stream != nil {
		return ErrAlreadyOpen
	}

	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initializing portaudio: %w", err)
	}

	// The callback runs on PortAudio's thread with an interleaved buffer
	stream, err := portaudio.OpenDefaultStream(
		0,
		format.Channels,
		float64(format.SampleRate),
		d.opts.BufferFrames,
		func(out []float32) { r.Mix(out) },
	)
	if err != nil {
		_ = portaudio.Terminate()
		return fmt.Errorf("opening portaudio stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		_ = stream.Close()
		_ = portaudio.Terminate()
		return fmt.Errorf("starting portaudio stream: %w", err)
	}
	d.stream = stream

	d.logger.Info("output opened", "format", format.String(), "buffer_frames", d.opts.BufferFrames)
	return nil
}

func (d *PortAudio) Close() error {
	d.mtx.Lock()
	defer d.mtx.Unlock()

	if d.stream == nil {
		return nil
	}
	s := d.stream
	d.stream = nil

	err := errors.Join(s.Stop(), s.Close(), portaudio.Terminate())
	if err != nil {
		return fmt.Errorf("closing portaudio: %w", err)
	}
	d.logger.Info("output closed")
	return nil
}
