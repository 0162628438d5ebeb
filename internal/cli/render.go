// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/ik5/audmix/output"
)

// maxRender bounds renders whose length is not given.
const maxRender = 10 * time.Minute

type renderOptions struct {
	playbackFlags
	out      string
	duration time.Duration
}

func newRenderCommand(a *app) *cobra.Command {
	o := &renderOptions{}

	cmd := &cobra.Command{
		Use:   "render NAME",
		Short: "Mix a sound offline into a 16-bit WAV file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runRender(cmd, a, o, args[0])
		},
	}

	o.register(cmd.Flags())
	cmd.Flags().StringVarP(&o.out, "output", "o", "", "WAV file to write")
	cmd.Flags().DurationVar(&o.duration, "duration", 0, "length to render, 0 renders until the sound ends")
	_ = cmd.MarkFlagRequired("output")

	return cmd
}

func runRender(cmd *cobra.Command, a *app, o *renderOptions, name string) error {
	if o.repeat && o.duration == 0 {
		return errors.New("--repeat needs --duration")
	}

	eng, err := a.engine(cmd, false)
	if err != nil {
		return err
	}
	defer eng.Close()

	h, err := eng.NewSource(cmd.Context(), name)
	if err != nil {
		return err
	}
	if err := o.apply(h); err != nil {
		return err
	}

	f, err := os.Create(o.out)
	if err != nil {
		return fmt.Errorf("creating output: %w", err)
	}
	defer f.Close()

	if err := h.Play(); err != nil {
		return fmt.Errorf("play: %w", err)
	}

	opts := output.RenderOptions{
		Duration:    o.duration,
		BlockFrames: eng.Config().Audio.BufferFrames,
	}
	if opts.Duration == 0 {
		opts.Duration = maxRender
		opts.Until = eng.Mixer().Idle
	}

	format := eng.Mixer().Format()
	frames, err := output.RenderWAV(f, eng.Mixer(), format, opts)
	if err != nil {
		return fmt.Errorf("rendering %s: %w", name, err)
	}
	if err := f.Close(); err != nil {
		return fmt.Errorf("closing output: %w", err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (%d frames, %s, %s)\n",
		o.out, frames, format.Duration(frames), format)
	return nil
}
