// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

const (
	idlePoll      = 10 * time.Millisecond
	statsInterval = 100 * time.Millisecond
)

type playOptions struct {
	playbackFlags
	detached int
	later    int
	stats    bool
	timeout  time.Duration
}

func newPlayCommand(a *app) *cobra.Command {
	o := &playOptions{}

	cmd := &cobra.Command{
		Use:   "play NAME",
		Short: "Play a sound and wait until it finishes",
		Long: `Play a sound from the resource directories.

--later queues extra runs behind the first one, --detached starts extra
independent copies. The command returns when every voice has finished,
the timeout passes or it is interrupted.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runPlay(cmd, a, o, args[0])
		},
	}

	o.register(cmd.Flags())
	cmd.Flags().IntVar(&o.detached, "detached", 0, "extra detached copies to start")
	cmd.Flags().IntVar(&o.later, "later", 0, "extra runs to queue behind the first")
	cmd.Flags().BoolVar(&o.stats, "stats", false, "print the elapsed time while playing")
	cmd.Flags().DurationVar(&o.timeout, "timeout", 0, "stop after this long, 0 waits until done")

	return cmd
}

func runPlay(cmd *cobra.Command, a *app, o *playOptions, name string) error {
	if o.repeat && o.timeout == 0 {
		fmt.Fprintln(cmd.ErrOrStderr(), "repeating until interrupted")
	}

	eng, err := a.engine(cmd, true)
	if err != nil {
		return err
	}
	defer eng.Close()

	ctx := cmd.Context()
	if o.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, o.timeout)
		defer cancel()
	}

	h, err := eng.NewSource(ctx, name)
	if err != nil {
		return err
	}
	defer h.Close()

	if err := o.apply(h); err != nil {
		return err
	}

	eng.Logger().Debug("playing",
		"handle", h.ID().String(),
		"name", name,
		"pitch", h.Pitch(),
		"volume", h.Volume(),
		"later", o.later,
		"detached", o.detached,
	)

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "playing %s (%s, %s)\n", name, h.Duration(), h.Buffer().Format())

	if err := h.Play(); err != nil {
		return fmt.Errorf("play: %w", err)
	}
	for range o.later {
		if err := h.PlayLater(); err != nil {
			return fmt.Errorf("play later: %w", err)
		}
	}
	for range o.detached {
		if err := h.PlayDetached(); err != nil {
			return fmt.Errorf("play detached: %w", err)
		}
	}

	var report func(time.Duration)
	if o.stats {
		report = func(elapsed time.Duration) {
			fmt.Fprintf(out, "elapsed: %s\n", elapsed.Round(time.Millisecond))
		}
	}

	err = h.Wait(ctx, statsInterval, report)
	if err == nil {
		err = eng.Mixer().WaitIdle(ctx, idlePoll)
	}
	if stopped(err) {
		h.Stop()
		err = nil
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "done after %s\n", h.Elapsed().Round(time.Millisecond))
	return nil
}

// stopped reports whether err only says the wait was cut short.
func stopped(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
