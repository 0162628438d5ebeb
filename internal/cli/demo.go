// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/ik5/audmix"
	"github.com/ik5/audmix/mixer"
)

const DefaultDemoSound = "sound.ogg"

// demoVariant is one way of playing the demo sound.
type demoVariant struct {
	title string
	run   func(d *demo) error
}

type demo struct {
	cmd  *cobra.Command
	eng  *audmix.Engine
	name string
	// h is reused across variants like a long-lived game object.
	h *mixer.Handle
}

var demoVariants = []demoVariant{
	{"detached copy", (*demo).detached},
	{"play, then queue a second run", (*demo).queued},
	{"fade in over 1s", (*demo).fadeIn},
	{"pitch 2.0", func(d *demo) error { return d.pitched(2) }},
	{"pitch 0.5", func(d *demo) error { return d.pitched(0.5) }},
	{"play with elapsed time", (*demo).stats},
}

func newDemoCommand(a *app) *cobra.Command {
	var variant int

	cmd := &cobra.Command{
		Use:   "demo [NAME]",
		Short: "Run the playback variants one after another",
		Long: fmt.Sprintf(`Run every playback variant on one sound, waiting for silence in between:

  1  detached copy
  2  play, then queue a second run
  3  fade in over 1s
  4  pitch 2.0
  5  pitch 0.5
  6  play with elapsed time

NAME defaults to %s.`, DefaultDemoSound),
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name := DefaultDemoSound
			if len(args) == 1 {
				name = args[0]
			}
			return runDemo(cmd, a, name, variant)
		},
	}

	cmd.Flags().IntVarP(&variant, "variant", "n", 0, "run only this variant (1-6)")
	return cmd
}

func runDemo(cmd *cobra.Command, a *app, name string, variant int) error {
	if variant < 0 || variant > len(demoVariants) {
		return fmt.Errorf("variant %d out of range 1-%d", variant, len(demoVariants))
	}

	eng, err := a.engine(cmd, true)
	if err != nil {
		return err
	}
	defer eng.Close()

	h, err := eng.NewSource(cmd.Context(), name)
	if err != nil {
		return err
	}
	defer h.Close()

	d := &demo{cmd: cmd, eng: eng, name: name, h: h}
	out := cmd.OutOrStdout()

	for i, v := range demoVariants {
		if variant != 0 && variant != i+1 {
			continue
		}

		fmt.Fprintf(out, "[%d] %s\n", i+1, v.title)
		if err := v.run(d); err != nil {
			return fmt.Errorf("variant %d: %w", i+1, err)
		}
		if err := eng.Mixer().WaitIdle(cmd.Context(), idlePoll); err != nil {
			if stopped(err) {
				return nil
			}
			return err
		}
	}
	return nil
}

func (d *demo) detached() error {
	return d.h.PlayDetached()
}

func (d *demo) queued() error {
	if err := d.h.Play(); err != nil {
		return err
	}
	return d.h.PlayLater()
}

// fresh loads its own handle, which the loader cache makes cheap.
func (d *demo) fresh() (*mixer.Handle, error) {
	return d.eng.NewSource(d.cmd.Context(), d.name)
}

func (d *demo) fadeIn() error {
	h, err := d.fresh()
	if err != nil {
		return err
	}
	h.SetFadeIn(time.Second)
	return h.PlayDetached()
}

func (d *demo) pitched(ratio float64) error {
	h, err := d.fresh()
	if err != nil {
		return err
	}
	if err := h.SetPitch(ratio); err != nil {
		return err
	}
	return h.PlayDetached()
}

func (d *demo) stats() error {
	if err := d.h.Play(); err != nil {
		return err
	}

	out := d.cmd.OutOrStdout()
	err := d.h.Wait(d.cmd.Context(), statsInterval, func(elapsed time.Duration) {
		fmt.Fprintf(out, "elapsed: %s\n", elapsed.Round(time.Millisecond))
	})
	if stopped(err) {
		return nil
	}
	return err
}
