// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newInfoCommand(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "info NAME...",
		Short: "Print format, duration and decoder of sounds",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			eng, err := a.engine(cmd, false)
			if err != nil {
				return err
			}
			defer eng.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			for _, name := range args {
				info, err := eng.Loader().Stat(name)
				if err != nil {
					return err
				}

				duration, frames := "unknown", "unknown"
				if info.Frames >= 0 {
					duration = info.Duration().String()
					frames = fmt.Sprint(info.Frames)
				}

				fmt.Fprintf(w, "name:\t%s\n", name)
				fmt.Fprintf(w, "path:\t%s\n", info.Path)
				fmt.Fprintf(w, "decoder:\t%s\n", info.Decoder)
				fmt.Fprintf(w, "format:\t%s\n", info.Format)
				fmt.Fprintf(w, "frames:\t%s\n", frames)
				fmt.Fprintf(w, "duration:\t%s\n", duration)
			}
			return w.Flush()
		},
	}
}
