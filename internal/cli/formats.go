// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ik5/audmix/formats"
)

func newFormatsCommand(_ *app) *cobra.Command {
	return &cobra.Command{
		Use:   "formats",
		Short: "List the registered decoders and their extensions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reg := formats.NewRegistry()
			for _, name := range reg.Names() {
				exts := reg.Extensions(name)
				for i, ext := range exts {
					exts[i] = "." + ext
				}
				fmt.Fprintf(cmd.OutOrStdout(), "  %-8s %s\n", name, strings.Join(exts, " "))
			}
			return nil
		},
	}
}
