// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ik5/audmix/config"
)

func newConfigCommand(a *app) *cobra.Command {
	var (
		defaults bool
		write    string
	)

	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the effective configuration as YAML",
		Long: `Print the configuration after defaults, config file, environment and
flags have been applied. --write stores it as a file Load accepts.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Defaults()
			if !defaults {
				var err error
				if cfg, err = a.config(); err != nil {
					return err
				}
			}

			if write == "" {
				return cfg.Write(cmd.OutOrStdout())
			}
			if err := cfg.WriteFile(write); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), "wrote", write)
			return nil
		},
	}

	cmd.Flags().BoolVar(&defaults, "defaults", false, "ignore files, environment and flags")
	cmd.Flags().StringVarP(&write, "write", "w", "", "write to this file instead of stdout")
	return cmd
}
