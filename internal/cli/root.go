// SPDX-License-Identifier: EPL-2.0

// Package cli implements the audmix command line.
package cli

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/ik5/audmix"
	"github.com/ik5/audmix/config"
	"github.com/ik5/audmix/internal/log"
)

// app holds the persistent flags shared by every subcommand.
type app struct {
	configFile   string
	envFile      string
	backend      string
	logLevel     string
	resourceDirs []string
}

// NewRootCommand builds the audmix command tree.
func NewRootCommand() *cobra.Command {
	a := &app{}

	root := &cobra.Command{
		Use:   "audmix",
		Short: "Play and inspect short sounds through a software mixer",
		Long: `audmix loads sounds from the resource directories, mixes them in software
and plays them through oto, PortAudio or a silent null device.`,
		SilenceUsage: true,
	}

	pf := root.PersistentFlags()
	pf.StringVar(&a.configFile, "config", "", "config file (default audmix.yaml in . or $HOME/.config/audmix)")
	pf.StringVar(&a.envFile, "env-file", config.DefaultEnv, "dotenv file loaded before reading AUDMIX_* variables")
	pf.StringVar(&a.backend, "backend", "", "output backend: oto, portaudio or null")
	pf.StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn or error")
	pf.StringSliceVar(&a.resourceDirs, "resource-dir", nil, "directory searched for sounds, repeatable")

	root.AddCommand(
		newPlayCommand(a),
		newDemoCommand(a),
		newInfoCommand(a),
		newRenderCommand(a),
		newFormatsCommand(a),
		newConfigCommand(a),
	)
	return root
}

// Execute runs the command line with args until ctx is cancelled.
func Execute(ctx context.Context, args []string) error {
	root := NewRootCommand()
	root.SetArgs(args)
	return root.ExecuteContext(ctx)
}

// config loads the configuration and applies flag overrides on top.
func (a *app) config() (config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{File: a.configFile, EnvFile: a.envFile})
	if err != nil {
		return config.Config{}, err
	}

	if a.backend != "" {
		cfg.Audio.Backend = a.backend
	}
	if a.logLevel != "" {
		cfg.Log.Level = a.logLevel
	}
	if len(a.resourceDirs) > 0 {
		cfg.Resources.Dirs = a.resourceDirs
	}

	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	return cfg, nil
}

func (a *app) logger(cmd *cobra.Command, cfg config.Config) (*slog.Logger, error) {
	return log.New(cmd.ErrOrStderr(), cfg.Log.Level, cfg.Log.Format)
}

// engine builds an engine from the flags. When start is set the output
// device is opened too.
func (a *app) engine(cmd *cobra.Command, start bool) (*audmix.Engine, error) {
	cfg, err := a.config()
	if err != nil {
		return nil, err
	}

	logger, err := a.logger(cmd, cfg)
	if err != nil {
		return nil, err
	}

	eng, err := audmix.New(cfg, audmix.WithLogger(logger))
	if err != nil {
		return nil, err
	}

	if start {
		if err := eng.Start(cmd.Context()); err != nil {
			_ = eng.Close()
			return nil, fmt.Errorf("starting engine: %w", err)
		}
	}
	return eng, nil
}
