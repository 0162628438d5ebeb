// SPDX-License-Identifier: EPL-2.0

// Package config loads audmix settings from defaults, an optional YAML
// file, an optional .env file and AUDMIX_* environment variables, in
// increasing order of precedence.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/ik5/audmix/audio"
	"github.com/ik5/audmix/internal/log"
	"github.com/ik5/audmix/mixer"
)

const (
	EnvPrefix  = "AUDMIX"
	FileName   = "audmix"
	DefaultEnv = ".env"
	minRate    = 8000
	maxRate    = 192000
	minBuffer  = 64
	maxBuffer  = 16384
	maxMaster  = 4.0

	// DefaultBufferFrames is the device buffer size when none is set.
	DefaultBufferFrames = 1024
)

// Output backend names accepted in audio.backend.
const (
	BackendNull      = "null"
	BackendOto       = "oto"
	BackendPortAudio = "portaudio"
)

// Backends lists the accepted audio.backend values in sorted order.
func Backends() []string {
	return []string{BackendNull, BackendOto, BackendPortAudio}
}

var ErrInvalidConfig = errors.New("invalid configuration")

// Config is the full program configuration.
type Config struct {
	Audio     AudioConfig     `mapstructure:"audio" yaml:"audio"`
	Resources ResourcesConfig `mapstructure:"resources" yaml:"resources"`
	Log       LogConfig       `mapstructure:"log" yaml:"log"`
}

// AudioConfig describes the output stream and the mixer behind it.
type AudioConfig struct {
	SampleRate   int     `mapstructure:"sample_rate" yaml:"sample_rate"`
	Channels     int     `mapstructure:"channels" yaml:"channels"`
	BufferFrames int     `mapstructure:"buffer_frames" yaml:"buffer_frames"`
	Backend      string  `mapstructure:"backend" yaml:"backend"`
	MaxVoices    int     `mapstructure:"max_voices" yaml:"max_voices"`
	QueueSize    int     `mapstructure:"queue_size" yaml:"queue_size"`
	MasterVolume float64 `mapstructure:"master_volume" yaml:"master_volume"`
}

// Format is the mixer output format.
func (a AudioConfig) Format() audio.Format {
	return audio.Format{SampleRate: a.SampleRate, Channels: a.Channels}
}

// ResourcesConfig controls where sounds are looked up and how long
// decoded buffers are kept.
type ResourcesConfig struct {
	// Dirs are searched in order. Empty means the loader defaults.
	Dirs     []string      `mapstructure:"dirs"`
	CacheTTL time.Duration `mapstructure:"cache_ttl"`
	Watch    bool          `mapstructure:"watch"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Defaults returns the configuration used when nothing overrides it.
func Defaults() Config {
	return Config{
		Audio: AudioConfig{
			SampleRate:   44100,
			Channels:     2,
			BufferFrames: DefaultBufferFrames,
			Backend:      BackendOto,
			MaxVoices:    mixer.DefaultMaxVoices,
			QueueSize:    mixer.DefaultQueueSize,
			MasterVolume: 1.0,
		},
		Resources: ResourcesConfig{
			Dirs:     []string{},
			CacheTTL: 10 * time.Minute,
		},
		Log: LogConfig{
			Level:  "info",
			Format: log.FormatText,
		},
	}
}

// LoadOptions point Load at explicit files.
type LoadOptions struct {
	// File is a config file to read. When empty, audmix.yaml is looked
	// up in the working directory and in $HOME/.config/audmix, and a
	// missing file is not an error.
	File string
	// EnvFile is loaded into the process environment before reading
	// variables. A missing file is ignored. Defaults to ".env".
	EnvFile string
}

// Load resolves the configuration and validates it.
func Load(opts LoadOptions) (Config, error) {
	if opts.EnvFile == "" {
		opts.EnvFile = DefaultEnv
	}
	if err := godotenv.Load(opts.EnvFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return Config{}, fmt.Errorf("loading %s: %w", opts.EnvFile, err)
	}

	v := newViper()

	if opts.File != "" {
		v.SetConfigFile(opts.File)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		if home, err := os.UserHomeDir(); err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", FileName))
		}
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if opts.File != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func newViper() *viper.Viper {
	v := viper.New()

	d := Defaults()
	v.SetDefault("audio.sample_rate", d.Audio.SampleRate)
	v.SetDefault("audio.channels", d.Audio.Channels)
	v.SetDefault("audio.buffer_frames", d.Audio.BufferFrames)
	v.SetDefault("audio.backend", d.Audio.Backend)
	v.SetDefault("audio.max_voices", d.Audio.MaxVoices)
	v.SetDefault("audio.queue_size", d.Audio.QueueSize)
	v.SetDefault("audio.master_volume", d.Audio.MasterVolume)
	v.SetDefault("resources.dirs", d.Resources.Dirs)
	v.SetDefault("resources.cache_ttl", d.Resources.CacheTTL)
	v.SetDefault("resources.watch", d.Resources.Watch)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	return v
}

func invalid(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrInvalidConfig, fmt.Sprintf(format, args...))
}

// Validate checks every field against the range the engine accepts.
func (c Config) Validate() error {
	a := c.Audio
	if a.SampleRate < minRate || a.SampleRate > maxRate {
		return invalid("audio.sample_rate %d outside [%d, %d]", a.SampleRate, minRate, maxRate)
	}
	if a.Channels < 1 || a.Channels > audio.MaxChannels {
		return invalid("audio.channels %d outside [1, %d]", a.Channels, audio.MaxChannels)
	}
	if a.BufferFrames < minBuffer || a.BufferFrames > maxBuffer {
		return invalid("audio.buffer_frames %d outside [%d, %d]", a.BufferFrames, minBuffer, maxBuffer)
	}
	if !slices.Contains(Backends(), a.Backend) {
		return invalid("audio.backend %q, want one of %s", a.Backend, strings.Join(Backends(), ", "))
	}
	if a.MaxVoices < 1 {
		return invalid("audio.max_voices must be positive, got %d", a.MaxVoices)
	}
	if a.QueueSize < 1 {
		return invalid("audio.queue_size must be positive, got %d", a.QueueSize)
	}
	if a.MasterVolume < 0 || a.MasterVolume > maxMaster {
		return invalid("audio.master_volume %g outside [0, %g]", a.MasterVolume, maxMaster)
	}

	if c.Resources.CacheTTL < 0 {
		return invalid("resources.cache_ttl must not be negative, got %s", c.Resources.CacheTTL)
	}
	for i, dir := range c.Resources.Dirs {
		if strings.TrimSpace(dir) == "" {
			return invalid("resources.dirs[%d] is empty", i)
		}
	}

	if _, err := log.ParseLevel(c.Log.Level); err != nil {
		return fmt.Errorf("%w: log.level: %w", ErrInvalidConfig, err)
	}
	if !log.ValidFormat(c.Log.Format) {
		return invalid("log.format %q, want %s or %s", c.Log.Format, log.FormatText, log.FormatJSON)
	}
	return nil
}
