// SPDX-License-Identifier: EPL-2.0

package config

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const header = `# audmix configuration
#
# Every key can be overridden with an AUDMIX_ environment variable, for
# example AUDMIX_AUDIO_BACKEND=null or AUDMIX_RESOURCES_CACHE_TTL=0s.
# A cache_ttl of 0s disables the sound cache.

`

// MarshalYAML writes the cache TTL as a duration string so the file reads
// back through Load.
func (r ResourcesConfig) MarshalYAML() (any, error) {
	return struct {
		Dirs     []string `yaml:"dirs"`
		CacheTTL string   `yaml:"cache_ttl"`
		Watch    bool     `yaml:"watch"`
	}{r.Dirs, r.CacheTTL.String(), r.Watch}, nil
}

// Write encodes c as a commented YAML document that Load accepts.
func (c Config) Write(w io.Writer) error {
	if _, err := io.WriteString(w, header); err != nil {
		return err
	}

	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("encoding config: %w", err)
	}
	return enc.Close()
}

// WriteFile stores c at path, creating the parent directory.
func (c Config) WriteFile(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o600)
	if err != nil {
		return fmt.Errorf("writing config file: %w", err)
	}
	if err := c.Write(f); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}
