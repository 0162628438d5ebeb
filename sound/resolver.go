// SPDX-License-Identifier: EPL-2.0

package sound

import (
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"strings"
)

const (
	// EnvResourceDir names a resource directory searched before the
	// default one when no directories are configured.
	EnvResourceDir = "AUDMIX_RESOURCE_DIR"

	// DefaultResourceDir is relative to the working directory.
	DefaultResourceDir = "resources"
)

// DefaultDirs returns $AUDMIX_RESOURCE_DIR when set, followed by
// ./resources.
func DefaultDirs() []string {
	var dirs []string
	if dir := os.Getenv(EnvResourceDir); dir != "" {
		dirs = append(dirs, dir)
	}
	return append(dirs, DefaultResourceDir)
}

// Resolver maps rooted resource names like "/sound.ogg" onto files in an
// ordered list of directories. The first directory holding the file wins.
type Resolver struct {
	dirs []string
}

// NewResolver searches dirs in order, or DefaultDirs when none are given.
func NewResolver(dirs ...string) *Resolver {
	if len(dirs) == 0 {
		dirs = DefaultDirs()
	}
	return &Resolver{dirs: dirs}
}

func (r *Resolver) Dirs() []string { return r.dirs }

// clean turns a resource name into a slash separated path relative to a
// resource root.
func clean(name string) (string, error) {
	rel := path.Clean(strings.TrimLeft(filepath.ToSlash(name), "/"))
	if rel == "." || !fs.ValidPath(rel) {
		return "", fmt.Errorf("%w: %q", ErrInvalidName, name)
	}
	return rel, nil
}

// Resolve returns the absolute path of name.
func (r *Resolver) Resolve(name string) (string, error) {
	rel, err := clean(name)
	if err != nil {
		return "", err
	}

	for _, dir := range r.dirs {
		p := filepath.Join(dir, filepath.FromSlash(rel))
		info, err := os.Stat(p)
		if err != nil || !info.Mode().IsRegular() {
			continue
		}

		abs, err := filepath.Abs(p)
		if err != nil {
			return "", fmt.Errorf("resolving %s: %w", p, err)
		}
		return abs, nil
	}

	return "", fmt.Errorf("%w: %s (searched %s)", ErrNotFound, name, strings.Join(r.dirs, ", "))
}
