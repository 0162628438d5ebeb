// SPDX-License-Identifier: EPL-2.0

package config

import (
	"bytes"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteReadsBack(t *testing.T) {
	dir := isolate(t)

	want := Defaults()
	want.Audio.Backend = "null"
	want.Audio.SampleRate = 48000
	want.Resources.Dirs = []string{"sfx", "music"}
	want.Resources.CacheTTL = 90 * time.Second
	want.Log.Level = "debug"

	path := filepath.Join(dir, "nested", "audmix.yaml")
	require.NoError(t, want.WriteFile(path))

	got, err := Load(LoadOptions{File: path})
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestWriteFormat(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	require.NoError(t, Defaults().Write(&buf))

	out := buf.String()
	assert.Contains(t, out, "# audmix configuration")
	assert.Contains(t, out, "  sample_rate: 44100\n")
	assert.Contains(t, out, "  cache_ttl: 10m0s\n")
	assert.Contains(t, out, "  dirs: []\n")
}
