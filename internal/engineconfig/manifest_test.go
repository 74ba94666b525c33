package engineconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadHostModuleManifest(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "modules.yaml")
	contents := "modules:\n  - name: cache\n    module: kvcache\n    enabled: true\n    options:\n      addr: localhost:6379\n"
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))

	manifest, err := LoadHostModuleManifest(path)
	require.NoError(t, err)
	require.Len(t, manifest.Modules, 1)

	entry, ok := manifest.Find("cache")
	require.True(t, ok)
	assert.Equal(t, "kvcache", entry.Module)
	assert.True(t, entry.Enabled)
	assert.Equal(t, "localhost:6379", entry.Options["addr"])

	_, ok = manifest.Find("missing")
	assert.False(t, ok)
}
