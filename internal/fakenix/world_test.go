package fakenix

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadNamed_Default(t *testing.T) {
	w, err := LoadNamed("default")
	require.NoError(t, err)

	assert.Equal(t, "2.24.9", w.Version)
	require.NotEmpty(t, w.Stores)
	assert.Equal(t, "auto", w.Stores[0].URL)
	assert.Equal(t, "/nix/store", w.Stores[0].StoreDir, "store_dir defaults")
	assert.Equal(t, "/nix/store", w.Stores[0].RealDir, "real_dir defaults to store_dir")
}

func TestLoadNamed_Unknown(t *testing.T) {
	_, err := LoadNamed("nope")
	assert.Error(t, err)
}

func TestLoadWorld_RejectsUnknownFields(t *testing.T) {
	path := writeWorld(t, `
version: "2.24.9"
store:
  - url: auto
    uri: daemon
`)
	_, err := LoadWorld(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to parse YAML")
}

func TestLoadWorld_Validation(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "missing version",
			yaml:    "stores: []\n",
			wantErr: "version is required",
		},
		{
			name:    "missing url",
			yaml:    "version: x\nstores:\n  - uri: daemon\n",
			wantErr: "stores[0]: url is required",
		},
		{
			name:    "missing uri",
			yaml:    "version: x\nstores:\n  - url: auto\n",
			wantErr: "stores[0]: uri is required",
		},
		{
			name:    "duplicate url",
			yaml:    "version: x\nstores:\n  - {url: auto, uri: a}\n  - {url: auto, uri: b}\n",
			wantErr: "duplicate url",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadWorld(writeWorld(t, tt.yaml))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadWorld_MissingFile(t *testing.T) {
	_, err := LoadWorld(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to read world file")
}

func writeWorld(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "world.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}
