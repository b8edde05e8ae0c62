package env

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "wlan0", cfg.Iface)
	assert.Equal(t, ":80", cfg.Portal.Addr)
	assert.Equal(t, "log", cfg.Uplink.Driver)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "boot.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
slot: /tmp/config.dat
iface: wlan1
uplink:
  driver: postgres
status:
  enabled: true
  addr: ":9090"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/config.dat", cfg.Slot)
	assert.Equal(t, "wlan1", cfg.Iface)
	assert.Equal(t, "postgres", cfg.Uplink.Driver)
	assert.True(t, cfg.Status.Enabled)
	assert.Equal(t, ":9090", cfg.Status.Addr)
	// untouched sections keep their defaults
	assert.Equal(t, ":80", cfg.Portal.Addr)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("MEDIAEDU_UPLINK", "mqtt")
	t.Setenv("SENDPROMDATA", "true")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "mqtt", cfg.Uplink.Driver)
	assert.True(t, cfg.Status.Enabled)
}
