package config

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.backbone/corpix/greeter/pkg/greeter"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()

	dir, err := ioutil.TempDir("", "greeter-config")
	require.NoError(t, err)
	t.Cleanup(func() { os.RemoveAll(dir) })

	path := filepath.Join(dir, "config.yml")
	require.NoError(t, ioutil.WriteFile(path, []byte(body), 0600))

	return path
}

func TestDefault(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	assert.Equal(t, greeter.DefaultAddr, c.Server.Addr)
	assert.Equal(t, "info", c.Log.Level)
	assert.Equal(t, 30*time.Second, c.ShutdownGraceTime)
	assert.False(t, c.Telemetry.Enable)
	assert.NoError(t, Validate(c))
}

func TestLoadFile(t *testing.T) {
	path := writeConfig(t, `
log:
  level: debug
server:
  addr: 127.0.0.1:9090
  compress: true
shutdown-grace-time: 5s
`)

	c, err := Load([]string{path}, InitPostprocessors...)
	require.NoError(t, err)

	assert.Equal(t, "debug", c.Log.Level)
	assert.Equal(t, "127.0.0.1:9090", c.Server.Addr)
	assert.True(t, c.Server.Compress)
	assert.Equal(t, 5*time.Second, c.ShutdownGraceTime)
	// untouched sections still get defaults
	assert.Equal(t, "1M", c.Server.BodyLimit)
	assert.NotNil(t, c.Server.Timeout)
}

func TestLoadInvalid(t *testing.T) {
	path := writeConfig(t, `
log:
  level: loud
`)

	_, err := Load([]string{path}, InitPostprocessors...)
	assert.Error(t, err)

	c, err := Load([]string{path}, LocalPostprocessors...)
	require.NoError(t, err)
	assert.Equal(t, "loud", c.Log.Level)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load([]string{filepath.Join(os.TempDir(), "greeter-missing", "config.yml")})
	assert.Error(t, err)
}

func TestMarshalRoundTrip(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	buf, err := Marshaler(c)
	require.NoError(t, err)
	assert.Contains(t, string(buf), "addr: 0.0.0.0:8080")

	path := writeConfig(t, string(buf))
	loaded, err := Load([]string{path}, InitPostprocessors...)
	require.NoError(t, err)
	assert.Equal(t, c.Server.Addr, loaded.Server.Addr)
	assert.Equal(t, c.Server.Timeout, loaded.Server.Timeout)
	assert.Equal(t, c.Client, loaded.Client)
	assert.Equal(t, c.ShutdownGraceTime, loaded.ShutdownGraceTime)
}

func TestLoadEnvironOverridesFile(t *testing.T) {
	path := writeConfig(t, `
server:
  addr: 127.0.0.1:9090
`)

	key := EnvironPrefix + "_SERVER_ADDR"
	require.NoError(t, os.Setenv(key, "127.0.0.1:9191"))
	defer os.Unsetenv(key)

	c, err := Load([]string{path}, InitPostprocessors...)
	require.NoError(t, err)
	assert.Equal(t, "127.0.0.1:9191", c.Server.Addr)
}
