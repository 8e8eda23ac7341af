package client

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claashk/modbusclient/codec/mbap"
)

func TestLoadConfig(t *testing.T) {
	file := filepath.Join(t.TempDir(), "modbus.yaml")
	require.NoError(t, os.WriteFile(file, []byte(`
host: 192.168.0.10
timeout: 3s
unit: 3
max-transactions: 8
max-retries: -1
retry-interval: 250ms
logging:
  level: debug
  max-size: 10
`), 0600))

	cfg, err := LoadConfig(file)
	require.NoError(t, err)
	assert.Equal(t, "192.168.0.10", cfg.Host)
	assert.Equal(t, mbap.DefaultPort, cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.Timeout)
	assert.Equal(t, uint8(3), cfg.Unit)
	assert.Equal(t, 8, cfg.MaxTransactions)
	assert.Equal(t, RetryForever, cfg.MaxRetries)
	assert.Equal(t, 250*time.Millisecond, cfg.RetryInterval)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 10, cfg.Logging.MaxSize)
	assert.Equal(t, "192.168.0.10:502", cfg.Address())
}

func TestLoadConfig_Env(t *testing.T) {
	file := filepath.Join(t.TempDir(), "modbus.yaml")
	require.NoError(t, os.WriteFile(file, []byte("port: 1502\n"), 0600))
	t.Setenv("MODBUS_CONF_PATH", file)

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, 1502, cfg.Port)
	assert.Equal(t, uint8(mbap.NoUnit), cfg.Unit)
}

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("MODBUS_CONF_PATH", "")
	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)
	assert.Equal(t, "localhost:502", cfg.Address())
}

func TestLoadConfig_Invalid(t *testing.T) {
	dir := t.TempDir()
	for name, content := range map[string]string{
		"port.yaml":    "port: 70000\n",
		"slots.yaml":   "max-transactions: 0\n",
		"retries.yaml": "max-retries: -2\n",
		"syntax.yaml":  "host: [\n",
	} {
		file := filepath.Join(dir, name)
		require.NoError(t, os.WriteFile(file, []byte(content), 0600))
		_, err := LoadConfig(file)
		assert.True(t, errors.Is(err, ErrInvalidConfig), name)
	}

	_, err := LoadConfig(filepath.Join(dir, "missing.yaml"))
	assert.True(t, errors.Is(err, os.ErrNotExist))
}
