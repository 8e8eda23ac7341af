package client

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/claashk/modbusclient/codec/mbap"
	"github.com/claashk/modbusclient/comm/logging"
)

var log = logging.GetDefaultLogger()

// RetryForever as MaxRetries keeps dialing until Connect's context ends.
const RetryForever = -1

// Config of a client, usually loaded from yaml:
//
//	host: 192.168.0.10
//	port: 502
//	timeout: 5s
//	unit: 3
//	max-transactions: 3
//	max-retries: -1
//	retry-interval: 500ms
//	logging:
//	  level: debug
type Config struct {
	Host            string         `yaml:"host"`
	Port            int            `yaml:"port"`
	Timeout         time.Duration  `yaml:"timeout"` // per dial attempt, 0 waits for the OS
	Unit            uint8          `yaml:"unit"`
	MaxTransactions int            `yaml:"max-transactions"`
	MaxRetries      int            `yaml:"max-retries"`
	RetryInterval   time.Duration  `yaml:"retry-interval"`
	Logging         logging.Config `yaml:"logging"`
}

func DefaultConfig() Config {
	return Config{
		Host:            "localhost",
		Port:            mbap.DefaultPort,
		Timeout:         5 * time.Second,
		Unit:            mbap.NoUnit,
		MaxTransactions: 3,
		MaxRetries:      0,
		RetryInterval:   500 * time.Millisecond,
	}
}

// LoadConfig reads path on top of DefaultConfig. An empty path falls back
// to $MODBUS_CONF_PATH, and to the defaults if that is unset as well.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		path = os.Getenv("MODBUS_CONF_PATH")
	}
	if path == "" {
		return cfg, nil
	}
	bts, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err = yaml.Unmarshal(bts, &cfg); err != nil {
		return cfg, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, path, err)
	}
	return cfg, cfg.Verify()
}

func (c *Config) Verify() error {
	switch {
	case c.Port <= 0 || c.Port > 0xFFFF:
		return fmt.Errorf("%w: port %d", ErrInvalidConfig, c.Port)
	case c.MaxTransactions <= 0 || c.MaxTransactions > 0x10000:
		return fmt.Errorf("%w: max-transactions %d", ErrInvalidConfig, c.MaxTransactions)
	case c.MaxRetries < RetryForever:
		return fmt.Errorf("%w: max-retries %d", ErrInvalidConfig, c.MaxRetries)
	case c.Timeout < 0 || c.RetryInterval < 0:
		return fmt.Errorf("%w: negative duration", ErrInvalidConfig)
	}
	return nil
}

func (c *Config) Address() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}
