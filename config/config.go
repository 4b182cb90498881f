package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
)

const (
	StoreDriverSQLite = "sqlite"
	StoreDriverMemory = "memory"

	TransportGorilla = "gorilla"
	TransportNhooyr  = "nhooyr"
)

type Config struct {
	RoomAddresses  []string      `env:"ROOM_ADDRESSES" envSeparator:","`
	LogLevel       string        `env:"LOG_LEVEL" envDefault:"info"`
	StoreDriver    string        `env:"STORE_DRIVER" envDefault:"sqlite"`
	StorePath      string        `env:"STORE_PATH" envDefault:"data/live.db"`
	Transport      string        `env:"TRANSPORT" envDefault:"gorilla"`
	ReconnectDelay time.Duration `env:"RECONNECT_DELAY" envDefault:"5s"`
	WriteTimeout   time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	MetricsAddr    string        `env:"METRICS_ADDR"`
}

// NewConfig 从环境变量读取配置
func NewConfig() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}

	// 去掉空白地址
	addrs := cfg.RoomAddresses[:0]
	for _, addr := range cfg.RoomAddresses {
		if addr = strings.TrimSpace(addr); addr != "" {
			addrs = append(addrs, addr)
		}
	}
	cfg.RoomAddresses = addrs

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate 检查取值范围
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case StoreDriverSQLite, StoreDriverMemory:
	default:
		return fmt.Errorf("unknown store driver %q", c.StoreDriver)
	}
	switch c.Transport {
	case TransportGorilla, TransportNhooyr:
	default:
		return fmt.Errorf("unknown transport %q", c.Transport)
	}
	if c.ReconnectDelay <= 0 {
		return fmt.Errorf("reconnect delay must be positive, got %s", c.ReconnectDelay)
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("write timeout must be positive, got %s", c.WriteTimeout)
	}
	return nil
}
