package main

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/NV4RE/gpan"
	"github.com/pkg/errors"
)

// MqttConfig is the broker events are published to.
type MqttConfig struct {
	Host     string `json:"host"`
	Port     int    `json:"port"`
	User     string `json:"user,omitempty"`
	Password string `json:"password,omitempty"`
	Topic    string `json:"topic"`
}

// Config is a radio profile: where the chip is wired and how it is set up.
type Config struct {
	SPIPort string      `json:"spi_port"`
	IRQPin  string      `json:"irq_pin"`
	Radio   gpan.Params `json:"radio"`
	Mqtt    *MqttConfig `json:"mqtt,omitempty"`
}

func DefaultConfig() *Config {
	return &Config{
		SPIPort: "/dev/spidev0.0",
		IRQPin:  "GPIO25",
		Radio:   gpan.DefaultParams(),
	}
}

// LoadConfig reads a profile. Fields missing from the file keep their
// defaults.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrap(err, "read config")
	}
	c := DefaultConfig()
	if err := json.Unmarshal(data, c); err != nil {
		return nil, errors.Wrapf(err, "decode config %s", path)
	}
	return c, nil
}

func SaveConfig(c *Config, path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return errors.Wrap(err, "create config directory")
	}
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode config")
	}
	return errors.Wrap(os.WriteFile(path, data, 0644), "write config")
}
