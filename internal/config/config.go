// Package config loads the rpi-eeprom-ab configuration file.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/moffa90/go-eepromab/eepromab"
	"github.com/moffa90/go-eepromab/internal/log"
	"github.com/moffa90/go-eepromab/mailbox"
	"github.com/moffa90/go-eepromab/protocol"
)

type Config struct {
	// Device is the mailbox character device.
	Device string `yaml:"device"`

	// PacketSize is the payload per packet exchange in bytes.
	PacketSize int `yaml:"packet_size"`

	Poll PollConfig `yaml:"poll"`

	Log *log.Options `yaml:"log"`
}

// ---- POLL ----

type PollConfig struct {
	Attempts int           `yaml:"attempts"`
	Interval time.Duration `yaml:"interval"`
}

// Default returns the configuration used when no file is given.
func Default() *Config {
	return &Config{
		Device:     mailbox.DefaultDevicePath,
		PacketSize: protocol.MaxPacketSize,
		Poll: PollConfig{
			Attempts: eepromab.DefaultPollAttempts,
			Interval: eepromab.DefaultPollInterval,
		},
		Log: log.NewOptions(),
	}
}

// Load reads the YAML file at path over the defaults.
// An empty path returns Default().
func Load(path string) (*Config, error) {
	if path == "" {
		return Default(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML data over the defaults. Unknown keys are rejected.
func Parse(data []byte) (*Config, error) {
	cfg := Default()

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if cfg.Log == nil {
		cfg.Log = log.NewOptions()
	}
	return cfg, nil
}

// ClientOptions returns the eepromab options matching cfg.
func (c *Config) ClientOptions() []eepromab.Option {
	return []eepromab.Option{
		eepromab.WithPacketSize(c.PacketSize),
		eepromab.WithPollAttempts(c.Poll.Attempts),
		eepromab.WithPollInterval(c.Poll.Interval),
	}
}
