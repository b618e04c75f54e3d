// Package config handles configuration loading for the EBICS client.
//
// Configuration is loaded from a YAML file with support for environment
// variable expansion (${VAR} or $VAR syntax). This allows sensitive values
// like the key ring passphrase to be injected at runtime.
//
// # Example Configuration
//
//	bank:
//	  hostId: EBIXQUAL
//	  url: https://ebics.qual.bank.example/ebicsweb
//
//	user:
//	  partnerId: PARTNER1
//	  userId: USER1
//
//	keyring:
//	  path: /var/lib/go-ebics/keyring.json
//	  passphrase: ${EBICS_KEYRING_PASSPHRASE}
//
//	transport:
//	  timeout: 30s
//
// See [Load] for loading configuration from a file.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the root configuration structure
type Config struct {
	Bank      BankConfig      `yaml:"bank"`
	User      UserConfig      `yaml:"user"`
	Keyring   KeyringConfig   `yaml:"keyring"`
	Transport TransportConfig `yaml:"transport"`
}

// BankConfig identifies the bank server
type BankConfig struct {
	HostID string `yaml:"hostId"`
	URL    string `yaml:"url"`
}

// UserConfig identifies the corporate user
type UserConfig struct {
	PartnerID string `yaml:"partnerId"`
	UserID    string `yaml:"userId"`
}

// KeyringConfig holds key ring file settings
type KeyringConfig struct {
	Path string `yaml:"path"`
	// Passphrase protects private keys at rest
	// (use an env var reference like ${EBICS_KEYRING_PASSPHRASE})
	Passphrase string `yaml:"passphrase"`
}

// TransportConfig holds HTTP transport settings
type TransportConfig struct {
	Timeout time.Duration `yaml:"timeout"`
}

// Load reads configuration from a YAML file
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Expand environment variables
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyDefaults()

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Keyring.Path == "" {
		c.Keyring.Path = "keyring.json"
	}
	if c.Transport.Timeout == 0 {
		c.Transport.Timeout = 30 * time.Second
	}
}

func (c *Config) validate() error {
	if c.Bank.HostID == "" {
		return fmt.Errorf("bank.hostId is required")
	}
	if c.Bank.URL == "" {
		return fmt.Errorf("bank.url is required")
	}
	if c.User.PartnerID == "" {
		return fmt.Errorf("user.partnerId is required")
	}
	if c.User.UserID == "" {
		return fmt.Errorf("user.userId is required")
	}
	if c.Keyring.Passphrase == "" {
		return fmt.Errorf("keyring.passphrase is required")
	}
	return nil
}
