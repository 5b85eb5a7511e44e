package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const DefaultServer = "http://localhost:8080"

// Client is the end-user CLI configuration, ~/.domaincli by default.
type Client struct {
	Server string `yaml:"server"`
	UserID string `yaml:"user_id,omitempty"`
}

func DefaultClientPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".domaincli"
	}
	return filepath.Join(home, ".domaincli")
}

// LoadClient reads path. A missing file yields defaults.
func LoadClient(path string) (Client, error) {
	cfg := Client{Server: DefaultServer}
	b, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, fmt.Errorf("read %s: %w", path, err)
	}
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return cfg, fmt.Errorf("decode %s: %w", path, err)
	}
	if cfg.Server == "" {
		cfg.Server = DefaultServer
	}
	return cfg, nil
}

// SaveClient writes cfg to path with owner-only permissions.
func SaveClient(path string, cfg Client) error {
	b, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, b, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
