// Package config loads the server and client configuration files.
//
// Server configuration is read from the first existing file on the search
// path, then overridden by DOMAINCLI_* environment variables, then
// defaulted and validated.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
	"gopkg.in/yaml.v3"

	"github.com/benithors/domaincli/internal/fault"
)

const (
	EnvConfigPath = "DOMAINCLI_SERVER_CONFIG"
	envPrefix     = "DOMAINCLI_"
)

type Config struct {
	Env string    `yaml:"env" env:"ENV"`
	Log LogConfig `yaml:"log" envPrefix:"LOG_"`

	Server    ServerConfig    `yaml:"server" envPrefix:"SERVER_"`
	Registrar RegistrarConfig `yaml:"registrar" envPrefix:"REGISTRAR_"`
	Payment   PaymentConfig   `yaml:"payment" envPrefix:"PAYMENT_"`
	Mongo     MongoConfig     `yaml:"mongo" envPrefix:"MONGO_"`
	Redis     RedisConfig     `yaml:"redis" envPrefix:"REDIS_"`
	Purchase  PurchaseConfig  `yaml:"purchase" envPrefix:"PURCHASE_"`
}

type LogConfig struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

type ServerConfig struct {
	Listen          string        `yaml:"listen" env:"LISTEN"`
	ReadTimeout     time.Duration `yaml:"read_timeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT"`
	// AdminToken guards price_list. Empty disables the route.
	AdminToken string `yaml:"admin_token" env:"ADMIN_TOKEN"`
}

type RegistrarConfig struct {
	BaseURL       string        `yaml:"base_url" env:"BASE_URL"`
	APIKey        string        `yaml:"api_key" env:"API_KEY"`
	Password      string        `yaml:"password" env:"PASSWORD"`
	Timeout       time.Duration `yaml:"timeout" env:"TIMEOUT"`
	MinDelay      time.Duration `yaml:"min_delay" env:"MIN_DELAY"`
	MaxConcurrent int           `yaml:"max_concurrent" env:"MAX_CONCURRENT"`
	// Currency the registrar must bill in.
	Currency string `yaml:"currency" env:"CURRENCY"`
}

type PaymentConfig struct {
	SecretKey string `yaml:"secret_key" env:"SECRET_KEY"`
	BaseURL   string `yaml:"base_url" env:"BASE_URL"`
	// Amount per registration year, in the currency's minor unit.
	Amount   int64  `yaml:"amount" env:"AMOUNT"`
	Currency string `yaml:"currency" env:"CURRENCY"`
}

type MongoConfig struct {
	// URI empty selects the in-process store.
	URI        string `yaml:"uri" env:"URI"`
	Database   string `yaml:"database" env:"DATABASE"`
	Collection string `yaml:"collection" env:"COLLECTION"`
}

type RedisConfig struct {
	// URL empty selects the in-process purchase lock.
	URL    string `yaml:"url" env:"URL"`
	Prefix string `yaml:"prefix" env:"PREFIX"`
}

type PurchaseConfig struct {
	LockTTL      time.Duration `yaml:"lock_ttl" env:"LOCK_TTL"`
	SupportEmail string        `yaml:"support_email" env:"SUPPORT_EMAIL"`
}

// SearchPath lists the candidate config files in priority order. explicit
// comes first when set.
func SearchPath(explicit string) []string {
	var out []string
	if explicit != "" {
		out = append(out, explicit)
	}
	if p := os.Getenv(EnvConfigPath); p != "" {
		out = append(out, p)
	}
	if home, err := os.UserHomeDir(); err == nil {
		out = append(out, filepath.Join(home, ".domaincli-server"))
	}
	return append(out, "conf.yaml")
}

// Load reads the first existing file from SearchPath(explicit), applies
// environment overrides and defaults, and validates the result.
func Load(explicit string) (*Config, error) {
	search := SearchPath(explicit)
	for _, path := range search {
		b, err := os.ReadFile(path)
		if errors.Is(err, os.ErrNotExist) {
			if path == explicit {
				return nil, fault.Wrap(err, fault.OurFault, "config file %s does not exist", path)
			}
			continue
		}
		if err != nil {
			return nil, fault.Wrap(err, fault.OurFault, "read config %s", path)
		}
		return Parse(b)
	}
	return nil, fault.New(fault.OurFault, "Could not find config file amongst search path of %q", search)
}

// Parse decodes YAML, then applies environment overrides and defaults.
func Parse(b []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fault.Wrap(err, fault.OurFault, "decode config")
	}
	if err := env.ParseWithOptions(&cfg, env.Options{Prefix: envPrefix}); err != nil {
		return nil, fault.Wrap(err, fault.OurFault, "config environment overrides")
	}
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Env == "" {
		c.Env = "local"
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Server.Listen == "" {
		c.Server.Listen = ":8080"
	}
	if c.Server.ReadTimeout <= 0 {
		c.Server.ReadTimeout = 10 * time.Second
	}
	if c.Server.WriteTimeout <= 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout <= 0 {
		c.Server.ShutdownTimeout = 15 * time.Second
	}
	if c.Registrar.Currency == "" {
		c.Registrar.Currency = "USD"
	}
	if c.Payment.Amount == 0 {
		c.Payment.Amount = 1200
	}
	if c.Payment.Currency == "" {
		c.Payment.Currency = "usd"
	}
	if c.Mongo.Database == "" {
		c.Mongo.Database = "domaincli"
	}
	if c.Mongo.Collection == "" {
		c.Mongo.Collection = "accounts"
	}
	if c.Purchase.LockTTL <= 0 {
		c.Purchase.LockTTL = 2 * time.Minute
	}
	if c.Purchase.SupportEmail == "" {
		c.Purchase.SupportEmail = "support@domaincli.com"
	}
}

// Validate reports every missing or inconsistent setting at once.
func (c *Config) Validate() error {
	var problems []string
	if strings.TrimSpace(c.Registrar.APIKey) == "" {
		problems = append(problems, "registrar.api_key is required")
	}
	if strings.TrimSpace(c.Registrar.Password) == "" {
		problems = append(problems, "registrar.password is required")
	}
	if strings.TrimSpace(c.Payment.SecretKey) == "" {
		problems = append(problems, "payment.secret_key is required")
	}
	if c.Payment.Amount < 0 {
		problems = append(problems, "payment.amount must be positive")
	}
	if c.Registrar.MaxConcurrent < 0 {
		problems = append(problems, "registrar.max_concurrent must not be negative")
	}
	if c.Env != "local" && c.Mongo.URI == "" {
		problems = append(problems, "mongo.uri is required outside the local env")
	}
	if len(problems) > 0 {
		return fault.New(fault.OurFault, "invalid config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// Redacted returns a copy safe to log.
func (c Config) Redacted() Config {
	c.Registrar.APIKey = mask(c.Registrar.APIKey)
	c.Registrar.Password = mask(c.Registrar.Password)
	c.Payment.SecretKey = mask(c.Payment.SecretKey)
	c.Server.AdminToken = mask(c.Server.AdminToken)
	c.Mongo.URI = maskURL(c.Mongo.URI)
	c.Redis.URL = maskURL(c.Redis.URL)
	return c
}

func mask(s string) string {
	if s == "" {
		return ""
	}
	return "***"
}

// maskURL hides userinfo in connection strings.
func maskURL(s string) string {
	scheme, rest, ok := strings.Cut(s, "://")
	if !ok {
		return s
	}
	at := strings.LastIndex(rest, "@")
	if at < 0 {
		return s
	}
	return fmt.Sprintf("%s://***@%s", scheme, rest[at+1:])
}
