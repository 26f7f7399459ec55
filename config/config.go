package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"facet-search-service/models"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Environment variables overriding the engine connection.
const (
	EnvAddresses = "FACETSEARCH_ES_ADDRESSES"
	EnvUsername  = "FACETSEARCH_ES_USERNAME"
	EnvPassword  = "FACETSEARCH_ES_PASSWORD"
)

type Config struct {
	Listen        string              `yaml:"listen" validate:"required"`
	Elasticsearch ElasticsearchConfig `yaml:"elasticsearch"`
	// Collections lists schema files. The embedded text schema is used when empty.
	Collections []string    `yaml:"collections" validate:"dive,required"`
	Watch       bool        `yaml:"watch"`
	Cache       CacheConfig `yaml:"cache"`
	Log         LogConfig   `yaml:"log"`
}

type ElasticsearchConfig struct {
	Addresses          []string `yaml:"addresses" validate:"required,min=1,dive,url"`
	Username           string   `yaml:"username"`
	Password           string   `yaml:"password"`
	InsecureSkipVerify bool     `yaml:"insecureSkipVerify"`
	IndexPrefix        string   `yaml:"indexPrefix"`
	// ValidateMappings checks nested paths of every schema against the live index on startup.
	ValidateMappings bool `yaml:"validateMappings"`
}

// CacheConfig sizes the aggregation response cache. Size 0 disables it.
type CacheConfig struct {
	Size int           `yaml:"size" validate:"gte=0"`
	TTL  time.Duration `yaml:"ttl" validate:"gte=0"`
}

type LogConfig struct {
	Level       string `yaml:"level" validate:"oneof=debug info warn error"`
	Development bool   `yaml:"development"`
}

func Default() Config {
	return Config{
		Listen: ":1234",
		Elasticsearch: ElasticsearchConfig{
			Addresses: []string{"https://localhost:9200"},
			Username:  "elastic",
		},
		Cache: CacheConfig{
			Size: 256,
			TTL:  time.Minute,
		},
		Log: LogConfig{Level: "info"},
	}
}

// Load reads the service config at path on top of the defaults. An empty
// path only applies defaults and environment overrides.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("reading config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %v: %w", path, err, models.ErrConfiguration)
		}
	}
	applyEnv(&cfg)

	if err := Validate(cfg); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config) {
	if v := os.Getenv(EnvAddresses); v != "" {
		var addresses []string
		for _, a := range strings.Split(v, ",") {
			if a = strings.TrimSpace(a); a != "" {
				addresses = append(addresses, a)
			}
		}
		cfg.Elasticsearch.Addresses = addresses
	}
	if v := os.Getenv(EnvUsername); v != "" {
		cfg.Elasticsearch.Username = v
	}
	if v := os.Getenv(EnvPassword); v != "" {
		cfg.Elasticsearch.Password = v
	}
}

func Validate(cfg Config) error {
	if err := validator.New().Struct(cfg); err != nil {
		return fmt.Errorf("invalid config: %v: %w", err, models.ErrConfiguration)
	}
	return nil
}
