package config

import (
	"os"

	"gopkg.in/yaml.v3"

	"surplusmarket_api/config/values"
)

// RemoteStoreConfig points the REST adapters at the backend-as-a-service
// that owns auth, the listings table and the image bucket.
type RemoteStoreConfig struct {
	BaseURL   string `yaml:"base_url"`
	APIKey    string `yaml:"api_key"`
	JWTSecret string `yaml:"jwt_secret"`
	Bucket    string `yaml:"bucket"`
	// TimeoutSeconds bounds a single HTTP request. Zero means the 30s default.
	TimeoutSeconds int `yaml:"timeout_seconds"`
	// RatePerMinute throttles outgoing store calls. Zero disables throttling.
	RatePerMinute int `yaml:"rate_per_minute"`
	RateBurst     int `yaml:"rate_burst"`
}

type ServerConfig struct {
	Addr string `yaml:"addr"`
}

type AppConfig struct {
	Server   ServerConfig        `yaml:"server"`
	Store    RemoteStoreConfig   `yaml:"store"`
	Postgres PostgresConfig      `yaml:"postgres"`
	Market   values.MarketValues `yaml:"market"`
}

func LoadConfig(filename string) (*AppConfig, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	decoder := yaml.NewDecoder(file)
	config := &AppConfig{}
	if err := decoder.Decode(config); err != nil {
		return nil, err
	}
	config.Market.ApplyDefaults()
	config.Merge()
	return config, nil
}

// DefaultConfig is the configuration used when no yaml file is given:
// everything from the environment, market defaults baked in.
func DefaultConfig() *AppConfig {
	config := &AppConfig{
		Server:   ServerConfig{Addr: getEnv("SERVER_ADDR", ":8080")},
		Store:    *GetStoreConfig(),
		Postgres: *GetPostgresConfig(),
	}
	config.Market.ApplyDefaults()
	return config
}

// Merge fills fields the yaml left empty from the environment.
func (c *AppConfig) Merge() {
	env := GetStoreConfig()
	if c.Store.BaseURL == "" {
		c.Store.BaseURL = env.BaseURL
	}
	if c.Store.APIKey == "" {
		c.Store.APIKey = env.APIKey
	}
	if c.Store.JWTSecret == "" {
		c.Store.JWTSecret = env.JWTSecret
	}
	if c.Store.Bucket == "" {
		c.Store.Bucket = env.Bucket
	}
	if c.Server.Addr == "" {
		c.Server.Addr = getEnv("SERVER_ADDR", ":8080")
	}
	pg := GetPostgresConfig()
	if c.Postgres.Host == "" {
		c.Postgres = *pg
	}
}
