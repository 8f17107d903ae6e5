package config

import (
	"os"
)

// GetPostgresConfig reads the direct-store connection from the environment.
func GetPostgresConfig() *PostgresConfig {
	return &PostgresConfig{
		Host:     getEnv("POSTGRES_HOST", "localhost"),
		Port:     getEnv("POSTGRES_PORT", "5432"),
		User:     getEnv("POSTGRES_USER", "postgres"),
		Password: getEnv("POSTGRES_PASSWORD", "postgres"),
		DBName:   getEnv("POSTGRES_NAME", "postgres"),
	}
}

// GetStoreConfig reads the remote store connection from the environment.
// Yaml values win when both are present; see AppConfig.Merge.
func GetStoreConfig() *RemoteStoreConfig {
	return &RemoteStoreConfig{
		BaseURL:   getEnv("STORE_URL", ""),
		APIKey:    getEnv("STORE_API_KEY", ""),
		JWTSecret: getEnv("STORE_JWT_SECRET", ""),
		Bucket:    getEnv("STORE_BUCKET", "listing-images"),
	}
}

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}
