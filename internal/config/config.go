package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
)

// Load reads configuration from environment variables and .env file.
// Missing required variables are fatal.
func Load() Config {
	err := godotenv.Load()
	if err != nil {
		log.Info("No .env file found, reading from environment variables")
	}

	cfg, err := env.ParseAs[Config]()
	if err != nil {
		log.Fatal("Invalid configuration", "error", err)
	}
	return cfg
}

// LoadFrom parses configuration from the given variables only.
func LoadFrom(environment map[string]string) (Config, error) {
	var cfg Config
	err := env.ParseWithOptions(&cfg, env.Options{Environment: environment})
	return cfg, err
}
