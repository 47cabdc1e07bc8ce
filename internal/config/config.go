// Package config loads CLI settings from the environment. A .env file
// in the working directory is honored; flags override everything.
package config

import (
	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Config is the environment-facing configuration surface of the CLI.
type Config struct {
	APIToken     string `env:"VERIMAIL_API_TOKEN"`
	UseAPI       bool   `env:"VERIMAIL_USE_API" env-default:"false"`
	OutputDir    string `env:"VERIMAIL_OUTPUT_DIR" env-default:"output"`
	ReportFormat string `env:"VERIMAIL_REPORT_FORMAT" env-default:"both"`
	HeloDomain   string `env:"VERIMAIL_HELO_DOMAIN" env-default:"localhost"`
	LogLevel     string `env:"VERIMAIL_LOG_LEVEL" env-default:"info"`
}

// Load reads the environment into a Config. A missing .env file is
// not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
