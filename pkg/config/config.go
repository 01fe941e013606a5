// Package config loads the small set of environment-tunable knobs this
// CLI exposes: everything else (input file) comes from argv per the CLI
// contract.
package config

import (
	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config represents the application configuration.
type Config struct {
	App    AppConfig    `envPrefix:"APP_"`
	Venue  VenueConfig  `envPrefix:"VENUE_"`
	Output OutputConfig `envPrefix:"OUTPUT_"`
}

// AppConfig controls process-wide behavior.
type AppConfig struct {
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
}

// VenueConfig carries the per-venue constants stamped onto every emitted
// snapshot row. Defaults match the fixed conventions in the output schema;
// override when replaying a feed from a different publisher/instrument.
type VenueConfig struct {
	PublisherID  uint16 `env:"PUBLISHER_ID" envDefault:"2"`
	InstrumentID uint32 `env:"INSTRUMENT_ID" envDefault:"1108"`
	Symbol       string `env:"SYMBOL" envDefault:"ARL"`
}

// OutputConfig controls where results are written.
type OutputConfig struct {
	Path string `env:"PATH" envDefault:"output.csv"`
}

// Load loads configuration from the environment, applying a .env file
// first if one is present in the working directory.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}
