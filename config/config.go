package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

// Config holds process-level settings, parsed from the environment.
type Config struct {
	ServerPort string `env:"SERVER_PORT" envDefault:":8080"`
	DBPath     string `env:"DB_PATH" envDefault:"./planetwars.db"`
	PackPath   string `env:"PACK_PATH" envDefault:"./packs.yaml"`

	Game Game `envPrefix:"GAME_"`
}

// Game holds the tunable economy constants. The defaults are the reference
// values the game was balanced around; operators can override any of them.
type Game struct {
	RoundLength       time.Duration `env:"ROUND_LENGTH" envDefault:"10m"`
	InventionCost     int           `env:"INVENTION_COST" envDefault:"500"`
	CreateCost        int           `env:"CREATE_COST" envDefault:"150"`
	DevelopmentBoost  int           `env:"DEVELOPMENT_BOOST" envDefault:"20"`
	DevelopmentCost   int           `env:"DEVELOPMENT_COST" envDefault:"150"`
	ShieldCost        int           `env:"SHIELD_COST" envDefault:"300"`
	EcoBoostRate      int           `env:"ECO_BOOST_RATE" envDefault:"20"`
	IncomeCoefficient float64       `env:"INCOME_COEFFICIENT" envDefault:"3"`
}

// Load parses the configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
