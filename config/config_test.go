package config

import (
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ServerPort != ":8080" {
		t.Errorf("expected default port :8080, got %q", cfg.ServerPort)
	}
	if cfg.Game.RoundLength != 10*time.Minute {
		t.Errorf("expected default round length 10m, got %v", cfg.Game.RoundLength)
	}
	if cfg.Game.InventionCost != 500 {
		t.Errorf("expected default invention cost 500, got %d", cfg.Game.InventionCost)
	}
	if cfg.Game.ShieldCost != 300 {
		t.Errorf("expected default shield cost 300, got %d", cfg.Game.ShieldCost)
	}
	if cfg.Game.IncomeCoefficient != 3 {
		t.Errorf("expected default income coefficient 3, got %v", cfg.Game.IncomeCoefficient)
	}
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("SERVER_PORT", ":9090")
	t.Setenv("GAME_ROUND_LENGTH", "30s")
	t.Setenv("GAME_ECO_BOOST_RATE", "10")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}

	if cfg.ServerPort != ":9090" {
		t.Errorf("expected port :9090, got %q", cfg.ServerPort)
	}
	if cfg.Game.RoundLength != 30*time.Second {
		t.Errorf("expected round length 30s, got %v", cfg.Game.RoundLength)
	}
	if cfg.Game.EcoBoostRate != 10 {
		t.Errorf("expected eco boost rate 10, got %d", cfg.Game.EcoBoostRate)
	}
}
