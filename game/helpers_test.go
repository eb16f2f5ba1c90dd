package game

import (
	"fmt"
	"path/filepath"
	"testing"

	"planetwars/config"
	"planetwars/store"
)

func testConfig() config.Game {
	return config.Game{
		InventionCost:     500,
		CreateCost:        150,
		DevelopmentBoost:  20,
		DevelopmentCost:   150,
		ShieldCost:        300,
		EcoBoostRate:      20,
		IncomeCoefficient: 3,
	}
}

func newTestStore(t *testing.T) *store.SQLiteStore {
	t.Helper()
	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// newTestGame creates a game with the given number of planets (two cities
// each), claims every planet for a fresh commander, and starts the first
// round.
func newTestGame(t *testing.T, st *store.SQLiteStore, planetCount int) (int64, []*store.Planet) {
	t.Helper()

	seeds := make([]store.PlanetSeed, planetCount)
	for i := range seeds {
		name := fmt.Sprintf("Planet %d", i+1)
		seeds[i] = store.PlanetSeed{
			Name:   name,
			Cities: []string{name + " Prime", name + " Minor"},
		}
	}
	gameID, err := st.CreateGame(95, seeds)
	if err != nil {
		t.Fatalf("failed to create game: %v", err)
	}

	planets, err := st.PlanetsOfGame(gameID)
	if err != nil {
		t.Fatalf("failed to list planets: %v", err)
	}
	for i, planet := range planets {
		commanderID, err := st.CreateCommander(fmt.Sprintf("cmdr_%d_%d", gameID, i), "hash")
		if err != nil {
			t.Fatalf("failed to create commander: %v", err)
		}
		if err := st.SetPlanetOwner(planet.ID, &commanderID); err != nil {
			t.Fatalf("failed to claim planet: %v", err)
		}
	}

	engine := NewEngine(st, testConfig())
	reason, err := engine.StartNewRound(gameID)
	if err != nil {
		t.Fatalf("failed to start round: %v", err)
	}
	if reason != Success {
		t.Fatalf("expected round to start, got %s", reason)
	}

	planets, err = st.PlanetsOfGame(gameID)
	if err != nil {
		t.Fatalf("failed to reload planets: %v", err)
	}
	return gameID, planets
}

func planetCities(t *testing.T, st *store.SQLiteStore, planetID int64) []*store.City {
	t.Helper()
	cities, err := st.CitiesOfPlanet(planetID)
	if err != nil {
		t.Fatalf("failed to list cities: %v", err)
	}
	if len(cities) == 0 {
		t.Fatalf("planet %d has no cities", planetID)
	}
	return cities
}

func reloadPlanet(t *testing.T, st *store.SQLiteStore, planetID int64) *store.Planet {
	t.Helper()
	planet, err := st.GetPlanet(planetID)
	if err != nil {
		t.Fatalf("failed to get planet: %v", err)
	}
	if planet == nil {
		t.Fatalf("planet %d not found", planetID)
	}
	return planet
}

func mustPlace(t *testing.T, ledger *Ledger, planetID int64, kind OrderKind, argument int64) {
	t.Helper()
	reason, err := ledger.PlaceOrder(planetID, kind, argument)
	if err != nil {
		t.Fatalf("failed to place %s order: %v", kind, err)
	}
	if reason != Success {
		t.Fatalf("expected %s order to succeed, got %s", kind, reason)
	}
}

func currentRound(t *testing.T, st *store.SQLiteStore, gameID int64) int64 {
	t.Helper()
	game, err := st.GetGame(gameID)
	if err != nil {
		t.Fatalf("failed to get game: %v", err)
	}
	if game == nil || game.Round == nil {
		t.Fatalf("game %d has no current round", gameID)
	}
	return *game.Round
}
