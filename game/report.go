package game

import (
	"encoding/json"
	"fmt"

	"planetwars/config"
	"planetwars/store"
)

// Reports is the read model for the bot/report layer: a full picture of a
// game without re-deriving any settlement logic.
type Reports struct {
	store store.Store
	cfg   config.Game
}

func NewReports(st store.Store, cfg config.Game) *Reports {
	return &Reports{store: st, cfg: cfg}
}

type GameReport struct {
	GameID    int64           `json:"gameId"`
	Status    string          `json:"status"`
	Ecorate   int             `json:"ecorate"`
	Round     *int64          `json:"round"`
	Planets   []*PlanetReport `json:"planets"`
	LastRound *Summary        `json:"lastRound,omitempty"`
}

type PlanetReport struct {
	ID              int64         `json:"id"`
	Name            string        `json:"name"`
	OwnerID         *int64        `json:"ownerId"`
	Balance         int           `json:"balance"`
	Meteorites      int           `json:"meteorites"`
	IsInvented      bool          `json:"isInvented"`
	RateOfLife      float64       `json:"rateOfLife"`
	ProjectedIncome int           `json:"projectedIncome"`
	SanctionedBy    []int64       `json:"sanctionedBy"`
	Cities          []*CityReport `json:"cities"`
	Orders          []*OrderView  `json:"orders"`
}

type CityReport struct {
	ID          int64  `json:"id"`
	Name        string `json:"name"`
	IsShielded  bool   `json:"isShielded"`
	Development int    `json:"development"`
	RateOfLife  int    `json:"rateOfLife"`
}

type OrderView struct {
	Kind     OrderKind `json:"kind"`
	Argument int64     `json:"argument"`
}

// GameReport assembles the full state of a game plus the most recently
// settled round's summary.
func (r *Reports) GameReport(gameID int64) (*GameReport, error) {
	game, err := r.store.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, nil
	}

	planets, err := r.store.PlanetsOfGame(gameID)
	if err != nil {
		return nil, err
	}

	report := &GameReport{
		GameID:  game.ID,
		Status:  game.Status,
		Ecorate: game.Ecorate,
		Round:   game.Round,
	}

	for _, planet := range planets {
		planetReport, err := r.planetReport(game, planet, len(planets))
		if err != nil {
			return nil, err
		}
		report.Planets = append(report.Planets, planetReport)
	}

	summary, err := r.lastSummary(game)
	if err != nil {
		return nil, err
	}
	report.LastRound = summary
	return report, nil
}

func (r *Reports) planetReport(game *store.Game, planet *store.Planet, planetCount int) (*PlanetReport, error) {
	cities, err := r.store.CitiesOfPlanet(planet.ID)
	if err != nil {
		return nil, err
	}
	sanctions, err := r.store.SanctionsAgainst(planet.ID)
	if err != nil {
		return nil, err
	}

	report := &PlanetReport{
		ID:         planet.ID,
		Name:       planet.Name,
		OwnerID:    planet.OwnerID,
		Balance:    planet.Balance,
		Meteorites: planet.Meteorites,
		IsInvented: planet.IsInvented,
	}

	developments := make([]int, len(cities))
	for i, city := range cities {
		developments[i] = city.Development
		report.Cities = append(report.Cities, &CityReport{
			ID:          city.ID,
			Name:        city.Name,
			IsShielded:  city.IsShielded,
			Development: city.Development,
			RateOfLife:  RateOfLife(city.Development, game.Ecorate),
		})
	}
	for _, s := range sanctions {
		report.SanctionedBy = append(report.SanctionedBy, s.PlanetFrom)
	}

	report.RateOfLife = PlanetRateOfLife(developments, game.Ecorate)
	report.ProjectedIncome = PlanetIncome(developments, game.Ecorate, planetCount,
		len(sanctions), r.cfg.IncomeCoefficient)

	if game.Round != nil {
		orders, err := r.store.OrdersOfPlanet(planet.ID, *game.Round)
		if err != nil {
			return nil, err
		}
		for _, o := range orders {
			report.Orders = append(report.Orders, &OrderView{
				Kind:     OrderKind(o.Action),
				Argument: o.Argument,
			})
		}
	}
	return report, nil
}

// lastSummary returns the most recently settled round's summary. During a
// round that is round-1; during the meeting it is the round just ended.
func (r *Reports) lastSummary(game *store.Game) (*Summary, error) {
	if game.Round == nil {
		return nil, nil
	}
	for _, round := range []int64{*game.Round, *game.Round - 1} {
		if round < 1 {
			break
		}
		raw, err := r.store.RoundReport(game.ID, round)
		if err != nil {
			return nil, err
		}
		if raw == "" {
			continue
		}
		var summary Summary
		if err := json.Unmarshal([]byte(raw), &summary); err != nil {
			return nil, fmt.Errorf("failed to decode round report: %w", err)
		}
		return &summary, nil
	}
	return nil, nil
}
