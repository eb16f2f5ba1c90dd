package game

import (
	"encoding/json"
	"fmt"
	"log"
	"sort"

	"planetwars/config"
	"planetwars/store"
)

// Engine drives the game state machine and resolves a whole round's orders
// at once. Settlement is all-or-nothing: every effect of a round commits in
// one transaction, and the status flip away from Round happens inside that
// same transaction so late ledger calls fail fast.
type Engine struct {
	store store.Store
	cfg   config.Game
}

func NewEngine(st store.Store, cfg config.Game) *Engine {
	return &Engine{store: st, cfg: cfg}
}

// EndCurrentRound resolves all orders queued for the game's current round
// and moves the game to Meeting. The returned summary is also persisted as
// the round's report.
func (e *Engine) EndCurrentRound(gameID int64) (*Summary, FailureReason, error) {
	var summary *Summary
	reason := Success

	err := e.store.InGameTx(gameID, func(tx store.Tx) error {
		game, err := tx.GetGame(gameID)
		if err != nil {
			return err
		}
		if game == nil {
			reason = ObjectNotFound
			return nil
		}
		if game.Status != StatusRound {
			reason = RoundIsNotGoing
			return nil
		}
		round := *game.Round

		orders, err := tx.OrdersForRound(gameID, round)
		if err != nil {
			return err
		}

		var (
			createByPlanet = map[int64]int{}
			developSet     = map[int64]bool{}
			shieldSet      = map[int64]bool{}
			inventPlanets  []int64
			attackOrders   []*store.Order
			sanctions      []store.Sanction
			sanctionFrom   []int64
			ecoBoosts      int
		)
		for _, o := range orders {
			switch OrderKind(o.Action) {
			case OrderCreate:
				createByPlanet[o.PlanetID] += int(o.Argument)
			case OrderDevelop:
				developSet[o.Argument] = true
			case OrderShield:
				shieldSet[o.Argument] = true
			case OrderInvent:
				inventPlanets = append(inventPlanets, o.PlanetID)
			case OrderAttack:
				attackOrders = append(attackOrders, o)
			case OrderSanctions:
				sanctions = append(sanctions, store.Sanction{PlanetFrom: o.PlanetID, PlanetTo: o.Argument})
				sanctionFrom = append(sanctionFrom, o.PlanetID)
			case OrderEco:
				ecoBoosts++
			default:
				return fmt.Errorf("order with unknown action %q", o.Action)
			}
		}
		developCities := sortedKeys(developSet)
		shieldCities := sortedKeys(shieldSet)

		// Meteorite purchases materialize; the currency was already taken at
		// order time.
		meteoritesMade := 0
		for planetID, n := range createByPlanet {
			if err := tx.AddMeteorites(planetID, n); err != nil {
				return err
			}
			meteoritesMade += n
		}

		if err := tx.DevelopCities(developCities, e.cfg.DevelopmentBoost); err != nil {
			return err
		}
		if err := tx.ShieldCities(shieldCities); err != nil {
			return err
		}
		if err := tx.InventPlanets(inventPlanets); err != nil {
			return err
		}

		destroyed, consumedShields, err := e.resolveAttacks(tx, attackOrders)
		if err != nil {
			return err
		}

		// A planet's sanctions from the previous round are replaced, never
		// stacked.
		if err := tx.DeleteSanctionsFrom(sanctionFrom); err != nil {
			return err
		}
		if err := tx.InsertSanctions(sanctions); err != nil {
			return err
		}

		ecorate := game.Ecorate
		if ecoBoosts > 0 {
			ecorate = game.Ecorate + ecoBoosts*e.cfg.EcoBoostRate
			if ecorate > 100 {
				ecorate = 100
			}
			if err := tx.SetGameEcorate(gameID, ecorate); err != nil {
				return err
			}
		}

		if err := tx.SetGameStatus(gameID, StatusMeeting); err != nil {
			return err
		}

		summary = &Summary{
			GameID:          gameID,
			Round:           round,
			Ecorate:         ecorate,
			DestroyedCities: destroyed,
			ConsumedShields: consumedShields,
			InventedPlanets: inventPlanets,
			DevelopedCities: developCities,
			ShieldedCities:  shieldCities,
			Sanctions:       toSanctionViews(sanctions),
			MeteoritesMade:  meteoritesMade,
			EcoBoosts:       ecoBoosts,
		}
		raw, err := json.Marshal(summary)
		if err != nil {
			return fmt.Errorf("failed to encode round summary: %w", err)
		}
		return tx.SaveRoundReport(gameID, round, string(raw))
	})
	if err != nil {
		return nil, "", err
	}
	if reason != Success {
		return nil, reason, nil
	}

	log.Printf("game %d: round %d settled, %d cities destroyed, ecorate %d",
		gameID, summary.Round, len(summary.DestroyedCities), summary.Ecorate)
	return summary, Success, nil
}

// resolveAttacks applies the double-attack rule. Each attack order is a
// distinct attacking planet (the ledger keys orders by attacker and target),
// so the attacker count per city is just the order count. One attacker:
// a shield absorbs the hit and drops, an unshielded city dies. Two or more
// attackers: the city dies no matter what, shield cleared.
func (e *Engine) resolveAttacks(tx store.Tx, attacks []*store.Order) (destroyed, consumedShields []int64, err error) {
	attackers := map[int64]int{}
	for _, o := range attacks {
		attackers[o.Argument]++
	}

	var once, multi []int64
	for cityID, n := range attackers {
		if n == 1 {
			once = append(once, cityID)
		} else {
			multi = append(multi, cityID)
		}
	}

	// Shield state must be read after this round's shield orders applied:
	// a shield built the same round still defends.
	cities, err := tx.CitiesByID(once)
	if err != nil {
		return nil, nil, err
	}
	for _, city := range cities {
		if city.IsShielded {
			consumedShields = append(consumedShields, city.ID)
		} else {
			destroyed = append(destroyed, city.ID)
		}
	}
	destroyed = append(destroyed, multi...)
	sort.Slice(destroyed, func(i, j int) bool { return destroyed[i] < destroyed[j] })

	if err := tx.DestroyCities(destroyed); err != nil {
		return nil, nil, err
	}
	if err := tx.UnshieldCities(consumedShields); err != nil {
		return nil, nil, err
	}
	return destroyed, consumedShields, nil
}

// StartNewRound transitions Waiting or Meeting into Round. The first round
// requires every planet to be claimed and pays no income; later rounds pay
// each planet its income from one consistent snapshot of ecorate, cities
// and sanctions, then clear the consumed sanctions.
func (e *Engine) StartNewRound(gameID int64) (FailureReason, error) {
	reason := Success

	err := e.store.InGameTx(gameID, func(tx store.Tx) error {
		game, err := tx.GetGame(gameID)
		if err != nil {
			return err
		}
		if game == nil {
			reason = ObjectNotFound
			return nil
		}
		if game.Status != StatusWaiting && game.Status != StatusMeeting {
			reason = CannotStartRound
			return nil
		}

		planets, err := tx.PlanetsOfGame(gameID)
		if err != nil {
			return err
		}

		if game.Status == StatusWaiting {
			for _, planet := range planets {
				if planet.OwnerID == nil {
					reason = NotEnoughPlayers
					return nil
				}
			}
		}

		if game.Status == StatusMeeting {
			for _, planet := range planets {
				cities, err := tx.CitiesOfPlanet(planet.ID)
				if err != nil {
					return err
				}
				sanctions, err := tx.SanctionsAgainst(planet.ID)
				if err != nil {
					return err
				}
				developments := make([]int, len(cities))
				for i, city := range cities {
					developments[i] = city.Development
				}
				income := PlanetIncome(developments, game.Ecorate, len(planets),
					len(sanctions), e.cfg.IncomeCoefficient)
				if err := tx.AddBalance(planet.ID, income); err != nil {
					return err
				}
			}
			// Sanctions are one-round penalties; they are spent now.
			if err := tx.DeleteSanctionsOfGame(gameID); err != nil {
				return err
			}
		}

		if err := tx.IncrementRound(gameID); err != nil {
			return err
		}
		return tx.SetGameStatus(gameID, StatusRound)
	})
	if err != nil {
		return "", err
	}
	return reason, nil
}

// EndGame marks the game Ended. Terminal: no further rounds or orders.
func (e *Engine) EndGame(gameID int64) (FailureReason, error) {
	reason := Success
	err := e.store.InGameTx(gameID, func(tx store.Tx) error {
		game, err := tx.GetGame(gameID)
		if err != nil {
			return err
		}
		if game == nil {
			reason = ObjectNotFound
			return nil
		}
		if game.Status == StatusEnded {
			reason = GameEnded
			return nil
		}
		return tx.SetGameStatus(gameID, StatusEnded)
	})
	if err != nil {
		return "", err
	}
	return reason, nil
}

func sortedKeys(set map[int64]bool) []int64 {
	keys := make([]int64, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

func toSanctionViews(sanctions []store.Sanction) []Sanction {
	views := make([]Sanction, len(sanctions))
	for i, s := range sanctions {
		views[i] = Sanction{PlanetFrom: s.PlanetFrom, PlanetTo: s.PlanetTo}
	}
	return views
}
