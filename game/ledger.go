package game

import (
	"fmt"

	"planetwars/config"
	"planetwars/store"
)

// Ledger validates and records one planet's intents for the current round.
// Re-issuing an order with the same arguments cancels it and refunds exactly
// what was charged. Every call runs as one transaction: balance or stockpile
// movement and the order row commit together or not at all.
type Ledger struct {
	store store.Store
	cfg   config.Game
}

func NewLedger(st store.Store, cfg config.Game) *Ledger {
	return &Ledger{store: st, cfg: cfg}
}

// PlaceOrder records or cancels an order for the acting planet. The argument
// is a city id for attack/shield/develop, a planet id for sanctions, a
// meteorite count for create, and ignored for eco/invent.
func (l *Ledger) PlaceOrder(planetID int64, kind OrderKind, argument int64) (FailureReason, error) {
	planet, err := l.store.GetPlanet(planetID)
	if err != nil {
		return "", err
	}
	if planet == nil {
		return ObjectNotFound, nil
	}

	reason := Success
	err = l.store.InGameTx(planet.GameID, func(tx store.Tx) error {
		planet, err := tx.GetPlanet(planetID)
		if err != nil {
			return err
		}
		game, err := tx.GetGame(planet.GameID)
		if err != nil {
			return err
		}
		if game.Status != StatusRound {
			reason = UntimelyAction
			return nil
		}
		round := *game.Round

		switch kind {
		case OrderShield:
			reason, err = l.orderCityWork(tx, planet, round, OrderShield, argument, l.cfg.ShieldCost)
		case OrderDevelop:
			reason, err = l.orderCityWork(tx, planet, round, OrderDevelop, argument, l.cfg.DevelopmentCost)
		case OrderAttack:
			reason, err = l.orderAttack(tx, planet, round, argument)
		case OrderCreate:
			reason, err = l.orderCreate(tx, planet, round, argument)
		case OrderEco:
			reason, err = l.orderEco(tx, planet, round)
		case OrderSanctions:
			reason, err = l.orderSanctions(tx, planet, round, argument)
		case OrderInvent:
			reason, err = l.orderInvent(tx, planet, round)
		default:
			return fmt.Errorf("unknown order kind %q", kind)
		}
		return err
	})
	if err != nil {
		return "", err
	}
	return reason, nil
}

// orderCityWork covers shield and develop: a fixed per-city cost with
// toggle-cancel semantics.
func (l *Ledger) orderCityWork(tx store.Tx, planet *store.Planet, round int64, kind OrderKind, cityID int64, cost int) (FailureReason, error) {
	city, err := tx.GetCity(cityID)
	if err != nil {
		return "", err
	}
	if city == nil {
		return ObjectNotFound, nil
	}
	home, err := tx.GetPlanet(city.PlanetID)
	if err != nil {
		return "", err
	}
	if home.GameID != planet.GameID {
		return ObjectNotFound, nil
	}

	existing, err := tx.GetOrder(planet.ID, string(kind), round, cityID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		if err := tx.AddBalance(planet.ID, cost); err != nil {
			return "", err
		}
		return Success, tx.DeleteOrder(planet.ID, string(kind), round, cityID)
	}

	if planet.Balance < cost {
		return NotEnoughMoney, nil
	}
	if err := tx.AddBalance(planet.ID, -cost); err != nil {
		return "", err
	}
	return Success, tx.InsertOrder(&store.Order{
		PlanetID: planet.ID,
		Action:   string(kind),
		Round:    round,
		Argument: cityID,
	})
}

func (l *Ledger) orderAttack(tx store.Tx, planet *store.Planet, round, cityID int64) (FailureReason, error) {
	city, err := tx.GetCity(cityID)
	if err != nil {
		return "", err
	}
	if city == nil {
		return ObjectNotFound, nil
	}
	if !planet.IsInvented {
		return IsNotInvented, nil
	}
	if city.PlanetID == planet.ID {
		return SelfAttack, nil
	}
	home, err := tx.GetPlanet(city.PlanetID)
	if err != nil {
		return "", err
	}
	if home.GameID != planet.GameID {
		return ObjectNotFound, nil
	}

	existing, err := tx.GetOrder(planet.ID, string(OrderAttack), round, cityID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		if err := tx.AddMeteorites(planet.ID, 1); err != nil {
			return "", err
		}
		return Success, tx.DeleteOrder(planet.ID, string(OrderAttack), round, cityID)
	}

	if planet.Meteorites == 0 {
		return NotEnoughMeteorites, nil
	}
	if err := tx.AddMeteorites(planet.ID, -1); err != nil {
		return "", err
	}
	return Success, tx.InsertOrder(&store.Order{
		PlanetID: planet.ID,
		Action:   string(OrderAttack),
		Round:    round,
		Argument: cityID,
	})
}

// orderCreate is an upsert with delta-based charging, not a toggle: ordering
// n after having ordered m charges (n-m)*cost, and n = 0 withdraws the
// order entirely.
func (l *Ledger) orderCreate(tx store.Tx, planet *store.Planet, round, n int64) (FailureReason, error) {
	if n < 0 {
		return NegativeAmount, nil
	}
	if !planet.IsInvented {
		return IsNotInvented, nil
	}

	existing, err := tx.GetOrderByKind(planet.ID, string(OrderCreate), round)
	if err != nil {
		return "", err
	}
	var ordered int64
	if existing != nil {
		ordered = existing.Argument
	}

	diff := int(n - ordered)
	charge := diff * l.cfg.CreateCost
	if planet.Balance < charge {
		return NotEnoughMoney, nil
	}

	switch {
	case existing == nil && n == 0:
		return Success, nil
	case existing == nil:
		if err := tx.InsertOrder(&store.Order{
			PlanetID: planet.ID,
			Action:   string(OrderCreate),
			Round:    round,
			Argument: n,
		}); err != nil {
			return "", err
		}
	case n == 0:
		if err := tx.DeleteOrder(planet.ID, string(OrderCreate), round, ordered); err != nil {
			return "", err
		}
	default:
		if err := tx.SetOrderArgument(planet.ID, string(OrderCreate), round, n); err != nil {
			return "", err
		}
	}

	return Success, tx.AddBalance(planet.ID, -charge)
}

func (l *Ledger) orderEco(tx store.Tx, planet *store.Planet, round int64) (FailureReason, error) {
	existing, err := tx.GetOrder(planet.ID, string(OrderEco), round, 0)
	if err != nil {
		return "", err
	}
	if existing != nil {
		if err := tx.AddMeteorites(planet.ID, 1); err != nil {
			return "", err
		}
		return Success, tx.DeleteOrder(planet.ID, string(OrderEco), round, 0)
	}

	if planet.Meteorites == 0 {
		return NotEnoughMeteorites, nil
	}
	if err := tx.AddMeteorites(planet.ID, -1); err != nil {
		return "", err
	}
	return Success, tx.InsertOrder(&store.Order{
		PlanetID: planet.ID,
		Action:   string(OrderEco),
		Round:    round,
	})
}

func (l *Ledger) orderSanctions(tx store.Tx, planet *store.Planet, round, targetID int64) (FailureReason, error) {
	target, err := tx.GetPlanet(targetID)
	if err != nil {
		return "", err
	}
	if target == nil || target.GameID != planet.GameID {
		return ObjectNotFound, nil
	}

	existing, err := tx.GetOrder(planet.ID, string(OrderSanctions), round, targetID)
	if err != nil {
		return "", err
	}
	if existing != nil {
		return Success, tx.DeleteOrder(planet.ID, string(OrderSanctions), round, targetID)
	}
	return Success, tx.InsertOrder(&store.Order{
		PlanetID: planet.ID,
		Action:   string(OrderSanctions),
		Round:    round,
		Argument: targetID,
	})
}

func (l *Ledger) orderInvent(tx store.Tx, planet *store.Planet, round int64) (FailureReason, error) {
	existing, err := tx.GetOrder(planet.ID, string(OrderInvent), round, 0)
	if err != nil {
		return "", err
	}
	if existing != nil {
		if err := tx.AddBalance(planet.ID, l.cfg.InventionCost); err != nil {
			return "", err
		}
		return Success, tx.DeleteOrder(planet.ID, string(OrderInvent), round, 0)
	}

	if planet.IsInvented {
		return AlreadyInvented, nil
	}
	if planet.Balance < l.cfg.InventionCost {
		return NotEnoughMoney, nil
	}
	if err := tx.AddBalance(planet.ID, -l.cfg.InventionCost); err != nil {
		return "", err
	}
	return Success, tx.InsertOrder(&store.Order{
		PlanetID: planet.ID,
		Action:   string(OrderInvent),
		Round:    round,
	})
}

// Transfer moves currency between two planets of the same game. Diplomacy
// happens off the books; this is how deals settle.
func (l *Ledger) Transfer(fromID, toID int64, amount int) (FailureReason, error) {
	if amount <= 0 {
		return NegativeAmount, nil
	}

	from, err := l.store.GetPlanet(fromID)
	if err != nil {
		return "", err
	}
	if from == nil {
		return ObjectNotFound, nil
	}

	reason := Success
	err = l.store.InGameTx(from.GameID, func(tx store.Tx) error {
		from, err := tx.GetPlanet(fromID)
		if err != nil {
			return err
		}
		to, err := tx.GetPlanet(toID)
		if err != nil {
			return err
		}
		if to == nil {
			reason = ObjectNotFound
			return nil
		}
		if from.GameID != to.GameID {
			reason = DifferentGames
			return nil
		}
		if from.Balance < amount {
			reason = NotEnoughMoney
			return nil
		}
		if err := tx.AddBalance(fromID, -amount); err != nil {
			return err
		}
		return tx.AddBalance(toID, amount)
	})
	if err != nil {
		return "", err
	}
	return reason, nil
}
