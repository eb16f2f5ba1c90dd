package game

import (
	"planetwars/store"
)

// Negotiations are bilateral diplomat exchanges, separate from the order
// ledger. A planet hosts at most one inbound diplomat at a time, and two
// planets cannot court each other simultaneously.
type Negotiations struct {
	store store.Store
}

func NewNegotiations(st store.Store) *Negotiations {
	return &Negotiations{store: st}
}

// Request asks to send a diplomat from one planet to another. Valid only
// while a round is going.
func (n *Negotiations) Request(planetFrom, planetTo int64) (FailureReason, error) {
	from, err := n.store.GetPlanet(planetFrom)
	if err != nil {
		return "", err
	}
	if from == nil {
		return ObjectNotFound, nil
	}

	reason := Success
	err = n.store.InGameTx(from.GameID, func(tx store.Tx) error {
		to, err := tx.GetPlanet(planetTo)
		if err != nil {
			return err
		}
		if to == nil || to.GameID != from.GameID {
			reason = ObjectNotFound
			return nil
		}

		inbound, err := tx.NegotiationTargeting(planetTo)
		if err != nil {
			return err
		}
		if inbound != nil {
			if inbound.PlanetFrom == planetFrom {
				reason = AlreadyNegotiating
			} else {
				reason = PlanetIsBusy
			}
			return nil
		}

		mirror, err := tx.GetNegotiation(planetTo, planetFrom)
		if err != nil {
			return err
		}
		if mirror != nil {
			reason = BilateralNegotiations
			return nil
		}

		game, err := tx.GetGame(from.GameID)
		if err != nil {
			return err
		}
		if game.Status != StatusRound {
			reason = UntimelyNegotiations
			return nil
		}

		return tx.InsertNegotiation(&store.Negotiation{
			PlanetFrom: planetFrom,
			PlanetTo:   planetTo,
		})
	})
	if err != nil {
		return "", err
	}
	return reason, nil
}

// Accept concludes a pending request: the diplomat is received and the
// negotiation leaves the books.
func (n *Negotiations) Accept(planetFrom, planetTo int64) (FailureReason, error) {
	return n.resolve(planetFrom, planetTo)
}

// Deny refuses a pending request.
func (n *Negotiations) Deny(planetFrom, planetTo int64) (FailureReason, error) {
	return n.resolve(planetFrom, planetTo)
}

func (n *Negotiations) resolve(planetFrom, planetTo int64) (FailureReason, error) {
	to, err := n.store.GetPlanet(planetTo)
	if err != nil {
		return "", err
	}
	if to == nil {
		return ObjectNotFound, nil
	}

	reason := Success
	err = n.store.InGameTx(to.GameID, func(tx store.Tx) error {
		pending, err := tx.GetNegotiation(planetFrom, planetTo)
		if err != nil {
			return err
		}
		if pending == nil {
			reason = ObjectNotFound
			return nil
		}
		return tx.DeleteNegotiation(planetFrom, planetTo)
	})
	if err != nil {
		return "", err
	}
	return reason, nil
}

// End clears any negotiation targeting the planet. Idempotent: ending when
// nothing is pending is a no-op.
func (n *Negotiations) End(planetTo int64) error {
	to, err := n.store.GetPlanet(planetTo)
	if err != nil {
		return err
	}
	if to == nil {
		return nil
	}
	return n.store.InGameTx(to.GameID, func(tx store.Tx) error {
		return tx.DeleteNegotiationsTargeting(planetTo)
	})
}
