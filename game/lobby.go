package game

import (
	"planetwars/pack"
	"planetwars/store"
)

// Every game starts at this anomaly health; eco orders push it back up
// toward 100.
const startingEcorate = 95

// Lobby creates games from preset packs and seats commanders on planets.
type Lobby struct {
	store store.Store
	packs []pack.Pack
}

func NewLobby(st store.Store, packs []pack.Pack) *Lobby {
	return &Lobby{store: st, packs: packs}
}

// Packs lists the available preset names.
func (l *Lobby) Packs() []string {
	names := make([]string, len(l.packs))
	for i, p := range l.packs {
		names[i] = p.Name
	}
	return names
}

// CreateGame sets up a new game from the named pack: the pack's planets and
// cities are created once and never added to afterward.
func (l *Lobby) CreateGame(packName string) (int64, FailureReason, error) {
	preset, ok := pack.Find(l.packs, packName)
	if !ok {
		return 0, ObjectNotFound, nil
	}

	seeds := make([]store.PlanetSeed, len(preset.Planets))
	for i, planet := range preset.Planets {
		cities := make([]string, len(planet.Cities))
		for j, city := range planet.Cities {
			cities[j] = city.Name
		}
		seeds[i] = store.PlanetSeed{Name: planet.Name, Cities: cities}
	}

	gameID, err := l.store.CreateGame(startingEcorate, seeds)
	if err != nil {
		return 0, "", err
	}
	return gameID, Success, nil
}

// Join claims the first unowned planet of the game for the commander.
func (l *Lobby) Join(gameID, commanderID int64) (*store.Planet, FailureReason, error) {
	current, err := l.store.PlanetOwnedBy(commanderID)
	if err != nil {
		return nil, "", err
	}
	if current != nil {
		return nil, AlreadyInGame, nil
	}

	var claimed *store.Planet
	reason := Success
	err = l.store.InGameTx(gameID, func(tx store.Tx) error {
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

		planets, err := tx.PlanetsOfGame(gameID)
		if err != nil {
			return err
		}
		for _, planet := range planets {
			if planet.OwnerID == nil {
				if err := tx.SetPlanetOwner(planet.ID, &commanderID); err != nil {
					return err
				}
				planet.OwnerID = &commanderID
				claimed = planet
				return nil
			}
		}
		reason = GameIsFull
		return nil
	})
	if err != nil {
		return nil, "", err
	}
	if reason != Success {
		return nil, reason, nil
	}
	return claimed, Success, nil
}

// Leave releases the commander's planet. Only allowed while the game is
// still waiting for players; once a round has started the seat is fixed.
func (l *Lobby) Leave(commanderID int64) (FailureReason, error) {
	planet, err := l.store.PlanetOwnedBy(commanderID)
	if err != nil {
		return "", err
	}
	if planet == nil {
		return NotInGame, nil
	}

	reason := Success
	err = l.store.InGameTx(planet.GameID, func(tx store.Tx) error {
		game, err := tx.GetGame(planet.GameID)
		if err != nil {
			return err
		}
		if game.Status != StatusWaiting {
			reason = UntimelyAction
			return nil
		}
		return tx.SetPlanetOwner(planet.ID, nil)
	})
	if err != nil {
		return "", err
	}
	return reason, nil
}

// GameView is the lobby's listing shape.
type GameView struct {
	ID      int64        `json:"id"`
	Status  string       `json:"status"`
	Ecorate int          `json:"ecorate"`
	Round   *int64       `json:"round"`
	Planets []PlanetSeat `json:"planets"`
}

type PlanetSeat struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	Claimed bool   `json:"claimed"`
}

func (l *Lobby) ListGames() ([]*GameView, error) {
	games, err := l.store.ListGames()
	if err != nil {
		return nil, err
	}

	views := make([]*GameView, 0, len(games))
	for _, game := range games {
		view, err := l.gameView(game)
		if err != nil {
			return nil, err
		}
		views = append(views, view)
	}
	return views, nil
}

func (l *Lobby) GetGame(gameID int64) (*GameView, error) {
	game, err := l.store.GetGame(gameID)
	if err != nil {
		return nil, err
	}
	if game == nil {
		return nil, nil
	}
	return l.gameView(game)
}

func (l *Lobby) gameView(game *store.Game) (*GameView, error) {
	planets, err := l.store.PlanetsOfGame(game.ID)
	if err != nil {
		return nil, err
	}

	seats := make([]PlanetSeat, len(planets))
	for i, planet := range planets {
		seats[i] = PlanetSeat{
			ID:      planet.ID,
			Name:    planet.Name,
			Claimed: planet.OwnerID != nil,
		}
	}
	return &GameView{
		ID:      game.ID,
		Status:  game.Status,
		Ecorate: game.Ecorate,
		Round:   game.Round,
		Planets: seats,
	}, nil
}
