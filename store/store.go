// Package store is the entity store: durable records for games, planets,
// cities, orders, sanctions and negotiations, with cascade deletes wired in
// the schema. No business rules live here.
package store

import (
	"database/sql"
	"fmt"
	"sync"

	_ "modernc.org/sqlite"
)

type Commander struct {
	ID           int64
	Username     string
	PasswordHash string
	CreatedAt    string
}

type Game struct {
	ID      int64
	Status  string
	Ecorate int
	// Round is nil while the game is waiting for players.
	Round     *int64
	CreatedAt string
}

type Planet struct {
	ID         int64
	Name       string
	GameID     int64
	OwnerID    *int64
	Balance    int
	Meteorites int
	IsInvented bool
}

type City struct {
	ID          int64
	Name        string
	PlanetID    int64
	IsShielded  bool
	Development int
}

type Order struct {
	PlanetID int64
	Action   string
	Round    int64
	Argument int64
}

type Sanction struct {
	PlanetFrom int64
	PlanetTo   int64
}

type Negotiation struct {
	PlanetFrom int64
	PlanetTo   int64
}

// PlanetSeed describes one planet of a preset pack at game creation.
type PlanetSeed struct {
	Name   string
	Cities []string
}

// Tx is the set of reads and mutators available inside a game transaction.
// Queries return nil (not an error) when a row is absent.
type Tx interface {
	GetGame(gameID int64) (*Game, error)
	GetPlanet(planetID int64) (*Planet, error)
	GetCity(cityID int64) (*City, error)
	PlanetsOfGame(gameID int64) ([]*Planet, error)
	CitiesOfPlanet(planetID int64) ([]*City, error)
	CitiesByID(cityIDs []int64) ([]*City, error)
	OrdersForRound(gameID, round int64) ([]*Order, error)
	OrdersOfPlanet(planetID, round int64) ([]*Order, error)
	GetOrder(planetID int64, action string, round, argument int64) (*Order, error)
	GetOrderByKind(planetID int64, action string, round int64) (*Order, error)
	SanctionsAgainst(planetID int64) ([]*Sanction, error)
	SanctionsOfGame(gameID int64) ([]*Sanction, error)
	NegotiationTargeting(planetID int64) (*Negotiation, error)
	GetNegotiation(planetFrom, planetTo int64) (*Negotiation, error)

	InsertOrder(o *Order) error
	DeleteOrder(planetID int64, action string, round, argument int64) error
	SetOrderArgument(planetID int64, action string, round, argument int64) error
	AddBalance(planetID int64, delta int) error
	AddMeteorites(planetID int64, delta int) error
	SetPlanetOwner(planetID int64, ownerID *int64) error
	DevelopCities(cityIDs []int64, boost int) error
	ShieldCities(cityIDs []int64) error
	UnshieldCities(cityIDs []int64) error
	DestroyCities(cityIDs []int64) error
	InventPlanets(planetIDs []int64) error
	SetGameStatus(gameID int64, status string) error
	SetGameEcorate(gameID int64, ecorate int) error
	IncrementRound(gameID int64) error
	DeleteSanctionsFrom(sources []int64) error
	DeleteSanctionsOfGame(gameID int64) error
	InsertSanctions(sanctions []Sanction) error
	InsertNegotiation(n *Negotiation) error
	DeleteNegotiationsTargeting(planetID int64) error
	DeleteNegotiation(planetFrom, planetTo int64) error
	SaveRoundReport(gameID, round int64, summary string) error
}

// Store is the full storage contract. Reads outside a transaction see the
// latest committed state; every multi-step mutation goes through InGameTx.
type Store interface {
	Tx

	CreateCommander(username, passwordHash string) (int64, error)
	GetCommanderByUsername(username string) (*Commander, error)
	GetCommanderByID(commanderID int64) (*Commander, error)

	CreateGame(ecorate int, planets []PlanetSeed) (int64, error)
	ListGames() ([]*Game, error)
	GetGameByPlanet(planetID int64) (*Game, error)
	PlanetOwnedBy(commanderID int64) (*Planet, error)
	DeletePlanet(planetID int64) error
	RoundReport(gameID, round int64) (string, error)

	// InGameTx runs fn inside one transaction, serialized against all other
	// transactions for the same game. A non-nil error from fn rolls the
	// transaction back in full.
	InGameTx(gameID int64, fn func(tx Tx) error) error
	Close() error
}

type SQLiteStore struct {
	db *sql.DB
	queries

	mu    sync.Mutex
	locks map[int64]*sync.Mutex
}

func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	// The pragma rides on the DSN so cascade deletes survive connection
	// recycling.
	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	// modernc sqlite serializes writers; a single connection avoids
	// SQLITE_BUSY between the ledger and the settlement engine.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return &SQLiteStore{
		db:      db,
		queries: queries{db: db},
		locks:   make(map[int64]*sync.Mutex),
	}, nil
}

func (s *SQLiteStore) gameLock(gameID int64) *sync.Mutex {
	s.mu.Lock()
	defer s.mu.Unlock()

	lock, ok := s.locks[gameID]
	if !ok {
		lock = &sync.Mutex{}
		s.locks[gameID] = lock
	}
	return lock
}

func (s *SQLiteStore) InGameTx(gameID int64, fn func(tx Tx) error) error {
	lock := s.gameLock(gameID)
	lock.Lock()
	defer lock.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(&queries{db: tx}); err != nil {
		return err
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

func (s *SQLiteStore) CreateCommander(username, passwordHash string) (int64, error) {
	result, err := s.db.Exec(
		"INSERT INTO commanders (username, password_hash) VALUES (?, ?)",
		username, passwordHash,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to create commander: %w", err)
	}
	return result.LastInsertId()
}

func (s *SQLiteStore) GetCommanderByUsername(username string) (*Commander, error) {
	c := &Commander{}
	err := s.db.QueryRow(
		"SELECT id, username, password_hash, created_at FROM commanders WHERE username = ?",
		username,
	).Scan(&c.ID, &c.Username, &c.PasswordHash, &c.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get commander: %w", err)
	}
	return c, nil
}

func (s *SQLiteStore) GetCommanderByID(commanderID int64) (*Commander, error) {
	c := &Commander{}
	err := s.db.QueryRow(
		"SELECT id, username, password_hash, created_at FROM commanders WHERE id = ?",
		commanderID,
	).Scan(&c.ID, &c.Username, &c.PasswordHash, &c.CreatedAt)

	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get commander: %w", err)
	}
	return c, nil
}

// CreateGame inserts a game and its fixed set of planets and cities in one
// transaction. The city set never changes afterward.
func (s *SQLiteStore) CreateGame(ecorate int, planets []PlanetSeed) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	result, err := tx.Exec("INSERT INTO games (ecorate) VALUES (?)", ecorate)
	if err != nil {
		return 0, fmt.Errorf("failed to create game: %w", err)
	}
	gameID, err := result.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to read game id: %w", err)
	}

	for _, seed := range planets {
		res, err := tx.Exec(
			"INSERT INTO planets (name, game_id) VALUES (?, ?)",
			seed.Name, gameID,
		)
		if err != nil {
			return 0, fmt.Errorf("failed to create planet %q: %w", seed.Name, err)
		}
		planetID, err := res.LastInsertId()
		if err != nil {
			return 0, fmt.Errorf("failed to read planet id: %w", err)
		}
		for _, city := range seed.Cities {
			if _, err := tx.Exec(
				"INSERT INTO cities (name, planet_id) VALUES (?, ?)",
				city, planetID,
			); err != nil {
				return 0, fmt.Errorf("failed to create city %q: %w", city, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}
	return gameID, nil
}

func (s *SQLiteStore) ListGames() ([]*Game, error) {
	rows, err := s.db.Query(
		"SELECT id, status, ecorate, round, created_at FROM games WHERE status != 'ended' ORDER BY created_at DESC",
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list games: %w", err)
	}
	defer rows.Close()

	var games []*Game
	for rows.Next() {
		game, err := scanGame(rows)
		if err != nil {
			return nil, err
		}
		games = append(games, game)
	}
	return games, rows.Err()
}

func (s *SQLiteStore) GetGameByPlanet(planetID int64) (*Game, error) {
	row := s.db.QueryRow(`
		SELECT g.id, g.status, g.ecorate, g.round, g.created_at
		FROM games g JOIN planets p ON p.game_id = g.id
		WHERE p.id = ?
	`, planetID)
	game, err := scanGameRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return game, err
}

// PlanetOwnedBy returns the commander's planet in a game that has not
// ended, or nil when they are not playing.
func (s *SQLiteStore) PlanetOwnedBy(commanderID int64) (*Planet, error) {
	row := s.db.QueryRow(`
		SELECT p.id, p.name, p.game_id, p.owner_id, p.balance, p.meteorites, p.is_invented
		FROM planets p JOIN games g ON g.id = p.game_id
		WHERE p.owner_id = ? AND g.status != 'ended'
	`, commanderID)
	planet, err := scanPlanetRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return planet, err
}

func (s *SQLiteStore) DeletePlanet(planetID int64) error {
	if _, err := s.db.Exec("DELETE FROM planets WHERE id = ?", planetID); err != nil {
		return fmt.Errorf("failed to delete planet: %w", err)
	}
	return nil
}

func (s *SQLiteStore) RoundReport(gameID, round int64) (string, error) {
	var summary string
	err := s.db.QueryRow(
		"SELECT summary FROM round_reports WHERE game_id = ? AND round = ?",
		gameID, round,
	).Scan(&summary)
	if err == sql.ErrNoRows {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to get round report: %w", err)
	}
	return summary, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
