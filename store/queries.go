package store

import (
	"database/sql"
	"fmt"
	"strings"
)

// dbtx is satisfied by both *sql.DB and *sql.Tx, so the same query methods
// serve auto-committed reads and in-transaction work.
type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

type queries struct {
	db dbtx
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGame(r rowScanner) (*Game, error) {
	game := &Game{}
	var round sql.NullInt64
	if err := r.Scan(&game.ID, &game.Status, &game.Ecorate, &round, &game.CreatedAt); err != nil {
		return nil, fmt.Errorf("failed to scan game: %w", err)
	}
	if round.Valid {
		game.Round = &round.Int64
	}
	return game, nil
}

func scanGameRow(row *sql.Row) (*Game, error) {
	game := &Game{}
	var round sql.NullInt64
	err := row.Scan(&game.ID, &game.Status, &game.Ecorate, &round, &game.CreatedAt)
	if err != nil {
		return nil, err
	}
	if round.Valid {
		game.Round = &round.Int64
	}
	return game, nil
}

func scanPlanet(r rowScanner) (*Planet, error) {
	planet := &Planet{}
	var owner sql.NullInt64
	var invented int
	err := r.Scan(&planet.ID, &planet.Name, &planet.GameID, &owner,
		&planet.Balance, &planet.Meteorites, &invented)
	if err != nil {
		return nil, fmt.Errorf("failed to scan planet: %w", err)
	}
	if owner.Valid {
		planet.OwnerID = &owner.Int64
	}
	planet.IsInvented = invented == 1
	return planet, nil
}

func scanPlanetRow(row *sql.Row) (*Planet, error) {
	planet := &Planet{}
	var owner sql.NullInt64
	var invented int
	err := row.Scan(&planet.ID, &planet.Name, &planet.GameID, &owner,
		&planet.Balance, &planet.Meteorites, &invented)
	if err != nil {
		return nil, err
	}
	if owner.Valid {
		planet.OwnerID = &owner.Int64
	}
	planet.IsInvented = invented == 1
	return planet, nil
}

// placeholders builds "?, ?, ?" with the matching argument slice for an
// IN clause over int64 ids.
func placeholders(ids []int64) (string, []any) {
	marks := make([]string, len(ids))
	args := make([]any, len(ids))
	for i, id := range ids {
		marks[i] = "?"
		args[i] = id
	}
	return strings.Join(marks, ", "), args
}

func (q *queries) GetGame(gameID int64) (*Game, error) {
	row := q.db.QueryRow(
		"SELECT id, status, ecorate, round, created_at FROM games WHERE id = ?",
		gameID,
	)
	game, err := scanGameRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get game: %w", err)
	}
	return game, nil
}

func (q *queries) GetPlanet(planetID int64) (*Planet, error) {
	row := q.db.QueryRow(
		"SELECT id, name, game_id, owner_id, balance, meteorites, is_invented FROM planets WHERE id = ?",
		planetID,
	)
	planet, err := scanPlanetRow(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get planet: %w", err)
	}
	return planet, nil
}

func (q *queries) GetCity(cityID int64) (*City, error) {
	city := &City{}
	var shielded int
	err := q.db.QueryRow(
		"SELECT id, name, planet_id, is_shielded, development FROM cities WHERE id = ?",
		cityID,
	).Scan(&city.ID, &city.Name, &city.PlanetID, &shielded, &city.Development)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get city: %w", err)
	}
	city.IsShielded = shielded == 1
	return city, nil
}

func (q *queries) PlanetsOfGame(gameID int64) ([]*Planet, error) {
	rows, err := q.db.Query(
		"SELECT id, name, game_id, owner_id, balance, meteorites, is_invented FROM planets WHERE game_id = ? ORDER BY id",
		gameID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get planets: %w", err)
	}
	defer rows.Close()

	var planets []*Planet
	for rows.Next() {
		planet, err := scanPlanet(rows)
		if err != nil {
			return nil, err
		}
		planets = append(planets, planet)
	}
	return planets, rows.Err()
}

func (q *queries) CitiesOfPlanet(planetID int64) ([]*City, error) {
	return q.cities("SELECT id, name, planet_id, is_shielded, development FROM cities WHERE planet_id = ? ORDER BY id", planetID)
}

func (q *queries) CitiesByID(cityIDs []int64) ([]*City, error) {
	if len(cityIDs) == 0 {
		return nil, nil
	}
	marks, args := placeholders(cityIDs)
	return q.cities(
		"SELECT id, name, planet_id, is_shielded, development FROM cities WHERE id IN ("+marks+") ORDER BY id",
		args...,
	)
}

func (q *queries) cities(query string, args ...any) ([]*City, error) {
	rows, err := q.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get cities: %w", err)
	}
	defer rows.Close()

	var cities []*City
	for rows.Next() {
		city := &City{}
		var shielded int
		if err := rows.Scan(&city.ID, &city.Name, &city.PlanetID, &shielded, &city.Development); err != nil {
			return nil, fmt.Errorf("failed to scan city: %w", err)
		}
		city.IsShielded = shielded == 1
		cities = append(cities, city)
	}
	return cities, rows.Err()
}

func (q *queries) OrdersForRound(gameID, round int64) ([]*Order, error) {
	return q.orders(`
		SELECT o.planet_id, o.action, o.round, o.argument
		FROM orders o JOIN planets p ON p.id = o.planet_id
		WHERE p.game_id = ? AND o.round = ?
		ORDER BY o.planet_id, o.action, o.argument
	`, gameID, round)
}

func (q *queries) OrdersOfPlanet(planetID, round int64) ([]*Order, error) {
	return q.orders(
		"SELECT planet_id, action, round, argument FROM orders WHERE planet_id = ? AND round = ? ORDER BY action, argument",
		planetID, round,
	)
}

func (q *queries) orders(query string, args ...any) ([]*Order, error) {
	rows, err := q.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get orders: %w", err)
	}
	defer rows.Close()

	var orders []*Order
	for rows.Next() {
		o := &Order{}
		if err := rows.Scan(&o.PlanetID, &o.Action, &o.Round, &o.Argument); err != nil {
			return nil, fmt.Errorf("failed to scan order: %w", err)
		}
		orders = append(orders, o)
	}
	return orders, rows.Err()
}

func (q *queries) GetOrder(planetID int64, action string, round, argument int64) (*Order, error) {
	o := &Order{}
	err := q.db.QueryRow(
		"SELECT planet_id, action, round, argument FROM orders WHERE planet_id = ? AND action = ? AND round = ? AND argument = ?",
		planetID, action, round, argument,
	).Scan(&o.PlanetID, &o.Action, &o.Round, &o.Argument)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

func (q *queries) GetOrderByKind(planetID int64, action string, round int64) (*Order, error) {
	o := &Order{}
	err := q.db.QueryRow(
		"SELECT planet_id, action, round, argument FROM orders WHERE planet_id = ? AND action = ? AND round = ?",
		planetID, action, round,
	).Scan(&o.PlanetID, &o.Action, &o.Round, &o.Argument)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get order: %w", err)
	}
	return o, nil
}

func (q *queries) SanctionsAgainst(planetID int64) ([]*Sanction, error) {
	return q.sanctions("SELECT planet_from, planet_to FROM sanctions WHERE planet_to = ?", planetID)
}

func (q *queries) SanctionsOfGame(gameID int64) ([]*Sanction, error) {
	return q.sanctions(`
		SELECT s.planet_from, s.planet_to
		FROM sanctions s JOIN planets p ON p.id = s.planet_from
		WHERE p.game_id = ?
	`, gameID)
}

func (q *queries) sanctions(query string, args ...any) ([]*Sanction, error) {
	rows, err := q.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to get sanctions: %w", err)
	}
	defer rows.Close()

	var sanctions []*Sanction
	for rows.Next() {
		s := &Sanction{}
		if err := rows.Scan(&s.PlanetFrom, &s.PlanetTo); err != nil {
			return nil, fmt.Errorf("failed to scan sanction: %w", err)
		}
		sanctions = append(sanctions, s)
	}
	return sanctions, rows.Err()
}

func (q *queries) NegotiationTargeting(planetID int64) (*Negotiation, error) {
	n := &Negotiation{}
	err := q.db.QueryRow(
		"SELECT planet_from, planet_to FROM negotiations WHERE planet_to = ?",
		planetID,
	).Scan(&n.PlanetFrom, &n.PlanetTo)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get negotiation: %w", err)
	}
	return n, nil
}

func (q *queries) GetNegotiation(planetFrom, planetTo int64) (*Negotiation, error) {
	n := &Negotiation{}
	err := q.db.QueryRow(
		"SELECT planet_from, planet_to FROM negotiations WHERE planet_from = ? AND planet_to = ?",
		planetFrom, planetTo,
	).Scan(&n.PlanetFrom, &n.PlanetTo)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get negotiation: %w", err)
	}
	return n, nil
}

func (q *queries) InsertOrder(o *Order) error {
	_, err := q.db.Exec(
		"INSERT INTO orders (planet_id, action, round, argument) VALUES (?, ?, ?, ?)",
		o.PlanetID, o.Action, o.Round, o.Argument,
	)
	if err != nil {
		return fmt.Errorf("failed to insert order: %w", err)
	}
	return nil
}

func (q *queries) DeleteOrder(planetID int64, action string, round, argument int64) error {
	_, err := q.db.Exec(
		"DELETE FROM orders WHERE planet_id = ? AND action = ? AND round = ? AND argument = ?",
		planetID, action, round, argument,
	)
	if err != nil {
		return fmt.Errorf("failed to delete order: %w", err)
	}
	return nil
}

func (q *queries) SetOrderArgument(planetID int64, action string, round, argument int64) error {
	_, err := q.db.Exec(
		"UPDATE orders SET argument = ? WHERE planet_id = ? AND action = ? AND round = ?",
		argument, planetID, action, round,
	)
	if err != nil {
		return fmt.Errorf("failed to update order: %w", err)
	}
	return nil
}

func (q *queries) AddBalance(planetID int64, delta int) error {
	_, err := q.db.Exec(
		"UPDATE planets SET balance = balance + ? WHERE id = ?",
		delta, planetID,
	)
	if err != nil {
		return fmt.Errorf("failed to update balance: %w", err)
	}
	return nil
}

func (q *queries) AddMeteorites(planetID int64, delta int) error {
	_, err := q.db.Exec(
		"UPDATE planets SET meteorites = meteorites + ? WHERE id = ?",
		delta, planetID,
	)
	if err != nil {
		return fmt.Errorf("failed to update meteorites: %w", err)
	}
	return nil
}

func (q *queries) SetPlanetOwner(planetID int64, ownerID *int64) error {
	var owner any
	if ownerID != nil {
		owner = *ownerID
	}
	_, err := q.db.Exec("UPDATE planets SET owner_id = ? WHERE id = ?", owner, planetID)
	if err != nil {
		return fmt.Errorf("failed to update planet owner: %w", err)
	}
	return nil
}

func (q *queries) DevelopCities(cityIDs []int64, boost int) error {
	if len(cityIDs) == 0 {
		return nil
	}
	marks, args := placeholders(cityIDs)
	_, err := q.db.Exec(
		"UPDATE cities SET development = development + ? WHERE id IN ("+marks+")",
		append([]any{boost}, args...)...,
	)
	if err != nil {
		return fmt.Errorf("failed to develop cities: %w", err)
	}
	return nil
}

func (q *queries) ShieldCities(cityIDs []int64) error {
	return q.updateCities(cityIDs, "is_shielded = 1")
}

func (q *queries) UnshieldCities(cityIDs []int64) error {
	return q.updateCities(cityIDs, "is_shielded = 0")
}

func (q *queries) DestroyCities(cityIDs []int64) error {
	return q.updateCities(cityIDs, "development = 0, is_shielded = 0")
}

func (q *queries) updateCities(cityIDs []int64, set string) error {
	if len(cityIDs) == 0 {
		return nil
	}
	marks, args := placeholders(cityIDs)
	_, err := q.db.Exec("UPDATE cities SET "+set+" WHERE id IN ("+marks+")", args...)
	if err != nil {
		return fmt.Errorf("failed to update cities: %w", err)
	}
	return nil
}

func (q *queries) InventPlanets(planetIDs []int64) error {
	if len(planetIDs) == 0 {
		return nil
	}
	marks, args := placeholders(planetIDs)
	_, err := q.db.Exec("UPDATE planets SET is_invented = 1 WHERE id IN ("+marks+")", args...)
	if err != nil {
		return fmt.Errorf("failed to invent for planets: %w", err)
	}
	return nil
}

func (q *queries) SetGameStatus(gameID int64, status string) error {
	_, err := q.db.Exec("UPDATE games SET status = ? WHERE id = ?", status, gameID)
	if err != nil {
		return fmt.Errorf("failed to update game status: %w", err)
	}
	return nil
}

func (q *queries) SetGameEcorate(gameID int64, ecorate int) error {
	_, err := q.db.Exec("UPDATE games SET ecorate = ? WHERE id = ?", ecorate, gameID)
	if err != nil {
		return fmt.Errorf("failed to update ecorate: %w", err)
	}
	return nil
}

func (q *queries) IncrementRound(gameID int64) error {
	_, err := q.db.Exec(
		"UPDATE games SET round = COALESCE(round, 0) + 1 WHERE id = ?",
		gameID,
	)
	if err != nil {
		return fmt.Errorf("failed to increment round: %w", err)
	}
	return nil
}

func (q *queries) DeleteSanctionsFrom(sources []int64) error {
	if len(sources) == 0 {
		return nil
	}
	marks, args := placeholders(sources)
	_, err := q.db.Exec("DELETE FROM sanctions WHERE planet_from IN ("+marks+")", args...)
	if err != nil {
		return fmt.Errorf("failed to delete sanctions: %w", err)
	}
	return nil
}

func (q *queries) DeleteSanctionsOfGame(gameID int64) error {
	_, err := q.db.Exec(`
		DELETE FROM sanctions WHERE planet_from IN (
			SELECT id FROM planets WHERE game_id = ?
		)
	`, gameID)
	if err != nil {
		return fmt.Errorf("failed to delete game sanctions: %w", err)
	}
	return nil
}

func (q *queries) InsertSanctions(sanctions []Sanction) error {
	for _, s := range sanctions {
		if _, err := q.db.Exec(
			"INSERT INTO sanctions (planet_from, planet_to) VALUES (?, ?)",
			s.PlanetFrom, s.PlanetTo,
		); err != nil {
			return fmt.Errorf("failed to insert sanction: %w", err)
		}
	}
	return nil
}

func (q *queries) InsertNegotiation(n *Negotiation) error {
	_, err := q.db.Exec(
		"INSERT INTO negotiations (planet_from, planet_to) VALUES (?, ?)",
		n.PlanetFrom, n.PlanetTo,
	)
	if err != nil {
		return fmt.Errorf("failed to insert negotiation: %w", err)
	}
	return nil
}

func (q *queries) DeleteNegotiationsTargeting(planetID int64) error {
	_, err := q.db.Exec("DELETE FROM negotiations WHERE planet_to = ?", planetID)
	if err != nil {
		return fmt.Errorf("failed to delete negotiations: %w", err)
	}
	return nil
}

func (q *queries) DeleteNegotiation(planetFrom, planetTo int64) error {
	_, err := q.db.Exec(
		"DELETE FROM negotiations WHERE planet_from = ? AND planet_to = ?",
		planetFrom, planetTo,
	)
	if err != nil {
		return fmt.Errorf("failed to delete negotiation: %w", err)
	}
	return nil
}

func (q *queries) SaveRoundReport(gameID, round int64, summary string) error {
	_, err := q.db.Exec(
		"INSERT OR REPLACE INTO round_reports (game_id, round, summary) VALUES (?, ?, ?)",
		gameID, round, summary,
	)
	if err != nil {
		return fmt.Errorf("failed to save round report: %w", err)
	}
	return nil
}
