package store

const schema = `
PRAGMA foreign_keys = ON;

CREATE TABLE IF NOT EXISTS commanders (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    username TEXT UNIQUE NOT NULL,
    password_hash TEXT NOT NULL,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE TABLE IF NOT EXISTS games (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    status TEXT NOT NULL DEFAULT 'waiting',
    ecorate INTEGER NOT NULL DEFAULT 95,
    round INTEGER,
    created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
    CHECK (status IN ('waiting', 'ended') OR round IS NOT NULL)
);

CREATE TABLE IF NOT EXISTS planets (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    game_id INTEGER NOT NULL REFERENCES games(id) ON DELETE CASCADE,
    owner_id INTEGER REFERENCES commanders(id),
    balance INTEGER NOT NULL DEFAULT 1000,
    meteorites INTEGER NOT NULL DEFAULT 0,
    is_invented INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS cities (
    id INTEGER PRIMARY KEY AUTOINCREMENT,
    name TEXT NOT NULL,
    planet_id INTEGER NOT NULL REFERENCES planets(id) ON DELETE CASCADE,
    is_shielded INTEGER NOT NULL DEFAULT 0,
    development INTEGER NOT NULL DEFAULT 60
);

CREATE TABLE IF NOT EXISTS orders (
    planet_id INTEGER NOT NULL REFERENCES planets(id) ON DELETE CASCADE,
    action TEXT NOT NULL,
    round INTEGER NOT NULL,
    argument INTEGER NOT NULL DEFAULT 0,
    PRIMARY KEY (planet_id, action, round, argument)
);

CREATE TABLE IF NOT EXISTS sanctions (
    planet_from INTEGER NOT NULL REFERENCES planets(id) ON DELETE CASCADE,
    planet_to INTEGER NOT NULL REFERENCES planets(id) ON DELETE CASCADE,
    PRIMARY KEY (planet_from, planet_to)
);

CREATE TABLE IF NOT EXISTS negotiations (
    planet_from INTEGER NOT NULL REFERENCES planets(id) ON DELETE CASCADE,
    planet_to INTEGER NOT NULL REFERENCES planets(id) ON DELETE CASCADE,
    PRIMARY KEY (planet_from, planet_to)
);

CREATE TABLE IF NOT EXISTS round_reports (
    game_id INTEGER NOT NULL REFERENCES games(id) ON DELETE CASCADE,
    round INTEGER NOT NULL,
    summary TEXT NOT NULL,
    PRIMARY KEY (game_id, round)
);

CREATE INDEX IF NOT EXISTS idx_games_status ON games(status);
CREATE INDEX IF NOT EXISTS idx_planets_game_id ON planets(game_id);
CREATE INDEX IF NOT EXISTS idx_planets_owner_id ON planets(owner_id);
CREATE INDEX IF NOT EXISTS idx_cities_planet_id ON cities(planet_id);
CREATE INDEX IF NOT EXISTS idx_orders_round ON orders(round);
CREATE INDEX IF NOT EXISTS idx_sanctions_to ON sanctions(planet_to);
CREATE INDEX IF NOT EXISTS idx_negotiations_to ON negotiations(planet_to);
`
