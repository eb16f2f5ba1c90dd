package http

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/cookiejar"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"planetwars/auth"
	"planetwars/clock"
	"planetwars/config"
	"planetwars/game"
	"planetwars/pack"
	"planetwars/store"
	"planetwars/ws"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	st, err := store.NewSQLiteStore(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test store: %v", err)
	}
	t.Cleanup(func() { st.Close() })

	cfg := config.Game{
		RoundLength:       time.Hour,
		InventionCost:     500,
		CreateCost:        150,
		DevelopmentBoost:  20,
		DevelopmentCost:   150,
		ShieldCost:        300,
		EcoBoostRate:      20,
		IncomeCoefficient: 3,
	}
	packs := []pack.Pack{{
		Name: "duel",
		Planets: []pack.Planet{
			{Name: "Alpha", Cities: []pack.City{{Name: "Alpha Prime"}}},
			{Name: "Omega", Cities: []pack.City{{Name: "Omega Prime"}}},
		},
	}}

	authService := auth.NewService(st, auth.NewSessionManager())
	engine := game.NewEngine(st, cfg)
	wsManager := ws.NewManager()
	scheduler := clock.NewScheduler(engine, wsManager, cfg.RoundLength)
	t.Cleanup(scheduler.Stop)

	handlers := NewHandlers(
		authService,
		game.NewLobby(st, packs),
		game.NewLedger(st, cfg),
		engine,
		game.NewNegotiations(st),
		game.NewReports(st, cfg),
		scheduler,
		wsManager,
		st,
	)
	server := httptest.NewServer(NewServer(handlers, authService).GetHTTPServer("").Handler)
	t.Cleanup(server.Close)
	return server
}

func newClient(t *testing.T) *http.Client {
	t.Helper()
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("failed to create cookie jar: %v", err)
	}
	return &http.Client{Jar: jar}
}

func postJSON(t *testing.T, client *http.Client, url string, body any) *http.Response {
	t.Helper()
	raw, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("failed to marshal body: %v", err)
	}
	resp, err := client.Post(url, "application/json", bytes.NewReader(raw))
	if err != nil {
		t.Fatalf("POST %s failed: %v", url, err)
	}
	return resp
}

func decodeJSON(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
}

func signUp(t *testing.T, client *http.Client, base, username string) {
	t.Helper()
	creds := map[string]string{"username": username, "password": "passw0rd"}

	resp := postJSON(t, client, base+"/api/auth/register", creds)
	resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register returned %d", resp.StatusCode)
	}

	resp = postJSON(t, client, base+"/api/auth/login", creds)
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("login returned %d", resp.StatusCode)
	}
}

func TestProtectedRoutesRequireSession(t *testing.T) {
	server := newTestServer(t)

	resp, err := http.Get(server.URL + "/api/lobby/games")
	if err != nil {
		t.Fatalf("GET failed: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestFullGameFlow(t *testing.T) {
	server := newTestServer(t)

	first := newClient(t)
	second := newClient(t)
	signUp(t, first, server.URL, "first_cmdr")
	signUp(t, second, server.URL, "second_cmdr")

	// Create and fill a game.
	var created struct {
		GameID int64 `json:"gameId"`
	}
	resp := postJSON(t, first, server.URL+"/api/lobby/create", map[string]string{"pack": "duel"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create returned %d", resp.StatusCode)
	}
	decodeJSON(t, resp, &created)

	gameURL := fmt.Sprintf("%s/api/games/%d", server.URL, created.GameID)
	joinURL := fmt.Sprintf("%s/api/lobby/join/%d", server.URL, created.GameID)

	var joined struct {
		PlanetID int64 `json:"planetId"`
	}
	resp = postJSON(t, first, joinURL, struct{}{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("first join returned %d", resp.StatusCode)
	}
	decodeJSON(t, resp, &joined)

	resp = postJSON(t, second, joinURL, struct{}{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("second join returned %d", resp.StatusCode)
	}

	// Joining a full game is a conflict.
	third := newClient(t)
	signUp(t, third, server.URL, "third_cmdr")
	resp = postJSON(t, third, joinURL, struct{}{})
	var full struct {
		Reason string `json:"reason"`
	}
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for a full game, got %d", resp.StatusCode)
	}
	decodeJSON(t, resp, &full)
	if full.Reason != string(game.GameIsFull) {
		t.Fatalf("expected GAME_IS_FULL, got %s", full.Reason)
	}

	// Start a round and place an order.
	resp = postJSON(t, first, gameURL+"/round/start", struct{}{})
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("round start returned %d", resp.StatusCode)
	}

	var report game.GameReport
	reportResp, err := first.Get(gameURL + "/report")
	if err != nil {
		t.Fatalf("report failed: %v", err)
	}
	decodeJSON(t, reportResp, &report)
	if report.Status != game.StatusRound {
		t.Fatalf("expected round going, got %q", report.Status)
	}
	cityID := report.Planets[0].Cities[0].ID

	var outcome struct {
		Reason string `json:"reason"`
	}
	resp = postJSON(t, first, gameURL+"/orders", map[string]any{"kind": "shield", "argument": cityID})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("order returned %d", resp.StatusCode)
	}
	decodeJSON(t, resp, &outcome)
	if outcome.Reason != string(game.Success) {
		t.Fatalf("expected SUCCESS, got %s", outcome.Reason)
	}

	// A commander outside the game cannot act in it.
	resp = postJSON(t, third, gameURL+"/orders", map[string]any{"kind": "shield", "argument": cityID})
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("expected 409 for an outsider, got %d", resp.StatusCode)
	}
	decodeJSON(t, resp, &outcome)
	if outcome.Reason != string(game.NotInGame) {
		t.Fatalf("expected NOT_IN_GAME, got %s", outcome.Reason)
	}

	// Settle the round.
	var summary game.Summary
	resp = postJSON(t, first, gameURL+"/round/end", struct{}{})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("round end returned %d", resp.StatusCode)
	}
	decodeJSON(t, resp, &summary)
	if summary.Round != 1 {
		t.Fatalf("expected round 1 settled, got %d", summary.Round)
	}
	if len(summary.ShieldedCities) != 1 || summary.ShieldedCities[0] != cityID {
		t.Fatalf("expected shielded cities [%d], got %v", cityID, summary.ShieldedCities)
	}
}

func TestOrderRejectsUnknownKind(t *testing.T) {
	server := newTestServer(t)
	client := newClient(t)
	signUp(t, client, server.URL, "lone_cmdr")

	resp := postJSON(t, client, server.URL+"/api/games/1/orders", map[string]any{"kind": "nuke", "argument": 1})
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown kind, got %d", resp.StatusCode)
	}
}
