package http

import (
	"encoding/json"
	"log"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"

	"planetwars/auth"
	"planetwars/clock"
	"planetwars/game"
	"planetwars/store"
	"planetwars/ws"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		return origin == "" || origin == "http://"+r.Host || origin == "https://"+r.Host
	},
}

type Handlers struct {
	authService  *auth.Service
	lobby        *game.Lobby
	ledger       *game.Ledger
	engine       *game.Engine
	negotiations *game.Negotiations
	reports      *game.Reports
	scheduler    *clock.Scheduler
	wsManager    *ws.Manager
	store        store.Store
}

func NewHandlers(
	authService *auth.Service,
	lobby *game.Lobby,
	ledger *game.Ledger,
	engine *game.Engine,
	negotiations *game.Negotiations,
	reports *game.Reports,
	scheduler *clock.Scheduler,
	wsManager *ws.Manager,
	st store.Store,
) *Handlers {
	return &Handlers{
		authService:  authService,
		lobby:        lobby,
		ledger:       ledger,
		engine:       engine,
		negotiations: negotiations,
		reports:      reports,
		scheduler:    scheduler,
		wsManager:    wsManager,
		store:        st,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("Failed to write JSON response: %v", err)
	}
}

// writeReason maps a business-rule outcome to a response. The reason string
// is machine-readable; the bot layer owns localization.
func writeReason(w http.ResponseWriter, reason game.FailureReason) {
	status := http.StatusOK
	switch reason {
	case game.Success:
	case game.ObjectNotFound:
		status = http.StatusNotFound
	default:
		status = http.StatusConflict
	}
	writeJSON(w, status, map[string]string{"reason": string(reason)})
}

func gameIDFromPath(r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["gameId"], 10, 64)
	return id, err == nil && id > 0
}

// actingPlanet resolves the caller's planet and checks it plays in the
// requested game.
func (h *Handlers) actingPlanet(r *http.Request, gameID int64) (*store.Planet, game.FailureReason, error) {
	commanderID, ok := CommanderIDFromContext(r.Context())
	if !ok {
		return nil, game.NotInGame, nil
	}
	planet, err := h.store.PlanetOwnedBy(commanderID)
	if err != nil {
		return nil, "", err
	}
	if planet == nil || planet.GameID != gameID {
		return nil, game.NotInGame, nil
	}
	return planet, game.Success, nil
}

// Auth handlers

func (h *Handlers) Register(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	if err := h.authService.Register(req.Username, req.Password); err != nil {
		switch err {
		case auth.ErrInvalidUsername, auth.ErrInvalidPassword, auth.ErrUserExists:
			http.Error(w, err.Error(), http.StatusBadRequest)
		default:
			log.Printf("Register error: %v", err)
			http.Error(w, "Registration failed", http.StatusInternalServerError)
		}
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Commander registered"})
}

func (h *Handlers) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Username string `json:"username"`
		Password string `json:"password"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	sessionID, err := h.authService.Login(req.Username, req.Password)
	if err != nil {
		if err == auth.ErrInvalidCredentials {
			http.Error(w, err.Error(), http.StatusUnauthorized)
		} else {
			log.Printf("Login error: %v", err)
			http.Error(w, "Login failed", http.StatusInternalServerError)
		}
		return
	}

	h.authService.Sessions().SetSessionCookie(w, sessionID)

	commander, err := h.store.GetCommanderByUsername(auth.SanitizeUsername(req.Username))
	if err != nil || commander == nil {
		log.Printf("Login: failed to load commander %q: %v", req.Username, err)
		http.Error(w, "Failed to get commander info", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"commanderId": commander.ID,
		"username":    commander.Username,
	})
}

func (h *Handlers) Logout(w http.ResponseWriter, r *http.Request) {
	if sessionID := auth.SessionFromRequest(r); sessionID != "" {
		h.authService.Logout(sessionID)
		h.authService.Sessions().ClearSessionCookie(w)
	}
	writeJSON(w, http.StatusOK, map[string]string{"message": "Logged out"})
}

// Lobby handlers

func (h *Handlers) ListGames(w http.ResponseWriter, r *http.Request) {
	games, err := h.lobby.ListGames()
	if err != nil {
		log.Printf("ListGames error: %v", err)
		http.Error(w, "Failed to list games", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, games)
}

func (h *Handlers) ListPacks(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"packs": h.lobby.Packs()})
}

func (h *Handlers) CreateGame(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Pack string `json:"pack"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	gameID, reason, err := h.lobby.CreateGame(req.Pack)
	if err != nil {
		log.Printf("CreateGame error: %v", err)
		http.Error(w, "Failed to create game", http.StatusInternalServerError)
		return
	}
	if reason != game.Success {
		writeReason(w, reason)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"gameId": gameID})
}

func (h *Handlers) JoinGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := gameIDFromPath(r)
	if !ok {
		http.Error(w, "Invalid game ID", http.StatusBadRequest)
		return
	}
	commanderID, ok := CommanderIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	commander, err := h.store.GetCommanderByID(commanderID)
	if err != nil || commander == nil {
		http.Error(w, "Failed to get commander info", http.StatusInternalServerError)
		return
	}

	planet, reason, err := h.lobby.Join(gameID, commanderID)
	if err != nil {
		log.Printf("JoinGame error: %v", err)
		http.Error(w, "Failed to join game", http.StatusInternalServerError)
		return
	}
	if reason != game.Success {
		writeReason(w, reason)
		return
	}

	h.wsManager.Broadcast(gameID, game.Event{
		Type:   "player_joined",
		GameID: gameID,
		Payload: game.PlayerJoinedPayload{
			PlanetID:   planet.ID,
			PlanetName: planet.Name,
			Commander:  commander.Username,
		},
	})
	writeJSON(w, http.StatusOK, map[string]any{
		"gameId":     gameID,
		"planetId":   planet.ID,
		"planetName": planet.Name,
	})
}

func (h *Handlers) LeaveGame(w http.ResponseWriter, r *http.Request) {
	commanderID, ok := CommanderIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	reason, err := h.lobby.Leave(commanderID)
	if err != nil {
		log.Printf("LeaveGame error: %v", err)
		http.Error(w, "Failed to leave game", http.StatusInternalServerError)
		return
	}
	writeReason(w, reason)
}

func (h *Handlers) GetGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := gameIDFromPath(r)
	if !ok {
		http.Error(w, "Invalid game ID", http.StatusBadRequest)
		return
	}

	view, err := h.lobby.GetGame(gameID)
	if err != nil {
		log.Printf("GetGame error: %v", err)
		http.Error(w, "Failed to get game", http.StatusInternalServerError)
		return
	}
	if view == nil {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, view)
}

// Order handlers

func (h *Handlers) PlaceOrder(w http.ResponseWriter, r *http.Request) {
	gameID, ok := gameIDFromPath(r)
	if !ok {
		http.Error(w, "Invalid game ID", http.StatusBadRequest)
		return
	}

	var req struct {
		Kind     string `json:"kind"`
		Argument int64  `json:"argument"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}
	kind, ok := game.ParseOrderKind(req.Kind)
	if !ok {
		http.Error(w, "Unknown order kind", http.StatusBadRequest)
		return
	}

	planet, reason, err := h.actingPlanet(r, gameID)
	if err != nil {
		log.Printf("PlaceOrder error: %v", err)
		http.Error(w, "Failed to place order", http.StatusInternalServerError)
		return
	}
	if reason != game.Success {
		writeReason(w, reason)
		return
	}

	reason, err = h.ledger.PlaceOrder(planet.ID, kind, req.Argument)
	if err != nil {
		log.Printf("PlaceOrder error: %v", err)
		http.Error(w, "Failed to place order", http.StatusInternalServerError)
		return
	}
	writeReason(w, reason)
}

func (h *Handlers) Transfer(w http.ResponseWriter, r *http.Request) {
	gameID, ok := gameIDFromPath(r)
	if !ok {
		http.Error(w, "Invalid game ID", http.StatusBadRequest)
		return
	}

	var req struct {
		ToPlanetID int64 `json:"toPlanetId"`
		Amount     int   `json:"amount"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	planet, reason, err := h.actingPlanet(r, gameID)
	if err != nil {
		log.Printf("Transfer error: %v", err)
		http.Error(w, "Failed to transfer", http.StatusInternalServerError)
		return
	}
	if reason != game.Success {
		writeReason(w, reason)
		return
	}

	reason, err = h.ledger.Transfer(planet.ID, req.ToPlanetID, req.Amount)
	if err != nil {
		log.Printf("Transfer error: %v", err)
		http.Error(w, "Failed to transfer", http.StatusInternalServerError)
		return
	}
	writeReason(w, reason)
}

// Round handlers

func (h *Handlers) StartRound(w http.ResponseWriter, r *http.Request) {
	gameID, ok := gameIDFromPath(r)
	if !ok {
		http.Error(w, "Invalid game ID", http.StatusBadRequest)
		return
	}

	reason, err := h.engine.StartNewRound(gameID)
	if err != nil {
		log.Printf("StartRound error: %v", err)
		http.Error(w, "Failed to start round", http.StatusInternalServerError)
		return
	}
	if reason != game.Success {
		writeReason(w, reason)
		return
	}

	g, err := h.store.GetGame(gameID)
	if err != nil || g == nil || g.Round == nil {
		log.Printf("StartRound: failed to reload game %d: %v", gameID, err)
		http.Error(w, "Failed to start round", http.StatusInternalServerError)
		return
	}
	round := *g.Round

	h.scheduler.Arm(gameID, round)
	h.wsManager.Broadcast(gameID, game.Event{
		Type:    "round_started",
		GameID:  gameID,
		Payload: game.RoundStartedPayload{Round: round},
	})
	writeJSON(w, http.StatusOK, map[string]any{"round": round})
}

func (h *Handlers) EndRound(w http.ResponseWriter, r *http.Request) {
	gameID, ok := gameIDFromPath(r)
	if !ok {
		http.Error(w, "Invalid game ID", http.StatusBadRequest)
		return
	}

	summary, reason, err := h.engine.EndCurrentRound(gameID)
	if err != nil {
		log.Printf("EndRound error: %v", err)
		http.Error(w, "Failed to end round", http.StatusInternalServerError)
		return
	}
	if reason != game.Success {
		writeReason(w, reason)
		return
	}

	h.scheduler.Cancel(gameID)
	h.wsManager.Broadcast(gameID, game.Event{
		Type:    "round_ended",
		GameID:  gameID,
		Payload: summary,
	})
	writeJSON(w, http.StatusOK, summary)
}

func (h *Handlers) EndGame(w http.ResponseWriter, r *http.Request) {
	gameID, ok := gameIDFromPath(r)
	if !ok {
		http.Error(w, "Invalid game ID", http.StatusBadRequest)
		return
	}

	reason, err := h.engine.EndGame(gameID)
	if err != nil {
		log.Printf("EndGame error: %v", err)
		http.Error(w, "Failed to end game", http.StatusInternalServerError)
		return
	}
	if reason != game.Success {
		writeReason(w, reason)
		return
	}

	h.scheduler.Cancel(gameID)
	h.wsManager.Broadcast(gameID, game.Event{Type: "game_ended", GameID: gameID})
	writeReason(w, game.Success)
}

func (h *Handlers) GetReport(w http.ResponseWriter, r *http.Request) {
	gameID, ok := gameIDFromPath(r)
	if !ok {
		http.Error(w, "Invalid game ID", http.StatusBadRequest)
		return
	}

	report, err := h.reports.GameReport(gameID)
	if err != nil {
		log.Printf("GetReport error: %v", err)
		http.Error(w, "Failed to build report", http.StatusInternalServerError)
		return
	}
	if report == nil {
		http.Error(w, "Game not found", http.StatusNotFound)
		return
	}
	writeJSON(w, http.StatusOK, report)
}

// Negotiation handlers

func (h *Handlers) RequestNegotiation(w http.ResponseWriter, r *http.Request) {
	h.negotiationCall(w, r, func(planet *store.Planet, other int64) (game.FailureReason, error) {
		reason, err := h.negotiations.Request(planet.ID, other)
		if err == nil && reason == game.Success {
			h.wsManager.Broadcast(planet.GameID, game.Event{
				Type:    "negotiation_requested",
				GameID:  planet.GameID,
				Payload: game.NegotiationPayload{PlanetFrom: planet.ID, PlanetTo: other},
			})
		}
		return reason, err
	})
}

func (h *Handlers) AcceptNegotiation(w http.ResponseWriter, r *http.Request) {
	h.negotiationCall(w, r, func(planet *store.Planet, other int64) (game.FailureReason, error) {
		return h.negotiations.Accept(other, planet.ID)
	})
}

func (h *Handlers) DenyNegotiation(w http.ResponseWriter, r *http.Request) {
	h.negotiationCall(w, r, func(planet *store.Planet, other int64) (game.FailureReason, error) {
		return h.negotiations.Deny(other, planet.ID)
	})
}

func (h *Handlers) EndNegotiation(w http.ResponseWriter, r *http.Request) {
	gameID, ok := gameIDFromPath(r)
	if !ok {
		http.Error(w, "Invalid game ID", http.StatusBadRequest)
		return
	}

	planet, reason, err := h.actingPlanet(r, gameID)
	if err != nil {
		log.Printf("EndNegotiation error: %v", err)
		http.Error(w, "Failed to end negotiation", http.StatusInternalServerError)
		return
	}
	if reason != game.Success {
		writeReason(w, reason)
		return
	}

	if err := h.negotiations.End(planet.ID); err != nil {
		log.Printf("EndNegotiation error: %v", err)
		http.Error(w, "Failed to end negotiation", http.StatusInternalServerError)
		return
	}
	writeReason(w, game.Success)
}

// negotiationCall resolves the acting planet and the counterpart planet id
// from the request body, then runs the negotiation operation.
func (h *Handlers) negotiationCall(w http.ResponseWriter, r *http.Request, fn func(planet *store.Planet, other int64) (game.FailureReason, error)) {
	gameID, ok := gameIDFromPath(r)
	if !ok {
		http.Error(w, "Invalid game ID", http.StatusBadRequest)
		return
	}

	var req struct {
		PlanetID int64 `json:"planetId"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request body", http.StatusBadRequest)
		return
	}

	planet, reason, err := h.actingPlanet(r, gameID)
	if err != nil {
		log.Printf("Negotiation error: %v", err)
		http.Error(w, "Negotiation failed", http.StatusInternalServerError)
		return
	}
	if reason != game.Success {
		writeReason(w, reason)
		return
	}

	reason, err = fn(planet, req.PlanetID)
	if err != nil {
		log.Printf("Negotiation error: %v", err)
		http.Error(w, "Negotiation failed", http.StatusInternalServerError)
		return
	}
	writeReason(w, reason)
}

// WebSocket handler

func (h *Handlers) HandleWebSocket(w http.ResponseWriter, r *http.Request) {
	gameID, ok := gameIDFromPath(r)
	if !ok {
		http.Error(w, "Invalid game ID", http.StatusBadRequest)
		return
	}

	commanderID, ok := CommanderIDFromContext(r.Context())
	if !ok {
		http.Error(w, "Unauthorized", http.StatusUnauthorized)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("WebSocket upgrade error: %v", err)
		return
	}
	h.wsManager.HandleConnection(conn, gameID, commanderID)
}
