package http

import (
	"net/http"
	"time"

	"github.com/gorilla/mux"

	"planetwars/auth"
)

type Server struct {
	router   *mux.Router
	handlers *Handlers
}

func NewServer(handlers *Handlers, authService *auth.Service) *Server {
	server := &Server{
		router:   mux.NewRouter(),
		handlers: handlers,
	}
	server.setupRoutes(authService)
	return server
}

func (s *Server) setupRoutes(authService *auth.Service) {
	// Apply global middleware
	s.router.Use(LoggingMiddleware)
	s.router.Use(SecurityHeadersMiddleware)
	s.router.Use(CORSMiddleware)

	// CSRF note: SameSite=Lax on the session cookie prevents cross-site POST
	// requests from including the cookie, providing CSRF protection for all
	// state-changing endpoints without needing a token-based scheme.

	// Rate limiters for auth endpoints
	loginLimiter := NewRateLimiter(5.0/60.0, 5)
	registerLimiter := NewRateLimiter(3.0/60.0, 3)

	// Auth routes (public) with rate limiting
	s.router.Handle("/api/auth/register", registerLimiter.Middleware(http.HandlerFunc(s.handlers.Register))).Methods("POST")
	s.router.Handle("/api/auth/login", loginLimiter.Middleware(http.HandlerFunc(s.handlers.Login))).Methods("POST")

	// Protected routes
	protected := s.router.PathPrefix("/api").Subrouter()
	protected.Use(AuthMiddleware(authService))

	protected.HandleFunc("/auth/logout", s.handlers.Logout).Methods("POST")

	protected.HandleFunc("/lobby/games", s.handlers.ListGames).Methods("GET")
	protected.HandleFunc("/lobby/packs", s.handlers.ListPacks).Methods("GET")
	protected.HandleFunc("/lobby/create", s.handlers.CreateGame).Methods("POST")
	protected.HandleFunc("/lobby/join/{gameId}", s.handlers.JoinGame).Methods("POST")
	protected.HandleFunc("/lobby/leave", s.handlers.LeaveGame).Methods("POST")
	protected.HandleFunc("/lobby/games/{gameId}", s.handlers.GetGame).Methods("GET")

	protected.HandleFunc("/games/{gameId}/orders", s.handlers.PlaceOrder).Methods("POST")
	protected.HandleFunc("/games/{gameId}/transfer", s.handlers.Transfer).Methods("POST")
	protected.HandleFunc("/games/{gameId}/report", s.handlers.GetReport).Methods("GET")

	protected.HandleFunc("/games/{gameId}/round/start", s.handlers.StartRound).Methods("POST")
	protected.HandleFunc("/games/{gameId}/round/end", s.handlers.EndRound).Methods("POST")
	protected.HandleFunc("/games/{gameId}/end", s.handlers.EndGame).Methods("POST")

	protected.HandleFunc("/games/{gameId}/negotiations/request", s.handlers.RequestNegotiation).Methods("POST")
	protected.HandleFunc("/games/{gameId}/negotiations/accept", s.handlers.AcceptNegotiation).Methods("POST")
	protected.HandleFunc("/games/{gameId}/negotiations/deny", s.handlers.DenyNegotiation).Methods("POST")
	protected.HandleFunc("/games/{gameId}/negotiations/end", s.handlers.EndNegotiation).Methods("POST")

	// WebSocket route (protected)
	wsRouter := s.router.PathPrefix("/ws").Subrouter()
	wsRouter.Use(AuthMiddleware(authService))
	wsRouter.HandleFunc("/game/{gameId}", s.handlers.HandleWebSocket)

	// Catch-all for unmatched routes
	s.router.PathPrefix("/").HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, map[string]string{"error": "not found"})
	})
}

func (s *Server) GetHTTPServer(addr string) *http.Server {
	return &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       120 * time.Second,
	}
}
