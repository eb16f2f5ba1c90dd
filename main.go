package main

import (
	"context"
	"log"
	stdhttp "net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"planetwars/auth"
	"planetwars/clock"
	"planetwars/config"
	"planetwars/game"
	httpserver "planetwars/http"
	"planetwars/pack"
	"planetwars/store"
	"planetwars/ws"
)

func main() {
	log.Println("Starting Planet Wars server...")

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}
	log.Printf("Configuration loaded - Server port: %s, DB path: %s", cfg.ServerPort, cfg.DBPath)

	// Load planet packs
	packs, err := pack.Load(cfg.PackPath)
	if err != nil {
		log.Fatalf("Failed to load planet packs: %v", err)
	}
	log.Printf("Loaded %d planet packs from %s", len(packs), cfg.PackPath)

	// Initialize database
	db, err := store.NewSQLiteStore(cfg.DBPath)
	if err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}
	defer db.Close()
	log.Println("Database initialized successfully")

	// Initialize services
	sessionManager := auth.NewSessionManager()
	authService := auth.NewService(db, sessionManager)
	lobby := game.NewLobby(db, packs)
	ledger := game.NewLedger(db, cfg.Game)
	engine := game.NewEngine(db, cfg.Game)
	negotiations := game.NewNegotiations(db)
	reports := game.NewReports(db, cfg.Game)
	wsManager := ws.NewManager()
	scheduler := clock.NewScheduler(engine, wsManager, cfg.Game.RoundLength)
	defer scheduler.Stop()

	// Initialize HTTP server
	handlers := httpserver.NewHandlers(authService, lobby, ledger, engine, negotiations, reports, scheduler, wsManager, db)
	server := httpserver.NewServer(handlers, authService)
	srv := server.GetHTTPServer(cfg.ServerPort)

	// Start server in a goroutine
	go func() {
		log.Printf("Server listening on http://localhost%s", cfg.ServerPort)
		if err := srv.ListenAndServe(); err != nil && err != stdhttp.ErrServerClosed {
			log.Fatalf("Server error: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	log.Println("Shutting down gracefully...")

	// Create shutdown context with timeout
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	// Shutdown HTTP server gracefully
	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped")
}
