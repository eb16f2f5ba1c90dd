// Package clock arms a deadline for each running round and ends the round
// when it expires. It is a thin client of the settlement engine: an admin
// ending a round early just cancels the pending deadline.
package clock

import (
	"context"
	"log"
	"sync"
	"time"

	"planetwars/game"
)

// Broadcaster delivers events to a game's websocket room.
type Broadcaster interface {
	Broadcast(gameID int64, event game.Event)
}

type Scheduler struct {
	engine *game.Engine
	events Broadcaster
	length time.Duration

	mu      sync.Mutex
	cancels map[int64]context.CancelFunc
}

func NewScheduler(engine *game.Engine, events Broadcaster, roundLength time.Duration) *Scheduler {
	return &Scheduler{
		engine:  engine,
		events:  events,
		length:  roundLength,
		cancels: make(map[int64]context.CancelFunc),
	}
}

// Arm starts the countdown for a round. Any previous countdown for the same
// game is cancelled first.
func (s *Scheduler) Arm(gameID, round int64) {
	ctx, cancel := context.WithCancel(context.Background())

	s.mu.Lock()
	if prev, ok := s.cancels[gameID]; ok {
		prev()
	}
	s.cancels[gameID] = cancel
	s.mu.Unlock()

	go s.run(ctx, gameID, round)
}

// Cancel stops the countdown, if any. Safe to call for games without one.
func (s *Scheduler) Cancel(gameID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if cancel, ok := s.cancels[gameID]; ok {
		cancel()
		delete(s.cancels, gameID)
	}
}

// Stop cancels every pending countdown. Used on shutdown.
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for gameID, cancel := range s.cancels {
		cancel()
		delete(s.cancels, gameID)
	}
}

func (s *Scheduler) run(ctx context.Context, gameID, round int64) {
	deadline := time.NewTimer(s.length)
	defer deadline.Stop()

	for _, warning := range []time.Duration{5 * time.Minute, 1 * time.Minute} {
		if s.length > warning {
			go s.warnAt(ctx, gameID, round, s.length-warning, warning)
		}
	}

	select {
	case <-ctx.Done():
		return
	case <-deadline.C:
	}

	s.Cancel(gameID)
	summary, reason, err := s.engine.EndCurrentRound(gameID)
	if err != nil {
		log.Printf("game %d: timed round end failed: %v", gameID, err)
		return
	}
	if reason != game.Success {
		// The round was already ended by hand; nothing to do.
		log.Printf("game %d: timed round end skipped: %s", gameID, reason)
		return
	}
	s.events.Broadcast(gameID, game.Event{
		Type:    "round_ended",
		GameID:  gameID,
		Payload: summary,
	})
}

func (s *Scheduler) warnAt(ctx context.Context, gameID, round int64, after, left time.Duration) {
	timer := time.NewTimer(after)
	defer timer.Stop()

	select {
	case <-ctx.Done():
	case <-timer.C:
		s.events.Broadcast(gameID, game.Event{
			Type:   "round_warning",
			GameID: gameID,
			Payload: game.RoundWarningPayload{
				Round:       round,
				SecondsLeft: int(left.Seconds()),
			},
		})
	}
}
