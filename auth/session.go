package auth

import (
	"crypto/rand"
	"encoding/base64"
	"net/http"
	"sync"
	"time"
)

const sessionTTL = 48 * time.Hour

type session struct {
	commanderID int64
	expiresAt   time.Time
}

// SessionManager keeps sessions in memory; a restart logs everyone out,
// which is acceptable for games played in a single sitting.
type SessionManager struct {
	sessions map[string]*session
	mu       sync.RWMutex
}

func NewSessionManager() *SessionManager {
	sm := &SessionManager{
		sessions: make(map[string]*session),
	}
	go sm.cleanupExpired()
	return sm
}

func (sm *SessionManager) CreateSession(commanderID int64) (string, error) {
	sessionID, err := generateSessionID()
	if err != nil {
		return "", err
	}

	sm.mu.Lock()
	sm.sessions[sessionID] = &session{
		commanderID: commanderID,
		expiresAt:   time.Now().Add(sessionTTL),
	}
	sm.mu.Unlock()

	return sessionID, nil
}

func (sm *SessionManager) GetCommanderID(sessionID string) (int64, bool) {
	sm.mu.RLock()
	sess, exists := sm.sessions[sessionID]
	sm.mu.RUnlock()

	if !exists {
		return 0, false
	}
	if time.Now().After(sess.expiresAt) {
		sm.DeleteSession(sessionID)
		return 0, false
	}
	return sess.commanderID, true
}

func (sm *SessionManager) DeleteSession(sessionID string) {
	sm.mu.Lock()
	delete(sm.sessions, sessionID)
	sm.mu.Unlock()
}

func (sm *SessionManager) SetSessionCookie(w http.ResponseWriter, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    sessionID,
		Path:     "/",
		MaxAge:   int(sessionTTL.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

func (sm *SessionManager) ClearSessionCookie(w http.ResponseWriter) {
	http.SetCookie(w, &http.Cookie{
		Name:     "session_id",
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
	})
}

func SessionFromRequest(r *http.Request) string {
	cookie, err := r.Cookie("session_id")
	if err != nil {
		return ""
	}
	return cookie.Value
}

func (sm *SessionManager) cleanupExpired() {
	ticker := time.NewTicker(time.Hour)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()
		sm.mu.Lock()
		for id, sess := range sm.sessions {
			if now.After(sess.expiresAt) {
				delete(sm.sessions, id)
			}
		}
		sm.mu.Unlock()
	}
}

func generateSessionID() (string, error) {
	bytes := make([]byte, 32)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return base64.URLEncoding.EncodeToString(bytes), nil
}
