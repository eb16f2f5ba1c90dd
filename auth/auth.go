package auth

import (
	"errors"
	"fmt"
	"regexp"

	"golang.org/x/crypto/bcrypt"

	"planetwars/store"
)

var (
	ErrInvalidUsername    = errors.New("callsign must be 3-24 characters: letters, digits, underscores")
	ErrInvalidPassword    = errors.New("password must be at least 8 characters and contain both letters and digits")
	ErrUserExists         = errors.New("callsign already taken")
	ErrInvalidCredentials = errors.New("invalid callsign or password")
)

var usernameRe = regexp.MustCompile(`^[a-zA-Z0-9_]{3,24}$`)

// Service registers commanders and checks their credentials.
type Service struct {
	store   store.Store
	session *SessionManager
}

func NewService(st store.Store, sessions *SessionManager) *Service {
	return &Service{store: st, session: sessions}
}

func (s *Service) Register(username, password string) error {
	username = SanitizeUsername(username)

	if !usernameRe.MatchString(username) {
		return ErrInvalidUsername
	}
	if err := validatePassword(password); err != nil {
		return err
	}

	existing, err := s.store.GetCommanderByUsername(username)
	if err != nil {
		return fmt.Errorf("failed to check existing commander: %w", err)
	}
	if existing != nil {
		return ErrUserExists
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	if _, err := s.store.CreateCommander(username, string(hash)); err != nil {
		return fmt.Errorf("failed to create commander: %w", err)
	}
	return nil
}

func (s *Service) Login(username, password string) (string, error) {
	username = SanitizeUsername(username)

	commander, err := s.store.GetCommanderByUsername(username)
	if err != nil {
		return "", fmt.Errorf("failed to get commander: %w", err)
	}
	if commander == nil {
		return "", ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(commander.PasswordHash), []byte(password)); err != nil {
		return "", ErrInvalidCredentials
	}

	sessionID, err := s.session.CreateSession(commander.ID)
	if err != nil {
		return "", fmt.Errorf("failed to create session: %w", err)
	}
	return sessionID, nil
}

func (s *Service) Logout(sessionID string) {
	s.session.DeleteSession(sessionID)
}

func (s *Service) ValidateSession(sessionID string) (int64, bool) {
	return s.session.GetCommanderID(sessionID)
}

func (s *Service) Sessions() *SessionManager {
	return s.session
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return ErrInvalidPassword
	}

	hasLetter := false
	hasDigit := false
	for _, c := range password {
		switch {
		case c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z':
			hasLetter = true
		case c >= '0' && c <= '9':
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return ErrInvalidPassword
	}
	return nil
}
