// Package session holds the authenticated actor of the web client: the bearer
// token and the user profile, mirrored to a durable token slot.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"welfarewatch-web/internal/domain"
	"welfarewatch-web/internal/observability"
)

var (
	ErrNoToken      = errors.New("no token")
	ErrTokenExpired = errors.New("token expired")
	ErrNoUser       = errors.New("no user profile")
)

// API is the part of the backend the store talks to
type API interface {
	Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error)
	Register(ctx context.Context, reg domain.Registration) (*domain.RegisterResult, error)
	CurrentUser(ctx context.Context) (*domain.Profile, error)
	UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Profile, error)
	SetAuthToken(token string)
}

// TokenStorage is the durable token slot. Load returns "" when nothing is stored.
type TokenStorage interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Delete(ctx context.Context) error
}

// Store is the single owner of session state. Writes are atomic; readers
// never observe a token without its user or the other way round.
type Store struct {
	api     API
	storage TokenStorage
	now     func() time.Time

	mu      sync.RWMutex
	session domain.Session

	// persistMu orders slot writes; it is never taken while mu is held
	persistMu sync.Mutex
}

func NewStore(api API, storage TokenStorage) *Store {
	if storage == nil {
		storage = NewMemoryTokenStorage()
	}
	return &Store{
		api:     api,
		storage: storage,
		now:     time.Now,
	}
}

// Hydrate loads the durable token into memory. The user stays unknown until
// CheckAuth confirms the token with the backend.
func (s *Store) Hydrate(ctx context.Context) error {
	token, err := s.storage.Load(ctx)
	if err != nil {
		return fmt.Errorf("failed to load token: %w", err)
	}

	s.mu.Lock()
	s.session = domain.Session{Token: token}
	s.mu.Unlock()

	s.api.SetAuthToken(token)
	return nil
}

// SetAuth installs token and user together and points the gateway at the
// token, then persists it. A storage failure is logged; the in-memory session
// is kept. The slot is written outside the lock so readers never wait on it.
func (s *Store) SetAuth(ctx context.Context, token string, user *domain.Profile) {
	s.mu.Lock()
	s.session = domain.Session{Token: token, User: user}
	s.api.SetAuthToken(token)
	s.mu.Unlock()

	s.persist(ctx)

	if user != nil {
		observability.FromContext(ctx).Info("session established",
			slog.String("username", user.Username),
			slog.String("user_type", user.UserType))
	}
}

// ClearAuth empties the session, the durable slot and the default header.
// Calling it on an empty session is a no-op apart from the slot delete.
func (s *Store) ClearAuth(ctx context.Context) {
	s.mu.Lock()
	wasLoggedIn := s.resetLocked()
	s.mu.Unlock()

	s.forget(ctx, wasLoggedIn)
}

// resetLocked empties the in-memory session. s.mu must be held.
func (s *Store) resetLocked() bool {
	wasLoggedIn := !s.session.IsEmpty()
	s.session = domain.Session{}
	s.api.SetAuthToken("")
	return wasLoggedIn
}

func (s *Store) forget(ctx context.Context, wasLoggedIn bool) {
	s.persist(ctx)
	if wasLoggedIn {
		observability.FromContext(ctx).Info("session cleared")
	}
}

// persist mirrors the current in-memory token to the slot. It reads the token
// after taking persistMu, so the last write always matches memory even when
// writers race.
func (s *Store) persist(ctx context.Context) {
	s.persistMu.Lock()
	defer s.persistMu.Unlock()

	token := s.Token()
	var err error
	if token == "" {
		err = s.storage.Delete(ctx)
	} else {
		err = s.storage.Save(ctx, token)
	}
	if err != nil {
		observability.FromContext(ctx).Error("failed to persist token",
			slog.String("error", err.Error()))
	}
}

// Logout ends the session locally. The backend is not told.
func (s *Store) Logout(ctx context.Context) {
	s.ClearAuth(ctx)
}

// CheckAuth confirms the current token with the backend and installs the
// returned profile. Any failure, including a locally expired JWT, clears the
// session. With no token it does nothing and returns ErrNoToken.
func (s *Store) CheckAuth(ctx context.Context) error {
	token := s.Token()
	if token == "" {
		return ErrNoToken
	}

	if Expired(token, s.now()) {
		s.clearIfCurrent(ctx, token)
		return ErrTokenExpired
	}

	s.api.SetAuthToken(token)
	user, err := s.api.CurrentUser(ctx)
	if err != nil {
		s.clearIfCurrent(ctx, token)
		return fmt.Errorf("failed to verify session: %w", err)
	}

	s.mu.Lock()
	if s.session.Token == token {
		s.session.User = user
	}
	s.mu.Unlock()
	return nil
}

// clearIfCurrent clears the session only if it still holds token, so a slow
// check cannot discard a login that happened meanwhile. The compare and the
// reset happen under one lock.
func (s *Store) clearIfCurrent(ctx context.Context, token string) {
	s.mu.Lock()
	if s.session.Token != token {
		s.mu.Unlock()
		return
	}
	wasLoggedIn := s.resetLocked()
	s.mu.Unlock()

	s.forget(ctx, wasLoggedIn)
}

// Login authenticates against the backend and installs the resulting session.
// Backend errors are returned unchanged.
func (s *Store) Login(ctx context.Context, creds domain.Credentials) (*domain.Profile, error) {
	result, err := s.api.Login(ctx, creds)
	if err != nil {
		return nil, err
	}
	if result.Token == "" {
		return nil, fmt.Errorf("login response: %w", ErrNoToken)
	}
	if result.User == nil {
		return nil, fmt.Errorf("login response: %w", ErrNoUser)
	}

	s.SetAuth(ctx, result.Token, result.User)
	return result.User, nil
}

// Register creates an account without logging in
func (s *Store) Register(ctx context.Context, reg domain.Registration) (*domain.RegisterResult, error) {
	return s.api.Register(ctx, reg)
}

// UpdateProfile saves profile changes and replaces the session user with the
// backend's answer.
func (s *Store) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Profile, error) {
	user, err := s.api.UpdateProfile(ctx, update)
	if err != nil {
		return nil, err
	}

	s.mu.Lock()
	if s.session.Token != "" {
		s.session.User = user
	}
	s.mu.Unlock()
	return user, nil
}

// Snapshot returns a consistent copy of the session
func (s *Store) Snapshot() domain.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := domain.Session{Token: s.session.Token}
	if s.session.User != nil {
		user := *s.session.User
		snap.User = &user
	}
	return snap
}

func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.Token
}

func (s *Store) User() *domain.Profile {
	return s.Snapshot().User
}

func (s *Store) IsLoggedIn() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.IsLoggedIn()
}

func (s *Store) IsModerator() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.session.IsModerator()
}
