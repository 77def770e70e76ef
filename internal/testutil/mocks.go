// Package testutil provides shared test utilities, mocks, and fixtures
// for testing the welfarewatch web client.
package testutil

import (
	"context"
	"errors"
	"sync"

	"welfarewatch-web/internal/domain"
	"welfarewatch-web/internal/gateway"
)

// Common test errors
var (
	ErrMockNotImplemented = errors.New("mock function not implemented")
)

// MockNotifier records every notification
type MockNotifier struct {
	mu            sync.Mutex
	Notifications []gateway.Notification
}

func (m *MockNotifier) Notify(ctx context.Context, n gateway.Notification) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Notifications = append(m.Notifications, n)
}

// Messages returns the recorded notification texts in order
func (m *MockNotifier) Messages() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, 0, len(m.Notifications))
	for _, n := range m.Notifications {
		out = append(out, n.Message)
	}
	return out
}

// MockRedirector records every hard redirect
type MockRedirector struct {
	mu        sync.Mutex
	Locations []string
}

func (m *MockRedirector) HardRedirect(ctx context.Context, location string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Locations = append(m.Locations, location)
}

// Count returns the number of hard redirects performed
func (m *MockRedirector) Count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.Locations)
}

// MockTokenSlot is an in-memory durable token slot with call counters
type MockTokenSlot struct {
	mu      sync.Mutex
	Value   string
	LoadErr error
	SaveErr error
	Saves   int
	Deletes int

	// SaveHook, when set, runs at the start of Save without the slot lock held
	SaveHook func(token string)
}

func (m *MockTokenSlot) Load(ctx context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.LoadErr != nil {
		return "", m.LoadErr
	}
	return m.Value, nil
}

func (m *MockTokenSlot) Save(ctx context.Context, token string) error {
	if m.SaveHook != nil {
		m.SaveHook(token)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Saves++
	if m.SaveErr != nil {
		return m.SaveErr
	}
	m.Value = token
	return nil
}

func (m *MockTokenSlot) Delete(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.Deletes++
	m.Value = ""
	return nil
}

// Token returns the stored token
func (m *MockTokenSlot) Token() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.Value
}

// MockAPI implements the backend calls the session store needs
type MockAPI struct {
	mu sync.Mutex

	// Function overrides - set these to customize behavior
	LoginFunc         func(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error)
	RegisterFunc      func(ctx context.Context, reg domain.Registration) (*domain.RegisterResult, error)
	CurrentUserFunc   func(ctx context.Context) (*domain.Profile, error)
	UpdateProfileFunc func(ctx context.Context, update domain.ProfileUpdate) (*domain.Profile, error)

	// AuthTokens records every SetAuthToken call in order
	AuthTokens       []string
	CurrentUserCalls int
}

func (m *MockAPI) Login(ctx context.Context, creds domain.Credentials) (*domain.AuthResult, error) {
	if m.LoginFunc != nil {
		return m.LoginFunc(ctx, creds)
	}
	return nil, ErrMockNotImplemented
}

func (m *MockAPI) Register(ctx context.Context, reg domain.Registration) (*domain.RegisterResult, error) {
	if m.RegisterFunc != nil {
		return m.RegisterFunc(ctx, reg)
	}
	return nil, ErrMockNotImplemented
}

func (m *MockAPI) CurrentUser(ctx context.Context) (*domain.Profile, error) {
	m.mu.Lock()
	m.CurrentUserCalls++
	m.mu.Unlock()
	if m.CurrentUserFunc != nil {
		return m.CurrentUserFunc(ctx)
	}
	return nil, ErrMockNotImplemented
}

func (m *MockAPI) UpdateProfile(ctx context.Context, update domain.ProfileUpdate) (*domain.Profile, error) {
	if m.UpdateProfileFunc != nil {
		return m.UpdateProfileFunc(ctx, update)
	}
	return nil, ErrMockNotImplemented
}

func (m *MockAPI) SetAuthToken(token string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.AuthTokens = append(m.AuthTokens, token)
}

// LastAuthToken returns the most recent SetAuthToken argument
func (m *MockAPI) LastAuthToken() (string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.AuthTokens) == 0 {
		return "", false
	}
	return m.AuthTokens[len(m.AuthTokens)-1], true
}
