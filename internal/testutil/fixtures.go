package testutil

import (
	"fmt"
	"sync/atomic"
	"time"

	"welfarewatch-web/internal/domain"

	"github.com/golang-jwt/jwt/v5"
)

// Counter for generating unique IDs
var idCounter atomic.Int64

// ProfileOptions allows customizing profile fixture creation
type ProfileOptions struct {
	ID       int64
	Username string
	Email    string
	UserType string
}

// NewTestProfile creates a normal user profile with sensible defaults
func NewTestProfile(opts ...func(*ProfileOptions)) *domain.Profile {
	id := idCounter.Add(1)
	o := &ProfileOptions{
		ID:       id,
		Username: fmt.Sprintf("testuser%d", id),
		UserType: domain.UserTypeNormal,
	}
	o.Email = o.Username + "@example.com"

	for _, opt := range opts {
		opt(o)
	}

	return &domain.Profile{
		ID:        o.ID,
		Username:  o.Username,
		Email:     o.Email,
		UserType:  o.UserType,
		CreatedAt: time.Now(),
		UpdatedAt: time.Now(),
	}
}

// WithUsername sets the username
func WithUsername(username string) func(*ProfileOptions) {
	return func(o *ProfileOptions) {
		o.Username = username
	}
}

// WithUserType sets the user type (normal, moderator, admin)
func WithUserType(userType string) func(*ProfileOptions) {
	return func(o *ProfileOptions) {
		o.UserType = userType
	}
}

// NewTestToken returns a signed JWT for userID expiring at exp, shaped like
// the backend's tokens.
func NewTestToken(userID int64, exp time.Time) string {
	claims := jwt.MapClaims{
		"user_id": userID,
		"exp":     exp.Unix(),
		"iat":     time.Now().Unix(),
	}
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("test-secret"))
	if err != nil {
		panic("sign test token: " + err.Error())
	}
	return token
}
