package domain

import "time"

// User types returned by the backend in Profile.UserType
const (
	UserTypeNormal    = "normal"
	UserTypeModerator = "moderator"
	UserTypeAdmin     = "admin"
)

// Profile is the account record returned by the backend for the current user.
// The client never edits it field by field; profile updates replace it wholesale.
type Profile struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	Phone        string    `json:"phone,omitempty"`
	UserType     string    `json:"user_type"`
	Avatar       string    `json:"avatar,omitempty"`
	Bio          string    `json:"bio,omitempty"`
	ReviewCount  int       `json:"review_count"`
	CommentCount int       `json:"comment_count"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// IsPrivileged reports whether the profile holds a moderation role.
func (p *Profile) IsPrivileged() bool {
	if p == nil {
		return false
	}
	return p.UserType == UserTypeModerator || p.UserType == UserTypeAdmin
}

// Credentials is the login request body
type Credentials struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Registration is the register request body
type Registration struct {
	Username        string `json:"username"`
	Email           string `json:"email"`
	Password        string `json:"password"`
	PasswordConfirm string `json:"password_confirm"`
	Phone           string `json:"phone,omitempty"`
}

// ProfileUpdate is the body of a profile update
type ProfileUpdate struct {
	Email  string `json:"email,omitempty"`
	Phone  string `json:"phone,omitempty"`
	Avatar string `json:"avatar,omitempty"`
	Bio    string `json:"bio,omitempty"`
}

// PasswordChange is the body of a password change
type PasswordChange struct {
	OldPassword        string `json:"old_password"`
	NewPassword        string `json:"new_password"`
	NewPasswordConfirm string `json:"new_password_confirm"`
}

// AuthResult is the login response: the bearer token and the logged in profile
type AuthResult struct {
	Message string   `json:"message,omitempty"`
	Token   string   `json:"token"`
	User    *Profile `json:"user"`
}

// RegisterResult is the register response
type RegisterResult struct {
	Message string   `json:"message,omitempty"`
	User    *Profile `json:"user"`
}
