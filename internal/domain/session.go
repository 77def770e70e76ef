package domain

// Session is the authenticated actor as seen by the client.
// The zero value is the logged out session.
type Session struct {
	Token string   `json:"token"`
	User  *Profile `json:"user,omitempty"`
}

// IsLoggedIn holds iff both a token and a user are present.
func (s Session) IsLoggedIn() bool {
	return s.Token != "" && s.User != nil
}

// IsModerator holds iff the session is logged in and the user is a moderator or admin.
func (s Session) IsModerator() bool {
	return s.IsLoggedIn() && s.User.IsPrivileged()
}

// IsEmpty reports whether neither token nor user are set.
func (s Session) IsEmpty() bool {
	return s.Token == "" && s.User == nil
}
