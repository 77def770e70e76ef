package navigation

import (
	"net/url"
	"strings"
)

// Flags are the session facts a decision depends on
type Flags struct {
	LoggedIn  bool
	Moderator bool
}

// DecisionKind is the outcome of a navigation decision
type DecisionKind int

const (
	Proceed DecisionKind = iota
	Redirect
)

// RedirectParam carries the path to return to after logging in
const RedirectParam = "redirect"

// Decision is exactly one of: proceed, redirect to login with a return path,
// or redirect home.
type Decision struct {
	Kind  DecisionKind
	To    string
	Query url.Values
}

// Location is the redirect target including the query
func (d Decision) Location() string {
	if len(d.Query) == 0 {
		return d.To
	}
	return d.To + "?" + d.Query.Encode()
}

// Outcome names the decision for logs and metrics
func (d Decision) Outcome() string {
	switch {
	case d.Kind == Proceed:
		return "proceed"
	case d.To == LoginPath:
		return "login"
	default:
		return "home"
	}
}

// Decide applies the access rules of req to a navigation towards target.
// Authentication is checked before the moderator role.
func Decide(req RouteRequirement, flags Flags, target *url.URL) Decision {
	if req.RequiresAuth && !flags.LoggedIn {
		return Decision{
			Kind:  Redirect,
			To:    LoginPath,
			Query: url.Values{RedirectParam: []string{fullPath(target)}},
		}
	}
	if req.RequiresModerator && !flags.Moderator {
		return Decision{Kind: Redirect, To: HomePath}
	}
	return Decision{Kind: Proceed}
}

// Title is the document title for a route
func Title(req RouteRequirement, site string) string {
	if req.Title == "" {
		return site
	}
	return req.Title + " - " + site
}

// ReturnTarget picks the post-login destination from a login query. Only
// local paths are honoured; anything else goes home.
func ReturnTarget(query url.Values) string {
	target := query.Get(RedirectParam)
	if target == "" || !strings.HasPrefix(target, "/") || strings.HasPrefix(target, "//") || strings.HasPrefix(target, "/\\") {
		return HomePath
	}
	return target
}

func fullPath(u *url.URL) string {
	if u == nil {
		return HomePath
	}
	path := u.EscapedPath()
	if path == "" {
		path = HomePath
	}
	if u.RawQuery != "" {
		path += "?" + u.RawQuery
	}
	return path
}
