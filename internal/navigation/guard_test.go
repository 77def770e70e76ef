package navigation_test

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"welfarewatch-web/internal/domain"
	"welfarewatch-web/internal/navigation"
	"welfarewatch-web/internal/testutil"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
)

type flags struct {
	loggedIn  bool
	moderator bool
}

func (f flags) Snapshot() domain.Session {
	if !f.loggedIn {
		return domain.Session{}
	}
	userType := domain.UserTypeNormal
	if f.moderator {
		userType = domain.UserTypeModerator
	}
	return domain.Session{Token: "tok", User: testutil.NewTestProfile(testutil.WithUserType(userType))}
}

type countingSource struct {
	flags
	calls atomic.Int32
}

func (c *countingSource) Snapshot() domain.Session {
	c.calls.Add(1)
	return c.flags.Snapshot()
}

func newRouter(source navigation.FlagSource) http.Handler {
	r := chi.NewRouter()
	for _, route := range navigation.Routes() {
		r.With(navigation.Guard(source, route, "WelfareWatch")).Get(route.Pattern, func(w http.ResponseWriter, r *http.Request) {
			_, _ = w.Write([]byte(navigation.TitleFrom(r.Context())))
		})
	}
	return r
}

func TestGuard(t *testing.T) {
	tests := []struct {
		name     string
		source   flags
		target   string
		status   int
		location string
		title    string
	}{
		{"public", flags{}, "/companies/3", http.StatusOK, "", "Company Details - WelfareWatch"},
		{"auth_required", flags{}, "/reviews/create", http.StatusSeeOther, "/auth/login?redirect=%2Freviews%2Fcreate", ""},
		{"auth_required_with_query", flags{}, "/my-reviews?page=2", http.StatusSeeOther, "/auth/login?redirect=%2Fmy-reviews%3Fpage%3D2", ""},
		{"logged_in", flags{loggedIn: true}, "/profile", http.StatusOK, "", "Profile - WelfareWatch"},
		{"not_moderator", flags{loggedIn: true}, "/admin/reports", http.StatusSeeOther, "/", ""},
		{"moderator", flags{loggedIn: true, moderator: true}, "/admin", http.StatusOK, "", "Moderation Dashboard - WelfareWatch"},
		{"login_page_for_logged_in_user", flags{loggedIn: true}, "/auth/login", http.StatusOK, "", "Log In - WelfareWatch"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := httptest.NewRecorder()
			newRouter(tt.source).ServeHTTP(w, httptest.NewRequest(http.MethodGet, tt.target, nil))

			if tt.location != "" {
				testutil.AssertRedirect(t, w, tt.location)
				return
			}
			testutil.AssertStatusCode(t, w, tt.status)
			assert.Equal(t, tt.title, w.Body.String())
		})
	}
}

func TestGuard_ReadsSessionOnce(t *testing.T) {
	source := &countingSource{flags: flags{loggedIn: true, moderator: true}}
	router := newRouter(source)

	w := httptest.NewRecorder()
	router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/admin", nil))

	testutil.AssertStatusCode(t, w, http.StatusOK)
	assert.Equal(t, int32(1), source.calls.Load())
}
