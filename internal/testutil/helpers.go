package testutil

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

// AssertStatusCode fails if the response status code doesn't match expected
func AssertStatusCode(t *testing.T, w *httptest.ResponseRecorder, expected int) {
	t.Helper()
	if w.Code != expected {
		t.Errorf("expected status %d, got %d. Body: %s", expected, w.Code, w.Body.String())
	}
}

// AssertRedirect fails unless the response is a See Other redirect to location
func AssertRedirect(t *testing.T, w *httptest.ResponseRecorder, location string) {
	t.Helper()
	AssertStatusCode(t, w, http.StatusSeeOther)
	if got := w.Header().Get("Location"); got != location {
		t.Errorf("expected redirect to %q, got %q", location, got)
	}
}

// AssertBodyContains fails if the response body doesn't contain substring
func AssertBodyContains(t *testing.T, w *httptest.ResponseRecorder, substring string) {
	t.Helper()
	if !strings.Contains(w.Body.String(), substring) {
		t.Errorf("expected body to contain %q, got: %s", substring, w.Body.String())
	}
}

// NewFormRequest creates a POST request with a urlencoded form body
func NewFormRequest(t *testing.T, target string, form url.Values) *http.Request {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, target, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return req
}

// BearerToken returns the token of an "Authorization: Bearer" header, or ""
func BearerToken(r *http.Request) string {
	return strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
}
