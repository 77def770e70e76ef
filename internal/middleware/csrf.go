package middleware

import (
	"context"
	"crypto/hmac"
	"log/slog"
	"net/http"
	"strings"

	"welfarewatch-web/internal/observability"
)

type csrfKey struct{}

// CSRFField is the form field views embed the token in
const CSRFField = "csrf_token"

// CSRF rejects state-changing requests that do not carry the process token.
// The token is generated once at startup and handed to views via the context.
//
// Token sources (checked in order):
// - Form field: csrf_token
// - Header: X-CSRF-Token
func CSRF(token string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			r = r.WithContext(context.WithValue(r.Context(), csrfKey{}, token))

			if isSafeMethod(r.Method) || isExemptPath(r.URL.Path) {
				next.ServeHTTP(w, r)
				return
			}

			submitted := extractCSRFToken(r)
			if submitted == "" {
				logCSRFFailure(r, "missing token")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			if !hmac.Equal([]byte(token), []byte(submitted)) {
				logCSRFFailure(r, "invalid token")
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}

// CSRFToken returns the token views must embed in their forms
func CSRFToken(ctx context.Context) string {
	token, _ := ctx.Value(csrfKey{}).(string)
	return token
}

func isSafeMethod(method string) bool {
	return method == http.MethodGet ||
		method == http.MethodHead ||
		method == http.MethodOptions
}

func isExemptPath(path string) bool {
	for _, exempt := range []string{"/health", "/metrics", "/ws/"} {
		if strings.HasPrefix(path, exempt) {
			return true
		}
	}
	return false
}

func extractCSRFToken(r *http.Request) string {
	if token := r.FormValue(CSRFField); token != "" {
		return token
	}
	return r.Header.Get("X-CSRF-Token")
}

func logCSRFFailure(r *http.Request, reason string) {
	observability.FromContext(r.Context()).Warn("CSRF validation failed",
		slog.String("reason", reason),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
		slog.String("remote_addr", r.RemoteAddr),
	)
}
