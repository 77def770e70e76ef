package middleware

import (
	"net/http"

	"welfarewatch-web/internal/observability"
	"welfarewatch-web/internal/session"

	chimiddleware "github.com/go-chi/chi/v5/middleware"
)

// Session hands the store to views through the request context and tags the
// request logger with the request id and the current username.
func Session(store *session.Store) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := session.NewContext(r.Context(), store)

			if id := chimiddleware.GetReqID(ctx); id != "" {
				ctx = observability.WithRequestID(ctx, id)
			}
			if user := store.User(); user != nil {
				ctx = observability.WithUsername(ctx, user.Username)
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
