package navigation

import (
	"context"
	"log/slog"
	"net/http"

	"welfarewatch-web/internal/domain"
	"welfarewatch-web/internal/observability"
)

// FlagSource hands out a consistent copy of the current session
type FlagSource interface {
	Snapshot() domain.Session
}

type titleKey struct{}

// WithTitle stores the document title in ctx
func WithTitle(ctx context.Context, title string) context.Context {
	return context.WithValue(ctx, titleKey{}, title)
}

// TitleFrom returns the document title set by Guard
func TitleFrom(ctx context.Context) string {
	title, _ := ctx.Value(titleKey{}).(string)
	return title
}

// Guard runs before the view of route: it sets the title, then either lets the
// request through or answers with a 303 redirect.
func Guard(source FlagSource, route Route, site string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := WithTitle(r.Context(), Title(route.RouteRequirement, site))

			snap := source.Snapshot()
			flags := Flags{LoggedIn: snap.IsLoggedIn(), Moderator: snap.IsModerator()}
			decision := Decide(route.RouteRequirement, flags, r.URL)
			observability.NavigationDecisionsTotal.WithLabelValues(decision.Outcome()).Inc()

			if decision.Kind == Redirect {
				observability.FromContext(ctx).Debug("navigation redirected",
					slog.String("route", route.Name),
					slog.String("from", r.URL.RequestURI()),
					slog.String("to", decision.Location()))
				http.Redirect(w, r, decision.Location(), http.StatusSeeOther)
				return
			}

			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}
