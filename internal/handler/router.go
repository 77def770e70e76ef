package handler

import (
	"net/http"

	"welfarewatch-web/internal/middleware"
	"welfarewatch-web/internal/navigation"
	"welfarewatch-web/internal/session"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// RouterConfig collects what the view router needs
type RouterConfig struct {
	Views        *Views
	Events       *EventsHandler
	Store        *session.Store
	Site         string
	CSRFToken    string
	AllowedHosts []string
	FormLimiter  *middleware.RateLimiter
	ReadyChecks  map[string]CheckFunc
}

// NewRouter wires every view behind its navigation guard. Only page loads are
// guarded; form posts rely on the backend and the gateway's 401 handling.
func NewRouter(cfg RouterConfig) http.Handler {
	v := cfg.Views

	r := chi.NewRouter()
	r.Use(chimiddleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.LocalOnly(cfg.AllowedHosts))
	r.Use(middleware.Metrics())
	r.Use(middleware.Session(cfg.Store))

	r.Get("/health", Health)
	r.Get("/health/ready", Ready(cfg.ReadyChecks))
	r.Handle("/metrics", promhttp.Handler())
	if cfg.Events != nil {
		r.Get("/ws/events", cfg.Events.HandleConnection)
	}

	guard := func(name string) func(http.Handler) http.Handler {
		return navigation.Guard(cfg.Store, navigation.MustLookup(name), cfg.Site)
	}
	pages := map[string]http.HandlerFunc{
		navigation.RouteHome:           v.Home,
		navigation.RouteCompanies:      v.Companies,
		navigation.RouteCompanyDetail:  v.Company,
		navigation.RouteReviewCreate:   v.CreateReviewPage,
		navigation.RouteReviewDetail:   v.Review,
		navigation.RouteProfile:        v.Profile,
		navigation.RouteMyReviews:      v.MyReviews,
		navigation.RouteLogin:          v.LoginPage,
		navigation.RouteRegister:       v.RegisterPage,
		navigation.RouteAdminDashboard: v.AdminDashboard,
		navigation.RouteAdminReviews:   v.PendingReviews,
		navigation.RouteAdminComments:  v.PendingComments,
		navigation.RouteAdminReports:   v.Reports,
	}

	r.Group(func(r chi.Router) {
		r.Use(middleware.CSRF(cfg.CSRFToken))

		for _, route := range navigation.Routes() {
			if page, ok := pages[route.Name]; ok {
				r.With(guard(route.Name)).Get(route.Pattern, page)
			}
		}

		r.Group(func(r chi.Router) {
			if cfg.FormLimiter != nil {
				r.Use(cfg.FormLimiter.Middleware())
			}
			r.Post("/auth/login", v.Login)
			r.Post("/auth/register", v.Register)
		})
		r.Post("/auth/logout", v.Logout)

		r.Post("/reviews/create", v.CreateReview)
		r.Post("/reviews/{id}/helpful", v.MarkHelpful)
		r.Post("/reviews/{id}/comments", v.AddComment)
		r.Post("/comments/{id}/helpful", v.MarkCommentHelpful)
		r.Post("/reports", v.Report)
		r.Post("/my-reviews/{id}/delete", v.DeleteReview)
		r.Post("/profile", v.UpdateProfile)
		r.Post("/profile/password", v.ChangePassword)

		r.Post("/admin/reviews/{id}", v.ModerateReview)
		r.Post("/admin/comments/{id}", v.ModerateComment)
		r.Post("/admin/reports/{id}", v.HandleReport)
	})

	r.NotFound(v.notFound)

	return r
}
