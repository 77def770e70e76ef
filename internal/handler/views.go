package handler

import (
	"context"
	"embed"
	"errors"
	"fmt"
	"html/template"
	"io"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"welfarewatch-web/internal/domain"
	"welfarewatch-web/internal/gateway"
	"welfarewatch-web/internal/middleware"
	"welfarewatch-web/internal/navigation"
	"welfarewatch-web/internal/observability"
	"welfarewatch-web/internal/session"

	"github.com/go-chi/chi/v5"
)

//go:embed templates/*.html
var templateFS embed.FS

// Backend is the set of backend calls the views make
type Backend interface {
	ChangePassword(ctx context.Context, change domain.PasswordChange) error

	ListCompanies(ctx context.Context, params domain.ListParams) (*domain.Page[domain.Company], error)
	GetCompany(ctx context.Context, id int64) (*domain.Company, error)
	ListIndustries(ctx context.Context) ([]domain.Industry, error)

	ListReviews(ctx context.Context, params domain.ListParams) (*domain.Page[domain.Review], error)
	GetReview(ctx context.Context, id int64) (*domain.Review, error)
	CreateReview(ctx context.Context, in domain.ReviewInput) (*domain.Review, error)
	DeleteReview(ctx context.Context, id int64) error
	MarkReviewHelpful(ctx context.Context, id int64) error
	MyReviews(ctx context.Context) ([]domain.Review, error)
	UploadReviewImage(ctx context.Context, id int64, filename string, image io.Reader, caption string) (*domain.Image, error)

	ListComments(ctx context.Context, params domain.ListParams) (*domain.Page[domain.Comment], error)
	CreateComment(ctx context.Context, in domain.CommentInput) (*domain.Comment, error)
	MarkCommentHelpful(ctx context.Context, id int64) error

	PendingReviews(ctx context.Context) ([]domain.Review, error)
	PendingComments(ctx context.Context) ([]domain.Comment, error)
	ModerateReview(ctx context.Context, decision domain.ModerationDecision) error
	ModerateComment(ctx context.Context, decision domain.ModerationDecision) error
	ModerationStatistics(ctx context.Context) (domain.ModerationStatistics, error)
	ListReports(ctx context.Context, params domain.ListParams) (*domain.Page[domain.Report], error)
	CreateReport(ctx context.Context, in domain.ReportInput) (*domain.Report, error)
	HandleReport(ctx context.Context, id int64, resolution domain.ReportResolution) error
}

// Views renders the server-side pages of the client
type Views struct {
	backend  Backend
	sessions *session.Store
	site     string
	pages    map[string]*template.Template
}

// NewViews parses the embedded templates
func NewViews(backend Backend, sessions *session.Store, site string) (*Views, error) {
	pages, err := parseTemplates()
	if err != nil {
		return nil, err
	}
	return &Views{
		backend:  backend,
		sessions: sessions,
		site:     site,
		pages:    pages,
	}, nil
}

var templateFuncs = template.FuncMap{
	"stars": func(rating int) string {
		if rating < 0 {
			rating = 0
		}
		if rating > 5 {
			rating = 5
		}
		return strings.Repeat("★", rating) + strings.Repeat("☆", 5-rating)
	},
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("2006-01-02")
	},
	"add": func(a, b int) int { return a + b },
	"author": func(info *domain.UserInfo) string {
		if info == nil || info.Username == "" {
			return "Anonymous"
		}
		return info.Username
	},
}

func parseTemplates() (map[string]*template.Template, error) {
	base, err := template.New("base.html").Funcs(templateFuncs).ParseFS(templateFS, "templates/base.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse base template: %w", err)
	}

	entries, err := templateFS.ReadDir("templates")
	if err != nil {
		return nil, fmt.Errorf("failed to list templates: %w", err)
	}

	pages := make(map[string]*template.Template, len(entries))
	for _, entry := range entries {
		name := entry.Name()
		if name == "base.html" {
			continue
		}
		page, err := template.Must(base.Clone()).ParseFS(templateFS, "templates/"+name)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", name, err)
		}
		pages[strings.TrimSuffix(name, ".html")] = page
	}
	return pages, nil
}

// pageData is what every template receives
type pageData struct {
	Title   string
	Site    string
	Session domain.Session
	CSRF    string
	Path    string
	Error   string
	Data    any
}

func (v *Views) store(r *http.Request) *session.Store {
	if store, ok := session.FromContext(r.Context()); ok {
		return store
	}
	return v.sessions
}

func (v *Views) render(w http.ResponseWriter, r *http.Request, status int, page string, data any, errMsg string) {
	tmpl, ok := v.pages[page]
	if !ok {
		observability.FromContext(r.Context()).Error("unknown template", slog.String("page", page))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	title := navigation.TitleFrom(r.Context())
	if title == "" {
		title = v.site
	}

	pd := pageData{
		Title:   title,
		Site:    v.site,
		Session: v.store(r).Snapshot(),
		CSRF:    middleware.CSRFToken(r.Context()),
		Path:    r.URL.RequestURI(),
		Error:   errMsg,
		Data:    data,
	}

	var buf strings.Builder
	if err := tmpl.ExecuteTemplate(&buf, "base", pd); err != nil {
		observability.FromContext(r.Context()).Error("failed to render page",
			slog.String("page", page),
			slog.String("error", err.Error()))
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	_, _ = io.WriteString(w, buf.String())
}

// fail answers a failed backend call. The user was already notified by the
// gateway; an unauthenticated call sends this request to the login page too.
func (v *Views) fail(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, gateway.ErrUnauthenticated) {
		http.Redirect(w, r, navigation.LoginPath, http.StatusSeeOther)
		return
	}
	v.render(w, r, statusFor(err), "error", nil, errorMessage(err))
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, gateway.ErrUnauthenticated):
		return http.StatusUnauthorized
	case errors.Is(err, gateway.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, gateway.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, gateway.ErrRequestFailed):
		return http.StatusUnprocessableEntity
	default:
		return http.StatusBadGateway
	}
}

func errorMessage(err error) string {
	var gwErr *gateway.Error
	if errors.As(err, &gwErr) {
		if gwErr.Message != "" {
			return gwErr.Message
		}
		if gwErr.Kind == gateway.KindTransport {
			return gateway.MsgNetworkError
		}
	}
	return "Something went wrong, please try again"
}

func (v *Views) notFound(w http.ResponseWriter, r *http.Request) {
	v.render(w, r, http.StatusNotFound, "error", nil, gateway.MsgNotFound)
}

func idParam(r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, name), 10, 64)
	return id, err == nil && id > 0
}

func pageParam(r *http.Request) int {
	page, err := strconv.Atoi(r.URL.Query().Get("page"))
	if err != nil || page < 1 {
		return 1
	}
	return page
}

func formInt(r *http.Request, name string) int {
	n, _ := strconv.Atoi(strings.TrimSpace(r.PostFormValue(name)))
	return n
}

func formBool(r *http.Request, name string) bool {
	switch r.PostFormValue(name) {
	case "on", "true", "1":
		return true
	}
	return false
}
