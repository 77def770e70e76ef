package gateway_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"welfarewatch-web/internal/domain"
	"welfarewatch-web/internal/gateway"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recorded struct {
	method string
	path   string
	query  string
	ctype  string
}

func recordingServer(t *testing.T, body string) (*httptest.Server, func() recorded) {
	t.Helper()
	var (
		mu   sync.Mutex
		last recorded
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		last = recorded{method: r.Method, path: r.URL.Path, query: r.URL.RawQuery, ctype: r.Header.Get("Content-Type")}
		mu.Unlock()
		w.Header().Set("Content-Type", "application/json")
		_, _ = io.WriteString(w, body)
	}))
	t.Cleanup(server.Close)
	return server, func() recorded {
		mu.Lock()
		defer mu.Unlock()
		return last
	}
}

func errOnly[T any](_ T, err error) error { return err }

func TestAPI_Endpoints(t *testing.T) {
	server, last := recordingServer(t, `{}`)
	client, err := gateway.New(gateway.Options{BaseURL: server.URL + "/api"})
	require.NoError(t, err)
	ctx := context.Background()

	tests := []struct {
		name   string
		call   func() error
		method string
		path   string
	}{
		{"login", func() error { return errOnly(client.Login(ctx, domain.Credentials{Username: "a", Password: "b"})) }, "POST", "/api/accounts/login/"},
		{"register", func() error { return errOnly(client.Register(ctx, domain.Registration{Username: "a"})) }, "POST", "/api/accounts/register/"},
		{"me", func() error { return errOnly(client.CurrentUser(ctx)) }, "GET", "/api/accounts/me/"},
		{"profile", func() error { return errOnly(client.UpdateProfile(ctx, domain.ProfileUpdate{})) }, "PUT", "/api/accounts/profile/"},
		{"password", func() error { return client.ChangePassword(ctx, domain.PasswordChange{}) }, "POST", "/api/accounts/change-password/"},
		{"company", func() error { return errOnly(client.GetCompany(ctx, 7)) }, "GET", "/api/companies/7/"},
		{"company_update", func() error { return errOnly(client.UpdateCompany(ctx, 7, domain.CompanyInput{Name: "x"})) }, "PUT", "/api/companies/7/"},
		{"industries", func() error { return errOnly(client.ListIndustries(ctx)) }, "GET", "/api/companies/industries/"},
		{"review", func() error { return errOnly(client.GetReview(ctx, 3)) }, "GET", "/api/reviews/reviews/3/"},
		{"review_delete", func() error { return client.DeleteReview(ctx, 3) }, "DELETE", "/api/reviews/reviews/3/"},
		{"review_helpful", func() error { return client.MarkReviewHelpful(ctx, 3) }, "POST", "/api/reviews/reviews/3/mark_helpful/"},
		{"my_reviews", func() error { return errOnly(client.MyReviews(ctx)) }, "GET", "/api/reviews/reviews/my_reviews/"},
		{"replies", func() error { return errOnly(client.ListReplies(ctx, 4)) }, "GET", "/api/reviews/comments/4/replies/"},
		{"comment_helpful", func() error { return client.MarkCommentHelpful(ctx, 4) }, "POST", "/api/reviews/comments/4/mark_helpful/"},
		{"pending_reviews", func() error { return errOnly(client.PendingReviews(ctx)) }, "GET", "/api/moderation/pending_reviews/"},
		{"pending_comments", func() error { return errOnly(client.PendingComments(ctx)) }, "GET", "/api/moderation/pending_comments/"},
		{"moderate_review", func() error {
			return client.ModerateReview(ctx, domain.ModerationDecision{ReviewID: 1, Action: domain.ActionApprove})
		}, "POST", "/api/moderation/moderate_review/"},
		{"statistics", func() error { return errOnly(client.ModerationStatistics(ctx)) }, "GET", "/api/moderation/statistics/"},
		{"handle_report", func() error { return client.HandleReport(ctx, 9, domain.ReportResolution{Status: "resolved"}) }, "POST", "/api/moderation/reports/9/handle/"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require.NoError(t, tt.call())
			got := last()
			assert.Equal(t, tt.method, got.method)
			assert.Equal(t, tt.path, got.path)
		})
	}
}

func TestAPI_ListParamsEncoded(t *testing.T) {
	server, last := recordingServer(t, `{"count":1,"next":null,"previous":null,"results":[{"id":1,"name":"Acme"}]}`)
	client, err := gateway.New(gateway.Options{BaseURL: server.URL + "/api"})
	require.NoError(t, err)

	page, err := client.ListCompanies(context.Background(), domain.ListParams{Page: 2, Search: "acme"})
	require.NoError(t, err)

	assert.Contains(t, last().query, "page=2")
	assert.Contains(t, last().query, "search=acme")
	require.Len(t, page.Results, 1)
	assert.Equal(t, "Acme", page.Results[0].Name)
}

func TestAPI_BareListResponse(t *testing.T) {
	server, _ := recordingServer(t, `[{"id":1,"name":"IT"},{"id":2,"name":"Finance"}]`)
	client, err := gateway.New(gateway.Options{BaseURL: server.URL + "/api"})
	require.NoError(t, err)

	industries, err := client.ListIndustries(context.Background())

	require.NoError(t, err)
	assert.Len(t, industries, 2)
}

func TestAPI_UploadIsMultipart(t *testing.T) {
	server, last := recordingServer(t, `{"id":5,"image":"/media/a.png"}`)
	client, err := gateway.New(gateway.Options{BaseURL: server.URL + "/api"})
	require.NoError(t, err)

	img, err := client.UploadReviewImage(context.Background(), 3, "a.png", strings.NewReader("png"), "office")

	require.NoError(t, err)
	assert.Equal(t, int64(5), img.ID)
	assert.Equal(t, "/api/reviews/reviews/3/upload_image/", last().path)
	assert.True(t, strings.HasPrefix(last().ctype, "multipart/form-data"))
}
