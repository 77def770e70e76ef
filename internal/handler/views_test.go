package handler_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"
	"time"

	"welfarewatch-web/internal/domain"
	"welfarewatch-web/internal/gateway"
	"welfarewatch-web/internal/handler"
	"welfarewatch-web/internal/navigation"
	"welfarewatch-web/internal/testutil"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHome_RendersCompaniesAndReviews(t *testing.T) {
	h := newHarness(t, nil)
	h.backend.reply(http.MethodGet, "/companies/", http.StatusOK,
		`{"count":1,"next":null,"previous":null,"results":[{"id":1,"name":"Acme Corp","average_rating":4.5,"review_count":3}]}`)
	h.backend.reply(http.MethodGet, "/reviews/reviews/", http.StatusOK,
		`{"count":1,"next":null,"previous":null,"results":[{"id":9,"company":1,"title":"Great benefits","overall_rating":5}]}`)

	w := h.get("/")

	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertBodyContains(t, w, "<title>Home - WelfareWatch</title>")
	testutil.AssertBodyContains(t, w, "Acme Corp")
	testutil.AssertBodyContains(t, w, "Great benefits")
	testutil.AssertBodyContains(t, w, `href="/auth/login"`)
}

func TestCompanies_PassesSearchAndFilter(t *testing.T) {
	h := newHarness(t, nil)
	h.backend.handle(http.MethodGet, "/companies/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "acme", r.URL.Query().Get("search"))
		assert.Equal(t, "3", r.URL.Query().Get("industry"))
		assert.Equal(t, "2", r.URL.Query().Get("page"))
		jsonReply(http.StatusOK, `{"count":13,"next":null,"previous":"x","results":[{"id":1,"name":"Acme Corp"}]}`)(w, r)
	})
	h.backend.reply(http.MethodGet, "/companies/industries/", http.StatusOK, `[{"id":3,"name":"Software"}]`)

	w := h.get("/companies?search=acme&industry=3&page=2")

	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertBodyContains(t, w, "13 companies")
	testutil.AssertBodyContains(t, w, "Software")
	testutil.AssertBodyContains(t, w, "Previous")
}

func TestCompany_NotFound(t *testing.T) {
	h := newHarness(t, nil)

	w := h.get("/companies/99")

	testutil.AssertStatusCode(t, w, http.StatusNotFound)
	testutil.AssertBodyContains(t, w, gateway.MsgNotFound)
	assert.Equal(t, []string{gateway.MsgNotFound}, h.notifier.Messages())
}

func TestCompany_InvalidIDSkipsBackend(t *testing.T) {
	h := newHarness(t, nil)

	w := h.get("/companies/abc")

	testutil.AssertStatusCode(t, w, http.StatusNotFound)
	assert.Zero(t, h.backend.hitCount(http.MethodGet, "/companies/abc/"))
}

func TestView_BackendDown(t *testing.T) {
	h := newHarness(t, nil)
	h.backend.server.Close()

	w := h.get("/")

	testutil.AssertStatusCode(t, w, http.StatusBadGateway)
	testutil.AssertBodyContains(t, w, gateway.MsgNetworkError)
	assert.Equal(t, []string{gateway.MsgNetworkError}, h.notifier.Messages())
}

func TestGuard_AnonymousSentToLoginWithReturnPath(t *testing.T) {
	tests := []struct {
		target   string
		location string
	}{
		{"/my-reviews", "/auth/login?redirect=%2Fmy-reviews"},
		{"/profile", "/auth/login?redirect=%2Fprofile"},
		{"/reviews/create?company=4", "/auth/login?redirect=%2Freviews%2Fcreate%3Fcompany%3D4"},
		{"/admin", "/auth/login?redirect=%2Fadmin"},
		{"/admin/reports", "/auth/login?redirect=%2Fadmin%2Freports"},
	}

	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			h := newHarness(t, nil)

			w := h.get(tt.target)

			testutil.AssertRedirect(t, w, tt.location)
		})
	}
}

func TestGuard_NormalUserSentHomeFromAdmin(t *testing.T) {
	h := newHarness(t, nil)
	h.loginAs(testutil.NewTestProfile())

	w := h.get("/admin/reviews")

	testutil.AssertRedirect(t, w, "/")
	assert.Zero(t, h.backend.hitCount(http.MethodGet, "/moderation/pending_reviews/"))
}

func TestAdmin_ModeratorSeesPendingReviews(t *testing.T) {
	h := newHarness(t, nil)
	h.loginAs(testutil.NewTestProfile(testutil.WithUserType(domain.UserTypeModerator)))
	h.backend.reply(http.MethodGet, "/moderation/pending_reviews/", http.StatusOK,
		`[{"id":5,"company":1,"company_name":"Acme Corp","title":"Needs a look","overall_rating":2}]`)

	w := h.get("/admin/reviews")

	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertBodyContains(t, w, "Needs a look")
	testutil.AssertBodyContains(t, w, `action="/admin/reviews/5"`)
	testutil.AssertBodyContains(t, w, `href="/admin">Moderation</a>`)
}

func TestAdmin_Dashboard(t *testing.T) {
	h := newHarness(t, nil)
	h.loginAs(testutil.NewTestProfile(testutil.WithUserType(domain.UserTypeAdmin)))
	h.backend.reply(http.MethodGet, "/moderation/statistics/", http.StatusOK,
		`{"reviews":{"pending":4,"approved":10},"reports_pending":2}`)

	w := h.get("/admin")

	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertBodyContains(t, w, "reviews.pending")
	testutil.AssertBodyContains(t, w, "reports_pending")
}

func TestAdmin_ModerateReview(t *testing.T) {
	h := newHarness(t, nil)
	h.loginAs(testutil.NewTestProfile(testutil.WithUserType(domain.UserTypeModerator)))

	var got domain.ModerationDecision
	h.backend.handle(http.MethodPost, "/moderation/moderate_review/", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		jsonReply(http.StatusOK, `{"message":"ok"}`)(w, r)
	})

	w := h.serve(testutil.NewFormRequest(t, "/admin/reviews/5", url.Values{
		"csrf_token": {testCSRF},
		"action":     {domain.ActionReject},
		"reason":     {"spam"},
	}))

	testutil.AssertRedirect(t, w, "/admin/reviews")
	assert.Equal(t, domain.ModerationDecision{ReviewID: 5, Action: domain.ActionReject, Reason: "spam"}, got)
}

func TestLogin_ContinuesToReturnTarget(t *testing.T) {
	h := newHarness(t, nil)
	user := testutil.NewTestProfile(testutil.WithUsername("alice"))
	token := testutil.NewTestToken(user.ID, time.Now().Add(time.Hour))

	h.backend.handle(http.MethodPost, "/accounts/login/", func(w http.ResponseWriter, r *http.Request) {
		var creds domain.Credentials
		require.NoError(t, json.NewDecoder(r.Body).Decode(&creds))
		assert.Equal(t, domain.Credentials{Username: "alice", Password: "s3cret"}, creds)
		assert.Empty(t, r.Header.Get("Authorization"))
		jsonReply(http.StatusOK, authResult(token, user))(w, r)
	})

	w := h.serve(testutil.NewFormRequest(t, "/auth/login?redirect=%2Fmy-reviews", url.Values{
		"csrf_token": {testCSRF},
		"username":   {" alice "},
		"password":   {"s3cret"},
	}))

	testutil.AssertRedirect(t, w, "/my-reviews")
	assert.True(t, h.store.IsLoggedIn())
	assert.Equal(t, token, h.store.Token())
	stored, _ := h.storage.Load(context.Background())
	assert.Equal(t, token, stored)
}

func TestLogin_ExternalReturnTargetGoesHome(t *testing.T) {
	h := newHarness(t, nil)
	user := testutil.NewTestProfile()
	h.backend.reply(http.MethodPost, "/accounts/login/", http.StatusOK,
		authResult(testutil.NewTestToken(user.ID, time.Now().Add(time.Hour)), user))

	w := h.serve(testutil.NewFormRequest(t, "/auth/login?redirect=%2F%2Fevil.example%2F", url.Values{
		"csrf_token": {testCSRF},
		"username":   {user.Username},
		"password":   {"pw"},
	}))

	testutil.AssertRedirect(t, w, "/")
}

func TestLogin_RejectedCredentials(t *testing.T) {
	h := newHarness(t, nil)
	h.backend.reply(http.MethodPost, "/accounts/login/", http.StatusBadRequest, `{"detail":"Invalid username or password"}`)

	w := h.serve(testutil.NewFormRequest(t, "/auth/login", url.Values{
		"csrf_token": {testCSRF},
		"username":   {"alice"},
		"password":   {"wrong"},
	}))

	testutil.AssertStatusCode(t, w, http.StatusUnprocessableEntity)
	testutil.AssertBodyContains(t, w, "Invalid username or password")
	testutil.AssertBodyContains(t, w, `value="alice"`)
	assert.False(t, h.store.IsLoggedIn())
}

func TestLogin_ReplyWithoutUser(t *testing.T) {
	h := newHarness(t, nil)
	h.backend.reply(http.MethodPost, "/accounts/login/", http.StatusOK, `{"token":"opaque-token"}`)

	w := h.serve(testutil.NewFormRequest(t, "/auth/login", url.Values{
		"csrf_token": {testCSRF},
		"username":   {"alice"},
		"password":   {"pw"},
	}))

	testutil.AssertStatusCode(t, w, http.StatusBadGateway)
	testutil.AssertBodyContains(t, w, "Something went wrong")
	assert.False(t, h.store.IsLoggedIn())
	stored, err := h.storage.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, stored)
}

func TestLogin_MissingFields(t *testing.T) {
	h := newHarness(t, nil)

	w := h.serve(testutil.NewFormRequest(t, "/auth/login", url.Values{"csrf_token": {testCSRF}}))

	testutil.AssertStatusCode(t, w, http.StatusUnprocessableEntity)
	assert.Zero(t, h.backend.hitCount(http.MethodPost, "/accounts/login/"))
}

func TestLogin_RequiresCSRFToken(t *testing.T) {
	h := newHarness(t, nil)

	w := h.serve(testutil.NewFormRequest(t, "/auth/login", url.Values{
		"username": {"alice"},
		"password": {"pw"},
	}))

	testutil.AssertStatusCode(t, w, http.StatusForbidden)
	assert.Zero(t, h.backend.hitCount(http.MethodPost, "/accounts/login/"))
}

func TestLoginPage_KeepsReturnPathAndDoesNotBounce(t *testing.T) {
	h := newHarness(t, nil)
	h.loginAs(testutil.NewTestProfile())

	w := h.get("/auth/login?redirect=%2Fprofile")

	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertBodyContains(t, w, "?redirect=")
	testutil.AssertBodyContains(t, w, `name="csrf_token" value="`+testCSRF+`"`)
}

func TestRegister_DoesNotLogIn(t *testing.T) {
	h := newHarness(t, nil)
	h.backend.handle(http.MethodPost, "/accounts/register/", func(w http.ResponseWriter, r *http.Request) {
		var reg domain.Registration
		require.NoError(t, json.NewDecoder(r.Body).Decode(&reg))
		assert.Equal(t, "bob", reg.Username)
		assert.Equal(t, reg.Password, reg.PasswordConfirm)
		jsonReply(http.StatusCreated, `{"message":"registered","user":{"id":3,"username":"bob"}}`)(w, r)
	})

	w := h.serve(testutil.NewFormRequest(t, "/auth/register", url.Values{
		"csrf_token":       {testCSRF},
		"username":         {"bob"},
		"email":            {"bob@example.com"},
		"password":         {"pw123456"},
		"password_confirm": {"pw123456"},
	}))

	testutil.AssertRedirect(t, w, navigation.LoginPath)
	assert.False(t, h.store.IsLoggedIn())
}

func TestRegister_PasswordMismatch(t *testing.T) {
	h := newHarness(t, nil)

	w := h.serve(testutil.NewFormRequest(t, "/auth/register", url.Values{
		"csrf_token":       {testCSRF},
		"username":         {"bob"},
		"password":         {"one"},
		"password_confirm": {"two"},
	}))

	testutil.AssertStatusCode(t, w, http.StatusUnprocessableEntity)
	testutil.AssertBodyContains(t, w, "Passwords do not match")
	assert.Zero(t, h.backend.hitCount(http.MethodPost, "/accounts/register/"))
}

func TestLogout_ClearsSession(t *testing.T) {
	h := newHarness(t, nil)
	h.loginAs(testutil.NewTestProfile())

	w := h.serve(testutil.NewFormRequest(t, "/auth/logout", url.Values{"csrf_token": {testCSRF}}))

	testutil.AssertRedirect(t, w, "/")
	assert.False(t, h.store.IsLoggedIn())
	assert.Empty(t, h.store.Token())
	stored, _ := h.storage.Load(context.Background())
	assert.Empty(t, stored)
}

func TestView_UnauthenticatedResponseTearsDownOnce(t *testing.T) {
	h := newHarness(t, nil)
	h.loginAs(testutil.NewTestProfile())
	h.backend.reply(http.MethodGet, "/reviews/reviews/my_reviews/", http.StatusUnauthorized, `{"detail":"Token expired"}`)

	w := h.get("/my-reviews")

	testutil.AssertRedirect(t, w, navigation.LoginPath)
	assert.False(t, h.store.IsLoggedIn())
	assert.Empty(t, h.store.Token())
	stored, _ := h.storage.Load(context.Background())
	assert.Empty(t, stored)
	assert.Equal(t, 1, h.redirector.Count())
	assert.Equal(t, []string{gateway.MsgLoginRequired}, h.notifier.Messages())

	// the next page load is gated locally and never reaches the backend
	w = h.get("/my-reviews")
	testutil.AssertRedirect(t, w, "/auth/login?redirect=%2Fmy-reviews")
	assert.Equal(t, 1, h.backend.hitCount(http.MethodGet, "/reviews/reviews/my_reviews/"))
	assert.Equal(t, 1, h.redirector.Count())
}

func TestCreateReview_AnonymousSubmitRedirectsToLogin(t *testing.T) {
	h := newHarness(t, nil)
	h.backend.handle(http.MethodPost, "/reviews/reviews/", func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		jsonReply(http.StatusUnauthorized, `{"detail":"Authentication credentials were not provided."}`)(w, r)
	})

	w := h.serve(testutil.NewFormRequest(t, "/reviews/create", url.Values{
		"csrf_token": {testCSRF},
		"company":    {"1"},
		"title":      {"t"},
	}))

	testutil.AssertRedirect(t, w, navigation.LoginPath)
	assert.Equal(t, 1, h.redirector.Count())
}

func TestCreateReview_Submits(t *testing.T) {
	h := newHarness(t, nil)
	token := h.loginAs(testutil.NewTestProfile())

	var got domain.ReviewInput
	h.backend.handle(http.MethodPost, "/reviews/reviews/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, token, testutil.BearerToken(r))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		jsonReply(http.StatusCreated, `{"id":42,"company":1,"title":"Solid place"}`)(w, r)
	})

	w := h.serve(testutil.NewFormRequest(t, "/reviews/create", url.Values{
		"csrf_token":         {testCSRF},
		"company":            {"1"},
		"title":              {"Solid place"},
		"content":            {"Good people"},
		"overall_rating":     {"4"},
		"welfare_rating":     {"5"},
		"environment_rating": {"4"},
		"development_rating": {"3"},
		"management_rating":  {"4"},
		"work_years":         {"2"},
		"is_anonymous":       {"on"},
	}))

	testutil.AssertRedirect(t, w, "/my-reviews")
	assert.Equal(t, int64(1), got.Company)
	assert.Equal(t, "Solid place", got.Title)
	assert.Equal(t, 4, got.OverallRating)
	assert.Equal(t, 5, got.WelfareRating)
	require.NotNil(t, got.WorkYears)
	assert.Equal(t, 2, *got.WorkYears)
	assert.True(t, got.IsAnonymous)
}

func TestCreateReview_ValidationErrorKeepsInput(t *testing.T) {
	h := newHarness(t, nil)
	h.loginAs(testutil.NewTestProfile())
	h.backend.reply(http.MethodPost, "/reviews/reviews/", http.StatusBadRequest, `{"detail":"You already reviewed this company"}`)

	w := h.serve(testutil.NewFormRequest(t, "/reviews/create", url.Values{
		"csrf_token": {testCSRF},
		"company":    {"1"},
		"title":      {"Second try"},
	}))

	testutil.AssertStatusCode(t, w, http.StatusUnprocessableEntity)
	testutil.AssertBodyContains(t, w, "You already reviewed this company")
	testutil.AssertBodyContains(t, w, `value="Second try"`)
}

func TestReview_ShowsComments(t *testing.T) {
	h := newHarness(t, nil)
	h.backend.reply(http.MethodGet, "/reviews/reviews/9/", http.StatusOK,
		`{"id":9,"company":1,"company_name":"Acme Corp","title":"Great benefits","overall_rating":5,"user_info":{"username":"carol"}}`)
	h.backend.handle(http.MethodGet, "/reviews/comments/", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "9", r.URL.Query().Get("review"))
		jsonReply(http.StatusOK, `{"count":1,"next":null,"previous":null,"results":[{"id":2,"review":9,"content":"Agreed","is_anonymous":true}]}`)(w, r)
	})

	w := h.get("/reviews/9")

	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertBodyContains(t, w, "<title>Review Details - WelfareWatch</title>")
	testutil.AssertBodyContains(t, w, "carol")
	testutil.AssertBodyContains(t, w, "Agreed")
	testutil.AssertBodyContains(t, w, "Anonymous")
}

func TestMarkHelpful(t *testing.T) {
	h := newHarness(t, nil)
	h.loginAs(testutil.NewTestProfile())
	h.backend.reply(http.MethodPost, "/reviews/reviews/9/mark_helpful/", http.StatusOK, `{"message":"ok"}`)

	w := h.serve(testutil.NewFormRequest(t, "/reviews/9/helpful", url.Values{"csrf_token": {testCSRF}}))

	testutil.AssertRedirect(t, w, "/reviews/9")
	assert.Equal(t, 1, h.backend.hitCount(http.MethodPost, "/reviews/reviews/9/mark_helpful/"))
}

func TestProfile_UpdateReplacesSessionUser(t *testing.T) {
	h := newHarness(t, nil)
	user := testutil.NewTestProfile(testutil.WithUsername("dana"))
	h.loginAs(user)

	updated := *user
	updated.Bio = "Backend engineer"
	body, _ := json.Marshal(updated)
	h.backend.reply(http.MethodPut, "/accounts/profile/", http.StatusOK, string(body))

	w := h.serve(testutil.NewFormRequest(t, "/profile", url.Values{
		"csrf_token": {testCSRF},
		"bio":        {"Backend engineer"},
	}))

	testutil.AssertRedirect(t, w, "/profile")
	assert.Equal(t, "Backend engineer", h.store.User().Bio)

	w = h.get("/profile")
	testutil.AssertStatusCode(t, w, http.StatusOK)
	testutil.AssertBodyContains(t, w, "Backend engineer")
}

func TestHealth(t *testing.T) {
	h := newHarness(t, nil)

	w := h.get("/health")

	testutil.AssertStatusCode(t, w, http.StatusOK)
	assert.JSONEq(t, `{"status":"ok"}`, w.Body.String())
}

func TestReady(t *testing.T) {
	tests := []struct {
		name   string
		checks map[string]handler.CheckFunc
		status int
		state  string
	}{
		{"all up", map[string]handler.CheckFunc{"token_store": passingCheck}, http.StatusOK, "ready"},
		{"one down", map[string]handler.CheckFunc{"token_store": failingCheck, "events": passingCheck}, http.StatusServiceUnavailable, "not_ready"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newHarness(t, tt.checks)

			w := h.get("/health/ready")

			testutil.AssertStatusCode(t, w, tt.status)
			var body map[string]any
			require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
			assert.Equal(t, tt.state, body["status"])
		})
	}
}

func TestRouter_RejectsForeignHost(t *testing.T) {
	h := newHarness(t, nil)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Host = "evil.example"

	w := h.serve(req)

	testutil.AssertStatusCode(t, w, http.StatusMisdirectedRequest)
}

func TestRouter_MetricsEndpoint(t *testing.T) {
	h := newHarness(t, nil)

	w := h.get("/metrics")

	testutil.AssertStatusCode(t, w, http.StatusOK)
	body, _ := io.ReadAll(w.Result().Body)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestRouter_UnknownPage(t *testing.T) {
	h := newHarness(t, nil)

	w := h.get("/no/such/page")

	testutil.AssertStatusCode(t, w, http.StatusNotFound)
	testutil.AssertBodyContains(t, w, gateway.MsgNotFound)
}
