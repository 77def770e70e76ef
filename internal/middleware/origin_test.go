package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"welfarewatch-web/internal/testutil"

	"github.com/stretchr/testify/assert"
)

func TestLocalOnly(t *testing.T) {
	handler := LocalOnly([]string{"localhost", "127.0.0.1", "::1"})(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))

	tests := []struct {
		name   string
		host   string
		origin string
		status int
	}{
		{"loopback", "127.0.0.1:4173", "", http.StatusOK},
		{"localhost_same_origin", "localhost:4173", "http://localhost:4173", http.StatusOK},
		{"ipv6", "[::1]:4173", "", http.StatusOK},
		{"rebinding_host", "evil.example:4173", "", http.StatusMisdirectedRequest},
		{"cross_origin", "127.0.0.1:4173", "http://evil.example", http.StatusForbidden},
		{"other_port", "127.0.0.1:4173", "http://127.0.0.1:9999", http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/auth/logout", nil)
			req.Host = tt.host
			if tt.origin != "" {
				req.Header.Set("Origin", tt.origin)
			}
			w := httptest.NewRecorder()

			handler.ServeHTTP(w, req)

			testutil.AssertStatusCode(t, w, tt.status)
		})
	}
}

func TestParseHosts(t *testing.T) {
	assert.Equal(t, []string{"localhost", "127.0.0.1"}, ParseHosts(" localhost, 127.0.0.1 ,"))
	assert.Nil(t, ParseHosts(""))
}
