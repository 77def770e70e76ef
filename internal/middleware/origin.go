package middleware

import (
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"

	"welfarewatch-web/internal/observability"
)

// LocalOnly serves only requests addressed to one of the allowed hosts and,
// when an Origin header is present, coming from a page of the same host.
// It keeps other sites from driving the local client through the browser.
func LocalOnly(allowedHosts []string) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if !HostAllowed(r.Host, allowedHosts) {
				observability.FromContext(r.Context()).Warn("request for foreign host rejected",
					slog.String("host", r.Host))
				http.Error(w, "Misdirected Request", http.StatusMisdirectedRequest)
				return
			}
			if !OriginAllowed(r) {
				observability.FromContext(r.Context()).Warn("cross-origin request rejected",
					slog.String("origin", r.Header.Get("Origin")))
				http.Error(w, "Forbidden", http.StatusForbidden)
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}

// HostAllowed reports whether host, with or without port, is in allowed
func HostAllowed(host string, allowed []string) bool {
	name := host
	if h, _, err := net.SplitHostPort(host); err == nil {
		name = h
	}
	name = strings.Trim(name, "[]")
	for _, a := range allowed {
		if strings.EqualFold(a, name) {
			return true
		}
	}
	return false
}

// OriginAllowed reports whether the request's Origin, if any, matches its Host.
// It doubles as the websocket upgrader's origin check.
func OriginAllowed(r *http.Request) bool {
	origin := r.Header.Get("Origin")
	if origin == "" {
		return true
	}
	u, err := url.Parse(origin)
	if err != nil {
		return false
	}
	return strings.EqualFold(u.Host, r.Host)
}

// ParseHosts parses a comma-separated host list
func ParseHosts(hosts string) []string {
	var out []string
	for _, h := range strings.Split(hosts, ",") {
		if h = strings.TrimSpace(h); h != "" {
			out = append(out, h)
		}
	}
	return out
}
