package gateway

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"welfarewatch-web/internal/observability"

	"github.com/google/uuid"
	"golang.org/x/time/rate"
)

// RequestIDHeader carries the correlation id of an outgoing call
const RequestIDHeader = "X-Request-ID"

// HeadersStage copies the current default headers onto the request
func HeadersStage(defaults func() http.Header) RequestStage {
	return func(ctx context.Context, req *http.Request) error {
		for key, values := range defaults() {
			req.Header.Del(key)
			for _, v := range values {
				req.Header.Add(key, v)
			}
		}
		return nil
	}
}

// RequestIDStage tags the request with the view request id, or a fresh one
func RequestIDStage() RequestStage {
	return func(ctx context.Context, req *http.Request) error {
		id := observability.RequestIDFrom(ctx)
		if id == "" {
			id = uuid.NewString()
		}
		req.Header.Set(RequestIDHeader, id)
		return nil
	}
}

// BearerStage attaches "Authorization: Bearer <token>" when the slot holds a
// token. With no token the header is left untouched, never set empty.
func BearerStage(slot TokenSlot) RequestStage {
	return func(ctx context.Context, req *http.Request) error {
		if slot == nil {
			return nil
		}
		token, err := slot.Load(ctx)
		if err != nil {
			// An unreadable slot behaves like an empty one
			observability.FromContext(ctx).Warn("failed to read token slot",
				"error", err.Error())
			return nil
		}
		if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
		return nil
	}
}

// ThrottleStage waits for the egress limiter before letting the request through
func ThrottleStage(limiter *rate.Limiter) RequestStage {
	return func(ctx context.Context, req *http.Request) error {
		if err := limiter.Wait(ctx); err != nil {
			return fmt.Errorf("egress throttle: %w", err)
		}
		return nil
	}
}

// ObserveStage records metrics for every call after translation
func ObserveStage() ResponseStage {
	return func(ctx context.Context, res Result) Result {
		outcome := "ok"
		if res.Err != nil {
			outcome = "error"
			if kind, ok := KindOf(res.Err); ok {
				outcome = kind.String()
			}
		}

		method := http.MethodGet
		if res.Request != nil {
			method = res.Request.Method
		}

		observability.GatewayRequestsTotal.WithLabelValues(method, outcome).Inc()
		if !res.Started.IsZero() {
			observability.GatewayRequestDuration.WithLabelValues(method, outcome).
				Observe(time.Since(res.Started).Seconds())
		}
		return res
	}
}
