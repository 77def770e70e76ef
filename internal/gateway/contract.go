package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"welfarewatch-web/internal/observability"

	"github.com/getkin/kin-openapi/openapi3"
	"github.com/getkin/kin-openapi/openapi3filter"
	"github.com/getkin/kin-openapi/routers"
	"github.com/getkin/kin-openapi/routers/gorillamux"
)

// Contract validates outgoing requests against the backend's OpenAPI document
// before they are sent, so malformed calls fail locally.
type Contract struct {
	router routers.Router
}

// LoadContract parses an OpenAPI document and binds it to the backend base URL
func LoadContract(ctx context.Context, spec []byte, baseURL string) (*Contract, error) {
	loader := openapi3.NewLoader()
	loader.Context = ctx

	doc, err := loader.LoadFromData(spec)
	if err != nil {
		return nil, fmt.Errorf("failed to load OpenAPI document: %w", err)
	}
	if err := doc.Validate(ctx); err != nil {
		return nil, fmt.Errorf("invalid OpenAPI document: %w", err)
	}

	// Operations are declared relative to the backend base, wherever it is deployed
	doc.Servers = openapi3.Servers{{URL: strings.TrimRight(baseURL, "/")}}

	router, err := gorillamux.NewRouter(doc)
	if err != nil {
		return nil, fmt.Errorf("failed to create OpenAPI router: %w", err)
	}

	return &Contract{router: router}, nil
}

// Validate checks one request against the document
func (c *Contract) Validate(ctx context.Context, req *http.Request) error {
	route, pathParams, err := c.router.FindRoute(req)
	if err != nil {
		return fmt.Errorf("%s %s is not part of the backend contract: %w", req.Method, req.URL.Path, err)
	}

	// Multipart uploads are forwarded as-is
	if strings.HasPrefix(req.Header.Get("Content-Type"), "multipart/") {
		return nil
	}

	probe := req.Clone(ctx)
	if req.GetBody != nil {
		body, err := req.GetBody()
		if err != nil {
			return fmt.Errorf("failed to copy request body: %w", err)
		}
		probe.Body = body
	}

	input := &openapi3filter.RequestValidationInput{
		Request:    probe,
		PathParams: pathParams,
		Route:      route,
		Options: &openapi3filter.Options{
			AuthenticationFunc: openapi3filter.NoopAuthenticationFunc,
		},
	}
	if err := openapi3filter.ValidateRequest(ctx, input); err != nil {
		return fmt.Errorf("request violates backend contract: %w", err)
	}
	return nil
}

// Stage returns the contract check as a request stage
func (c *Contract) Stage() RequestStage {
	return func(ctx context.Context, req *http.Request) error {
		if err := c.Validate(ctx, req); err != nil {
			observability.FromContext(ctx).Warn("outgoing request rejected by contract",
				slog.String("method", req.Method),
				slog.String("path", req.URL.Path),
				slog.String("error", err.Error()))
			return err
		}
		return nil
	}
}
