package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/time/rate"
)

const maxResponseBody = 10 << 20

// Options configures a Client
type Options struct {
	BaseURL    string
	Timeout    time.Duration
	Slot       TokenSlot
	Notifier   Notifier
	Redirector Redirector
	LoginPath  string
	Limiter    *rate.Limiter
	Contract   *Contract
	HTTPClient *http.Client
}

// Client is the single egress point for backend calls. Every call runs the
// request stages, is sent once, then runs the response stages.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	pipeline   Pipeline
	translator *Translator
	generation atomic.Uint64

	mu      sync.RWMutex
	headers http.Header
}

// Call describes one backend request. Path is relative to the base URL.
type Call struct {
	Method      string
	Path        string
	Query       url.Values
	Body        []byte
	ContentType string
}

// Response is a successful backend response, passed through unmodified
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// New creates a new gateway client
func New(opts Options) (*Client, error) {
	base, err := url.Parse(strings.TrimRight(opts.BaseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid backend URL: %w", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("backend URL must be absolute: %q", opts.BaseURL)
	}

	httpClient := opts.HTTPClient
	if httpClient == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}

	c := &Client{
		baseURL:    base,
		httpClient: httpClient,
		headers:    http.Header{"Accept": []string{"application/json"}},
	}
	c.translator = NewTranslator(opts.Notifier, opts.Redirector, opts.Slot, opts.LoginPath, &c.generation)

	c.pipeline.Request = []RequestStage{
		HeadersStage(c.defaultHeaders),
		RequestIDStage(),
		BearerStage(opts.Slot),
	}
	if opts.Contract != nil {
		c.pipeline.Request = append(c.pipeline.Request, opts.Contract.Stage())
	}
	if opts.Limiter != nil {
		c.pipeline.Request = append(c.pipeline.Request, ThrottleStage(opts.Limiter))
	}
	c.pipeline.Response = []ResponseStage{
		c.translator.Stage(),
		ObserveStage(),
	}

	return c, nil
}

// SetAuthToken keeps the default Authorization header in sync with the
// session. An empty token removes the header entirely. Every call opens a new
// teardown generation.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	if token != "" {
		c.headers.Set("Authorization", "Bearer "+token)
	} else {
		c.headers.Del("Authorization")
	}
	c.mu.Unlock()
	c.generation.Add(1)
}

// OnUnauthenticated registers the hook that resets the session on a 401
func (c *Client) OnUnauthenticated(fn func(context.Context)) {
	c.translator.OnUnauthenticated(fn)
}

// Generation returns the current teardown generation
func (c *Client) Generation() uint64 {
	return c.generation.Load()
}

// BaseURL returns the backend base URL
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

func (c *Client) defaultHeaders() http.Header {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.headers.Clone()
}

// Do sends one call through the pipeline. Error statuses come back as *Error
// after the translator has notified the user.
func (c *Client) Do(ctx context.Context, call Call) (*Response, error) {
	res := c.roundTrip(ctx, call)
	res = c.pipeline.ApplyResponse(ctx, res)
	if res.Err != nil {
		return nil, res.Err
	}
	return &Response{
		Status: res.Response.StatusCode,
		Header: res.Response.Header,
		Body:   res.Body,
	}, nil
}

func (c *Client) roundTrip(ctx context.Context, call Call) Result {
	res := Result{Generation: c.generation.Load(), Started: time.Now()}

	req, err := c.newRequest(ctx, call)
	if err != nil {
		res.Err = err
		return res
	}
	res.Request = req

	if err := c.pipeline.ApplyRequest(ctx, req); err != nil {
		res.Err = err
		return res
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		res.Err = err
		return res
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	if err != nil {
		res.Err = fmt.Errorf("failed to read response body: %w", err)
		return res
	}

	res.Response = resp
	res.Body = body
	return res
}

func (c *Client) newRequest(ctx context.Context, call Call) (*http.Request, error) {
	u := *c.baseURL
	u.Path = c.baseURL.Path + "/" + strings.TrimLeft(call.Path, "/")
	if len(call.Query) > 0 {
		u.RawQuery = call.Query.Encode()
	}

	var body io.Reader
	if call.Body != nil {
		body = bytes.NewReader(call.Body)
	}

	req, err := http.NewRequestWithContext(ctx, call.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	if call.Body != nil {
		contentType := call.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		req.Header.Set("Content-Type", contentType)
	}
	return req, nil
}

// getJSON performs a GET and decodes the response into out
func (c *Client) getJSON(ctx context.Context, path string, query url.Values, out any) error {
	resp, err := c.Do(ctx, Call{Method: http.MethodGet, Path: path, Query: query})
	if err != nil {
		return err
	}
	return decode(resp, out)
}

// sendJSON encodes in as the body, performs the call and decodes into out
func (c *Client) sendJSON(ctx context.Context, method, path string, in, out any) error {
	var body []byte
	if in != nil {
		var err error
		body, err = json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
	}
	resp, err := c.Do(ctx, Call{Method: method, Path: path, Body: body})
	if err != nil {
		return err
	}
	return decode(resp, out)
}

func decode(resp *Response, out any) error {
	if out == nil || len(bytes.TrimSpace(resp.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}
