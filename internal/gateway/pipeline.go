package gateway

import (
	"context"
	"net/http"
	"time"
)

// RequestStage transforms an outgoing request just before it is sent.
// A non-nil error aborts the call; it is reported as a transport failure.
type RequestStage func(ctx context.Context, req *http.Request) error

// ResponseStage transforms a call result before the caller sees it
type ResponseStage func(ctx context.Context, res Result) Result

// Result is the outcome of one backend call: either a response or an error.
// Err is set for transport failures and, after translation, for error statuses.
type Result struct {
	Request    *http.Request
	Response   *http.Response // nil when no response was received
	Body       []byte
	Err        error
	Generation uint64
	Started    time.Time
}

// Failed reports whether the call did not produce a successful response
func (r Result) Failed() bool {
	return r.Err != nil || r.Response == nil || r.Response.StatusCode >= http.StatusBadRequest
}

// Status returns the response status, or 0 when no response was received
func (r Result) Status() int {
	if r.Response == nil {
		return 0
	}
	return r.Response.StatusCode
}

// Pipeline is an ordered list of request and response stages
type Pipeline struct {
	Request  []RequestStage
	Response []ResponseStage
}

// ApplyRequest runs the request stages in order, stopping at the first error
func (p *Pipeline) ApplyRequest(ctx context.Context, req *http.Request) error {
	for _, stage := range p.Request {
		if err := stage(ctx, req); err != nil {
			return err
		}
	}
	return nil
}

// ApplyResponse runs the response stages in order
func (p *Pipeline) ApplyResponse(ctx context.Context, res Result) Result {
	for _, stage := range p.Response {
		res = stage(ctx, res)
	}
	return res
}
