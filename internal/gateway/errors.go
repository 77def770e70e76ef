package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// Failure kinds. Every failed call maps to exactly one.
var (
	ErrTransport       = errors.New("network error")
	ErrUnauthenticated = errors.New("unauthenticated")
	ErrForbidden       = errors.New("forbidden")
	ErrNotFound        = errors.New("not found")
	ErrServer          = errors.New("server error")
	ErrRequestFailed   = errors.New("request failed")
)

// Kind classifies a failed call
type Kind int

const (
	KindTransport Kind = iota
	KindUnauthenticated
	KindForbidden
	KindNotFound
	KindServer
	KindRequestFailed
)

func (k Kind) String() string {
	switch k {
	case KindTransport:
		return "transport"
	case KindUnauthenticated:
		return "unauthenticated"
	case KindForbidden:
		return "forbidden"
	case KindNotFound:
		return "not_found"
	case KindServer:
		return "server_error"
	default:
		return "request_failed"
	}
}

func (k Kind) sentinel() error {
	switch k {
	case KindTransport:
		return ErrTransport
	case KindUnauthenticated:
		return ErrUnauthenticated
	case KindForbidden:
		return ErrForbidden
	case KindNotFound:
		return ErrNotFound
	case KindServer:
		return ErrServer
	default:
		return ErrRequestFailed
	}
}

// Classify maps an error status code to its failure kind.
// Callers only pass statuses >= 400.
func Classify(status int) Kind {
	switch {
	case status == http.StatusUnauthorized:
		return KindUnauthenticated
	case status == http.StatusForbidden:
		return KindForbidden
	case status == http.StatusNotFound:
		return KindNotFound
	case status >= http.StatusInternalServerError:
		return KindServer
	default:
		return KindRequestFailed
	}
}

// Error is returned for every failed backend call. It matches the Err* sentinel
// of its Kind with errors.Is and unwraps to the transport cause, if any.
type Error struct {
	Kind    Kind
	Method  string
	Path    string
	Status  int // 0 for transport failures
	Message string
	Body    []byte
	Err     error
}

func (e *Error) Error() string {
	if e.Status == 0 {
		if e.Err != nil {
			return fmt.Sprintf("%s %s: %s: %v", e.Method, e.Path, e.Kind.sentinel(), e.Err)
		}
		return fmt.Sprintf("%s %s: %s", e.Method, e.Path, e.Kind.sentinel())
	}
	return fmt.Sprintf("%s %s: %d %s: %s", e.Method, e.Path, e.Status, e.Kind.sentinel(), e.Message)
}

func (e *Error) Unwrap() error {
	return e.Err
}

func (e *Error) Is(target error) bool {
	return target == e.Kind.sentinel()
}

// KindOf returns the failure kind of err and whether err came from the gateway
func KindOf(err error) (Kind, bool) {
	var gwErr *Error
	if errors.As(err, &gwErr) {
		return gwErr.Kind, true
	}
	return 0, false
}

// bodyMessage extracts a human readable message from an error body:
// "detail", then "message", then the fallback.
func bodyMessage(body []byte, fallback string) string {
	var payload map[string]any
	if err := json.Unmarshal(body, &payload); err != nil {
		return fallback
	}
	for _, field := range []string{"detail", "message"} {
		if msg, ok := payload[field].(string); ok && msg != "" {
			return msg
		}
	}
	return fallback
}
