package gateway

import "context"

// User facing notification texts
const (
	MsgNetworkError  = "Network error, please check your connection"
	MsgLoginRequired = "Please log in first"
	MsgForbidden     = "You do not have permission to access this"
	MsgNotFound      = "The requested resource does not exist"
	MsgServerError   = "Server error, please try again later"
	MsgRequestFailed = "Request failed"
)

// Notification levels
const (
	LevelError   = "error"
	LevelSuccess = "success"
)

// DefaultLoginPath is where an unauthenticated response sends every open page
const DefaultLoginPath = "/auth/login"

// Notification is a message shown to the user
type Notification struct {
	Level   string `json:"level"`
	Message string `json:"message"`
}

// Notifier shows notifications to the user
type Notifier interface {
	Notify(ctx context.Context, n Notification)
}

// Redirector performs a hard redirect: every open page reloads at location and
// in-memory view state is discarded.
type Redirector interface {
	HardRedirect(ctx context.Context, location string)
}

// TokenSlot is the durable token storage as seen by the gateway
type TokenSlot interface {
	Load(ctx context.Context) (string, error)
	Delete(ctx context.Context) error
}

// NotifierFunc adapts a function to Notifier
type NotifierFunc func(ctx context.Context, n Notification)

func (f NotifierFunc) Notify(ctx context.Context, n Notification) {
	f(ctx, n)
}

type discardNotifier struct{}

func (discardNotifier) Notify(context.Context, Notification) {}

type discardRedirector struct{}

func (discardRedirector) HardRedirect(context.Context, string) {}
