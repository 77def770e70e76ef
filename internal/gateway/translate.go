package gateway

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"sync/atomic"

	"welfarewatch-web/internal/observability"
)

// Translator turns failed results into user notifications and typed errors.
// It performs exactly one side effect per failure and never swallows the error.
type Translator struct {
	notifier   Notifier
	redirector Redirector
	slot       TokenSlot
	loginPath  string
	generation *atomic.Uint64
	teardown   atomic.Pointer[func(context.Context)]
}

// NewTranslator creates a translator. generation is shared with the client so
// that only the first unauthenticated response of a generation tears down.
func NewTranslator(notifier Notifier, redirector Redirector, slot TokenSlot, loginPath string, generation *atomic.Uint64) *Translator {
	if notifier == nil {
		notifier = discardNotifier{}
	}
	if redirector == nil {
		redirector = discardRedirector{}
	}
	if loginPath == "" {
		loginPath = DefaultLoginPath
	}
	if generation == nil {
		generation = &atomic.Uint64{}
	}
	return &Translator{
		notifier:   notifier,
		redirector: redirector,
		slot:       slot,
		loginPath:  loginPath,
		generation: generation,
	}
}

// OnUnauthenticated sets the hook that resets in-memory session state
// during a 401 teardown.
func (t *Translator) OnUnauthenticated(fn func(context.Context)) {
	t.teardown.Store(&fn)
}

// Stage returns the translator as a response stage
func (t *Translator) Stage() ResponseStage {
	return t.Translate
}

// Translate maps a raw result to its final form
func (t *Translator) Translate(ctx context.Context, res Result) Result {
	method, path := requestLine(res.Request)
	log := observability.FromContext(ctx)

	if res.Response == nil {
		cause := res.Err
		if cause == nil {
			cause = errors.New("no response received")
		}
		log.Warn("backend call failed",
			slog.String("method", method),
			slog.String("path", path),
			slog.String("error", cause.Error()))
		t.notifier.Notify(ctx, Notification{Level: LevelError, Message: MsgNetworkError})
		res.Err = &Error{Kind: KindTransport, Method: method, Path: path, Err: cause}
		return res
	}

	status := res.Response.StatusCode
	if status < http.StatusBadRequest {
		return res
	}

	kind := Classify(status)
	gwErr := &Error{Kind: kind, Method: method, Path: path, Status: status, Body: res.Body}

	switch kind {
	case KindUnauthenticated:
		gwErr.Message = MsgLoginRequired
		t.unauthenticated(ctx, res.Generation)
	case KindForbidden:
		gwErr.Message = MsgForbidden
		t.notifier.Notify(ctx, Notification{Level: LevelError, Message: MsgForbidden})
	case KindNotFound:
		gwErr.Message = MsgNotFound
		t.notifier.Notify(ctx, Notification{Level: LevelError, Message: MsgNotFound})
	case KindServer:
		gwErr.Message = MsgServerError
		t.notifier.Notify(ctx, Notification{Level: LevelError, Message: MsgServerError})
	default:
		gwErr.Message = bodyMessage(res.Body, MsgRequestFailed)
		t.notifier.Notify(ctx, Notification{Level: LevelError, Message: gwErr.Message})
	}

	log.Warn("backend call rejected",
		slog.String("method", method),
		slog.String("path", path),
		slog.Int("status", status),
		slog.String("kind", kind.String()))

	res.Err = gwErr
	return res
}

// unauthenticated tears the session down once per generation: concurrent 401s
// for calls sent under the same generation produce a single teardown.
func (t *Translator) unauthenticated(ctx context.Context, generation uint64) {
	if !t.generation.CompareAndSwap(generation, generation+1) {
		observability.FromContext(ctx).Debug("session already torn down for this generation",
			slog.Uint64("generation", generation))
		return
	}

	observability.SessionTeardownsTotal.Inc()
	t.notifier.Notify(ctx, Notification{Level: LevelError, Message: MsgLoginRequired})

	if t.slot != nil {
		if err := t.slot.Delete(ctx); err != nil {
			observability.FromContext(ctx).Error("failed to clear token slot",
				slog.String("error", err.Error()))
		}
	}
	if fn := t.teardown.Load(); fn != nil {
		(*fn)(ctx)
	}

	t.redirector.HardRedirect(ctx, t.loginPath)
}

func requestLine(req *http.Request) (string, string) {
	if req == nil || req.URL == nil {
		return "", ""
	}
	return req.Method, req.URL.Path
}
