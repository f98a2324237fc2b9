package errutil

import (
	"context"
	"log/slog"

	"github.com/getsentry/sentry-go"
	"github.com/m-mizutani/ctxlog"
	"github.com/m-mizutani/goerr/v2"

	"github.com/m-mizutani/subtag/pkg/domain/types"
)

// Handle logs err with its goerr values and forwards it to Sentry when a client is bound
func Handle(ctx context.Context, msg string, err error) {
	if err == nil {
		return
	}

	attrs := []any{
		slog.Any("error", err),
		slog.String("kind", types.ErrorKind(err)),
	}
	if e := goerr.Unwrap(err); e != nil {
		for k, v := range e.Values() {
			attrs = append(attrs, slog.Any(k, v))
		}
	}
	ctxlog.From(ctx).Error(msg, attrs...)

	hub := sentry.CurrentHub()
	if hub.Client() == nil {
		return
	}
	hub = hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		scope.SetTag("kind", types.ErrorKind(err))
		scope.SetTag("message", msg)
	})
	evID := hub.CaptureException(err)
	if evID != nil {
		ctxlog.From(ctx).Debug("error sent to sentry", "event_id", *evID)
	}
}
