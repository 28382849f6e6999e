// Package errtrack reports unexpected failures to an external tracker.
package errtrack

import (
	"context"
	"fmt"
	"time"

	"github.com/getsentry/sentry-go"

	"github.com/m3rciful/filestore-bot/core/logger"
)

// Tracker captures errors that should reach an operator.
type Tracker interface {
	CaptureError(ctx context.Context, err error, tags map[string]string)
	Flush(timeout time.Duration)
}

// New returns a Sentry tracker when dsn is set and a no-op tracker otherwise.
func New(dsn, environment, release string) (Tracker, error) {
	if dsn == "" {
		return Noop{}, nil
	}
	if err := sentry.Init(sentry.ClientOptions{
		Dsn:         dsn,
		Environment: environment,
		Release:     release,
	}); err != nil {
		return nil, fmt.Errorf("errtrack: sentry init: %w", err)
	}
	return &Sentry{hub: sentry.CurrentHub()}, nil
}

// Sentry sends events through a sentry hub.
type Sentry struct {
	hub *sentry.Hub
}

// CaptureError reports err with tags and the request metadata stored in ctx.
func (t *Sentry) CaptureError(ctx context.Context, err error, tags map[string]string) {
	if t == nil || err == nil {
		return
	}
	hub := t.hub.Clone()
	hub.ConfigureScope(func(scope *sentry.Scope) {
		for k, v := range tags {
			scope.SetTag(k, v)
		}
		if rid := logger.RIDFrom(ctx); rid != "" {
			scope.SetTag("rid", rid)
		}
		if uid := logger.UserIDFrom(ctx); uid != 0 {
			scope.SetUser(sentry.User{ID: fmt.Sprint(uid)})
		}
	})
	hub.CaptureException(err)
}

// Flush waits for buffered events to be delivered.
func (t *Sentry) Flush(timeout time.Duration) {
	if t == nil {
		return
	}
	t.hub.Flush(timeout)
}

// Noop discards everything.
type Noop struct{}

// CaptureError does nothing.
func (Noop) CaptureError(context.Context, error, map[string]string) {}

// Flush does nothing.
func (Noop) Flush(time.Duration) {}
