package middleware

import (
	"context"
	"log/slog"

	"github.com/m3rciful/filestore-bot/core/logger"
	tghelpers "github.com/m3rciful/filestore-bot/core/telegram/helpers"

	tele "gopkg.in/telebot.v4"
)

// AdminOptions defines how admin-only checks should behave.
// OwnerID is always allowed; Authorize, when set, admits additional users.
type AdminOptions struct {
	OwnerID   int64
	Authorize func(ctx context.Context, userID int64) bool
	OnReject  tele.HandlerFunc
}

// Allowed reports whether userID passes the check.
func (o AdminOptions) Allowed(ctx context.Context, userID int64) bool {
	if userID == 0 {
		return false
	}
	if o.OwnerID != 0 && userID == o.OwnerID {
		return true
	}
	if o.Authorize != nil {
		return o.Authorize(ctx, userID)
	}
	return o.OwnerID == 0
}

// AdminOnlyMiddleware ensures that only authorized users can invoke downstream handlers.
func AdminOnlyMiddleware(opts AdminOptions) tele.MiddlewareFunc {
	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			var userID int64
			if u := c.Sender(); u != nil {
				userID = u.ID
			}
			ctx := tghelpers.BuildContext(c)
			if !opts.Allowed(ctx, userID) {
				logger.Warn(ctx, "tg", "access.denied",
					slog.String("status", "rejected"),
					slog.Int64("user_id", userID),
				)
				if opts.OnReject != nil {
					return opts.OnReject(c)
				}
				return nil
			}
			return next(c)
		}
	}
}
