package middleware

import (
	"log/slog"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/m3rciful/filestore-bot/core/logger"
	"github.com/m3rciful/filestore-bot/core/metrics"

	tele "gopkg.in/telebot.v4"
)

// RateLimitOptions configures behaviour of the rate limit middleware.
type RateLimitOptions struct {
	Interval time.Duration
	// Burst is the number of updates allowed back to back; <= 0 means 1.
	Burst     int
	Exclude   map[string]struct{}
	OnLimited tele.HandlerFunc
	// IdleTTL drops limiters of users that have been quiet for this long; 0 means 10m.
	IdleTTL time.Duration
}

type userLimiter struct {
	lim  *rate.Limiter
	seen time.Time
}

// RateLimitMiddleware returns a middleware that gives each user a token bucket
// refilled once per Interval.
func RateLimitMiddleware(opts RateLimitOptions) tele.MiddlewareFunc {
	burst := opts.Burst
	if burst <= 0 {
		burst = 1
	}
	ttl := opts.IdleTTL
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	var (
		mu       sync.Mutex
		limiters = make(map[int64]*userLimiter)
		lastGC   time.Time
	)
	limiterFor := func(userID int64, now time.Time) *rate.Limiter {
		mu.Lock()
		defer mu.Unlock()
		if now.Sub(lastGC) > ttl {
			for id, ul := range limiters {
				if now.Sub(ul.seen) > ttl {
					delete(limiters, id)
				}
			}
			lastGC = now
		}
		ul, ok := limiters[userID]
		if !ok {
			ul = &userLimiter{lim: rate.NewLimiter(rate.Every(opts.Interval), burst)}
			limiters[userID] = ul
		}
		ul.seen = now
		return ul.lim
	}

	return func(next tele.HandlerFunc) tele.HandlerFunc {
		return func(c tele.Context) error {
			user := c.Sender()
			if user == nil || opts.Interval <= 0 {
				return next(c)
			}

			kind := updateKind(c.Update())
			if _, skip := opts.Exclude[kind]; skip {
				return next(c)
			}

			now := time.Now()
			if limiterFor(user.ID, now).AllowN(now, 1) {
				return next(c)
			}

			attrs := []any{
				slog.String("event", "tg.rate_limit"),
				slog.String("status", "rate_limited"),
				slog.Int64("user_id", user.ID),
			}
			if chat := c.Chat(); chat != nil {
				attrs = append(attrs, slog.Int64("chat_id", chat.ID))
			}
			logger.TG.Warn("rate limit", attrs...)
			metrics.Updates.WithLabelValues(kind, "rate_limited").Inc()
			if opts.OnLimited != nil {
				_ = opts.OnLimited(c)
			}
			return nil
		}
	}
}

func updateKind(upd tele.Update) string {
	switch {
	case upd.Callback != nil:
		return "callback"
	case upd.Message != nil:
		return "message"
	case upd.Query != nil:
		return "inline_query"
	}
	return "other"
}
