package logger

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"strings"
	"unicode"
)

type ctxKey int

const (
	keyRID ctxKey = iota
	keyUpdateID
	keyUserID
	keyChatID
	keyLogger
	keyHandler
	keySession
)

func withValue(ctx context.Context, key ctxKey, val any) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, key, val)
}

func valueOf[T any](ctx context.Context, key ctxKey) T {
	var zero T
	if ctx == nil {
		return zero
	}
	v, ok := ctx.Value(key).(T)
	if !ok {
		return zero
	}
	return v
}

// WithLogger stores log in ctx for handlers further down the chain.
func WithLogger(ctx context.Context, log *slog.Logger) context.Context {
	if log == nil {
		return withValue(ctx, keyLogger, L)
	}
	return withValue(ctx, keyLogger, log)
}

// FromContext returns the logger stored in ctx, or the global one.
func FromContext(ctx context.Context) *slog.Logger {
	if l := valueOf[*slog.Logger](ctx, keyLogger); l != nil {
		return l
	}
	return L
}

// WithRID attaches the request correlation id.
func WithRID(ctx context.Context, rid string) context.Context {
	return withValue(ctx, keyRID, rid)
}

// RIDFrom returns the request correlation id, or "".
func RIDFrom(ctx context.Context) string {
	return valueOf[string](ctx, keyRID)
}

// WithUpdateMeta attaches the update, user and chat identifiers.
func WithUpdateMeta(ctx context.Context, updateID int, userID, chatID int64) context.Context {
	ctx = withValue(ctx, keyUpdateID, updateID)
	ctx = withValue(ctx, keyUserID, userID)
	return withValue(ctx, keyChatID, chatID)
}

// UpdateIDFrom returns the Telegram update id, or 0.
func UpdateIDFrom(ctx context.Context) int {
	return valueOf[int](ctx, keyUpdateID)
}

// UserIDFrom returns the Telegram user id, or 0.
func UserIDFrom(ctx context.Context) int64 {
	return valueOf[int64](ctx, keyUserID)
}

// ChatIDFrom returns the Telegram chat id, or 0.
func ChatIDFrom(ctx context.Context) int64 {
	return valueOf[int64](ctx, keyChatID)
}

// WithHandler names the handler serving the update.
func WithHandler(ctx context.Context, handler string) context.Context {
	if handler == "" {
		return ctx
	}
	return withValue(ctx, keyHandler, handler)
}

// HandlerFrom returns the handler name, or "".
func HandlerFrom(ctx context.Context) string {
	return valueOf[string](ctx, keyHandler)
}

// WithSession tags every later log line with a prompt session id.
func WithSession(ctx context.Context, sessionID string) context.Context {
	if sessionID == "" {
		return ctx
	}
	return withValue(ctx, keySession, sessionID)
}

// SessionFrom returns the prompt session id, or "".
func SessionFrom(ctx context.Context) string {
	return valueOf[string](ctx, keySession)
}

// addContextFields copies the metadata carried by ctx into fields. Keys
// already present are left alone.
func addContextFields(ctx context.Context, fields map[string]any) {
	if ctx == nil {
		return
	}
	put := func(key string, val any, zero bool) {
		if zero {
			return
		}
		if _, ok := fields[key]; !ok {
			fields[key] = val
		}
	}
	rid := RIDFrom(ctx)
	put("rid", rid, rid == "")
	updateID := UpdateIDFrom(ctx)
	put("update_id", updateID, updateID == 0)
	userID := UserIDFrom(ctx)
	put("user_id", userID, userID == 0)
	chatID := ChatIDFrom(ctx)
	put("chat_id", chatID, chatID == 0)
	handler := HandlerFrom(ctx)
	put("handler", handler, handler == "")
	session := SessionFrom(ctx)
	put("session_id", session, session == "")
}

// Sanitize drops control and format runes other than tab and newline.
func Sanitize(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if unicode.IsControl(r) || unicode.Is(unicode.Cf, r) {
			return -1
		}
		return r
	}, s)
}

// SanitizeLimit sanitizes s and truncates it to max runes.
func SanitizeLimit(s string, max int) string {
	if max <= 0 {
		return ""
	}
	r := []rune(Sanitize(s))
	if len(r) > max {
		r = r[:max]
	}
	return string(r)
}

// BuildRID returns a correlation id of the form updateID:chatID:userID.
func BuildRID(updateID int, chatID, userID int64) string {
	return fmt.Sprintf("%d:%d:%d", updateID, chatID, userID)
}

// CompactRID rewrites a BuildRID value as dot-separated base36 segments.
// Other inputs are returned trimmed but otherwise unchanged.
func CompactRID(rid string) string {
	rid = strings.TrimSpace(rid)
	parts := strings.Split(rid, ":")
	if len(parts) != 3 {
		return rid
	}
	for i, part := range parts {
		n, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
		if err != nil {
			return rid
		}
		parts[i] = strconv.FormatInt(n, 36)
	}
	return strings.Join(parts, ".")
}
