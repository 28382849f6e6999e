package router

import (
	"log/slog"
	"time"

	tg "github.com/m3rciful/filestore-bot/core/telegram"
	tghelpers "github.com/m3rciful/filestore-bot/core/telegram/helpers"
	"github.com/m3rciful/filestore-bot/core/telegram/middleware"
	"github.com/m3rciful/filestore-bot/core/telegram/prompt"

	tele "gopkg.in/telebot.v4"
)

// Collector receives replies for pending prompts. Deliver reports whether the
// reply was consumed.
type Collector interface {
	Deliver(key prompt.Key, r prompt.Reply) bool
	SessionID(key prompt.Key) string
}

// MessageOptions controls fallback behaviour for text and media updates.
type MessageOptions struct {
	UnknownText tele.HandlerFunc
	// Media handles non-text messages that no prompt consumed.
	Media tele.HandlerFunc
}

// MediaEndpoints lists the non-text message kinds routed through MessageRoutes.
var MediaEndpoints = []string{
	tele.OnPhoto,
	tele.OnDocument,
	tele.OnVideo,
	tele.OnAudio,
	tele.OnAnimation,
	tele.OnVoice,
	tele.OnSticker,
}

// MessageRoutes builds handlers for text and media messages. A message from a
// (chat, user) with a waiting prompt is delivered to that prompt and consumed.
func MessageRoutes(collector Collector, reg *tg.Registry, opts MessageOptions) []tg.Route {
	handler := func(c tele.Context) error {
		start := time.Now()
		text := c.Text()

		if consumed(c, collector, text) {
			logHandlerSummary(c, "prompt_reply", start, "", "", nil, slog.String("prompt_status", "consumed"))
			return nil
		}

		if reg != nil {
			if key, cmd, ok := reg.LookupCommand(text); ok && cmd.Handler != nil {
				name := normalizeHandlerName(key)
				return handleWithSummary(c, name, start, "", "", func() error {
					return cmd.Handler(c)
				})
			}
		}

		if reg != nil {
			if fb := reg.TextFallback(); fb != nil {
				return handleWithSummary(c, "fallback", start, "", "", func() error {
					return fb(c)
				})
			}
		}

		if opts.UnknownText != nil {
			return handleWithSummary(c, "unknown_text", start, "", "", func() error {
				return opts.UnknownText(c)
			})
		}

		logHandlerSummary(c, "unknown_text", start, "skip", "ok", nil)
		return nil
	}

	mediaHandler := func(c tele.Context) error {
		start := time.Now()
		caption := ""
		if msg := c.Message(); msg != nil {
			caption = msg.Caption
		}
		if consumed(c, collector, caption) {
			logHandlerSummary(c, "prompt_reply", start, "", "", nil, slog.String("prompt_status", "consumed"))
			return nil
		}
		if opts.Media != nil {
			return handleWithSummary(c, "media", start, "", "", func() error {
				return opts.Media(c)
			})
		}
		logHandlerSummary(c, "unexpected_media", start, "skip", "ok", nil)
		return nil
	}

	wrap := func(h tele.HandlerFunc) tele.HandlerFunc {
		return middleware.RecoverMiddleware(middleware.LoggerMiddleware(h))
	}

	routes := []tg.Route{{Endpoint: tele.OnText, Handler: wrap(handler)}}
	for _, ep := range MediaEndpoints {
		routes = append(routes, tg.Route{Endpoint: ep, Handler: wrap(mediaHandler)})
	}
	return routes
}

func consumed(c tele.Context, collector Collector, text string) bool {
	if collector == nil || c.Sender() == nil || c.Chat() == nil {
		return false
	}
	msgID := 0
	if msg := c.Message(); msg != nil {
		msgID = msg.ID
	}
	key := prompt.Key{ChatID: c.Chat().ID, UserID: c.Sender().ID}
	id := collector.SessionID(key)
	if id == "" {
		return false
	}
	if !collector.Deliver(key, prompt.Reply{Text: text, MessageID: msgID}) {
		return false
	}
	tghelpers.WithSession(c, id)
	return true
}
