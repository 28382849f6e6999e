// Package generator turns private messages from admins into shareable deep links.
package generator

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/m3rciful/filestore-bot/bot/settings"
	"github.com/m3rciful/filestore-bot/core/errtrack"
	"github.com/m3rciful/filestore-bot/core/logger"
	"github.com/m3rciful/filestore-bot/core/metrics"
	tghelpers "github.com/m3rciful/filestore-bot/core/telegram/helpers"
	"github.com/m3rciful/filestore-bot/core/telegram/keyboard"
	"github.com/m3rciful/filestore-bot/core/telegram/prompt"

	tele "gopkg.in/telebot.v4"
)

const component = "service.generator"

// Options configure a Generator.
type Options struct {
	Store   *settings.Store
	Prompts *prompt.Manager
	// Authorize admits the sender; nil admits nobody.
	Authorize    func(ctx context.Context, userID int64) bool
	CaptionDelay time.Duration
	Tracker      errtrack.Tracker
}

// Generator copies messages into the database chat and replies with a link.
type Generator struct {
	store        *settings.Store
	prompts      *prompt.Manager
	authorize    func(ctx context.Context, userID int64) bool
	captionDelay time.Duration
	tracker      errtrack.Tracker
	username     atomic.Pointer[string]
}

// New builds a Generator.
func New(opts Options) *Generator {
	tracker := opts.Tracker
	if tracker == nil {
		tracker = errtrack.Noop{}
	}
	return &Generator{
		store:        opts.Store,
		prompts:      opts.Prompts,
		authorize:    opts.Authorize,
		captionDelay: opts.CaptionDelay,
		tracker:      tracker,
	}
}

// SetBotUsername sets the username used in deep links. It is known only once the bot is online.
func (g *Generator) SetBotUsername(name string) {
	g.username.Store(&name)
}

func (g *Generator) botUsername() string {
	if p := g.username.Load(); p != nil {
		return *p
	}
	return ""
}

// Handle processes a private message that no prompt and no command consumed.
func (g *Generator) Handle(c tele.Context) error {
	msg := c.Message()
	if msg == nil || c.Sender() == nil || c.Chat() == nil || c.Chat().Type != tele.ChatPrivate {
		return nil
	}
	ctx := tghelpers.WithHandler(c, "generator")
	userID := c.Sender().ID
	if g.authorize == nil || !g.authorize(ctx, userID) {
		logger.Debug(ctx, component, "generator.skip", slog.String("reason", "unauthorized"))
		return nil
	}
	if g.prompts != nil && g.prompts.Waiting(prompt.Key{ChatID: c.Chat().ID, UserID: userID}) {
		logger.Debug(ctx, component, "generator.skip", slog.String("reason", "prompt_waiting"))
		return nil
	}

	on, err := g.store.Flag(ctx, settings.GenerateStatus)
	if err != nil {
		return g.fail(ctx, c, err)
	}
	if !on {
		logger.Debug(ctx, component, "generator.skip", slog.String("reason", "disabled"))
		return nil
	}

	start := time.Now()
	link, stored, dbChat, err := g.copyToDatabase(ctx, c, msg)
	if err != nil {
		return g.fail(ctx, c, err)
	}

	markup := keyboard.InlineButtonsRows(
		[]keyboard.InlineBtn{{Text: "Share", URL: ShareLink(link)}},
		[]keyboard.InlineBtn{{Text: "Open in database", URL: DatabaseLink(dbChat, stored.ID)}},
	)
	if err := tghelpers.ReplyHTML(c, link, markup); err != nil {
		return g.fail(ctx, c, err)
	}

	metrics.LinksGenerated.Inc()
	logger.SVCGenerator.InfoContext(ctx, "link generated",
		slog.String("event", "generator.link"),
		slog.Int64("chat_id", dbChat),
		slog.Int("message_id", stored.ID),
		slog.Duration("duration", logger.RoundMS(time.Since(start))),
	)
	return nil
}

// copyOptions applies the protect_content flag to the stored copy.
func (g *Generator) copyOptions(ctx context.Context) (*tele.SendOptions, error) {
	protect, err := g.store.Flag(ctx, settings.ProtectContent)
	if err != nil {
		return nil, err
	}
	return &tele.SendOptions{Protected: protect}, nil
}

// copyToDatabase copies msg into the active database chat and fixes up its caption.
func (g *Generator) copyToDatabase(ctx context.Context, c tele.Context, msg *tele.Message) (string, *tele.Message, int64, error) {
	dbChat, err := g.store.ActiveDatabaseChat(ctx)
	if err != nil {
		return "", nil, 0, err
	}
	if dbChat == 0 {
		return "", nil, 0, fmt.Errorf("no database chat configured")
	}

	opts, err := g.copyOptions(ctx)
	if err != nil {
		return "", nil, 0, err
	}
	stored, err := c.Bot().Copy(tele.ChatID(dbChat), msg, opts)
	if err != nil {
		return "", nil, 0, fmt.Errorf("copy to database chat: %w", err)
	}
	link := EncodeLink(g.botUsername(), stored.ID, dbChat)

	if msg.Media() == nil {
		return link, stored, dbChat, nil
	}
	enabled, err := g.store.Flag(ctx, settings.CustomCaptionEnabled)
	if err != nil {
		return "", nil, 0, err
	}
	template, _, err := g.store.Text(ctx, settings.CustomCaptionTemplate)
	if err != nil {
		return "", nil, 0, err
	}
	caption := RenderCaption(template, enabled, msg.Caption, link)
	if caption == msg.Caption {
		return link, stored, dbChat, nil
	}

	if err := sleep(ctx, g.captionDelay); err != nil {
		return "", nil, 0, err
	}
	if _, err := c.Bot().EditCaption(stored, caption, &tele.SendOptions{ParseMode: tele.ModeHTML}); err != nil {
		return "", nil, 0, fmt.Errorf("edit stored caption: %w", err)
	}
	return link, stored, dbChat, nil
}

func (g *Generator) fail(ctx context.Context, c tele.Context, err error) error {
	logger.Error(ctx, component, "generator.link",
		slog.String("status", "fail"),
		slog.String("err", err.Error()),
	)
	g.tracker.CaptureError(ctx, err, map[string]string{"handler": "generator"})
	return tghelpers.ReplyHTML(c, "<b>An error occurred!</b>")
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
