package menu

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/m3rciful/filestore-bot/core/logger"
	tg "github.com/m3rciful/filestore-bot/core/telegram"
	"github.com/m3rciful/filestore-bot/core/telegram/callbacks"
	"github.com/m3rciful/filestore-bot/core/telegram/commands"
	tghelpers "github.com/m3rciful/filestore-bot/core/telegram/helpers"
	"github.com/m3rciful/filestore-bot/core/telegram/prompt"

	tele "gopkg.in/telebot.v4"
)

// Register adds every menu action to reg as a callback, plus the /settings
// and /cancel commands.
func (c *Controller) Register(reg *tg.Registry) error {
	for _, key := range c.Keys() {
		if err := reg.RegisterCallback(key, c.OnCallback); err != nil {
			return fmt.Errorf("register %q: %w", key, err)
		}
	}
	reg.RegisterCommand("/settings", commands.Command{
		Handler:     c.onSettings,
		Description: "Open the bot settings",
		AdminOnly:   true,
	})
	reg.RegisterCommand("/cancel", commands.Command{
		Handler:     c.onCancel,
		Description: "Cancel the pending input",
	})
	return nil
}

// OnCallback authorizes the sender, answers the callback and dispatches the action.
func (c *Controller) OnCallback(tc tele.Context) error {
	ctx := tghelpers.BuildContext(tc)
	var userID int64
	if u := tc.Sender(); u != nil {
		userID = u.ID
	}
	if !c.Authorized(ctx, userID) {
		logger.Warn(ctx, component, "access.denied",
			slog.String("status", "rejected"),
			slog.Int64("user_id", userID),
		)
		return tc.Respond(&tele.CallbackResponse{Text: "You are not authorized.", ShowAlert: true})
	}
	if err := tc.Respond(); err != nil {
		logger.Debug(ctx, component, "callback.answer",
			slog.String("status", "fail"),
			slog.String("err", err.Error()),
		)
	}

	action, ok := callbacks.FromCallback(tc.Callback())
	if !ok || tc.Chat() == nil {
		return nil
	}
	return c.Handle(ctx, Request{
		Action:  action,
		ChatID:  tc.Chat().ID,
		UserID:  userID,
		Surface: teleSurface{c: tc},
	})
}

func (c *Controller) onSettings(tc tele.Context) error {
	v := MainView()
	return tghelpers.SendHTML(tc, v.Text, v.Markup())
}

func (c *Controller) onCancel(tc tele.Context) error {
	if tc.Sender() == nil || tc.Chat() == nil {
		return nil
	}
	if c.Cancel(prompt.Key{ChatID: tc.Chat().ID, UserID: tc.Sender().ID}) {
		return tghelpers.SendHTML(tc, "Cancelled.")
	}
	return tghelpers.SendHTML(tc, "Nothing to cancel.")
}

// teleSurface renders onto the message of a callback update.
type teleSurface struct {
	c tele.Context
}

func (s teleSurface) MessageID() int {
	if m := s.c.Message(); m != nil {
		return m.ID
	}
	return 0
}

func (s teleSurface) Render(_ context.Context, v View) error {
	err := tghelpers.EditHTML(s.c, v.Text, v.Markup())
	if errors.Is(err, tele.ErrSameMessageContent) {
		return nil
	}
	return err
}

func (s teleSurface) Discard(_ context.Context, messageID int) error {
	chat := s.c.Chat()
	if chat == nil || messageID == 0 {
		return nil
	}
	return s.c.Bot().Delete(&tele.Message{ID: messageID, Chat: chat})
}

func (s teleSurface) Close(ctx context.Context) error {
	msg := s.c.Message()
	if msg == nil {
		return nil
	}
	if msg.ReplyTo != nil {
		if err := s.c.Bot().Delete(msg.ReplyTo); err != nil {
			logger.Debug(ctx, component, "menu.close",
				slog.String("status", "skip"),
				slog.String("err", err.Error()),
			)
		}
	}
	return s.c.Bot().Delete(msg)
}

func (s teleSurface) ResolveChat(_ context.Context, id int64) (ChatInfo, error) {
	chat, err := s.c.Bot().ChatByID(id)
	if err != nil {
		return ChatInfo{}, err
	}
	return ChatInfo{
		ID:       chat.ID,
		Type:     chat.Type,
		Title:    chat.Title,
		Username: chat.Username,
	}, nil
}
