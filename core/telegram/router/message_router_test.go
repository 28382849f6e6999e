package router

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/filestore-bot/core/logger"
	tg "github.com/m3rciful/filestore-bot/core/telegram"
	tghelpers "github.com/m3rciful/filestore-bot/core/telegram/helpers"
	"github.com/m3rciful/filestore-bot/core/telegram/prompt"
)

const chatID = int64(-1001)

func offlineBot(t *testing.T) *tele.Bot {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true, Synchronous: true})
	require.NoError(t, err)
	return b
}

func message(b *tele.Bot, userID int64, msg tele.Message) tele.Context {
	msg.ID = 7
	msg.Sender = &tele.User{ID: userID}
	msg.Chat = &tele.Chat{ID: chatID, Type: tele.ChatGroup}
	return b.NewContext(tele.Update{ID: 1, Message: &msg})
}

type messageRig struct {
	prompts  *prompt.Manager
	text     tele.HandlerFunc
	media    tele.HandlerFunc
	fallback int
	handled  int
}

func newMessageRig(t *testing.T) *messageRig {
	t.Helper()
	rig := &messageRig{prompts: prompt.NewManager()}
	reg := tg.NewRegistry()
	reg.SetTextFallback(func(tele.Context) error { rig.fallback++; return nil })

	routes := MessageRoutes(rig.prompts, reg, MessageOptions{
		Media: func(tele.Context) error { rig.handled++; return nil },
	})
	for _, r := range routes {
		switch r.Endpoint {
		case tele.OnText:
			rig.text = r.Handler
		case tele.OnPhoto:
			rig.media = r.Handler
		}
	}
	require.NotNil(t, rig.text)
	require.NotNil(t, rig.media)
	return rig
}

func (r *messageRig) open(userID int64) *prompt.Session {
	return r.prompts.Open(context.Background(), prompt.Key{ChatID: chatID, UserID: userID}, time.Minute, prompt.KindText)
}

func TestMessageRoutesDeliverTextToWaitingPrompt(t *testing.T) {
	b := offlineBot(t)
	rig := newMessageRig(t)
	sess := rig.open(42)

	c := message(b, 42, tele.Message{Text: "hello"})
	require.NoError(t, rig.text(c))
	assert.Equal(t, sess.ID, tghelpers.SessionFrom(c))
	assert.Equal(t, sess.ID, logger.SessionFrom(tghelpers.BuildContext(c)))

	out := sess.Await(context.Background())
	assert.Equal(t, prompt.Fulfilled, out.Status)
	assert.Equal(t, "hello", out.Reply.Text)
	assert.Equal(t, 7, out.Reply.MessageID)
	assert.Zero(t, rig.fallback)

	// The session is settled, so the next message routes normally.
	require.NoError(t, rig.text(message(b, 42, tele.Message{Text: "again"})))
	assert.Equal(t, 1, rig.fallback)
}

func TestMessageRoutesDeliverMediaCaption(t *testing.T) {
	b := offlineBot(t)
	rig := newMessageRig(t)
	sess := rig.open(42)

	require.NoError(t, rig.media(message(b, 42, tele.Message{
		Caption: "https://example.org/a.jpg",
		Photo:   &tele.Photo{File: tele.File{FileID: "f1"}},
	})))

	out := sess.Await(context.Background())
	assert.Equal(t, prompt.Fulfilled, out.Status)
	assert.Equal(t, "https://example.org/a.jpg", out.Reply.Text)
	assert.Zero(t, rig.handled)
}

func TestMessageRoutesIgnoreOtherUserInSameChat(t *testing.T) {
	b := offlineBot(t)
	rig := newMessageRig(t)
	rig.open(42)

	c := message(b, 43, tele.Message{Text: "not yours"})
	require.NoError(t, rig.text(c))
	assert.Equal(t, 1, rig.fallback)
	assert.Empty(t, tghelpers.SessionFrom(c))
	assert.True(t, rig.prompts.Waiting(prompt.Key{ChatID: chatID, UserID: 42}))
}

func TestMessageRoutesMediaFallsThroughWithoutPrompt(t *testing.T) {
	b := offlineBot(t)
	rig := newMessageRig(t)

	require.NoError(t, rig.media(message(b, 42, tele.Message{
		Document: &tele.Document{File: tele.File{FileID: "d1"}, FileName: "a.pdf"},
	})))
	assert.Equal(t, 1, rig.handled)
	assert.Zero(t, rig.prompts.Len())
}
