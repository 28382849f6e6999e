package helpers

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/filestore-bot/core/logger"
)

func updateContext(t *testing.T) tele.Context {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true, Synchronous: true})
	require.NoError(t, err)
	return b.NewContext(tele.Update{
		ID: 5,
		Message: &tele.Message{
			Sender: &tele.User{ID: 3},
			Chat:   &tele.Chat{ID: 4, Type: tele.ChatPrivate},
			Text:   "x",
		},
	})
}

func TestBuildContextCarriesUpdateMeta(t *testing.T) {
	c := updateContext(t)
	ctx := BuildContext(c)

	assert.Equal(t, "5:4:3", logger.RIDFrom(ctx))
	assert.Equal(t, 5, logger.UpdateIDFrom(ctx))
	assert.Equal(t, int64(3), logger.UserIDFrom(ctx))
	assert.Equal(t, int64(4), logger.ChatIDFrom(ctx))
	assert.Empty(t, logger.SessionFrom(ctx))
	assert.Equal(t, ctx, BuildContext(c))
}

func TestWithSessionSurvivesLaterTags(t *testing.T) {
	c := updateContext(t)
	WithSession(c, "sess-1")
	ctx := WithHandler(c, "prompt_reply")

	assert.Equal(t, "sess-1", SessionFrom(c))
	assert.Equal(t, "sess-1", logger.SessionFrom(ctx))
	assert.Equal(t, "prompt_reply", logger.HandlerFrom(ctx))

	WithSession(c, "")
	assert.Equal(t, "sess-1", SessionFrom(c))
}
