package middleware

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"
)

func offlineBot(t *testing.T) *tele.Bot {
	t.Helper()
	b, err := tele.NewBot(tele.Settings{Offline: true, Synchronous: true})
	require.NoError(t, err)
	return b
}

func messageFrom(b *tele.Bot, userID int64) tele.Context {
	return b.NewContext(tele.Update{
		ID: int(userID),
		Message: &tele.Message{
			Sender: &tele.User{ID: userID},
			Chat:   &tele.Chat{ID: userID, Type: tele.ChatPrivate},
			Text:   "hi",
		},
	})
}

func TestRateLimitPerUser(t *testing.T) {
	b := offlineBot(t)
	limited := 0
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval:  time.Hour,
		Burst:     2,
		OnLimited: func(tele.Context) error { limited++; return nil },
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })

	for i := 0; i < 3; i++ {
		require.NoError(t, h(messageFrom(b, 1)))
	}
	require.NoError(t, h(messageFrom(b, 2)))

	assert.Equal(t, 3, calls)
	assert.Equal(t, 1, limited)
}

func TestRateLimitExclusions(t *testing.T) {
	b := offlineBot(t)
	mw := RateLimitMiddleware(RateLimitOptions{
		Interval: time.Hour,
		Exclude:  map[string]struct{}{"message": {}},
	})
	calls := 0
	h := mw(func(tele.Context) error { calls++; return nil })
	for i := 0; i < 5; i++ {
		require.NoError(t, h(messageFrom(b, 1)))
	}
	assert.Equal(t, 5, calls)
}

func TestAdminOnly(t *testing.T) {
	b := offlineBot(t)
	admins := map[int64]bool{222: true}
	rejected := 0
	mw := AdminOnlyMiddleware(AdminOptions{
		OwnerID:   111,
		Authorize: func(_ context.Context, id int64) bool { return admins[id] },
		OnReject:  func(tele.Context) error { rejected++; return nil },
	})
	var passed []int64
	h := mw(func(c tele.Context) error { passed = append(passed, c.Sender().ID); return nil })

	for _, id := range []int64{111, 222, 333} {
		require.NoError(t, h(messageFrom(b, id)))
	}
	assert.Equal(t, []int64{111, 222}, passed)
	assert.Equal(t, 1, rejected)
}

func TestAdminOptionsAllowed(t *testing.T) {
	open := AdminOptions{}
	assert.True(t, open.Allowed(context.Background(), 5))
	assert.False(t, open.Allowed(context.Background(), 0))

	ownerOnly := AdminOptions{OwnerID: 1}
	assert.True(t, ownerOnly.Allowed(context.Background(), 1))
	assert.False(t, ownerOnly.Allowed(context.Background(), 2))
}

func TestMessageMetricsCountsSends(t *testing.T) {
	b := offlineBot(t)
	c := messageFrom(b, 1)
	h := MessageMetricsMiddleware(func(c tele.Context) error { return nil })
	require.NoError(t, h(c))
	msgs, kb := GetCounters(c)
	assert.Equal(t, 0, msgs)
	assert.False(t, kb)
}

func TestRecoverReturnsPanicAsError(t *testing.T) {
	b := offlineBot(t)
	var reported error
	SetPanicReporter(func(_ context.Context, err error) { reported = err })
	t.Cleanup(func() { SetPanicReporter(nil) })

	h := RecoverMiddleware(func(tele.Context) error { panic("boom") })
	err := h(messageFrom(b, 9))
	require.ErrorIs(t, err, ErrPanic)
	assert.Contains(t, err.Error(), "boom")
	assert.Equal(t, err, reported)

	ok := RecoverMiddleware(func(tele.Context) error { return nil })
	assert.NoError(t, ok(messageFrom(b, 9)))
}
