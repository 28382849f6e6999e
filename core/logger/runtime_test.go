package logger

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestContextMetadata(t *testing.T) {
	ctx := WithRID(context.Background(), "1:2:3")
	ctx = WithUpdateMeta(ctx, 1, 3, 2)
	ctx = WithHandler(ctx, "menu")
	ctx = WithSession(ctx, "abc")

	assert.Equal(t, "1:2:3", RIDFrom(ctx))
	assert.Equal(t, 1, UpdateIDFrom(ctx))
	assert.Equal(t, int64(3), UserIDFrom(ctx))
	assert.Equal(t, int64(2), ChatIDFrom(ctx))
	assert.Equal(t, "menu", HandlerFrom(ctx))
	assert.Equal(t, "abc", SessionFrom(ctx))

	assert.Empty(t, SessionFrom(WithSession(context.Background(), "")))
	assert.Same(t, L, FromContext(context.Background()))
}

func TestAddContextFieldsKeepsExplicitValues(t *testing.T) {
	ctx := WithSession(WithRID(context.Background(), "r"), "s1")
	fields := map[string]any{"rid": "explicit"}
	addContextFields(ctx, fields)

	assert.Equal(t, "explicit", fields["rid"])
	assert.Equal(t, "s1", fields["session_id"])
	assert.NotContains(t, fields, "user_id")
}

func TestCompactRID(t *testing.T) {
	assert.Equal(t, "a.z.10", CompactRID("10:35:36"))
	assert.Equal(t, "not-a-rid", CompactRID("not-a-rid"))
	assert.Equal(t, "1:x:2", CompactRID("1:x:2"))
	assert.Equal(t, "", CompactRID(""))
}

func TestSanitizeLimit(t *testing.T) {
	assert.Equal(t, "ab\tc\n", Sanitize("a\x00b\tc\u200b\n"))
	assert.Equal(t, "héll", SanitizeLimit("héllo", 4))
	assert.Equal(t, "", SanitizeLimit("x", 0))
}
