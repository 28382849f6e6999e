package keyboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInlineButtonsRowsKeepsRawData(t *testing.T) {
	m := InlineButtonsRows(
		[]InlineBtn{{Text: "On", Data: "toggle generate"}, {Text: "Docs", URL: "https://example.com", Data: "ignored"}},
		nil,
		[]InlineBtn{CancelButton()},
	)
	require.Len(t, m.InlineKeyboard, 2)
	assert.Equal(t, "toggle generate", m.InlineKeyboard[0][0].Data)
	assert.Empty(t, m.InlineKeyboard[0][0].Unique)
	assert.Equal(t, "https://example.com", m.InlineKeyboard[0][1].URL)
	assert.Empty(t, m.InlineKeyboard[0][1].Data)
	assert.Equal(t, "cancel", m.InlineKeyboard[1][0].Data)
}

func TestChunk(t *testing.T) {
	btns := []InlineBtn{{Text: "a"}, {Text: "b"}, {Text: "c"}}
	rows := Chunk(btns, 2)
	require.Len(t, rows, 2)
	assert.Len(t, rows[0], 2)
	assert.Len(t, rows[1], 1)
	assert.Len(t, Chunk(btns, 0), 3)
}

func TestCancelButtonOverrides(t *testing.T) {
	b := CancelButton("settings", "Back")
	assert.Equal(t, InlineBtn{Text: "Back", Data: "settings"}, b)
	assert.Equal(t, InlineBtn{Text: "❌ Cancel", Data: "cancel"}, CancelButton())
}
