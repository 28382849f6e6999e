package callbacks

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestParseAction(t *testing.T) {
	tests := []struct {
		in     string
		want   Action
		wantOK bool
	}{
		{in: "toggle generate", want: Action{Verb: "toggle", Object: "generate"}, wantOK: true},
		{in: "  update   start_photo ", want: Action{Verb: "update", Object: "start_photo"}, wantOK: true},
		{in: "cancel", want: Action{Verb: "cancel"}, wantOK: true},
		{in: "menu custom  caption", want: Action{Verb: "menu", Object: "custom caption"}, wantOK: true},
		{in: "Toggle sponsor", want: Action{Verb: "toggle", Object: "sponsor"}, wantOK: true},
		{in: "   ", wantOK: false},
		{in: "", wantOK: false},
	}
	for _, tt := range tests {
		got, ok := ParseAction(tt.in)
		assert.Equal(t, tt.wantOK, ok, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestActionKey(t *testing.T) {
	assert.Equal(t, "add admin", Action{Verb: "add", Object: "admin"}.Key())
	assert.Equal(t, "settings", Action{Verb: "settings"}.Key())
}

func TestFromCallback(t *testing.T) {
	a, ok := FromCallback(&tele.Callback{Data: "del fsub"})
	assert.True(t, ok)
	assert.Equal(t, "del fsub", a.Key())

	a, ok = FromCallback(&tele.Callback{Data: "\fmenu admins|42"})
	assert.True(t, ok)
	assert.Equal(t, "menu admins", a.Key())

	a, ok = FromCallback(&tele.Callback{Unique: "close", Data: "payload"})
	assert.True(t, ok)
	assert.Equal(t, "close", a.Key())

	_, ok = FromCallback(nil)
	assert.False(t, ok)
}
