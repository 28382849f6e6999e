package commands

import (
	"testing"

	"github.com/stretchr/testify/assert"
	tele "gopkg.in/telebot.v4"
)

func TestEndpointsNormalizesAliases(t *testing.T) {
	c := Command{Aliases: []string{"config", "/prefs", " ", "/settings", "config"}}
	assert.Equal(t, []string{"/settings", "/config", "/prefs"}, c.Endpoints("settings"))
}

func TestValid(t *testing.T) {
	h := func(tele.Context) error { return nil }
	assert.True(t, Command{Handler: h, Description: "Open"}.Valid())
	assert.False(t, Command{Handler: h, Description: "  "}.Valid())
	assert.False(t, Command{Description: "Open"}.Valid())
}
