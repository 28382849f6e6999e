package router

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	tg "github.com/m3rciful/filestore-bot/core/telegram"
	"github.com/m3rciful/filestore-bot/core/telegram/commands"
)

func TestCommandRoutesIncludesAliases(t *testing.T) {
	reg := tg.NewRegistry()
	reg.RegisterCommand("/settings", commands.Command{
		Handler:     func(tele.Context) error { return nil },
		Description: "Settings",
		AdminOnly:   true,
		Aliases:     []string{"config", "/prefs"},
	})

	routes := CommandRoutes(reg, CommandRouteOptions{})
	require.Len(t, routes, 3)

	var endpoints []any
	for _, r := range routes {
		assert.NotNil(t, r.Handler)
		endpoints = append(endpoints, r.Endpoint)
	}
	assert.ElementsMatch(t, []any{"/settings", "/config", "/prefs"}, endpoints)
}

func TestCommandRoutesNilRegistry(t *testing.T) {
	assert.Nil(t, CommandRoutes(nil, CommandRouteOptions{}))
}
