package telegram

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	tele "gopkg.in/telebot.v4"

	"github.com/m3rciful/filestore-bot/core/telegram/commands"
)

func noop(tele.Context) error { return nil }

func TestRegisterCallbackNormalizesKeys(t *testing.T) {
	reg := NewRegistry()
	require.NoError(t, reg.RegisterCallback("toggle  generate", noop))

	_, ok := reg.GetCallback("toggle generate")
	assert.True(t, ok)
	_, ok = reg.GetCallback("TOGGLE generate")
	assert.True(t, ok)

	assert.Error(t, reg.RegisterCallback("toggle generate", noop))
	assert.Error(t, reg.RegisterCallback("   ", noop))
	assert.Error(t, reg.RegisterCallback("settings", nil))
	assert.Equal(t, []string{"toggle generate"}, reg.ListCallbacks())
}

func TestRegisterCommandSkipsInvalid(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("settings", commands.Command{Handler: noop, Description: "x"})
	reg.RegisterCommand("/empty", commands.Command{Handler: noop})
	reg.RegisterCommand("/settings", commands.Command{Handler: noop, Description: "Settings", Aliases: []string{"config"}})
	reg.RegisterCommand("/settings", commands.Command{Handler: noop, Description: "Duplicate"})

	cmds := reg.Commands()
	require.Len(t, cmds, 1)
	assert.Equal(t, "Settings", cmds["/settings"].Description)

	key, _, ok := reg.LookupCommand("config")
	require.True(t, ok)
	assert.Equal(t, "/settings", key)
	_, _, ok = reg.LookupCommand("/missing")
	assert.False(t, ok)
}

type recordingSetter struct {
	calls [][]interface{}
}

func (r *recordingSetter) SetCommands(opts ...interface{}) error {
	r.calls = append(r.calls, opts)
	return nil
}

func TestInitBotCommandsScopesAdminCommands(t *testing.T) {
	reg := NewRegistry()
	reg.RegisterCommand("/start", commands.Command{Handler: noop, Description: "Start"})
	reg.RegisterCommand("/settings", commands.Command{Handler: noop, Description: "Settings", AdminOnly: true})
	reg.RegisterCommand("/debug", commands.Command{Handler: noop, Description: "Debug", Hidden: true})

	setter := &recordingSetter{}
	InitBotCommands(setter, reg, 42)
	require.Len(t, setter.calls, 2)

	assert.Equal(t, []tele.Command{{Text: "start", Description: "Start"}}, setter.calls[0][0])
	assert.Equal(t, []tele.Command{
		{Text: "settings", Description: "Settings"},
		{Text: "start", Description: "Start"},
	}, setter.calls[1][0])
	assert.Equal(t, tele.CommandScope{Type: tele.CommandScopeChat, ChatID: 42}, setter.calls[1][1])

	setter = &recordingSetter{}
	InitBotCommands(setter, reg, 0)
	assert.Len(t, setter.calls, 1)
}
