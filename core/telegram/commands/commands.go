// Package commands declares slash commands served by the bot.
package commands

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Command is one slash command. AdminOnly commands are wrapped with the
// access check and listed only in the owner's command menu; Hidden ones are
// never listed.
type Command struct {
	Handler     tele.HandlerFunc
	Description string
	AdminOnly   bool
	Hidden      bool
	Aliases     []string
}

// Valid reports whether the command can be registered.
func (c Command) Valid() bool {
	return c.Handler != nil && strings.TrimSpace(c.Description) != ""
}

// Endpoints returns name followed by the aliases, each with one leading slash.
// Blank aliases and repeats are dropped.
func (c Command) Endpoints(name string) []string {
	out := make([]string, 0, len(c.Aliases)+1)
	for _, n := range append([]string{name}, c.Aliases...) {
		n = strings.TrimPrefix(strings.TrimSpace(n), "/")
		if n == "" {
			continue
		}
		ep := "/" + n
		if !contains(out, ep) {
			out = append(out, ep)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
