package callbacks

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

// Action is a parsed "<verb> <object>" callback identifier.
// Object is empty for single-word actions such as "settings" or "cancel".
type Action struct {
	Verb   string
	Object string
}

// Key returns the canonical identifier used for registry lookups.
func (a Action) Key() string {
	if a.Object == "" {
		return a.Verb
	}
	return a.Verb + " " + a.Object
}

// ParseAction splits data on whitespace: the first token is the verb and the
// remaining tokens, rejoined with one space, form the object.
func ParseAction(data string) (Action, bool) {
	fields := strings.Fields(data)
	if len(fields) == 0 {
		return Action{}, false
	}
	return Action{
		Verb:   strings.ToLower(fields[0]),
		Object: strings.Join(fields[1:], " "),
	}, true
}

// FromCallback extracts the action from a callback. Buttons registered with a
// telebot unique carry "\f<unique>|<payload>"; only the unique part is used then.
func FromCallback(cb *tele.Callback) (Action, bool) {
	if cb == nil {
		return Action{}, false
	}
	if cb.Unique != "" {
		return ParseAction(cb.Unique)
	}
	raw := strings.TrimPrefix(cb.Data, "\f")
	if i := strings.IndexByte(raw, '|'); i >= 0 && raw != cb.Data {
		raw = raw[:i]
	}
	return ParseAction(raw)
}

// CallbackKey returns the canonical action key of the update, or "".
func CallbackKey(c tele.Context) string {
	a, ok := FromCallback(c.Callback())
	if !ok {
		return ""
	}
	return a.Key()
}
