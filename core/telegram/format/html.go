package format

import (
	"html"
	"strings"
)

// EscapeHTML escapes text for Telegram's HTML parse mode.
func EscapeHTML(text string) string {
	return html.EscapeString(text)
}

// Code wraps escaped text in <code>.
func Code(text string) string {
	return "<code>" + EscapeHTML(text) + "</code>"
}

// Bold wraps escaped text in <b>.
func Bold(text string) string {
	return "<b>" + EscapeHTML(text) + "</b>"
}

// Blockquote wraps escaped text in <blockquote>; empty text yields "".
func Blockquote(text string) string {
	if strings.TrimSpace(text) == "" {
		return ""
	}
	return "<blockquote>" + EscapeHTML(text) + "</blockquote>"
}

// OrDefault returns s, or def when s is blank.
func OrDefault(s, def string) string {
	if strings.TrimSpace(s) == "" {
		return def
	}
	return s
}
