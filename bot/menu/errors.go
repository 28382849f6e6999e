package menu

import (
	"errors"

	"github.com/m3rciful/filestore-bot/bot/settings"
	"github.com/m3rciful/filestore-bot/core/telegram/prompt"
)

var (
	// ErrSelfRemovalForbidden means an admin tried to remove their own id.
	ErrSelfRemovalForbidden = errors.New("admins cannot remove themselves")
	// ErrChatKindMismatch means the resolved chat has the wrong type for the list.
	ErrChatKindMismatch = errors.New("chat type not allowed here")
	// ErrChatUnavailable means the bot could not look the chat up.
	ErrChatUnavailable = errors.New("chat unavailable")
)

// rejection returns the user-facing text for errors caused by the input
// rather than by the transport or storage.
func rejection(err error) (string, bool) {
	switch {
	case errors.Is(err, prompt.ErrEmptyInput):
		return "The reply was empty.", true
	case errors.Is(err, prompt.ErrInvalidInputFormat):
		return "The reply has an invalid format.", true
	case errors.Is(err, settings.ErrDuplicateEntry):
		return "That id is already in the list.", true
	case errors.Is(err, settings.ErrNotFound):
		return "That id is not in the list.", true
	case errors.Is(err, ErrSelfRemovalForbidden):
		return "You cannot remove yourself.", true
	case errors.Is(err, ErrChatKindMismatch):
		return "That chat has the wrong type.", true
	case errors.Is(err, ErrChatUnavailable):
		return "The bot cannot access that chat.", true
	}
	return "", false
}
