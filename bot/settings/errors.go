package settings

import "errors"

var (
	// ErrDuplicateEntry means the id is already in the list.
	ErrDuplicateEntry = errors.New("duplicate entry")
	// ErrNotFound means the id is not in the list.
	ErrNotFound = errors.New("not found")
	// ErrUnknownSetting means the name is not declared.
	ErrUnknownSetting = errors.New("unknown setting")
	// ErrKindMismatch means a typed accessor was used on a setting of another kind.
	ErrKindMismatch = errors.New("setting kind mismatch")
)
