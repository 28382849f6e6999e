package prompt

import (
	"fmt"
	"time"
)

// DefaultTimeout applies when Open is called with a non-positive timeout.
const DefaultTimeout = 45 * time.Second

// Kind is the input shape a prompt expects.
type Kind int

const (
	// KindText accepts any non-blank string.
	KindText Kind = iota
	// KindNumeric accepts a signed 64-bit integer.
	KindNumeric
	// KindURL accepts an http:// or https:// link.
	KindURL
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindNumeric:
		return "numeric"
	case KindURL:
		return "url"
	}
	return fmt.Sprintf("kind(%d)", int(k))
}

// Key scopes a session to one user in one chat.
type Key struct {
	ChatID int64
	UserID int64
}

// Status is the terminal state of a session.
type Status int

const (
	// Fulfilled means a reply arrived in time.
	Fulfilled Status = iota + 1
	// TimedOut means the window elapsed without a reply.
	TimedOut
	// Cancelled means the user cancelled or the awaiting context ended.
	Cancelled
	// Superseded means a newer session for the same key replaced this one.
	Superseded
)

func (s Status) String() string {
	switch s {
	case Fulfilled:
		return "fulfilled"
	case TimedOut:
		return "timeout"
	case Cancelled:
		return "cancelled"
	case Superseded:
		return "superseded"
	}
	return "unknown"
}

// Reply is the raw message that fulfilled a session.
type Reply struct {
	Text      string
	MessageID int
}

// Outcome is produced exactly once per session. Reply is set only when Fulfilled.
type Outcome struct {
	Status Status
	Reply  Reply
}
