package prompt

import (
	"errors"
	"strconv"
	"strings"
)

var (
	// ErrInvalidInputFormat means the reply does not match the expected kind.
	ErrInvalidInputFormat = errors.New("invalid input format")
	// ErrEmptyInput means the reply is empty or whitespace only.
	ErrEmptyInput = errors.New("empty input")
)

// Value is a validated reply. ID is set only for KindNumeric.
type Value struct {
	Text string
	ID   int64
}

// Validate checks trimmed input against kind.
func Validate(kind Kind, input string) (Value, error) {
	s := strings.TrimSpace(input)
	if s == "" {
		return Value{}, ErrEmptyInput
	}
	switch kind {
	case KindNumeric:
		id, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return Value{}, ErrInvalidInputFormat
		}
		return Value{Text: s, ID: id}, nil
	case KindURL:
		if !strings.HasPrefix(s, "http://") && !strings.HasPrefix(s, "https://") {
			return Value{}, ErrInvalidInputFormat
		}
		return Value{Text: s}, nil
	default:
		return Value{Text: s}, nil
	}
}
