package prompt

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		kind    Kind
		input   string
		want    Value
		wantErr error
	}{
		{name: "numeric", kind: KindNumeric, input: " 222 ", want: Value{Text: "222", ID: 222}},
		{name: "negative chat id", kind: KindNumeric, input: "-1001234567890", want: Value{Text: "-1001234567890", ID: -1001234567890}},
		{name: "numeric rejects letters", kind: KindNumeric, input: "abc", wantErr: ErrInvalidInputFormat},
		{name: "numeric rejects overflow", kind: KindNumeric, input: "99999999999999999999", wantErr: ErrInvalidInputFormat},
		{name: "numeric empty", kind: KindNumeric, input: "  ", wantErr: ErrEmptyInput},
		{name: "https url", kind: KindURL, input: "https://example.com/a.jpg", want: Value{Text: "https://example.com/a.jpg"}},
		{name: "http url", kind: KindURL, input: "http://example.com", want: Value{Text: "http://example.com"}},
		{name: "url without scheme", kind: KindURL, input: "example.com", wantErr: ErrInvalidInputFormat},
		{name: "ftp url", kind: KindURL, input: "ftp://example.com", wantErr: ErrInvalidInputFormat},
		{name: "text", kind: KindText, input: "Hello {first}", want: Value{Text: "Hello {first}"}},
		{name: "blank text", kind: KindText, input: "\n\t ", wantErr: ErrEmptyInput},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Validate(tt.kind, tt.input)
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}
