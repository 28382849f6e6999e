package format

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEscapeHTML(t *testing.T) {
	assert.Equal(t, "&lt;b&gt;Tom &amp; Jerry&lt;/b&gt;", EscapeHTML("<b>Tom & Jerry</b>"))
	assert.Equal(t, "<code>-100&lt;1&gt;</code>", Code("-100<1>"))
	assert.Equal(t, "<b>x</b>", Bold("x"))
}

func TestBlockquoteAndDefault(t *testing.T) {
	assert.Equal(t, "", Blockquote("  "))
	assert.Equal(t, "<blockquote>hi</blockquote>", Blockquote("hi"))
	assert.Equal(t, "none", OrDefault(" ", "none"))
	assert.Equal(t, "set", OrDefault("set", "none"))
}
