package generator

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEncodeLink(t *testing.T) {
	link := EncodeLink("FileStoreBot", 42, -1001234567890)
	require.True(t, strings.HasPrefix(link, "https://t.me/FileStoreBot?start="))

	payload := strings.TrimPrefix(link, "https://t.me/FileStoreBot?start=")
	assert.NotContains(t, payload, "=")
	raw, err := base64.RawURLEncoding.DecodeString(payload)
	require.NoError(t, err)
	assert.Equal(t, "id-42051851851380", string(raw))
}

func TestEncodeLinkIgnoresChatSign(t *testing.T) {
	assert.Equal(t, EncodeLink("bot", 7, -100500), EncodeLink("bot", 7, 100500))
}

func TestDatabaseLink(t *testing.T) {
	assert.Equal(t, "https://t.me/c/1234567890/42", DatabaseLink(-1001234567890, 42))
}

func TestShareLinkEscapesTarget(t *testing.T) {
	assert.Equal(t,
		"https://t.me/share/url?url=https%3A%2F%2Ft.me%2Fbot%3Fstart%3DaWQtMQ",
		ShareLink("https://t.me/bot?start=aWQtMQ"),
	)
}

func TestRenderCaption(t *testing.T) {
	tests := []struct {
		name     string
		template string
		enabled  bool
		want     string
	}{
		{name: "disabled keeps original", template: "{link_file}", enabled: false, want: "holiday.jpg"},
		{name: "blank template keeps original", template: "  ", enabled: true, want: "holiday.jpg"},
		{
			name:     "placeholders",
			template: "{original_caption}\n<a href=\"{link_file}\">Download</a>",
			enabled:  true,
			want:     "holiday.jpg\n<a href=\"https://t.me/bot?start=x\">Download</a>",
		},
		{name: "repeated placeholder", template: "{link_file} {link_file}", enabled: true, want: "https://t.me/bot?start=x https://t.me/bot?start=x"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, RenderCaption(tt.template, tt.enabled, "holiday.jpg", "https://t.me/bot?start=x"))
		})
	}
}
