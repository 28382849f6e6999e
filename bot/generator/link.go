package generator

import (
	"encoding/base64"
	"fmt"
	"net/url"
	"strconv"
	"strings"
)

// EncodeLink returns the deep link that resolves to messageID in dbChat.
// The payload is "id-<messageID*|dbChat|>" in unpadded URL-safe base64.
func EncodeLink(botUsername string, messageID int, dbChat int64) string {
	if dbChat < 0 {
		dbChat = -dbChat
	}
	payload := fmt.Sprintf("id-%d", int64(messageID)*dbChat)
	return fmt.Sprintf("https://t.me/%s?start=%s", botUsername, base64.RawURLEncoding.EncodeToString([]byte(payload)))
}

// ShareLink wraps link in Telegram's share dialog URL.
func ShareLink(link string) string {
	return "https://t.me/share/url?url=" + url.QueryEscape(link)
}

// DatabaseLink points at messageID inside the database channel.
func DatabaseLink(dbChat int64, messageID int) string {
	id := strings.TrimPrefix(strconv.FormatInt(dbChat, 10), "-100")
	return fmt.Sprintf("https://t.me/c/%s/%d", id, messageID)
}

// RenderCaption returns the caption for the stored copy. The template wins
// when enabled and non-empty; otherwise the original caption is kept.
func RenderCaption(template string, enabled bool, original, link string) string {
	if !enabled || strings.TrimSpace(template) == "" {
		return original
	}
	r := strings.NewReplacer("{original_caption}", original, "{link_file}", link)
	return r.Replace(template)
}
