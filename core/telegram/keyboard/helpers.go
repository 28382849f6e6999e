package keyboard

import tele "gopkg.in/telebot.v4"

// InlineBtn describes an inline button. Data is sent verbatim as callback_data;
// a non-empty URL turns the button into a link and Data is ignored.
type InlineBtn struct {
	Text string
	Data string
	URL  string
}

const defaultCancelButtonText = "❌ Cancel"

// Inline converts b into a telebot inline button without a unique prefix,
// so the callback payload is exactly b.Data.
func (b InlineBtn) Inline() tele.InlineButton {
	if b.URL != "" {
		return tele.InlineButton{Text: b.Text, URL: b.URL}
	}
	return tele.InlineButton{Text: b.Text, Data: b.Data}
}

// InlineButtonsRows builds an inline keyboard from rows of InlineBtn. Empty rows are skipped.
func InlineButtonsRows(rows ...[]InlineBtn) *tele.ReplyMarkup {
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, 0, len(rows))
	for _, row := range rows {
		if len(row) == 0 {
			continue
		}
		r := make([]tele.InlineButton, len(row))
		for j, btn := range row {
			r[j] = btn.Inline()
		}
		inline = append(inline, r)
	}
	markup.InlineKeyboard = inline
	return markup
}

// Chunk splits buttons into rows of at most n.
func Chunk(buttons []InlineBtn, n int) [][]InlineBtn {
	if n <= 1 {
		n = 1
	}
	var rows [][]InlineBtn
	for i := 0; i < len(buttons); i += n {
		end := i + n
		if end > len(buttons) {
			end = len(buttons)
		}
		rows = append(rows, buttons[i:end])
	}
	return rows
}

// CancelButton returns the shared cancel button. Optional arguments override
// the payload (first value) and the label (second value).
func CancelButton(options ...string) InlineBtn {
	payload := "cancel"
	if len(options) > 0 && options[0] != "" {
		payload = options[0]
	}
	text := defaultCancelButtonText
	if len(options) > 1 && options[1] != "" {
		text = options[1]
	}
	return InlineBtn{Text: text, Data: payload}
}

