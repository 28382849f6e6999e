package menu

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/m3rciful/filestore-bot/core/telegram/format"
	"github.com/m3rciful/filestore-bot/core/telegram/keyboard"

	tele "gopkg.in/telebot.v4"
)

// View is a rendered menu: HTML text plus inline keyboard rows.
type View struct {
	Text string
	Rows [][]keyboard.InlineBtn
}

// Markup returns the inline keyboard of v.
func (v View) Markup() *tele.ReplyMarkup {
	return keyboard.InlineButtonsRows(v.Rows...)
}

func btn(text, data string) keyboard.InlineBtn {
	return keyboard.InlineBtn{Text: text, Data: data}
}

func backRow(parent string) []keyboard.InlineBtn {
	return []keyboard.InlineBtn{btn("« Back", parent)}
}

func status(on bool) string {
	if on {
		return "✅ Active"
	}
	return "❌ Inactive"
}

// MainView is the settings root.
func MainView() View {
	rows := keyboard.Chunk([]keyboard.InlineBtn{
		btn("Generate", "menu generate"), btn("Protect", "menu protect"),
		btn("Admins", "menu admins"), btn("F-Subs", "menu fsubs"),
		btn("Start", "menu start"), btn("Force", "menu force"),
		btn("Sponsor", "menu sponsor"), btn("Custom Caption", "menu custom_caption"),
		btn("DB Channel", "menu dbchannel"),
	}, 2)
	return View{
		Text: "<b>Bot Settings:</b>",
		Rows: append(rows, []keyboard.InlineBtn{btn("✖️ Close", "close")}),
	}
}

// FlagView shows a boolean setting with its toggle. changed switches the
// heading to the post-toggle wording.
func FlagView(title, object string, on, changed bool) View {
	text := fmt.Sprintf("Currently %s is <b>%s</b>", title, status(on))
	if changed {
		text = fmt.Sprintf("%s has been changed to <b>%s</b>", title, status(on))
	}
	return View{
		Text: text,
		Rows: [][]keyboard.InlineBtn{
			{btn("Change", "toggle "+object)},
			backRow("settings"),
		},
	}
}

// ListView shows a numbered id list with add and remove buttons.
func ListView(title, object string, items []int64) View {
	var sb strings.Builder
	sb.WriteString(format.Bold(title))
	sb.WriteString(":\n")
	if len(items) == 0 {
		sb.WriteString("  <code>None</code>")
	}
	for i, id := range items {
		fmt.Fprintf(&sb, "  %d. %s\n", i+1, format.Code(strconv.FormatInt(id, 10)))
	}
	return View{
		Text: strings.TrimRight(sb.String(), "\n"),
		Rows: [][]keyboard.InlineBtn{
			{btn("Add", "add "+object), btn("Remove", "del "+object)},
			backRow("settings"),
		},
	}
}

// GreetingView shows the start or force text together with its photo.
func GreetingView(title, object, text, photoURL string) View {
	body := fmt.Sprintf("<b>%s Text:</b>\n%s\n\n<b>Photo:</b> %s",
		title, noneIfBlank(format.Blockquote(text)), codeOrNone(photoURL))
	return View{
		Text: body,
		Rows: [][]keyboard.InlineBtn{
			{btn("Set Text", "update "+object)},
			{btn("Set Photo", "update "+object+"_photo"), btn("Delete Photo", "delete "+object+"_photo")},
			backRow("settings"),
		},
	}
}

// SponsorView shows the sponsor message settings.
func SponsorView(on bool, text, photoURL string) View {
	body := fmt.Sprintf("<b>Sponsor:</b> %s\n\n<b>Text:</b>\n%s\n\n<b>Photo:</b> %s",
		status(on), noneIfBlank(format.Blockquote(text)), codeOrNone(photoURL))
	return View{
		Text: body,
		Rows: [][]keyboard.InlineBtn{
			{btn("Toggle", "toggle sponsor")},
			{btn("Set Text", "update sponsor_text"), btn("Delete Text", "delete sponsor_text")},
			{btn("Set Photo", "update sponsor_photo"), btn("Delete Photo", "delete sponsor_photo")},
			backRow("settings"),
		},
	}
}

// CustomCaptionView shows the caption template and whether it is applied.
func CustomCaptionView(on bool, template string) View {
	body := fmt.Sprintf(
		"<b>Custom Caption:</b> %s\n\n<b>Template:</b>\n%s\n\nPlaceholders: <code>{original_caption}</code>, <code>{link_file}</code>",
		status(on), noneIfBlank(format.Blockquote(template)))
	return View{
		Text: body,
		Rows: [][]keyboard.InlineBtn{
			{btn("Toggle", "toggle custom_caption")},
			{btn("Set Template", "update custom_caption"), btn("Delete Template", "delete custom_caption")},
			backRow("settings"),
		},
	}
}

// DBChannelView shows the active database chat. title is empty when the
// chat could not be looked up.
func DBChannelView(active int64, override bool, title string) View {
	source := "config"
	if override {
		source = "override"
	}
	body := fmt.Sprintf("<b>DB Channel</b> (%s)\nID: %s\nName: %s",
		source,
		format.Code(strconv.FormatInt(active, 10)),
		format.Bold(format.OrDefault(title, "-")),
	)
	return View{
		Text: body,
		Rows: [][]keyboard.InlineBtn{
			{btn("Change", "update dbchannel"), btn("Reset", "reset dbchannel")},
			backRow("settings"),
		},
	}
}

// PromptView asks for a reply and offers cancellation.
func PromptView(ask string, timeout time.Duration) View {
	return View{
		Text: fmt.Sprintf("%s\n\n<b>Timeout:</b> %s", ask, timeout.Round(time.Second)),
		Rows: [][]keyboard.InlineBtn{{keyboard.CancelButton()}},
	}
}

// SuccessView confirms a change. text is HTML.
func SuccessView(text, parent string) View {
	return View{Text: text, Rows: [][]keyboard.InlineBtn{backRow(parent)}}
}

// RejectedView reports unusable input and offers to try again.
func RejectedView(reason, retry, parent string) View {
	return View{
		Text: format.Bold(reason),
		Rows: [][]keyboard.InlineBtn{
			{btn("🔁 Try again", retry)},
			backRow(parent),
		},
	}
}

// TimeoutView reports that no reply arrived in time.
func TimeoutView(retry, parent string) View {
	return View{
		Text: "<b>Time limit exceeded! The process has been cancelled.</b>",
		Rows: [][]keyboard.InlineBtn{
			{btn("🔁 Try again", retry)},
			backRow(parent),
		},
	}
}

// FailureView is shown when the action failed for reasons outside the user's control.
func FailureView(parent string) View {
	return View{
		Text: "<b>An error occurred.</b> Please try again later.",
		Rows: [][]keyboard.InlineBtn{backRow(parent)},
	}
}

func noneIfBlank(s string) string {
	return format.OrDefault(s, "<code>None</code>")
}

func codeOrNone(s string) string {
	if strings.TrimSpace(s) == "" {
		return "<code>None</code>"
	}
	return format.Code(s)
}
