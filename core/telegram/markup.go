package telegram

import (
	"strings"

	tele "gopkg.in/telebot.v4"
)

const (
	// triggerUnique marks callback buttons produced by this package.
	triggerUnique = "pgtrig"
	// triggersPerRow bounds the keyboard width.
	triggersPerRow = 4
)

// triggerMarkup renders trigger keys as an inline keyboard, up to n buttons
// per row. An empty key set yields no markup so the keyboard disappears from
// the message.
func triggerMarkup(keys []string, n int) *tele.ReplyMarkup {
	if len(keys) == 0 {
		return nil
	}
	if n < 1 {
		n = 1
	}
	markup := &tele.ReplyMarkup{}
	inline := make([][]tele.InlineButton, 0, (len(keys)+n-1)/n)
	for start := 0; start < len(keys); start += n {
		end := start + n
		if end > len(keys) {
			end = len(keys)
		}
		row := make([]tele.InlineButton, 0, end-start)
		for _, key := range keys[start:end] {
			btn := markup.Data(key, triggerUnique, key)
			row = append(row, *btn.Inline())
		}
		inline = append(inline, row)
	}
	markup.InlineKeyboard = inline
	return markup
}

// replacePlaceholder substitutes the {actor} placeholder of a prompt
// template, appending the mention when the template has no placeholder.
func replacePlaceholder(template, mention string) string {
	if strings.Contains(template, "{actor}") {
		return strings.ReplaceAll(template, "{actor}", mention)
	}
	return mention + " " + template
}
