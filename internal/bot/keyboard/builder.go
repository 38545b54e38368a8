package keyboard

import (
	"log/slog"
	"strings"

	telebot "gopkg.in/telebot.v3"
)

// CallbackQuickReply prefixes callback data carrying a suggested reply label.
const CallbackQuickReply = "qr"

// Builder renders suggested replies as inline keyboards.
type Builder struct {
	log    *slog.Logger
	perRow int
}

// NewBuilder returns a Builder that lays out two buttons per row.
func NewBuilder(log *slog.Logger) *Builder {
	if log == nil {
		log = slog.Default()
	}
	return &Builder{log: log, perRow: 2}
}

// QuickReplies builds inline buttons for each label. Labels that do not fit the callback data limit
// are left out. It returns nil when no button remains.
func (b *Builder) QuickReplies(labels []string) *telebot.ReplyMarkup {
	kb := NewInlineKeyboard()

	row := make([]InlineButton, 0, b.perRow)
	for _, label := range labels {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}

		if _, err := EncodeCallback(CallbackQuickReply, label); err != nil {
			b.log.Warn("quick reply skipped", slog.String("label", label), slog.Any("error", err))
			continue
		}

		row = append(row, InlineButton{Text: label, Unique: CallbackQuickReply, Data: label})
		if len(row) == b.perRow {
			kb.AddRow(row...)
			row = row[:0]
		}
	}
	kb.AddRow(row...)

	if kb.Len() == 0 {
		return nil
	}

	markup, err := kb.Build()
	if err != nil {
		b.log.Warn("quick reply keyboard not built", slog.Any("error", err))
		return nil
	}
	return markup
}
