package telegram

import (
	"strings"

	"github.com/go-telegram/bot/models"

	"github.com/fairyhunter13/stars-shop-bot/internal/model"
)

// commands the shop answers; other text is ignored.
var commands = map[string]bool{"start": true, "help": true, "refund": true}

// Translate reduces a platform update to a model.Update. The second result
// is false for updates the shop does not handle.
func Translate(u *models.Update) (model.Update, bool) {
	if u == nil {
		return model.Update{}, false
	}
	switch {
	case u.PreCheckoutQuery != nil:
		q := u.PreCheckoutQuery
		return model.Update{
			Kind:    model.KindPreCheckout,
			QueryID: q.ID,
			Payload: q.InvoicePayload,
		}, true

	case u.CallbackQuery != nil:
		q := u.CallbackQuery
		out := model.Update{
			Kind:       model.KindCallback,
			UserID:     q.From.ID,
			ChatID:     q.From.ID,
			CallbackID: q.ID,
			Data:       q.Data,
		}
		if m := q.Message.Message; m != nil {
			out.ChatID = m.Chat.ID
		}
		return out, true

	case u.Message != nil:
		return translateMessage(u.Message)
	}
	return model.Update{}, false
}

func translateMessage(m *models.Message) (model.Update, bool) {
	out := model.Update{ChatID: m.Chat.ID}
	if m.From != nil {
		out.UserID = m.From.ID
	}
	if p := m.SuccessfulPayment; p != nil {
		out.Kind = model.KindSuccessfulPayment
		out.Payload = p.InvoicePayload
		out.ChargeID = p.TelegramPaymentChargeID
		return out, true
	}
	cmd, args, ok := ParseCommand(m.Text)
	if !ok || !commands[cmd] {
		return model.Update{}, false
	}
	out.Kind = model.KindCommand
	out.Command = cmd
	out.Args = args
	return out, true
}

// ParseCommand splits "/name@bot arg1 arg2" into "name" and its
// arguments. The command name is lower-cased.
func ParseCommand(text string) (string, []string, bool) {
	fields := strings.Fields(text)
	if len(fields) == 0 || !strings.HasPrefix(fields[0], "/") {
		return "", nil, false
	}
	name := strings.TrimPrefix(fields[0], "/")
	if at := strings.IndexByte(name, '@'); at >= 0 {
		name = name[:at]
	}
	if name == "" {
		return "", nil, false
	}
	return strings.ToLower(name), fields[1:], true
}
