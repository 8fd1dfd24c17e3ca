// Package shop implements the storefront's command, callback and payment
// handlers on top of a Platform.
//
// Handlers keep no state of their own beyond the injected counter store.
// Delivery of each successful payment exactly once is the platform's
// responsibility; a duplicated event would dispense the secret again.
package shop

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/fairyhunter13/stars-shop-bot/internal/catalog"
	"github.com/fairyhunter13/stars-shop-bot/internal/model"
	"github.com/fairyhunter13/stars-shop-bot/internal/obs"
	"github.com/fairyhunter13/stars-shop-bot/internal/store"
)

// ErrUnknownItem is returned when a payment references an item id that is
// not in the catalog.
var ErrUnknownItem = errors.New("shop: unknown item")

// ErrUnsupportedUpdate is returned by Handle for update kinds or commands
// the shop does not serve.
var ErrUnsupportedUpdate = errors.New("shop: unsupported update")

// Service holds the handler dependencies.
type Service struct {
	platform Platform
	catalog  *catalog.Catalog
	messages *catalog.Messages
	counters store.Counters
}

func NewService(p Platform, c *catalog.Catalog, m *catalog.Messages, counters store.Counters) *Service {
	return &Service{platform: p, catalog: c, messages: m, counters: counters}
}

// Handle routes an update to its handler.
func (s *Service) Handle(ctx context.Context, u model.Update) error {
	switch u.Kind {
	case model.KindCommand:
		switch u.Command {
		case "start":
			return s.Start(ctx, u.ChatID)
		case "help":
			return s.Help(ctx, u.ChatID)
		case "refund":
			return s.Refund(ctx, u.ChatID, u.UserID, u.Args)
		}
		return fmt.Errorf("%w: command %q", ErrUnsupportedUpdate, u.Command)
	case model.KindCallback:
		return s.SelectItem(ctx, u.ChatID, u.CallbackID, u.Data)
	case model.KindPreCheckout:
		return s.PreCheckout(ctx, u.QueryID, u.Payload)
	case model.KindSuccessfulPayment:
		return s.SuccessfulPayment(ctx, u.ChatID, u.UserID, u.Payload, u.ChargeID)
	}
	return fmt.Errorf("%w: kind %s", ErrUnsupportedUpdate, u.Kind)
}

// Start sends the welcome text with one option per catalog item.
func (s *Service) Start(ctx context.Context, chatID int64) error {
	items := s.catalog.Items()
	opts := make([]model.Option, 0, len(items))
	for _, it := range items {
		label, err := s.messages.Render(catalog.KeyItemLabel, it)
		if err != nil {
			return err
		}
		opts = append(opts, model.Option{Label: label, Data: it.ID})
	}
	msg := model.Message{Text: s.messages.Text(catalog.KeyWelcome), Options: opts}
	if err := s.platform.SendMessage(ctx, chatID, msg); err != nil {
		return fmt.Errorf("send menu: %w", err)
	}
	return nil
}

// Help sends the static help text.
func (s *Service) Help(ctx context.Context, chatID int64) error {
	msg := model.Message{Text: s.messages.Text(catalog.KeyHelp), ParseMode: model.ParseModeMarkdown}
	if err := s.platform.SendMessage(ctx, chatID, msg); err != nil {
		return fmt.Errorf("send help: %w", err)
	}
	return nil
}

// SelectItem acknowledges the selection and issues an invoice for a known
// item. Unknown ids are ignored.
func (s *Service) SelectItem(ctx context.Context, chatID int64, callbackID, itemID string) error {
	if callbackID != "" {
		if err := s.platform.AnswerCallback(ctx, callbackID); err != nil {
			return fmt.Errorf("answer callback: %w", err)
		}
	}
	it, ok := s.catalog.Lookup(itemID)
	if !ok {
		obs.Logger.Debug("unknown_item_selected", "item_id", itemID, "chat_id", chatID)
		return nil
	}
	inv := model.Invoice{
		Title:          it.Name,
		Description:    it.Description,
		Payload:        it.ID,
		Currency:       model.Currency,
		Prices:         []model.PriceLine{{Label: it.Name, Amount: it.Price}},
		StartParameter: "start",
	}
	if err := s.platform.SendInvoice(ctx, chatID, inv); err != nil {
		return fmt.Errorf("send invoice %s: %w", it.ID, err)
	}
	return nil
}

// PreCheckout approves iff payload names a catalog item.
func (s *Service) PreCheckout(ctx context.Context, queryID, payload string) error {
	var err error
	if _, ok := s.catalog.Lookup(payload); ok {
		err = s.platform.AnswerPreCheckout(ctx, queryID, true, "")
	} else {
		obs.Logger.Warn("pre_checkout_rejected", "payload", payload)
		err = s.platform.AnswerPreCheckout(ctx, queryID, false, s.messages.Text(catalog.KeyInvalidItem))
	}
	if err != nil {
		return fmt.Errorf("answer pre-checkout: %w", err)
	}
	return nil
}

// SuccessfulPayment records the purchase and sends the item's secret.
func (s *Service) SuccessfulPayment(ctx context.Context, chatID, userID int64, payload, chargeID string) error {
	it, ok := s.catalog.Lookup(payload)
	if !ok {
		return fmt.Errorf("%w: payment payload %q (charge %s)", ErrUnknownItem, payload, chargeID)
	}
	n := s.counters.Increment(store.Purchases, userKey(userID))
	obs.Logger.Info("purchase_completed", "user_id", userID, "item_id", it.ID, "charge_id", chargeID, "user_purchases", n)

	text, err := s.messages.Render(catalog.KeyPaymentSuccess, struct {
		Secret, Name, ChargeID string
	}{it.Secret, it.Name, chargeID})
	if err != nil {
		return err
	}
	msg := model.Message{Text: text, ParseMode: model.ParseModeMarkdown}
	if err := s.platform.SendMessage(ctx, chatID, msg); err != nil {
		return fmt.Errorf("send secret for %s: %w", it.ID, err)
	}
	return nil
}

// Refund asks the platform to refund args[0] to userID. The platform
// decides whether the charge belongs to the user.
func (s *Service) Refund(ctx context.Context, chatID, userID int64, args []string) error {
	if len(args) == 0 || args[0] == "" {
		return s.reply(ctx, chatID, s.messages.Text(catalog.KeyRefundUsage))
	}
	chargeID := args[0]

	ok, err := s.platform.RefundStarPayment(ctx, userID, chargeID)
	if err != nil {
		obs.Logger.Error("refund_error", "user_id", userID, "charge_id", chargeID, "error", err)
		text, rerr := s.messages.Render(catalog.KeyRefundError, struct{ Error string }{err.Error()})
		if rerr != nil {
			return rerr
		}
		return s.reply(ctx, chatID, text)
	}
	if !ok {
		obs.Logger.Info("refund_rejected", "user_id", userID, "charge_id", chargeID)
		return s.reply(ctx, chatID, s.messages.Text(catalog.KeyRefundFailed))
	}
	n := s.counters.Increment(store.Refunds, userKey(userID))
	obs.Logger.Info("refund_completed", "user_id", userID, "charge_id", chargeID, "user_refunds", n)
	return s.reply(ctx, chatID, s.messages.Text(catalog.KeyRefundSuccess))
}

func (s *Service) reply(ctx context.Context, chatID int64, text string) error {
	if err := s.platform.SendMessage(ctx, chatID, model.Message{Text: text}); err != nil {
		return fmt.Errorf("send reply: %w", err)
	}
	return nil
}

func userKey(id int64) string { return strconv.FormatInt(id, 10) }
