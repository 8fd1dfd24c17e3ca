// Package telegram adapts the Telegram Bot API (github.com/go-telegram/bot)
// to the shop: it turns polled updates into model.Update values and
// implements shop.Platform on top of the API client.
package telegram

import (
	"context"
	"errors"
	"fmt"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"

	"github.com/fairyhunter13/stars-shop-bot/internal/model"
)

// api is the part of *bot.Bot the client calls.
type api interface {
	SendMessage(ctx context.Context, params *bot.SendMessageParams) (*models.Message, error)
	AnswerCallbackQuery(ctx context.Context, params *bot.AnswerCallbackQueryParams) (bool, error)
	SendInvoice(ctx context.Context, params *bot.SendInvoiceParams) (*models.Message, error)
	AnswerPreCheckoutQuery(ctx context.Context, params *bot.AnswerPreCheckoutQueryParams) (bool, error)
	RefundStarPayment(ctx context.Context, params *bot.RefundStarPaymentParams) (bool, error)
}

var errNotAcknowledged = errors.New("telegram: request not acknowledged")

// Client implements shop.Platform.
type Client struct {
	api api
}

func NewClient(b *bot.Bot) *Client {
	return &Client{api: b}
}

func (c *Client) SendMessage(ctx context.Context, chatID int64, msg model.Message) error {
	params := &bot.SendMessageParams{
		ChatID:    chatID,
		Text:      msg.Text,
		ParseMode: models.ParseMode(msg.ParseMode),
	}
	if len(msg.Options) > 0 {
		params.ReplyMarkup = keyboard(msg.Options)
	}
	if _, err := c.api.SendMessage(ctx, params); err != nil {
		return fmt.Errorf("telegram: sendMessage: %w", err)
	}
	return nil
}

func (c *Client) AnswerCallback(ctx context.Context, callbackID string) error {
	ok, err := c.api.AnswerCallbackQuery(ctx, &bot.AnswerCallbackQueryParams{CallbackQueryID: callbackID})
	if err != nil {
		return fmt.Errorf("telegram: answerCallbackQuery: %w", err)
	}
	if !ok {
		return fmt.Errorf("telegram: answerCallbackQuery: %w", errNotAcknowledged)
	}
	return nil
}

func (c *Client) SendInvoice(ctx context.Context, chatID int64, inv model.Invoice) error {
	prices := make([]models.LabeledPrice, 0, len(inv.Prices))
	for _, p := range inv.Prices {
		prices = append(prices, models.LabeledPrice{Label: p.Label, Amount: p.Amount})
	}
	// Stars invoices carry no provider token.
	params := &bot.SendInvoiceParams{
		ChatID:         chatID,
		Title:          inv.Title,
		Description:    inv.Description,
		Payload:        inv.Payload,
		Currency:       inv.Currency,
		Prices:         prices,
		StartParameter: inv.StartParameter,
	}
	if _, err := c.api.SendInvoice(ctx, params); err != nil {
		return fmt.Errorf("telegram: sendInvoice: %w", err)
	}
	return nil
}

func (c *Client) AnswerPreCheckout(ctx context.Context, queryID string, ok bool, errorMessage string) error {
	params := &bot.AnswerPreCheckoutQueryParams{
		PreCheckoutQueryID: queryID,
		OK:                 ok,
		ErrorMessage:       errorMessage,
	}
	acked, err := c.api.AnswerPreCheckoutQuery(ctx, params)
	if err != nil {
		return fmt.Errorf("telegram: answerPreCheckoutQuery: %w", err)
	}
	if !acked {
		return fmt.Errorf("telegram: answerPreCheckoutQuery: %w", errNotAcknowledged)
	}
	return nil
}

func (c *Client) RefundStarPayment(ctx context.Context, userID int64, chargeID string) (bool, error) {
	ok, err := c.api.RefundStarPayment(ctx, &bot.RefundStarPaymentParams{
		UserID:                  userID,
		TelegramPaymentChargeID: chargeID,
	})
	if err != nil {
		return false, fmt.Errorf("telegram: refundStarPayment: %w", err)
	}
	return ok, nil
}

func keyboard(opts []model.Option) *models.InlineKeyboardMarkup {
	rows := make([][]models.InlineKeyboardButton, 0, len(opts))
	for _, o := range opts {
		rows = append(rows, []models.InlineKeyboardButton{{Text: o.Label, CallbackData: o.Data}})
	}
	return &models.InlineKeyboardMarkup{InlineKeyboard: rows}
}
