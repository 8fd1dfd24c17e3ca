package shop

import (
	"context"

	"github.com/fairyhunter13/stars-shop-bot/internal/model"
)

// Platform is the subset of the chat platform's API the shop calls.
type Platform interface {
	SendMessage(ctx context.Context, chatID int64, msg model.Message) error
	AnswerCallback(ctx context.Context, callbackID string) error
	SendInvoice(ctx context.Context, chatID int64, inv model.Invoice) error
	AnswerPreCheckout(ctx context.Context, queryID string, ok bool, errorMessage string) error
	// RefundStarPayment reports whether the platform accepted the refund.
	RefundStarPayment(ctx context.Context, userID int64, chargeID string) (bool, error)
}
