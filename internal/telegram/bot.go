package telegram

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/go-telegram/bot"
	"github.com/go-telegram/bot/models"
	"github.com/google/uuid"

	"github.com/fairyhunter13/stars-shop-bot/internal/model"
	"github.com/fairyhunter13/stars-shop-bot/internal/obs"
)

// Enqueuer accepts translated updates for asynchronous handling.
type Enqueuer interface {
	Enqueue(u model.Update) bool
}

// Router receives every polled update, translates it and hands it to the
// worker queue.
type Router struct {
	q Enqueuer
}

func NewRouter(q Enqueuer) *Router {
	return &Router{q: q}
}

// Dispatch is a bot.HandlerFunc.
func (r *Router) Dispatch(_ context.Context, _ *bot.Bot, upd *models.Update) {
	r.route(upd)
}

func (r *Router) route(upd *models.Update) bool {
	u, ok := Translate(upd)
	if !ok {
		if upd != nil {
			obs.Logger.Debug("update_ignored", "telegram_update_id", upd.ID)
		}
		return false
	}
	u.ID = uuid.NewString()
	if !r.q.Enqueue(u) {
		obs.Logger.Warn("update_dropped", "update_id", u.ID, "telegram_update_id", upd.ID, "kind", u.Kind.String())
		return false
	}
	obs.Logger.Debug("update_enqueued", "update_id", u.ID, "telegram_update_id", upd.ID, "kind", u.Kind.String())
	return true
}

// New creates the API client. Every update goes to r; polling errors are
// logged.
func New(token string, pollTimeout time.Duration, r *Router) (*bot.Bot, error) {
	httpClient := &http.Client{Timeout: pollTimeout + 10*time.Second}
	b, err := bot.New(token,
		bot.WithDefaultHandler(r.Dispatch),
		bot.WithErrorsHandler(func(err error) {
			obs.Logger.Error("telegram_error", "error", err)
		}),
		bot.WithHTTPClient(pollTimeout, httpClient),
		bot.WithAllowedUpdates(bot.AllowedUpdates{"message", "callback_query", "pre_checkout_query"}),
	)
	if err != nil {
		return nil, fmt.Errorf("telegram: new bot: %w", err)
	}
	return b, nil
}
