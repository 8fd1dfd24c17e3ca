package httpapi

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/fairyhunter13/stars-shop-bot/internal/catalog"
	"github.com/fairyhunter13/stars-shop-bot/internal/model"
	"github.com/fairyhunter13/stars-shop-bot/internal/queue"
	"github.com/fairyhunter13/stars-shop-bot/internal/store"
)

// Dispatcher reports worker pool state.
type Dispatcher interface {
	Metrics() queue.Metrics
	WorkerCount() int
	IsShuttingDown() bool
}

type App struct {
	Catalog    *catalog.Catalog
	Counters   store.Counters
	Dispatcher Dispatcher
	started    time.Time
}

// publicItem is an item as listed to anyone; secrets never leave the bot.
type publicItem struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Price       int    `json:"price"`
	Currency    string `json:"currency"`
}

type tally struct {
	Total  int            `json:"total"`
	ByUser map[string]int `json:"by_user"`
}

func NewApp(c *catalog.Catalog, counters store.Counters, d Dispatcher) *App {
	return &App{Catalog: c, Counters: counters, Dispatcher: d, started: time.Now()}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	if a.Dispatcher.IsShuttingDown() {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "shutting_down"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (a *App) catalogHandler(w http.ResponseWriter, r *http.Request) {
	items := a.Catalog.Items()
	out := make([]publicItem, 0, len(items))
	for _, it := range items {
		out = append(out, toPublic(it))
	}
	writeJSON(w, http.StatusOK, out)
}

func (a *App) itemHandler(w http.ResponseWriter, r *http.Request) {
	it, ok := a.Catalog.Lookup(chi.URLParam(r, "id"))
	if !ok {
		WriteJSONError(w, http.StatusNotFound, "not_found", "")
		return
	}
	writeJSON(w, http.StatusOK, toPublic(it))
}

func (a *App) statsHandler(w http.ResponseWriter, r *http.Request) {
	snap := a.Counters.Snapshot()
	m := map[string]any{
		"purchases":    tally{Total: snap.Total(store.Purchases), ByUser: nonNil(snap[store.Purchases])},
		"refunds":      tally{Total: snap.Total(store.Refunds), ByUser: nonNil(snap[store.Refunds])},
		"queue":        a.Dispatcher.Metrics(),
		"worker_count": a.Dispatcher.WorkerCount(),
		"uptime_sec":   time.Since(a.started).Seconds(),
	}
	writeJSON(w, http.StatusOK, m)
}

func toPublic(it model.Item) publicItem {
	return publicItem{ID: it.ID, Name: it.Name, Description: it.Description, Price: it.Price, Currency: model.Currency}
}

func nonNil(m map[string]int) map[string]int {
	if m == nil {
		return map[string]int{}
	}
	return m
}
