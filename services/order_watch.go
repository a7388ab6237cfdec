package services

import (
	"context"
	"log"
	"sort"
	"time"

	"momo-telegram/models"
)

type OrderLister interface {
	Orders(ctx context.Context) ([]models.Order, error)
}

// OrderWatcher polls active orders and reports when the count grows.
type OrderWatcher struct {
	lister   OrderLister
	interval time.Duration
	notify   func(ctx context.Context, newOrders []models.Order)
}

func NewOrderWatcher(lister OrderLister, interval time.Duration, notify func(ctx context.Context, newOrders []models.Order)) *OrderWatcher {
	if interval <= 0 {
		interval = 5 * time.Second
	}
	return &OrderWatcher{lister: lister, interval: interval, notify: notify}
}

// watchState is carried from one poll to the next.
type watchState struct {
	primed bool
	prev   int
}

// observe returns the next state and the orders to announce. The first
// observation only sets the baseline. Two orders arriving while one is
// completed in the same interval are not detected.
func observe(s watchState, orders []models.Order) (watchState, []models.Order) {
	count := len(orders)
	if !s.primed || count <= s.prev {
		return watchState{primed: true, prev: count}, nil
	}
	fresh := newestOrders(orders, count-s.prev)
	return watchState{primed: true, prev: count}, fresh
}

func newestOrders(orders []models.Order, n int) []models.Order {
	sorted := append([]models.Order(nil), orders...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].ID > sorted[j].ID })
	if n > len(sorted) {
		n = len(sorted)
	}
	return sorted[:n]
}

// Run polls until ctx is cancelled. A failed fetch keeps the previous count.
func (w *OrderWatcher) Run(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	var state watchState
	for {
		state = w.poll(ctx, state)
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (w *OrderWatcher) poll(ctx context.Context, state watchState) watchState {
	orders, err := w.lister.Orders(ctx)
	if err != nil {
		if ctx.Err() == nil {
			log.Printf("poll orders: %v", err)
		}
		return state
	}
	next, fresh := observe(state, orders)
	if len(fresh) > 0 && w.notify != nil {
		w.notify(ctx, fresh)
	}
	return next
}
