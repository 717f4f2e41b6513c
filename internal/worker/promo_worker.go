package worker

import (
	"context"
	"log/slog"
	"time"
)

type Expirer interface {
	ExpireStale(ctx context.Context, now time.Time) (int64, error)
}

// PromoExpiryWorker periodically switches off promo codes that are past
// their validity window or used up.
type PromoExpiryWorker struct {
	promos   Expirer
	interval time.Duration
	now      func() time.Time
}

func NewPromoExpiryWorker(promos Expirer, interval time.Duration) *PromoExpiryWorker {
	return &PromoExpiryWorker{
		promos:   promos,
		interval: interval,
		now:      time.Now,
	}
}

func (w *PromoExpiryWorker) Start(ctx context.Context) {
	slog.Info("starting promo expiry worker", "interval", w.interval)
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.Info("promo expiry worker stopped")
			return
		case <-ticker.C:
			w.sweep(ctx)
		}
	}
}

func (w *PromoExpiryWorker) sweep(ctx context.Context) {
	n, err := w.promos.ExpireStale(ctx, w.now().UTC())
	if err != nil {
		slog.Error("promo expiry sweep failed", "error", err)
		return
	}
	if n > 0 {
		slog.Info("promo codes deactivated", "count", n)
	}
}
