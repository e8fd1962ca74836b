package quote

import (
	"context"
	"time"

	"github.com/rs/zerolog"

	"github.com/noah-isme/backend-tienda/internal/combo"
	"github.com/noah-isme/backend-tienda/internal/lock"
	"github.com/noah-isme/backend-tienda/internal/rates"
)

type snapshotStore interface {
	ListComboIDs(ctx context.Context) ([]string, error)
	GetCombo(ctx context.Context, id string) (combo.Combo, error)
	GetProductsByIDs(ctx context.Context, ids []string) (map[string]combo.Product, error)
	UpdateComboSnapshot(ctx context.Context, id string, baseTotal float64) error
}

// SnapshotRefresher periodically recomputes each combo's base total from live
// constituent prices and persists it, so pricing keeps a usable fallback when
// constituents later disappear. The distributed lock keeps a single instance
// doing the work across replicas.
type SnapshotRefresher struct {
	Store    snapshotStore
	Rates    *rates.Service
	Locker   lock.Locker
	Interval time.Duration
	Log      zerolog.Logger
}

const snapshotLockKey = "lock:combo-snapshots"

// Run refreshes snapshots on the configured interval until ctx is cancelled.
func (r *SnapshotRefresher) Run(ctx context.Context) {
	interval := r.Interval
	if interval <= 0 {
		interval = time.Hour
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := r.RefreshOnce(ctx); err != nil && ctx.Err() == nil {
				r.Log.Error().Err(err).Msg("combo snapshot refresh failed")
			}
		}
	}
}

// RefreshOnce recomputes and persists every combo's base total under the lock.
func (r *SnapshotRefresher) RefreshOnce(ctx context.Context) error {
	return r.Locker.WithLock(ctx, snapshotLockKey, 5*time.Minute, func(ctx context.Context) error {
		ids, err := r.Store.ListComboIDs(ctx)
		if err != nil {
			return err
		}
		var convert combo.ConvertFunc
		base := ""
		if r.Rates != nil {
			fn, err := r.Rates.ConverterFor(ctx)
			if err != nil {
				return err
			}
			convert = fn
			base = r.Rates.BaseCurrency
		}
		for _, id := range ids {
			c, err := r.Store.GetCombo(ctx, id)
			if err != nil {
				r.Log.Warn().Err(err).Str("comboId", id).Msg("skip combo snapshot")
				continue
			}
			products, err := r.Store.GetProductsByIDs(ctx, c.ProductIDs)
			if err != nil {
				r.Log.Warn().Err(err).Str("comboId", id).Msg("skip combo snapshot")
				continue
			}
			p := combo.ComputePricing(combo.Params{
				Combo:              c,
				Products:           products,
				Convert:            convert,
				SelectedCurrencyID: base,
				BaseCurrencyID:     base,
			})
			// Nothing live to snapshot: the combo priced off its old
			// snapshot (or has no priceable constituents at all).
			if p.Estimated || p.BasePrice <= 0 {
				continue
			}
			if err := r.Store.UpdateComboSnapshot(ctx, id, p.BasePrice); err != nil {
				r.Log.Warn().Err(err).Str("comboId", id).Msg("persist combo snapshot")
			}
		}
		return nil
	})
}
