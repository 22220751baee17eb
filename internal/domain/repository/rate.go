package repository

import (
	"context"
	"time"

	"github.com/ndelgado/cargotrack/internal/domain/model"
)

// RateRepository describes the append-only exchange rate history.
type RateRepository interface {
	Insert(ctx context.Context, rec *model.ExchangeRateRecord) error
	// LatestValidSince returns the most recent non-fallback record newer
	// than since, or errors.ErrNotFound.
	LatestValidSince(ctx context.Context, since time.Time) (*model.ExchangeRateRecord, error)
	// LatestAny returns the most recent record regardless of age or
	// fallback flag, or errors.ErrNotFound.
	LatestAny(ctx context.Context) (*model.ExchangeRateRecord, error)
	// DeleteOlderThan removes records older than cutoff, always keeping
	// the single most recent record even when it predates the cutoff.
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
