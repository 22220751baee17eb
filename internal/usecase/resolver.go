package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/ndelgado/cargotrack/internal/adapter/rates"
	domainErrors "github.com/ndelgado/cargotrack/internal/domain/errors"
	"github.com/ndelgado/cargotrack/internal/domain/model"
	"github.com/ndelgado/cargotrack/internal/domain/repository"
)

// RateResolver always produces a usable exchange rate, degrading from
// live providers through persisted history down to a hardcoded constant.
type RateResolver struct {
	sources     []rates.Source
	pair        rates.PairConfig
	history     repository.RateRepository
	timeout     time.Duration
	freshness   time.Duration
	defaultRate float64
	logger      *slog.Logger
	now         func() time.Time
}

// NewRateResolver constructs the resolver. sources are tried in order;
// defaultRate is the constant of last resort (zero disables it).
func NewRateResolver(
	sources []rates.Source,
	pair rates.PairConfig,
	history repository.RateRepository,
	timeout, freshness time.Duration,
	defaultRate float64,
	logger *slog.Logger,
) *RateResolver {
	return &RateResolver{
		sources:     sources,
		pair:        pair,
		history:     history,
		timeout:     timeout,
		freshness:   freshness,
		defaultRate: defaultRate,
		logger:      logger,
		now:         time.Now,
	}
}

// Resolve walks the fallback chain. Provider outages are absorbed; the
// only hard failure is a configuration with no sources, no history and no
// default. Every return path appends exactly one history record.
func (r *RateResolver) Resolve(ctx context.Context) (*model.RateResolution, error) {
	if res := r.fromProviders(ctx); res != nil {
		return res, nil
	}
	if res := r.fromHistory(ctx); res != nil {
		return res, nil
	}
	if res := r.fromDefault(ctx); res != nil {
		return res, nil
	}
	return nil, fmt.Errorf("%w: no providers succeeded, history empty, no default configured", domainErrors.ErrNoRateAvailable)
}

// fromProviders tries each source in order and stops at the first
// plausible value.
func (r *RateResolver) fromProviders(ctx context.Context) *model.RateResolution {
	for _, src := range r.sources {
		fetchCtx, cancel := context.WithTimeout(ctx, r.timeout)
		value, err := src.Fetch(fetchCtx)
		cancel()
		if err != nil {
			r.logger.Warn("rate provider failed",
				slog.String("provider", src.Name()),
				slog.String("error", err.Error()),
			)
			continue
		}
		if !r.pair.Plausible(value) {
			r.logger.Warn("rate provider returned implausible value",
				slog.String("provider", src.Name()),
				slog.Float64("value", value),
			)
			continue
		}

		r.persist(ctx, &model.ExchangeRateRecord{
			Rate:       value,
			Source:     src.Name(),
			Timestamp:  r.now(),
			IsFallback: false,
			Metadata:   map[string]string{"pair": r.pair.String()},
		})
		return &model.RateResolution{Rate: value, Source: src.Name()}
	}
	return nil
}

// fromHistory replays the most recent usable record: first a fresh
// non-fallback one, then literally anything.
func (r *RateResolver) fromHistory(ctx context.Context) *model.RateResolution {
	now := r.now()

	rec, err := r.history.LatestValidSince(ctx, now.Add(-r.freshness))
	if err == nil {
		age := now.Sub(rec.Timestamp).Minutes()
		r.persist(ctx, &model.ExchangeRateRecord{
			Rate:       rec.Rate,
			Source:     rec.Source,
			Timestamp:  now,
			IsFallback: true,
			Metadata: map[string]string{
				"pair":               r.pair.String(),
				"reason":             "all providers failed",
				"original_timestamp": rec.Timestamp.UTC().Format(time.RFC3339),
			},
		})
		return &model.RateResolution{
			Rate:          rec.Rate,
			Source:        rec.Source,
			IsFromHistory: true,
			AgeMinutes:    age,
			Warning:       fmt.Sprintf("providers unavailable, using %s rate from %s ago", rec.Source, formatAge(age)),
		}
	}

	rec, err = r.history.LatestAny(ctx)
	if err != nil {
		return nil
	}
	age := now.Sub(rec.Timestamp).Minutes()
	r.persist(ctx, &model.ExchangeRateRecord{
		Rate:       rec.Rate,
		Source:     rec.Source,
		Timestamp:  now,
		IsFallback: true,
		Metadata: map[string]string{
			"pair":               r.pair.String(),
			"reason":             "no fresh history, using last known record",
			"original_timestamp": rec.Timestamp.UTC().Format(time.RFC3339),
		},
	})
	return &model.RateResolution{
		Rate:          rec.Rate,
		Source:        rec.Source,
		IsFromHistory: true,
		AgeMinutes:    age,
		Warning:       fmt.Sprintf("rate is stale: last known value is from %s ago and may be outdated", formatAge(age)),
	}
}

func (r *RateResolver) fromDefault(ctx context.Context) *model.RateResolution {
	if r.defaultRate <= 0 {
		return nil
	}
	r.persist(ctx, &model.ExchangeRateRecord{
		Rate:       r.defaultRate,
		Source:     model.RateSourceDefault,
		Timestamp:  r.now(),
		IsFallback: true,
		Metadata: map[string]string{
			"pair":   r.pair.String(),
			"reason": "no providers and no history",
		},
	})
	return &model.RateResolution{
		Rate:    r.defaultRate,
		Source:  model.RateSourceDefault,
		Warning: "no real rate data exists yet, using the hardcoded default",
	}
}

// persist appends to the history log. An insert failure must not turn a
// resolved rate into an error for the caller.
func (r *RateResolver) persist(ctx context.Context, rec *model.ExchangeRateRecord) {
	if err := r.history.Insert(ctx, rec); err != nil {
		r.logger.Error("persist rate record failed",
			slog.String("source", rec.Source),
			slog.String("error", err.Error()),
		)
	}
}

func formatAge(minutes float64) string {
	if minutes < 90 {
		return strconv.FormatFloat(minutes, 'f', 0, 64) + "m"
	}
	return strconv.FormatFloat(minutes/60, 'f', 1, 64) + "h"
}
