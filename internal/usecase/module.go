package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/ndelgado/cargotrack/internal/adapter/rates"
	"github.com/ndelgado/cargotrack/internal/config"
	"github.com/ndelgado/cargotrack/internal/domain/repository"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newDispatcher,
	newRateResolver,
	NewTransitionUseCase,
)

type dispatcherParams struct {
	fx.In

	Notifications repository.NotificationRepository
	Config        *config.Config
	Logger        *slog.Logger
}

func newDispatcher(p dispatcherParams) *Dispatcher {
	return NewDispatcher(p.Notifications, p.Config.DedupeWindow, p.Logger)
}

type resolverParams struct {
	fx.In

	Sources []rates.Source
	Pair    rates.PairConfig
	History repository.RateRepository
	Config  *config.Config
	Logger  *slog.Logger
}

func newRateResolver(p resolverParams) *RateResolver {
	return NewRateResolver(
		p.Sources,
		p.Pair,
		p.History,
		p.Config.ProviderTimeout,
		p.Config.RateFreshness,
		p.Config.DefaultRate,
		p.Logger,
	)
}
