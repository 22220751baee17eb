package di

import (
	"go.uber.org/fx"

	"github.com/ndelgado/cargotrack/internal/adapter/rates"
	"github.com/ndelgado/cargotrack/internal/app"
	"github.com/ndelgado/cargotrack/internal/config"
	"github.com/ndelgado/cargotrack/internal/logger"
	"github.com/ndelgado/cargotrack/internal/server/http/handlers"
	"github.com/ndelgado/cargotrack/internal/server/http/router"
	"github.com/ndelgado/cargotrack/internal/storage/postgres"
	"github.com/ndelgado/cargotrack/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		postgres.Module,
		rates.Module,
		usecase.Module,
		fx.Provide(func(facade *app.CoreFacade) handlers.CoreFacade { return facade }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
