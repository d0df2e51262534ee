package di

import (
	"github.com/wdmlabs/bmlconnect/internal/adapter/bml"
	"github.com/wdmlabs/bmlconnect/internal/app"
	"github.com/wdmlabs/bmlconnect/internal/config"
	"github.com/wdmlabs/bmlconnect/internal/logger"
	"github.com/wdmlabs/bmlconnect/internal/pkg/signature"
	"github.com/wdmlabs/bmlconnect/internal/server/http/handlers"
	"github.com/wdmlabs/bmlconnect/internal/server/http/router"
	"github.com/wdmlabs/bmlconnect/internal/storage/postgres"
	"github.com/wdmlabs/bmlconnect/internal/usecase"
	"go.uber.org/fx"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		signature.Module,
		postgres.Module,
		bml.Module,
		usecase.Module,
		fx.Provide(func(client bml.Client) app.TransactionProvider { return client }),
		fx.Provide(func(facade *app.PaymentFacade) handlers.PaymentFacade { return facade }),
		fx.Provide(func(storage *postgres.Storage) handlers.Pinger { return storage }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
