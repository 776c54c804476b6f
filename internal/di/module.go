package di

import (
	"go.uber.org/fx"

	"github.com/mellowshop/orderdesk/internal/adapter/razorpay"
	"github.com/mellowshop/orderdesk/internal/app"
	"github.com/mellowshop/orderdesk/internal/config"
	"github.com/mellowshop/orderdesk/internal/logger"
	"github.com/mellowshop/orderdesk/internal/pkg/auth"
	"github.com/mellowshop/orderdesk/internal/server/http/handlers"
	"github.com/mellowshop/orderdesk/internal/server/http/router"
	"github.com/mellowshop/orderdesk/internal/storage/postgres"
	"github.com/mellowshop/orderdesk/internal/usecase"
)

func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		razorpay.Module,
		usecase.Module,
		fx.Provide(func(client razorpay.Client) app.PaymentProvider { return client }),
		fx.Provide(func(f *app.CheckoutFacade) handlers.CheckoutFacade { return f }),
		fx.Provide(func(s *postgres.Storage) handlers.Pinger { return s }),
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}
