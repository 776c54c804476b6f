package usecase

import (
	"log/slog"

	"go.uber.org/fx"

	"github.com/mellowshop/orderdesk/internal/config"
	"github.com/mellowshop/orderdesk/internal/domain/repository"
	"github.com/mellowshop/orderdesk/internal/pkg/ordernum"
)

// Module provides core business use cases to the fx container.
var Module = fx.Provide(
	newOrderNumberGenerator,
	NewDraftUseCase,
	newVerifyUseCase,
	newWebhookUseCase,
	NewAdminUseCase,
)

type generatorParams struct {
	fx.In

	Config *config.Config
	Orders repository.OrderRepository
	Logger *slog.Logger
}

func newOrderNumberGenerator(p generatorParams) *ordernum.Generator {
	return ordernum.New(p.Config.OrderNumberPrefix, p.Orders, p.Orders, p.Logger)
}

type verifyParams struct {
	fx.In

	Config  *config.Config
	Orders  repository.OrderRepository
	Numbers *ordernum.Generator
	Logger  *slog.Logger
}

func newVerifyUseCase(p verifyParams) *VerifyUseCase {
	return NewVerifyUseCase(p.Orders, p.Numbers, p.Config.RazorpayKeySecret, p.Logger)
}

type webhookParams struct {
	fx.In

	Config *config.Config
	Orders repository.OrderRepository
	Logger *slog.Logger
}

func newWebhookUseCase(p webhookParams) *WebhookUseCase {
	return NewWebhookUseCase(p.Orders, p.Config.RazorpayWebhookSecret, p.Logger)
}
