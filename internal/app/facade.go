package app

import (
	"context"
	"time"

	"github.com/mellowshop/orderdesk/internal/adapter/razorpay"
	"github.com/mellowshop/orderdesk/internal/domain/model"
	"github.com/mellowshop/orderdesk/internal/domain/repository"
	"github.com/mellowshop/orderdesk/internal/usecase"
)

// PaymentProvider exposes gateway lookups required by the facade.
type PaymentProvider interface {
	FetchPayment(ctx context.Context, paymentID string) (*razorpay.Payment, error)
}

// CheckoutFacade aggregates the reconciliation use cases behind one
// surface consumed by HTTP handlers, middleware and the notifier.
type CheckoutFacade struct {
	draft    *usecase.DraftUseCase
	verify   *usecase.VerifyUseCase
	webhook  *usecase.WebhookUseCase
	admin    *usecase.AdminUseCase
	orders   repository.OrderRepository
	payments PaymentProvider
}

// NewCheckoutFacade constructs the facade.
func NewCheckoutFacade(
	draft *usecase.DraftUseCase,
	verify *usecase.VerifyUseCase,
	webhook *usecase.WebhookUseCase,
	admin *usecase.AdminUseCase,
	orders repository.OrderRepository,
	payments PaymentProvider,
) *CheckoutFacade {
	return &CheckoutFacade{
		draft:    draft,
		verify:   verify,
		webhook:  webhook,
		admin:    admin,
		orders:   orders,
		payments: payments,
	}
}

func (f *CheckoutFacade) CreateDraft(ctx context.Context, payload usecase.CheckoutPayload) (*model.Order, error) {
	return f.draft.Create(ctx, payload)
}

func (f *CheckoutFacade) UpdateDraft(ctx context.Context, req usecase.DraftUpdate) (*model.Order, error) {
	return f.draft.Update(ctx, req)
}

func (f *CheckoutFacade) VerifyPayment(ctx context.Context, req usecase.VerifyRequest) (*model.Order, error) {
	return f.verify.Verify(ctx, req)
}

func (f *CheckoutFacade) ProcessWebhook(ctx context.Context, body []byte, sig string) error {
	return f.webhook.Process(ctx, body, sig)
}

func (f *CheckoutFacade) AdminLogin(ctx context.Context, login, password string) (string, error) {
	return f.admin.Login(ctx, login, password)
}

func (f *CheckoutFacade) ParseToken(token string) (int64, error) {
	return f.admin.ParseToken(token)
}

func (f *CheckoutFacade) IsAdmin(ctx context.Context, adminID int64) (bool, error) {
	return f.admin.IsAdmin(ctx, adminID)
}

func (f *CheckoutFacade) AdminOrder(ctx context.Context, id string) (*model.Order, error) {
	return f.admin.Order(ctx, id)
}

func (f *CheckoutFacade) AdminOrderHistory(ctx context.Context, id string) (model.StatusHistory, error) {
	return f.admin.OrderHistory(ctx, id)
}

func (f *CheckoutFacade) AdminUpdateOrder(ctx context.Context, id string, req usecase.AdminUpdate) (*model.Order, error) {
	return f.admin.UpdateOrder(ctx, id, req)
}

func (f *CheckoutFacade) FetchPayment(ctx context.Context, paymentID string) (*razorpay.Payment, error) {
	return f.payments.FetchPayment(ctx, paymentID)
}

func (f *CheckoutFacade) RecentlyUpdated(ctx context.Context, since time.Time, limit int) ([]model.Order, error) {
	return f.orders.ListUpdatedSince(ctx, since, limit)
}
