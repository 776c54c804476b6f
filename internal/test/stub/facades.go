package stub

import (
	"context"
	"time"

	"github.com/mellowshop/orderdesk/internal/adapter/razorpay"
	"github.com/mellowshop/orderdesk/internal/domain/model"
	"github.com/mellowshop/orderdesk/internal/usecase"
)

// DraftFacadeStub provides controllable behaviour for draft endpoints.
type DraftFacadeStub struct {
	CreateFn func(context.Context, usecase.CheckoutPayload) (*model.Order, error)
	UpdateFn func(context.Context, usecase.DraftUpdate) (*model.Order, error)
}

func (s DraftFacadeStub) CreateDraft(ctx context.Context, payload usecase.CheckoutPayload) (*model.Order, error) {
	if s.CreateFn != nil {
		return s.CreateFn(ctx, payload)
	}
	return &model.Order{ID: "draft-1", Number: "ORD-20250101-000001"}, nil
}

func (s DraftFacadeStub) UpdateDraft(ctx context.Context, req usecase.DraftUpdate) (*model.Order, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, req)
	}
	return &model.Order{ID: req.OrderID, Number: "ORD-20250101-000001"}, nil
}

// VerifyFacadeStub simulates payment verification.
type VerifyFacadeStub struct {
	VerifyFn func(context.Context, usecase.VerifyRequest) (*model.Order, error)
}

func (s VerifyFacadeStub) VerifyPayment(ctx context.Context, req usecase.VerifyRequest) (*model.Order, error) {
	if s.VerifyFn != nil {
		return s.VerifyFn(ctx, req)
	}
	return &model.Order{ID: "order-1", Number: "ORD-20250101-000001"}, nil
}

// WebhookFacadeStub records webhook deliveries.
type WebhookFacadeStub struct {
	ProcessFn func(context.Context, []byte, string) error
	Bodies    [][]byte
}

func (s *WebhookFacadeStub) ProcessWebhook(ctx context.Context, body []byte, sig string) error {
	s.Bodies = append(s.Bodies, body)
	if s.ProcessFn != nil {
		return s.ProcessFn(ctx, body, sig)
	}
	return nil
}

// AdminFacadeStub simulates dashboard operations.
type AdminFacadeStub struct {
	LoginFn   func(context.Context, string, string) (string, error)
	ParseFn   func(string) (int64, error)
	IsAdminFn func(context.Context, int64) (bool, error)
	OrderFn   func(context.Context, string) (*model.Order, error)
	HistoryFn func(context.Context, string) (model.StatusHistory, error)
	UpdateFn  func(context.Context, string, usecase.AdminUpdate) (*model.Order, error)
	PaymentFn func(context.Context, string) (*razorpay.Payment, error)
}

func (s AdminFacadeStub) AdminLogin(ctx context.Context, login, password string) (string, error) {
	if s.LoginFn != nil {
		return s.LoginFn(ctx, login, password)
	}
	return "admin-token", nil
}

func (s AdminFacadeStub) ParseToken(token string) (int64, error) {
	if s.ParseFn != nil {
		return s.ParseFn(token)
	}
	return 1, nil
}

func (s AdminFacadeStub) IsAdmin(ctx context.Context, adminID int64) (bool, error) {
	if s.IsAdminFn != nil {
		return s.IsAdminFn(ctx, adminID)
	}
	return true, nil
}

func (s AdminFacadeStub) AdminOrder(ctx context.Context, id string) (*model.Order, error) {
	if s.OrderFn != nil {
		return s.OrderFn(ctx, id)
	}
	return &model.Order{ID: id, Number: "ORD-20250101-000001", Status: model.OrderStatusConfirmed, PaymentStatus: model.PaymentStatusPaid}, nil
}

func (s AdminFacadeStub) AdminOrderHistory(ctx context.Context, id string) (model.StatusHistory, error) {
	if s.HistoryFn != nil {
		return s.HistoryFn(ctx, id)
	}
	return model.StatusHistory{}, nil
}

func (s AdminFacadeStub) AdminUpdateOrder(ctx context.Context, id string, req usecase.AdminUpdate) (*model.Order, error) {
	if s.UpdateFn != nil {
		return s.UpdateFn(ctx, id, req)
	}
	return &model.Order{ID: id, Number: "ORD-20250101-000001"}, nil
}

func (s AdminFacadeStub) FetchPayment(ctx context.Context, paymentID string) (*razorpay.Payment, error) {
	if s.PaymentFn != nil {
		return s.PaymentFn(ctx, paymentID)
	}
	return &razorpay.Payment{ID: paymentID, Status: "captured", AmountPaise: 150000, Currency: "INR"}, nil
}

// CheckoutFacadeStub aggregates all facade stubs for router-level tests.
type CheckoutFacadeStub struct {
	DraftFacadeStub
	VerifyFacadeStub
	AdminFacadeStub
	Webhook WebhookFacadeStub

	RecentFn func(context.Context, time.Time, int) ([]model.Order, error)
}

func (s *CheckoutFacadeStub) ProcessWebhook(ctx context.Context, body []byte, sig string) error {
	return s.Webhook.ProcessWebhook(ctx, body, sig)
}

func (s *CheckoutFacadeStub) RecentlyUpdated(ctx context.Context, since time.Time, limit int) ([]model.Order, error) {
	if s.RecentFn != nil {
		return s.RecentFn(ctx, since, limit)
	}
	return nil, nil
}

// PingerStub satisfies the health handler.
type PingerStub struct {
	Err error
}

func (s PingerStub) HealthCheck(ctx context.Context) error {
	return s.Err
}
