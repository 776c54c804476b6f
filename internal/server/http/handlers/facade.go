package handlers

import (
	"context"
	"time"

	"github.com/mellowshop/orderdesk/internal/adapter/razorpay"
	"github.com/mellowshop/orderdesk/internal/domain/model"
	"github.com/mellowshop/orderdesk/internal/usecase"
)

// DraftFacade describes draft order operations exposed via HTTP.
type DraftFacade interface {
	CreateDraft(ctx context.Context, payload usecase.CheckoutPayload) (*model.Order, error)
	UpdateDraft(ctx context.Context, req usecase.DraftUpdate) (*model.Order, error)
}

// VerifyFacade reconciles the client payment-success callback.
type VerifyFacade interface {
	VerifyPayment(ctx context.Context, req usecase.VerifyRequest) (*model.Order, error)
}

// WebhookFacade applies gateway webhook deliveries.
type WebhookFacade interface {
	ProcessWebhook(ctx context.Context, body []byte, sig string) error
}

// AdminFacade backs the admin dashboard endpoints.
type AdminFacade interface {
	AdminLogin(ctx context.Context, login, password string) (string, error)
	ParseToken(token string) (int64, error)
	IsAdmin(ctx context.Context, adminID int64) (bool, error)
	AdminOrder(ctx context.Context, id string) (*model.Order, error)
	AdminOrderHistory(ctx context.Context, id string) (model.StatusHistory, error)
	AdminUpdateOrder(ctx context.Context, id string, req usecase.AdminUpdate) (*model.Order, error)
	FetchPayment(ctx context.Context, paymentID string) (*razorpay.Payment, error)
}

// CheckoutFacade aggregates the full set of operations used across handlers.
type CheckoutFacade interface {
	DraftFacade
	VerifyFacade
	WebhookFacade
	AdminFacade
	RecentlyUpdated(ctx context.Context, since time.Time, limit int) ([]model.Order, error)
}
