package usecase

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	domainErrors "github.com/mellowshop/orderdesk/internal/domain/errors"
	"github.com/mellowshop/orderdesk/internal/domain/model"
	"github.com/mellowshop/orderdesk/internal/domain/repository"
	"github.com/mellowshop/orderdesk/internal/pkg/signature"
)

const (
	eventPaymentCaptured = "payment.captured"
	eventPaymentFailed   = "payment.failed"
)

// webhookEvent mirrors the gateway's webhook envelope.
type webhookEvent struct {
	Event   string `json:"event"`
	Payload struct {
		Payment struct {
			Entity paymentEntity `json:"entity"`
		} `json:"payment"`
	} `json:"payload"`
}

type paymentEntity struct {
	ID               string `json:"id"`
	OrderID          string `json:"order_id"`
	Status           string `json:"status"`
	AmountPaise      int64  `json:"amount"`
	ErrorDescription string `json:"error_description"`
}

// WebhookUseCase is the durability backstop: it confirms or fails a
// payment from the gateway's server push regardless of whether the
// client-side verify call ever completed.
type WebhookUseCase struct {
	orders        repository.OrderRepository
	webhookSecret string
	logger        *slog.Logger
	now           func() time.Time
}

// NewWebhookUseCase constructs WebhookUseCase.
func NewWebhookUseCase(orders repository.OrderRepository, webhookSecret string, logger *slog.Logger) *WebhookUseCase {
	return &WebhookUseCase{
		orders:        orders,
		webhookSecret: webhookSecret,
		logger:        logger,
		now:           time.Now,
	}
}

// Process verifies the raw-body signature and applies the event. It
// returns ErrInvalidSignature on an unauthenticated delivery; unknown
// event types and unmatched orders are acknowledged without action, since
// the gateway cannot fix those by retrying. Store failures propagate so
// the gateway's redelivery acts as the retry mechanism.
func (u *WebhookUseCase) Process(ctx context.Context, body []byte, sig string) error {
	ok, err := signature.VerifyWebhook(body, sig, u.webhookSecret)
	if err != nil || !ok {
		return domainErrors.ErrInvalidSignature
	}

	var event webhookEvent
	if err := json.Unmarshal(body, &event); err != nil {
		u.logger.Error("webhook body unparseable despite valid signature", slog.String("error", err.Error()))
		return nil
	}

	entity := event.Payload.Payment.Entity
	switch event.Event {
	case eventPaymentCaptured:
		return u.handleCaptured(ctx, entity)
	case eventPaymentFailed:
		return u.handleFailed(ctx, entity)
	default:
		u.logger.Info("webhook event ignored", slog.String("event", event.Event))
		return nil
	}
}

func (u *WebhookUseCase) handleCaptured(ctx context.Context, entity paymentEntity) error {
	order, err := u.findOrder(ctx, entity)
	if err != nil {
		return err
	}
	if order == nil {
		return nil
	}

	// Idempotency guard: a redelivered capture is a no-op once the order
	// reached its terminal shape.
	if order.PaymentStatus == model.PaymentStatusPaid && order.Status == model.OrderStatusConfirmed {
		u.logger.Info("capture already applied",
			slog.String("order_id", order.ID),
			slog.String("payment_id", entity.ID),
		)
		return nil
	}

	now := u.now().UTC()
	confirmed := model.OrderStatusConfirmed
	paid := model.PaymentStatusPaid
	if _, err := u.orders.UpdateStatus(ctx, order.ID, repository.OrderPatch{
		Status:        &confirmed,
		PaymentStatus: &paid,
		PaymentID:     &entity.ID,
		PaymentDate:   &now,
		HistoryNote:   "payment captured via webhook",
	}); err != nil {
		u.logger.Error("webhook capture persistence failed",
			slog.String("order_id", order.ID),
			slog.String("payment_id", entity.ID),
			slog.String("event", eventPaymentCaptured),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

func (u *WebhookUseCase) handleFailed(ctx context.Context, entity paymentEntity) error {
	order, err := u.findOrder(ctx, entity)
	if err != nil {
		return err
	}
	if order == nil {
		return nil
	}

	if order.PaymentStatus == model.PaymentStatusFailed {
		return nil
	}

	// Conflict guard: a failure notification arriving after a successful
	// capture is gateway-side reordering and must never downgrade the
	// order.
	if order.PaymentStatus == model.PaymentStatusPaid && order.Status == model.OrderStatusConfirmed {
		u.logger.Warn("stale failure event after capture ignored",
			slog.String("order_id", order.ID),
			slog.String("payment_id", entity.ID),
		)
		return nil
	}

	note := "payment failed via webhook"
	if entity.ErrorDescription != "" {
		note += ": " + entity.ErrorDescription
	}
	failed := model.PaymentStatusFailed
	if _, err := u.orders.UpdateStatus(ctx, order.ID, repository.OrderPatch{
		PaymentStatus: &failed,
		HistoryNote:   note,
	}); err != nil {
		u.logger.Error("webhook failure persistence failed",
			slog.String("order_id", order.ID),
			slog.String("payment_id", entity.ID),
			slog.String("event", eventPaymentFailed),
			slog.String("error", err.Error()),
		)
		return err
	}
	return nil
}

// findOrder resolves the target row: payment_id is authoritative once
// set, with a substring match on the gateway order id in notes covering
// drafts whose verify leg never ran. A fully unmatched delivery returns
// nil: the draft may not exist yet due to ordering races and erroring
// would only burn the gateway's bounded retries.
func (u *WebhookUseCase) findOrder(ctx context.Context, entity paymentEntity) (*model.Order, error) {
	order, err := u.orders.GetByPaymentID(ctx, entity.ID)
	if err == nil {
		return order, nil
	}
	if !errors.Is(err, domainErrors.ErrNotFound) {
		return nil, err
	}

	if entity.OrderID != "" {
		order, err = u.orders.FindByGatewayOrderID(ctx, entity.OrderID)
		if err == nil {
			return order, nil
		}
		if !errors.Is(err, domainErrors.ErrNotFound) {
			return nil, err
		}
	}

	u.logger.Info("webhook for unknown order acknowledged",
		slog.String("payment_id", entity.ID),
		slog.String("gateway_order_id", entity.OrderID),
	)
	return nil, nil
}
