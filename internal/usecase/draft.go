package usecase

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	domainErrors "github.com/mellowshop/orderdesk/internal/domain/errors"
	"github.com/mellowshop/orderdesk/internal/domain/model"
	"github.com/mellowshop/orderdesk/internal/domain/repository"
	"github.com/mellowshop/orderdesk/internal/pkg/ordernum"
)

// DraftUpdate adjusts a provisional order on a client-observed payment
// outcome before any server-side confirmation happened.
type DraftUpdate struct {
	OrderID       string
	PaymentStatus model.PaymentStatus
	Status        *model.OrderStatus
	Note          string
}

// DraftUseCase creates and updates provisional orders so that abandoned
// or failed checkouts still leave an auditable trail.
type DraftUseCase struct {
	orders   repository.OrderRepository
	numbers  *ordernum.Generator
	validate *validatorv10.Validate
	logger   *slog.Logger
	now      func() time.Time
}

// NewDraftUseCase constructs DraftUseCase.
func NewDraftUseCase(orders repository.OrderRepository, numbers *ordernum.Generator, logger *slog.Logger) *DraftUseCase {
	return &DraftUseCase{
		orders:   orders,
		numbers:  numbers,
		validate: newCheckoutValidator(),
		logger:   logger,
		now:      time.Now,
	}
}

// Create inserts a pending/pending order before the customer reaches the
// payment widget. The returned order carries the id and number the client
// hands back during verification.
func (u *DraftUseCase) Create(ctx context.Context, payload CheckoutPayload) (*model.Order, error) {
	if err := validateCheckout(u.validate, &payload); err != nil {
		return nil, err
	}

	number, err := u.numbers.Generate(ctx)
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	note := model.GatewayOrderNote(payload.GatewayOrderID)
	order := &model.Order{
		ID:            uuid.NewString(),
		Number:        number,
		Notes:         note,
		Email:         payload.Email,
		Phone:         payload.Phone,
		UserID:        payload.UserID,
		AddressJSON:   payload.AddressJSON,
		Items:         payload.Items,
		SubtotalCents: payload.SubtotalCents,
		ShippingCents: payload.ShippingCents,
		TaxCents:      payload.TaxCents,
		DiscountCents: payload.DiscountCents,
		TotalCents:    payload.TotalCents,
		Status:        model.OrderStatusPending,
		PaymentStatus: model.PaymentStatusPending,
		History:       model.StatusHistory{}.Append(model.OrderStatusPending, now, "draft created, "+note),
	}

	inserted, err := u.orders.InsertDraft(ctx, order)
	if err != nil {
		return nil, err
	}
	u.logger.Info("draft order created",
		slog.String("order_id", inserted.ID),
		slog.String("order_number", inserted.Number),
		slog.String("gateway_order_id", payload.GatewayOrderID),
	)
	return inserted, nil
}

// Update marks the draft after a client-observed cancellation or failure.
// Fulfilment status stays pending so the attempt remains visible to
// admins as an abandoned-but-recorded checkout.
func (u *DraftUseCase) Update(ctx context.Context, req DraftUpdate) (*model.Order, error) {
	if req.OrderID == "" {
		return nil, fmt.Errorf("%w: order_id is required", domainErrors.ErrInvalidRequest)
	}
	if !model.ValidPaymentStatus(req.PaymentStatus) {
		return nil, fmt.Errorf("%w: unknown payment_status %q", domainErrors.ErrInvalidRequest, req.PaymentStatus)
	}
	if req.Status != nil && !model.ValidOrderStatus(*req.Status) {
		return nil, fmt.Errorf("%w: unknown status %q", domainErrors.ErrInvalidRequest, *req.Status)
	}

	note := req.Note
	if note == "" {
		note = fmt.Sprintf("payment %s reported by client", req.PaymentStatus)
	}

	return u.orders.UpdateStatus(ctx, req.OrderID, repository.OrderPatch{
		Status:        req.Status,
		PaymentStatus: &req.PaymentStatus,
		HistoryNote:   note,
	})
}
