package usecase

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	validatorv10 "github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	domainErrors "github.com/mellowshop/orderdesk/internal/domain/errors"
	"github.com/mellowshop/orderdesk/internal/domain/model"
	"github.com/mellowshop/orderdesk/internal/domain/repository"
	"github.com/mellowshop/orderdesk/internal/pkg/ordernum"
	"github.com/mellowshop/orderdesk/internal/pkg/signature"
)

// VerifyRequest is the payload of the client's payment-success callback.
type VerifyRequest struct {
	GatewayOrderID string
	PaymentID      string
	Signature      string
	Checkout       *CheckoutPayload
}

// VerifyUseCase reconciles the client-side payment success callback into
// a single confirmed order: update the draft in place when the client
// brought its id back, otherwise insert a fresh confirmed row.
type VerifyUseCase struct {
	orders    repository.OrderRepository
	numbers   *ordernum.Generator
	keySecret string
	validate  *validatorv10.Validate
	logger    *slog.Logger
	now       func() time.Time
}

// NewVerifyUseCase constructs VerifyUseCase.
func NewVerifyUseCase(orders repository.OrderRepository, numbers *ordernum.Generator, keySecret string, logger *slog.Logger) *VerifyUseCase {
	return &VerifyUseCase{
		orders:    orders,
		numbers:   numbers,
		keySecret: keySecret,
		validate:  newCheckoutValidator(),
		logger:    logger,
		now:       time.Now,
	}
}

// Verify validates the gateway signature and converges on one confirmed
// order row. A forged or mismatched signature takes no store action at
// all. Once the signature checks out, any store failure is surfaced to
// the caller: the money already moved, so losing the error would leave a
// paid customer without an order record.
func (u *VerifyUseCase) Verify(ctx context.Context, req VerifyRequest) (*model.Order, error) {
	if req.GatewayOrderID == "" || req.PaymentID == "" || req.Signature == "" {
		return nil, fmt.Errorf("%w: order id, payment id and signature are required", domainErrors.ErrInvalidRequest)
	}

	ok, err := signature.Verify(req.GatewayOrderID, req.PaymentID, req.Signature, u.keySecret)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, domainErrors.ErrInvalidSignature
	}

	if req.Checkout != nil && req.Checkout.DraftOrderID != "" {
		order, err := u.confirmDraft(ctx, req)
		if err == nil {
			return order, nil
		}
		// The user must not be blocked just because the draft leg failed;
		// fall through to a fresh insert.
		u.logger.Warn("draft confirmation failed, inserting fresh order",
			slog.String("draft_order_id", req.Checkout.DraftOrderID),
			slog.String("payment_id", req.PaymentID),
			slog.String("error", err.Error()),
		)
	}

	order, err := u.insertConfirmed(ctx, req)
	if err != nil {
		if errors.Is(err, domainErrors.ErrInvalidRequest) || errors.Is(err, domainErrors.ErrInvalidSignature) {
			return nil, err
		}
		u.logger.Error("post-payment order persistence failed",
			slog.String("gateway_order_id", req.GatewayOrderID),
			slog.String("payment_id", req.PaymentID),
			slog.String("error", err.Error()),
		)
		return nil, err
	}
	return order, nil
}

func (u *VerifyUseCase) confirmDraft(ctx context.Context, req VerifyRequest) (*model.Order, error) {
	now := u.now().UTC()
	confirmed := model.OrderStatusConfirmed
	paid := model.PaymentStatusPaid
	return u.orders.UpdateStatus(ctx, req.Checkout.DraftOrderID, repository.OrderPatch{
		Status:        &confirmed,
		PaymentStatus: &paid,
		PaymentID:     &req.PaymentID,
		PaymentDate:   &now,
		HistoryNote:   "payment verified, order confirmed",
	})
}

func (u *VerifyUseCase) insertConfirmed(ctx context.Context, req VerifyRequest) (*model.Order, error) {
	if req.Checkout == nil {
		return nil, fmt.Errorf("%w: checkout data is required without a draft order", domainErrors.ErrInvalidRequest)
	}
	payload := *req.Checkout
	if payload.GatewayOrderID == "" {
		payload.GatewayOrderID = req.GatewayOrderID
	}
	if err := validateCheckout(u.validate, &payload); err != nil {
		return nil, err
	}

	number, err := u.numbers.Generate(ctx)
	if err != nil {
		return nil, err
	}

	now := u.now().UTC()
	order := &model.Order{
		ID:            uuid.NewString(),
		Number:        number,
		PaymentID:     &req.PaymentID,
		PaymentDate:   &now,
		Notes:         model.GatewayOrderNote(payload.GatewayOrderID),
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
		Status:        model.OrderStatusConfirmed,
		PaymentStatus: model.PaymentStatusPaid,
		History:       model.StatusHistory{}.Append(model.OrderStatusConfirmed, now, "payment verified, order confirmed"),
	}

	inserted, err := u.orders.InsertConfirmed(ctx, order)
	if err == nil {
		return inserted, nil
	}
	if errors.Is(err, domainErrors.ErrAlreadyExists) {
		// A concurrent verify or the webhook already recorded this charge;
		// the payment_id unique index collapsed the race into one row.
		return u.orders.GetByPaymentID(ctx, req.PaymentID)
	}
	return nil, err
}
