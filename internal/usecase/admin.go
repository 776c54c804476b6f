package usecase

import (
	"context"
	"errors"
	"fmt"

	domainErrors "github.com/mellowshop/orderdesk/internal/domain/errors"
	"github.com/mellowshop/orderdesk/internal/domain/model"
	"github.com/mellowshop/orderdesk/internal/domain/repository"
	"github.com/mellowshop/orderdesk/internal/pkg/auth"
)

// AdminUpdate is the order patch accepted from the admin dashboard. It
// rides the same append-only update contract as the payment paths.
type AdminUpdate struct {
	Status           *model.OrderStatus
	PaymentStatus    *model.PaymentStatus
	TrackingNumber   *string
	ShippingProvider *string
	AdminNotes       *string
	Note             string
}

// AdminUseCase backs the admin dashboard: login against the roles table,
// order fetch, and post-payment lifecycle transitions.
type AdminUseCase struct {
	orders repository.OrderRepository
	roles  repository.RoleRepository
	hasher auth.PasswordHasher
	tokens auth.Strategy
}

// NewAdminUseCase constructs AdminUseCase.
func NewAdminUseCase(orders repository.OrderRepository, roles repository.RoleRepository, hasher auth.PasswordHasher, tokens auth.Strategy) *AdminUseCase {
	return &AdminUseCase{orders: orders, roles: roles, hasher: hasher, tokens: tokens}
}

// Login checks credentials against the roles table and issues a token.
func (u *AdminUseCase) Login(ctx context.Context, login, password string) (string, error) {
	if login == "" || password == "" {
		return "", domainErrors.ErrInvalidCredentials
	}
	admin, err := u.roles.GetByLogin(ctx, login)
	if err != nil {
		if errors.Is(err, domainErrors.ErrNotFound) {
			return "", domainErrors.ErrInvalidCredentials
		}
		return "", err
	}
	if err := u.hasher.Compare(admin.PasswordHash, password); err != nil {
		return "", domainErrors.ErrInvalidCredentials
	}
	if admin.Role != "admin" {
		return "", domainErrors.ErrForbidden
	}
	return u.tokens.IssueToken(admin.ID)
}

// ParseToken validates an admin session token.
func (u *AdminUseCase) ParseToken(token string) (int64, error) {
	return u.tokens.ParseToken(token)
}

// IsAdmin checks the roles table for the given admin id.
func (u *AdminUseCase) IsAdmin(ctx context.Context, adminID int64) (bool, error) {
	return u.roles.IsAdmin(ctx, adminID)
}

// Order fetches a single order; missing rows are a hard ErrNotFound here,
// unlike the webhook's soft acknowledgement.
func (u *AdminUseCase) Order(ctx context.Context, id string) (*model.Order, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: order id is required", domainErrors.ErrInvalidRequest)
	}
	return u.orders.GetByID(ctx, id)
}

// UpdateOrder validates the requested transition against the state
// machine and applies it through the append-only update contract. The
// check-then-update window is accepted at this write frequency rather
// than solved with locking.
func (u *AdminUseCase) UpdateOrder(ctx context.Context, id string, req AdminUpdate) (*model.Order, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: order id is required", domainErrors.ErrInvalidRequest)
	}
	if req.Status == nil && req.PaymentStatus == nil && req.TrackingNumber == nil &&
		req.ShippingProvider == nil && req.AdminNotes == nil {
		return nil, fmt.Errorf("%w: nothing to update", domainErrors.ErrInvalidRequest)
	}

	current, err := u.orders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if req.Status != nil {
		if !model.ValidOrderStatus(*req.Status) {
			return nil, fmt.Errorf("%w: unknown status %q", domainErrors.ErrInvalidRequest, *req.Status)
		}
		if *req.Status != current.Status && !current.Status.CanTransition(*req.Status) {
			return nil, fmt.Errorf("%w: %s -> %s", domainErrors.ErrInvalidTransition, current.Status, *req.Status)
		}
	}
	if req.PaymentStatus != nil {
		if !model.ValidPaymentStatus(*req.PaymentStatus) {
			return nil, fmt.Errorf("%w: unknown payment_status %q", domainErrors.ErrInvalidRequest, *req.PaymentStatus)
		}
		if *req.PaymentStatus != current.PaymentStatus && !current.PaymentStatus.CanTransition(*req.PaymentStatus) {
			return nil, fmt.Errorf("%w: %s -> %s", domainErrors.ErrInvalidTransition, current.PaymentStatus, *req.PaymentStatus)
		}
	}

	note := req.Note
	if note == "" {
		note = "updated by admin"
	}

	return u.orders.UpdateStatus(ctx, id, repository.OrderPatch{
		Status:           req.Status,
		PaymentStatus:    req.PaymentStatus,
		TrackingNumber:   req.TrackingNumber,
		ShippingProvider: req.ShippingProvider,
		AdminNotes:       req.AdminNotes,
		HistoryNote:      note,
	})
}

// OrderHistory returns the audit trail for an order.
func (u *AdminUseCase) OrderHistory(ctx context.Context, id string) (model.StatusHistory, error) {
	if id == "" {
		return nil, fmt.Errorf("%w: order id is required", domainErrors.ErrInvalidRequest)
	}
	return u.orders.StatusHistory(ctx, id)
}
