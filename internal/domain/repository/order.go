package repository

import (
	"context"
	"time"

	"github.com/mellowshop/orderdesk/internal/domain/model"
)

// OrderPatch describes a partial order mutation. Nil pointer fields are
// left untouched. HistoryNote annotates the history entry appended for a
// status change; when no status change is requested the note is still
// appended against the current status so audit context is never lost.
type OrderPatch struct {
	Status           *model.OrderStatus
	PaymentStatus    *model.PaymentStatus
	PaymentID        *string
	PaymentDate      *time.Time
	TrackingNumber   *string
	ShippingProvider *string
	AdminNotes       *string
	HistoryNote      string
}

// OrderRepository describes persistence operations with orders.
type OrderRepository interface {
	InsertDraft(ctx context.Context, order *model.Order) (*model.Order, error)
	InsertConfirmed(ctx context.Context, order *model.Order) (*model.Order, error)
	GetByID(ctx context.Context, id string) (*model.Order, error)
	GetByNumber(ctx context.Context, number string) (*model.Order, error)
	GetByPaymentID(ctx context.Context, paymentID string) (*model.Order, error)
	// FindByGatewayOrderID matches the gateway order id embedded in the
	// notes field, used before payment_id is populated.
	FindByGatewayOrderID(ctx context.Context, gatewayOrderID string) (*model.Order, error)
	StatusHistory(ctx context.Context, orderID string) (model.StatusHistory, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	NextOrderSeq(ctx context.Context) (int64, error)
	UpdateStatus(ctx context.Context, orderID string, patch OrderPatch) (*model.Order, error)
	ListUpdatedSince(ctx context.Context, since time.Time, limit int) ([]model.Order, error)
}
