package model

import (
	"encoding/json"
	"time"
)

// OrderItem is a cart line snapshotted at checkout time. It is never
// re-read from live product data, so the order reflects what was bought
// even if the product later changes.
type OrderItem struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	PriceCents int64  `json:"price"`
	Quantity   int    `json:"quantity"`
	Image      string `json:"image,omitempty"`
	Variant    string `json:"variant,omitempty"`
}

// Order is the single persisted entity of the reconciliation workflow.
type Order struct {
	ID     string
	Number string

	// PaymentID correlates to the gateway charge once one exists. Before
	// that the gateway order id is recorded inside Notes and used as a
	// fallback lookup key.
	PaymentID   *string
	PaymentDate *time.Time
	Notes       string

	Email       string
	Phone       string
	UserID      string
	AddressJSON json.RawMessage

	Items []OrderItem

	SubtotalCents int64
	ShippingCents int64
	TaxCents      int64
	DiscountCents int64
	TotalCents    int64

	Status        OrderStatus
	PaymentStatus PaymentStatus
	History       StatusHistory

	TrackingNumber   string
	ShippingProvider string
	ShippedAt        *time.Time
	DeliveredAt      *time.Time
	AdminNotes       string

	CreatedAt time.Time
	UpdatedAt time.Time
}

// GatewayOrderNote formats the notes line recorded at draft time so the
// webhook can find the row before payment_id is populated.
func GatewayOrderNote(gatewayOrderID string) string {
	return "razorpay_order_id: " + gatewayOrderID
}

// AdminUser is a row of the admin roles table.
type AdminUser struct {
	ID           int64
	Login        string
	PasswordHash string
	Role         string
	CreatedAt    time.Time
}
