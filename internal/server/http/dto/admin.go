package dto

import (
	"encoding/json"
	"time"
)

// AdminLoginRequest authenticates against the roles table.
type AdminLoginRequest struct {
	Login    string `json:"login"`
	Password string `json:"password"`
}

// AdminTokenResponse carries the issued session token.
type AdminTokenResponse struct {
	Success bool   `json:"success"`
	Token   string `json:"token"`
}

// AdminUpdateRequest patches an order from the dashboard.
type AdminUpdateRequest struct {
	Status           *string `json:"status,omitempty"`
	PaymentStatus    *string `json:"payment_status,omitempty"`
	TrackingNumber   *string `json:"tracking_number,omitempty"`
	ShippingProvider *string `json:"shipping_provider,omitempty"`
	AdminNotes       *string `json:"admin_notes,omitempty"`
	Note             string  `json:"note,omitempty"`
}

// StatusChange is one audit-trail entry in responses.
type StatusChange struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	Note      string    `json:"note,omitempty"`
}

// AdminOrderResponse is the full order view for the dashboard.
type AdminOrderResponse struct {
	Success          bool            `json:"success"`
	OrderID          string          `json:"order_id"`
	OrderNumber      string          `json:"order_number"`
	PaymentID        string          `json:"payment_id,omitempty"`
	PaymentDate      *time.Time      `json:"payment_date,omitempty"`
	Notes            string          `json:"notes,omitempty"`
	Email            string          `json:"email"`
	Phone            string          `json:"phone,omitempty"`
	UserID           string          `json:"user_id,omitempty"`
	AddressJSON      json.RawMessage `json:"address_json,omitempty"`
	Items            []OrderItem     `json:"items"`
	SubtotalCents    int64           `json:"subtotal_cents"`
	ShippingCents    int64           `json:"shipping_cents"`
	TaxCents         int64           `json:"tax_cents"`
	DiscountCents    int64           `json:"discount_cents"`
	TotalCents       int64           `json:"total_cents"`
	Status           string          `json:"status"`
	PaymentStatus    string          `json:"payment_status"`
	StatusHistory    []StatusChange  `json:"status_history"`
	TrackingNumber   string          `json:"tracking_number,omitempty"`
	ShippingProvider string          `json:"shipping_provider,omitempty"`
	ShippedAt        *time.Time      `json:"shipped_at,omitempty"`
	DeliveredAt      *time.Time      `json:"delivered_at,omitempty"`
	AdminNotes       string          `json:"admin_notes,omitempty"`
	CreatedAt        time.Time       `json:"created_at"`
	UpdatedAt        time.Time       `json:"updated_at"`
}

// AdminPaymentResponse relays gateway payment details.
type AdminPaymentResponse struct {
	Success     bool   `json:"success"`
	PaymentID   string `json:"payment_id"`
	OrderID     string `json:"order_id"`
	Status      string `json:"status"`
	AmountPaise int64  `json:"amount"`
	Currency    string `json:"currency"`
	Method      string `json:"method,omitempty"`
	Email       string `json:"email,omitempty"`
	Contact     string `json:"contact,omitempty"`
}
