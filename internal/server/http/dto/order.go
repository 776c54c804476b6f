package dto

import "encoding/json"

// OrderItem is a cart line as sent by the storefront.
type OrderItem struct {
	ID         string `json:"id"`
	Title      string `json:"title"`
	PriceCents int64  `json:"price"`
	Quantity   int    `json:"quantity"`
	Image      string `json:"image,omitempty"`
	Variant    string `json:"variant,omitempty"`
}

// DraftCreateRequest creates a provisional order before the payment
// widget opens.
type DraftCreateRequest struct {
	RazorpayOrderID string          `json:"razorpay_order_id"`
	Email           string          `json:"email"`
	UserID          string          `json:"user_id"`
	Phone           string          `json:"phone"`
	AddressJSON     json.RawMessage `json:"address_json"`
	ItemsJSON       []OrderItem     `json:"items_json"`
	SubtotalCents   int64           `json:"subtotal_cents"`
	ShippingCents   int64           `json:"shipping_cents"`
	TaxCents        int64           `json:"tax_cents"`
	DiscountCents   int64           `json:"discount_cents"`
	TotalCents      int64           `json:"total_cents"`
}

// DraftUpdateRequest records a client-observed payment outcome on a draft.
type DraftUpdateRequest struct {
	OrderID       string  `json:"order_id"`
	PaymentStatus string  `json:"payment_status"`
	Status        *string `json:"status,omitempty"`
	Note          string  `json:"note,omitempty"`
}

// CheckoutData carries the snapshot needed when the verify endpoint has
// to insert a fresh order instead of updating a draft.
type CheckoutData struct {
	DraftOrderID  string          `json:"draft_order_id,omitempty"`
	Email         string          `json:"email"`
	Phone         string          `json:"phone"`
	UserID        string          `json:"user_id"`
	AddressJSON   json.RawMessage `json:"address_json"`
	ItemsJSON     []OrderItem     `json:"items_json"`
	SubtotalCents int64           `json:"subtotal_cents"`
	ShippingCents int64           `json:"shipping_cents"`
	TaxCents      int64           `json:"tax_cents"`
	DiscountCents int64           `json:"discount_cents"`
	TotalCents    int64           `json:"total_cents"`
}

// VerifyRequest is the payment-success callback payload.
type VerifyRequest struct {
	RazorpayPaymentID string        `json:"razorpay_payment_id"`
	RazorpayOrderID   string        `json:"razorpay_order_id"`
	RazorpaySignature string        `json:"razorpay_signature"`
	CheckoutData      *CheckoutData `json:"checkoutData,omitempty"`
}

// OrderResponse is the success envelope for draft and verify endpoints.
type OrderResponse struct {
	Success     bool   `json:"success"`
	OrderID     string `json:"order_id"`
	OrderNumber string `json:"order_number"`
}

// ErrorResponse is the failure envelope shared by all endpoints.
type ErrorResponse struct {
	Success bool   `json:"success"`
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}

// WebhookAck acknowledges a webhook delivery.
type WebhookAck struct {
	Received bool `json:"received"`
}
