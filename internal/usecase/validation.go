package usecase

import (
	"encoding/json"
	"fmt"

	validatorv10 "github.com/go-playground/validator/v10"

	domainErrors "github.com/mellowshop/orderdesk/internal/domain/errors"
	"github.com/mellowshop/orderdesk/internal/domain/model"
)

// CheckoutPayload is the customer/cart snapshot handed over by the
// storefront at checkout time. It is captured verbatim into the order row
// and never re-read from live data.
type CheckoutPayload struct {
	GatewayOrderID string            `validate:"required"`
	DraftOrderID   string            `validate:"-"`
	Email          string            `validate:"required,email"`
	Phone          string            `validate:"-"`
	UserID         string            `validate:"-"`
	AddressJSON    json.RawMessage   `validate:"required"`
	Items          []model.OrderItem `validate:"required,min=1"`
	SubtotalCents  int64             `validate:"gte=0"`
	ShippingCents  int64             `validate:"gte=0"`
	TaxCents       int64             `validate:"gte=0"`
	DiscountCents  int64             `validate:"gte=0"`
	TotalCents     int64             `validate:"gt=0"`
}

// newCheckoutValidator returns a validator with the money-invariant rule
// registered: total must equal subtotal + shipping + tax - discount.
func newCheckoutValidator() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterStructValidation(checkoutStructValidation, CheckoutPayload{})
	return v
}

func checkoutStructValidation(sl validatorv10.StructLevel) {
	payload := sl.Current().Interface().(CheckoutPayload)

	expected := payload.SubtotalCents + payload.ShippingCents + payload.TaxCents - payload.DiscountCents
	if payload.TotalCents != expected {
		sl.ReportError(payload.TotalCents, "TotalCents", "TotalCents", "total_match_parts",
			fmt.Sprintf("total %d != subtotal+shipping+tax-discount %d", payload.TotalCents, expected))
	}

	for _, item := range payload.Items {
		if item.Quantity <= 0 {
			sl.ReportError(payload.Items, "Items", "Items", "item_quantity_positive", item.ID)
			break
		}
	}

	if len(payload.AddressJSON) > 0 && !json.Valid(payload.AddressJSON) {
		sl.ReportError(payload.AddressJSON, "AddressJSON", "AddressJSON", "address_json_valid", "")
	}
}

func validateCheckout(v *validatorv10.Validate, payload *CheckoutPayload) error {
	if err := v.Struct(payload); err != nil {
		return fmt.Errorf("%w: %v", domainErrors.ErrInvalidRequest, err)
	}
	return nil
}
