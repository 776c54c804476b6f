package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/mellowshop/orderdesk/internal/domain/errors"
	"github.com/mellowshop/orderdesk/internal/domain/model"
	"github.com/mellowshop/orderdesk/internal/server/http/dto"
	"github.com/mellowshop/orderdesk/internal/server/http/middleware"
	"github.com/mellowshop/orderdesk/internal/usecase"
)

// CurrentAdminID extracts the authenticated admin identifier from context.
func CurrentAdminID(c *gin.Context) int64 {
	val, ok := c.Get(middleware.AdminIDContextKey)
	if !ok {
		return 0
	}
	id, _ := val.(int64)
	return id
}

func respondError(c *gin.Context, status int, code, message string) {
	c.JSON(status, dto.ErrorResponse{Success: false, Error: code, Message: message})
}

// respondDomainError maps domain sentinels onto the shared envelope.
func respondDomainError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, domainErrors.ErrInvalidRequest):
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
	case errors.Is(err, domainErrors.ErrInvalidSignature):
		respondError(c, http.StatusBadRequest, "invalid_signature", "signature verification failed")
	case errors.Is(err, domainErrors.ErrNotFound):
		respondError(c, http.StatusNotFound, "not_found", "")
	case errors.Is(err, domainErrors.ErrInvalidTransition):
		respondError(c, http.StatusConflict, "invalid_transition", err.Error())
	case errors.Is(err, domainErrors.ErrDuplicateOrderNumber):
		respondError(c, http.StatusInternalServerError, "duplicate_order_number", "order number generation exhausted retries")
	default:
		respondError(c, http.StatusInternalServerError, "internal_error", "")
	}
}

func toCheckoutPayload(gatewayOrderID, draftOrderID string, d dto.CheckoutData) usecase.CheckoutPayload {
	return usecase.CheckoutPayload{
		GatewayOrderID: gatewayOrderID,
		DraftOrderID:   draftOrderID,
		Email:          d.Email,
		Phone:          d.Phone,
		UserID:         d.UserID,
		AddressJSON:    d.AddressJSON,
		Items:          toModelItems(d.ItemsJSON),
		SubtotalCents:  d.SubtotalCents,
		ShippingCents:  d.ShippingCents,
		TaxCents:       d.TaxCents,
		DiscountCents:  d.DiscountCents,
		TotalCents:     d.TotalCents,
	}
}

func toModelItems(items []dto.OrderItem) []model.OrderItem {
	out := make([]model.OrderItem, 0, len(items))
	for _, it := range items {
		out = append(out, model.OrderItem{
			ID:         it.ID,
			Title:      it.Title,
			PriceCents: it.PriceCents,
			Quantity:   it.Quantity,
			Image:      it.Image,
			Variant:    it.Variant,
		})
	}
	return out
}

func toOrderResponse(order *model.Order) dto.OrderResponse {
	return dto.OrderResponse{Success: true, OrderID: order.ID, OrderNumber: order.Number}
}
