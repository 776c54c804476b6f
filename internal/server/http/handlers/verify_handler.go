package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mellowshop/orderdesk/internal/server/http/dto"
	"github.com/mellowshop/orderdesk/internal/usecase"
)

// VerifyHandler processes the client's payment-success callback.
type VerifyHandler struct {
	facade VerifyFacade
}

// NewVerifyHandler constructs VerifyHandler.
func NewVerifyHandler(facade VerifyFacade) *VerifyHandler {
	return &VerifyHandler{facade: facade}
}

// Verify handles POST /api/payments/verify.
func (h *VerifyHandler) Verify(c *gin.Context) {
	var req dto.VerifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	verify := usecase.VerifyRequest{
		GatewayOrderID: req.RazorpayOrderID,
		PaymentID:      req.RazorpayPaymentID,
		Signature:      req.RazorpaySignature,
	}
	if req.CheckoutData != nil {
		payload := toCheckoutPayload(req.RazorpayOrderID, req.CheckoutData.DraftOrderID, *req.CheckoutData)
		verify.Checkout = &payload
	}

	order, err := h.facade.VerifyPayment(c.Request.Context(), verify)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}
