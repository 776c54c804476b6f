package handlers

import (
	"errors"
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/mellowshop/orderdesk/internal/domain/errors"
	"github.com/mellowshop/orderdesk/internal/server/http/dto"
)

// SignatureHeader carries the gateway's webhook signature.
const SignatureHeader = "X-Razorpay-Signature"

// WebhookHandler receives asynchronous gateway notifications.
type WebhookHandler struct {
	facade WebhookFacade
}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(facade WebhookFacade) *WebhookHandler {
	return &WebhookHandler{facade: facade}
}

// Handle processes POST /api/webhooks/razorpay. The signature is computed
// over the raw body, so it is read before any JSON decoding.
func (h *WebhookHandler) Handle(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", "unreadable body")
		return
	}

	sig := c.GetHeader(SignatureHeader)
	if err := h.facade.ProcessWebhook(c.Request.Context(), body, sig); err != nil {
		if errors.Is(err, domainErrors.ErrInvalidSignature) {
			respondError(c, http.StatusUnauthorized, "invalid_signature", "")
			return
		}
		// A store failure: let the gateway redeliver.
		respondError(c, http.StatusInternalServerError, "internal_error", "")
		return
	}

	c.JSON(http.StatusOK, dto.WebhookAck{Received: true})
}
