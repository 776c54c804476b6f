package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/mellowshop/orderdesk/internal/domain/model"
	"github.com/mellowshop/orderdesk/internal/server/http/dto"
	"github.com/mellowshop/orderdesk/internal/usecase"
)

// DraftHandler manages provisional orders created before payment.
type DraftHandler struct {
	facade DraftFacade
}

// NewDraftHandler constructs DraftHandler.
func NewDraftHandler(facade DraftFacade) *DraftHandler {
	return &DraftHandler{facade: facade}
}

// Create handles POST /api/orders/draft.
func (h *DraftHandler) Create(c *gin.Context) {
	var req dto.DraftCreateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	payload := toCheckoutPayload(req.RazorpayOrderID, "", dto.CheckoutData{
		Email:         req.Email,
		Phone:         req.Phone,
		UserID:        req.UserID,
		AddressJSON:   req.AddressJSON,
		ItemsJSON:     req.ItemsJSON,
		SubtotalCents: req.SubtotalCents,
		ShippingCents: req.ShippingCents,
		TaxCents:      req.TaxCents,
		DiscountCents: req.DiscountCents,
		TotalCents:    req.TotalCents,
	})

	order, err := h.facade.CreateDraft(c.Request.Context(), payload)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

// Update handles PUT /api/orders/draft.
func (h *DraftHandler) Update(c *gin.Context) {
	var req dto.DraftUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	update := usecase.DraftUpdate{
		OrderID:       req.OrderID,
		PaymentStatus: model.PaymentStatus(req.PaymentStatus),
		Note:          req.Note,
	}
	if req.Status != nil {
		status := model.OrderStatus(*req.Status)
		update.Status = &status
	}

	order, err := h.facade.UpdateDraft(c.Request.Context(), update)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}
