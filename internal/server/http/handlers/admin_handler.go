package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/mellowshop/orderdesk/internal/domain/errors"
	"github.com/mellowshop/orderdesk/internal/domain/model"
	"github.com/mellowshop/orderdesk/internal/server/http/dto"
	"github.com/mellowshop/orderdesk/internal/usecase"
)

// AdminHandler backs the dashboard's order management endpoints.
type AdminHandler struct {
	facade AdminFacade
}

// NewAdminHandler constructs AdminHandler.
func NewAdminHandler(facade AdminFacade) *AdminHandler {
	return &AdminHandler{facade: facade}
}

// Login handles POST /api/admin/login.
func (h *AdminHandler) Login(c *gin.Context) {
	var req dto.AdminLoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	token, err := h.facade.AdminLogin(c.Request.Context(), req.Login, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, domainErrors.ErrInvalidCredentials):
			respondError(c, http.StatusUnauthorized, "invalid_credentials", "")
		case errors.Is(err, domainErrors.ErrForbidden):
			respondError(c, http.StatusForbidden, "forbidden", "")
		default:
			respondError(c, http.StatusInternalServerError, "internal_error", "")
		}
		return
	}

	c.JSON(http.StatusOK, dto.AdminTokenResponse{Success: true, Token: token})
}

// Get handles GET /api/admin/orders/:id.
func (h *AdminHandler) Get(c *gin.Context) {
	order, err := h.facade.AdminOrder(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, toAdminOrderResponse(order))
}

// Update handles PUT /api/admin/orders/:id.
func (h *AdminHandler) Update(c *gin.Context) {
	var req dto.AdminUpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_request", err.Error())
		return
	}

	update := usecase.AdminUpdate{
		TrackingNumber:   req.TrackingNumber,
		ShippingProvider: req.ShippingProvider,
		AdminNotes:       req.AdminNotes,
		Note:             req.Note,
	}
	if req.Status != nil {
		status := model.OrderStatus(*req.Status)
		update.Status = &status
	}
	if req.PaymentStatus != nil {
		ps := model.PaymentStatus(*req.PaymentStatus)
		update.PaymentStatus = &ps
	}

	order, err := h.facade.AdminUpdateOrder(c.Request.Context(), c.Param("id"), update)
	if err != nil {
		respondDomainError(c, err)
		return
	}

	c.JSON(http.StatusOK, toAdminOrderResponse(order))
}

// Payment handles GET /api/admin/payments/:id.
func (h *AdminHandler) Payment(c *gin.Context) {
	payment, err := h.facade.FetchPayment(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, http.StatusBadGateway, "gateway_error", err.Error())
		return
	}
	c.JSON(http.StatusOK, dto.AdminPaymentResponse{
		Success:     true,
		PaymentID:   payment.ID,
		OrderID:     payment.OrderID,
		Status:      payment.Status,
		AmountPaise: payment.AmountPaise,
		Currency:    payment.Currency,
		Method:      payment.Method,
		Email:       payment.Email,
		Contact:     payment.Contact,
	})
}

func toAdminOrderResponse(order *model.Order) dto.AdminOrderResponse {
	items := make([]dto.OrderItem, 0, len(order.Items))
	for _, it := range order.Items {
		items = append(items, dto.OrderItem{
			ID:         it.ID,
			Title:      it.Title,
			PriceCents: it.PriceCents,
			Quantity:   it.Quantity,
			Image:      it.Image,
			Variant:    it.Variant,
		})
	}
	history := make([]dto.StatusChange, 0, len(order.History))
	for _, ch := range order.History {
		history = append(history, dto.StatusChange{
			Status:    string(ch.Status),
			Timestamp: ch.At,
			Note:      ch.Note,
		})
	}
	paymentID := ""
	if order.PaymentID != nil {
		paymentID = *order.PaymentID
	}
	return dto.AdminOrderResponse{
		Success:          true,
		OrderID:          order.ID,
		OrderNumber:      order.Number,
		PaymentID:        paymentID,
		PaymentDate:      order.PaymentDate,
		Notes:            order.Notes,
		Email:            order.Email,
		Phone:            order.Phone,
		UserID:           order.UserID,
		AddressJSON:      order.AddressJSON,
		Items:            items,
		SubtotalCents:    order.SubtotalCents,
		ShippingCents:    order.ShippingCents,
		TaxCents:         order.TaxCents,
		DiscountCents:    order.DiscountCents,
		TotalCents:       order.TotalCents,
		Status:           string(order.Status),
		PaymentStatus:    string(order.PaymentStatus),
		StatusHistory:    history,
		TrackingNumber:   order.TrackingNumber,
		ShippingProvider: order.ShippingProvider,
		ShippedAt:        order.ShippedAt,
		DeliveredAt:      order.DeliveredAt,
		AdminNotes:       order.AdminNotes,
		CreatedAt:        order.CreatedAt,
		UpdatedAt:        order.UpdatedAt,
	}
}
