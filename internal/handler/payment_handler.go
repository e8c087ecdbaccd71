package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/payrelay/internal/service"
	"github.com/GTDGit/payrelay/internal/utils"
)

// PaymentHandler handles storefront checkout endpoints.
type PaymentHandler struct {
	paymentSvc *service.PaymentService
}

// NewPaymentHandler constructs a PaymentHandler.
func NewPaymentHandler(paymentSvc *service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentSvc: paymentSvc}
}

// StartPayment handles POST /api/start-payment
func (h *PaymentHandler) StartPayment(c *gin.Context) {
	var req service.StartPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		utils.Error(c, 400, "MISSING_FIELD", "Invalid request body")
		return
	}
	if req.Amount == "" {
		utils.Error(c, 400, "MISSING_FIELD", "amount is required")
		return
	}

	resp, err := h.paymentSvc.StartPayment(c.Request.Context(), &req)
	if err != nil {
		h.handleError(c, err)
		return
	}

	utils.Success(c, 200, "Payment initiated", resp)
}

func (h *PaymentHandler) handleError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, utils.ErrInvalidAmount):
		utils.FromError(c, err, "Amount must be positive with at most two decimal places")
	case errors.Is(err, utils.ErrDecode):
		utils.FromError(c, err, "Invalid request body")
	case errors.Is(err, utils.ErrGateway):
		utils.FromError(c, err, "Payment gateway unavailable")
	default:
		utils.FromError(c, err, "Failed to start payment")
	}
}
