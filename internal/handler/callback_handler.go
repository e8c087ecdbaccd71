package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/GTDGit/payrelay/internal/envelope"
	"github.com/GTDGit/payrelay/internal/service"
	"github.com/GTDGit/payrelay/internal/utils"
)

// ackBody is what the gateway gets for every accepted callback.
const ackBody = "ACK"

// CallbackHandler handles payment-result callbacks from the gateway.
type CallbackHandler struct {
	callbackSvc *service.CallbackService
}

// NewCallbackHandler constructs a CallbackHandler.
func NewCallbackHandler(callbackSvc *service.CallbackService) *CallbackHandler {
	return &CallbackHandler{callbackSvc: callbackSvc}
}

// HandlePaymentCallback handles POST /api/payment-callback. The body is JSON
// or form encoded. Forged and malformed callbacks get the same generic 400;
// every verified callback gets 200 ACK whatever happened downstream.
func (h *CallbackHandler) HandlePaymentCallback(c *gin.Context) {
	var env envelope.Envelope
	if err := c.ShouldBind(&env); err != nil {
		utils.Error(c, 400, "INVALID_PAYLOAD", "Invalid payload")
		return
	}

	if _, err := h.callbackSvc.ProcessCallback(c.Request.Context(), env); err != nil {
		utils.FromError(c, err, "Invalid payload")
		return
	}

	c.String(http.StatusOK, ackBody)
}
