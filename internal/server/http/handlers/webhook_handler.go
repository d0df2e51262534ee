package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	domainErrors "github.com/wdmlabs/bmlconnect/internal/domain/errors"
	"github.com/wdmlabs/bmlconnect/internal/server/http/dto"
	"github.com/wdmlabs/bmlconnect/internal/usecase"
)

// WebhookHandler terminates the processor's server-to-server channel.
type WebhookHandler struct {
	facade WebhookFacade
}

// NewWebhookHandler constructs WebhookHandler.
func NewWebhookHandler(facade WebhookFacade) *WebhookHandler {
	return &WebhookHandler{facade: facade}
}

// Handle accepts a transaction state notification. Malformed JSON is a 400,
// a bad signature a 401, an unknown order a 404, each carrying a JSON error
// body. Every authenticated notification is acknowledged with a success body
// so the processor stops retrying.
func (h *WebhookHandler) Handle(c *gin.Context) {
	var req dto.WebhookRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, dto.WebhookError{Error: "invalid payload"})
		return
	}

	err := h.facade.ProcessWebhook(c.Request.Context(), usecase.WebhookNotification{
		TransactionID: req.TransactionID,
		LocalID:       req.LocalID,
		State:         req.State,
		Amount:        req.Amount,
		Currency:      req.Currency,
		Signature:     req.Signature,
	})
	switch {
	case errors.Is(err, domainErrors.ErrSignatureMismatch):
		c.JSON(http.StatusUnauthorized, dto.WebhookError{Error: "signature verification failed"})
	case errors.Is(err, domainErrors.ErrNotFound):
		c.JSON(http.StatusNotFound, dto.WebhookError{Error: "order not found"})
	default:
		c.JSON(http.StatusOK, dto.WebhookAck{Status: "success"})
	}
}
