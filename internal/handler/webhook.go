package handler

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolfees/internal/paystack"
	"schoolfees/internal/service"
)

const maxWebhookBody = 1 << 20

// WebhookHandler handles provider webhook deliveries.
type WebhookHandler struct {
	webhookService *service.WebhookService
}

// NewWebhookHandler creates a new WebhookHandler.
func NewWebhookHandler(webhookService *service.WebhookService) *WebhookHandler {
	return &WebhookHandler{webhookService: webhookService}
}

// Paystack handles POST /paystack-webhook. The signature covers the raw
// body, so the body is read as bytes before any decoding.
func (h *WebhookHandler) Paystack(c *gin.Context) {
	body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxWebhookBody))
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "could not read body"})
		return
	}

	result, err := h.webhookService.Handle(c.Request.Context(), body, c.GetHeader(paystack.SignatureHeader))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := gin.H{"received": true}
	if result.Duplicate {
		resp["duplicate"] = true
	}
	respondJSON(c, http.StatusOK, resp)
}
