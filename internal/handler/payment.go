package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolfees/internal/service"
)

// PaymentHandler handles HTTP requests for payments.
type PaymentHandler struct {
	paymentService      *service.PaymentService
	confirmationService *service.ConfirmationService
	receiptService      *service.ReceiptService
}

// NewPaymentHandler creates a new PaymentHandler.
func NewPaymentHandler(
	paymentService *service.PaymentService,
	confirmationService *service.ConfirmationService,
	receiptService *service.ReceiptService,
) *PaymentHandler {
	return &PaymentHandler{
		paymentService:      paymentService,
		confirmationService: confirmationService,
		receiptService:      receiptService,
	}
}

// InitiatePaymentRequest is the HTTP request body for starting a payment.
// The payer comes from the bearer token, never from the body.
type InitiatePaymentRequest struct {
	FeeID  string `json:"feeId" binding:"required"`
	Hosted bool   `json:"hosted"`
}

// VerifyPaymentRequest is the HTTP request body for confirming a payment.
type VerifyPaymentRequest struct {
	Reference string `json:"reference" binding:"required"`
}

// InitiatePayment handles POST /v1/payments/initiate
func (h *PaymentHandler) InitiatePayment(c *gin.Context) {
	payer, ok := caller(c)
	if !ok {
		return
	}

	var req InitiatePaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "feeId is required"})
		return
	}

	params, err := h.paymentService.InitiatePayment(c.Request.Context(), payer, service.InitiatePaymentRequest{
		FeeID:  req.FeeID,
		Hosted: req.Hosted,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, InitiatePaymentResponse{
		Key:              params.PublicKey,
		Email:            params.Email,
		Amount:           params.AmountMinor,
		Currency:         params.Currency,
		Reference:        params.Reference,
		Metadata:         params.Metadata,
		AuthorizationURL: params.AuthorizationURL,
		AccessCode:       params.AccessCode,
	})
}

// VerifyPayment handles POST /v1/payments/verify
func (h *PaymentHandler) VerifyPayment(c *gin.Context) {
	payer, ok := caller(c)
	if !ok {
		return
	}

	var req VerifyPaymentRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "reference is required"})
		return
	}

	record, err := h.confirmationService.Confirm(c.Request.Context(), payer, req.Reference)
	if errors.Is(err, service.ErrStatusPending) {
		respondJSON(c, http.StatusAccepted, StatusResponse{Status: err.Error()})
		return
	}
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newPaymentResponse(record))
}

// AbandonPayment handles POST /v1/payments/:id/abandon, where :id is the reference.
func (h *PaymentHandler) AbandonPayment(c *gin.Context) {
	payer, ok := caller(c)
	if !ok {
		return
	}

	reference := c.Param("id")
	if err := h.paymentService.Abandon(c.Request.Context(), payer, reference); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"reference": reference, "status": "abandoned"})
}

// ListMyPayments handles GET /v1/me/payments
func (h *PaymentHandler) ListMyPayments(c *gin.Context) {
	payer, ok := caller(c)
	if !ok {
		return
	}

	records, err := h.paymentService.ListMyPayments(c.Request.Context(), payer)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newPaymentListResponse(records))
}

// ListPayments handles GET /v1/payments
func (h *PaymentHandler) ListPayments(c *gin.Context) {
	admin, ok := caller(c)
	if !ok {
		return
	}

	records, err := h.paymentService.ListAllPayments(c.Request.Context(), admin)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newPaymentListResponse(records))
}

// GetPayment handles GET /v1/payments/:id
func (h *PaymentHandler) GetPayment(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	record, err := h.paymentService.GetPayment(c.Request.Context(), who, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newPaymentResponse(record))
}

// GetReceipt handles GET /v1/payments/:id/receipt
func (h *PaymentHandler) GetReceipt(c *gin.Context) {
	who, ok := caller(c)
	if !ok {
		return
	}

	record, err := h.paymentService.GetPayment(c.Request.Context(), who, c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}

	c.String(http.StatusOK, h.receiptService.FormatReceipt(record))
}
