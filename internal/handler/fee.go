package handler

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"schoolfees/internal/domain"
	"schoolfees/internal/service"
)

// FeeHandler handles HTTP requests for the fee catalog.
type FeeHandler struct {
	feeService *service.FeeService
}

// NewFeeHandler creates a new FeeHandler.
func NewFeeHandler(feeService *service.FeeService) *FeeHandler {
	return &FeeHandler{feeService: feeService}
}

// CreateFeeRequest is the HTTP request body for publishing a fee.
type CreateFeeRequest struct {
	Name        string          `json:"name" binding:"required"`
	Description string          `json:"description"`
	Amount      decimal.Decimal `json:"amount" binding:"required"`
	DueDate     string          `json:"dueDate" binding:"required"`
	Type        string          `json:"type"`
}

// UpdateFeeStatusRequest is the HTTP request body for toggling a fee.
type UpdateFeeStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

// ListFees handles GET /v1/fees
func (h *FeeHandler) ListFees(c *gin.Context) {
	fees, err := h.feeService.ListFees(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	response := make([]FeeResponse, 0, len(fees))
	for _, f := range fees {
		response = append(response, newFeeResponse(f))
	}

	respondJSON(c, http.StatusOK, response)
}

// PayableFees handles GET /v1/me/fees
func (h *FeeHandler) PayableFees(c *gin.Context) {
	payer, ok := caller(c)
	if !ok {
		return
	}

	catalog, err := h.feeService.PayableFees(c.Request.Context(), payer)
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, newPayableCatalogResponse(catalog))
}

// CreateFee handles POST /v1/fees
func (h *FeeHandler) CreateFee(c *gin.Context) {
	admin, ok := caller(c)
	if !ok {
		return
	}

	var req CreateFeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "name, amount and dueDate are required"})
		return
	}

	dueDate, err := parseDate(req.DueDate)
	if err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "dueDate must be YYYY-MM-DD"})
		return
	}

	fee, err := h.feeService.CreateFee(c.Request.Context(), admin, service.CreateFeeRequest{
		Name:        req.Name,
		Description: req.Description,
		Amount:      req.Amount,
		DueDate:     dueDate,
		Category:    req.Type,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusCreated, newFeeResponse(fee))
}

// UpdateFeeStatus handles PATCH /v1/fees/:id/status
func (h *FeeHandler) UpdateFeeStatus(c *gin.Context) {
	admin, ok := caller(c)
	if !ok {
		return
	}

	var req UpdateFeeStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, ErrorResponse{Error: "status is required"})
		return
	}

	feeID := c.Param("id")
	if err := h.feeService.UpdateFeeStatus(c.Request.Context(), admin, feeID, domain.FeeStatus(req.Status)); err != nil {
		respondError(c, err)
		return
	}

	respondJSON(c, http.StatusOK, gin.H{"id": feeID, "status": req.Status})
}

// DeleteFee handles DELETE /v1/fees/:id
func (h *FeeHandler) DeleteFee(c *gin.Context) {
	admin, ok := caller(c)
	if !ok {
		return
	}

	if err := h.feeService.DeleteFee(c.Request.Context(), admin, c.Param("id")); err != nil {
		respondError(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}

func parseDate(s string) (time.Time, error) {
	if t, err := time.Parse(dateLayout, s); err == nil {
		return t, nil
	}
	return time.Parse(time.RFC3339, s)
}
