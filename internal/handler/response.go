package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"schoolfees/internal/domain"
	"schoolfees/internal/middleware"
	"schoolfees/internal/repository"
	"schoolfees/internal/service"
)

// ErrorResponse represents an error response.
type ErrorResponse struct {
	Error string `json:"error"`
}

// StatusResponse is returned when a request was accepted but is not final.
type StatusResponse struct {
	Status string `json:"status"`
}

// respondError sends an error response with the appropriate HTTP status code.
func respondError(c *gin.Context, err error) {
	code := mapErrorToHTTPStatus(err)
	_ = c.Error(err)

	switch code {
	case http.StatusAccepted:
		c.JSON(code, StatusResponse{Status: service.ErrStatusPending.Error()})
	case http.StatusPaymentRequired:
		// Payers see one message whatever the verification cause.
		c.JSON(code, ErrorResponse{Error: service.ErrUnverified.Error()})
	case http.StatusInternalServerError:
		c.JSON(code, ErrorResponse{Error: "internal server error"})
	default:
		c.JSON(code, ErrorResponse{Error: err.Error()})
	}
}

// respondJSON sends a JSON response with the given status code.
func respondJSON(c *gin.Context, code int, data any) {
	c.JSON(code, data)
}

// mapErrorToHTTPStatus maps service/repository errors to HTTP status codes.
func mapErrorToHTTPStatus(err error) int {
	switch {
	// Validation errors - Bad Request
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, repository.ErrInvalidInput):
		return http.StatusBadRequest

	case errors.Is(err, service.ErrUnauthenticated),
		errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrInvalidSignature):
		return http.StatusUnauthorized

	case errors.Is(err, service.ErrForbidden):
		return http.StatusForbidden

	// Not found errors
	case errors.Is(err, service.ErrFeeNotFound),
		errors.Is(err, service.ErrPaymentNotFound),
		errors.Is(err, service.ErrAttemptNotFound),
		errors.Is(err, repository.ErrNotFound):
		return http.StatusNotFound

	// Conflict errors
	case errors.Is(err, service.ErrFeeAlreadyPaid),
		errors.Is(err, service.ErrSettlementInProgress),
		errors.Is(err, service.ErrAttemptClosed),
		errors.Is(err, service.ErrBootstrapCompleted),
		errors.Is(err, service.ErrEmailTaken):
		return http.StatusConflict

	case errors.Is(err, service.ErrUnverified):
		return http.StatusPaymentRequired

	case errors.Is(err, service.ErrMalformedProviderData):
		return http.StatusUnprocessableEntity

	case errors.Is(err, service.ErrStatusPending):
		return http.StatusAccepted

	case errors.Is(err, service.ErrProviderInit):
		return http.StatusBadGateway

	// Service unavailable
	case errors.Is(err, service.ErrStoreUnavailable),
		errors.Is(err, repository.ErrUnavailable):
		return http.StatusServiceUnavailable

	// Default to internal server error
	default:
		return http.StatusInternalServerError
	}
}

// caller returns the authenticated caller, writing 401 when there is none.
func caller(c *gin.Context) (domain.Identity, bool) {
	identity, ok := middleware.IdentityFrom(c)
	if !ok {
		respondError(c, service.ErrUnauthenticated)
	}
	return identity, ok
}
