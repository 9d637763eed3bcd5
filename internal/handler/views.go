package handler

import (
	"time"

	"schoolfees/internal/domain"
	"schoolfees/internal/paystack"
	"schoolfees/internal/service"
)

// FeeResponse is the HTTP response for a fee definition.
type FeeResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description,omitempty"`
	Amount      string `json:"amount"`
	Currency    string `json:"currency"`
	DueDate     string `json:"dueDate"`
	Type        string `json:"type"`
	Status      string `json:"status"`
	CreatedAt   string `json:"createdAt,omitempty"`
}

func newFeeResponse(fee *domain.FeeDefinition) FeeResponse {
	resp := FeeResponse{
		ID:          fee.ID,
		Name:        fee.Name,
		Description: fee.Description,
		Amount:      fee.Amount.StringFixed(2),
		Currency:    fee.Currency,
		DueDate:     fee.DueDate.Format(dateLayout),
		Type:        fee.Category,
		Status:      string(fee.Status),
	}
	if !fee.CreatedAt.IsZero() {
		resp.CreatedAt = fee.CreatedAt.UTC().Format(time.RFC3339)
	}
	return resp
}

// PayableFeeResponse is a fee offered to a payer with the payer's status.
type PayableFeeResponse struct {
	FeeResponse
	PaymentStatus string `json:"paymentStatus"`
}

// PayableCatalogResponse is the HTTP response for the payer's fee choices.
type PayableCatalogResponse struct {
	Fees     []PayableFeeResponse `json:"fees"`
	Blocking bool                 `json:"blocking"`
	Notice   string               `json:"notice,omitempty"`
}

func newPayableCatalogResponse(catalog *service.PayableCatalog) PayableCatalogResponse {
	resp := PayableCatalogResponse{
		Fees:     make([]PayableFeeResponse, 0, len(catalog.Options)),
		Blocking: catalog.Blocking,
		Notice:   catalog.Notice,
	}
	for _, opt := range catalog.Options {
		resp.Fees = append(resp.Fees, PayableFeeResponse{
			FeeResponse:   newFeeResponse(opt.Fee),
			PaymentStatus: string(opt.Status),
		})
	}
	return resp
}

// AuthorizationResponse carries the card/channel details of a payment.
type AuthorizationResponse struct {
	AuthorizationCode string `json:"authorization_code,omitempty"`
	CardType          string `json:"card_type,omitempty"`
	Last4             string `json:"last4,omitempty"`
	Bank              string `json:"bank,omitempty"`
	Channel           string `json:"channel,omitempty"`
}

// PaymentResponse is the HTTP response for a payment record. Optional
// fields are omitted, never sent as null.
type PaymentResponse struct {
	ID            string                 `json:"id"`
	StudentID     string                 `json:"studentId"`
	StudentName   string                 `json:"studentName"`
	FeeID         string                 `json:"feeId"`
	FeeName       string                 `json:"feeName"`
	Amount        string                 `json:"amount"`
	Currency      string                 `json:"currency"`
	Reference     string                 `json:"reference"`
	Status        string                 `json:"status"`
	TransactionID string                 `json:"transactionId"`
	PaymentMethod string                 `json:"paymentMethod"`
	ReceiptURL    string                 `json:"receiptUrl,omitempty"`
	Authorization *AuthorizationResponse `json:"authorization,omitempty"`
	PaidAt        string                 `json:"paidAt"`
}

func newPaymentResponse(record *domain.PaymentRecord) PaymentResponse {
	resp := PaymentResponse{
		ID:            record.ID,
		StudentID:     record.PayerID,
		StudentName:   record.PayerName,
		FeeID:         record.FeeID,
		FeeName:       record.FeeName,
		Amount:        record.Amount.StringFixed(2),
		Currency:      record.Currency,
		Reference:     record.Reference,
		Status:        string(record.Status),
		TransactionID: record.TransactionID,
		PaymentMethod: record.PaymentMethod,
		PaidAt:        record.PaidAt.UTC().Format(time.RFC3339),
	}
	if record.ReceiptURL != nil {
		resp.ReceiptURL = *record.ReceiptURL
	}
	if a := record.Authorization; a != nil && !a.IsZero() {
		resp.Authorization = &AuthorizationResponse{
			AuthorizationCode: a.AuthorizationCode,
			CardType:          a.CardType,
			Last4:             a.Last4,
			Bank:              a.Bank,
			Channel:           a.Channel,
		}
	}
	return resp
}

func newPaymentListResponse(records []*domain.PaymentRecord) []PaymentResponse {
	resp := make([]PaymentResponse, 0, len(records))
	for _, r := range records {
		resp = append(resp, newPaymentResponse(r))
	}
	return resp
}

// InitiatePaymentResponse carries the inline widget parameters.
type InitiatePaymentResponse struct {
	Key              string            `json:"key"`
	Email            string            `json:"email"`
	Amount           int64             `json:"amount"`
	Currency         string            `json:"currency"`
	Reference        string            `json:"ref"`
	Metadata         paystack.Metadata `json:"metadata"`
	AuthorizationURL string            `json:"authorization_url,omitempty"`
	AccessCode       string            `json:"access_code,omitempty"`
}

// UserResponse is the HTTP response for user data.
type UserResponse struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func newUserResponse(u *domain.User) UserResponse {
	return UserResponse{ID: u.ID, Name: u.Name, Email: u.Email, Role: string(u.Role)}
}

// SessionResponse is returned by login and bootstrap.
type SessionResponse struct {
	Token     string       `json:"token"`
	ExpiresAt string       `json:"expiresAt"`
	User      UserResponse `json:"user"`
}

func newSessionResponse(s *service.Session) SessionResponse {
	return SessionResponse{
		Token:     s.Token,
		ExpiresAt: s.ExpiresAt.UTC().Format(time.RFC3339),
		User:      newUserResponse(s.User),
	}
}

const dateLayout = "2006-01-02"
