package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// FeeStatus represents whether a fee can currently be paid.
type FeeStatus string

const (
	FeeStatusActive   FeeStatus = "active"
	FeeStatusInactive FeeStatus = "inactive"
)

// Valid reports whether s is a known fee status.
func (s FeeStatus) Valid() bool {
	return s == FeeStatusActive || s == FeeStatusInactive
}

// FeeDefinition is a fee published by the school administration.
type FeeDefinition struct {
	ID          string
	Name        string
	Description string
	Amount      decimal.Decimal
	Currency    string
	DueDate     time.Time
	Category    string
	Status      FeeStatus
	CreatedAt   time.Time
}

// IsPayable reports whether the fee may be offered to a payer.
func (f *FeeDefinition) IsPayable() bool {
	return f.Status == FeeStatusActive && f.Amount.IsPositive()
}

// FeePaymentStatus is the payer-side status of a single fee.
type FeePaymentStatus string

const (
	FeeUnpaid FeePaymentStatus = "unpaid"
	FeePaid   FeePaymentStatus = "paid"
)

// FeeStatusEntry tracks one payer's status for one fee.
type FeeStatusEntry struct {
	PayerID       string
	FeeID         string
	Status        FeePaymentStatus
	PaymentDate   *time.Time
	Reference     *string
	TransactionID *string
	ReceiptURL    *string
	LastUpdated   time.Time
}

// IsPaid reports whether the entry has already transitioned to paid.
func (e *FeeStatusEntry) IsPaid() bool {
	return e != nil && e.Status == FeePaid
}

// PayableFee pairs a fee definition with the payer's status for it.
type PayableFee struct {
	Fee    *FeeDefinition
	Status FeePaymentStatus
}
