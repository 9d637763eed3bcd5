package service

import (
	"strings"

	"schoolfees/internal/domain"
)

// ReceiptService renders payment receipts.
type ReceiptService struct {
	schoolName string
}

// NewReceiptService creates a new ReceiptService.
func NewReceiptService(schoolName string) *ReceiptService {
	return &ReceiptService{schoolName: schoolName}
}

// FormatReceipt formats a payment record as plain text (for email/print).
// Optional fields are left out when absent.
func (s *ReceiptService) FormatReceipt(record *domain.PaymentRecord) string {
	var b strings.Builder

	line := func(label, value string) {
		b.WriteString(label)
		b.WriteString(value)
		b.WriteString("\n")
	}

	b.WriteString("=====================================\n")
	b.WriteString("        FEE PAYMENT RECEIPT\n")
	if s.schoolName != "" {
		b.WriteString("        " + s.schoolName + "\n")
	}
	b.WriteString("=====================================\n")
	line("Receipt ID: ", record.ID)
	line("Reference:  ", record.Reference)
	line("Date:       ", record.PaidAt.Format("Jan 02, 2006 3:04 PM"))
	b.WriteString("\nPAYER\n-------------------------------------\n")
	line("Name:       ", record.PayerName)
	line("Student ID: ", record.PayerID)
	b.WriteString("\nFEE\n-------------------------------------\n")
	line("Fee:        ", record.FeeName)
	line("Amount:     ", record.Currency+" "+record.Amount.StringFixed(2))
	b.WriteString("\nPAYMENT\n-------------------------------------\n")
	line("Method:     ", record.PaymentMethod)
	line("Status:     ", string(record.Status))
	line("Txn ID:     ", record.TransactionID)
	if a := record.Authorization; a != nil {
		if a.CardType != "" || a.Last4 != "" {
			line("Card:       ", strings.TrimSpace(a.CardType+" **** "+a.Last4))
		}
		if a.Bank != "" {
			line("Bank:       ", a.Bank)
		}
	}
	if record.ReceiptURL != nil {
		line("Provider:   ", *record.ReceiptURL)
	}
	b.WriteString("=====================================\n")
	b.WriteString("     Thank you for your payment!\n")
	b.WriteString("=====================================\n")

	return b.String()
}
