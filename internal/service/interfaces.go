package service

import (
	"context"

	"schoolfees/internal/mail"
	"schoolfees/internal/paystack"
)

// PaymentProvider is the subset of the Paystack API the services use.
type PaymentProvider interface {
	Verify(ctx context.Context, reference string) (*paystack.Transaction, error)
	Initialize(ctx context.Context, req paystack.InitializeRequest) (*paystack.InitializeResult, error)
}

// Telemetry records structured events and operator alerts.
type Telemetry interface {
	Event(name string, attrs map[string]interface{})
	Alert(msg string, err error, attrs map[string]interface{})
}

// Mailer delivers email.
type Mailer interface {
	Send(ctx context.Context, msg mail.Message) error
}

var (
	_ PaymentProvider = (*paystack.Client)(nil)
	_ Mailer          = mail.LogSender{}
)
