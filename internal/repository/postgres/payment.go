package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/volatiletech/null/v8"

	"schoolfees/internal/domain"
)

// PaymentRepository is a PostgreSQL implementation of repository.PaymentRepository.
type PaymentRepository struct {
	q Querier
}

// NewPaymentRepository creates a new PostgreSQL payment repository.
func NewPaymentRepository(db *sql.DB) *PaymentRepository {
	return &PaymentRepository{q: db}
}

// NewPaymentRepositoryWithTx creates a payment repository using a transaction.
func NewPaymentRepositoryWithTx(tx *sql.Tx) *PaymentRepository {
	return &PaymentRepository{q: tx}
}

const paymentColumns = `
	p.id, p.payer_id, p.payer_name, p.fee_id, p.fee_name, p.amount, p.currency,
	p.reference, p.status, p.transaction_id, p.payment_method, p.receipt_url,
	p.authorization_code, p.card_type, p.last4, p.bank, p.channel,
	p.paid_at, p.created_at`

// Create persists a new payment record. Absent optional fields are stored as NULL.
func (r *PaymentRepository) Create(ctx context.Context, payment *domain.PaymentRecord) error {
	query := `
		INSERT INTO payments (
			id, payer_id, payer_name, fee_id, fee_name, amount, currency,
			reference, status, transaction_id, payment_method, receipt_url,
			authorization_code, card_type, last4, bank, channel, paid_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17, $18)
		RETURNING created_at
	`

	var auth domain.Authorization
	if payment.Authorization != nil {
		auth = *payment.Authorization
	}

	err := r.q.QueryRowContext(ctx, query,
		payment.ID,
		payment.PayerID,
		payment.PayerName,
		payment.FeeID,
		payment.FeeName,
		payment.Amount,
		payment.Currency,
		payment.Reference,
		payment.Status,
		payment.TransactionID,
		payment.PaymentMethod,
		null.StringFromPtr(payment.ReceiptURL),
		optionalString(auth.AuthorizationCode),
		optionalString(auth.CardType),
		optionalString(auth.Last4),
		optionalString(auth.Bank),
		optionalString(auth.Channel),
		payment.PaidAt,
	).Scan(&payment.CreatedAt)

	return mapError(err)
}

// GetByID retrieves a payment record by ID.
func (r *PaymentRepository) GetByID(ctx context.Context, id string) (*domain.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p WHERE p.id = $1`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, mapError(err)
	}
	return payment, nil
}

// GetByReference retrieves a payment record by provider reference.
// Returns nil if no record exists with the given reference.
func (r *PaymentRepository) GetByReference(ctx context.Context, reference string) (*domain.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p WHERE p.reference = $1`

	payment, err := scanPayment(r.q.QueryRowContext(ctx, query, reference))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, mapError(err)
	}
	return payment, nil
}

// ListByPayer retrieves a payer's records, newest first.
func (r *PaymentRepository) ListByPayer(ctx context.Context, payerID string) ([]*domain.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p WHERE p.payer_id = $1 ORDER BY p.created_at DESC`
	return r.list(ctx, query, payerID)
}

// GetAll retrieves all records, newest first.
func (r *PaymentRepository) GetAll(ctx context.Context) ([]*domain.PaymentRecord, error) {
	query := `SELECT ` + paymentColumns + ` FROM payments p ORDER BY p.created_at DESC`
	return r.list(ctx, query)
}

// ListUnapplied retrieves success records whose fee status entry is not paid.
func (r *PaymentRepository) ListUnapplied(ctx context.Context, limit int) ([]*domain.PaymentRecord, error) {
	query := `
		SELECT ` + paymentColumns + `
		FROM payments p
		LEFT JOIN fee_statuses s ON s.payer_id = p.payer_id AND s.fee_id = p.fee_id
		WHERE p.status = 'success' AND (s.status IS NULL OR s.status <> 'paid')
		ORDER BY p.created_at ASC
		LIMIT $1
	`
	return r.list(ctx, query, limit)
}

func (r *PaymentRepository) list(ctx context.Context, query string, args ...any) ([]*domain.PaymentRecord, error) {
	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, mapError(err)
	}
	defer rows.Close()

	var payments []*domain.PaymentRecord
	for rows.Next() {
		payment, err := scanPayment(rows)
		if err != nil {
			return nil, err
		}
		payments = append(payments, payment)
	}
	return payments, mapError(rows.Err())
}

func scanPayment(row rowScanner) (*domain.PaymentRecord, error) {
	var (
		payment    domain.PaymentRecord
		receiptURL null.String
		authCode   null.String
		cardType   null.String
		last4      null.String
		bank       null.String
		channel    null.String
	)

	err := row.Scan(
		&payment.ID,
		&payment.PayerID,
		&payment.PayerName,
		&payment.FeeID,
		&payment.FeeName,
		&payment.Amount,
		&payment.Currency,
		&payment.Reference,
		&payment.Status,
		&payment.TransactionID,
		&payment.PaymentMethod,
		&receiptURL,
		&authCode,
		&cardType,
		&last4,
		&bank,
		&channel,
		&payment.PaidAt,
		&payment.CreatedAt,
	)
	if err != nil {
		return nil, err
	}

	payment.ReceiptURL = receiptURL.Ptr()

	auth := domain.Authorization{
		AuthorizationCode: authCode.String,
		CardType:          cardType.String,
		Last4:             last4.String,
		Bank:              bank.String,
		Channel:           channel.String,
	}
	if !auth.IsZero() {
		payment.Authorization = &auth
	}

	return &payment, nil
}

// optionalString maps an empty string to NULL.
func optionalString(s string) null.String {
	return null.NewString(s, s != "")
}
