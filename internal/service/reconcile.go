package service

import (
	"context"
	"errors"
	"log"
	"time"

	"schoolfees/internal/domain"
	"schoolfees/internal/repository"
)

// ReconcileConfig controls which attempts a reconciliation run looks at.
type ReconcileConfig struct {
	Interval     time.Duration
	Grace        time.Duration
	AbandonAfter time.Duration
	BatchSize    int
}

// ReconcileReport summarizes one reconciliation run.
type ReconcileReport struct {
	Checked    int
	Settled    int
	Failed     int
	Abandoned  int
	Duplicates int
	Repaired   int
	Skipped    int
}

// Reconciler settles verified payments whose callback never arrived and
// repairs records whose fee status update was lost.
type Reconciler struct {
	attemptRepo repository.AttemptRepository
	paymentRepo repository.PaymentRepository
	verifier    *Verifier
	settlement  *SettlementService
	cfg         ReconcileConfig
	now         func() time.Time
}

// NewReconciler creates a new Reconciler.
func NewReconciler(
	attemptRepo repository.AttemptRepository,
	paymentRepo repository.PaymentRepository,
	verifier *Verifier,
	settlement *SettlementService,
	cfg ReconcileConfig,
) *Reconciler {
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = 100
	}
	return &Reconciler{
		attemptRepo: attemptRepo,
		paymentRepo: paymentRepo,
		verifier:    verifier,
		settlement:  settlement,
		cfg:         cfg,
		now:         time.Now,
	}
}

// RunOnce performs a single reconciliation pass.
func (r *Reconciler) RunOnce(ctx context.Context) (*ReconcileReport, error) {
	report := &ReconcileReport{}
	now := r.now()

	attempts, err := r.attemptRepo.ListOpen(ctx, now.Add(-r.cfg.Grace), r.cfg.BatchSize)
	if err != nil {
		return report, storeError(err)
	}

	for _, attempt := range attempts {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		report.Checked++
		r.reconcileAttempt(ctx, attempt, now, report)
	}

	records, err := r.paymentRepo.ListUnapplied(ctx, r.cfg.BatchSize)
	if err != nil {
		return report, storeError(err)
	}

	for _, record := range records {
		if err := r.settlement.Repair(ctx, record); err != nil {
			log.Printf("[RECONCILE] repair failed Reference=%s: %v", record.Reference, err)
			report.Skipped++
			continue
		}
		report.Repaired++
	}

	log.Printf("[RECONCILE] Checked=%d, Settled=%d, Failed=%d, Abandoned=%d, Duplicates=%d, Repaired=%d, Skipped=%d",
		report.Checked, report.Settled, report.Failed, report.Abandoned, report.Duplicates, report.Repaired, report.Skipped)

	return report, nil
}

func (r *Reconciler) reconcileAttempt(ctx context.Context, attempt *domain.PaymentAttempt, now time.Time, report *ReconcileReport) {
	expired := r.cfg.AbandonAfter > 0 && now.Sub(attempt.CreatedAt) > r.cfg.AbandonAfter

	payment, err := r.verifier.Verify(ctx, attempt.Reference)
	if err != nil {
		var unsuccessful *UnsuccessfulPaymentError
		switch {
		case errors.As(err, &unsuccessful) && providerFailed(unsuccessful.Status):
			r.close(ctx, attempt, domain.AttemptFailed, report)
		case errors.Is(err, ErrTransactionNotFound), errors.Is(err, ErrPaymentNotSuccessful):
			if expired {
				r.close(ctx, attempt, domain.AttemptAbandoned, report)
			} else {
				report.Skipped++
			}
		default:
			report.Skipped++
		}
		return
	}

	_, err = r.settlement.Settle(ctx, payment)
	switch {
	case err == nil, errors.Is(err, ErrStatusPending):
		report.Settled++
	case errors.Is(err, ErrFeeAlreadyPaid):
		report.Duplicates++
	default:
		log.Printf("[RECONCILE] settle failed Reference=%s: %v", attempt.Reference, err)
		report.Skipped++
	}
}

func (r *Reconciler) close(ctx context.Context, attempt *domain.PaymentAttempt, to domain.AttemptState, report *ReconcileReport) {
	err := r.attemptRepo.Transition(ctx, attempt.Reference, domain.AttemptOpen, to)
	if err != nil && !errors.Is(err, repository.ErrStateConflict) {
		log.Printf("[RECONCILE] could not close attempt Reference=%s: %v", attempt.Reference, err)
		report.Skipped++
		return
	}

	switch to {
	case domain.AttemptFailed:
		report.Failed++
	case domain.AttemptAbandoned:
		report.Abandoned++
	}
}

// Start runs RunOnce on every tick until ctx is cancelled.
func (r *Reconciler) Start(ctx context.Context) {
	if r.cfg.Interval <= 0 {
		log.Println("[RECONCILE] disabled")
		return
	}

	go func() {
		log.Printf("[RECONCILE] started, interval %s", r.cfg.Interval)
		ticker := time.NewTicker(r.cfg.Interval)
		defer ticker.Stop()

		for {
			select {
			case <-ctx.Done():
				log.Println("[RECONCILE] stopped")
				return
			case <-ticker.C:
				if _, err := r.RunOnce(ctx); err != nil {
					log.Printf("[RECONCILE] run failed: %v", err)
				}
			}
		}
	}()
}
