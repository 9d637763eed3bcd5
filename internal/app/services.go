package app

import (
	"database/sql"
	"os"

	"github.com/newrelic/go-agent/v3/newrelic"
	"github.com/redis/go-redis/v9"

	"schoolfees/internal/auth"
	"schoolfees/internal/config"
	"schoolfees/internal/mail"
	"schoolfees/internal/paystack"
	internalRedis "schoolfees/internal/redis"
	"schoolfees/internal/repository/postgres"
	"schoolfees/internal/service"
	"schoolfees/internal/telemetry"
)

// Services holds the wired service layer shared by the server and the CLI.
type Services struct {
	Fees         *service.FeeService
	Payments     *service.PaymentService
	Confirmation *service.ConfirmationService
	Settlement   *service.SettlementService
	Webhooks     *service.WebhookService
	Reconciler   *service.Reconciler
	Auth         *service.AuthService
	Receipts     *service.ReceiptService
	Tokens       *auth.TokenManager
	Telemetry    *telemetry.Recorder
}

// NewServices wires repositories, stores and services. redisClient may be
// nil, in which case the catalog is not cached and settlement relies on the
// store's row lock alone.
func NewServices(db *sql.DB, redisClient *redis.Client, nrApp *newrelic.Application, cfg *config.Config) (*Services, error) {
	tokens, err := auth.NewTokenManager(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL, cfg.Auth.Issuer)
	if err != nil {
		return nil, err
	}

	host, _ := os.Hostname()
	recorder := telemetry.NewRecorder(nrApp, telemetry.Options{
		RollbarToken: cfg.Rollbar.Token,
		Environment:  cfg.Env,
		ServerHost:   host,
	})

	// Initialize Redis stores.
	var (
		lockStore  internalRedis.LockStoreInterface
		cacheStore internalRedis.CacheStoreInterface
	)
	if redisClient != nil {
		lockStore = internalRedis.NewLockStore(redisClient)
		cacheStore = internalRedis.NewCacheStore(redisClient)
	}

	// Initialize repositories.
	userRepo := postgres.NewUserRepository(db)
	bootstrapRepo := postgres.NewBootstrapRepository(db)
	feeRepo := postgres.NewFeeRepository(db)
	statusRepo := postgres.NewFeeStatusRepository(db)
	attemptRepo := postgres.NewAttemptRepository(db)
	paymentRepo := postgres.NewPaymentRepository(db)
	issueRepo := postgres.NewIssueRepository(db)
	eventRepo := postgres.NewWebhookEventRepository(db)
	settlementStore := postgres.NewSettlementStore(db)

	provider := paystack.NewClient(cfg.Paystack.BaseURL, cfg.Paystack.SecretKey, cfg.Paystack.VerifyTimeout)
	mailer := mail.New(cfg.Mail.SendGridKey, cfg.Mail.FromName, cfg.Mail.FromAddress)

	// Initialize services.
	receipts := service.NewReceiptService(cfg.Mail.FromName)
	notifications := service.NewNotificationService(mailer, userRepo, receipts)
	verifier := service.NewVerifier(provider, recorder, cfg.Paystack.VerifyTimeout)
	settlement := service.NewSettlementService(service.SettlementDeps{
		Store:        settlementStore,
		PaymentRepo:  paymentRepo,
		AttemptRepo:  attemptRepo,
		StatusRepo:   statusRepo,
		FeeRepo:      feeRepo,
		UserRepo:     userRepo,
		IssueRepo:    issueRepo,
		LockStore:    lockStore,
		Notification: notifications,
		Telemetry:    recorder,
		LockTTL:      cfg.Settlement.LockTTL,
	})
	confirmation := service.NewConfirmationService(attemptRepo, paymentRepo, verifier, settlement)

	return &Services{
		Fees: service.NewFeeService(feeRepo, statusRepo, cacheStore, cfg.Paystack.Currency),
		Payments: service.NewPaymentService(feeRepo, statusRepo, attemptRepo, paymentRepo, provider, service.PaymentConfig{
			PublicKey:   cfg.Paystack.PublicKey,
			Currency:    cfg.Paystack.Currency,
			CallbackURL: cfg.Paystack.CallbackURL,
		}),
		Confirmation: confirmation,
		Settlement:   settlement,
		Webhooks:     service.NewWebhookService(eventRepo, confirmation, recorder, cfg.Paystack.SecretKey),
		Reconciler: service.NewReconciler(attemptRepo, paymentRepo, verifier, settlement, service.ReconcileConfig{
			Interval:     cfg.Reconcile.Interval,
			Grace:        cfg.Reconcile.Grace,
			AbandonAfter: cfg.Reconcile.AbandonAfter,
			BatchSize:    cfg.Reconcile.BatchSize,
		}),
		Auth:      service.NewAuthService(userRepo, bootstrapRepo, tokens, notifications),
		Receipts:  receipts,
		Tokens:    tokens,
		Telemetry: recorder,
	}, nil
}
