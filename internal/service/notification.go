package service

import (
	"context"
	"fmt"
	"log"
	"time"

	"schoolfees/internal/domain"
	"schoolfees/internal/mail"
	"schoolfees/internal/repository"
)

// NotificationType represents the type of notification.
type NotificationType string

const (
	NotificationPaymentReceived NotificationType = "PAYMENT_RECEIVED"
	NotificationAccountCreated  NotificationType = "ACCOUNT_CREATED"
)

// Notification represents a notification to be sent.
type Notification struct {
	Type        NotificationType
	RecipientID string
	Title       string
	Message     string
	CreatedAt   time.Time
}

// NotificationService delivers notifications by email.
type NotificationService struct {
	mailer   Mailer
	userRepo repository.UserRepository
	receipts *ReceiptService
}

// NewNotificationService creates a new NotificationService.
func NewNotificationService(mailer Mailer, userRepo repository.UserRepository, receipts *ReceiptService) *NotificationService {
	return &NotificationService{
		mailer:   mailer,
		userRepo: userRepo,
		receipts: receipts,
	}
}

// NotifyPaymentReceived sends the payer a receipt for a settled payment.
func (s *NotificationService) NotifyPaymentReceived(ctx context.Context, record *domain.PaymentRecord) error {
	message := fmt.Sprintf("We received your payment of %s %s for %s.",
		record.Currency, record.Amount.StringFixed(2), record.FeeName)
	if s.receipts != nil {
		message += "\n" + s.receipts.FormatReceipt(record)
	}

	return s.send(ctx, Notification{
		Type:        NotificationPaymentReceived,
		RecipientID: record.PayerID,
		Title:       "Payment received: " + record.FeeName,
		Message:     message,
		CreatedAt:   time.Now(),
	})
}

// NotifyAccountCreated tells a new user their account exists.
func (s *NotificationService) NotifyAccountCreated(ctx context.Context, user *domain.User) error {
	return s.send(ctx, Notification{
		Type:        NotificationAccountCreated,
		RecipientID: user.ID,
		Title:       "Your school account",
		Message:     fmt.Sprintf("Hello %s, an account with role %s was created for %s.", user.Name, user.Role, user.Email),
		CreatedAt:   time.Now(),
	})
}

// send resolves the recipient's address and mails the notification.
// Delivery failures are logged, not returned to the caller's flow.
func (s *NotificationService) send(ctx context.Context, notification Notification) error {
	log.Printf("[NOTIFICATION] Type=%s, Recipient=%s, Title=%s",
		notification.Type, notification.RecipientID, notification.Title)

	if s.mailer == nil || s.userRepo == nil {
		return nil
	}

	user, err := s.userRepo.GetByID(ctx, notification.RecipientID)
	if err != nil {
		log.Printf("[NOTIFICATION] recipient lookup failed Recipient=%s: %v", notification.RecipientID, err)
		return err
	}

	err = s.mailer.Send(ctx, mail.Message{
		ToName:    user.Name,
		ToAddress: user.Email,
		Subject:   notification.Title,
		Text:      notification.Message,
	})
	if err != nil {
		log.Printf("[NOTIFICATION] delivery failed Type=%s, Recipient=%s: %v", notification.Type, notification.RecipientID, err)
	}
	return err
}
