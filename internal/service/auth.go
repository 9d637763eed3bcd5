package service

import (
	"context"
	"errors"
	"log"
	"strings"
	"time"

	"github.com/google/uuid"

	"schoolfees/internal/auth"
	"schoolfees/internal/domain"
	"schoolfees/internal/repository"
)

// AuthService handles login, initial administrator bootstrap and accounts.
type AuthService struct {
	userRepo      repository.UserRepository
	bootstrapRepo repository.BootstrapRepository
	tokens        *auth.TokenManager
	notification  *NotificationService
}

// NewAuthService creates a new AuthService.
func NewAuthService(
	userRepo repository.UserRepository,
	bootstrapRepo repository.BootstrapRepository,
	tokens *auth.TokenManager,
	notification *NotificationService,
) *AuthService {
	return &AuthService{
		userRepo:      userRepo,
		bootstrapRepo: bootstrapRepo,
		tokens:        tokens,
		notification:  notification,
	}
}

// Session is an issued access token.
type Session struct {
	Token     string
	ExpiresAt time.Time
	User      *domain.User
}

// CreateUserRequest contains the parameters for creating an account.
type CreateUserRequest struct {
	Name     string `validate:"required,max=200"`
	Email    string `validate:"required,email"`
	Password string `validate:"required,min=8,max=72"`
	Role     string `validate:"required,oneof=admin staff student"`
}

// Login checks credentials and issues a token.
func (s *AuthService) Login(ctx context.Context, email, password string) (*Session, error) {
	user, err := s.userRepo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		if isNotFound(err) {
			return nil, ErrInvalidCredentials
		}
		return nil, storeError(err)
	}

	if !auth.CheckPassword(password, user.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	return s.IssueSession(user)
}

// IssueSession signs a token for user.
func (s *AuthService) IssueSession(user *domain.User) (*Session, error) {
	token, expiresAt, err := s.tokens.Issue(user)
	if err != nil {
		return nil, err
	}
	return &Session{Token: token, ExpiresAt: expiresAt, User: user}, nil
}

// BootstrapAdmin registers the first administrator. It succeeds once; later
// calls return ErrBootstrapCompleted.
func (s *AuthService) BootstrapAdmin(ctx context.Context, name, email, password string) (*Session, error) {
	marker, err := s.bootstrapRepo.Get(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	if marker != nil {
		return nil, ErrBootstrapCompleted
	}

	user, err := s.newUser(CreateUserRequest{
		Name:     name,
		Email:    email,
		Password: password,
		Role:     string(domain.RoleAdmin),
	})
	if err != nil {
		return nil, err
	}

	if err := s.bootstrapRepo.Complete(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrBootstrapCompleted
		}
		return nil, storeError(err)
	}

	log.Printf("[AUTH] Bootstrap admin registered UserID=%s, Email=%s", user.ID, user.Email)

	return s.IssueSession(user)
}

// CreateUser creates a staff, student or admin account. Administrators only.
func (s *AuthService) CreateUser(ctx context.Context, admin domain.Identity, req CreateUserRequest) (*domain.User, error) {
	if !admin.IsAdmin() {
		return nil, ErrForbidden
	}

	user, err := s.newUser(req)
	if err != nil {
		return nil, err
	}

	if err := s.userRepo.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrEmailTaken
		}
		return nil, storeError(err)
	}

	log.Printf("[AUTH] User created UserID=%s, Role=%s, By=%s", user.ID, user.Role, admin.UserID)

	if s.notification != nil {
		_ = s.notification.NotifyAccountCreated(ctx, user)
	}

	return user, nil
}

// ListUsers returns every account. Administrators only.
func (s *AuthService) ListUsers(ctx context.Context, admin domain.Identity) ([]*domain.User, error) {
	if !admin.IsAdmin() {
		return nil, ErrForbidden
	}

	users, err := s.userRepo.GetAll(ctx)
	if err != nil {
		return nil, storeError(err)
	}
	return users, nil
}

func (s *AuthService) newUser(req CreateUserRequest) (*domain.User, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = normalizeEmail(req.Email)

	if err := validateStruct(req); err != nil {
		return nil, err
	}

	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, err
	}

	return &domain.User{
		ID:           uuid.New().String(),
		Name:         req.Name,
		Email:        req.Email,
		Role:         domain.Role(req.Role),
		PasswordHash: hash,
	}, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
