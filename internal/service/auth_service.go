package service

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"idp-tool/internal/auth"
	"idp-tool/internal/models"
	"idp-tool/internal/repository"
)

// MagicLinkSender delivers the passwordless login email
type MagicLinkSender interface {
	SendMagicLink(to, link string) error
}

// AuthService handles the passwordless login flow: it mails single-use
// magic links and exchanges them for JWT sessions
type AuthService struct {
	userRepo  *repository.UserRepository
	tokenRepo *repository.LoginTokenRepository
	authSvc   *auth.Service
	responses *ResponseService
	sender    MagicLinkSender
	ttl       time.Duration
	baseURL   string
}

// NewAuthService creates a new auth service
func NewAuthService(
	userRepo *repository.UserRepository,
	tokenRepo *repository.LoginTokenRepository,
	authSvc *auth.Service,
	responses *ResponseService,
	sender MagicLinkSender,
	ttl time.Duration,
	baseURL string,
) *AuthService {
	return &AuthService{
		userRepo:  userRepo,
		tokenRepo: tokenRepo,
		authSvc:   authSvc,
		responses: responses,
		sender:    sender,
		ttl:       ttl,
		baseURL:   baseURL,
	}
}

// RequestMagicLink creates a single-use login token for an email and
// mails the link. The token travels as "<id>.<secret>"; only a bcrypt
// hash of the secret is stored. Beyond the email format check, failures
// are logged but not surfaced, so the caller cannot probe which
// addresses exist or reach the mailer.
func (s *AuthService) RequestMagicLink(email string) error {
	email = strings.ToLower(strings.TrimSpace(email))
	if email == "" || !strings.Contains(email, "@") {
		return ErrInvalidEmail
	}

	user, err := s.userRepo.GetOrCreateByEmail(email)
	if err != nil {
		slog.Error("Failed to look up user for magic link", "error", err)
		return nil
	}

	secret, err := auth.GenerateRandomToken(32)
	if err != nil {
		slog.Error("Failed to generate login secret", "error", err)
		return nil
	}

	secretHash, err := auth.HashLoginSecret(secret)
	if err != nil {
		slog.Error("Failed to hash login secret", "error", err)
		return nil
	}

	token := &models.LoginToken{
		ID:         uuid.New(),
		UserID:     user.ID,
		SecretHash: secretHash,
		ExpiresAt:  time.Now().Add(s.ttl),
	}
	if err := s.tokenRepo.Create(token); err != nil {
		slog.Error("Failed to store login token", "user_id", user.ID, "error", err)
		return nil
	}

	link := fmt.Sprintf("%s?token=%s.%s", s.baseURL, token.ID, secret)
	if err := s.sender.SendMagicLink(email, link); err != nil {
		slog.Error("Failed to send magic link", "error", err)
	}

	return nil
}

// VerifyMagicLink exchanges a magic-link token for a JWT session.
// Unknown, expired, consumed, or tampered tokens all come back as
// ErrInvalidLoginToken. On success, locally cached responses are
// replayed into the database.
func (s *AuthService) VerifyMagicLink(tokenString string) (string, *models.User, error) {
	id, secret, ok := strings.Cut(tokenString, ".")
	if !ok {
		return "", nil, ErrInvalidLoginToken
	}

	tokenID, err := uuid.Parse(id)
	if err != nil {
		return "", nil, ErrInvalidLoginToken
	}

	token, err := s.tokenRepo.GetByID(tokenID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load login token: %w", err)
	}
	if token == nil || token.UsedAt != nil || time.Now().After(token.ExpiresAt) {
		return "", nil, ErrInvalidLoginToken
	}

	if err := auth.VerifyLoginSecret(token.SecretHash, secret); err != nil {
		return "", nil, ErrInvalidLoginToken
	}

	if err := s.tokenRepo.MarkUsed(token.ID); err != nil {
		return "", nil, ErrInvalidLoginToken
	}

	user, err := s.userRepo.GetByID(token.UserID)
	if err != nil {
		return "", nil, fmt.Errorf("failed to load user: %w", err)
	}
	if user == nil {
		return "", nil, ErrInvalidLoginToken
	}

	if err := s.userRepo.TouchLastLogin(user.ID); err != nil {
		slog.Warn("Failed to record login time", "user_id", user.ID, "error", err)
	}

	jwt, err := s.authSvc.GenerateToken(user.ID, user.Email)
	if err != nil {
		return "", nil, fmt.Errorf("failed to issue session: %w", err)
	}

	// Best-effort sweep of offline edits made before this login
	if s.responses != nil {
		if err := s.responses.MigrateLocalData(user); err != nil {
			slog.Warn("Failed to migrate cached responses", "user_id", user.ID, "error", err)
		}
	}

	return jwt, user, nil
}
