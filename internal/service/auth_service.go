package service

import (
	"context"
	"errors"
	"log/slog"
	"net/mail"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ivv-intern/storefront/internal/apperror"
	"github.com/ivv-intern/storefront/internal/models"
	"github.com/ivv-intern/storefront/internal/repository"
	"github.com/ivv-intern/storefront/internal/session"
	"golang.org/x/crypto/bcrypt"
)

const (
	minPasswordLength = 8
	// bcrypt ignores everything after 72 bytes
	maxPasswordLength = 72
	maxNameLength     = 70
)

var errInvalidCredentials = apperror.Unauthenticated("invalid email or password")

// AuthService registers users and manages their sessions.
type AuthService struct {
	users       repository.UserRepository
	sessions    session.Store
	adminEmails []string
	logger      *slog.Logger

	bcryptCost int
	now        func() time.Time
}

// NewAuthService creates an auth service. Users registering with one of
// adminEmails get the ADMIN role.
func NewAuthService(users repository.UserRepository, sessions session.Store, adminEmails []string, logger *slog.Logger) *AuthService {
	normalized := make([]string, 0, len(adminEmails))
	for _, e := range adminEmails {
		if e = normalizeEmail(e); e != "" {
			normalized = append(normalized, e)
		}
	}
	return &AuthService{
		users:       users,
		sessions:    sessions,
		adminEmails: normalized,
		logger:      logger,
		bcryptCost:  bcrypt.DefaultCost,
		now:         time.Now,
	}
}

// Register creates a user and logs them in.
func (s *AuthService) Register(ctx context.Context, req models.RegisterRequest) (*models.User, *models.Session, error) {
	email := normalizeEmail(req.Email)
	if _, err := mail.ParseAddress(email); err != nil {
		return nil, nil, apperror.InvalidArgument("a valid email address is required")
	}
	if len(req.Password) < minPasswordLength || len(req.Password) > maxPasswordLength {
		return nil, nil, apperror.InvalidArgument("password must be between 8 and 72 characters")
	}
	name, surname := strings.TrimSpace(req.Name), strings.TrimSpace(req.Surname)
	if name == "" || surname == "" {
		return nil, nil, apperror.InvalidArgument("name and surname are required")
	}
	if len(name) > maxNameLength || len(surname) > maxNameLength {
		return nil, nil, apperror.InvalidArgument("name and surname must be at most 70 characters")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), s.bcryptCost)
	if err != nil {
		return nil, nil, apperror.Internal(err, "failed to hash password")
	}

	role := models.RoleUser
	if slices.Contains(s.adminEmails, email) {
		role = models.RoleAdmin
	}

	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		PasswordHash: string(hash),
		Name:         name,
		Surname:      surname,
		Role:         role,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrDuplicateEmail) {
			return nil, nil, apperror.Conflict("email already registered")
		}
		return nil, nil, apperror.Internal(err, "failed to create user")
	}

	sess, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, apperror.Internal(err, "failed to create session")
	}

	s.logger.Info("user registered", "user_id", user.ID, "role", user.Role)
	return user, sess, nil
}

// Login checks the credentials and opens a new session.
func (s *AuthService) Login(ctx context.Context, req models.LoginRequest) (*models.User, *models.Session, error) {
	user, err := s.users.GetByEmail(ctx, normalizeEmail(req.Email))
	if errors.Is(err, repository.ErrNotFound) {
		return nil, nil, errInvalidCredentials
	}
	if err != nil {
		return nil, nil, apperror.Internal(err, "failed to load user")
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(req.Password)); err != nil {
		return nil, nil, errInvalidCredentials
	}

	sess, err := s.sessions.Create(ctx, user.ID)
	if err != nil {
		return nil, nil, apperror.Internal(err, "failed to create session")
	}
	return user, sess, nil
}

// Logout ends the session.
func (s *AuthService) Logout(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return apperror.NotFound("session not found")
	}
	err := s.sessions.Delete(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return apperror.NotFound("session not found")
	}
	if err != nil {
		return apperror.Internal(err, "failed to delete session")
	}
	return nil
}

// Authenticate resolves a session ID to its user. Unknown or expired sessions
// and sessions of deleted users are Unauthenticated.
func (s *AuthService) Authenticate(ctx context.Context, sessionID string) (*models.User, *models.Session, error) {
	if sessionID == "" {
		return nil, nil, apperror.Unauthenticated("no session")
	}

	sess, err := s.sessions.Get(ctx, sessionID)
	if errors.Is(err, session.ErrNotFound) {
		return nil, nil, apperror.Unauthenticated("session expired")
	}
	if err != nil {
		return nil, nil, apperror.Internal(err, "failed to load session")
	}

	user, err := s.users.GetByID(ctx, sess.UserID)
	if errors.Is(err, repository.ErrNotFound) {
		if delErr := s.sessions.Delete(ctx, sessionID); delErr != nil && !errors.Is(delErr, session.ErrNotFound) {
			s.logger.Warn("failed to drop orphaned session", "error", delErr)
		}
		return nil, nil, apperror.Unauthenticated("session expired")
	}
	if err != nil {
		return nil, nil, apperror.Internal(err, "failed to load user")
	}
	return user, sess, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
