package service

import (
	"context"
	"errors"
	"fmt"
	"net/http"

	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/spec-kit/task-service/internal/domain"
	"github.com/spec-kit/task-service/internal/repository"
	apperrors "github.com/spec-kit/task-service/pkg/util"
)

// Account failures surfaced by AuthService.
var (
	ErrDuplicateUsername = apperrors.NewDomainError("DUPLICATE_USERNAME", "Username already exists", http.StatusBadRequest, nil)
	ErrBadCredentials    = apperrors.NewDomainError("BAD_CREDENTIALS", "Invalid credentials", http.StatusUnauthorized, nil)
)

// PasswordHasher hashes new passwords and verifies presented ones.
type PasswordHasher interface {
	Hash(password string) (string, error)
	Verify(password, hash string) bool
}

// Sessions issues and revokes session tokens.
type Sessions interface {
	Issue(ctx context.Context, username string, isAdmin bool) (string, error)
	Revoke(ctx context.Context, token string) error
}

// RegisterInput describes a new account.
type RegisterInput struct {
	Username string
	Password string
	Email    string
	IsAdmin  bool
}

// AuthService coordinates registration, login and logout flows.
type AuthService struct {
	users    repository.UserRepository
	hasher   PasswordHasher
	sessions Sessions
	logger   *zap.Logger
}

// AuthDependencies encapsulates requirements for auth service.
type AuthDependencies struct {
	UserRepo repository.UserRepository
	Hasher   PasswordHasher
	Sessions Sessions
	Logger   *zap.Logger
}

// NewAuthService builds the service.
func NewAuthService(deps AuthDependencies) *AuthService {
	logger := deps.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	return &AuthService{
		users:    deps.UserRepo,
		hasher:   deps.Hasher,
		sessions: deps.Sessions,
		logger:   logger,
	}
}

// Register creates a new account.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if _, err := s.users.GetByUsername(ctx, input.Username); err == nil {
		return nil, ErrDuplicateUsername
	} else if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("lookup user: %w", err)
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Username:     input.Username,
		PasswordHash: hash,
		Email:        input.Email,
		IsAdmin:      input.IsAdmin,
	}
	if err := s.users.Create(ctx, user); err != nil {
		// Lost a race with a concurrent registration of the same name.
		if errors.Is(err, repository.ErrDuplicate) {
			return nil, ErrDuplicateUsername
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.Info("user registered", zap.String("username", user.Username), zap.Bool("is_admin", user.IsAdmin))
	return user, nil
}

// Login verifies the credentials and issues a session token. An unknown
// username and a wrong password fail identically.
func (s *AuthService) Login(ctx context.Context, username, password string) (string, error) {
	user, err := s.users.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return "", ErrBadCredentials
		}
		return "", fmt.Errorf("lookup user: %w", err)
	}
	if !s.hasher.Verify(password, user.PasswordHash) {
		s.logger.Info("login rejected", zap.String("username", username))
		return "", ErrBadCredentials
	}

	return s.sessions.Issue(ctx, user.Username, user.IsAdmin)
}

// Logout revokes the caller's current token.
func (s *AuthService) Logout(ctx context.Context, identity *domain.Identity) error {
	return s.sessions.Revoke(ctx, identity.RawToken)
}
