// AngelaMos | 2026
// service.go

package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/carterperez-dev/doubtspace/internal/core"
	"github.com/carterperez-dev/doubtspace/internal/domain"
	"github.com/carterperez-dev/doubtspace/internal/middleware"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrEmailExists        = errors.New("email already exists")
	ErrRoleNotAllowed     = errors.New("role not allowed at signup")
)

type UserInfo struct {
	ID           string
	Email        string
	Name         string
	PasswordHash string
	Role         domain.Role
}

type UserProvider interface {
	GetByEmail(ctx context.Context, email string) (*UserInfo, error)
	Create(
		ctx context.Context,
		email, passwordHash, name string,
		role domain.Role,
	) (*UserInfo, error)
	UpdatePassword(ctx context.Context, userID, passwordHash string) error
}

// Revoker records a token id as logged out.
type Revoker interface {
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
}

type Service struct {
	jwt          *JWTManager
	userProvider UserProvider
	revoker      Revoker
	logger       *slog.Logger
}

func NewService(
	jwt *JWTManager,
	userProvider UserProvider,
	revoker Revoker,
	logger *slog.Logger,
) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		jwt:          jwt,
		userProvider: userProvider,
		revoker:      revoker,
		logger:       logger,
	}
}

func (s *Service) Login(
	ctx context.Context,
	req LoginRequest,
) (*domain.AuthResult, error) {
	user, err := s.userProvider.GetByEmail(ctx, req.Email)
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			//nolint:errcheck // keep timing equal for unknown emails
			_, _, _ = core.VerifyPasswordTimingSafe(req.Password, nil)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("get user: %w", err)
	}

	valid, newHash, err := core.VerifyPasswordTimingSafe(
		req.Password,
		&user.PasswordHash,
	)
	if err != nil {
		return nil, fmt.Errorf("verify password: %w", err)
	}

	if !valid {
		return nil, ErrInvalidCredentials
	}

	if newHash != "" {
		if err := s.userProvider.UpdatePassword(ctx, user.ID, newHash); err != nil {
			s.logger.WarnContext(ctx, "password rehash failed",
				"user_id", user.ID,
				"error", err,
			)
		}
	}

	return s.issue(user)
}

// Register creates a junior or mentor account. Admins are provisioned out
// of band.
func (s *Service) Register(
	ctx context.Context,
	req RegisterRequest,
) (*domain.AuthResult, error) {
	role := domain.Role(req.Role)
	if !role.Signupable() {
		return nil, fmt.Errorf("register as %q: %w", req.Role, ErrRoleNotAllowed)
	}

	passwordHash, err := core.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user, err := s.userProvider.Create(ctx, req.Email, passwordHash, req.Name, role)
	if err != nil {
		if errors.Is(err, core.ErrDuplicateKey) {
			return nil, ErrEmailExists
		}
		return nil, fmt.Errorf("create user: %w", err)
	}

	s.logger.InfoContext(ctx, "account registered",
		"user_id", user.ID,
		"role", user.Role,
	)

	return s.issue(user)
}

// Logout revokes the presented token for the rest of its lifetime.
func (s *Service) Logout(
	ctx context.Context,
	claims *middleware.AccessTokenClaims,
) error {
	if claims == nil || claims.JTI == "" {
		return fmt.Errorf("logout: %w", core.ErrUnauthorized)
	}

	if err := s.revoker.Revoke(ctx, claims.JTI, claims.ExpiresAt); err != nil {
		return fmt.Errorf("revoke token: %w", err)
	}

	return nil
}

func (s *Service) issue(user *UserInfo) (*domain.AuthResult, error) {
	token, err := s.jwt.CreateAccessToken(AccessTokenClaims{
		UserID: user.ID,
		Email:  user.Email,
		Name:   user.Name,
		Role:   user.Role,
	})
	if err != nil {
		return nil, fmt.Errorf("create access token: %w", err)
	}

	return &domain.AuthResult{
		Token: token.Token,
		User: domain.User{
			ID:    user.ID,
			Name:  user.Name,
			Email: user.Email,
			Role:  user.Role,
		},
	}, nil
}
