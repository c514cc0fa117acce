// AngelaMos | 2026
// service.go

package user

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"

	"github.com/carterperez-dev/doubtspace/internal/auth"
	"github.com/carterperez-dev/doubtspace/internal/core"
	"github.com/carterperez-dev/doubtspace/internal/domain"
)

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) GetByEmail(
	ctx context.Context,
	email string,
) (*auth.UserInfo, error) {
	user, err := s.repo.GetByEmail(ctx, normalizeEmail(email))
	if err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) Create(
	ctx context.Context,
	email, passwordHash, name string,
	role domain.Role,
) (*auth.UserInfo, error) {
	user := &User{
		ID:           uuid.New().String(),
		Email:        normalizeEmail(email),
		PasswordHash: passwordHash,
		Name:         strings.TrimSpace(name),
		Role:         role,
	}

	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return toUserInfo(user), nil
}

func (s *Service) UpdatePassword(
	ctx context.Context,
	userID, passwordHash string,
) error {
	return s.repo.UpdatePassword(ctx, userID, passwordHash)
}

// GetProfile is public: any caller may read any profile.
func (s *Service) GetProfile(ctx context.Context, id string) (*domain.Profile, error) {
	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	activity, err := s.repo.Activity(ctx, id)
	if err != nil {
		return nil, err
	}

	profile := ToProfile(user, activity)
	return &profile, nil
}

// UpdateProfile renames the requester. Nobody may edit another account.
func (s *Service) UpdateProfile(
	ctx context.Context,
	requesterID, id string,
	req UpdateUserRequest,
) (*domain.Profile, error) {
	if requesterID == "" {
		return nil, fmt.Errorf("update user: %w", core.ErrUnauthorized)
	}
	if requesterID != id {
		return nil, fmt.Errorf("update user: %w", core.ErrForbidden)
	}

	name := strings.TrimSpace(req.Name)
	if name == "" {
		return nil, fmt.Errorf("update user: name is blank: %w", core.ErrInvalidInput)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	user.Name = name
	if err := s.repo.UpdateName(ctx, user); err != nil {
		return nil, err
	}

	return s.GetProfile(ctx, id)
}

func (s *Service) ListMentors(
	ctx context.Context,
	page core.PageParams,
) ([]User, int, error) {
	return s.repo.ListByRole(ctx, domain.RoleMentor, page)
}

func (s *Service) CountByRole(ctx context.Context) (map[domain.Role]int, error) {
	return s.repo.CountByRole(ctx)
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

func toUserInfo(u *User) *auth.UserInfo {
	return &auth.UserInfo{
		ID:           u.ID,
		Email:        u.Email,
		Name:         u.Name,
		PasswordHash: u.PasswordHash,
		Role:         u.Role,
	}
}

var _ auth.UserProvider = (*Service)(nil)
