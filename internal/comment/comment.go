// AngelaMos | 2026
// comment.go

package comment

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/doubtspace/internal/core"
	"github.com/carterperez-dev/doubtspace/internal/domain"
)

type Comment struct {
	ID         string    `db:"id"`
	DoubtID    string    `db:"doubt_id"`
	AuthorID   string    `db:"author_id"`
	AuthorName string    `db:"author_name"`
	Content    string    `db:"content"`
	CreatedAt  time.Time `db:"created_at"`
	UpdatedAt  time.Time `db:"updated_at"`
}

type CreateCommentRequest struct {
	DoubtID string `json:"doubtId" validate:"required"`
	Content string `json:"content" validate:"required,max=10000"`
}

func (r *CreateCommentRequest) Normalize() {
	r.DoubtID = strings.TrimSpace(r.DoubtID)
	r.Content = strings.TrimSpace(r.Content)
}

type UpdateCommentRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}

func (r *UpdateCommentRequest) Normalize() {
	r.Content = strings.TrimSpace(r.Content)
}

func ToResponse(c *Comment) domain.Comment {
	return domain.Comment{
		ID:         c.ID,
		DoubtID:    c.DoubtID,
		AuthorID:   c.AuthorID,
		AuthorName: c.AuthorName,
		Content:    c.Content,
		CreatedAt:  c.CreatedAt,
	}
}

func ToResponseList(comments []Comment) []domain.Comment {
	out := make([]domain.Comment, len(comments))
	for i := range comments {
		out[i] = ToResponse(&comments[i])
	}
	return out
}

type Repository interface {
	ListByDoubt(ctx context.Context, doubtID string) ([]Comment, error)
	GetByID(ctx context.Context, id string) (*Comment, error)
	Create(ctx context.Context, c *Comment) error
	UpdateContent(ctx context.Context, c *Comment) error
	Delete(ctx context.Context, id string) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) ListByDoubt(ctx context.Context, doubtID string) ([]Comment, error) {
	return s.repo.ListByDoubt(ctx, doubtID)
}

func (s *Service) Create(ctx context.Context, authorID string, req CreateCommentRequest) (*Comment, error) {
	c := &Comment{
		ID:       uuid.New().String(),
		DoubtID:  req.DoubtID,
		AuthorID: authorID,
		Content:  req.Content,
	}
	if err := s.repo.Create(ctx, c); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, c.ID)
}

func (s *Service) Update(
	ctx context.Context,
	actorID, id string,
	req UpdateCommentRequest,
) (*Comment, error) {
	c, err := s.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	c.Content = req.Content
	if err := s.repo.UpdateContent(ctx, c); err != nil {
		return nil, err
	}
	return c, nil
}

func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	if _, err := s.owned(ctx, actorID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) owned(ctx context.Context, actorID, id string) (*Comment, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if actorID == "" || c.AuthorID != actorID {
		return nil, fmt.Errorf("comment %s: %w", id, core.ErrForbidden)
	}
	return c, nil
}
