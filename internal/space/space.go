// AngelaMos | 2026
// space.go

// Package space serves the junior space feed: short posts by juniors,
// readable by everyone, newest first.
package space

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/doubtspace/internal/core"
	"github.com/carterperez-dev/doubtspace/internal/domain"
)

type Post struct {
	ID         string    `db:"id"`
	AuthorID   string    `db:"author_id"`
	AuthorName string    `db:"author_name"`
	Content    string    `db:"content"`
	CreatedAt  time.Time `db:"created_at"`
}

func (p *Post) ToResponse() domain.SpacePost {
	return domain.SpacePost{
		ID:         p.ID,
		AuthorID:   p.AuthorID,
		AuthorName: p.AuthorName,
		Content:    p.Content,
		CreatedAt:  p.CreatedAt,
	}
}

func ToResponseList(posts []Post) []domain.SpacePost {
	out := make([]domain.SpacePost, len(posts))
	for i := range posts {
		out[i] = posts[i].ToResponse()
	}
	return out
}

type CreatePostRequest struct {
	Content string `json:"content" validate:"required,max=10000"`
}

type Repository interface {
	List(ctx context.Context, page core.PageParams) ([]Post, int, error)
	GetByID(ctx context.Context, id string) (*Post, error)
	Create(ctx context.Context, p *Post) error
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

func (s *Service) List(ctx context.Context, page core.PageParams) ([]Post, int, error) {
	page.Normalize()
	return s.repo.List(ctx, page)
}

func (s *Service) Create(ctx context.Context, authorID, content string) (*Post, error) {
	p := &Post{
		ID:       uuid.New().String(),
		AuthorID: authorID,
		Content:  strings.TrimSpace(content),
	}
	if err := s.repo.Create(ctx, p); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, p.ID)
}
