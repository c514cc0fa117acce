// AngelaMos | 2026
// repository.go

package space

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/doubtspace/internal/core"
)

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const selectPost = `
	SELECT p.id, p.author_id, u.name AS author_name, p.content, p.created_at
	FROM space_posts p
	JOIN users u ON u.id = p.author_id`

func (r *repository) List(ctx context.Context, page core.PageParams) ([]Post, int, error) {
	var total int
	if err := r.db.GetContext(ctx, &total, `SELECT COUNT(*) FROM space_posts`); err != nil {
		return nil, 0, fmt.Errorf("count space posts: %w", err)
	}

	posts := []Post{}
	query := selectPost + ` ORDER BY p.created_at DESC, p.id DESC LIMIT $1 OFFSET $2`
	if err := r.db.SelectContext(ctx, &posts, query, page.PageSize, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list space posts: %w", err)
	}

	return posts, total, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Post, error) {
	var p Post
	if err := r.db.GetContext(ctx, &p, selectPost+` WHERE p.id = $1`, id); err != nil {
		return nil, fmt.Errorf("get space post: %w", core.NoRows(err))
	}
	return &p, nil
}

func (r *repository) Create(ctx context.Context, p *Post) error {
	query := `
		INSERT INTO space_posts (id, author_id, content)
		VALUES ($1, $2, $3)
		RETURNING created_at`

	if err := r.db.GetContext(ctx, &p.CreatedAt, query, p.ID, p.AuthorID, p.Content); err != nil {
		return fmt.Errorf("create space post: %w", err)
	}
	return nil
}
