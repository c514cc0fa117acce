// AngelaMos | 2026
// repository.go

package comment

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/doubtspace/internal/core"
)

const doubtForeignKey = "comments_doubt_id_fkey"

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const selectComment = `
	SELECT c.id, c.doubt_id, c.author_id, u.name AS author_name, c.content,
	       c.created_at, c.updated_at
	FROM comments c
	JOIN users u ON u.id = c.author_id`

func (r *repository) ListByDoubt(ctx context.Context, doubtID string) ([]Comment, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM doubts WHERE id = $1)`, doubtID); err != nil {
		return nil, fmt.Errorf("check doubt: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("list comments: %w", core.ErrNotFound)
	}

	comments := []Comment{}
	query := selectComment + ` WHERE c.doubt_id = $1 ORDER BY c.created_at, c.id`
	if err := r.db.SelectContext(ctx, &comments, query, doubtID); err != nil {
		return nil, fmt.Errorf("list comments: %w", err)
	}
	return comments, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Comment, error) {
	var c Comment
	if err := r.db.GetContext(ctx, &c, selectComment+` WHERE c.id = $1`, id); err != nil {
		return nil, fmt.Errorf("get comment: %w", core.NoRows(err))
	}
	return &c, nil
}

func (r *repository) Create(ctx context.Context, c *Comment) error {
	query := `
		INSERT INTO comments (id, doubt_id, author_id, content)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, c, query, c.ID, c.DoubtID, c.AuthorID, c.Content)
	if err != nil {
		if core.IsForeignKeyViolation(err, doubtForeignKey) {
			return fmt.Errorf("create comment: doubt %s: %w", c.DoubtID, core.ErrNotFound)
		}
		return fmt.Errorf("create comment: %w", err)
	}
	return nil
}

func (r *repository) UpdateContent(ctx context.Context, c *Comment) error {
	query := `
		UPDATE comments
		SET content = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	if err := r.db.GetContext(ctx, &c.UpdatedAt, query, c.ID, c.Content); err != nil {
		return fmt.Errorf("update comment: %w", core.NoRows(err))
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM comments WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete comment: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete comment: %w", core.ErrNotFound)
	}
	return nil
}
