// AngelaMos | 2026
// repository.go

package doubt

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/doubtspace/internal/core"
	"github.com/carterperez-dev/doubtspace/internal/domain"
)

type ListFilter struct {
	AuthorID string
	Status   domain.DoubtStatus
	Page     core.PageParams
}

type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Doubt, int, error)
	GetByID(ctx context.Context, id string) (*Doubt, error)
	Create(ctx context.Context, d *Doubt) error
	Update(ctx context.Context, d *Doubt) error
	Delete(ctx context.Context, id string) error
	// TransitionStatus moves id from one status to another and fails with
	// core.ErrConflict when the stored status is no longer from.
	TransitionStatus(ctx context.Context, id string, from, to domain.DoubtStatus) error
	CountByStatus(ctx context.Context) (map[domain.DoubtStatus]int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const selectDoubt = `
	SELECT d.id, d.author_id, u.name AS author_name, d.title, d.description,
	       d.tags, d.status, d.created_at, d.updated_at,
	       (SELECT COUNT(*) FROM answers a WHERE a.doubt_id = d.id)  AS answer_count,
	       (SELECT COUNT(*) FROM comments c WHERE c.doubt_id = d.id) AS comment_count
	FROM doubts d
	JOIN users u ON u.id = d.author_id`

func (r *repository) List(ctx context.Context, f ListFilter) ([]Doubt, int, error) {
	f.Page.Normalize()

	where := `
	WHERE ($1 = '' OR d.author_id::text = $1)
	  AND ($2 = '' OR d.status = $2)`

	var total int
	countQuery := `SELECT COUNT(*) FROM doubts d` + where
	if err := r.db.GetContext(ctx, &total, countQuery, f.AuthorID, f.Status); err != nil {
		return nil, 0, fmt.Errorf("count doubts: %w", err)
	}

	query := selectDoubt + where + `
	ORDER BY d.created_at DESC, d.id DESC
	LIMIT $3 OFFSET $4`

	doubts := []Doubt{}
	err := r.db.SelectContext(ctx, &doubts, query,
		f.AuthorID,
		f.Status,
		f.Page.PageSize,
		f.Page.Offset(),
	)
	if err != nil {
		return nil, 0, fmt.Errorf("list doubts: %w", err)
	}

	return doubts, total, nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*Doubt, error) {
	var d Doubt
	if err := r.db.GetContext(ctx, &d, selectDoubt+` WHERE d.id = $1`, id); err != nil {
		return nil, fmt.Errorf("get doubt: %w", core.NoRows(err))
	}
	return &d, nil
}

func (r *repository) Create(ctx context.Context, d *Doubt) error {
	query := `
		INSERT INTO doubts (id, author_id, title, description, tags, status)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, d, query,
		d.ID,
		d.AuthorID,
		d.Title,
		d.Description,
		d.Tags,
		d.Status,
	)
	if err != nil {
		return fmt.Errorf("create doubt: %w", err)
	}

	return nil
}

func (r *repository) Update(ctx context.Context, d *Doubt) error {
	query := `
		UPDATE doubts
		SET title = $2, description = $3, tags = $4, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &d.UpdatedAt, query, d.ID, d.Title, d.Description, d.Tags)
	if err != nil {
		return fmt.Errorf("update doubt: %w", core.NoRows(err))
	}

	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM doubts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete doubt: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete doubt: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete doubt: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) TransitionStatus(
	ctx context.Context,
	id string,
	from, to domain.DoubtStatus,
) error {
	if err := writeStatus(ctx, r.db, id, from, to); err != nil {
		return fmt.Errorf("transition doubt: %w", err)
	}
	return nil
}

func (r *repository) CountByStatus(ctx context.Context) (map[domain.DoubtStatus]int, error) {
	var rows []struct {
		Status domain.DoubtStatus `db:"status"`
		N      int                `db:"n"`
	}
	query := `SELECT status, COUNT(*) AS n FROM doubts GROUP BY status`
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count doubts by status: %w", err)
	}

	counts := map[domain.DoubtStatus]int{
		domain.StatusPending:  0,
		domain.StatusAnswered: 0,
		domain.StatusResolved: 0,
	}
	for _, row := range rows {
		counts[row.Status] = row.N
	}
	return counts, nil
}
