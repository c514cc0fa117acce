// AngelaMos | 2026
// repository.go

package answer

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/doubtspace/internal/core"
	"github.com/carterperez-dev/doubtspace/internal/doubt"
)

type Repository interface {
	// ListByDoubt returns core.ErrNotFound when the doubt does not exist.
	// viewerID may be empty.
	ListByDoubt(ctx context.Context, doubtID, viewerID string) ([]Answer, error)
	GetByID(ctx context.Context, id, viewerID string) (*Answer, error)
	// CreateAndAdvance inserts the answer and moves the doubt along its
	// lifecycle in one transaction.
	CreateAndAdvance(ctx context.Context, a *Answer) (Transition, error)
	UpdateContent(ctx context.Context, a *Answer) error
	Delete(ctx context.Context, id string) error
}

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

const selectAnswer = `
	SELECT a.id, a.doubt_id, a.mentor_id, u.name AS mentor_name, a.content,
	       a.created_at, a.updated_at,
	       (SELECT COUNT(*) FROM upvotes v WHERE v.answer_id = a.id) AS upvote_count,
	       COALESCE((SELECT v.id::text FROM upvotes v
	                  WHERE v.answer_id = a.id AND v.user_id::text = $2), '') AS viewer_upvote_id
	FROM answers a
	JOIN users u ON u.id = a.mentor_id`

func (r *repository) ListByDoubt(
	ctx context.Context,
	doubtID, viewerID string,
) ([]Answer, error) {
	var exists bool
	if err := r.db.GetContext(ctx, &exists,
		`SELECT EXISTS (SELECT 1 FROM doubts WHERE id = $1)`, doubtID); err != nil {
		return nil, fmt.Errorf("check doubt: %w", err)
	}
	if !exists {
		return nil, fmt.Errorf("list answers: %w", core.ErrNotFound)
	}

	answers := []Answer{}
	query := selectAnswer + ` WHERE a.doubt_id = $1 ORDER BY a.created_at, a.id`
	if err := r.db.SelectContext(ctx, &answers, query, doubtID, viewerID); err != nil {
		return nil, fmt.Errorf("list answers: %w", err)
	}

	return answers, nil
}

func (r *repository) GetByID(ctx context.Context, id, viewerID string) (*Answer, error) {
	var a Answer
	if err := r.db.GetContext(ctx, &a, selectAnswer+` WHERE a.id = $1`, id, viewerID); err != nil {
		return nil, fmt.Errorf("get answer: %w", core.NoRows(err))
	}
	return &a, nil
}

func (r *repository) CreateAndAdvance(ctx context.Context, a *Answer) (Transition, error) {
	t := Transition{DoubtID: a.DoubtID}

	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		from, err := doubt.Lock(ctx, tx, a.DoubtID)
		if err != nil {
			return err
		}
		t.From, t.To = from, from

		err = tx.GetContext(ctx, a, `
			INSERT INTO answers (id, doubt_id, mentor_id, content)
			VALUES ($1, $2, $3, $4)
			RETURNING created_at, updated_at`,
			a.ID, a.DoubtID, a.MentorID, a.Content,
		)
		if err != nil {
			return fmt.Errorf("insert answer: %w", err)
		}

		var count int
		if err := tx.GetContext(ctx, &count,
			`SELECT COUNT(*) FROM answers WHERE doubt_id = $1`, a.DoubtID); err != nil {
			return fmt.Errorf("count answers: %w", err)
		}

		t.To, err = doubt.Advance(ctx, tx, a.DoubtID, from, count)
		return err
	})
	if err != nil {
		return Transition{}, fmt.Errorf("create answer: %w", err)
	}

	return t, nil
}

func (r *repository) UpdateContent(ctx context.Context, a *Answer) error {
	query := `
		UPDATE answers
		SET content = $2, updated_at = NOW()
		WHERE id = $1
		RETURNING updated_at`

	if err := r.db.GetContext(ctx, &a.UpdatedAt, query, a.ID, a.Content); err != nil {
		return fmt.Errorf("update answer: %w", core.NoRows(err))
	}
	return nil
}

func (r *repository) Delete(ctx context.Context, id string) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM answers WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete answer: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete answer: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("delete answer: %w", core.ErrNotFound)
	}
	return nil
}
