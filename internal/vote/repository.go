// AngelaMos | 2026
// repository.go

package vote

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/doubtspace/internal/core"
)

const (
	uniqueVote       = "upvotes_answer_user_key"
	answerForeignKey = "upvotes_answer_id_fkey"
)

type repository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &repository{db: db}
}

func (r *repository) GetByID(ctx context.Context, id string) (*Vote, error) {
	var v Vote
	query := `SELECT id, answer_id, user_id, created_at FROM upvotes WHERE id = $1`
	if err := r.db.GetContext(ctx, &v, query, id); err != nil {
		return nil, fmt.Errorf("get upvote: %w", core.NoRows(err))
	}
	return &v, nil
}

func (r *repository) Create(ctx context.Context, v *Vote) (int, error) {
	var count int
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		query := `
			INSERT INTO upvotes (id, answer_id, user_id)
			VALUES ($1, $2, $3)
			RETURNING created_at`

		if err := tx.GetContext(ctx, &v.CreatedAt, query, v.ID, v.AnswerID, v.UserID); err != nil {
			switch {
			case core.IsUniqueViolation(err, uniqueVote):
				return fmt.Errorf("create upvote: %w", core.ErrDuplicateKey)
			case core.IsForeignKeyViolation(err, answerForeignKey):
				return fmt.Errorf("create upvote: answer %s: %w", v.AnswerID, core.ErrNotFound)
			}
			return fmt.Errorf("create upvote: %w", err)
		}

		return countVotes(ctx, tx, v.AnswerID, &count)
	})
	return count, err
}

func (r *repository) Delete(ctx context.Context, v *Vote) (int, error) {
	var count int
	err := core.InTx(ctx, r.db, func(tx *sqlx.Tx) error {
		result, err := tx.ExecContext(ctx, `DELETE FROM upvotes WHERE id = $1`, v.ID)
		if err != nil {
			return fmt.Errorf("delete upvote: %w", err)
		}

		rows, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("delete upvote: %w", err)
		}
		if rows == 0 {
			return fmt.Errorf("delete upvote: %w", core.ErrNotFound)
		}

		return countVotes(ctx, tx, v.AnswerID, &count)
	})
	return count, err
}

func countVotes(ctx context.Context, tx *sqlx.Tx, answerID string, dest *int) error {
	if err := tx.GetContext(ctx, dest,
		`SELECT COUNT(*) FROM upvotes WHERE answer_id = $1`, answerID); err != nil {
		return fmt.Errorf("count upvotes: %w", err)
	}
	return nil
}
