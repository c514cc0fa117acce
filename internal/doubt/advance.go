// AngelaMos | 2026
// advance.go

package doubt

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/carterperez-dev/doubtspace/internal/core"
	"github.com/carterperez-dev/doubtspace/internal/domain"
	"github.com/carterperez-dev/doubtspace/internal/lifecycle"
)

// Lock reads a doubt's status and holds its row until tx ends, so two
// first answers cannot both see pending.
func Lock(ctx context.Context, tx sqlx.QueryerContext, id string) (domain.DoubtStatus, error) {
	var status domain.DoubtStatus
	err := sqlx.GetContext(ctx, tx, &status, `SELECT status FROM doubts WHERE id = $1 FOR UPDATE`, id)
	if err != nil {
		return "", fmt.Errorf("lock doubt: %w", core.NoRows(err))
	}
	return status, nil
}

// Advance applies a new answer count to a doubt held by Lock and returns
// the status it now has. Nothing is written when the status stays put.
func Advance(
	ctx context.Context,
	tx sqlx.ExecerContext,
	id string,
	from domain.DoubtStatus,
	answerCount int,
) (domain.DoubtStatus, error) {
	to := lifecycle.Derive(from, answerCount)
	if to == from {
		return from, nil
	}
	if err := lifecycle.Transition(from, to); err != nil {
		return from, err
	}

	if err := writeStatus(ctx, tx, id, from, to); err != nil {
		return from, fmt.Errorf("advance doubt: %w", err)
	}
	return to, nil
}

// writeStatus is the one statement that changes doubts.status. It only
// applies while the row still holds from.
func writeStatus(
	ctx context.Context,
	db sqlx.ExecerContext,
	id string,
	from, to domain.DoubtStatus,
) error {
	query := `
		UPDATE doubts
		SET status = $3, updated_at = NOW()
		WHERE id = $1 AND status = $2`

	result, err := db.ExecContext(ctx, query, id, from, to)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return fmt.Errorf("%s -> %s: %w", from, to, core.ErrConflict)
	}

	return nil
}
