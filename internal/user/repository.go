// AngelaMos | 2026
// repository.go

package user

import (
	"context"
	"fmt"

	"github.com/carterperez-dev/doubtspace/internal/core"
	"github.com/carterperez-dev/doubtspace/internal/domain"
)

const emailUniqueConstraint = "users_email_key"

type Repository interface {
	Create(ctx context.Context, user *User) error
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	UpdateName(ctx context.Context, user *User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	Activity(ctx context.Context, id string) (Activity, error)
	ListByRole(
		ctx context.Context,
		role domain.Role,
		page core.PageParams,
	) ([]User, int, error)
	CountByRole(ctx context.Context) (map[domain.Role]int, error)
}

type repository struct {
	db core.DBTX
}

func NewRepository(db core.DBTX) Repository {
	return &repository{db: db}
}

const userColumns = `id, email, password_hash, name, role,
		       created_at, updated_at, deleted_at`

func (r *repository) Create(ctx context.Context, user *User) error {
	query := `
		INSERT INTO users (id, email, password_hash, name, role)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`

	err := r.db.GetContext(ctx, user, query,
		user.ID,
		user.Email,
		user.PasswordHash,
		user.Name,
		user.Role,
	)
	if err != nil {
		if core.IsUniqueViolation(err, emailUniqueConstraint) {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
		return fmt.Errorf("create user: %w", err)
	}

	return nil
}

func (r *repository) GetByID(ctx context.Context, id string) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE id = $1 AND deleted_at IS NULL`

	var user User
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		return nil, fmt.Errorf("get user: %w", core.NoRows(err))
	}

	return &user, nil
}

func (r *repository) GetByEmail(
	ctx context.Context,
	email string,
) (*User, error) {
	query := `SELECT ` + userColumns + `
		FROM users
		WHERE email = $1 AND deleted_at IS NULL`

	var user User
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		return nil, fmt.Errorf("get user by email: %w", core.NoRows(err))
	}

	return &user, nil
}

func (r *repository) UpdateName(ctx context.Context, user *User) error {
	query := `
		UPDATE users
		SET name = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL
		RETURNING updated_at`

	err := r.db.GetContext(ctx, &user.UpdatedAt, query, user.ID, user.Name)
	if err != nil {
		return fmt.Errorf("update user: %w", core.NoRows(err))
	}

	return nil
}

func (r *repository) UpdatePassword(
	ctx context.Context,
	id, passwordHash string,
) error {
	query := `
		UPDATE users
		SET password_hash = $2, updated_at = NOW()
		WHERE id = $1 AND deleted_at IS NULL`

	result, err := r.db.ExecContext(ctx, query, id, passwordHash)
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("update password: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("update password: %w", core.ErrNotFound)
	}

	return nil
}

func (r *repository) Activity(ctx context.Context, id string) (Activity, error) {
	query := `
		SELECT
			(SELECT COUNT(*) FROM doubts WHERE author_id = $1)   AS doubts_asked,
			(SELECT COUNT(*) FROM answers WHERE mentor_id = $1)  AS answers_given,
			(SELECT COUNT(*) FROM comments WHERE author_id = $1) AS comments_given,
			(SELECT COUNT(*)
			   FROM upvotes v
			   JOIN answers a ON a.id = v.answer_id
			  WHERE a.mentor_id = $1)                             AS upvotes_received`

	var a Activity
	if err := r.db.GetContext(ctx, &a, query, id); err != nil {
		return Activity{}, fmt.Errorf("user activity: %w", err)
	}

	return a, nil
}

func (r *repository) ListByRole(
	ctx context.Context,
	role domain.Role,
	page core.PageParams,
) ([]User, int, error) {
	page.Normalize()

	countQuery := `
		SELECT COUNT(*) FROM users
		WHERE role = $1 AND deleted_at IS NULL`

	var total int
	if err := r.db.GetContext(ctx, &total, countQuery, role); err != nil {
		return nil, 0, fmt.Errorf("count users: %w", err)
	}

	query := `SELECT ` + userColumns + `
		FROM users
		WHERE role = $1 AND deleted_at IS NULL
		ORDER BY name, id
		LIMIT $2 OFFSET $3`

	users := []User{}
	if err := r.db.SelectContext(ctx, &users, query, role, page.PageSize, page.Offset()); err != nil {
		return nil, 0, fmt.Errorf("list users: %w", err)
	}

	return users, total, nil
}

func (r *repository) CountByRole(ctx context.Context) (map[domain.Role]int, error) {
	query := `
		SELECT role, COUNT(*) AS n
		FROM users
		WHERE deleted_at IS NULL
		GROUP BY role`

	var rows []struct {
		Role domain.Role `db:"role"`
		N    int         `db:"n"`
	}
	if err := r.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("count users by role: %w", err)
	}

	counts := make(map[domain.Role]int, len(rows))
	for _, row := range rows {
		counts[row.Role] = row.N
	}
	return counts, nil
}
