// AngelaMos | 2026
// entity.go

package user

import (
	"time"

	"github.com/carterperez-dev/doubtspace/internal/domain"
)

type User struct {
	ID           string      `db:"id"`
	Email        string      `db:"email"`
	PasswordHash string      `db:"password_hash"`
	Name         string      `db:"name"`
	Role         domain.Role `db:"role"`
	CreatedAt    time.Time   `db:"created_at"`
	UpdatedAt    time.Time   `db:"updated_at"`
	DeletedAt    *time.Time  `db:"deleted_at"`
}

func (u *User) IsDeleted() bool {
	return u.DeletedAt != nil
}

func (u *User) IsAdmin() bool {
	return u.Role == domain.RoleAdmin
}

// Activity is the set of profile counters, computed on read.
type Activity struct {
	DoubtsAsked     int `db:"doubts_asked"`
	AnswersGiven    int `db:"answers_given"`
	CommentsGiven   int `db:"comments_given"`
	UpvotesReceived int `db:"upvotes_received"`
}
