// AngelaMos | 2026
// entity.go

package answer

import (
	"time"

	"github.com/carterperez-dev/doubtspace/internal/domain"
)

type Answer struct {
	ID             string    `db:"id"`
	DoubtID        string    `db:"doubt_id"`
	MentorID       string    `db:"mentor_id"`
	MentorName     string    `db:"mentor_name"`
	Content        string    `db:"content"`
	UpvoteCount    int       `db:"upvote_count"`
	ViewerUpvoteID string    `db:"viewer_upvote_id"`
	CreatedAt      time.Time `db:"created_at"`
	UpdatedAt      time.Time `db:"updated_at"`
}

func (a *Answer) OwnedBy(userID string) bool {
	return userID != "" && a.MentorID == userID
}

// Transition is the doubt status change an answer write caused. From and
// To are equal when nothing moved.
type Transition struct {
	DoubtID string
	From    domain.DoubtStatus
	To      domain.DoubtStatus
}

func (t Transition) Changed() bool {
	return t.From != t.To
}
