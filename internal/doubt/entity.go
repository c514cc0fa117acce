// AngelaMos | 2026
// entity.go

package doubt

import (
	"database/sql/driver"
	"encoding/json"
	"fmt"
	"time"

	"github.com/carterperez-dev/doubtspace/internal/domain"
)

type Doubt struct {
	ID           string             `db:"id"`
	AuthorID     string             `db:"author_id"`
	AuthorName   string             `db:"author_name"`
	Title        string             `db:"title"`
	Description  string             `db:"description"`
	Tags         TagList            `db:"tags"`
	Status       domain.DoubtStatus `db:"status"`
	AnswerCount  int                `db:"answer_count"`
	CommentCount int                `db:"comment_count"`
	CreatedAt    time.Time          `db:"created_at"`
	UpdatedAt    time.Time          `db:"updated_at"`
}

func (d *Doubt) OwnedBy(userID string) bool {
	return userID != "" && d.AuthorID == userID
}

// TagList is stored as a JSONB array.
type TagList []string

func (t TagList) Value() (driver.Value, error) {
	if t == nil {
		return "[]", nil
	}
	b, err := json.Marshal([]string(t))
	if err != nil {
		return nil, fmt.Errorf("encode tags: %w", err)
	}
	return string(b), nil
}

func (t *TagList) Scan(src any) error {
	var raw []byte
	switch v := src.(type) {
	case nil:
		*t = TagList{}
		return nil
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return fmt.Errorf("scan tags: unsupported type %T", src)
	}

	var tags []string
	if err := json.Unmarshal(raw, &tags); err != nil {
		return fmt.Errorf("scan tags: %w", err)
	}
	if tags == nil {
		tags = []string{}
	}
	*t = tags
	return nil
}
