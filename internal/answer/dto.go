// AngelaMos | 2026
// dto.go

package answer

import (
	"strings"

	"github.com/carterperez-dev/doubtspace/internal/domain"
)

// AnswerRequest is the body of both create and update.
type AnswerRequest struct {
	Content string `json:"content" validate:"required,min=20,max=10000"`
}

func (r *AnswerRequest) Normalize() {
	r.Content = strings.TrimSpace(r.Content)
}

func ToResponse(a *Answer) domain.Answer {
	return domain.Answer{
		ID:             a.ID,
		DoubtID:        a.DoubtID,
		MentorID:       a.MentorID,
		MentorName:     a.MentorName,
		Content:        a.Content,
		UpvoteCount:    a.UpvoteCount,
		ViewerUpvoteID: a.ViewerUpvoteID,
		CreatedAt:      a.CreatedAt,
	}
}

func ToResponseList(answers []Answer) []domain.Answer {
	out := make([]domain.Answer, len(answers))
	for i := range answers {
		out[i] = ToResponse(&answers[i])
	}
	return out
}
