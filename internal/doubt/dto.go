// AngelaMos | 2026
// dto.go

package doubt

import (
	"strings"

	"github.com/carterperez-dev/doubtspace/internal/domain"
)

type CreateDoubtRequest struct {
	Title       string   `json:"title"       validate:"required,max=200"`
	Description string   `json:"description" validate:"required,max=10000"`
	Tags        []string `json:"tags"        validate:"required,min=1,max=5,dive,required,max=32"`
}

// Normalize trims text fields and applies the shared tag rules. It runs
// before validation so "  " counts as missing.
func (r *CreateDoubtRequest) Normalize() {
	r.Title = strings.TrimSpace(r.Title)
	r.Description = strings.TrimSpace(r.Description)
	r.Tags = domain.NormalizeTags(r.Tags)
}

// UpdateDoubtRequest is a partial update. Absent fields are left alone.
type UpdateDoubtRequest struct {
	Title       *string  `json:"title,omitempty"       validate:"omitempty,min=1,max=200"`
	Description *string  `json:"description,omitempty" validate:"omitempty,min=1,max=10000"`
	Tags        []string `json:"tags,omitempty"        validate:"omitempty,min=1,max=5,dive,required,max=32"`
}

func (r *UpdateDoubtRequest) Normalize() {
	if r.Title != nil {
		t := strings.TrimSpace(*r.Title)
		r.Title = &t
	}
	if r.Description != nil {
		d := strings.TrimSpace(*r.Description)
		r.Description = &d
	}
	if len(r.Tags) > 0 {
		r.Tags = domain.NormalizeTags(r.Tags)
	} else {
		r.Tags = nil
	}
}

func (r *UpdateDoubtRequest) Empty() bool {
	return r.Title == nil && r.Description == nil && r.Tags == nil
}

func ToResponse(d *Doubt) domain.Doubt {
	tags := []string(d.Tags)
	if tags == nil {
		tags = []string{}
	}
	return domain.Doubt{
		ID:           d.ID,
		AuthorID:     d.AuthorID,
		AuthorName:   d.AuthorName,
		Title:        d.Title,
		Description:  d.Description,
		Tags:         tags,
		Status:       d.Status,
		AnswerCount:  d.AnswerCount,
		CommentCount: d.CommentCount,
		CreatedAt:    d.CreatedAt,
		UpdatedAt:    d.UpdatedAt,
	}
}

func ToResponseList(doubts []Doubt) []domain.Doubt {
	out := make([]domain.Doubt, len(doubts))
	for i := range doubts {
		out[i] = ToResponse(&doubts[i])
	}
	return out
}
