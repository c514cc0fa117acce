// AngelaMos | 2026
// vote.go

package vote

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/carterperez-dev/doubtspace/internal/core"
	"github.com/carterperez-dev/doubtspace/internal/domain"
)

type Vote struct {
	ID        string    `db:"id"`
	AnswerID  string    `db:"answer_id"`
	UserID    string    `db:"user_id"`
	CreatedAt time.Time `db:"created_at"`
}

func (v *Vote) ToResponse() *domain.Upvote {
	return &domain.Upvote{ID: v.ID, AnswerID: v.AnswerID, UserID: v.UserID}
}

type CreateVoteRequest struct {
	AnswerID string `json:"answerId" validate:"required"`
}

type Repository interface {
	GetByID(ctx context.Context, id string) (*Vote, error)
	// Create inserts v and returns the answer's count afterwards.
	Create(ctx context.Context, v *Vote) (int, error)
	// Delete removes the vote and returns the answer's count afterwards.
	Delete(ctx context.Context, v *Vote) (int, error)
}

type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Add records userID's upvote. A second upvote on the same answer fails with
// core.ErrDuplicateKey and leaves the count alone.
func (s *Service) Add(ctx context.Context, userID, answerID string) (domain.UpvoteResult, error) {
	v := &Vote{
		ID:       uuid.New().String(),
		AnswerID: strings.TrimSpace(answerID),
		UserID:   userID,
	}

	count, err := s.repo.Create(ctx, v)
	if err != nil {
		return domain.UpvoteResult{}, err
	}

	return domain.UpvoteResult{Upvote: v.ToResponse(), UpvoteCount: count}, nil
}

func (s *Service) Remove(ctx context.Context, userID, id string) (domain.UpvoteResult, error) {
	v, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return domain.UpvoteResult{}, err
	}
	if userID == "" || v.UserID != userID {
		return domain.UpvoteResult{}, fmt.Errorf("upvote %s: %w", id, core.ErrForbidden)
	}

	count, err := s.repo.Delete(ctx, v)
	if err != nil {
		return domain.UpvoteResult{}, err
	}
	return domain.UpvoteResult{UpvoteCount: count}, nil
}

func isDuplicate(err error) bool {
	return errors.Is(err, core.ErrDuplicateKey)
}
