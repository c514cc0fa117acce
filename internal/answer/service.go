// AngelaMos | 2026
// service.go

package answer

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/carterperez-dev/doubtspace/internal/core"
	"github.com/carterperez-dev/doubtspace/internal/events"
)

type Service struct {
	repo      Repository
	publisher events.Publisher
	logger    *slog.Logger
}

func NewService(repo Repository, publisher events.Publisher, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, publisher: publisher, logger: logger}
}

func (s *Service) ListByDoubt(ctx context.Context, doubtID, viewerID string) ([]Answer, error) {
	return s.repo.ListByDoubt(ctx, doubtID, viewerID)
}

// Create posts a mentor's answer. The first answer on a pending doubt moves
// it to answered.
func (s *Service) Create(
	ctx context.Context,
	mentorID, doubtID string,
	req AnswerRequest,
) (*Answer, error) {
	a := &Answer{
		ID:       uuid.New().String(),
		DoubtID:  doubtID,
		MentorID: mentorID,
		Content:  req.Content,
	}

	t, err := s.repo.CreateAndAdvance(ctx, a)
	if err != nil {
		return nil, err
	}

	if t.Changed() && s.publisher != nil {
		ev := events.StatusChanged{DoubtID: t.DoubtID, From: t.From, To: t.To, ActorID: mentorID}
		if err := s.publisher.PublishStatusChanged(ctx, ev); err != nil {
			s.logger.WarnContext(ctx, "publish status change failed",
				"doubt_id", t.DoubtID,
				"error", err,
			)
		}
	}

	return s.repo.GetByID(ctx, a.ID, mentorID)
}

func (s *Service) Update(
	ctx context.Context,
	actorID, id string,
	req AnswerRequest,
) (*Answer, error) {
	a, err := s.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	a.Content = req.Content
	if err := s.repo.UpdateContent(ctx, a); err != nil {
		return nil, err
	}
	return a, nil
}

// Delete removes the caller's answer. The doubt keeps its status; the
// lifecycle never moves backwards.
func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	if _, err := s.owned(ctx, actorID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

func (s *Service) owned(ctx context.Context, actorID, id string) (*Answer, error) {
	a, err := s.repo.GetByID(ctx, id, actorID)
	if err != nil {
		return nil, err
	}
	if !a.OwnedBy(actorID) {
		return nil, fmt.Errorf("answer %s: %w", id, core.ErrForbidden)
	}
	return a, nil
}
