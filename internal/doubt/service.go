// AngelaMos | 2026
// service.go

package doubt

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"

	"github.com/carterperez-dev/doubtspace/internal/core"
	"github.com/carterperez-dev/doubtspace/internal/domain"
	"github.com/carterperez-dev/doubtspace/internal/events"
	"github.com/carterperez-dev/doubtspace/internal/lifecycle"
)

// resolveAttempts bounds the re-read loop when another writer moves the
// status between our read and our conditional update.
const resolveAttempts = 3

// Actor is the authenticated caller as the service sees it.
type Actor struct {
	ID   string
	Role domain.Role
}

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

func (s *Service) List(ctx context.Context, f ListFilter) ([]Doubt, int, error) {
	if f.Status != "" && f.Status.Rank() < 0 {
		return nil, 0, fmt.Errorf("list doubts: status %q: %w", f.Status, core.ErrInvalidInput)
	}
	return s.repo.List(ctx, f)
}

func (s *Service) Get(ctx context.Context, id string) (*Doubt, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Create(ctx context.Context, authorID string, req CreateDoubtRequest) (*Doubt, error) {
	d := &Doubt{
		ID:          uuid.New().String(),
		AuthorID:    authorID,
		Title:       req.Title,
		Description: req.Description,
		Tags:        TagList(req.Tags),
		Status:      domain.StatusPending,
	}

	if err := s.repo.Create(ctx, d); err != nil {
		return nil, err
	}

	return s.repo.GetByID(ctx, d.ID)
}

func (s *Service) Update(
	ctx context.Context,
	actorID, id string,
	req UpdateDoubtRequest,
) (*Doubt, error) {
	d, err := s.owned(ctx, actorID, id)
	if err != nil {
		return nil, err
	}

	if req.Title != nil {
		d.Title = *req.Title
	}
	if req.Description != nil {
		d.Description = *req.Description
	}
	if req.Tags != nil {
		d.Tags = TagList(req.Tags)
	}

	if err := s.repo.Update(ctx, d); err != nil {
		return nil, err
	}

	return d, nil
}

func (s *Service) Delete(ctx context.Context, actorID, id string) error {
	if _, err := s.owned(ctx, actorID, id); err != nil {
		return err
	}
	return s.repo.Delete(ctx, id)
}

// Resolve marks an answered doubt resolved. The author (a junior) or any
// mentor may do it. Resolving twice is a no-op reported as changed=false.
func (s *Service) Resolve(ctx context.Context, actor Actor, id string) (*Doubt, bool, error) {
	for range resolveAttempts {
		d, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, false, err
		}

		if !canResolve(actor, d) {
			return nil, false, fmt.Errorf("resolve doubt: %w", core.ErrForbidden)
		}

		next, changed, err := lifecycle.Resolve(d.Status)
		if err != nil {
			return nil, false, err
		}
		if !changed {
			return d, false, nil
		}

		err = s.repo.TransitionStatus(ctx, id, d.Status, next)
		if errors.Is(err, core.ErrConflict) {
			continue
		}
		if err != nil {
			return nil, false, err
		}

		s.notify(ctx, events.StatusChanged{DoubtID: id, From: d.Status, To: next, ActorID: actor.ID})

		updated, err := s.repo.GetByID(ctx, id)
		if err != nil {
			return nil, false, err
		}
		return updated, true, nil
	}

	return nil, false, fmt.Errorf("resolve doubt %s: status kept changing: %w", id, core.ErrConflict)
}

func (s *Service) CountByStatus(ctx context.Context) (map[domain.DoubtStatus]int, error) {
	return s.repo.CountByStatus(ctx)
}

func canResolve(actor Actor, d *Doubt) bool {
	switch actor.Role {
	case domain.RoleMentor:
		return true
	case domain.RoleJunior:
		return d.OwnedBy(actor.ID)
	default:
		return false
	}
}

func (s *Service) owned(ctx context.Context, actorID, id string) (*Doubt, error) {
	d, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !d.OwnedBy(actorID) {
		return nil, fmt.Errorf("doubt %s: %w", id, core.ErrForbidden)
	}
	return d, nil
}

// notify is best effort; a lost notification never fails the write.
func (s *Service) notify(ctx context.Context, ev events.StatusChanged) {
	if s.publisher == nil {
		return
	}
	if err := s.publisher.PublishStatusChanged(ctx, ev); err != nil {
		s.logger.WarnContext(ctx, "publish status change failed",
			"doubt_id", ev.DoubtID,
			"error", err,
		)
	}
}
