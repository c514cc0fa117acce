// AngelaMos | 2026
// engine.go

package lifecycle

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/carterperez-dev/doubtspace/internal/domain"
)

// Source is the slice of the remote gateway the engine reads from.
type Source interface {
	GetDoubt(ctx context.Context, id string) (*domain.Doubt, error)
	ListAnswers(ctx context.Context, doubtID string) ([]domain.Answer, error)
	ListComments(ctx context.Context, doubtID string) ([]domain.Comment, error)
	ResolveDoubt(ctx context.Context, id string) (*domain.ResolveResult, error)
}

// View is a freshly fetched doubt together with its children. Doubt.Status
// and Doubt.AnswerCount carry the engine's derived values.
type View struct {
	Doubt    domain.Doubt
	Answers  []domain.Answer
	Comments []domain.Comment
}

// Engine re-derives doubt status from authoritative fetches and remembers
// the last status per doubt so a stale response cannot move it backwards.
type Engine struct {
	source Source
	logger *slog.Logger

	mu     sync.RWMutex
	status map[string]domain.DoubtStatus
}

func NewEngine(source Source, logger *slog.Logger) *Engine {
	if logger == nil {
		logger = slog.Default()
	}
	return &Engine{
		source: source,
		logger: logger,
		status: make(map[string]domain.DoubtStatus),
	}
}

// Status returns the last status recorded for a doubt.
func (e *Engine) Status(doubtID string) (domain.DoubtStatus, bool) {
	e.mu.RLock()
	defer e.mu.RUnlock()
	s, ok := e.status[doubtID]
	return s, ok
}

// Forget drops the recorded status, e.g. after the doubt was deleted.
func (e *Engine) Forget(doubtID string) {
	e.mu.Lock()
	delete(e.status, doubtID)
	e.mu.Unlock()
}

// Refresh fetches the doubt, its answers and comments and records the
// derived status.
func (e *Engine) Refresh(ctx context.Context, doubtID string) (*View, error) {
	doubt, err := e.source.GetDoubt(ctx, doubtID)
	if err != nil {
		return nil, fmt.Errorf("fetch doubt: %w", err)
	}

	answers, err := e.source.ListAnswers(ctx, doubtID)
	if err != nil {
		return nil, fmt.Errorf("fetch answers: %w", err)
	}

	comments, err := e.source.ListComments(ctx, doubtID)
	if err != nil {
		return nil, fmt.Errorf("fetch comments: %w", err)
	}

	view := &View{
		Doubt:    *doubt,
		Answers:  answers,
		Comments: comments,
	}
	view.Doubt.AnswerCount = len(answers)
	view.Doubt.CommentCount = len(comments)
	view.Doubt.Status = e.record(doubtID, doubt.Status, len(answers))

	return view, nil
}

// Resolve marks an answered doubt resolved. It refreshes first so the
// decision is made on the server's view; a doubt that is already resolved
// is returned unchanged without a write.
func (e *Engine) Resolve(ctx context.Context, doubtID string) (domain.DoubtStatus, error) {
	view, err := e.Refresh(ctx, doubtID)
	if err != nil {
		return "", err
	}

	current := view.Doubt.Status
	_, changed, err := Resolve(current)
	if err != nil {
		return current, err
	}
	if !changed {
		return current, nil
	}

	if _, err := e.source.ResolveDoubt(ctx, doubtID); err != nil {
		return current, fmt.Errorf("resolve doubt: %w", err)
	}

	view, err = e.Refresh(ctx, doubtID)
	if err != nil {
		return current, err
	}

	return view.Doubt.Status, nil
}

func (e *Engine) record(
	doubtID string,
	reported domain.DoubtStatus,
	answerCount int,
) domain.DoubtStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	known, seen := e.status[doubtID]
	if !seen {
		known = domain.StatusPending
	}

	if reported.Rank() < 0 {
		e.logger.Warn("doubt reported unknown status",
			"doubt_id", doubtID,
			"status", reported,
		)
		reported = domain.StatusPending
	}

	next := Derive(Max(known, reported), answerCount)

	if reported.Rank() < known.Rank() {
		e.logger.Debug("ignoring stale doubt status",
			"doubt_id", doubtID,
			"reported", reported,
			"known", known,
		)
	}
	if seen && next != known {
		e.logger.Debug("doubt status advanced",
			"doubt_id", doubtID,
			"from", known,
			"to", next,
		)
	}

	e.status[doubtID] = next
	return next
}
