// AngelaMos | 2026
// toggle.go

// Package upvote keeps per-answer vote state for the signed-in user and
// flips it with an optimistic update that is either confirmed by the
// server count or rolled back exactly.
package upvote

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/carterperez-dev/doubtspace/internal/access"
	"github.com/carterperez-dev/doubtspace/internal/domain"
	"github.com/carterperez-dev/doubtspace/internal/gateway"
	"github.com/carterperez-dev/doubtspace/internal/session"
)

var (
	ErrInFlight     = errors.New("upvote toggle already in flight")
	ErrUserMismatch = errors.New("user does not match session")
)

type State struct {
	Upvoted  bool
	Count    int
	UpvoteID string
}

type Gateway interface {
	CreateUpvote(ctx context.Context, answerID string) (*domain.UpvoteResult, error)
	DeleteUpvote(ctx context.Context, upvoteID string) (*domain.UpvoteResult, error)
}

type Session interface {
	Current() (session.Identity, bool)
	Capture() (domain.Role, string)
}

type entry struct {
	state    State
	inFlight bool
}

type Toggler struct {
	gw     Gateway
	sess   Session
	logger *slog.Logger

	mu      sync.Mutex
	answers map[string]*entry
}

func NewToggler(gw Gateway, sess Session, logger *slog.Logger) *Toggler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Toggler{
		gw:      gw,
		sess:    sess,
		logger:  logger,
		answers: make(map[string]*entry),
	}
}

// Seed loads state from a freshly fetched answer. It is ignored while a
// toggle for that answer is in flight.
func (t *Toggler) Seed(a domain.Answer) {
	t.mu.Lock()
	defer t.mu.Unlock()

	e := t.entryLocked(a.ID)
	if e.inFlight {
		return
	}
	e.state = State{
		Upvoted:  a.ViewerUpvoteID != "",
		Count:    a.UpvoteCount,
		UpvoteID: a.ViewerUpvoteID,
	}
}

// State returns the displayed state, including any optimistic change.
func (t *Toggler) State(answerID string) State {
	t.mu.Lock()
	defer t.mu.Unlock()
	if e, ok := t.answers[answerID]; ok {
		return e.state
	}
	return State{}
}

func (t *Toggler) Toggle(ctx context.Context, answerID, userID string) (State, error) {
	ident, ok := t.sess.Current()
	if !ok {
		return State{}, fmt.Errorf("toggle upvote: not authenticated: %w", access.ErrForbidden)
	}
	if ident.ID != userID {
		return State{}, fmt.Errorf("toggle upvote as %s: %w", userID, ErrUserMismatch)
	}

	role, token := t.sess.Capture()

	t.mu.Lock()
	e := t.entryLocked(answerID)
	if e.inFlight {
		t.mu.Unlock()
		return State{}, ErrInFlight
	}

	prev := e.state
	action := access.ActionCreate
	if prev.Upvoted {
		action = access.ActionDelete
	}
	if err := access.Check(role, action, access.ResourceUpvote); err != nil {
		t.mu.Unlock()
		return prev, err
	}

	e.inFlight = true
	e.state = optimistic(prev)
	t.mu.Unlock()

	ctx = gateway.WithCredential(ctx, token)

	var (
		res *domain.UpvoteResult
		err error
	)
	if prev.Upvoted {
		res, err = t.gw.DeleteUpvote(ctx, prev.UpvoteID)
	} else {
		res, err = t.gw.CreateUpvote(ctx, answerID)
	}

	t.mu.Lock()
	defer t.mu.Unlock()
	e.inFlight = false

	if err != nil {
		e.state = prev
		t.logger.Debug("upvote toggle rolled back", "answer_id", answerID, "error", err)
		return prev, err
	}

	next := State{Upvoted: !prev.Upvoted, Count: res.UpvoteCount}
	if res.Upvote != nil {
		next.UpvoteID = res.Upvote.ID
	}
	e.state = next
	return next, nil
}

func optimistic(prev State) State {
	if prev.Upvoted {
		return State{Upvoted: false, Count: max(prev.Count-1, 0)}
	}
	return State{Upvoted: true, Count: prev.Count + 1}
}

func (t *Toggler) entryLocked(answerID string) *entry {
	e, ok := t.answers[answerID]
	if !ok {
		e = &entry{}
		t.answers[answerID] = e
	}
	return e
}
