// AngelaMos | 2026
// pipeline.go

// Package submission validates user-authored content, checks the cached
// role, dispatches one gateway call and reconciles by re-fetching the
// parent doubt.
package submission

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/go-playground/validator/v10"

	"github.com/carterperez-dev/doubtspace/internal/access"
	"github.com/carterperez-dev/doubtspace/internal/domain"
	"github.com/carterperez-dev/doubtspace/internal/gateway"
	"github.com/carterperez-dev/doubtspace/internal/lifecycle"
)

const spaceFeedPageSize = 20

type Gateway interface {
	CreateAnswer(ctx context.Context, doubtID, content string) (*domain.Answer, error)
	CreateComment(ctx context.Context, doubtID, content string) (*domain.Comment, error)
	CreateDoubt(ctx context.Context, in domain.DoubtInput) (*domain.Doubt, error)
	CreateSpacePost(ctx context.Context, content string) (*domain.SpacePost, error)
	ListSpacePosts(ctx context.Context, page, limit int) (*domain.Page[domain.SpacePost], error)
}

type Refresher interface {
	Refresh(ctx context.Context, doubtID string) (*lifecycle.View, error)
}

// Credentials yields the cached role and token together.
type Credentials interface {
	Capture() (domain.Role, string)
}

type Result struct {
	// View is the re-fetched parent doubt for answer, comment and doubt
	// forms.
	View *lifecycle.View
	// Feed is the re-fetched first page of the space feed.
	Feed *domain.Page[domain.SpacePost]
}

type Pipeline struct {
	gw        Gateway
	engine    Refresher
	creds     Credentials
	validator *validator.Validate
	logger    *slog.Logger
}

func NewPipeline(gw Gateway, engine Refresher, creds Credentials, logger *slog.Logger) *Pipeline {
	if logger == nil {
		logger = slog.Default()
	}
	return &Pipeline{
		gw:        gw,
		engine:    engine,
		creds:     creds,
		validator: validator.New(validator.WithRequiredStructEnabled()),
		logger:    logger,
	}
}

// Submit runs one submission of f. Validation and authorization failures
// are returned before any network call. Remote failures are returned as
// the gateway reported them and leave the form content in place.
func (p *Pipeline) Submit(ctx context.Context, f *Form) (*Result, error) {
	if !f.inFlight.CompareAndSwap(false, true) {
		return nil, ErrInFlight
	}
	defer f.inFlight.Store(false)

	role, token := p.creds.Capture()

	var (
		content string
		draft   domain.DoubtInput
		err     error
	)
	if f.kind == KindDoubt {
		draft, err = validateDoubt(p.validator, f.Draft())
	} else {
		content, err = ValidateContent(f.kind, "content", f.Content())
	}
	if err != nil {
		return nil, err
	}

	if err := access.Check(role, access.ActionCreate, f.kind.resource()); err != nil {
		return nil, err
	}

	ctx = gateway.WithCredential(ctx, token)

	doubtID, err := p.dispatch(ctx, f, content, draft)
	if err != nil {
		p.logger.Debug("submission failed",
			"kind", f.kind.String(),
			"doubt_id", f.doubtID,
			"error", err,
		)
		return nil, err
	}

	f.clear()

	res, err := p.reconcile(ctx, f.kind, doubtID)
	if err != nil {
		p.logger.Warn("submission reconcile failed",
			"kind", f.kind.String(),
			"doubt_id", doubtID,
			"error", err,
		)
		return nil, &ReconcileError{DoubtID: doubtID, Err: err}
	}

	p.logger.Info("submission accepted", "kind", f.kind.String(), "doubt_id", doubtID)
	return res, nil
}

func (p *Pipeline) dispatch(
	ctx context.Context,
	f *Form,
	content string,
	draft domain.DoubtInput,
) (string, error) {
	switch f.kind {
	case KindAnswer:
		if _, err := p.gw.CreateAnswer(ctx, f.doubtID, content); err != nil {
			return "", err
		}
		return f.doubtID, nil

	case KindComment:
		if _, err := p.gw.CreateComment(ctx, f.doubtID, content); err != nil {
			return "", err
		}
		return f.doubtID, nil

	case KindDoubt:
		created, err := p.gw.CreateDoubt(ctx, draft)
		if err != nil {
			return "", err
		}
		return created.ID, nil

	case KindSpacePost:
		if _, err := p.gw.CreateSpacePost(ctx, content); err != nil {
			return "", err
		}
		return "", nil

	default:
		return "", fmt.Errorf("submit %s: %w", f.kind, ErrInvalidField)
	}
}

func (p *Pipeline) reconcile(ctx context.Context, kind Kind, doubtID string) (*Result, error) {
	if kind == KindSpacePost {
		feed, err := p.gw.ListSpacePosts(ctx, 1, spaceFeedPageSize)
		if err != nil {
			return nil, err
		}
		return &Result{Feed: feed}, nil
	}

	view, err := p.engine.Refresh(ctx, doubtID)
	if err != nil {
		return nil, err
	}
	return &Result{View: view}, nil
}

// IsLocal reports whether err was raised before any network call.
func IsLocal(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve) || errors.Is(err, access.ErrForbidden) || errors.Is(err, ErrInFlight)
}
