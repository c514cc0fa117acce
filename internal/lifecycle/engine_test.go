// AngelaMos | 2026
// engine_test.go

package lifecycle

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/doubtspace/internal/domain"
)

type fakeSource struct {
	mu       sync.Mutex
	doubt    domain.Doubt
	answers  []domain.Answer
	resolves int
	fail     error
}

func (f *fakeSource) setDoubt(status domain.DoubtStatus, answers int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.doubt.Status = status
	f.answers = make([]domain.Answer, answers)
	for i := range f.answers {
		f.answers[i] = domain.Answer{ID: "a", DoubtID: f.doubt.ID}
	}
}

func (f *fakeSource) GetDoubt(_ context.Context, _ string) (*domain.Doubt, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.fail != nil {
		return nil, f.fail
	}
	d := f.doubt
	return &d, nil
}

func (f *fakeSource) ListAnswers(_ context.Context, _ string) ([]domain.Answer, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Answer(nil), f.answers...), nil
}

func (f *fakeSource) ListComments(_ context.Context, _ string) ([]domain.Comment, error) {
	return nil, nil
}

func (f *fakeSource) ResolveDoubt(_ context.Context, _ string) (*domain.ResolveResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.resolves++
	f.doubt.Status = domain.StatusResolved
	return &domain.ResolveResult{Doubt: f.doubt, Changed: true}, nil
}

func TestRefreshDerivesFromAnswerList(t *testing.T) {
	src := &fakeSource{doubt: domain.Doubt{ID: "d1", Status: domain.StatusPending, AnswerCount: 9}}
	src.setDoubt(domain.StatusPending, 1)
	e := NewEngine(src, nil)

	view, err := e.Refresh(t.Context(), "d1")
	require.NoError(t, err)

	assert.Equal(t, domain.StatusAnswered, view.Doubt.Status)
	assert.Equal(t, 1, view.Doubt.AnswerCount)
	assert.Len(t, view.Answers, 1)
}

func TestRefreshErrorLeavesStatus(t *testing.T) {
	src := &fakeSource{doubt: domain.Doubt{ID: "d1"}}
	src.setDoubt(domain.StatusAnswered, 1)
	e := NewEngine(src, nil)

	_, err := e.Refresh(t.Context(), "d1")
	require.NoError(t, err)

	src.fail = errors.New("boom")
	_, err = e.Refresh(t.Context(), "d1")
	require.Error(t, err)

	status, ok := e.Status("d1")
	require.True(t, ok)
	assert.Equal(t, domain.StatusAnswered, status)
}

func TestResolvePendingIsIllegal(t *testing.T) {
	src := &fakeSource{doubt: domain.Doubt{ID: "d1"}}
	src.setDoubt(domain.StatusPending, 0)
	e := NewEngine(src, nil)

	status, err := e.Resolve(t.Context(), "d1")
	require.ErrorIs(t, err, ErrIllegalTransition)
	assert.Equal(t, domain.StatusPending, status)
	assert.Zero(t, src.resolves)
}

func TestForget(t *testing.T) {
	src := &fakeSource{doubt: domain.Doubt{ID: "d1"}}
	src.setDoubt(domain.StatusAnswered, 1)
	e := NewEngine(src, nil)

	_, err := e.Refresh(t.Context(), "d1")
	require.NoError(t, err)

	e.Forget("d1")
	_, ok := e.Status("d1")
	assert.False(t, ok)
}
