// AngelaMos | 2026
// vote_test.go

package vote

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/doubtspace/internal/core"
	"github.com/carterperez-dev/doubtspace/internal/domain"
	"github.com/carterperez-dev/doubtspace/internal/middleware"
)

const (
	answerID        = "2a7e5c91-3d4b-4f6a-9b8c-7d6e5f4a3b21"
	missingAnswerID = "8b9c0d1e-2f3a-4b5c-8d6e-7f8091a2b3c4"
)

type fakeRepo struct {
	mu      sync.Mutex
	answers map[string]bool
	votes   map[string]*Vote
}

func newFakeRepo(answerIDs ...string) *fakeRepo {
	f := &fakeRepo{answers: make(map[string]bool), votes: make(map[string]*Vote)}
	for _, id := range answerIDs {
		f.answers[id] = true
	}
	return f
}

func (f *fakeRepo) countLocked(answerID string) int {
	n := 0
	for _, v := range f.votes {
		if v.AnswerID == answerID {
			n++
		}
	}
	return n
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Vote, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	v, ok := f.votes[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *v
	return &cp, nil
}

func (f *fakeRepo) Create(_ context.Context, v *Vote) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if !f.answers[v.AnswerID] {
		return 0, core.ErrNotFound
	}
	for _, existing := range f.votes {
		if existing.AnswerID == v.AnswerID && existing.UserID == v.UserID {
			return 0, core.ErrDuplicateKey
		}
	}
	cp := *v
	f.votes[v.ID] = &cp
	return f.countLocked(v.AnswerID), nil
}

func (f *fakeRepo) Delete(_ context.Context, v *Vote) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if _, ok := f.votes[v.ID]; !ok {
		return 0, core.ErrNotFound
	}
	delete(f.votes, v.ID)
	return f.countLocked(v.AnswerID), nil
}

func newRouter(svc *Service) http.Handler {
	auth := func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			id := r.Header.Get("X-Test-User")
			if id == "" {
				core.Unauthorized(w, "")
				return
			}
			ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{
				UserID: id,
				Role:   domain.Role(r.Header.Get("X-Test-Role")),
			})
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}

	r := chi.NewRouter()
	NewHandler(svc).RegisterRoutes(r, auth)
	return r
}

func call(t *testing.T, h http.Handler, method, path, userID string, body string) (int, domain.UpvoteResult, string) {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
		req.Header.Set("X-Test-Role", string(domain.RoleJunior))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)

	var resp struct {
		Data domain.UpvoteResult `json:"data"`
		Code string              `json:"code"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec.Code, resp.Data, resp.Code
}

func TestAddCountsAndRejectsDuplicates(t *testing.T) {
	svc := NewService(newFakeRepo(answerID))
	ctx := context.Background()

	first, err := svc.Add(ctx, "u-1", answerID)
	require.NoError(t, err)
	require.NotNil(t, first.Upvote)
	assert.Equal(t, "u-1", first.Upvote.UserID)
	assert.Equal(t, 1, first.UpvoteCount)

	second, err := svc.Add(ctx, "u-2", answerID)
	require.NoError(t, err)
	assert.Equal(t, 2, second.UpvoteCount)

	_, err = svc.Add(ctx, "u-1", answerID)
	require.ErrorIs(t, err, core.ErrDuplicateKey)

	_, err = svc.Add(ctx, "u-1", missingAnswerID)
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestRemoveOwnOnly(t *testing.T) {
	svc := NewService(newFakeRepo(answerID))
	ctx := context.Background()

	added, err := svc.Add(ctx, "u-1", answerID)
	require.NoError(t, err)

	_, err = svc.Remove(ctx, "u-2", added.Upvote.ID)
	require.ErrorIs(t, err, core.ErrForbidden)

	removed, err := svc.Remove(ctx, "u-1", added.Upvote.ID)
	require.NoError(t, err)
	assert.Nil(t, removed.Upvote)
	assert.Equal(t, 0, removed.UpvoteCount)

	_, err = svc.Remove(ctx, "u-1", added.Upvote.ID)
	require.ErrorIs(t, err, core.ErrNotFound)
}

func TestHandlerFlow(t *testing.T) {
	h := newRouter(NewService(newFakeRepo(answerID)))

	status, _, code := call(t, h, http.MethodPost, "/upvotes", "", `{"answerId":"2a7e5c91-3d4b-4f6a-9b8c-7d6e5f4a3b21"}`)
	assert.Equal(t, http.StatusUnauthorized, status)
	assert.Equal(t, "UNAUTHORIZED", code)

	status, _, code = call(t, h, http.MethodPost, "/upvotes", "u-1", `{}`)
	assert.Equal(t, http.StatusBadRequest, status)
	assert.Equal(t, "VALIDATION_ERROR", code)

	status, created, _ := call(t, h, http.MethodPost, "/upvotes", "u-1", `{"answerId":"2a7e5c91-3d4b-4f6a-9b8c-7d6e5f4a3b21"}`)
	require.Equal(t, http.StatusCreated, status)
	require.NotNil(t, created.Upvote)
	assert.Equal(t, 1, created.UpvoteCount)

	status, _, code = call(t, h, http.MethodPost, "/upvotes", "u-1", `{"answerId":"2a7e5c91-3d4b-4f6a-9b8c-7d6e5f4a3b21"}`)
	assert.Equal(t, http.StatusConflict, status)
	assert.Equal(t, "DUPLICATE", code)

	status, _, code = call(t, h, http.MethodPost, "/upvotes", "u-1", `{"answerId":"8b9c0d1e-2f3a-4b5c-8d6e-7f8091a2b3c4"}`)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "NOT_FOUND", code)

	status, _, code = call(t, h, http.MethodDelete, "/upvotes/"+created.Upvote.ID, "u-2", "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "FORBIDDEN", code)

	status, removed, _ := call(t, h, http.MethodDelete, "/upvotes/"+created.Upvote.ID, "u-1", "")
	require.Equal(t, http.StatusOK, status)
	assert.Nil(t, removed.Upvote)
	assert.Equal(t, 0, removed.UpvoteCount)

	status, _, code = call(t, h, http.MethodPost, "/upvotes", "u-1", `{"answerId":"a-1"}`)
	assert.Equal(t, http.StatusNotFound, status, "malformed answer id")
	assert.Equal(t, "NOT_FOUND", code)

	status, _, code = call(t, h, http.MethodDelete, "/upvotes/abc", "u-1", "")
	assert.Equal(t, http.StatusNotFound, status, "malformed upvote id")
	assert.Equal(t, "NOT_FOUND", code)
}
