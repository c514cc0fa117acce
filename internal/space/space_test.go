// AngelaMos | 2026
// space_test.go

package space

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/doubtspace/internal/core"
	"github.com/carterperez-dev/doubtspace/internal/domain"
	"github.com/carterperez-dev/doubtspace/internal/middleware"
)

type fakeRepo struct {
	mu    sync.Mutex
	posts []Post
	clock time.Time
}

func (f *fakeRepo) List(_ context.Context, page core.PageParams) ([]Post, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	sorted := append([]Post(nil), f.posts...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].CreatedAt.After(sorted[j].CreatedAt) })

	start := min(page.Offset(), len(sorted))
	end := min(start+page.PageSize, len(sorted))
	return sorted[start:end], len(sorted), nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*Post, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for i := range f.posts {
		if f.posts[i].ID == id {
			p := f.posts[i]
			return &p, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepo) Create(_ context.Context, p *Post) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if f.clock.IsZero() {
		f.clock = time.Unix(1_700_000_000, 0)
	}
	f.clock = f.clock.Add(time.Minute)
	p.CreatedAt = f.clock
	p.AuthorName = "name-" + p.AuthorID
	f.posts = append(f.posts, *p)
	return nil
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

func do(h http.Handler, method, path, userID string, role domain.Role, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if userID != "" {
		req.Header.Set("X-Test-User", userID)
		req.Header.Set("X-Test-Role", string(role))
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestCreateJuniorOnly(t *testing.T) {
	h := newRouter(NewService(&fakeRepo{}))

	rec := do(h, http.MethodPost, "/junior-space-posts", "m-1", domain.RoleMentor, `{"content":"hello"}`)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(h, http.MethodPost, "/junior-space-posts", "j-1", domain.RoleJunior, `{"content":"  "}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = do(h, http.MethodPost, "/junior-space-posts", "j-1", domain.RoleJunior, `{"content":" hello "}`)
	require.Equal(t, http.StatusCreated, rec.Code)

	var resp struct {
		Data domain.SpacePost `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "hello", resp.Data.Content)
	assert.Equal(t, "name-j-1", resp.Data.AuthorName)
}

func TestListNewestFirstPaginated(t *testing.T) {
	svc := NewService(&fakeRepo{})
	for i := range 5 {
		_, err := svc.Create(context.Background(), "j-1", fmt.Sprintf("post %d", i))
		require.NoError(t, err)
	}

	rec := do(newRouter(svc), http.MethodGet, "/junior-space-posts?page=2&limit=2", "", "", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.Page[domain.SpacePost] `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 5, resp.Data.TotalItems)
	assert.Equal(t, 3, resp.Data.TotalPages)
	require.Len(t, resp.Data.Items, 2)
	assert.Equal(t, "post 2", resp.Data.Items[0].Content)
	assert.Equal(t, "post 1", resp.Data.Items[1].Content)
}
