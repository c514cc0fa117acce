// AngelaMos | 2026
// service_test.go

package user

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
	mu       sync.Mutex
	users    map[string]*User
	activity map[string]Activity
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:    make(map[string]*User),
		activity: make(map[string]Activity),
	}
}

func (f *fakeRepo) Create(_ context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, existing := range f.users {
		if existing.Email == u.Email {
			return fmt.Errorf("create user: %w", core.ErrDuplicateKey)
		}
	}
	u.CreatedAt = time.Now()
	u.UpdatedAt = u.CreatedAt
	cp := *u
	f.users[u.ID] = &cp
	return nil
}

func (f *fakeRepo) GetByID(_ context.Context, id string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	u, ok := f.users[id]
	if !ok {
		return nil, core.ErrNotFound
	}
	cp := *u
	return &cp, nil
}

func (f *fakeRepo) GetByEmail(_ context.Context, email string) (*User, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	for _, u := range f.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, core.ErrNotFound
}

func (f *fakeRepo) UpdateName(_ context.Context, u *User) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.users[u.ID]
	if !ok {
		return core.ErrNotFound
	}
	stored.Name = u.Name
	return nil
}

func (f *fakeRepo) UpdatePassword(_ context.Context, id, hash string) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	stored, ok := f.users[id]
	if !ok {
		return core.ErrNotFound
	}
	stored.PasswordHash = hash
	return nil
}

func (f *fakeRepo) Activity(_ context.Context, id string) (Activity, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.activity[id], nil
}

func (f *fakeRepo) ListByRole(
	_ context.Context,
	role domain.Role,
	page core.PageParams,
) ([]User, int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	page.Normalize()
	var matched []User
	for _, u := range f.users {
		if u.Role == role {
			matched = append(matched, *u)
		}
	}
	sort.Slice(matched, func(i, j int) bool { return matched[i].Name < matched[j].Name })

	total := len(matched)
	start := min(page.Offset(), total)
	end := min(start+page.PageSize, total)
	return matched[start:end], total, nil
}

func (f *fakeRepo) CountByRole(_ context.Context) (map[domain.Role]int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	counts := make(map[domain.Role]int)
	for _, u := range f.users {
		counts[u.Role]++
	}
	return counts, nil
}

func seed(t *testing.T, svc *Service, name, email string, role domain.Role) string {
	t.Helper()
	info, err := svc.Create(context.Background(), email, "hash", name, role)
	require.NoError(t, err)
	return info.ID
}

func TestCreateNormalizesEmail(t *testing.T) {
	svc := NewService(newFakeRepo())

	info, err := svc.Create(context.Background(), "  Jun@Example.COM ", "hash", " Jun ", domain.RoleJunior)
	require.NoError(t, err)
	assert.Equal(t, "jun@example.com", info.Email)
	assert.Equal(t, "Jun", info.Name)
	assert.NotEmpty(t, info.ID)

	found, err := svc.GetByEmail(context.Background(), "JUN@example.com")
	require.NoError(t, err)
	assert.Equal(t, info.ID, found.ID)
}

func TestCreateDuplicateEmail(t *testing.T) {
	svc := NewService(newFakeRepo())
	seed(t, svc, "Jun", "jun@example.com", domain.RoleJunior)

	_, err := svc.Create(context.Background(), "jun@example.com", "hash", "Other", domain.RoleMentor)
	require.ErrorIs(t, err, core.ErrDuplicateKey)
}

func TestGetProfileIncludesActivity(t *testing.T) {
	repo := newFakeRepo()
	svc := NewService(repo)
	id := seed(t, svc, "Mia", "mia@example.com", domain.RoleMentor)
	repo.activity[id] = Activity{AnswersGiven: 4, UpvotesReceived: 9}

	profile, err := svc.GetProfile(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Mia", profile.Name)
	assert.Equal(t, domain.RoleMentor, profile.Role)
	assert.Equal(t, 4, profile.AnswersGiven)
	assert.Equal(t, 9, profile.UpvotesReceived)
}

func TestUpdateProfileOwnerOnly(t *testing.T) {
	svc := NewService(newFakeRepo())
	owner := seed(t, svc, "Jun", "jun@example.com", domain.RoleJunior)
	other := seed(t, svc, "Kai", "kai@example.com", domain.RoleJunior)

	_, err := svc.UpdateProfile(context.Background(), other, owner, UpdateUserRequest{Name: "Hacked"})
	require.ErrorIs(t, err, core.ErrForbidden)

	_, err = svc.UpdateProfile(context.Background(), "", owner, UpdateUserRequest{Name: "Anon"})
	require.ErrorIs(t, err, core.ErrUnauthorized)

	_, err = svc.UpdateProfile(context.Background(), owner, owner, UpdateUserRequest{Name: "   "})
	require.ErrorIs(t, err, core.ErrInvalidInput)

	profile, err := svc.UpdateProfile(context.Background(), owner, owner, UpdateUserRequest{Name: " Junie "})
	require.NoError(t, err)
	assert.Equal(t, "Junie", profile.Name)
}

func TestListMentorsPaginates(t *testing.T) {
	svc := NewService(newFakeRepo())
	for i := range 5 {
		seed(t, svc, fmt.Sprintf("Mentor %d", i), fmt.Sprintf("m%d@example.com", i), domain.RoleMentor)
	}
	seed(t, svc, "Jun", "jun@example.com", domain.RoleJunior)

	mentors, total, err := svc.ListMentors(context.Background(), core.PageParams{Page: 2, PageSize: 2})
	require.NoError(t, err)
	assert.Equal(t, 5, total)
	require.Len(t, mentors, 2)
	assert.Equal(t, "Mentor 2", mentors[0].Name)
}

func newRouter(svc *Service) http.Handler {
	r := chi.NewRouter()
	// Tests stand in for the token check by injecting claims from a header.
	authenticator := func(next http.Handler) http.Handler {
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
	NewHandler(svc).RegisterRoutes(r, authenticator)
	return r
}

func decode(t *testing.T, rec *httptest.ResponseRecorder) core.Response {
	t.Helper()
	var resp core.Response
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHandlerGetUser(t *testing.T) {
	svc := NewService(newFakeRepo())
	id := seed(t, svc, "Jun", "jun@example.com", domain.RoleJunior)
	router := newRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/"+id, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, decode(t, rec).Success)

	for _, missing := range []string{"missing", "5d0c8e3a-1f2b-4c6d-9e7f-a0b1c2d3e4f5"} {
		rec = httptest.NewRecorder()
		router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/"+missing, nil))
		assert.Equal(t, http.StatusNotFound, rec.Code, missing)
		assert.Equal(t, "NOT_FOUND", decode(t, rec).Code, missing)
	}
}

func TestHandlerUpdateUser(t *testing.T) {
	svc := NewService(newFakeRepo())
	id := seed(t, svc, "Jun", "jun@example.com", domain.RoleJunior)
	other := seed(t, svc, "Kai", "kai@example.com", domain.RoleJunior)
	router := newRouter(svc)

	patch := func(as, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPatch, "/users/"+id, strings.NewReader(body))
		if as != "" {
			req.Header.Set("X-Test-User", as)
			req.Header.Set("X-Test-Role", string(domain.RoleJunior))
		}
		rec := httptest.NewRecorder()
		router.ServeHTTP(rec, req)
		return rec
	}

	assert.Equal(t, http.StatusUnauthorized, patch("", `{"name":"X"}`).Code)
	assert.Equal(t, http.StatusForbidden, patch(other, `{"name":"X"}`).Code)

	rec := patch(id, `{"name":""}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "VALIDATION_ERROR", decode(t, rec).Code)

	assert.Equal(t, http.StatusBadRequest, patch(id, `{`).Code)

	req := httptest.NewRequest(http.MethodPatch, "/users/abc", strings.NewReader(`{"name":"X"}`))
	req.Header.Set("X-Test-User", id)
	req.Header.Set("X-Test-Role", string(domain.RoleJunior))
	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = patch(id, `{"name":"Junie"}`)
	require.Equal(t, http.StatusOK, rec.Code)
	profile, err := svc.GetProfile(context.Background(), id)
	require.NoError(t, err)
	assert.Equal(t, "Junie", profile.Name)
}

func TestHandlerListMentors(t *testing.T) {
	svc := NewService(newFakeRepo())
	seed(t, svc, "Mia", "mia@example.com", domain.RoleMentor)
	seed(t, svc, "Jun", "jun@example.com", domain.RoleJunior)
	router := newRouter(svc)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/users/mentors/approved?page=1&limit=10", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data domain.Page[domain.User] `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Data.TotalItems)
	require.Len(t, resp.Data.Items, 1)
	assert.Equal(t, "Mia", resp.Data.Items[0].Name)
	assert.Equal(t, 10, resp.Data.PageSize)
}
