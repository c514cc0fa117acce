// AngelaMos | 2026
// handler_test.go

package admin

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/doubtspace/internal/core"
	"github.com/carterperez-dev/doubtspace/internal/domain"
	"github.com/carterperez-dev/doubtspace/internal/middleware"
)

type counts struct {
	doubts map[domain.DoubtStatus]int
	users  map[domain.Role]int
	err    error
}

func (c counts) CountByStatus(context.Context) (map[domain.DoubtStatus]int, error) {
	return c.doubts, c.err
}

func (c counts) CountByRole(context.Context) (map[domain.Role]int, error) {
	return c.users, c.err
}

func asRole(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		role := domain.Role(r.Header.Get("X-Test-Role"))
		if role == "" {
			core.Unauthorized(w, "")
			return
		}
		ctx := middleware.WithClaims(r.Context(), &middleware.AccessTokenClaims{UserID: "u-1", Role: role})
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func serve(h *Handler, role domain.Role) *httptest.ResponseRecorder {
	r := chi.NewRouter()
	h.RegisterRoutes(r, asRole)

	req := httptest.NewRequest(http.MethodGet, "/admin/stats", nil)
	if role != "" {
		req.Header.Set("X-Test-Role", string(role))
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestStatsAdminOnly(t *testing.T) {
	h := NewHandler(HandlerConfig{})

	assert.Equal(t, http.StatusUnauthorized, serve(h, "").Code)
	assert.Equal(t, http.StatusForbidden, serve(h, domain.RoleJunior).Code)
	assert.Equal(t, http.StatusForbidden, serve(h, domain.RoleMentor).Code)
	assert.Equal(t, http.StatusOK, serve(h, domain.RoleAdmin).Code)
}

func TestStatsReport(t *testing.T) {
	c := counts{
		doubts: map[domain.DoubtStatus]int{
			domain.StatusPending: 3, domain.StatusAnswered: 1, domain.StatusResolved: 0,
		},
		users: map[domain.Role]int{domain.RoleJunior: 4, domain.RoleMentor: 2},
	}
	h := NewHandler(HandlerConfig{
		DBStats:    func() sql.DBStats { return sql.DBStats{MaxOpenConnections: 25, InUse: 2} },
		DBPing:     func(context.Context) error { return nil },
		RedisStats: func() core.RedisStats { return core.RedisStats{TotalConns: 3} },
		RedisPing:  func(context.Context) error { return errors.New("down") },
		Doubts:     c,
		Users:      c,
	})

	rec := serve(h, domain.RoleAdmin)
	require.Equal(t, http.StatusOK, rec.Code)

	var resp struct {
		Data StatsResponse `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.True(t, resp.Data.Database.Healthy)
	assert.Equal(t, 25, resp.Data.Database.Stats.MaxOpenConnections)
	assert.False(t, resp.Data.Redis.Healthy)
	assert.Equal(t, uint32(3), resp.Data.Redis.Stats.TotalConns)
	assert.Equal(t, 3, resp.Data.Doubts[domain.StatusPending])
	assert.Equal(t, 2, resp.Data.Users[domain.RoleMentor])
	assert.NotEmpty(t, resp.Data.Runtime.GoVersion)
}

func TestStatsCountFailure(t *testing.T) {
	h := NewHandler(HandlerConfig{Doubts: counts{err: errors.New("db gone")}})

	rec := serve(h, domain.RoleAdmin)
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
}
