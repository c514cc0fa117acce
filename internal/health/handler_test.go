// AngelaMos | 2026
// handler_test.go

package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func get(t *testing.T, h *Handler, path string) (int, ReadinessResponse) {
	t.Helper()
	r := chi.NewRouter()
	h.RegisterRoutes(r)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))

	var body ReadinessResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	return rec.Code, body
}

func TestReadinessWithRedis(t *testing.T) {
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := NewHandler(
		Dependency{Name: "redis", Checker: CheckerFunc(func(ctx context.Context) error {
			return rdb.Ping(ctx).Err()
		})},
		Dependency{Name: "database", Checker: CheckerFunc(func(context.Context) error { return nil })},
	)

	code, body := get(t, h, "/readyz")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)
	require.Len(t, body.Checks, 2)
	assert.Equal(t, "redis", body.Checks[0].Name)
	assert.Equal(t, "database", body.Checks[1].Name)

	mr.Close()
	code, body = get(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "degraded", body.Status)
	assert.False(t, body.Checks[0].Healthy)
	assert.True(t, body.Checks[1].Healthy)
}

func TestReadinessMissingChecker(t *testing.T) {
	h := NewHandler(Dependency{Name: "database"})

	code, body := get(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "database checker not configured", body.Checks[0].Message)
}

func TestShutdownFlips(t *testing.T) {
	h := NewHandler(Dependency{Name: "x", Checker: CheckerFunc(func(context.Context) error {
		return errors.New("unused")
	})})

	code, body := get(t, h, "/livez")
	assert.Equal(t, http.StatusOK, code)
	assert.Equal(t, "ok", body.Status)

	h.SetReady(false)
	code, body = get(t, h, "/readyz")
	assert.Equal(t, http.StatusServiceUnavailable, code)
	assert.Equal(t, "not_ready", body.Status)

	h.SetShutdown(true)
	for _, path := range []string{"/healthz", "/livez", "/readyz"} {
		code, body = get(t, h, path)
		assert.Equal(t, http.StatusServiceUnavailable, code, path)
		assert.Equal(t, "shutting_down", body.Status, path)
	}
}
