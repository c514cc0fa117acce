// AngelaMos | 2026
// ids_test.go

package core

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseID(t *testing.T) {
	id, err := ParseID("6F1C2B3A-4D5E-4F60-8A7B-9C0D1E2F3A4B")
	require.NoError(t, err)
	assert.Equal(t, "6f1c2b3a-4d5e-4f60-8a7b-9c0d1e2f3a4b", id)

	for _, raw := range []string{"", "abc", "d-1", "6f1c2b3a-4d5e-4f60-8a7b"} {
		_, err := ParseID(raw)
		require.ErrorIs(t, err, ErrNotFound, raw)
	}
}

func TestPathID(t *testing.T) {
	r := chi.NewRouter()
	r.Get("/doubts/{id}", func(w http.ResponseWriter, r *http.Request) {
		id, err := PathID(r, "id")
		if err != nil {
			NotFound(w, "doubt")
			return
		}
		OK(w, id)
	})

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/doubts/abc", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"NOT_FOUND"`)
	assert.Contains(t, rec.Body.String(), "doubt not found")

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/doubts/6f1c2b3a-4d5e-4f60-8a7b-9c0d1e2f3a4b", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestNoRows(t *testing.T) {
	require.ErrorIs(t, NoRows(sql.ErrNoRows), ErrNotFound)
	require.ErrorIs(t, NoRows(fmt.Errorf("scan: %w", &pgconn.PgError{Code: "22P02"})), ErrNotFound)

	other := &pgconn.PgError{Code: "23505"}
	got := NoRows(other)
	assert.False(t, errors.Is(got, ErrNotFound))
	assert.Same(t, other, got)
}

func TestInternalServerErrorHidesCause(t *testing.T) {
	rec := httptest.NewRecorder()
	JSONError(rec, errors.New("pq: connection refused"))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"code":"INTERNAL_ERROR"`)
	assert.NotContains(t, rec.Body.String(), "connection refused")
}
