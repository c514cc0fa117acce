// AngelaMos | 2026
// ids.go

package core

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

// ParseID canonicalises a row id. Every primary key is a UUID, so a value
// that does not parse cannot name a row and reports ErrNotFound.
func ParseID(raw string) (string, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: malformed id %q", ErrNotFound, raw)
	}
	return id.String(), nil
}

// PathID is ParseID over a chi route param.
func PathID(r *http.Request, name string) (string, error) {
	return ParseID(chi.URLParam(r, name))
}
