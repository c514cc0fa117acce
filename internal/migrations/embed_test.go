// AngelaMos | 2026
// embed_test.go

package migrations

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrationsAreEmbedded(t *testing.T) {
	files, err := fs.Glob(FS, Dir+"/*.sql")
	require.NoError(t, err)
	require.Len(t, files, 5)

	for _, name := range files {
		raw, err := fs.ReadFile(FS, name)
		require.NoError(t, err)

		body := string(raw)
		assert.True(t, strings.HasPrefix(body, "-- +goose Up"), name)
		assert.Contains(t, body, "-- +goose Down", name)
	}
}

func TestUpvotesAreUniquePerUser(t *testing.T) {
	raw, err := fs.ReadFile(FS, Dir+"/00004_upvotes.sql")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "UNIQUE (answer_id, user_id)")
}
