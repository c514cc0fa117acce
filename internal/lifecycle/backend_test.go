// AngelaMos | 2026
// backend_test.go

package lifecycle_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/doubtspace/internal/domain"
	"github.com/carterperez-dev/doubtspace/internal/gateway"
	"github.com/carterperez-dev/doubtspace/internal/gateway/gatewaytest"
	"github.com/carterperez-dev/doubtspace/internal/lifecycle"
)

func TestResolveTwiceAgainstBackend(t *testing.T) {
	backend := gatewaytest.New(t)
	junior, juniorToken := backend.AddUser("Jun", "jun@example.com", "password123", domain.RoleJunior)
	mentor, _ := backend.AddUser("Men", "men@example.com", "password123", domain.RoleMentor)

	doubt := backend.SeedDoubt(junior.ID, "Channels", "When do I close a channel?", "go")
	backend.SeedAnswer(doubt.ID, mentor.ID, "Close it from the sending side only.")
	backend.SetDoubtStatus(doubt.ID, domain.StatusAnswered)

	client, err := gateway.New(gateway.Config{BaseURL: backend.BaseURL()})
	require.NoError(t, err)
	ctx := gateway.WithCredential(t.Context(), juniorToken)

	e := lifecycle.NewEngine(client, nil)

	first, err := e.Resolve(ctx, doubt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, first)

	route := "POST /doubts/" + doubt.ID + "/resolve"
	require.Equal(t, 1, backend.Requests(route))

	second, err := e.Resolve(ctx, doubt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, second)
	assert.Equal(t, 1, backend.Requests(route))
}

func TestStaleServerStatusIsClamped(t *testing.T) {
	backend := gatewaytest.New(t)
	junior, _ := backend.AddUser("Jun", "jun@example.com", "password123", domain.RoleJunior)
	doubt := backend.SeedDoubt(junior.ID, "Maps", "Are maps safe for concurrent use?", "go")
	backend.SetDoubtStatus(doubt.ID, domain.StatusResolved)

	client, err := gateway.New(gateway.Config{BaseURL: backend.BaseURL()})
	require.NoError(t, err)
	e := lifecycle.NewEngine(client, nil)

	view, err := e.Refresh(t.Context(), doubt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, view.Doubt.Status)

	backend.SetDoubtStatus(doubt.ID, domain.StatusPending)

	view, err = e.Refresh(t.Context(), doubt.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusResolved, view.Doubt.Status)
}
