// AngelaMos | 2026
// toggle_test.go

package upvote_test

import (
	"context"
	"net/http"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/doubtspace/internal/access"
	"github.com/carterperez-dev/doubtspace/internal/domain"
	"github.com/carterperez-dev/doubtspace/internal/gateway"
	"github.com/carterperez-dev/doubtspace/internal/gateway/gatewaytest"
	"github.com/carterperez-dev/doubtspace/internal/session"
	"github.com/carterperez-dev/doubtspace/internal/upvote"
)

type fixture struct {
	backend *gatewaytest.Server
	client  *gateway.Client
	store   *session.Store
	toggler *upvote.Toggler
	viewer  domain.User
	answer  domain.Answer
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	backend := gatewaytest.New(t)
	client, err := gateway.New(gateway.Config{BaseURL: backend.BaseURL()})
	require.NoError(t, err)

	store := session.NewStore(session.Config{Gateway: client})
	client.SetCredentials(store)

	junior, _ := backend.AddUser("Jun", "jun@example.com", "password123", domain.RoleJunior)
	mentor, _ := backend.AddUser("Men", "men@example.com", "password123", domain.RoleMentor)
	doubt := backend.SeedDoubt(junior.ID, "Slices", "Why did append not change my slice?", "go")
	answer := backend.SeedAnswer(doubt.ID, mentor.ID, "append may reallocate the backing array.")

	_, err = store.Login(context.Background(), "jun@example.com", "password123")
	require.NoError(t, err)

	return &fixture{
		backend: backend,
		client:  client,
		store:   store,
		toggler: upvote.NewToggler(client, store, nil),
		viewer:  junior,
		answer:  answer,
	}
}

// upvotes by other users so the count does not start at zero
func (f *fixture) seedVotes(t *testing.T, n int) {
	t.Helper()
	for i := range n {
		email := string(rune('a'+i)) + "@example.com"
		_, token := f.backend.AddUser("Voter", email, "password123", domain.RoleMentor)
		_, err := f.client.CreateUpvote(gateway.WithCredential(context.Background(), token), f.answer.ID)
		require.NoError(t, err)
	}
}

func (f *fixture) seed(t *testing.T) {
	t.Helper()
	answers, err := f.client.ListAnswers(context.Background(), f.answer.DoubtID)
	require.NoError(t, err)
	require.Len(t, answers, 1)
	f.toggler.Seed(answers[0])
}

func TestToggleIsSelfInverse(t *testing.T) {
	f := newFixture(t)
	f.seedVotes(t, 3)
	f.seed(t)
	ctx := context.Background()

	before := f.toggler.State(f.answer.ID)
	assert.Equal(t, upvote.State{Count: 3}, before)

	on, err := f.toggler.Toggle(ctx, f.answer.ID, f.viewer.ID)
	require.NoError(t, err)
	assert.True(t, on.Upvoted)
	assert.Equal(t, 4, on.Count)
	assert.NotEmpty(t, on.UpvoteID)

	off, err := f.toggler.Toggle(ctx, f.answer.ID, f.viewer.ID)
	require.NoError(t, err)
	assert.False(t, off.Upvoted)
	assert.Equal(t, before.Count, off.Count)
	assert.Equal(t, 3, f.backend.UpvoteCount(f.answer.ID))
}

func TestSeedFromViewerUpvote(t *testing.T) {
	f := newFixture(t)
	_, err := f.client.CreateUpvote(context.Background(), f.answer.ID)
	require.NoError(t, err)
	f.seed(t)

	st := f.toggler.State(f.answer.ID)
	assert.True(t, st.Upvoted)
	assert.Equal(t, 1, st.Count)

	off, err := f.toggler.Toggle(context.Background(), f.answer.ID, f.viewer.ID)
	require.NoError(t, err)
	assert.False(t, off.Upvoted)
	assert.Zero(t, off.Count)
}

func TestServerCountWinsOverOptimistic(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	f.seedVotes(t, 2)

	st, err := f.toggler.Toggle(context.Background(), f.answer.ID, f.viewer.ID)
	require.NoError(t, err)
	assert.Equal(t, 3, st.Count)
}

func TestFailureRollsBackExactly(t *testing.T) {
	f := newFixture(t)
	f.seedVotes(t, 2)
	f.seed(t)
	before := f.toggler.State(f.answer.ID)

	f.backend.FailNext("POST /upvotes", http.StatusInternalServerError, "write failed")

	st, err := f.toggler.Toggle(context.Background(), f.answer.ID, f.viewer.ID)
	require.Error(t, err)
	assert.True(t, gateway.IsCategory(err, gateway.CategoryServer))
	assert.Equal(t, before, st)
	assert.Equal(t, before, f.toggler.State(f.answer.ID))
}

func TestOptimisticStateWhileInFlight(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	arrived, release := f.backend.Hold("POST /upvotes")
	defer release()

	var (
		wg  sync.WaitGroup
		err error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, err = f.toggler.Toggle(context.Background(), f.answer.ID, f.viewer.ID)
	}()

	<-arrived
	assert.Equal(t, upvote.State{Upvoted: true, Count: 1}, f.toggler.State(f.answer.ID))

	_, second := f.toggler.Toggle(context.Background(), f.answer.ID, f.viewer.ID)
	require.ErrorIs(t, second, upvote.ErrInFlight)

	release()
	wg.Wait()
	require.NoError(t, err)
	assert.Equal(t, 1, f.backend.Requests("POST /upvotes"))
}

func TestToggleRequiresMatchingSession(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	_, err := f.toggler.Toggle(context.Background(), f.answer.ID, "someone-else")
	require.ErrorIs(t, err, upvote.ErrUserMismatch)

	require.NoError(t, f.store.Logout(context.Background()))
	before := f.backend.TotalRequests()

	_, err = f.toggler.Toggle(context.Background(), f.answer.ID, f.viewer.ID)
	require.ErrorIs(t, err, access.ErrForbidden)
	assert.Equal(t, before, f.backend.TotalRequests())
}
