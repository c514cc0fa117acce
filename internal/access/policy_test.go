// AngelaMos | 2026
// policy_test.go

package access

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/doubtspace/internal/domain"
)

func TestCanRequiredTable(t *testing.T) {
	cases := []struct {
		name     string
		role     domain.Role
		action   Action
		resource Resource
		allow    bool
	}{
		{name: "junior create doubt", role: domain.RoleJunior, action: ActionCreate, resource: ResourceDoubt, allow: true},
		{name: "mentor create doubt", role: domain.RoleMentor, action: ActionCreate, resource: ResourceDoubt, allow: false},
		{name: "admin create doubt", role: domain.RoleAdmin, action: ActionCreate, resource: ResourceDoubt, allow: false},
		{name: "junior create answer", role: domain.RoleJunior, action: ActionCreate, resource: ResourceAnswer, allow: false},
		{name: "mentor create answer", role: domain.RoleMentor, action: ActionCreate, resource: ResourceAnswer, allow: true},
		{name: "admin create answer", role: domain.RoleAdmin, action: ActionCreate, resource: ResourceAnswer, allow: false},
		{name: "junior create comment", role: domain.RoleJunior, action: ActionCreate, resource: ResourceComment, allow: true},
		{name: "mentor create comment", role: domain.RoleMentor, action: ActionCreate, resource: ResourceComment, allow: false},
		{name: "admin create comment", role: domain.RoleAdmin, action: ActionCreate, resource: ResourceComment, allow: false},
		{name: "junior upvote", role: domain.RoleJunior, action: ActionCreate, resource: ResourceUpvote, allow: true},
		{name: "mentor upvote", role: domain.RoleMentor, action: ActionCreate, resource: ResourceUpvote, allow: true},
		{name: "admin upvote", role: domain.RoleAdmin, action: ActionCreate, resource: ResourceUpvote, allow: true},
		{name: "junior view answer", role: domain.RoleJunior, action: ActionView, resource: ResourceAnswer, allow: true},
		{name: "mentor view comment", role: domain.RoleMentor, action: ActionView, resource: ResourceComment, allow: true},
		{name: "admin view doubt", role: domain.RoleAdmin, action: ActionView, resource: ResourceDoubt, allow: true},
		{name: "admin resolve", role: domain.RoleAdmin, action: ActionResolve, resource: ResourceDoubt, allow: false},
		{name: "mentor resolve", role: domain.RoleMentor, action: ActionResolve, resource: ResourceDoubt, allow: true},
		{name: "junior stats", role: domain.RoleJunior, action: ActionView, resource: ResourceStats, allow: false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.allow, Can(tc.role, tc.action, tc.resource))
		})
	}
}

func TestCanFailsClosed(t *testing.T) {
	assert.False(t, Can("", ActionView, ResourceDoubt))
	assert.False(t, Can("superuser", ActionCreate, ResourceDoubt))
	assert.False(t, Can(domain.RoleAdmin, "purge", ResourceDoubt))
	assert.False(t, Can(domain.RoleJunior, ActionCreate, "planet"))
}

func TestCanIsTotalAndDeterministic(t *testing.T) {
	allRoles := []domain.Role{domain.RoleJunior, domain.RoleMentor, domain.RoleAdmin, "", "x"}
	actions := []Action{ActionView, ActionCreate, ActionUpdate, ActionDelete, ActionResolve, "x"}
	resources := []Resource{
		ResourceDoubt, ResourceAnswer, ResourceComment, ResourceUpvote,
		ResourceSpacePost, ResourceUser, ResourceStats, "x",
	}

	for _, r := range allRoles {
		for _, a := range actions {
			for _, res := range resources {
				first := Can(r, a, res)
				for range 3 {
					require.Equal(t, first, Can(r, a, res))
				}
			}
		}
	}
}

func TestCheck(t *testing.T) {
	require.NoError(t, Check(domain.RoleMentor, ActionCreate, ResourceAnswer))

	err := Check(domain.RoleJunior, ActionCreate, ResourceAnswer)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrForbidden))

	err = Check("", ActionCreate, ResourceUpvote)
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Contains(t, err.Error(), "not authenticated")
}
