// AngelaMos | 2026
// policy.go

// Package access is the single permission table consulted by UI
// affordances, the submission pipeline and the API handlers. It performs no
// I/O and holds no mutable state.
package access

import (
	"errors"
	"fmt"

	"github.com/carterperez-dev/doubtspace/internal/domain"
)

type Action string

type Resource string

const (
	ActionView    Action = "view"
	ActionCreate  Action = "create"
	ActionUpdate  Action = "update"
	ActionDelete  Action = "delete"
	ActionResolve Action = "resolve"
)

const (
	ResourceDoubt     Resource = "doubt"
	ResourceAnswer    Resource = "answer"
	ResourceComment   Resource = "comment"
	ResourceUpvote    Resource = "upvote"
	ResourceSpacePost Resource = "space_post"
	ResourceUser      Resource = "user"
	ResourceStats     Resource = "stats"
)

var ErrForbidden = errors.New("forbidden")

type rule struct {
	action   Action
	resource Resource
}

type roleSet map[domain.Role]struct{}

func roles(r ...domain.Role) roleSet {
	set := make(roleSet, len(r))
	for _, role := range r {
		set[role] = struct{}{}
	}
	return set
}

var everyone = roles(domain.RoleJunior, domain.RoleMentor, domain.RoleAdmin)

// Update and delete rows grant the action to the authoring role only;
// callers still verify ownership of the concrete entity.
var table = map[rule]roleSet{
	{ActionCreate, ResourceDoubt}:     roles(domain.RoleJunior),
	{ActionCreate, ResourceAnswer}:    roles(domain.RoleMentor),
	{ActionCreate, ResourceComment}:   roles(domain.RoleJunior),
	{ActionCreate, ResourceUpvote}:    everyone,
	{ActionCreate, ResourceSpacePost}: roles(domain.RoleJunior),

	{ActionView, ResourceDoubt}:     everyone,
	{ActionView, ResourceAnswer}:    everyone,
	{ActionView, ResourceComment}:   everyone,
	{ActionView, ResourceSpacePost}: everyone,
	{ActionView, ResourceUser}:      everyone,
	{ActionView, ResourceStats}:     roles(domain.RoleAdmin),

	{ActionUpdate, ResourceDoubt}:   roles(domain.RoleJunior),
	{ActionUpdate, ResourceAnswer}:  roles(domain.RoleMentor),
	{ActionUpdate, ResourceComment}: roles(domain.RoleJunior),
	{ActionUpdate, ResourceUser}:    everyone,

	{ActionDelete, ResourceDoubt}:   roles(domain.RoleJunior),
	{ActionDelete, ResourceAnswer}:  roles(domain.RoleMentor),
	{ActionDelete, ResourceComment}: roles(domain.RoleJunior),
	{ActionDelete, ResourceUpvote}:  everyone,

	{ActionResolve, ResourceDoubt}: roles(domain.RoleJunior, domain.RoleMentor),
}

// Can reports whether role may perform action on resource. Anything not in
// the table is denied.
func Can(role domain.Role, action Action, resource Resource) bool {
	allowed, ok := table[rule{action, resource}]
	if !ok {
		return false
	}
	_, ok = allowed[role]
	return ok
}

// Check is Can in error form.
func Check(role domain.Role, action Action, resource Resource) error {
	if Can(role, action, resource) {
		return nil
	}
	if role == "" {
		return fmt.Errorf("%s %s: not authenticated: %w", action, resource, ErrForbidden)
	}
	return fmt.Errorf("%s %s as %s: %w", action, resource, role, ErrForbidden)
}
