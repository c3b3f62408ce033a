// Package authz holds the capability table that decides what each role may
// do. Services call Authorize at their boundary; handlers never inspect
// roles directly.
//
// Ownership is a separate concern: a client acting on its own conversation
// or ticket is allowed here, and the repositories' (id, user_id) filters
// turn foreign rows into NotFound.
package authz

import "github.com/tbourn/support-chat-backend/internal/domain"

// Role is a named permission set.
type Role string

const (
	RoleAdmin  Role = domain.RoleAdmin
	RoleClient Role = domain.RoleClient
)

// Action is an operation on a Resource.
type Action string

const (
	ActionRead   Action = "read"
	ActionCreate Action = "create"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionList   Action = "list"
	// ActionModerate covers admin-only work on other users' rows: listing
	// every ticket, setting status and admin comments.
	ActionModerate Action = "moderate"
)

// Resource is a kind of entity.
type Resource string

const (
	ResourceConversation Resource = "conversation"
	ResourceTicket       Resource = "ticket"
	ResourceUser         Resource = "user"
	ResourceDashboard    Resource = "dashboard"
	ResourceChat         Resource = "chat"
)

type capability struct {
	action   Action
	resource Resource
}

var all = []Action{ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionList, ActionModerate}

// grants lists what each role may do. Conversation content is not
// moderated by admins, so admins only carry the client rights there.
var grants = map[Role]map[capability]bool{
	RoleClient: set(
		caps(ResourceConversation, ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionList),
		caps(ResourceTicket, ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionList),
		caps(ResourceChat, ActionCreate),
	),
	RoleAdmin: set(
		caps(ResourceConversation, ActionRead, ActionCreate, ActionUpdate, ActionDelete, ActionList),
		caps(ResourceTicket, all...),
		caps(ResourceUser, all...),
		caps(ResourceDashboard, ActionRead),
		caps(ResourceChat, ActionCreate),
	),
}

func caps(r Resource, actions ...Action) []capability {
	out := make([]capability, 0, len(actions))
	for _, a := range actions {
		out = append(out, capability{action: a, resource: r})
	}
	return out
}

func set(groups ...[]capability) map[capability]bool {
	m := map[capability]bool{}
	for _, g := range groups {
		for _, c := range g {
			m[c] = true
		}
	}
	return m
}

// Can reports whether role grants action on resource.
func (r Role) Can(action Action, resource Resource) bool {
	return grants[r][capability{action: action, resource: resource}]
}

// Authorize reports whether any of u's roles grants action on resource.
// A nil user is never authorized.
func Authorize(u *domain.User, action Action, resource Resource) bool {
	if u == nil {
		return false
	}
	for _, name := range u.RoleNames() {
		if Role(name).Can(action, resource) {
			return true
		}
	}
	return false
}

// IsAdmin reports whether u holds the admin role.
func IsAdmin(u *domain.User) bool {
	return u != nil && u.HasRole(domain.RoleAdmin)
}
