// Package auth defines the capability check consulted before every mutating
// operation. Policy evaluation itself lives outside the content engine; this
// package carries the contract and a default staff policy.
package auth

// Action enumerates the capabilities checked per entity kind.
type Action string

const (
	ActionView   Action = "view"
	ActionCreate Action = "create"
	ActionEdit   Action = "edit"
	ActionDelete Action = "delete"
)

// Entity kinds subject to capability checks.
const (
	EntityPost     = "post"
	EntityCategory = "category"
	EntityTag      = "tag"
	EntityImage    = "image"
	EntityFile     = "file"
	EntityComment  = "comment"
)

// Authorizer answers whether the acting user may perform an action on an
// entity kind. A nil userID means the request is unauthenticated.
type Authorizer interface {
	Can(userID *uint, action Action, entity string) bool
}

// StaffPolicy grants every capability to authenticated users. Guests may view
// and may submit comments; whether a guest comment is actually accepted is the
// moderation engine's decision.
type StaffPolicy struct{}

// Can implements Authorizer.
func (StaffPolicy) Can(userID *uint, action Action, entity string) bool {
	if userID != nil {
		return true
	}
	if action == ActionView {
		return true
	}
	return action == ActionCreate && entity == EntityComment
}
