// Package permission holds the single access decision for lists. The HTTP
// handlers, the permissions pre-flight endpoint and the tests all call it;
// the database row-level policies enforce the same rule.
package permission

import (
	"github.com/google/uuid"

	"github.com/pageza/grocerylist/backend/internal/apperrors"
)

type Role string

const (
	RoleNone   Role = "none"
	RoleViewer Role = "viewer"
	RoleEditor Role = "editor"
	RoleOwner  Role = "owner"
)

type Action string

const (
	ActionRead Action = "read"
	// ActionWrite covers item create, status toggle and delete.
	ActionWrite Action = "write"
	// ActionManage covers deleting the list and changing member capability.
	ActionManage Action = "manage"
)

// Membership is the subset of a membership row the decision needs.
type Membership struct {
	CanEdit bool
}

// Resolve derives the caller's role. Ownership and edit membership are
// checked independently; either grants write.
func Resolve(userID, ownerID uuid.UUID, member *Membership) Role {
	isOwner := userID != uuid.Nil && userID == ownerID
	canEdit := member != nil && member.CanEdit

	switch {
	case isOwner:
		return RoleOwner
	case canEdit:
		return RoleEditor
	case member != nil:
		return RoleViewer
	default:
		return RoleNone
	}
}

// RoleFor maps a membership capability flag to a member role.
func RoleFor(canEdit bool) Role {
	if canEdit {
		return RoleEditor
	}
	return RoleViewer
}

func (r Role) Allows(action Action) bool {
	switch action {
	case ActionRead:
		return r == RoleOwner || r == RoleEditor || r == RoleViewer
	case ActionWrite:
		return r == RoleOwner || r == RoleEditor
	case ActionManage:
		return r == RoleOwner
	default:
		return false
	}
}

func (r Role) CanRead() bool  { return r.Allows(ActionRead) }
func (r Role) CanWrite() bool { return r.Allows(ActionWrite) }
func (r Role) IsOwner() bool  { return r == RoleOwner }

var denials = map[Action]string{
	ActionRead:   "You don't have access to this list",
	ActionWrite:  "You don't have permission to modify items in this list",
	ActionManage: "Only the list owner can perform this action",
}

// Authorize returns an authorization error with a human-readable reason
// when role may not perform action.
func Authorize(role Role, action Action) error {
	if role.Allows(action) {
		return nil
	}
	msg, ok := denials[action]
	if !ok {
		msg = "Permission denied"
	}
	return apperrors.Forbidden(msg)
}

// Decision is the pre-flight view of a caller's access to a list.
type Decision struct {
	Role     Role `json:"role"`
	IsOwner  bool `json:"is_owner"`
	CanRead  bool `json:"can_read"`
	CanWrite bool `json:"can_write"`
}

func Decide(role Role) Decision {
	return Decision{
		Role:     role,
		IsOwner:  role.IsOwner(),
		CanRead:  role.CanRead(),
		CanWrite: role.CanWrite(),
	}
}
