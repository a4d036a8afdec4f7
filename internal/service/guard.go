package service

import "account_service/internal/model"

// Action is an operation on user records subject to authorization
type Action string

const (
	ActionView   Action = "view"
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
	ActionCreate Action = "create"
	ActionList   Action = "list"
)

// Principal is the caller identity taken from a verified token. The zero value is anonymous.
type Principal struct {
	UserID int
	Role   model.Role
}

// Authenticated reports whether p carries a usable identity
func (p Principal) Authenticated() bool {
	return p.UserID > 0 && p.Role.Valid()
}

// Authorize decides whether caller may perform action on the user with targetID.
// targetID is ignored for create and list. Identity is compared by primary key.
// Any combination not explicitly allowed is forbidden.
func Authorize(caller Principal, action Action, targetID int) error {
	if !caller.Authenticated() {
		return ErrUnauthorized
	}

	switch action {
	case ActionCreate, ActionList:
		if caller.Role == model.RoleAdmin {
			return nil
		}
	case ActionView, ActionUpdate, ActionDelete:
		if caller.Role == model.RoleAdmin {
			return nil
		}
		if caller.Role == model.RoleUser && caller.UserID == targetID {
			return nil
		}
	}
	return ErrForbidden
}
