package lifecycle

import (
	"strings"

	"github.com/google/uuid"
)

type Role string

const (
	RoleEmployer Role = "EMPLOYER"
	RoleEmployee Role = "EMPLOYEE"
	RoleCustomer Role = "CUSTOMER"
	// RoleSystem is used by in-process collaborators such as the scheduler.
	RoleSystem Role = "SYSTEM"
)

func ParseRole(s string) (Role, bool) {
	r := Role(strings.ToUpper(strings.TrimSpace(s)))
	switch r {
	case RoleEmployer, RoleEmployee, RoleCustomer, RoleSystem:
		return r, true
	}
	return "", false
}

const AccountActive = "ACTIVE"

// Actor is the verified caller descriptor supplied by the identity
// collaborator. The engine trusts it as given.
type Actor struct {
	ID     uuid.UUID
	Role   Role
	Status string
}

// SystemActor identifies in-process callers.
var SystemActor = Actor{ID: uuid.Nil, Role: RoleSystem, Status: AccountActive}

func (a Actor) Is(role Role) bool {
	return a.Role == role
}

func (a Actor) Active() bool {
	return strings.EqualFold(a.Status, AccountActive)
}
