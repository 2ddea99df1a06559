// Package permissions decides which appointment actions a staff member may
// take. Decisions are advisory: the booking API re-checks every mutation.
package permissions

import (
	"fmt"
	"strings"

	"salonpro-gateway/models"
)

type Action string

const (
	ActionCreate     Action = "create"
	ActionView       Action = "view"
	ActionConfirm    Action = "confirm"
	ActionStart      Action = "start"
	ActionComplete   Action = "complete"
	ActionCancel     Action = "cancel"
	ActionReschedule Action = "reschedule"
	ActionMove       Action = "move"
	ActionUpdate     Action = "update"
	ActionDelete     Action = "delete"
)

// Actions lists every action in display order.
var Actions = []Action{
	ActionCreate, ActionView, ActionConfirm, ActionStart, ActionComplete,
	ActionCancel, ActionReschedule, ActionMove, ActionUpdate, ActionDelete,
}

func ParseAction(s string) (Action, error) {
	a := Action(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Actions {
		if a == known {
			return a, nil
		}
	}
	return "", fmt.Errorf("unknown action %q", s)
}

// Permissions is the decision set for one user and, optionally, one
// appointment. The zero value denies everything.
type Permissions struct {
	CanCreate     bool `json:"canCreate"`
	CanView       bool `json:"canView"`
	CanConfirm    bool `json:"canConfirm"`
	CanStart      bool `json:"canStart"`
	CanComplete   bool `json:"canComplete"`
	CanCancel     bool `json:"canCancel"`
	CanReschedule bool `json:"canReschedule"`
	CanMove       bool `json:"canMove"`
	CanUpdate     bool `json:"canUpdate"`
	CanDelete     bool `json:"canDelete"`

	user *models.User
}

// Evaluate computes the permissions of user on apt. apt may be nil, in
// which case ownership-bound permissions are false.
func Evaluate(user *models.User, apt *models.Appointment) Permissions {
	p := Permissions{user: user}
	if user == nil {
		return p
	}
	for _, a := range Actions {
		p.set(a, allowed(user, a, apt))
	}
	return p
}

// CanPerformAction checks one action. A non-nil apt takes precedence over
// the appointment the permissions were evaluated for.
func (p Permissions) CanPerformAction(action Action, apt *models.Appointment) bool {
	if p.user == nil {
		return false
	}
	if apt != nil {
		return allowed(p.user, action, apt)
	}
	return p.get(action)
}

// allowed is a total match over the role enum. Unknown roles and unknown
// actions are denied.
func allowed(user *models.User, action Action, apt *models.Appointment) bool {
	switch user.Role {
	case models.RoleAdmin:
		return action.known()
	case models.RoleReceptionniste:
		switch action {
		case ActionCreate, ActionView, ActionConfirm, ActionCancel, ActionReschedule, ActionMove, ActionUpdate:
			return true
		}
		return false
	case models.RoleCoiffeur:
		switch action {
		case ActionView, ActionConfirm, ActionStart, ActionComplete:
			return true
		case ActionCancel, ActionReschedule, ActionMove, ActionUpdate, ActionDelete:
			return IsOwn(user, apt)
		}
		return false
	default:
		return false
	}
}

// IsOwn reports whether apt is assigned to user. A missing
// employee_user_id never counts as ownership.
func IsOwn(user *models.User, apt *models.Appointment) bool {
	if user == nil || apt == nil || apt.EmployeeUserID == nil {
		return false
	}
	return *apt.EmployeeUserID == user.ID
}

func (a Action) known() bool {
	for _, known := range Actions {
		if a == known {
			return true
		}
	}
	return false
}

func (p *Permissions) set(a Action, v bool) {
	switch a {
	case ActionCreate:
		p.CanCreate = v
	case ActionView:
		p.CanView = v
	case ActionConfirm:
		p.CanConfirm = v
	case ActionStart:
		p.CanStart = v
	case ActionComplete:
		p.CanComplete = v
	case ActionCancel:
		p.CanCancel = v
	case ActionReschedule:
		p.CanReschedule = v
	case ActionMove:
		p.CanMove = v
	case ActionUpdate:
		p.CanUpdate = v
	case ActionDelete:
		p.CanDelete = v
	}
}

func (p Permissions) get(a Action) bool {
	switch a {
	case ActionCreate:
		return p.CanCreate
	case ActionView:
		return p.CanView
	case ActionConfirm:
		return p.CanConfirm
	case ActionStart:
		return p.CanStart
	case ActionComplete:
		return p.CanComplete
	case ActionCancel:
		return p.CanCancel
	case ActionReschedule:
		return p.CanReschedule
	case ActionMove:
		return p.CanMove
	case ActionUpdate:
		return p.CanUpdate
	case ActionDelete:
		return p.CanDelete
	}
	return false
}
