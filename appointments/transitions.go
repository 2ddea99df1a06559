package appointments

import (
	"errors"
	"fmt"

	"salonpro-gateway/models"
	"salonpro-gateway/permissions"
)

var ErrInvalidTransition = errors.New("transition not allowed")

// Transition returns the status an appointment in from ends up in after
// action. Reschedule, move and update keep the status; delete is allowed
// from any status and reports an empty target.
func Transition(action permissions.Action, from models.AppointmentStatus) (models.AppointmentStatus, error) {
	switch action {
	case permissions.ActionConfirm:
		if from == models.StatusPending {
			return models.StatusConfirmed, nil
		}
	case permissions.ActionStart:
		if from == models.StatusConfirmed {
			return models.StatusInProgress, nil
		}
	case permissions.ActionComplete:
		switch from {
		case models.StatusPending, models.StatusConfirmed, models.StatusInProgress:
			return models.StatusCompleted, nil
		}
	case permissions.ActionCancel:
		if from.Valid() && !from.Terminal() {
			return models.StatusCancelled, nil
		}
	case permissions.ActionReschedule, permissions.ActionMove, permissions.ActionUpdate:
		if from.Valid() && !from.Terminal() {
			return from, nil
		}
	case permissions.ActionDelete:
		return "", nil
	case permissions.ActionView:
		return from, nil
	}
	return from, fmt.Errorf("%w: cannot %s a %s appointment", ErrInvalidTransition, action, from)
}

// AvailableActions lists what the user may do with apt right now: allowed
// by both the role and the status.
func AvailableActions(perms permissions.Permissions, apt *models.Appointment) []permissions.Action {
	var out []permissions.Action
	for _, a := range permissions.Actions {
		if a == permissions.ActionCreate || !perms.CanPerformAction(a, apt) {
			continue
		}
		if _, err := Transition(a, apt.Status); err != nil {
			continue
		}
		out = append(out, a)
	}
	return out
}
