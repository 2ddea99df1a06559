package appointments

import (
	"errors"

	"salonpro-gateway/apiclient"
	"salonpro-gateway/permissions"
)

// Toast is the user-facing message of a failed action.
type Toast struct {
	Title       string `json:"title"`
	Description string `json:"description"`
}

var failureMessages = map[permissions.Action]string{
	permissions.ActionCreate:     "Erreur lors de la création du rendez-vous",
	permissions.ActionConfirm:    "Erreur lors de la confirmation",
	permissions.ActionCancel:     "Erreur lors de l'annulation",
	permissions.ActionReschedule: "Erreur lors du report",
	permissions.ActionMove:       "Erreur lors du déplacement",
	permissions.ActionDelete:     "Erreur lors de la suppression du rendez-vous",
}

// MutationError wraps the cause of a failed action.
type MutationError struct {
	Action permissions.Action
	Err    error
}

func (e *MutationError) Error() string { return string(e.Action) + ": " + e.Err.Error() }

func (e *MutationError) Unwrap() error { return e.Err }

// Toast describes the failure for the user.
func (e *MutationError) Toast() Toast {
	return Toast{Title: "Erreur", Description: describe(e.Action, e.Err)}
}

func describe(action permissions.Action, err error) string {
	switch {
	case errors.Is(err, ErrForbidden):
		return "Vous n'avez pas la permission d'effectuer cette action"
	case errors.Is(err, ErrMutationInFlight):
		return "Cette action est déjà en cours"
	case errors.Is(err, ErrInvalidTransition):
		return "Ce rendez-vous ne peut plus être modifié de cette façon"
	case errors.Is(err, ErrNotFound):
		return "Rendez-vous introuvable"
	case errors.Is(err, apiclient.ErrSessionExpired):
		return "Votre session a expiré, veuillez vous reconnecter"
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) || errors.Is(err, ErrInvalidInput) {
		return apiclient.ErrorMessage(err)
	}
	// transport failures are logged; the toast stays generic
	if msg, ok := failureMessages[action]; ok {
		return msg
	}
	return apiclient.DefaultErrorMessage
}
