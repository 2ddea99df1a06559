package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"salonpro-gateway/apiclient"
	"salonpro-gateway/appointments"
	"salonpro-gateway/auth"
	"salonpro-gateway/tenant"
	"salonpro-gateway/utils"
)

// respondError maps service errors onto HTTP statuses. Errors of the
// booking API keep their status when it is a client error.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, apiclient.ErrSessionExpired):
		utils.RespondUnauthorized(c, "Votre session a expiré, veuillez vous reconnecter")
		return
	case errors.Is(err, auth.ErrNotAuthenticated):
		utils.RespondUnauthorized(c, "Authentification requise")
		return
	}

	var mutErr *appointments.MutationError
	if errors.As(err, &mutErr) {
		toast := mutErr.Toast()
		utils.RespondWithToast(c, statusOf(err), toast.Title, toast.Description)
		return
	}
	utils.RespondWithError(c, statusOf(err), messageOf(err))
}

func statusOf(err error) int {
	switch {
	case errors.Is(err, tenant.ErrNoTenant):
		return http.StatusConflict
	case errors.Is(err, tenant.ErrNotSuperAdmin), errors.Is(err, appointments.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, appointments.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, appointments.ErrMutationInFlight), errors.Is(err, appointments.ErrInvalidTransition):
		return http.StatusConflict
	case errors.Is(err, appointments.ErrInvalidInput):
		return http.StatusBadRequest
	case errors.Is(err, apiclient.ErrSessionExpired):
		return http.StatusUnauthorized
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) && apiErr.Status >= 400 && apiErr.Status < 500 {
		return apiErr.Status
	}
	return http.StatusBadGateway
}

func messageOf(err error) string {
	switch {
	case errors.Is(err, tenant.ErrNoTenant):
		return "Aucun salon configuré"
	case errors.Is(err, tenant.ErrNotSuperAdmin):
		return "Seul un super-administrateur peut choisir un salon"
	case errors.Is(err, appointments.ErrNotFound):
		return "Rendez-vous introuvable"
	}
	var apiErr *apiclient.APIError
	if errors.As(err, &apiErr) {
		return apiclient.ErrorMessage(err)
	}
	return apiclient.DefaultErrorMessage
}

// respondNotFoundOr answers 404 with notFound when err is a missing
// resource, and maps err otherwise.
func respondNotFoundOr(c *gin.Context, err error, notFound string) {
	if apiclient.IsNotFound(err) || errors.Is(err, appointments.ErrNotFound) {
		utils.RespondWithError(c, http.StatusNotFound, notFound)
		return
	}
	respondError(c, err)
}
