package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salonpro-gateway/apiclient"
	"salonpro-gateway/models"
	"salonpro-gateway/utils"
)

type SelectTenantInput struct {
	ID models.ID `json:"id" binding:"required"`
}

// GetTenant returns the resolved salon. A null salon means "not
// configured" and is not an error.
func GetTenant(c *gin.Context) {
	s := utils.CurrentSession(c)
	tc := s.Tenant.Current()
	c.JSON(http.StatusOK, gin.H{
		"salon":       tc.Salon,
		"isPublic":    tc.IsPublic,
		"isLoading":   tc.IsLoading,
		"isViewingAs": s.Admin.IsViewing(c.Request.Context()),
	})
}

// RefreshTenant re-reads the user's salon. Failures are logged and the
// previous salon is kept.
func RefreshTenant(c *gin.Context) {
	s := utils.CurrentSession(c)
	s.Tenant.RefreshSalon(c.Request.Context())
	c.JSON(http.StatusOK, gin.H{"salon": s.Tenant.Current().Salon})
}

// SelectTenant lets a super-admin view the app as another salon.
func SelectTenant(c *gin.Context) {
	var input SelectTenantInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Salon invalide")
		return
	}

	s := utils.CurrentSession(c)
	if !s.Admin.IsSuperAdmin() {
		utils.RespondWithError(c, http.StatusForbidden, "Seul un super-administrateur peut choisir un salon")
		return
	}
	salon, err := s.API.GetSalon(c.Request.Context(), input.ID)
	if err != nil {
		respondNotFoundOr(c, err, "Salon introuvable")
		return
	}
	if err := s.Admin.Select(c.Request.Context(), *salon); err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"salon": s.Tenant.Current().Salon})
}

func ClearTenant(c *gin.Context) {
	s := utils.CurrentSession(c)
	if err := s.Admin.Clear(c.Request.Context()); err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Session indisponible")
		return
	}
	c.JSON(http.StatusOK, gin.H{"salon": s.Tenant.Current().Salon})
}

// ListTenants lists every salon, for the super-admin salon picker.
func ListTenants(c *gin.Context) {
	s := utils.CurrentSession(c)
	if !s.Admin.IsSuperAdmin() {
		utils.RespondWithError(c, http.StatusForbidden, "Accès réservé aux super-administrateurs")
		return
	}
	page, err := s.API.ListSalons(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse[models.Salon](page))
}

// listResponse keeps the API's paginated envelope.
func listResponse[T any](page apiclient.Page[T]) gin.H {
	results := page.Results
	if results == nil {
		results = []T{}
	}
	return gin.H{"count": page.Count, "results": results}
}
