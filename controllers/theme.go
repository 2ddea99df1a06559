package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"salonpro-gateway/models"
	"salonpro-gateway/session"
	"salonpro-gateway/theme"
	"salonpro-gateway/utils"
)

// GetTheme returns the active salon's theme and the CSS variables it sets.
func GetTheme(c *gin.Context) {
	s := utils.CurrentSession(c)
	t := s.Theme.Load(c.Request.Context(), s.Tenant.Current().Salon)
	c.JSON(http.StatusOK, gin.H{
		"theme":     t,
		"variables": theme.Variables(t),
	})
}

func GetThemeCSS(c *gin.Context) {
	s := utils.CurrentSession(c)
	t := s.Theme.Load(c.Request.Context(), s.Tenant.Current().Salon)
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "text/css; charset=utf-8", []byte(theme.CSS(t)))
}

// UpdateTheme merges the posted colors into the theme. When the salon
// record cannot be saved the theme is still kept for this session.
func UpdateTheme(c *gin.Context) {
	var patch models.TenantTheme
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Thème invalide")
		return
	}
	if err := theme.Validate(patch); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Couleur invalide")
		return
	}

	s := utils.CurrentSession(c)
	salon, err := s.Tenant.Salon()
	if err != nil {
		respondError(c, err)
		return
	}
	updated, saved, err := s.Theme.Update(c.Request.Context(), salon, patch)
	if err != nil {
		respondError(c, err)
		return
	}
	if saved != nil {
		keepSalon(c, s, saved)
	}
	c.JSON(http.StatusOK, gin.H{
		"theme":     updated,
		"variables": theme.Variables(updated),
		"saved":     saved != nil,
	})
}

func ResetTheme(c *gin.Context) {
	s := utils.CurrentSession(c)
	t := s.Theme.Reset(c.Request.Context(), s.Tenant.Current().Salon)
	c.JSON(http.StatusOK, gin.H{
		"theme":     t,
		"variables": theme.Variables(t),
	})
}

// keepSalon replaces the session's copy of salon after an update, in the
// admin selection or in the user's details depending on where it came from.
func keepSalon(c *gin.Context, s *session.Session, salon *models.Salon) {
	if selected := s.Admin.Selected(c.Request.Context()); selected != nil && selected.ID == salon.ID {
		if err := s.Admin.Select(c.Request.Context(), *salon); err != nil {
			c.Error(err)
		}
		return
	}
	s.Auth.SetSalonDetails(salon)
}
