package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"salonpro-gateway/utils"
)

// GetDashboardOverview summarizes today for the active salon.
func GetDashboardOverview(c *gin.Context) {
	s := utils.CurrentSession(c)
	overview, err := s.Appointments.Dashboard(c.Request.Context(), time.Now())
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, overview)
}
