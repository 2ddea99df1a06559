package controllers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"salonpro-gateway/appointments"
	"salonpro-gateway/dates"
	"salonpro-gateway/models"
	"salonpro-gateway/permissions"
	"salonpro-gateway/utils"
)

type NavigateInput struct {
	// Days moves the selected day; Today jumps back to the current day.
	Days  int  `json:"days"`
	Today bool `json:"today"`
}

type RescheduleInput struct {
	Date      string `json:"date" binding:"required"`
	StartTime string `json:"start_time" binding:"required"`
}

type MoveInput struct {
	EmployeeID models.ID `json:"employee_id" binding:"required"`
}

// GetAppointmentsView returns the appointments page for the session's
// current view state.
func GetAppointmentsView(c *gin.Context) {
	s := utils.CurrentSession(c)
	respondView(c, s.View.Get())
}

// UpdateAppointmentsView changes the date, mode or filters of the view.
func UpdateAppointmentsView(c *gin.Context) {
	var patch appointments.StatePatch
	if err := c.ShouldBindJSON(&patch); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Filtres invalides")
		return
	}
	s := utils.CurrentSession(c)
	state, err := s.View.Update(func(v appointments.ViewState) (appointments.ViewState, error) {
		return v.Apply(patch)
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Filtres invalides: "+err.Error())
		return
	}
	respondView(c, state)
}

func NavigateAppointmentsView(c *gin.Context) {
	var input NavigateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Navigation invalide")
		return
	}
	s := utils.CurrentSession(c)
	state, err := s.View.Update(func(v appointments.ViewState) (appointments.ViewState, error) {
		if input.Today {
			return v.Today(time.Now()), nil
		}
		return v.Navigate(input.Days)
	})
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Navigation invalide")
		return
	}
	respondView(c, state)
}

func respondView(c *gin.Context, state appointments.ViewState) {
	s := utils.CurrentSession(c)
	view, err := s.Appointments.LoadView(c.Request.Context(), state)
	if err != nil {
		respondError(c, err)
		return
	}
	view.DayLabel = dates.RelativeDay(state.SelectedDate, time.Now())
	c.JSON(http.StatusOK, view)
}

// GetAppointmentPermissions evaluates the user's permissions in general,
// or on one appointment when ?appointment= is given.
func GetAppointmentPermissions(c *gin.Context) {
	var id models.ID
	if raw := c.Query("appointment"); raw != "" {
		parsed, err := models.ParseID(raw)
		if err != nil {
			utils.RespondWithError(c, http.StatusNotFound, "Rendez-vous introuvable")
			return
		}
		id = parsed
	}
	s := utils.CurrentSession(c)
	perms, actions, err := s.Appointments.Permissions(c.Request.Context(), id)
	if err != nil {
		respondNotFoundOr(c, err, "Rendez-vous introuvable")
		return
	}
	if actions == nil {
		actions = []permissions.Action{}
	}
	c.JSON(http.StatusOK, gin.H{"permissions": perms, "actions": actions})
}

func CreateAppointment(c *gin.Context) {
	var input models.NewAppointment
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Rendez-vous invalide")
		return
	}
	s := utils.CurrentSession(c)
	res, err := s.Appointments.Create(c.Request.Context(), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusCreated, res)
}

func GetAppointment(c *gin.Context) {
	id, ok := appointmentID(c)
	if !ok {
		return
	}
	s := utils.CurrentSession(c)
	apt, err := s.Appointments.Get(c.Request.Context(), id)
	if err != nil {
		respondNotFoundOr(c, err, "Rendez-vous introuvable")
		return
	}
	perms := permissions.Evaluate(s.Auth.User(), apt)
	c.JSON(http.StatusOK, gin.H{
		"appointment": apt,
		"permissions": perms,
		"actions":     appointments.AvailableActions(perms, apt),
	})
}

// appointmentAction adapts a one-step action of the manager to a handler.
func appointmentAction(run func(m *appointments.Manager, ctx context.Context, id models.ID) (*appointments.Result, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, ok := appointmentID(c)
		if !ok {
			return
		}
		s := utils.CurrentSession(c)
		res, err := run(s.Appointments, c.Request.Context(), id)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, res)
	}
}

var (
	ConfirmAppointment  = appointmentAction((*appointments.Manager).Confirm)
	StartAppointment    = appointmentAction((*appointments.Manager).Start)
	CompleteAppointment = appointmentAction((*appointments.Manager).Complete)
	CancelAppointment   = appointmentAction((*appointments.Manager).Cancel)
	DeleteAppointment   = appointmentAction((*appointments.Manager).Delete)
)

func RescheduleAppointment(c *gin.Context) {
	id, ok := appointmentID(c)
	if !ok {
		return
	}
	var input RescheduleInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithToast(c, http.StatusBadRequest, "Erreur", "Date et heure requises")
		return
	}
	s := utils.CurrentSession(c)
	res, err := s.Appointments.Reschedule(c.Request.Context(), id, input.Date, input.StartTime)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func MoveAppointment(c *gin.Context) {
	id, ok := appointmentID(c)
	if !ok {
		return
	}
	var input MoveInput
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithToast(c, http.StatusBadRequest, "Erreur", "Coiffeur requis")
		return
	}
	s := utils.CurrentSession(c)
	res, err := s.Appointments.Move(c.Request.Context(), id, input.EmployeeID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func GetMoveCandidates(c *gin.Context) {
	id, ok := appointmentID(c)
	if !ok {
		return
	}
	s := utils.CurrentSession(c)
	employees, err := s.Appointments.MoveCandidates(c.Request.Context(), id)
	if err != nil {
		respondNotFoundOr(c, err, "Rendez-vous introuvable")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": employees})
}

func appointmentID(c *gin.Context) (models.ID, bool) {
	id, err := models.ParseID(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusNotFound, "Rendez-vous introuvable")
		return 0, false
	}
	return id, true
}

// NotificationHistory lists the messages sent about an appointment.
type NotificationHistory interface {
	History(ctx context.Context, appointmentID models.ID) ([]models.NotificationLog, error)
}

type NotificationController struct {
	Notifications NotificationHistory
}

func (nc NotificationController) GetAppointmentNotifications(c *gin.Context) {
	id, ok := appointmentID(c)
	if !ok {
		return
	}
	s := utils.CurrentSession(c)
	if _, err := s.Appointments.Get(c.Request.Context(), id); err != nil {
		respondNotFoundOr(c, err, "Rendez-vous introuvable")
		return
	}
	logs, err := nc.Notifications.History(c.Request.Context(), id)
	if err != nil {
		utils.RespondWithError(c, http.StatusInternalServerError, "Historique indisponible")
		return
	}
	c.JSON(http.StatusOK, gin.H{"results": logs})
}
