package controllers

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"salonpro-gateway/apiclient"
	"salonpro-gateway/cache"
	"salonpro-gateway/dates"
	"salonpro-gateway/models"
	"salonpro-gateway/utils"
)

// PublicStaleTime is how long public catalog reads are shared between
// visitors.
const PublicStaleTime = 5 * time.Minute

// PublicController serves the public booking site. Reads are anonymous
// and shared by every visitor through the poller's cache.
type PublicController struct {
	API    *apiclient.Client
	Poller *cache.Poller
}

// publicSlug resolves the salon slug of a public request: from the path
// on /s/:slug routes, from the session's salon on the legacy tree.
func (pc PublicController) publicSlug(c *gin.Context) (string, bool) {
	var provided *models.Salon
	if slug := strings.TrimSpace(c.Param("slug")); slug != "" {
		if !utils.ValidateSlug(slug) {
			utils.RespondWithError(c, http.StatusNotFound, "Salon introuvable")
			return "", false
		}
		provided = &models.Salon{Slug: slug}
	}
	s := utils.CurrentSession(c)
	tc := s.Tenant.ForPublic(c.Request.Context(), provided)
	if tc.Salon == nil || tc.Salon.Slug == "" {
		utils.RespondWithError(c, http.StatusNotFound, "Salon introuvable")
		return "", false
	}
	return tc.Salon.Slug, true
}

func publicList[T any](c *gin.Context, pc PublicController, resource string, fetch func(api *apiclient.Client, ctx context.Context, slug string) (apiclient.Page[T], error)) {
	slug, ok := pc.publicSlug(c)
	if !ok {
		return
	}
	items, err := cache.Get(c.Request.Context(), pc.Poller.Cache(), cache.Key("public", slug, resource), cache.Options{StaleTime: PublicStaleTime},
		func(ctx context.Context) ([]T, error) {
			page, err := fetch(pc.API, ctx, slug)
			return page.Results, err
		})
	if err != nil {
		respondNotFoundOr(c, err, "Salon introuvable")
		return
	}
	c.JSON(http.StatusOK, listResponse(apiclient.Page[T]{Results: items, Count: len(items)}))
}

func (pc PublicController) GetServices(c *gin.Context) {
	publicList(c, pc, "services", (*apiclient.Client).PublicServices)
}

func (pc PublicController) GetCategories(c *gin.Context) {
	publicList(c, pc, "categories", (*apiclient.Client).PublicCategories)
}

func (pc PublicController) GetEmployees(c *gin.Context) {
	publicList(c, pc, "employees", (*apiclient.Client).PublicEmployees)
}

// GetAvailableSlots returns the free start times of one coiffeur on one
// day. Watched slots are refetched in the background while visitors keep
// reading them.
func (pc PublicController) GetAvailableSlots(c *gin.Context) {
	slug, ok := pc.publicSlug(c)
	if !ok {
		return
	}
	employeeID, err := models.ParseID(c.Query("employee_id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Coiffeur requis")
		return
	}
	date := c.Query("date")
	if _, err := dates.ParseDate(date); err != nil {
		utils.RespondWithError(c, http.StatusBadRequest, "Date invalide")
		return
	}
	var serviceID models.ID
	if raw := c.Query("service_id"); raw != "" {
		if serviceID, err = models.ParseID(raw); err != nil {
			utils.RespondWithError(c, http.StatusBadRequest, "Service invalide")
			return
		}
	}

	key := cache.Key("slots", slug, employeeID, date, serviceID)
	slots, err := cache.Watch(c.Request.Context(), pc.Poller, key, cache.Options{StaleTime: cache.SlotsStaleTime},
		func(ctx context.Context) (*models.AvailableSlots, error) {
			return pc.API.AvailableSlots(ctx, slug, employeeID, date, serviceID)
		})
	if err != nil {
		respondError(c, err)
		return
	}
	if slots.Slots == nil {
		out := *slots
		out.Slots = []string{}
		slots = &out
	}
	c.JSON(http.StatusOK, slots)
}

// CreateBooking books an appointment for a visitor. The slots of the salon
// are dropped so the taken time disappears for everyone.
func (pc PublicController) CreateBooking(c *gin.Context) {
	slug, ok := pc.publicSlug(c)
	if !ok {
		return
	}
	var input models.PublicBooking
	if err := c.ShouldBindJSON(&input); err != nil {
		utils.RespondWithToast(c, http.StatusBadRequest, "Erreur", "Réservation invalide")
		return
	}
	input.SalonSlug = slug
	if msg := validateBooking(&input); msg != "" {
		utils.RespondWithToast(c, http.StatusBadRequest, "Erreur", msg)
		return
	}

	apt, err := pc.API.CreatePublicBooking(c.Request.Context(), input)
	pc.Poller.Cache().Invalidate("slots", slug)
	if err != nil {
		utils.RespondWithToast(c, statusOf(err), "Erreur", apiclient.ErrorMessage(err))
		return
	}
	c.JSON(http.StatusCreated, gin.H{
		"message":     "Votre rendez-vous a été enregistré",
		"appointment": apt,
	})
}

func validateBooking(in *models.PublicBooking) string {
	in.FirstName = strings.TrimSpace(in.FirstName)
	in.LastName = strings.TrimSpace(in.LastName)
	in.Email = strings.TrimSpace(in.Email)
	switch {
	case in.ServiceID.IsZero():
		return "Veuillez choisir un service"
	case in.FirstName == "" || in.LastName == "":
		return "Veuillez indiquer votre nom"
	case in.Email == "" && in.Phone == "":
		return "Veuillez indiquer un email ou un téléphone"
	case in.Phone != "" && !utils.ValidatePhone(in.Phone):
		return "Numéro de téléphone invalide"
	}
	if _, err := dates.ParseDate(in.Date); err != nil {
		return "Date invalide"
	}
	clock, err := dates.NormalizeClock(in.Time)
	if err != nil {
		return "Heure invalide"
	}
	in.Time = clock
	return ""
}
