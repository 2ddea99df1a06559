package controllers

import (
	"context"
	"net/http"
	"net/url"
	"time"

	"github.com/gin-gonic/gin"

	"salonpro-gateway/apiclient"
	"salonpro-gateway/appointments"
	"salonpro-gateway/cache"
	"salonpro-gateway/models"
	"salonpro-gateway/session"
	"salonpro-gateway/utils"
)

// OpeningHoursStaleTime is how long opening hours are served from cache.
const OpeningHoursStaleTime = 10 * time.Minute

// listFilters are the query parameters passed through to the API.
var listFilters = []string{"search", "role", "status", "category", "is_active", "is_available", "date", "client", "employee", "payment_method", "ordering", "page"}

// scopedList serves a salon-scoped list. Without an active salon the list
// is empty and flagged as disabled. Unfiltered lists are cached under the
// keys the appointments page uses.
func scopedList[T any](c *gin.Context, resource string, fetch func(api *apiclient.Client, ctx context.Context, salonID models.ID, q url.Values) (apiclient.Page[T], error)) {
	s := utils.CurrentSession(c)
	salon, err := s.Tenant.Salon()
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"count": 0, "results": []T{}, "disabled": true})
		return
	}

	q := url.Values{}
	for _, f := range listFilters {
		if v := c.Query(f); v != "" {
			q.Set(f, v)
		}
	}

	ctx := c.Request.Context()
	if len(q) > 0 {
		page, err := fetch(s.API, ctx, salon.ID, q)
		if err != nil {
			respondError(c, err)
			return
		}
		c.JSON(http.StatusOK, listResponse(page))
		return
	}

	items, err := cache.Get(ctx, s.Cache, cache.Key(resource, salon.ID), cache.Options{StaleTime: appointments.ListStaleTime},
		func(ctx context.Context) ([]T, error) {
			page, err := fetch(s.API, ctx, salon.ID, nil)
			return page.Results, err
		})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, listResponse(apiclient.Page[T]{Results: items, Count: len(items)}))
}

// scopedGet serves one resource by id, answering 404 with notFound when it
// is gone or belongs to another salon.
func scopedGet[T any](c *gin.Context, resource, notFound string, salonOf func(*T) models.ID, fetch func(api *apiclient.Client, ctx context.Context, id models.ID) (*T, error)) {
	id, err := models.ParseID(c.Param("id"))
	if err != nil {
		utils.RespondWithError(c, http.StatusNotFound, notFound)
		return
	}
	s := utils.CurrentSession(c)
	salon, err := s.Tenant.Salon()
	if err != nil {
		respondError(c, err)
		return
	}

	item, err := cache.Get(c.Request.Context(), s.Cache, cache.Key(resource, salon.ID, id), cache.Options{StaleTime: appointments.ListStaleTime},
		func(ctx context.Context) (*T, error) {
			return fetch(s.API, ctx, id)
		})
	if err != nil {
		respondNotFoundOr(c, err, notFound)
		return
	}
	if owner := salonOf(item); !owner.IsZero() && owner != salon.ID {
		utils.RespondWithError(c, http.StatusNotFound, notFound)
		return
	}
	c.JSON(http.StatusOK, item)
}

func GetClients(c *gin.Context) {
	scopedList(c, "clients", (*apiclient.Client).ListClients)
}

func GetClient(c *gin.Context) {
	scopedGet(c, "clients", "Client introuvable", func(v *models.Client) models.ID { return v.Salon }, (*apiclient.Client).GetClient)
}

func GetEmployees(c *gin.Context) {
	scopedList(c, "employees", (*apiclient.Client).ListEmployees)
}

func GetEmployee(c *gin.Context) {
	scopedGet(c, "employees", "Employé introuvable", func(v *models.Employee) models.ID { return v.Salon }, (*apiclient.Client).GetEmployee)
}

func GetServices(c *gin.Context) {
	scopedList(c, "services", (*apiclient.Client).ListServices)
}

func GetService(c *gin.Context) {
	scopedGet(c, "services", "Service introuvable", func(v *models.Service) models.ID { return v.Salon }, (*apiclient.Client).GetService)
}

func GetCategories(c *gin.Context) {
	scopedList(c, "categories", (*apiclient.Client).ListCategories)
}

func GetPayments(c *gin.Context) {
	scopedList(c, "payments", (*apiclient.Client).ListPayments)
}

func GetPayment(c *gin.Context) {
	scopedGet(c, "payments", "Paiement introuvable", func(v *models.Payment) models.ID { return v.Salon }, (*apiclient.Client).GetPayment)
}

// GetOpeningHours never fails: on error the last known hours are served,
// or none at all.
func GetOpeningHours(c *gin.Context) {
	s := utils.CurrentSession(c)
	salon, err := s.Tenant.Salon()
	if err != nil {
		c.JSON(http.StatusOK, gin.H{"results": []models.OpeningHour{}})
		return
	}
	hours, err := openingHours(c.Request.Context(), s, salon.ID)
	if err != nil {
		c.Error(err)
		hours = []models.OpeningHour{}
	}
	c.JSON(http.StatusOK, gin.H{"results": hours})
}

func openingHours(ctx context.Context, s *session.Session, salonID models.ID) ([]models.OpeningHour, error) {
	return cache.Get(ctx, s.Cache, cache.Key("opening-hours", salonID),
		cache.Options{StaleTime: OpeningHoursStaleTime, KeepPreviousOnError: true},
		func(ctx context.Context) ([]models.OpeningHour, error) {
			page, err := s.API.ListOpeningHours(ctx, salonID)
			return page.Results, err
		})
}
