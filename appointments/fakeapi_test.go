package appointments

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"sync"
	"testing"

	"salonpro-gateway/apiclient"
	"salonpro-gateway/models"
)

// bookingAPI is an in-memory stand-in for the booking REST API.
type bookingAPI struct {
	mu           sync.Mutex
	nextID       models.ID
	appointments map[models.ID]*models.Appointment
	employees    []models.Employee
	clients      []models.Client
	services     []models.Service

	// salon filter of every list call, by path
	listCalls []string
	// closed to let a blocked confirm answer
	confirmGate chan struct{}
	failAction  string
}

func newBookingAPI() *bookingAPI {
	return &bookingAPI{
		nextID:       100,
		appointments: map[models.ID]*models.Appointment{},
		employees: []models.Employee{
			{ID: 1, Salon: 7, User: 11, FirstName: "Koffi", Role: models.RoleCoiffeur, IsAvailable: true},
			{ID: 2, Salon: 7, User: 12, FirstName: "Mariam", Role: models.RoleCoiffeur, IsAvailable: true},
			{ID: 3, Salon: 7, User: 13, FirstName: "Fatou", Role: models.RoleReceptionniste, IsAvailable: true},
		},
		clients: []models.Client{
			{ID: 21, Salon: 7, FirstName: "Aminata", LastName: "Diallo"},
			{ID: 22, Salon: 7, FirstName: "Jean", LastName: "Kouassi"},
		},
		services: []models.Service{{ID: 31, Salon: 7, Name: "Tresses", Duration: 90}},
	}
}

func (b *bookingAPI) employeeUser(id models.ID) *models.ID {
	for _, e := range b.employees {
		if e.ID == id {
			user := e.User
			return &user
		}
	}
	return nil
}

func (b *bookingAPI) seed(apt models.Appointment) models.Appointment {
	b.mu.Lock()
	defer b.mu.Unlock()
	if apt.ID.IsZero() {
		b.nextID++
		apt.ID = b.nextID
	}
	if apt.Salon.IsZero() {
		apt.Salon = 7
	}
	apt.EmployeeUserID = b.employeeUser(apt.Employee)
	b.appointments[apt.ID] = &apt
	return apt
}

func (b *bookingAPI) get(id models.ID) models.Appointment {
	b.mu.Lock()
	defer b.mu.Unlock()
	return *b.appointments[id]
}

func (b *bookingAPI) calls() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.listCalls...)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func (b *bookingAPI) handler() http.Handler {
	mux := http.NewServeMux()
	record := func(r *http.Request) {
		b.mu.Lock()
		b.listCalls = append(b.listCalls, r.URL.Path+"?salon="+r.URL.Query().Get("salon"))
		b.mu.Unlock()
	}
	mux.HandleFunc("GET /api/v1/appointments/{$}", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		b.mu.Lock()
		defer b.mu.Unlock()
		salon, date := r.URL.Query().Get("salon"), r.URL.Query().Get("date")
		out := []models.Appointment{}
		for _, apt := range b.appointments {
			if apt.Salon.String() == salon && (date == "" || apt.Date == date) {
				out = append(out, *apt)
			}
		}
		sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
		writeJSON(w, http.StatusOK, map[string]any{"count": len(out), "results": out})
	})
	mux.HandleFunc("POST /api/v1/appointments/{$}", func(w http.ResponseWriter, r *http.Request) {
		var in models.NewAppointment
		if err := json.NewDecoder(r.Body).Decode(&in); err != nil {
			writeJSON(w, http.StatusBadRequest, map[string]any{"detail": err.Error()})
			return
		}
		apt := b.seed(models.Appointment{
			Salon: in.Salon, Client: in.Client, Employee: in.Employee, Service: in.Service,
			Date: in.Date, StartTime: in.StartTime + ":00", Status: models.AppointmentStatus(in.Status),
			Source: in.Source, Notes: in.Notes,
		})
		writeJSON(w, http.StatusCreated, apt)
	})
	mux.HandleFunc("GET /api/v1/appointments/{id}/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		apt, ok := b.appointments[pathID(r)]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Pas trouvé."})
			return
		}
		writeJSON(w, http.StatusOK, apt)
	})
	mux.HandleFunc("PATCH /api/v1/appointments/{id}/", func(w http.ResponseWriter, r *http.Request) {
		var fields struct {
			Date      *string    `json:"date"`
			StartTime *string    `json:"start_time"`
			Employee  *models.ID `json:"employee"`
		}
		_ = json.NewDecoder(r.Body).Decode(&fields)
		b.mu.Lock()
		defer b.mu.Unlock()
		apt, ok := b.appointments[pathID(r)]
		if !ok {
			writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Pas trouvé."})
			return
		}
		if fields.Date != nil {
			apt.Date = *fields.Date
		}
		if fields.StartTime != nil {
			apt.StartTime = *fields.StartTime + ":00"
		}
		if fields.Employee != nil {
			apt.Employee = *fields.Employee
			apt.EmployeeUserID = b.employeeUser(apt.Employee)
		}
		writeJSON(w, http.StatusOK, apt)
	})
	mux.HandleFunc("DELETE /api/v1/appointments/{id}/", func(w http.ResponseWriter, r *http.Request) {
		b.mu.Lock()
		delete(b.appointments, pathID(r))
		b.mu.Unlock()
		w.WriteHeader(http.StatusNoContent)
	})
	mux.HandleFunc("POST /api/v1/appointments/{id}/{action}/", func(w http.ResponseWriter, r *http.Request) {
		action := r.PathValue("action")
		if action == "confirm" && b.confirmGate != nil {
			<-b.confirmGate
		}
		if action == b.failAction {
			writeJSON(w, http.StatusBadRequest, map[string]any{"success": false, "error": "Ce créneau n'est pas disponible"})
			return
		}
		next := map[string]models.AppointmentStatus{
			"confirm": models.StatusConfirmed, "start": models.StatusInProgress,
			"complete": models.StatusCompleted, "cancel": models.StatusCancelled,
		}[action]
		b.mu.Lock()
		defer b.mu.Unlock()
		apt, ok := b.appointments[pathID(r)]
		if !ok || next == "" {
			writeJSON(w, http.StatusNotFound, map[string]any{"detail": "Pas trouvé."})
			return
		}
		apt.Status = next
		writeJSON(w, http.StatusOK, map[string]any{"success": true, "message": "ok", "appointment": apt})
	})
	// clients answer a bare array, employees an envelope
	mux.HandleFunc("GET /api/v1/clients/{$}", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		writeJSON(w, http.StatusOK, b.clients)
	})
	mux.HandleFunc("GET /api/v1/employees/{$}", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		writeJSON(w, http.StatusOK, map[string]any{"count": len(b.employees), "results": b.employees})
	})
	mux.HandleFunc("GET /api/v1/services/{$}", func(w http.ResponseWriter, r *http.Request) {
		record(r)
		writeJSON(w, http.StatusOK, b.services)
	})
	return mux
}

func pathID(r *http.Request) models.ID {
	n, _ := strconv.ParseInt(r.PathValue("id"), 10, 64)
	return models.ID(n)
}

func startBookingAPI(t *testing.T) (*bookingAPI, *apiclient.Client) {
	t.Helper()
	b := newBookingAPI()
	srv := httptest.NewServer(b.handler())
	t.Cleanup(srv.Close)
	return b, apiclient.New(fmt.Sprintf("%s/api/v1", srv.URL), srv.Client(), nil)
}
