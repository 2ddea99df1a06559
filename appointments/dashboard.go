package appointments

import (
	"context"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"salonpro-gateway/dates"
	"salonpro-gateway/models"
)

// Overview is the dashboard summary of one day.
type Overview struct {
	Date              string               `json:"date"`
	Disabled          bool                 `json:"disabled"`
	TodayAppointments int                  `json:"todayAppointments"`
	TodayRevenue      decimal.Decimal      `json:"todayRevenue"`
	TotalClients      int                  `json:"totalClients"`
	ActiveEmployees   int                  `json:"activeEmployees"`
	Stats             Stats                `json:"stats"`
	EmployeeLoad      []EmployeeLoad       `json:"employeeLoad"`
	Upcoming          []models.Appointment `json:"upcoming"`
}

// EmployeeLoad counts one coiffeur's appointments of the day.
type EmployeeLoad struct {
	EmployeeID models.ID `json:"employeeId"`
	Name       string    `json:"name"`
	Count      int       `json:"count"`
}

// upcomingLimit caps the list of next appointments.
const upcomingLimit = 5

// Dashboard summarizes the day of now for the active salon.
func (m *Manager) Dashboard(ctx context.Context, now time.Time) (*Overview, error) {
	state := DefaultViewState(now)
	state.ViewMode = ViewList
	view, err := m.LoadView(ctx, state)
	if err != nil {
		return nil, err
	}
	return Summarize(view, dates.FormatDate(now), now.Format("15:04")), nil
}

// Summarize builds the overview of view's day. Revenue counts the service
// price of every appointment that was not cancelled; upcoming lists the
// open appointments starting at or after clock.
func Summarize(view *View, date, clock string) *Overview {
	o := &Overview{
		Date:         date,
		Disabled:     view.Disabled,
		TodayRevenue: decimal.Zero,
		TotalClients: len(view.Clients),
		Stats:        view.Stats,
		EmployeeLoad: []EmployeeLoad{},
		Upcoming:     []models.Appointment{},
	}

	counts := make(map[models.ID]int)
	var upcoming []models.Appointment
	for _, apt := range view.Appointments {
		if apt.Date != date {
			continue
		}
		o.TodayAppointments++
		counts[apt.Employee]++
		if apt.Status != models.StatusCancelled && apt.ServicePrice != nil {
			o.TodayRevenue = o.TodayRevenue.Add(*apt.ServicePrice)
		}
		if !apt.Status.Terminal() {
			if start, err := dates.NormalizeClock(apt.StartTime); err == nil && start >= clock {
				upcoming = append(upcoming, apt)
			}
		}
	}

	for _, e := range view.Employees {
		if e.IsAvailable {
			o.ActiveEmployees++
		}
		if e.Role != models.RoleCoiffeur && counts[e.ID] == 0 {
			continue
		}
		o.EmployeeLoad = append(o.EmployeeLoad, EmployeeLoad{EmployeeID: e.ID, Name: e.DisplayName(), Count: counts[e.ID]})
	}

	sort.SliceStable(upcoming, func(i, j int) bool {
		a, _ := dates.NormalizeClock(upcoming[i].StartTime)
		b, _ := dates.NormalizeClock(upcoming[j].StartTime)
		return a < b
	})
	if len(upcoming) > upcomingLimit {
		upcoming = upcoming[:upcomingLimit]
	}
	if upcoming != nil {
		o.Upcoming = upcoming
	}
	return o
}
