// Package appointments holds the appointments page state: the selected
// day and filters, the calendar grid, and the mutations staff run against
// the booking API.
package appointments

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"salonpro-gateway/dates"
	"salonpro-gateway/models"
)

type ViewMode string

const (
	ViewCalendar ViewMode = "calendar"
	ViewList     ViewMode = "list"
)

// FilterAll disables a status, source or employee filter.
const FilterAll = "all"

// ViewState is the page state of one session.
type ViewState struct {
	SelectedDate     string   `json:"selectedDate"`
	ViewMode         ViewMode `json:"viewMode"`
	StatusFilter     string   `json:"statusFilter"`
	SourceFilter     string   `json:"sourceFilter"`
	SearchQuery      string   `json:"searchQuery"`
	SelectedEmployee string   `json:"selectedEmployee"`
}

// DefaultViewState shows today's calendar without filters.
func DefaultViewState(now time.Time) ViewState {
	return ViewState{
		SelectedDate:     dates.FormatDate(now),
		ViewMode:         ViewCalendar,
		StatusFilter:     FilterAll,
		SourceFilter:     FilterAll,
		SelectedEmployee: FilterAll,
	}
}

// StatePatch changes the fields that are set.
type StatePatch struct {
	SelectedDate     *string   `json:"selectedDate"`
	ViewMode         *ViewMode `json:"viewMode"`
	StatusFilter     *string   `json:"statusFilter"`
	SourceFilter     *string   `json:"sourceFilter"`
	SearchQuery      *string   `json:"searchQuery"`
	SelectedEmployee *string   `json:"selectedEmployee"`
}

// Apply validates p and returns the patched state. v is left untouched
// when p is invalid.
func (v ViewState) Apply(p StatePatch) (ViewState, error) {
	next := v
	if p.SelectedDate != nil {
		if _, err := dates.ParseDate(*p.SelectedDate); err != nil {
			return v, err
		}
		next.SelectedDate = *p.SelectedDate
	}
	if p.ViewMode != nil {
		switch *p.ViewMode {
		case ViewCalendar, ViewList:
			next.ViewMode = *p.ViewMode
		default:
			return v, fmt.Errorf("invalid view mode %q", *p.ViewMode)
		}
	}
	if p.StatusFilter != nil {
		s := strings.ToUpper(strings.TrimSpace(*p.StatusFilter))
		if s == "" || strings.EqualFold(s, FilterAll) {
			next.StatusFilter = FilterAll
		} else if models.AppointmentStatus(s).Valid() {
			next.StatusFilter = s
		} else {
			return v, fmt.Errorf("invalid status filter %q", *p.StatusFilter)
		}
	}
	if p.SourceFilter != nil {
		s := strings.ToLower(strings.TrimSpace(*p.SourceFilter))
		if s == "" || s == FilterAll {
			next.SourceFilter = FilterAll
		} else if models.BookingSource(s).Valid() {
			next.SourceFilter = s
		} else {
			return v, fmt.Errorf("invalid source filter %q", *p.SourceFilter)
		}
	}
	if p.SearchQuery != nil {
		next.SearchQuery = *p.SearchQuery
	}
	if p.SelectedEmployee != nil {
		s := strings.TrimSpace(*p.SelectedEmployee)
		if s == "" || s == FilterAll {
			next.SelectedEmployee = FilterAll
		} else if _, err := models.ParseID(s); err == nil {
			next.SelectedEmployee = s
		} else {
			return v, fmt.Errorf("invalid employee filter %q", *p.SelectedEmployee)
		}
	}
	return next, nil
}

// Navigate moves the selected day by days.
func (v ViewState) Navigate(days int) (ViewState, error) {
	date, err := dates.AddDays(v.SelectedDate, days)
	if err != nil {
		return v, err
	}
	v.SelectedDate = date
	return v, nil
}

func (v ViewState) Today(now time.Time) ViewState {
	v.SelectedDate = dates.FormatDate(now)
	return v
}

// StateHolder guards the ViewState of one session.
type StateHolder struct {
	mu    sync.Mutex
	state ViewState
}

func NewStateHolder(now time.Time) *StateHolder {
	return &StateHolder{state: DefaultViewState(now)}
}

func (h *StateHolder) Get() ViewState {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.state
}

// Update applies fn to the state and stores the result unless fn fails.
func (h *StateHolder) Update(fn func(ViewState) (ViewState, error)) (ViewState, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	next, err := fn(h.state)
	if err != nil {
		return h.state, err
	}
	h.state = next
	return next, nil
}

// Filter returns the appointments of the selected day that match the
// status and source filters and whose client name contains the search
// query. The input slice is not modified.
func Filter(apts []models.Appointment, clients []models.Client, state ViewState) []models.Appointment {
	names := make(map[models.ID]string, len(clients))
	for _, c := range clients {
		names[c.ID] = c.DisplayName()
	}
	query := strings.ToLower(strings.TrimSpace(state.SearchQuery))

	out := make([]models.Appointment, 0, len(apts))
	for _, apt := range apts {
		if apt.Date != state.SelectedDate {
			continue
		}
		if state.StatusFilter != "" && state.StatusFilter != FilterAll && string(apt.Status) != state.StatusFilter {
			continue
		}
		if state.SourceFilter != "" && state.SourceFilter != FilterAll && string(apt.Source) != state.SourceFilter {
			continue
		}
		if query != "" {
			name, ok := names[apt.Client]
			if !ok {
				name = apt.ClientName
			}
			if !strings.Contains(strings.ToLower(name), query) {
				continue
			}
		}
		out = append(out, apt)
	}
	return out
}

// Stats counts one day's appointments by status.
type Stats struct {
	Total      int `json:"total"`
	Pending    int `json:"pending"`
	Confirmed  int `json:"confirmed"`
	InProgress int `json:"inProgress"`
	Completed  int `json:"completed"`
	Cancelled  int `json:"cancelled"`
}

func DayStats(apts []models.Appointment, date string) Stats {
	var s Stats
	for _, apt := range apts {
		if apt.Date != date {
			continue
		}
		s.Total++
		switch apt.Status {
		case models.StatusPending:
			s.Pending++
		case models.StatusConfirmed:
			s.Confirmed++
		case models.StatusInProgress:
			s.InProgress++
		case models.StatusCompleted:
			s.Completed++
		case models.StatusCancelled:
			s.Cancelled++
		}
	}
	return s
}
