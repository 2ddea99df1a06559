package appointments

import (
	"fmt"

	"salonpro-gateway/dates"
	"salonpro-gateway/models"
)

const (
	firstSlotMinutes = 8 * 60
	lastSlotMinutes  = 18*60 + 30
	slotStep         = 30
)

// TimeSlots returns the calendar rows: every half hour from 08:00 to 18:30.
func TimeSlots() []string {
	var slots []string
	for m := firstSlotMinutes; m <= lastSlotMinutes; m += slotStep {
		slots = append(slots, fmt.Sprintf("%02d:%02d", m/60, m%60))
	}
	return slots
}

type Cell struct {
	Time        string              `json:"time"`
	Appointment *models.Appointment `json:"appointment"`
}

type Column struct {
	Employee models.Employee `json:"employee"`
	Cells    []Cell          `json:"cells"`
}

// Grid is the calendar of one day: a column per coiffeur, a cell per slot.
type Grid struct {
	Date    string   `json:"date"`
	Slots   []string `json:"slots"`
	Columns []Column `json:"columns"`
}

// Coiffeurs returns the employees shown as calendar columns: every
// COIFFEUR, or only the selected one.
func Coiffeurs(employees []models.Employee, selected string) []models.Employee {
	out := make([]models.Employee, 0, len(employees))
	for _, e := range employees {
		if e.Role != models.RoleCoiffeur {
			continue
		}
		if selected != "" && selected != FilterAll && e.ID.String() != selected {
			continue
		}
		out = append(out, e)
	}
	return out
}

// BuildGrid places filtered appointments into the calendar. A cell holds
// the first appointment whose employee and start time match exactly;
// overlaps are the API's concern.
func BuildGrid(filtered []models.Appointment, employees []models.Employee, state ViewState) Grid {
	type slotKey struct {
		employee models.ID
		time     string
	}
	index := make(map[slotKey]int, len(filtered))
	for i, apt := range filtered {
		start, err := dates.NormalizeClock(apt.StartTime)
		if err != nil {
			continue
		}
		k := slotKey{apt.Employee, start}
		if _, taken := index[k]; !taken {
			index[k] = i
		}
	}

	slots := TimeSlots()
	grid := Grid{Date: state.SelectedDate, Slots: slots}
	for _, e := range Coiffeurs(employees, state.SelectedEmployee) {
		col := Column{Employee: e, Cells: make([]Cell, len(slots))}
		for j, slot := range slots {
			col.Cells[j].Time = slot
			if i, ok := index[slotKey{e.ID, slot}]; ok {
				apt := filtered[i]
				col.Cells[j].Appointment = &apt
			}
		}
		grid.Columns = append(grid.Columns, col)
	}
	return grid
}

// MoveCandidates lists the coiffeurs an appointment can be moved to.
func MoveCandidates(apt *models.Appointment, employees []models.Employee) []models.Employee {
	out := make([]models.Employee, 0, len(employees))
	for _, e := range employees {
		if e.Role == models.RoleCoiffeur && e.ID != apt.Employee {
			out = append(out, e)
		}
	}
	return out
}
