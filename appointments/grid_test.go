package appointments

import (
	"testing"

	"salonpro-gateway/models"
)

var staff = []models.Employee{
	{ID: 1, FirstName: "Koffi", Role: models.RoleCoiffeur},
	{ID: 2, FirstName: "Mariam", Role: models.RoleCoiffeur},
	{ID: 3, FirstName: "Fatou", Role: models.RoleReceptionniste},
}

func TestTimeSlots(t *testing.T) {
	slots := TimeSlots()
	if len(slots) != 22 || slots[0] != "08:00" || slots[1] != "08:30" || slots[len(slots)-1] != "18:30" {
		t.Fatalf("unexpected slots %v", slots)
	}
}

func TestBuildGrid(t *testing.T) {
	apts, clients := sampleDay()
	state := stateFor("2024-05-02")
	filtered := Filter(apts, clients, state)
	// a second booking on the same slot is not shown
	filtered = append(filtered, models.Appointment{ID: 9, Employee: 1, Date: "2024-05-02", StartTime: "09:00"})

	grid := BuildGrid(filtered, staff, state)
	if len(grid.Columns) != 2 {
		t.Fatalf("expected one column per coiffeur, got %d", len(grid.Columns))
	}
	cell := func(col int, slot string) *models.Appointment {
		for _, c := range grid.Columns[col].Cells {
			if c.Time == slot {
				return c.Appointment
			}
		}
		t.Fatalf("slot %s missing", slot)
		return nil
	}
	if apt := cell(0, "09:00"); apt == nil || apt.ID != 1 {
		t.Fatalf("expected appointment 1 at 09:00 with seconds normalized, got %+v", apt)
	}
	if apt := cell(1, "10:30"); apt == nil || apt.ID != 2 {
		t.Fatalf("expected appointment 2 at 10:30, got %+v", apt)
	}
	if apt := cell(0, "09:30"); apt != nil {
		t.Fatalf("expected empty cell, got %+v", apt)
	}

	state.SelectedEmployee = "2"
	if grid := BuildGrid(filtered, staff, state); len(grid.Columns) != 1 || grid.Columns[0].Employee.ID != 2 {
		t.Fatalf("expected only the selected coiffeur")
	}
}

func TestMoveCandidatesExcludeAssigneeAndNonCoiffeurs(t *testing.T) {
	got := MoveCandidates(&models.Appointment{Employee: 1}, staff)
	if len(got) != 1 || got[0].ID != 2 {
		t.Fatalf("expected only Mariam, got %+v", got)
	}
}
