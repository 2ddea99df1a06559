package models

import "github.com/shopspring/decimal"

type AppointmentStatus string

const (
	StatusPending    AppointmentStatus = "PENDING"
	StatusConfirmed  AppointmentStatus = "CONFIRMED"
	StatusInProgress AppointmentStatus = "IN_PROGRESS"
	StatusCompleted  AppointmentStatus = "COMPLETED"
	StatusCancelled  AppointmentStatus = "CANCELLED"
	StatusNoShow     AppointmentStatus = "NO_SHOW"
)

// Terminal statuses are never targeted by a further mutation.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusInProgress, StatusCompleted, StatusCancelled, StatusNoShow:
		return true
	}
	return false
}

// BookingSource is the channel an appointment was booked through.
type BookingSource string

const (
	SourceWebsite  BookingSource = "website"
	SourceWhatsApp BookingSource = "whatsapp"
	SourcePhone    BookingSource = "phone"
	SourceWalkIn   BookingSource = "walk_in"
)

func (s BookingSource) Valid() bool {
	switch s {
	case SourceWebsite, SourceWhatsApp, SourcePhone, SourceWalkIn:
		return true
	}
	return false
}

// Appointment as served by the booking API. EndTime is computed
// server-side from the service duration.
type Appointment struct {
	ID             ID                `json:"id"`
	Salon          ID                `json:"salon"`
	Client         ID                `json:"client"`
	ClientName     string            `json:"client_name,omitempty"`
	Employee       ID                `json:"employee"`
	EmployeeName   string            `json:"employee_name,omitempty"`
	EmployeeUserID *ID               `json:"employee_user_id,omitempty"`
	Service        ID                `json:"service"`
	ServiceName    string            `json:"service_name,omitempty"`
	ServicePrice   *decimal.Decimal  `json:"service_price,omitempty"`
	Date           string            `json:"date"`
	StartTime      string            `json:"start_time"`
	EndTime        string            `json:"end_time,omitempty"`
	Status         AppointmentStatus `json:"status"`
	StatusDisplay  string            `json:"status_display,omitempty"`
	Source         BookingSource     `json:"source,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	CreatedAt      string            `json:"created_at,omitempty"`
	UpdatedAt      string            `json:"updated_at,omitempty"`
}

// NewAppointment is the payload of a staff-side booking.
type NewAppointment struct {
	Salon     ID            `json:"salon"`
	Client    ID            `json:"client"`
	Service   ID            `json:"service"`
	Employee  ID            `json:"employee"`
	Date      string        `json:"date"`
	StartTime string        `json:"start_time"`
	Notes     string        `json:"notes,omitempty"`
	Source    BookingSource `json:"source,omitempty"`
	Status    string        `json:"status,omitempty"`
}

// PublicBooking is the payload of an unauthenticated booking from a
// salon's public site.
type PublicBooking struct {
	SalonSlug     string `json:"salon_slug"`
	ServiceID     ID     `json:"service_id"`
	EmployeeID    ID     `json:"employee_id,omitempty"`
	Date          string `json:"date"`
	Time          string `json:"time"`
	Email         string `json:"email"`
	FirstName     string `json:"first_name"`
	LastName      string `json:"last_name"`
	Phone         string `json:"phone,omitempty"`
	Notes         string `json:"notes,omitempty"`
	PaymentMethod string `json:"payment_method,omitempty"`
}

// AvailableSlots is the public availability answer for one employee/day.
type AvailableSlots struct {
	Date            string   `json:"date"`
	EmployeeID      ID       `json:"employee_id"`
	ServiceDuration int      `json:"service_duration"`
	Slots           []string `json:"slots"`
}
