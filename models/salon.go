package models

// Salon is a tenant of the platform. Every scoped resource carries its id.
type Salon struct {
	ID           ID           `json:"id"`
	Name         string       `json:"name"`
	Slug         string       `json:"slug,omitempty"`
	Address      string       `json:"address,omitempty"`
	Phone        string       `json:"phone,omitempty"`
	Email        string       `json:"email,omitempty"`
	OpeningHours string       `json:"opening_hours,omitempty"`
	Currency     string       `json:"currency,omitempty"`
	Timezone     string       `json:"timezone,omitempty"`
	Logo         string       `json:"logo,omitempty"`
	PrimaryColor string       `json:"primary_color,omitempty"`
	Theme        *TenantTheme `json:"theme,omitempty"`
	IsActive     bool         `json:"is_active"`
	CreatedAt    string       `json:"created_at,omitempty"`
	UpdatedAt    string       `json:"updated_at,omitempty"`
}

// OpeningHour is one day of a salon's advanced opening schedule.
type OpeningHour struct {
	ID               ID     `json:"id"`
	Salon            ID     `json:"salon"`
	DayOfWeek        int    `json:"day_of_week"`
	DayOfWeekDisplay string `json:"day_of_week_display,omitempty"`
	OpenTime         string `json:"open_time"`
	CloseTime        string `json:"close_time"`
	IsClosed         bool   `json:"is_closed"`
}
