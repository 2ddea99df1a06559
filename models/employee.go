package models

type Employee struct {
	ID          ID       `json:"id"`
	Salon       ID       `json:"salon"`
	User        ID       `json:"user,omitempty"`
	Email       string   `json:"email,omitempty"`
	FirstName   string   `json:"first_name"`
	LastName    string   `json:"last_name"`
	FullName    string   `json:"full_name,omitempty"`
	Phone       string   `json:"phone,omitempty"`
	Role        Role     `json:"role"`
	RoleDisplay string   `json:"role_display,omitempty"`
	Color       string   `json:"color,omitempty"`
	Specialties []string `json:"specialties_list,omitempty"`
	IsAvailable bool     `json:"is_available"`
	CreatedAt   string   `json:"created_at,omitempty"`
	UpdatedAt   string   `json:"updated_at,omitempty"`
}

// DisplayName prefers the server-computed full name.
func (e *Employee) DisplayName() string {
	if e.FullName != "" {
		return e.FullName
	}
	return joinName(e.FirstName, e.LastName)
}
