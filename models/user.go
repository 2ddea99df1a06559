package models

import "strings"

// Role is the staff role of an authenticated user.
type Role string

const (
	RoleAdmin          Role = "ADMIN"
	RoleCoiffeur       Role = "COIFFEUR"
	RoleReceptionniste Role = "RECEPTIONNISTE"
)

// ParseRole normalizes a role string. Unknown values come back as-is so
// that callers can fail closed on them.
func ParseRole(s string) Role {
	return Role(strings.ToUpper(strings.TrimSpace(s)))
}

// Known reports whether r is one of the three staff roles.
func (r Role) Known() bool {
	switch r {
	case RoleAdmin, RoleCoiffeur, RoleReceptionniste:
		return true
	}
	return false
}

type User struct {
	ID           ID     `json:"id"`
	Email        string `json:"email"`
	FirstName    string `json:"first_name"`
	LastName     string `json:"last_name"`
	Phone        string `json:"phone,omitempty"`
	Role         Role   `json:"role"`
	IsSuperuser  bool   `json:"is_superuser,omitempty"`
	Salon        ID     `json:"salon,omitempty"`
	SalonName    string `json:"salon_name,omitempty"`
	SalonDetails *Salon `json:"salon_details,omitempty"`
	IsActive     bool   `json:"is_active"`
}

func (u *User) FullName() string {
	return strings.TrimSpace(u.FirstName + " " + u.LastName)
}
