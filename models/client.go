package models

import "strings"

type Client struct {
	ID        ID     `json:"id"`
	Salon     ID     `json:"salon"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	FullName  string `json:"full_name,omitempty"`
	Email     string `json:"email,omitempty"`
	Phone     string `json:"phone,omitempty"`
	Notes     string `json:"notes,omitempty"`
	CreatedAt string `json:"created_at,omitempty"`
	UpdatedAt string `json:"updated_at,omitempty"`
}

// DisplayName prefers the server-computed full name.
func (c *Client) DisplayName() string {
	if c.FullName != "" {
		return c.FullName
	}
	return joinName(c.FirstName, c.LastName)
}

func joinName(first, last string) string {
	return strings.TrimSpace(first + " " + last)
}
