package models

import "github.com/shopspring/decimal"

// ServiceTarget is the clientele a service is aimed at.
type ServiceTarget string

const (
	TargetHomme        ServiceTarget = "homme"
	TargetFemme        ServiceTarget = "femme"
	TargetEnfantFille  ServiceTarget = "enfant_fille"
	TargetEnfantGarcon ServiceTarget = "enfant_garcon"
)

type Service struct {
	ID              ID              `json:"id"`
	Salon           ID              `json:"salon"`
	Category        ID              `json:"category,omitempty"`
	CategoryName    string          `json:"category_name,omitempty"`
	Name            string          `json:"name"`
	Description     string          `json:"description,omitempty"`
	Duration        int             `json:"duration"` // in minutes
	DurationDisplay string          `json:"duration_display,omitempty"`
	Price           decimal.Decimal `json:"price"`
	Target          ServiceTarget   `json:"target,omitempty"`
	IsActive        bool            `json:"is_active"`
	IsPublished     bool            `json:"is_published"`
	MainImageURL    string          `json:"main_image_url,omitempty"`
}

type ServiceCategory struct {
	ID            ID     `json:"id"`
	Name          string `json:"name"`
	Description   string `json:"description,omitempty"`
	ServicesCount int    `json:"services_count,omitempty"`
}
