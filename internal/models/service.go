package models

import "time"

type Service struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Prefix      string    `json:"prefix"`
	StartNumber int       `json:"start_number"`
	Description *string   `json:"description"`
	IsActive    bool      `json:"is_active"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// ServiceWithWait is the kiosk view: the service plus its live estimate.
type ServiceWithWait struct {
	Service
	WaitMinutes int `json:"wait_minutes"`
}

type CreateServiceRequest struct {
	Name        string  `json:"name" validate:"required,max=255"`
	Prefix      string  `json:"prefix" validate:"required,min=1,max=3"`
	StartNumber int     `json:"start_number" validate:"min=0"`
	Description *string `json:"description" validate:"omitempty,max=1000"`
}

type UpdateServiceRequest struct {
	Name        string `json:"name" validate:"omitempty,max=255"`
	Prefix      string `json:"prefix" validate:"omitempty,min=1,max=3"`
	StartNumber *int   `json:"start_number" validate:"omitempty,min=0"`
}
