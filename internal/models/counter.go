package models

import "time"

type Counter struct {
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	IsAvailable bool      `json:"is_available"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// CounterWithServices carries the counter's service assignments,
// used by the counter screen to filter which tokens it may call.
type CounterWithServices struct {
	Counter
	Services []Service `json:"services"`
}

type CreateCounterRequest struct {
	Name string `json:"name" validate:"required,max=255"`
}

type UpdateCounterRequest struct {
	Name        string `json:"name" validate:"omitempty,max=255"`
	IsAvailable *bool  `json:"is_available"`
}

type AssignServiceRequest struct {
	ServiceID int64 `json:"service_id" validate:"required"`
}
