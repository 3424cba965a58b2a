package models

import "time"

// Token channel types.
const (
	TokenTypePrint = "PRINT"
	TokenTypeSMS   = "SMS"
)

type Token struct {
	ID          int64      `json:"id"`
	Number      int        `json:"number"`
	DisplayID   string     `json:"display_id"`
	Type        string     `json:"type"`
	Phone       *string    `json:"phone"`
	Status      string     `json:"status"`
	Priority    int        `json:"priority"`
	ServiceID   int64      `json:"service_id"`
	CounterID   *int64     `json:"counter_id"`
	StartedAt   *time.Time `json:"started_at"`
	CompletedAt *time.Time `json:"completed_at"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	// Joined fields, populated by list queries.
	ServiceName *string `json:"service_name,omitempty"`
	CounterName *string `json:"counter_name,omitempty"`
}

type CreateTokenRequest struct {
	ServiceID          int64   `json:"service_id" validate:"required"`
	Type               string  `json:"type" validate:"omitempty,oneof=PRINT SMS"`
	Phone              *string `json:"phone" validate:"omitempty,max=32"`
	PriorityAssistance bool    `json:"priority_assistance"`
}

type UpdateTokenStatusRequest struct {
	Status    string `json:"status" validate:"required,oneof=SERVING COMPLETED SKIPPED"`
	CounterID *int64 `json:"counter_id"`
}
