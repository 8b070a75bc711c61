package dto

import (
	"encoding/json"
	"time"
)

type JobCreateDTO struct {
	UserID      string          `json:"user_id" validate:"required"`
	Type        string          `json:"type" validate:"required"`
	Payload     json.RawMessage `json:"payload" validate:"required"`
	MaxAttempts int             `json:"max_attempts" validate:"gte=0,lte=20"`
	Priority    int             `json:"priority" validate:"gte=0,lte=100"`
}

type JobResponseDTO struct {
	ID          uint            `json:"id"`
	UserID      string          `json:"user_id"`
	Type        string          `json:"type"`
	Payload     json.RawMessage `json:"payload"`
	Status      string          `json:"status"`
	Attempts    int             `json:"attempts"`
	MaxAttempts int             `json:"max_attempts"`
	Priority    int             `json:"priority"`
	Result      json.RawMessage `json:"result,omitempty"`
	Error       string          `json:"error,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

type JobCreatedDTO struct {
	ID     uint   `json:"id"`
	Status string `json:"status"`
}
