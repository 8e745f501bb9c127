package model

import "time"

// StatusCheck is a liveness record kept for compatibility with older clients.
type StatusCheck struct {
	ID         string    `json:"id"`
	ClientName string    `json:"client_name"`
	Timestamp  time.Time `json:"timestamp"`
}

// CreateStatusCheckRequest represents a status check submission.
type CreateStatusCheckRequest struct {
	ClientName string `json:"client_name" validate:"required"`
}
