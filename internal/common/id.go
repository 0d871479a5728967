package common

import (
	"github.com/google/uuid"
)

// NewRunID generates a unique pipeline run ID with the "run_" prefix
func NewRunID() string {
	return "run_" + uuid.New().String()
}

// NewEventID generates a unique event ID with the "evt_" prefix
func NewEventID() string {
	return "evt_" + uuid.New().String()
}
