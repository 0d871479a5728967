package models

import (
	"time"
)

// EventKind categorizes audit-trail events. The event log is generic:
// kinds span both failure categories and success categories.
type EventKind string

const (
	// Fatal kinds - abort the run after being logged
	EventConnectionFailed EventKind = "CONNECTION_FAILED"
	EventDiscoveryEmpty   EventKind = "DISCOVERY_EMPTY"

	// Non-fatal kinds - isolated to the current item
	EventExtractFailed  EventKind = "EXTRACT_FAILED"
	EventAuthFailed     EventKind = "AUTH_FAILED"
	EventAnalysisFailed EventKind = "ANALYSIS_FAILED"
	EventPersistFailed  EventKind = "PERSIST_FAILED"

	// Success and informational kinds
	EventPersisted   EventKind = "PERSISTED"
	EventNoArticles  EventKind = "NO_ARTICLES"
	EventSkippedItem EventKind = "SKIPPED_ITEM"
)

// Event is one append-only audit record. Events are never updated or
// deleted; they exist purely as a debugging trail.
type Event struct {
	ID          string    `json:"id"`
	Kind        EventKind `json:"kind"`
	Details     string    `json:"details"`
	RelatedItem string    `json:"related_item"`
	Timestamp   time.Time `json:"timestamp"`
}
