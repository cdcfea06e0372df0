package models

import "time"

// Event types
const (
	EventTypeSyncRequested = "SYNC_REQUESTED"
	EventTypeSyncCompleted = "SYNC_COMPLETED"
)

// BaseEvent contains common fields for all events
type BaseEvent struct {
	EventID   string    `json:"event_id"`
	EventType string    `json:"event_type"`
	Timestamp time.Time `json:"timestamp"`
}

// SyncRequestedEvent asks the worker to run a sync for a store. Published by
// an external scheduler or the admin backend.
type SyncRequestedEvent struct {
	BaseEvent
	StoreID  int64    `json:"store_id"`
	Entities []string `json:"entities,omitempty"`
}

// SyncCompletedEvent is published after every orchestrator run, successful or
// not, so downstream consumers can react to stock changes.
type SyncCompletedEvent struct {
	BaseEvent
	StoreID              int64  `json:"store_id"`
	ProviderType         string `json:"provider_type"`
	TotalOperations      int    `json:"total_operations"`
	SuccessfulOperations int    `json:"successful_operations"`
	FailedOperations     int    `json:"failed_operations"`
	TotalDuration        int64  `json:"total_duration_ms"`
}
