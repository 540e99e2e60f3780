package events

import "time"

// Envelope is the canonical event shape published on the bus.
// Payload carries the event-specific body; EntityID is the operation record
// id so consumers can correlate with the ledger.
type Envelope struct {
	EventID        string    `json:"event_id"`
	EventType      string    `json:"event_type"`
	SourceService  string    `json:"source_service"`
	OccurredAtUTC  time.Time `json:"occurred_at_utc"`
	EntityType     string    `json:"entity_type"`
	EntityID       string    `json:"entity_id"`
	PayloadVersion int       `json:"payload_version"`
	Payload        any       `json:"payload"`
}

const (
	TypeOperationOpened    = "treasury.operation.opened"
	TypeOperationCompleted = "treasury.operation.completed"
)
