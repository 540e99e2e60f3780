package outbox

import "time"

const (
	StatusPending   = "pending"
	StatusPublished = "published"
)

// Message is an outbox row persisted by the same store that holds operation
// state. The worker relay reads pending rows and publishes them to the bus.
type Message struct {
	ID           string
	EventType    string
	PartitionKey string
	Payload      []byte
	Status       string
	RetryCount   int
	CreatedAt    time.Time
	PublishedAt  *time.Time
}
