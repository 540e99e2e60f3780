package entities

import "time"

// AuditEntry records why an operation happened. Entries opened alongside an
// operation carry its OperationID and resolve to the same terminal status;
// standalone commentary entries (no financial operation) leave OperationID
// empty and are created already resolved. Storage enforces no foreign key in
// either direction.
type AuditEntry struct {
	ID          string
	OperationID string
	Kind        OperationKind
	Action      string
	Rationale   string
	Metadata    map[string]string
	Status      OperationStatus
	CreatedAt   time.Time
	ResolvedAt  *time.Time
}
