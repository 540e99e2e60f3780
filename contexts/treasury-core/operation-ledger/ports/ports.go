package ports

import (
	"context"
	"time"

	"seneschal/contexts/treasury-core/operation-ledger/domain/entities"
	"seneschal/internal/shared/outbox"

	"github.com/shopspring/decimal"
)

type Repository interface {
	CreateOperation(ctx context.Context, record entities.OperationRecord) error
	UpdateOperation(ctx context.Context, record entities.OperationRecord) error
	GetOperation(ctx context.Context, recordID string) (entities.OperationRecord, error)
	ListOperations(ctx context.Context, filter OperationFilter) ([]entities.OperationRecord, error)
}

type AuditRepository interface {
	CreateAuditEntry(ctx context.Context, entry entities.AuditEntry) error
	UpdateAuditEntry(ctx context.Context, entry entities.AuditEntry) error
	GetAuditEntryByOperation(ctx context.Context, operationID string) (entities.AuditEntry, error)
	ListAuditEntries(ctx context.Context, limit int, offset int) ([]entities.AuditEntry, error)
}

type OutboxWriter interface {
	AppendOutbox(ctx context.Context, message outbox.Message) error
}

type OutboxRepository interface {
	ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error)
	MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// OperationFilter narrows List results. Zero values mean "no constraint";
// Limit defaults to a convenience page size, not a correctness bound.
type OperationFilter struct {
	Kind    entities.OperationKind
	AssetID string
	Limit   int
	Offset  int
}

type OpenInput struct {
	Kind           entities.OperationKind
	AssetID        string
	Quantity       decimal.Decimal
	Reason         string
	RecipientCount int
}

// CloseInput resolves a single-call operation. AssetID, when set, replaces
// the record's asset identifier (deployments learn their asset id only from
// the gateway response).
type CloseInput struct {
	RecordID  string
	Success   bool
	Signature string
	Error     string
	AssetID   string
}

type AnnotateInput struct {
	Kind      entities.OperationKind
	Action    string
	AssetID   string
	Rationale string
	Metadata  map[string]string
}
