package ports

import (
	"context"
	"time"

	"seneschal/contexts/treasury-core/distribution-engine/domain/entities"
	ledgerentities "seneschal/contexts/treasury-core/operation-ledger/domain/entities"
	ledgerports "seneschal/contexts/treasury-core/operation-ledger/ports"

	"github.com/shopspring/decimal"
)

// Ledger is the slice of the operation ledger the engine drives: open a
// processing record, close it exactly once with the full outcome sequence,
// and record standalone commentary.
type Ledger interface {
	Open(ctx context.Context, input ledgerports.OpenInput) (ledgerentities.OperationRecord, error)
	CloseDistribution(ctx context.Context, recordID string, outcomes []ledgerentities.RecipientOutcome) (ledgerentities.OperationRecord, error)
	Annotate(ctx context.Context, input ledgerports.AnnotateInput) (ledgerentities.AuditEntry, error)
}

// TransferRequest moves Amount from the treasury wallet to Destination.
// An empty AssetID means the native settlement asset.
type TransferRequest struct {
	SourceKey   string
	Destination string
	AssetID     string
	Amount      decimal.Decimal
}

// TransferGateway submits one transfer to the ledger network. The returned
// string is the settlement signature; a non-nil error is recorded as the
// recipient's failure and never aborts the batch. Implementations bound
// each call so a stuck transfer cannot stall the batch.
type TransferGateway interface {
	Transfer(ctx context.Context, req TransferRequest) (string, error)
}

type Holder struct {
	Address string
	Balance decimal.Decimal
}

type HolderSource interface {
	ListHolders(ctx context.Context, assetID string) ([]Holder, error)
}

type SnapshotRepository interface {
	CreateSnapshot(ctx context.Context, snapshot entities.HolderSnapshot) error
	GetSnapshot(ctx context.Context, snapshotID string) (entities.HolderSnapshot, error)
}

// Pacer spaces consecutive gateway calls. Pacing is a resource-sharing
// policy for the shared network endpoint, never a correctness requirement:
// recipient order and attempt count do not depend on it.
type Pacer interface {
	Pace(ctx context.Context)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// TreasuryIdentity is the wallet/asset pair this process operates, resolved
// once from configuration and passed in explicitly.
type TreasuryIdentity struct {
	WalletKey     string
	WalletAddress string
	AssetID       string
}

// Recommendation is the advisory service's proposed action: an action tag,
// an optional amount, and free-text rationale. The engine consumes nothing
// else from the advisor.
type Recommendation struct {
	Action    string
	Amount    decimal.Decimal
	Rationale string
}

type Advisor interface {
	NextAction(ctx context.Context, assetID string) (Recommendation, error)
}
