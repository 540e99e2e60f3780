package ports

import (
	"context"
	"time"

	ledgerentities "seneschal/contexts/treasury-core/operation-ledger/domain/entities"
	ledgerports "seneschal/contexts/treasury-core/operation-ledger/ports"

	"github.com/shopspring/decimal"
)

// OperationGateway is the single-call surface of the ledger network: each
// method submits one operation and returns the settlement signature or an
// error. No state machine lives behind it.
type OperationGateway interface {
	Deploy(ctx context.Context, req DeployRequest) (DeployResult, error)
	Burn(ctx context.Context, req BurnRequest) (string, error)
	Buy(ctx context.Context, req BuyRequest) (string, error)
	Claim(ctx context.Context, req ClaimRequest) (string, error)
	GetBalance(ctx context.Context, address string, assetID string) (decimal.Decimal, error)
}

type DeployRequest struct {
	CreatorKey  string
	Name        string
	Symbol      string
	MetadataURI string
}

type DeployResult struct {
	AssetID   string
	Signature string
}

type BurnRequest struct {
	OwnerKey string
	AssetID  string
	Amount   decimal.Decimal
}

type BuyRequest struct {
	BuyerKey     string
	AssetID      string
	NativeAmount decimal.Decimal
}

type ClaimRequest struct {
	OwnerKey string
	AssetID  string
}

type Ledger interface {
	Open(ctx context.Context, input ledgerports.OpenInput) (ledgerentities.OperationRecord, error)
	Close(ctx context.Context, input ledgerports.CloseInput) (ledgerentities.OperationRecord, error)
}

// TreasuryBalances is the cached view of the treasury wallet. The gateway's
// live read is always authoritative; this exists to spare remote reads.
type TreasuryBalances struct {
	NativeQuantity decimal.Decimal
	AssetQuantity  decimal.Decimal
	RefreshedAt    time.Time
}

type BalanceCache interface {
	Put(ctx context.Context, balances TreasuryBalances) error
	Get(ctx context.Context) (TreasuryBalances, bool, error)
}

type TreasuryIdentity struct {
	WalletKey     string
	WalletAddress string
	AssetID       string
}

type Clock interface {
	Now() time.Time
}

type DeployInput struct {
	Name        string
	Symbol      string
	MetadataURI string
	Reason      string
}

type BurnInput struct {
	AssetID string
	Amount  decimal.Decimal
	Reason  string
}

type BuybackInput struct {
	AssetID      string
	NativeAmount decimal.Decimal
	Reason       string
}

type ClaimInput struct {
	AssetID string
	Reason  string
}

// OperationOutcome mirrors the gateway result plus the ledger record it was
// written to. A failed gateway call is a normal outcome, not a Go error.
type OperationOutcome struct {
	RecordID  string
	AssetID   string
	Success   bool
	Signature string
	Error     string
}
