package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type OperationStatus string

const (
	StatusPending    OperationStatus = "pending"
	StatusProcessing OperationStatus = "processing"
	StatusSuccess    OperationStatus = "success"
	StatusFailed     OperationStatus = "failed"
	StatusCompleted  OperationStatus = "completed"
	StatusPartial    OperationStatus = "partial"
)

// Terminal reports whether the status permits no further transition.
func (s OperationStatus) Terminal() bool {
	switch s {
	case StatusSuccess, StatusFailed, StatusCompleted, StatusPartial:
		return true
	default:
		return false
	}
}

type OperationKind string

const (
	KindDeployment   OperationKind = "deployment"
	KindBurn         OperationKind = "burn"
	KindBuyback      OperationKind = "buyback"
	KindClaim        OperationKind = "claim"
	KindDistribution OperationKind = "distribution"
)

func (k OperationKind) Valid() bool {
	switch k {
	case KindDeployment, KindBurn, KindBuyback, KindClaim, KindDistribution:
		return true
	default:
		return false
	}
}

// InitialStatus is the opening state for the kind: distributions run through
// processing because they stay open across many gateway calls, everything
// else resolves from pending in a single call.
func (k OperationKind) InitialStatus() OperationStatus {
	if k == KindDistribution {
		return StatusProcessing
	}
	return StatusPending
}

// RecipientOutcome is the result of one transfer attempt inside a
// distribution, kept in original request order.
type RecipientOutcome struct {
	Address   string          `json:"address"`
	Amount    decimal.Decimal `json:"amount"`
	Signature string          `json:"signature,omitempty"`
	Success   bool            `json:"success"`
	Error     string          `json:"error,omitempty"`
}

// OperationRecord is one treasury operation moving through the
// pending/processing -> terminal lifecycle. Quantity is the requested amount
// (for distributions, the total across all recipients). RecipientCount and
// Outcomes are populated for distribution records only; Outcomes is attached
// exactly once, at terminal close.
type OperationRecord struct {
	ID             string
	Kind           OperationKind
	AssetID        string
	Quantity       decimal.Decimal
	Signature      string
	Reason         string
	Error          string
	Status         OperationStatus
	RecipientCount int
	Outcomes       []RecipientOutcome
	CreatedAt      time.Time
	CompletedAt    *time.Time
}

// DeriveAggregateStatus is the canonical terminal-status rule for
// distributions. Zero attempts count as failed.
func DeriveAggregateStatus(succeeded, attempted int) OperationStatus {
	switch {
	case succeeded == 0:
		return StatusFailed
	case succeeded == attempted:
		return StatusCompleted
	default:
		return StatusPartial
	}
}
