package entities

import (
	"time"

	"github.com/shopspring/decimal"
)

type DistributionKind string

const (
	// KindNativeAsset distributes the settlement-layer currency.
	KindNativeAsset DistributionKind = "native"
	// KindManagedAsset distributes the managed token and requires an asset id.
	KindManagedAsset DistributionKind = "managed"
)

func (k DistributionKind) Valid() bool {
	switch k {
	case KindNativeAsset, KindManagedAsset:
		return true
	default:
		return false
	}
}

// Recipient is one planned transfer inside a distribution.
type Recipient struct {
	Address string
	Amount  decimal.Decimal
}

// SnapshotHolder is one holder row at capture time. Percentage is the
// holder's share of the captured supply, rounded to 4 decimal places.
type SnapshotHolder struct {
	Address    string          `json:"address"`
	Balance    decimal.Decimal `json:"balance"`
	Percentage decimal.Decimal `json:"percentage"`
}

// HolderSnapshot is a point-in-time capture of asset holders. Immutable once
// created; only ever read as planning input.
type HolderSnapshot struct {
	ID          string
	AssetID     string
	Holders     []SnapshotHolder
	HolderCount int
	TotalHeld   decimal.Decimal
	CapturedAt  time.Time
}
