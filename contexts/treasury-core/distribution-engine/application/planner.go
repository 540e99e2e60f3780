package application

import (
	"context"
	"strings"

	"seneschal/contexts/treasury-core/distribution-engine/domain/entities"
	domainerrors "seneschal/contexts/treasury-core/distribution-engine/domain/errors"

	"github.com/shopspring/decimal"
)

// allocationPrecision bounds per-recipient amounts to the ledger network's
// base-unit resolution.
const allocationPrecision = 9

var oneHundred = decimal.NewFromInt(100)

// CaptureSnapshot reads the current holder list and persists it as an
// immutable snapshot. Percentages are computed here, rounded to 4 places.
func (s Service) CaptureSnapshot(ctx context.Context, assetID string) (entities.HolderSnapshot, error) {
	logger := ResolveLogger(s.Logger)
	assetID = strings.TrimSpace(assetID)
	if assetID == "" {
		assetID = strings.TrimSpace(s.Identity.AssetID)
	}
	if assetID == "" {
		return entities.HolderSnapshot{}, domainerrors.ErrInvalidDistribution
	}

	holders, err := s.Holders.ListHolders(ctx, assetID)
	if err != nil {
		logger.Warn("holder listing failed",
			"event", "snapshot_holder_listing_failed",
			"module", "treasury-core/distribution-engine",
			"layer", "application",
			"asset_id", assetID,
			"error", err.Error(),
		)
		return entities.HolderSnapshot{}, err
	}
	if len(holders) == 0 {
		return entities.HolderSnapshot{}, domainerrors.ErrEmptySnapshot
	}

	total := decimal.Zero
	for _, holder := range holders {
		total = total.Add(holder.Balance)
	}
	if !total.IsPositive() {
		return entities.HolderSnapshot{}, domainerrors.ErrEmptySnapshot
	}

	snapshotID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.HolderSnapshot{}, err
	}
	snapshot := entities.HolderSnapshot{
		ID:          snapshotID,
		AssetID:     assetID,
		Holders:     make([]entities.SnapshotHolder, 0, len(holders)),
		HolderCount: len(holders),
		TotalHeld:   total,
		CapturedAt:  s.Clock.Now().UTC(),
	}
	for _, holder := range holders {
		snapshot.Holders = append(snapshot.Holders, entities.SnapshotHolder{
			Address:    holder.Address,
			Balance:    holder.Balance,
			Percentage: holder.Balance.Div(total).Mul(oneHundred).Round(4),
		})
	}
	if err := s.Snapshots.CreateSnapshot(ctx, snapshot); err != nil {
		return entities.HolderSnapshot{}, err
	}
	logger.Info("holder snapshot captured",
		"event", "holder_snapshot_captured",
		"module", "treasury-core/distribution-engine",
		"layer", "application",
		"snapshot_id", snapshot.ID,
		"asset_id", assetID,
		"holder_count", snapshot.HolderCount,
		"total_held", total.String(),
	)
	return snapshot, nil
}

// PlanProportional allocates total across snapshot holders by their share of
// the captured supply. Every holder but the last gets a truncated
// proportional share; the last holder gets the exact remainder, so the
// allocations always sum to total with no rounding loss.
func PlanProportional(snapshot entities.HolderSnapshot, total decimal.Decimal) ([]entities.Recipient, error) {
	if !total.IsPositive() {
		return nil, domainerrors.ErrInvalidDistribution
	}
	holders := make([]entities.SnapshotHolder, 0, len(snapshot.Holders))
	for _, holder := range snapshot.Holders {
		if holder.Balance.IsPositive() {
			holders = append(holders, holder)
		}
	}
	if len(holders) == 0 || !snapshot.TotalHeld.IsPositive() {
		return nil, domainerrors.ErrEmptySnapshot
	}

	recipients := make([]entities.Recipient, 0, len(holders))
	allocated := decimal.Zero
	for _, holder := range holders[:len(holders)-1] {
		share := total.Mul(holder.Balance).Div(snapshot.TotalHeld).Truncate(allocationPrecision)
		// A share below base-unit resolution truncates to zero; the holder
		// receives nothing and the residue folds into the remainder.
		if share.IsZero() {
			continue
		}
		recipients = append(recipients, entities.Recipient{
			Address: holder.Address,
			Amount:  share,
		})
		allocated = allocated.Add(share)
	}
	recipients = append(recipients, entities.Recipient{
		Address: holders[len(holders)-1].Address,
		Amount:  total.Sub(allocated),
	})
	return recipients, nil
}

type HoldersDistributeInput struct {
	Kind       entities.DistributionKind
	AssetID    string
	Total      decimal.Decimal
	Reason     string
	SnapshotID string
}

// DistributeToHolders plans a proportional distribution from a holder
// snapshot (captured fresh unless SnapshotID names an existing one) and
// executes it.
func (s Service) DistributeToHolders(ctx context.Context, input HoldersDistributeInput) (DistributeResult, error) {
	var snapshot entities.HolderSnapshot
	var err error
	if snapshotID := strings.TrimSpace(input.SnapshotID); snapshotID != "" {
		snapshot, err = s.Snapshots.GetSnapshot(ctx, snapshotID)
	} else {
		snapshot, err = s.CaptureSnapshot(ctx, input.AssetID)
	}
	if err != nil {
		return DistributeResult{}, err
	}

	recipients, err := PlanProportional(snapshot, input.Total)
	if err != nil {
		return DistributeResult{}, err
	}
	return s.Distribute(ctx, DistributeInput{
		Kind:       input.Kind,
		AssetID:    snapshot.AssetID,
		Recipients: recipients,
		Reason:     input.Reason,
	})
}

func (s Service) GetSnapshot(ctx context.Context, snapshotID string) (entities.HolderSnapshot, error) {
	return s.Snapshots.GetSnapshot(ctx, strings.TrimSpace(snapshotID))
}
