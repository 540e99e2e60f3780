package application

import (
	"context"
	"log/slog"
	"strings"

	"seneschal/contexts/treasury-core/distribution-engine/domain/entities"
	domainerrors "seneschal/contexts/treasury-core/distribution-engine/domain/errors"
	"seneschal/contexts/treasury-core/distribution-engine/ports"
	ledgerentities "seneschal/contexts/treasury-core/operation-ledger/domain/entities"
	ledgerports "seneschal/contexts/treasury-core/operation-ledger/ports"

	"github.com/shopspring/decimal"
)

// Service executes one-to-many distributions. Recipients are processed
// sequentially in request order: all transfers leave the same treasury
// wallet, and the ledger network orders its transactions per source, so
// parallel submission risks conflicting or dropped transactions.
type Service struct {
	Ledger    ports.Ledger
	Gateway   ports.TransferGateway
	Holders   ports.HolderSource
	Snapshots ports.SnapshotRepository
	Pacer     ports.Pacer
	Clock     ports.Clock
	IDGen     ports.IDGenerator
	Identity  ports.TreasuryIdentity
	Logger    *slog.Logger
}

type DistributeInput struct {
	Kind       entities.DistributionKind
	AssetID    string
	Recipients []entities.Recipient
	Reason     string
}

type DistributeResult struct {
	Record       ledgerentities.OperationRecord
	SuccessCount int
	FailCount    int
}

// Distribute runs the batch. Validation happens before any ledger write, so
// a rejected request leaves no record behind. After the record is opened the
// batch always runs every recipient and closes exactly once.
func (s Service) Distribute(ctx context.Context, input DistributeInput) (DistributeResult, error) {
	logger := ResolveLogger(s.Logger)

	assetID, err := s.validateDistribute(input)
	if err != nil {
		logger.Warn("distribution rejected",
			"event", "distribution_rejected",
			"module", "treasury-core/distribution-engine",
			"layer", "application",
			"kind", string(input.Kind),
			"recipient_count", len(input.Recipients),
			"error", err.Error(),
		)
		return DistributeResult{}, err
	}

	// Total is computed here, never supplied by the caller, so the record's
	// quantity always matches the outcome amounts exactly.
	total := decimal.Zero
	for _, recipient := range input.Recipients {
		total = total.Add(recipient.Amount)
	}

	record, err := s.Ledger.Open(ctx, ledgerports.OpenInput{
		Kind:           ledgerentities.KindDistribution,
		AssetID:        assetID,
		Quantity:       total,
		Reason:         input.Reason,
		RecipientCount: len(input.Recipients),
	})
	if err != nil {
		return DistributeResult{}, err
	}
	logger.Info("distribution started",
		"event", "distribution_started",
		"module", "treasury-core/distribution-engine",
		"layer", "application",
		"record_id", record.ID,
		"kind", string(input.Kind),
		"asset_id", assetID,
		"recipient_count", len(input.Recipients),
		"total_quantity", total.String(),
	)

	transferAssetID := ""
	if input.Kind == entities.KindManagedAsset {
		transferAssetID = assetID
	}

	outcomes := make([]ledgerentities.RecipientOutcome, 0, len(input.Recipients))
	succeeded := 0
	for i, recipient := range input.Recipients {
		if i > 0 && s.Pacer != nil {
			s.Pacer.Pace(ctx)
		}
		outcome := ledgerentities.RecipientOutcome{
			Address: recipient.Address,
			Amount:  recipient.Amount,
		}
		signature, err := s.Gateway.Transfer(ctx, ports.TransferRequest{
			SourceKey:   s.Identity.WalletKey,
			Destination: recipient.Address,
			AssetID:     transferAssetID,
			Amount:      recipient.Amount,
		})
		if err != nil {
			outcome.Error = err.Error()
			logger.Warn("distribution transfer failed",
				"event", "distribution_transfer_failed",
				"module", "treasury-core/distribution-engine",
				"layer", "application",
				"record_id", record.ID,
				"recipient", recipient.Address,
				"amount", recipient.Amount.String(),
				"error", err.Error(),
			)
		} else {
			outcome.Success = true
			outcome.Signature = signature
			succeeded++
		}
		outcomes = append(outcomes, outcome)
	}

	closed, err := s.Ledger.CloseDistribution(ctx, record.ID, outcomes)
	if err != nil {
		return DistributeResult{}, err
	}
	logger.Info("distribution finished",
		"event", "distribution_finished",
		"module", "treasury-core/distribution-engine",
		"layer", "application",
		"record_id", closed.ID,
		"status", string(closed.Status),
		"succeeded", succeeded,
		"failed", len(outcomes)-succeeded,
	)
	return DistributeResult{
		Record:       closed,
		SuccessCount: succeeded,
		FailCount:    len(outcomes) - succeeded,
	}, nil
}

func (s Service) validateDistribute(input DistributeInput) (string, error) {
	if !input.Kind.Valid() || len(input.Recipients) == 0 {
		return "", domainerrors.ErrInvalidDistribution
	}
	for _, recipient := range input.Recipients {
		if strings.TrimSpace(recipient.Address) == "" || !recipient.Amount.IsPositive() {
			return "", domainerrors.ErrInvalidDistribution
		}
	}
	assetID := strings.TrimSpace(input.AssetID)
	if assetID == "" {
		assetID = strings.TrimSpace(s.Identity.AssetID)
	}
	if input.Kind == entities.KindManagedAsset && assetID == "" {
		return "", domainerrors.ErrInvalidDistribution
	}
	return assetID, nil
}
