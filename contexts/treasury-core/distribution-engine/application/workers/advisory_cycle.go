package workers

import (
	"context"
	"log/slog"
	"strings"

	application "seneschal/contexts/treasury-core/distribution-engine/application"
	"seneschal/contexts/treasury-core/distribution-engine/domain/entities"
	domainerrors "seneschal/contexts/treasury-core/distribution-engine/domain/errors"
	"seneschal/contexts/treasury-core/distribution-engine/ports"
	ledgerentities "seneschal/contexts/treasury-core/operation-ledger/domain/entities"
	ledgerports "seneschal/contexts/treasury-core/operation-ledger/ports"
	treasuryports "seneschal/contexts/treasury-core/treasury-service/ports"
)

// TreasuryOperations is the slice of the treasury service the advisory
// cycle can trigger.
type TreasuryOperations interface {
	Burn(ctx context.Context, input treasuryports.BurnInput) (treasuryports.OperationOutcome, error)
	Buyback(ctx context.Context, input treasuryports.BuybackInput) (treasuryports.OperationOutcome, error)
	ClaimRewards(ctx context.Context, input treasuryports.ClaimInput) (treasuryports.OperationOutcome, error)
}

// AdvisoryCycle asks the advisory service for one recommended action and
// executes it. One invocation, one decision; scheduling lives with the
// caller.
type AdvisoryCycle struct {
	Advisor  ports.Advisor
	Engine   application.Service
	Treasury TreasuryOperations
	Logger   *slog.Logger
}

func (j AdvisoryCycle) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(j.Logger)
	assetID := j.Engine.Identity.AssetID

	recommendation, err := j.Advisor.NextAction(ctx, assetID)
	if err != nil {
		logger.Error("advisory cycle recommendation failed",
			"event", "advisory_cycle_recommendation_failed",
			"module", "treasury-core/distribution-engine",
			"layer", "worker",
			"asset_id", assetID,
			"error", err.Error(),
		)
		return err
	}

	action := strings.ToLower(strings.TrimSpace(recommendation.Action))
	logger.Info("advisory cycle executing",
		"event", "advisory_cycle_executing",
		"module", "treasury-core/distribution-engine",
		"layer", "worker",
		"asset_id", assetID,
		"action", action,
		"amount", recommendation.Amount.String(),
	)

	switch action {
	case "burn":
		_, err = j.Treasury.Burn(ctx, treasuryports.BurnInput{
			AssetID: assetID,
			Amount:  recommendation.Amount,
			Reason:  recommendation.Rationale,
		})
	case "buyback":
		_, err = j.Treasury.Buyback(ctx, treasuryports.BuybackInput{
			AssetID:      assetID,
			NativeAmount: recommendation.Amount,
			Reason:       recommendation.Rationale,
		})
	case "claim":
		_, err = j.Treasury.ClaimRewards(ctx, treasuryports.ClaimInput{
			AssetID: assetID,
			Reason:  recommendation.Rationale,
		})
	case "airdrop":
		_, err = j.Engine.DistributeToHolders(ctx, application.HoldersDistributeInput{
			Kind:    entities.KindManagedAsset,
			AssetID: assetID,
			Total:   recommendation.Amount,
			Reason:  recommendation.Rationale,
		})
	case "hold":
		// Rationale without a financial operation: pure decision commentary.
		_, err = j.Engine.Ledger.Annotate(ctx, ledgerports.AnnotateInput{
			Kind:      ledgerentities.OperationKind(""),
			Action:    "hold",
			AssetID:   assetID,
			Rationale: recommendation.Rationale,
		})
	default:
		err = domainerrors.ErrUnknownAdvisoryAction
	}
	if err != nil {
		logger.Error("advisory cycle action failed",
			"event", "advisory_cycle_action_failed",
			"module", "treasury-core/distribution-engine",
			"layer", "worker",
			"asset_id", assetID,
			"action", action,
			"error", err.Error(),
		)
		return err
	}
	return nil
}
