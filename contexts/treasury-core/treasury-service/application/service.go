package application

import (
	"context"
	"log/slog"
	"strings"

	ledgerentities "seneschal/contexts/treasury-core/operation-ledger/domain/entities"
	ledgerports "seneschal/contexts/treasury-core/operation-ledger/ports"
	domainerrors "seneschal/contexts/treasury-core/treasury-service/domain/errors"
	"seneschal/contexts/treasury-core/treasury-service/ports"

	"github.com/shopspring/decimal"
)

// Service runs the single-call treasury operations. Every one follows the
// same shape: open a pending ledger record, make exactly one gateway call,
// close the record with the gateway result. Status rules live entirely in
// the operation ledger.
type Service struct {
	Ledger   ports.Ledger
	Gateway  ports.OperationGateway
	Cache    ports.BalanceCache
	Identity ports.TreasuryIdentity
	Clock    ports.Clock
	Logger   *slog.Logger
}

func (s Service) Deploy(ctx context.Context, input ports.DeployInput) (ports.OperationOutcome, error) {
	if strings.TrimSpace(input.Name) == "" || strings.TrimSpace(input.Symbol) == "" {
		return ports.OperationOutcome{}, domainerrors.ErrInvalidTreasuryInput
	}
	record, err := s.Ledger.Open(ctx, ledgerports.OpenInput{
		Kind:     ledgerentities.KindDeployment,
		AssetID:  strings.TrimSpace(input.Symbol),
		Quantity: decimal.Zero,
		Reason:   input.Reason,
	})
	if err != nil {
		return ports.OperationOutcome{}, err
	}

	result, gatewayErr := s.Gateway.Deploy(ctx, ports.DeployRequest{
		CreatorKey:  s.Identity.WalletKey,
		Name:        strings.TrimSpace(input.Name),
		Symbol:      strings.TrimSpace(input.Symbol),
		MetadataURI: strings.TrimSpace(input.MetadataURI),
	})
	// The asset id exists only after the gateway call, so the close carries
	// it back onto the record.
	return s.closeSingleCall(ctx, record.ID, result.Signature, result.AssetID, gatewayErr)
}

func (s Service) Burn(ctx context.Context, input ports.BurnInput) (ports.OperationOutcome, error) {
	assetID := s.resolveAssetID(input.AssetID)
	if assetID == "" || !input.Amount.IsPositive() {
		return ports.OperationOutcome{}, domainerrors.ErrInvalidTreasuryInput
	}
	record, err := s.Ledger.Open(ctx, ledgerports.OpenInput{
		Kind:     ledgerentities.KindBurn,
		AssetID:  assetID,
		Quantity: input.Amount,
		Reason:   input.Reason,
	})
	if err != nil {
		return ports.OperationOutcome{}, err
	}

	signature, gatewayErr := s.Gateway.Burn(ctx, ports.BurnRequest{
		OwnerKey: s.Identity.WalletKey,
		AssetID:  assetID,
		Amount:   input.Amount,
	})
	return s.closeSingleCall(ctx, record.ID, signature, "", gatewayErr)
}

func (s Service) Buyback(ctx context.Context, input ports.BuybackInput) (ports.OperationOutcome, error) {
	assetID := s.resolveAssetID(input.AssetID)
	if assetID == "" || !input.NativeAmount.IsPositive() {
		return ports.OperationOutcome{}, domainerrors.ErrInvalidTreasuryInput
	}
	record, err := s.Ledger.Open(ctx, ledgerports.OpenInput{
		Kind:     ledgerentities.KindBuyback,
		AssetID:  assetID,
		Quantity: input.NativeAmount,
		Reason:   input.Reason,
	})
	if err != nil {
		return ports.OperationOutcome{}, err
	}

	signature, gatewayErr := s.Gateway.Buy(ctx, ports.BuyRequest{
		BuyerKey:     s.Identity.WalletKey,
		AssetID:      assetID,
		NativeAmount: input.NativeAmount,
	})
	return s.closeSingleCall(ctx, record.ID, signature, "", gatewayErr)
}

func (s Service) ClaimRewards(ctx context.Context, input ports.ClaimInput) (ports.OperationOutcome, error) {
	assetID := s.resolveAssetID(input.AssetID)
	if assetID == "" {
		return ports.OperationOutcome{}, domainerrors.ErrInvalidTreasuryInput
	}
	record, err := s.Ledger.Open(ctx, ledgerports.OpenInput{
		Kind:     ledgerentities.KindClaim,
		AssetID:  assetID,
		Quantity: decimal.Zero,
		Reason:   input.Reason,
	})
	if err != nil {
		return ports.OperationOutcome{}, err
	}

	signature, gatewayErr := s.Gateway.Claim(ctx, ports.ClaimRequest{
		OwnerKey: s.Identity.WalletKey,
		AssetID:  assetID,
	})
	return s.closeSingleCall(ctx, record.ID, signature, "", gatewayErr)
}

// RefreshBalances re-reads both balances from the gateway and replaces the
// cache. Callers refresh after completed operations; the cache itself is
// never authoritative.
func (s Service) RefreshBalances(ctx context.Context) (ports.TreasuryBalances, error) {
	logger := ResolveLogger(s.Logger)
	native, err := s.Gateway.GetBalance(ctx, s.Identity.WalletAddress, "")
	if err != nil {
		logger.Warn("native balance read failed",
			"event", "treasury_native_balance_read_failed",
			"module", "treasury-core/treasury-service",
			"layer", "application",
			"error", err.Error(),
		)
		return ports.TreasuryBalances{}, err
	}
	asset := decimal.Zero
	if assetID := strings.TrimSpace(s.Identity.AssetID); assetID != "" {
		asset, err = s.Gateway.GetBalance(ctx, s.Identity.WalletAddress, assetID)
		if err != nil {
			logger.Warn("asset balance read failed",
				"event", "treasury_asset_balance_read_failed",
				"module", "treasury-core/treasury-service",
				"layer", "application",
				"asset_id", assetID,
				"error", err.Error(),
			)
			return ports.TreasuryBalances{}, err
		}
	}
	balances := ports.TreasuryBalances{
		NativeQuantity: native,
		AssetQuantity:  asset,
		RefreshedAt:    s.Clock.Now().UTC(),
	}
	if err := s.Cache.Put(ctx, balances); err != nil {
		return ports.TreasuryBalances{}, err
	}
	logger.Info("treasury balances refreshed",
		"event", "treasury_balances_refreshed",
		"module", "treasury-core/treasury-service",
		"layer", "application",
		"native_quantity", native.String(),
		"asset_quantity", asset.String(),
	)
	return balances, nil
}

func (s Service) Balances(ctx context.Context) (ports.TreasuryBalances, error) {
	balances, found, err := s.Cache.Get(ctx)
	if err != nil {
		return ports.TreasuryBalances{}, err
	}
	if !found {
		return ports.TreasuryBalances{}, domainerrors.ErrBalancesNotCached
	}
	return balances, nil
}

func (s Service) resolveAssetID(assetID string) string {
	if trimmed := strings.TrimSpace(assetID); trimmed != "" {
		return trimmed
	}
	return strings.TrimSpace(s.Identity.AssetID)
}

func (s Service) closeSingleCall(
	ctx context.Context,
	recordID string,
	signature string,
	assetID string,
	gatewayErr error,
) (ports.OperationOutcome, error) {
	logger := ResolveLogger(s.Logger)
	input := ledgerports.CloseInput{
		RecordID: recordID,
		AssetID:  assetID,
	}
	if gatewayErr != nil {
		input.Error = gatewayErr.Error()
	} else {
		input.Success = true
		input.Signature = signature
	}
	record, err := s.Ledger.Close(ctx, input)
	if err != nil {
		return ports.OperationOutcome{}, err
	}
	outcome := ports.OperationOutcome{
		RecordID:  record.ID,
		AssetID:   record.AssetID,
		Success:   record.Status == ledgerentities.StatusSuccess,
		Signature: record.Signature,
		Error:     record.Error,
	}
	logger.Info("treasury operation resolved",
		"event", "treasury_operation_resolved",
		"module", "treasury-core/treasury-service",
		"layer", "application",
		"record_id", record.ID,
		"kind", string(record.Kind),
		"status", string(record.Status),
	)
	return outcome, nil
}
