package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "seneschal/contexts/treasury-core/treasury-service/application"
	domainerrors "seneschal/contexts/treasury-core/treasury-service/domain/errors"
	"seneschal/contexts/treasury-core/treasury-service/ports"
	httptransport "seneschal/contexts/treasury-core/treasury-service/transport/http"

	"github.com/shopspring/decimal"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) DeployHandler(ctx context.Context, req httptransport.DeployRequest) (httptransport.OperationResponse, error) {
	outcome, err := h.Service.Deploy(ctx, ports.DeployInput{
		Name:        req.Name,
		Symbol:      req.Symbol,
		MetadataURI: req.MetadataURI,
		Reason:      req.Reason,
	})
	return h.respond(ctx, "deploy", outcome, err)
}

func (h Handler) BurnHandler(ctx context.Context, req httptransport.BurnRequest) (httptransport.OperationResponse, error) {
	amount, err := parseAmount(req.Amount)
	if err != nil {
		return httptransport.OperationResponse{}, domainerrors.ErrInvalidTreasuryInput
	}
	outcome, err := h.Service.Burn(ctx, ports.BurnInput{
		AssetID: req.AssetID,
		Amount:  amount,
		Reason:  req.Reason,
	})
	return h.respond(ctx, "burn", outcome, err)
}

func (h Handler) BuybackHandler(ctx context.Context, req httptransport.BuybackRequest) (httptransport.OperationResponse, error) {
	amount, err := parseAmount(req.NativeAmount)
	if err != nil {
		return httptransport.OperationResponse{}, domainerrors.ErrInvalidTreasuryInput
	}
	outcome, err := h.Service.Buyback(ctx, ports.BuybackInput{
		AssetID:      req.AssetID,
		NativeAmount: amount,
		Reason:       req.Reason,
	})
	return h.respond(ctx, "buyback", outcome, err)
}

func (h Handler) ClaimHandler(ctx context.Context, req httptransport.ClaimRequest) (httptransport.OperationResponse, error) {
	outcome, err := h.Service.ClaimRewards(ctx, ports.ClaimInput{
		AssetID: req.AssetID,
		Reason:  req.Reason,
	})
	return h.respond(ctx, "claim", outcome, err)
}

func (h Handler) BalancesHandler(ctx context.Context) (httptransport.BalancesResponse, error) {
	balances, err := h.Service.Balances(ctx)
	if err != nil {
		return httptransport.BalancesResponse{}, err
	}
	return balancesToDTO(balances), nil
}

func (h Handler) RefreshBalancesHandler(ctx context.Context) (httptransport.BalancesResponse, error) {
	balances, err := h.Service.RefreshBalances(ctx)
	if err != nil {
		return httptransport.BalancesResponse{}, err
	}
	return balancesToDTO(balances), nil
}

func (h Handler) respond(
	_ context.Context,
	operation string,
	outcome ports.OperationOutcome,
	err error,
) (httptransport.OperationResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	if err != nil {
		logger.Warn("treasury http operation failed",
			"event", "treasury_http_operation_failed",
			"module", "treasury-core/treasury-service",
			"layer", "adapter",
			"operation", operation,
			"error", err.Error(),
		)
		return httptransport.OperationResponse{}, err
	}
	return httptransport.OperationResponse{
		RecordID:            outcome.RecordID,
		AssetID:             outcome.AssetID,
		Success:             outcome.Success,
		SettlementSignature: outcome.Signature,
		Error:               outcome.Error,
	}, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(raw))
}

func balancesToDTO(balances ports.TreasuryBalances) httptransport.BalancesResponse {
	return httptransport.BalancesResponse{
		NativeQuantity: balances.NativeQuantity.String(),
		AssetQuantity:  balances.AssetQuantity.String(),
		RefreshedAt:    balances.RefreshedAt.UTC().Format(time.RFC3339),
	}
}
