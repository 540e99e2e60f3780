package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "seneschal/contexts/treasury-core/distribution-engine/application"
	"seneschal/contexts/treasury-core/distribution-engine/domain/entities"
	domainerrors "seneschal/contexts/treasury-core/distribution-engine/domain/errors"
	httptransport "seneschal/contexts/treasury-core/distribution-engine/transport/http"
	ledgerentities "seneschal/contexts/treasury-core/operation-ledger/domain/entities"

	"github.com/shopspring/decimal"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) DistributeHandler(
	ctx context.Context,
	req httptransport.DistributeRequest,
) (httptransport.DistributeResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	kind, err := parseKind(req.Kind)
	if err != nil {
		return httptransport.DistributeResponse{}, err
	}

	var result application.DistributeResult
	if req.UseSnapshot || strings.TrimSpace(req.SnapshotID) != "" {
		total, parseErr := parseAmount(req.TotalAmount)
		if parseErr != nil {
			return httptransport.DistributeResponse{}, domainerrors.ErrInvalidDistribution
		}
		result, err = h.Service.DistributeToHolders(ctx, application.HoldersDistributeInput{
			Kind:       kind,
			AssetID:    req.AssetID,
			Total:      total,
			Reason:     req.Reason,
			SnapshotID: req.SnapshotID,
		})
	} else {
		recipients := make([]entities.Recipient, 0, len(req.Recipients))
		for _, dto := range req.Recipients {
			amount, parseErr := parseAmount(dto.Amount)
			if parseErr != nil {
				return httptransport.DistributeResponse{}, domainerrors.ErrInvalidDistribution
			}
			recipients = append(recipients, entities.Recipient{
				Address: strings.TrimSpace(dto.Address),
				Amount:  amount,
			})
		}
		result, err = h.Service.Distribute(ctx, application.DistributeInput{
			Kind:       kind,
			AssetID:    req.AssetID,
			Recipients: recipients,
			Reason:     req.Reason,
		})
	}
	if err != nil {
		logger.Warn("distribution http request failed",
			"event", "distribution_http_request_failed",
			"module", "treasury-core/distribution-engine",
			"layer", "adapter",
			"kind", strings.TrimSpace(req.Kind),
			"error", err.Error(),
		)
		return httptransport.DistributeResponse{}, err
	}
	return distributeResultToDTO(result), nil
}

func (h Handler) CaptureSnapshotHandler(ctx context.Context, assetID string) (httptransport.SnapshotResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	snapshot, err := h.Service.CaptureSnapshot(ctx, assetID)
	if err != nil {
		logger.Warn("snapshot http capture failed",
			"event", "snapshot_http_capture_failed",
			"module", "treasury-core/distribution-engine",
			"layer", "adapter",
			"asset_id", strings.TrimSpace(assetID),
			"error", err.Error(),
		)
		return httptransport.SnapshotResponse{}, err
	}
	return snapshotToDTO(snapshot), nil
}

func (h Handler) GetSnapshotHandler(ctx context.Context, snapshotID string) (httptransport.SnapshotResponse, error) {
	snapshot, err := h.Service.GetSnapshot(ctx, snapshotID)
	if err != nil {
		return httptransport.SnapshotResponse{}, err
	}
	return snapshotToDTO(snapshot), nil
}

func parseKind(raw string) (entities.DistributionKind, error) {
	kind := entities.DistributionKind(strings.ToLower(strings.TrimSpace(raw)))
	if !kind.Valid() {
		return "", domainerrors.ErrInvalidDistribution
	}
	return kind, nil
}

func parseAmount(raw string) (decimal.Decimal, error) {
	return decimal.NewFromString(strings.TrimSpace(raw))
}

func distributeResultToDTO(result application.DistributeResult) httptransport.DistributeResponse {
	resp := httptransport.DistributeResponse{
		ID:           result.Record.ID,
		Status:       string(result.Record.Status),
		SuccessCount: result.SuccessCount,
		FailCount:    result.FailCount,
		Outcomes:     make([]httptransport.OutcomeDTO, 0, len(result.Record.Outcomes)),
	}
	for _, outcome := range result.Record.Outcomes {
		resp.Outcomes = append(resp.Outcomes, outcomeToDTO(outcome))
	}
	return resp
}

func outcomeToDTO(outcome ledgerentities.RecipientOutcome) httptransport.OutcomeDTO {
	return httptransport.OutcomeDTO{
		Address:   outcome.Address,
		Amount:    outcome.Amount.String(),
		Signature: outcome.Signature,
		Success:   outcome.Success,
		Error:     outcome.Error,
	}
}

func snapshotToDTO(snapshot entities.HolderSnapshot) httptransport.SnapshotResponse {
	resp := httptransport.SnapshotResponse{
		ID:          snapshot.ID,
		AssetID:     snapshot.AssetID,
		Holders:     make([]httptransport.SnapshotHolderDTO, 0, len(snapshot.Holders)),
		HolderCount: snapshot.HolderCount,
		TotalHeld:   snapshot.TotalHeld.String(),
		CapturedAt:  snapshot.CapturedAt.UTC().Format(time.RFC3339),
	}
	for _, holder := range snapshot.Holders {
		resp.Holders = append(resp.Holders, httptransport.SnapshotHolderDTO{
			Address:    holder.Address,
			Balance:    holder.Balance.String(),
			Percentage: holder.Percentage.String(),
		})
	}
	return resp
}
