package httpadapter

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "seneschal/contexts/treasury-core/operation-ledger/application"
	"seneschal/contexts/treasury-core/operation-ledger/domain/entities"
	domainerrors "seneschal/contexts/treasury-core/operation-ledger/domain/errors"
	"seneschal/contexts/treasury-core/operation-ledger/ports"
	httptransport "seneschal/contexts/treasury-core/operation-ledger/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

func (h Handler) GetOperationHandler(ctx context.Context, recordID string) (httptransport.OperationRecordDTO, error) {
	logger := application.ResolveLogger(h.Logger)
	record, err := h.Service.Get(ctx, recordID)
	if err != nil {
		logger.Warn("ledger http get operation failed",
			"event", "ledger_http_get_operation_failed",
			"module", "treasury-core/operation-ledger",
			"layer", "adapter",
			"record_id", strings.TrimSpace(recordID),
			"error", err.Error(),
		)
		return httptransport.OperationRecordDTO{}, err
	}
	return OperationRecordToDTO(record), nil
}

func (h Handler) ListOperationsHandler(
	ctx context.Context,
	req httptransport.ListOperationsRequest,
) (httptransport.ListOperationsResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	filter := ports.OperationFilter{
		AssetID: req.AssetID,
		Limit:   req.Limit,
		Offset:  req.Offset,
	}
	if kind := strings.TrimSpace(req.Kind); kind != "" {
		parsed := entities.OperationKind(kind)
		if !parsed.Valid() {
			return httptransport.ListOperationsResponse{}, domainerrors.ErrInvalidOperation
		}
		filter.Kind = parsed
	}
	records, err := h.Service.List(ctx, filter)
	if err != nil {
		logger.Warn("ledger http list operations failed",
			"event", "ledger_http_list_operations_failed",
			"module", "treasury-core/operation-ledger",
			"layer", "adapter",
			"kind", strings.TrimSpace(req.Kind),
			"error", err.Error(),
		)
		return httptransport.ListOperationsResponse{}, err
	}
	operations := make([]httptransport.OperationRecordDTO, 0, len(records))
	for _, record := range records {
		operations = append(operations, OperationRecordToDTO(record))
	}
	limit := req.Limit
	if limit <= 0 {
		limit = len(operations)
	}
	return httptransport.ListOperationsResponse{
		Operations: operations,
		Limit:      limit,
		Offset:     req.Offset,
	}, nil
}

func (h Handler) ListAuditHandler(ctx context.Context, limit int, offset int) (httptransport.ListAuditResponse, error) {
	logger := application.ResolveLogger(h.Logger)
	entries, err := h.Service.ListAudit(ctx, limit, offset)
	if err != nil {
		logger.Warn("ledger http list audit failed",
			"event", "ledger_http_list_audit_failed",
			"module", "treasury-core/operation-ledger",
			"layer", "adapter",
			"error", err.Error(),
		)
		return httptransport.ListAuditResponse{}, err
	}
	dtos := make([]httptransport.AuditEntryDTO, 0, len(entries))
	for _, entry := range entries {
		dtos = append(dtos, auditEntryToDTO(entry))
	}
	if limit <= 0 {
		limit = len(dtos)
	}
	return httptransport.ListAuditResponse{
		Entries: dtos,
		Limit:   limit,
		Offset:  offset,
	}, nil
}

// OperationRecordToDTO is shared with the other treasury modules' HTTP
// surfaces so every endpoint renders records identically.
func OperationRecordToDTO(record entities.OperationRecord) httptransport.OperationRecordDTO {
	dto := httptransport.OperationRecordDTO{
		ID:             record.ID,
		Kind:           string(record.Kind),
		AssetID:        record.AssetID,
		Quantity:       record.Quantity.String(),
		Signature:      record.Signature,
		Reason:         record.Reason,
		Error:          record.Error,
		Status:         string(record.Status),
		RecipientCount: record.RecipientCount,
		CreatedAt:      record.CreatedAt.UTC().Format(time.RFC3339),
	}
	if record.CompletedAt != nil {
		dto.CompletedAt = record.CompletedAt.UTC().Format(time.RFC3339)
	}
	for _, outcome := range record.Outcomes {
		if outcome.Success {
			dto.SuccessCount++
		} else {
			dto.FailCount++
		}
		dto.Outcomes = append(dto.Outcomes, httptransport.RecipientOutcomeDTO{
			Address:   outcome.Address,
			Amount:    outcome.Amount.String(),
			Signature: outcome.Signature,
			Success:   outcome.Success,
			Error:     outcome.Error,
		})
	}
	return dto
}

func auditEntryToDTO(entry entities.AuditEntry) httptransport.AuditEntryDTO {
	dto := httptransport.AuditEntryDTO{
		ID:          entry.ID,
		OperationID: entry.OperationID,
		Kind:        string(entry.Kind),
		Action:      entry.Action,
		Rationale:   entry.Rationale,
		Metadata:    entry.Metadata,
		Status:      string(entry.Status),
		CreatedAt:   entry.CreatedAt.UTC().Format(time.RFC3339),
	}
	if entry.ResolvedAt != nil {
		dto.ResolvedAt = entry.ResolvedAt.UTC().Format(time.RFC3339)
	}
	return dto
}
