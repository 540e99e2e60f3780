package application

import (
	"context"
	"encoding/json"
	"log/slog"
	"strings"
	"time"

	"seneschal/contexts/treasury-core/operation-ledger/domain/entities"
	domainerrors "seneschal/contexts/treasury-core/operation-ledger/domain/errors"
	"seneschal/contexts/treasury-core/operation-ledger/ports"
	"seneschal/internal/shared/events"
	"seneschal/internal/shared/outbox"
)

const defaultPageSize = 50

// Service owns the pending/processing -> terminal lifecycle for every
// operation record and its paired audit entry. It is the only writer of both.
type Service struct {
	Repo        ports.Repository
	Audit       ports.AuditRepository
	Outbox      ports.OutboxWriter
	Clock       ports.Clock
	IDGen       ports.IDGenerator
	ServiceName string
	Logger      *slog.Logger
}

// Open creates an operation record in its initial non-terminal state together
// with a pending audit entry. A storage fault on either write aborts the
// operation: nothing proceeds without an audit trail.
func (s Service) Open(ctx context.Context, input ports.OpenInput) (entities.OperationRecord, error) {
	logger := ResolveLogger(s.Logger)
	if !input.Kind.Valid() || input.Quantity.IsNegative() {
		logger.Warn("operation open invalid input",
			"event", "operation_open_invalid_input",
			"module", "treasury-core/operation-ledger",
			"layer", "application",
			"kind", string(input.Kind),
			"asset_id", strings.TrimSpace(input.AssetID),
		)
		return entities.OperationRecord{}, domainerrors.ErrInvalidOperation
	}

	recordID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.OperationRecord{}, err
	}
	auditID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.OperationRecord{}, err
	}

	now := s.Clock.Now().UTC()
	record := entities.OperationRecord{
		ID:             recordID,
		Kind:           input.Kind,
		AssetID:        strings.TrimSpace(input.AssetID),
		Quantity:       input.Quantity,
		Reason:         strings.TrimSpace(input.Reason),
		Status:         input.Kind.InitialStatus(),
		RecipientCount: input.RecipientCount,
		CreatedAt:      now,
	}
	if err := s.Repo.CreateOperation(ctx, record); err != nil {
		return entities.OperationRecord{}, err
	}

	entry := entities.AuditEntry{
		ID:          auditID,
		OperationID: record.ID,
		Kind:        record.Kind,
		Action:      string(record.Kind),
		Rationale:   record.Reason,
		Metadata:    map[string]string{"asset_id": record.AssetID},
		Status:      entities.StatusPending,
		CreatedAt:   now,
	}
	if err := s.Audit.CreateAuditEntry(ctx, entry); err != nil {
		return entities.OperationRecord{}, err
	}

	s.appendOutbox(ctx, events.TypeOperationOpened, record)
	logger.Info("operation opened",
		"event", "operation_opened",
		"module", "treasury-core/operation-ledger",
		"layer", "application",
		"record_id", record.ID,
		"kind", string(record.Kind),
		"asset_id", record.AssetID,
		"quantity", record.Quantity.String(),
		"status", string(record.Status),
	)
	return record, nil
}

// Close resolves a single-call operation to success or failed. Closing an
// already-terminal record is a caller bug and surfaces as ErrRecordTerminal.
func (s Service) Close(ctx context.Context, input ports.CloseInput) (entities.OperationRecord, error) {
	logger := ResolveLogger(s.Logger)
	record, err := s.Repo.GetOperation(ctx, strings.TrimSpace(input.RecordID))
	if err != nil {
		return entities.OperationRecord{}, err
	}
	if record.Status.Terminal() {
		logger.Error("operation close on terminal record",
			"event", "operation_close_terminal_record",
			"module", "treasury-core/operation-ledger",
			"layer", "application",
			"record_id", record.ID,
			"status", string(record.Status),
		)
		return entities.OperationRecord{}, domainerrors.ErrRecordTerminal
	}

	now := s.Clock.Now().UTC()
	if input.Success {
		record.Status = entities.StatusSuccess
		record.Signature = strings.TrimSpace(input.Signature)
	} else {
		record.Status = entities.StatusFailed
		record.Error = strings.TrimSpace(input.Error)
	}
	if assetID := strings.TrimSpace(input.AssetID); assetID != "" {
		record.AssetID = assetID
	}
	record.CompletedAt = &now

	if err := s.Repo.UpdateOperation(ctx, record); err != nil {
		return entities.OperationRecord{}, err
	}
	s.resolveAudit(ctx, record, now)
	s.appendOutbox(ctx, events.TypeOperationCompleted, record)
	logger.Info("operation closed",
		"event", "operation_closed",
		"module", "treasury-core/operation-ledger",
		"layer", "application",
		"record_id", record.ID,
		"kind", string(record.Kind),
		"status", string(record.Status),
	)
	return record, nil
}

// CloseDistribution attaches the full outcome sequence exactly once and
// derives the terminal status from the canonical aggregate rule.
func (s Service) CloseDistribution(
	ctx context.Context,
	recordID string,
	outcomes []entities.RecipientOutcome,
) (entities.OperationRecord, error) {
	logger := ResolveLogger(s.Logger)
	record, err := s.Repo.GetOperation(ctx, strings.TrimSpace(recordID))
	if err != nil {
		return entities.OperationRecord{}, err
	}
	if record.Status.Terminal() {
		logger.Error("distribution close on terminal record",
			"event", "distribution_close_terminal_record",
			"module", "treasury-core/operation-ledger",
			"layer", "application",
			"record_id", record.ID,
			"status", string(record.Status),
		)
		return entities.OperationRecord{}, domainerrors.ErrRecordTerminal
	}
	if record.RecipientCount != len(outcomes) {
		logger.Error("distribution close outcome count mismatch",
			"event", "distribution_close_outcome_mismatch",
			"module", "treasury-core/operation-ledger",
			"layer", "application",
			"record_id", record.ID,
			"recipient_count", record.RecipientCount,
			"outcome_count", len(outcomes),
		)
		return entities.OperationRecord{}, domainerrors.ErrOutcomeCountMismatch
	}

	succeeded := 0
	for _, outcome := range outcomes {
		if outcome.Success {
			succeeded++
		}
	}
	now := s.Clock.Now().UTC()
	record.Status = entities.DeriveAggregateStatus(succeeded, len(outcomes))
	record.Outcomes = append([]entities.RecipientOutcome(nil), outcomes...)
	record.CompletedAt = &now

	if err := s.Repo.UpdateOperation(ctx, record); err != nil {
		return entities.OperationRecord{}, err
	}
	s.resolveAudit(ctx, record, now)
	s.appendOutbox(ctx, events.TypeOperationCompleted, record)
	logger.Info("distribution closed",
		"event", "distribution_closed",
		"module", "treasury-core/operation-ledger",
		"layer", "application",
		"record_id", record.ID,
		"status", string(record.Status),
		"succeeded", succeeded,
		"attempted", len(outcomes),
	)
	return record, nil
}

// Annotate records standalone decision commentary with no paired financial
// operation. The entry is created already resolved.
func (s Service) Annotate(ctx context.Context, input ports.AnnotateInput) (entities.AuditEntry, error) {
	logger := ResolveLogger(s.Logger)
	action := strings.TrimSpace(input.Action)
	if action == "" {
		return entities.AuditEntry{}, domainerrors.ErrInvalidOperation
	}
	auditID, err := s.IDGen.NewID(ctx)
	if err != nil {
		return entities.AuditEntry{}, err
	}

	now := s.Clock.Now().UTC()
	metadata := map[string]string{"asset_id": strings.TrimSpace(input.AssetID)}
	for key, value := range input.Metadata {
		metadata[key] = value
	}
	entry := entities.AuditEntry{
		ID:         auditID,
		Kind:       input.Kind,
		Action:     action,
		Rationale:  strings.TrimSpace(input.Rationale),
		Metadata:   metadata,
		Status:     entities.StatusSuccess,
		CreatedAt:  now,
		ResolvedAt: &now,
	}
	if err := s.Audit.CreateAuditEntry(ctx, entry); err != nil {
		return entities.AuditEntry{}, err
	}
	logger.Info("audit annotation recorded",
		"event", "audit_annotation_recorded",
		"module", "treasury-core/operation-ledger",
		"layer", "application",
		"audit_id", entry.ID,
		"action", entry.Action,
	)
	return entry, nil
}

func (s Service) Get(ctx context.Context, recordID string) (entities.OperationRecord, error) {
	return s.Repo.GetOperation(ctx, strings.TrimSpace(recordID))
}

func (s Service) List(ctx context.Context, filter ports.OperationFilter) ([]entities.OperationRecord, error) {
	if filter.Limit <= 0 {
		filter.Limit = defaultPageSize
	}
	if filter.Offset < 0 {
		filter.Offset = 0
	}
	return s.Repo.ListOperations(ctx, filter)
}

func (s Service) ListAudit(ctx context.Context, limit int, offset int) ([]entities.AuditEntry, error) {
	if limit <= 0 {
		limit = defaultPageSize
	}
	if offset < 0 {
		offset = 0
	}
	return s.Audit.ListAuditEntries(ctx, limit, offset)
}

// resolveAudit moves the paired audit entry to the record's terminal status.
// A missing entry is logged, not fatal: the financial record already closed.
func (s Service) resolveAudit(ctx context.Context, record entities.OperationRecord, now time.Time) {
	logger := ResolveLogger(s.Logger)
	entry, err := s.Audit.GetAuditEntryByOperation(ctx, record.ID)
	if err != nil {
		logger.Warn("paired audit entry lookup failed",
			"event", "audit_entry_lookup_failed",
			"module", "treasury-core/operation-ledger",
			"layer", "application",
			"record_id", record.ID,
			"error", err.Error(),
		)
		return
	}
	entry.Status = record.Status
	entry.ResolvedAt = &now
	if record.Error != "" {
		if entry.Metadata == nil {
			entry.Metadata = map[string]string{}
		}
		entry.Metadata["error"] = record.Error
	}
	if err := s.Audit.UpdateAuditEntry(ctx, entry); err != nil {
		logger.Warn("paired audit entry update failed",
			"event", "audit_entry_update_failed",
			"module", "treasury-core/operation-ledger",
			"layer", "application",
			"record_id", record.ID,
			"audit_id", entry.ID,
			"error", err.Error(),
		)
	}
}

func (s Service) appendOutbox(ctx context.Context, eventType string, record entities.OperationRecord) {
	if s.Outbox == nil {
		return
	}
	logger := ResolveLogger(s.Logger)
	envelope := events.Envelope{
		EventID:        record.ID + ":" + eventType,
		EventType:      eventType,
		SourceService:  s.ServiceName,
		OccurredAtUTC:  s.Clock.Now().UTC(),
		EntityType:     "operation_record",
		EntityID:       record.ID,
		PayloadVersion: 1,
		Payload: map[string]any{
			"kind":     string(record.Kind),
			"asset_id": record.AssetID,
			"quantity": record.Quantity.String(),
			"status":   string(record.Status),
		},
	}
	payload, err := json.Marshal(envelope)
	if err != nil {
		logger.Warn("outbox envelope marshal failed",
			"event", "outbox_envelope_marshal_failed",
			"module", "treasury-core/operation-ledger",
			"layer", "application",
			"record_id", record.ID,
			"error", err.Error(),
		)
		return
	}
	if err := s.Outbox.AppendOutbox(ctx, outbox.Message{
		ID:           envelope.EventID,
		EventType:    eventType,
		PartitionKey: record.AssetID,
		Payload:      payload,
		Status:       outbox.StatusPending,
		CreatedAt:    envelope.OccurredAtUTC,
	}); err != nil {
		logger.Warn("outbox append failed",
			"event", "outbox_append_failed",
			"module", "treasury-core/operation-ledger",
			"layer", "application",
			"record_id", record.ID,
			"error", err.Error(),
		)
	}
}
