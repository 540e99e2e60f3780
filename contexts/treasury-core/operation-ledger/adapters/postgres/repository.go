package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"seneschal/contexts/treasury-core/operation-ledger/domain/entities"
	domainerrors "seneschal/contexts/treasury-core/operation-ledger/domain/errors"
	"seneschal/contexts/treasury-core/operation-ledger/ports"
	"seneschal/internal/shared/outbox"

	"github.com/jackc/pgx/v5/pgconn"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) CreateOperation(ctx context.Context, record entities.OperationRecord) error {
	if strings.TrimSpace(record.ID) == "" || !record.Kind.Valid() {
		r.logWarn("ledger_repo_create_operation_invalid_input",
			"record_id", strings.TrimSpace(record.ID),
			"kind", string(record.Kind),
		)
		return domainerrors.ErrInvalidOperation
	}

	row, err := operationModelFromEntity(record)
	if err != nil {
		return r.logError("ledger_repo_create_operation_encode_failed", err,
			"record_id", record.ID,
		)
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			r.logWarn("ledger_repo_create_operation_unique_conflict",
				"record_id", record.ID,
			)
			return domainerrors.ErrOperationExists
		}
		return r.logError("ledger_repo_create_operation_failed", err,
			"record_id", record.ID,
		)
	}
	return nil
}

func (r *Repository) UpdateOperation(ctx context.Context, record entities.OperationRecord) error {
	row, err := operationModelFromEntity(record)
	if err != nil {
		return r.logError("ledger_repo_update_operation_encode_failed", err,
			"record_id", record.ID,
		)
	}
	// The status guard makes the write single-shot: a row that already
	// reached a terminal status is never matched, so a second close
	// surfaces as ErrRecordTerminal instead of silently overwriting.
	result := r.db.WithContext(ctx).
		Model(&operationModel{}).
		Where("id = ?", strings.TrimSpace(record.ID)).
		Where("status IN ?", []string{
			string(entities.StatusPending),
			string(entities.StatusProcessing),
		}).
		Updates(operationUpdatesFromModel(row))
	if result.Error != nil {
		return r.logError("ledger_repo_update_operation_failed", result.Error,
			"record_id", strings.TrimSpace(record.ID),
		)
	}
	if result.RowsAffected == 0 {
		var count int64
		if err := r.db.WithContext(ctx).
			Model(&operationModel{}).
			Where("id = ?", strings.TrimSpace(record.ID)).
			Count(&count).Error; err != nil {
			return r.logError("ledger_repo_update_operation_exists_check_failed", err,
				"record_id", strings.TrimSpace(record.ID),
			)
		}
		if count == 0 {
			return domainerrors.ErrOperationNotFound
		}
		r.logWarn("ledger_repo_update_operation_terminal_row",
			"record_id", strings.TrimSpace(record.ID),
		)
		return domainerrors.ErrRecordTerminal
	}
	return nil
}

func (r *Repository) GetOperation(ctx context.Context, recordID string) (entities.OperationRecord, error) {
	var row operationModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(recordID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.OperationRecord{}, domainerrors.ErrOperationNotFound
		}
		return entities.OperationRecord{}, r.logError("ledger_repo_get_operation_failed", err,
			"record_id", strings.TrimSpace(recordID),
		)
	}
	return row.toEntity()
}

func (r *Repository) ListOperations(ctx context.Context, filter ports.OperationFilter) ([]entities.OperationRecord, error) {
	limit := filter.Limit
	if limit <= 0 {
		limit = 50
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}

	query := r.db.WithContext(ctx).Model(&operationModel{})
	if filter.Kind != "" {
		query = query.Where("kind = ?", string(filter.Kind))
	}
	if assetID := strings.TrimSpace(filter.AssetID); assetID != "" {
		query = query.Where("asset_id = ?", assetID)
	}

	var rows []operationModel
	if err := query.
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_operations_failed", err,
			"kind", string(filter.Kind),
			"asset_id", strings.TrimSpace(filter.AssetID),
		)
	}

	records := make([]entities.OperationRecord, 0, len(rows))
	for _, row := range rows {
		record, err := row.toEntity()
		if err != nil {
			return nil, r.logError("ledger_repo_list_operations_decode_failed", err,
				"record_id", row.ID,
			)
		}
		records = append(records, record)
	}
	return records, nil
}

func (r *Repository) CreateAuditEntry(ctx context.Context, entry entities.AuditEntry) error {
	row, err := auditModelFromEntity(entry)
	if err != nil {
		return r.logError("ledger_repo_create_audit_encode_failed", err,
			"audit_id", entry.ID,
		)
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("ledger_repo_create_audit_failed", err,
			"audit_id", entry.ID,
		)
	}
	return nil
}

func (r *Repository) UpdateAuditEntry(ctx context.Context, entry entities.AuditEntry) error {
	row, err := auditModelFromEntity(entry)
	if err != nil {
		return r.logError("ledger_repo_update_audit_encode_failed", err,
			"audit_id", entry.ID,
		)
	}
	result := r.db.WithContext(ctx).
		Model(&auditModel{}).
		Where("id = ?", strings.TrimSpace(entry.ID)).
		Updates(map[string]any{
			"status":      row.Status,
			"rationale":   row.Rationale,
			"metadata":    row.Metadata,
			"resolved_at": row.ResolvedAt,
		})
	if result.Error != nil {
		return r.logError("ledger_repo_update_audit_failed", result.Error,
			"audit_id", strings.TrimSpace(entry.ID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrAuditEntryNotFound
	}
	return nil
}

func (r *Repository) GetAuditEntryByOperation(ctx context.Context, operationID string) (entities.AuditEntry, error) {
	var row auditModel
	err := r.db.WithContext(ctx).
		Where("operation_id = ?", strings.TrimSpace(operationID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.AuditEntry{}, domainerrors.ErrAuditEntryNotFound
		}
		return entities.AuditEntry{}, r.logError("ledger_repo_get_audit_failed", err,
			"operation_id", strings.TrimSpace(operationID),
		)
	}
	return row.toEntity()
}

func (r *Repository) ListAuditEntries(ctx context.Context, limit int, offset int) ([]entities.AuditEntry, error) {
	if limit <= 0 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}
	var rows []auditModel
	if err := r.db.WithContext(ctx).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Offset(offset).
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_audit_failed", err)
	}
	entries := make([]entities.AuditEntry, 0, len(rows))
	for _, row := range rows {
		entry, err := row.toEntity()
		if err != nil {
			return nil, r.logError("ledger_repo_list_audit_decode_failed", err,
				"audit_id", row.ID,
			)
		}
		entries = append(entries, entry)
	}
	return entries, nil
}

func (r *Repository) AppendOutbox(ctx context.Context, message outbox.Message) error {
	row := outboxModel{
		ID:           strings.TrimSpace(message.ID),
		EventType:    strings.TrimSpace(message.EventType),
		PartitionKey: strings.TrimSpace(message.PartitionKey),
		Payload:      append([]byte(nil), message.Payload...),
		Status:       outbox.StatusPending,
		CreatedAt:    message.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			return nil
		}
		return r.logError("ledger_repo_append_outbox_failed", err,
			"outbox_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) ListPendingOutbox(ctx context.Context, limit int) ([]outbox.Message, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []outboxModel
	if err := r.db.WithContext(ctx).
		Where("status = ?", outbox.StatusPending).
		Order("created_at ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("ledger_repo_list_pending_outbox_failed", err)
	}
	messages := make([]outbox.Message, 0, len(rows))
	for _, row := range rows {
		messages = append(messages, outbox.Message{
			ID:           row.ID,
			EventType:    row.EventType,
			PartitionKey: row.PartitionKey,
			Payload:      append([]byte(nil), row.Payload...),
			Status:       row.Status,
			RetryCount:   row.RetryCount,
			CreatedAt:    row.CreatedAt.UTC(),
			PublishedAt:  normalizeOptionalTime(row.PublishedAt),
		})
	}
	return messages, nil
}

func (r *Repository) MarkOutboxPublished(ctx context.Context, outboxID string, publishedAt time.Time) error {
	result := r.db.WithContext(ctx).
		Model(&outboxModel{}).
		Where("id = ?", strings.TrimSpace(outboxID)).
		Updates(map[string]any{
			"status":       outbox.StatusPublished,
			"published_at": publishedAt.UTC(),
		})
	if result.Error != nil {
		return r.logError("ledger_repo_mark_outbox_published_failed", result.Error,
			"outbox_id", strings.TrimSpace(outboxID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrInvalidOperation
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func normalizeOptionalTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	normalized := value.UTC()
	return &normalized
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+7)
	fields = append(fields,
		"event", event,
		"module", "treasury-core/operation-ledger",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("operation ledger repository error", fields...)
	return err
}

func (r *Repository) logWarn(event string, attrs ...any) {
	fields := make([]any, 0, len(attrs)+5)
	fields = append(fields,
		"event", event,
		"module", "treasury-core/operation-ledger",
		"layer", "adapter",
	)
	fields = append(fields, attrs...)
	r.logger.Warn("operation ledger repository warning", fields...)
}

type operationModel struct {
	ID             string     `gorm:"column:id;primaryKey"`
	Kind           string     `gorm:"column:kind"`
	AssetID        string     `gorm:"column:asset_id"`
	Quantity       string     `gorm:"column:quantity"`
	Signature      string     `gorm:"column:signature"`
	Reason         string     `gorm:"column:reason"`
	LastError      string     `gorm:"column:last_error"`
	Status         string     `gorm:"column:status"`
	RecipientCount int        `gorm:"column:recipient_count"`
	Outcomes       []byte     `gorm:"column:outcomes;type:jsonb"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	CompletedAt    *time.Time `gorm:"column:completed_at"`
}

func (operationModel) TableName() string {
	return "treasury_operations"
}

func operationModelFromEntity(record entities.OperationRecord) (operationModel, error) {
	var outcomes []byte
	if record.Outcomes != nil {
		encoded, err := json.Marshal(record.Outcomes)
		if err != nil {
			return operationModel{}, err
		}
		outcomes = encoded
	}
	return operationModel{
		ID:             strings.TrimSpace(record.ID),
		Kind:           string(record.Kind),
		AssetID:        strings.TrimSpace(record.AssetID),
		Quantity:       record.Quantity.String(),
		Signature:      strings.TrimSpace(record.Signature),
		Reason:         strings.TrimSpace(record.Reason),
		LastError:      strings.TrimSpace(record.Error),
		Status:         string(record.Status),
		RecipientCount: record.RecipientCount,
		Outcomes:       outcomes,
		CreatedAt:      record.CreatedAt.UTC(),
		CompletedAt:    normalizeOptionalTime(record.CompletedAt),
	}, nil
}

func operationUpdatesFromModel(row operationModel) map[string]any {
	return map[string]any{
		"asset_id":        row.AssetID,
		"quantity":        row.Quantity,
		"signature":       row.Signature,
		"reason":          row.Reason,
		"last_error":      row.LastError,
		"status":          row.Status,
		"recipient_count": row.RecipientCount,
		"outcomes":        row.Outcomes,
		"completed_at":    row.CompletedAt,
	}
}

func (m operationModel) toEntity() (entities.OperationRecord, error) {
	quantity, err := decimal.NewFromString(m.Quantity)
	if err != nil {
		return entities.OperationRecord{}, err
	}
	var outcomes []entities.RecipientOutcome
	if len(m.Outcomes) > 0 {
		if err := json.Unmarshal(m.Outcomes, &outcomes); err != nil {
			return entities.OperationRecord{}, err
		}
	}
	return entities.OperationRecord{
		ID:             m.ID,
		Kind:           entities.OperationKind(m.Kind),
		AssetID:        m.AssetID,
		Quantity:       quantity,
		Signature:      m.Signature,
		Reason:         m.Reason,
		Error:          m.LastError,
		Status:         entities.OperationStatus(m.Status),
		RecipientCount: m.RecipientCount,
		Outcomes:       outcomes,
		CreatedAt:      m.CreatedAt.UTC(),
		CompletedAt:    normalizeOptionalTime(m.CompletedAt),
	}, nil
}

type auditModel struct {
	ID          string     `gorm:"column:id;primaryKey"`
	OperationID string     `gorm:"column:operation_id"`
	Kind        string     `gorm:"column:kind"`
	Action      string     `gorm:"column:action"`
	Rationale   string     `gorm:"column:rationale"`
	Metadata    []byte     `gorm:"column:metadata;type:jsonb"`
	Status      string     `gorm:"column:status"`
	CreatedAt   time.Time  `gorm:"column:created_at"`
	ResolvedAt  *time.Time `gorm:"column:resolved_at"`
}

func (auditModel) TableName() string {
	return "treasury_audit_entries"
}

func auditModelFromEntity(entry entities.AuditEntry) (auditModel, error) {
	var metadata []byte
	if entry.Metadata != nil {
		encoded, err := json.Marshal(entry.Metadata)
		if err != nil {
			return auditModel{}, err
		}
		metadata = encoded
	}
	return auditModel{
		ID:          strings.TrimSpace(entry.ID),
		OperationID: strings.TrimSpace(entry.OperationID),
		Kind:        string(entry.Kind),
		Action:      strings.TrimSpace(entry.Action),
		Rationale:   strings.TrimSpace(entry.Rationale),
		Metadata:    metadata,
		Status:      string(entry.Status),
		CreatedAt:   entry.CreatedAt.UTC(),
		ResolvedAt:  normalizeOptionalTime(entry.ResolvedAt),
	}, nil
}

func (m auditModel) toEntity() (entities.AuditEntry, error) {
	var metadata map[string]string
	if len(m.Metadata) > 0 {
		if err := json.Unmarshal(m.Metadata, &metadata); err != nil {
			return entities.AuditEntry{}, err
		}
	}
	return entities.AuditEntry{
		ID:          m.ID,
		OperationID: m.OperationID,
		Kind:        entities.OperationKind(m.Kind),
		Action:      m.Action,
		Rationale:   m.Rationale,
		Metadata:    metadata,
		Status:      entities.OperationStatus(m.Status),
		CreatedAt:   m.CreatedAt.UTC(),
		ResolvedAt:  normalizeOptionalTime(m.ResolvedAt),
	}, nil
}

type outboxModel struct {
	ID           string     `gorm:"column:id;primaryKey"`
	EventType    string     `gorm:"column:event_type"`
	PartitionKey string     `gorm:"column:partition_key"`
	Payload      []byte     `gorm:"column:payload;type:jsonb"`
	Status       string     `gorm:"column:status"`
	RetryCount   int        `gorm:"column:retry_count"`
	CreatedAt    time.Time  `gorm:"column:created_at"`
	PublishedAt  *time.Time `gorm:"column:published_at"`
}

func (outboxModel) TableName() string {
	return "treasury_outbox"
}

var _ ports.Repository = (*Repository)(nil)
var _ ports.AuditRepository = (*Repository)(nil)
var _ ports.OutboxWriter = (*Repository)(nil)
var _ ports.OutboxRepository = (*Repository)(nil)
