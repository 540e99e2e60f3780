package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"seneschal/contexts/treasury-core/operation-ledger/domain/entities"
	domainerrors "seneschal/contexts/treasury-core/operation-ledger/domain/errors"
	"seneschal/contexts/treasury-core/operation-ledger/ports"
	"seneschal/internal/shared/outbox"

	"github.com/google/uuid"
)

// Store is the in-memory repository used by tests and DSN-less boots.
// Records are copied on the way in and out so callers never share slices
// or maps with stored state.
type Store struct {
	mu sync.RWMutex

	operations map[string]entities.OperationRecord
	audit      map[string]entities.AuditEntry
	outbox     map[string]outbox.Message
}

func NewStore(seed []entities.OperationRecord) *Store {
	operations := make(map[string]entities.OperationRecord, len(seed))
	for _, record := range seed {
		operations[record.ID] = cloneRecord(record)
	}
	return &Store{
		operations: operations,
		audit:      make(map[string]entities.AuditEntry),
		outbox:     make(map[string]outbox.Message),
	}
}

func (s *Store) CreateOperation(_ context.Context, record entities.OperationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(record.ID) == "" {
		return domainerrors.ErrInvalidOperation
	}
	if _, exists := s.operations[record.ID]; exists {
		return domainerrors.ErrOperationExists
	}
	s.operations[record.ID] = cloneRecord(record)
	return nil
}

func (s *Store) UpdateOperation(_ context.Context, record entities.OperationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	existing, exists := s.operations[record.ID]
	if !exists {
		return domainerrors.ErrOperationNotFound
	}
	// Second guard behind the service-level check: a terminal row never
	// changes again, whatever path the caller took.
	if existing.Status.Terminal() {
		return domainerrors.ErrRecordTerminal
	}
	s.operations[record.ID] = cloneRecord(record)
	return nil
}

func (s *Store) GetOperation(_ context.Context, recordID string) (entities.OperationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	record, exists := s.operations[strings.TrimSpace(recordID)]
	if !exists {
		return entities.OperationRecord{}, domainerrors.ErrOperationNotFound
	}
	return cloneRecord(record), nil
}

func (s *Store) ListOperations(_ context.Context, filter ports.OperationFilter) ([]entities.OperationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	records := make([]entities.OperationRecord, 0, len(s.operations))
	for _, record := range s.operations {
		if filter.Kind != "" && record.Kind != filter.Kind {
			continue
		}
		if filter.AssetID != "" && record.AssetID != strings.TrimSpace(filter.AssetID) {
			continue
		}
		records = append(records, cloneRecord(record))
	}
	sort.Slice(records, func(i, j int) bool {
		if records[i].CreatedAt.Equal(records[j].CreatedAt) {
			return records[i].ID > records[j].ID
		}
		return records[i].CreatedAt.After(records[j].CreatedAt)
	})
	return page(records, filter.Limit, filter.Offset), nil
}

func (s *Store) CreateAuditEntry(_ context.Context, entry entities.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(entry.ID) == "" {
		return domainerrors.ErrInvalidOperation
	}
	s.audit[entry.ID] = cloneEntry(entry)
	return nil
}

func (s *Store) UpdateAuditEntry(_ context.Context, entry entities.AuditEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.audit[entry.ID]; !exists {
		return domainerrors.ErrAuditEntryNotFound
	}
	s.audit[entry.ID] = cloneEntry(entry)
	return nil
}

func (s *Store) GetAuditEntryByOperation(_ context.Context, operationID string) (entities.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, entry := range s.audit {
		if entry.OperationID == strings.TrimSpace(operationID) {
			return cloneEntry(entry), nil
		}
	}
	return entities.AuditEntry{}, domainerrors.ErrAuditEntryNotFound
}

func (s *Store) ListAuditEntries(_ context.Context, limit int, offset int) ([]entities.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries := make([]entities.AuditEntry, 0, len(s.audit))
	for _, entry := range s.audit {
		entries = append(entries, cloneEntry(entry))
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].CreatedAt.Equal(entries[j].CreatedAt) {
			return entries[i].ID > entries[j].ID
		}
		return entries[i].CreatedAt.After(entries[j].CreatedAt)
	})
	return page(entries, limit, offset), nil
}

func (s *Store) AppendOutbox(_ context.Context, message outbox.Message) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	messageID := strings.TrimSpace(message.ID)
	if messageID == "" {
		messageID = uuid.NewString()
	}
	if _, exists := s.outbox[messageID]; exists {
		return nil
	}
	message.ID = messageID
	message.Payload = append([]byte(nil), message.Payload...)
	s.outbox[messageID] = message
	return nil
}

func (s *Store) ListPendingOutbox(_ context.Context, limit int) ([]outbox.Message, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}
	rows := make([]outbox.Message, 0, len(s.outbox))
	for _, row := range s.outbox {
		if row.PublishedAt == nil {
			row.Payload = append([]byte(nil), row.Payload...)
			rows = append(rows, row)
		}
	}
	sort.Slice(rows, func(i, j int) bool {
		return rows[i].CreatedAt.Before(rows[j].CreatedAt)
	})
	if len(rows) > limit {
		rows = rows[:limit]
	}
	return rows, nil
}

func (s *Store) MarkOutboxPublished(_ context.Context, outboxID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	row, exists := s.outbox[strings.TrimSpace(outboxID)]
	if !exists {
		return domainerrors.ErrInvalidOperation
	}
	timestamp := publishedAt.UTC()
	row.PublishedAt = &timestamp
	row.Status = outbox.StatusPublished
	s.outbox[outboxID] = row
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func cloneRecord(record entities.OperationRecord) entities.OperationRecord {
	record.Outcomes = append([]entities.RecipientOutcome(nil), record.Outcomes...)
	if record.CompletedAt != nil {
		completedAt := *record.CompletedAt
		record.CompletedAt = &completedAt
	}
	return record
}

func cloneEntry(entry entities.AuditEntry) entities.AuditEntry {
	metadata := make(map[string]string, len(entry.Metadata))
	for key, value := range entry.Metadata {
		metadata[key] = value
	}
	entry.Metadata = metadata
	if entry.ResolvedAt != nil {
		resolvedAt := *entry.ResolvedAt
		entry.ResolvedAt = &resolvedAt
	}
	return entry
}

func page[T any](items []T, limit int, offset int) []T {
	if offset >= len(items) {
		return []T{}
	}
	items = items[offset:]
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items
}

var _ ports.Repository = (*Store)(nil)
var _ ports.AuditRepository = (*Store)(nil)
var _ ports.OutboxWriter = (*Store)(nil)
var _ ports.OutboxRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
