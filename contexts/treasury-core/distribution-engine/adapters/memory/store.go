package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"seneschal/contexts/treasury-core/distribution-engine/domain/entities"
	domainerrors "seneschal/contexts/treasury-core/distribution-engine/domain/errors"
	"seneschal/contexts/treasury-core/distribution-engine/ports"

	"github.com/google/uuid"
)

// Store keeps holder snapshots in memory. Snapshots are immutable, so the
// store only ever inserts and reads.
type Store struct {
	mu        sync.RWMutex
	snapshots map[string]entities.HolderSnapshot
}

func NewStore() *Store {
	return &Store{
		snapshots: make(map[string]entities.HolderSnapshot),
	}
}

func (s *Store) CreateSnapshot(_ context.Context, snapshot entities.HolderSnapshot) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if strings.TrimSpace(snapshot.ID) == "" {
		return domainerrors.ErrInvalidDistribution
	}
	if _, exists := s.snapshots[snapshot.ID]; exists {
		return domainerrors.ErrSnapshotExists
	}
	s.snapshots[snapshot.ID] = cloneSnapshot(snapshot)
	return nil
}

func (s *Store) GetSnapshot(_ context.Context, snapshotID string) (entities.HolderSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot, exists := s.snapshots[strings.TrimSpace(snapshotID)]
	if !exists {
		return entities.HolderSnapshot{}, domainerrors.ErrSnapshotNotFound
	}
	return cloneSnapshot(snapshot), nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func cloneSnapshot(snapshot entities.HolderSnapshot) entities.HolderSnapshot {
	snapshot.Holders = append([]entities.SnapshotHolder(nil), snapshot.Holders...)
	return snapshot
}

var _ ports.SnapshotRepository = (*Store)(nil)
var _ ports.Clock = (*Store)(nil)
var _ ports.IDGenerator = (*Store)(nil)
