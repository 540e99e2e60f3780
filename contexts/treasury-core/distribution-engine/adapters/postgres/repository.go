package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"strings"
	"time"

	"seneschal/contexts/treasury-core/distribution-engine/domain/entities"
	domainerrors "seneschal/contexts/treasury-core/distribution-engine/domain/errors"
	"seneschal/contexts/treasury-core/distribution-engine/ports"

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

func (r *Repository) CreateSnapshot(ctx context.Context, snapshot entities.HolderSnapshot) error {
	if strings.TrimSpace(snapshot.ID) == "" || strings.TrimSpace(snapshot.AssetID) == "" {
		r.logWarn("snapshot_repo_create_invalid_input",
			"snapshot_id", strings.TrimSpace(snapshot.ID),
			"asset_id", strings.TrimSpace(snapshot.AssetID),
		)
		return domainerrors.ErrInvalidDistribution
	}
	row, err := snapshotModelFromEntity(snapshot)
	if err != nil {
		return r.logError("snapshot_repo_create_encode_failed", err,
			"snapshot_id", snapshot.ID,
		)
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		if isUniqueViolation(err) {
			r.logWarn("snapshot_repo_create_unique_conflict",
				"snapshot_id", snapshot.ID,
			)
			return domainerrors.ErrSnapshotExists
		}
		return r.logError("snapshot_repo_create_failed", err,
			"snapshot_id", snapshot.ID,
		)
	}
	return nil
}

func (r *Repository) GetSnapshot(ctx context.Context, snapshotID string) (entities.HolderSnapshot, error) {
	var row snapshotModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(snapshotID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.HolderSnapshot{}, domainerrors.ErrSnapshotNotFound
		}
		return entities.HolderSnapshot{}, r.logError("snapshot_repo_get_failed", err,
			"snapshot_id", strings.TrimSpace(snapshotID),
		)
	}
	return row.toEntity()
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

func (r *Repository) logError(event string, err error, attrs ...any) error {
	fields := make([]any, 0, len(attrs)+7)
	fields = append(fields,
		"event", event,
		"module", "treasury-core/distribution-engine",
		"layer", "adapter",
		"error", err.Error(),
	)
	fields = append(fields, attrs...)
	r.logger.Error("snapshot repository error", fields...)
	return err
}

func (r *Repository) logWarn(event string, attrs ...any) {
	fields := make([]any, 0, len(attrs)+5)
	fields = append(fields,
		"event", event,
		"module", "treasury-core/distribution-engine",
		"layer", "adapter",
	)
	fields = append(fields, attrs...)
	r.logger.Warn("snapshot repository warning", fields...)
}

type snapshotModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	AssetID     string    `gorm:"column:asset_id"`
	Holders     []byte    `gorm:"column:holders;type:jsonb"`
	HolderCount int       `gorm:"column:holder_count"`
	TotalHeld   string    `gorm:"column:total_held"`
	CapturedAt  time.Time `gorm:"column:captured_at"`
}

func (snapshotModel) TableName() string {
	return "holder_snapshots"
}

func snapshotModelFromEntity(snapshot entities.HolderSnapshot) (snapshotModel, error) {
	holders, err := json.Marshal(snapshot.Holders)
	if err != nil {
		return snapshotModel{}, err
	}
	return snapshotModel{
		ID:          strings.TrimSpace(snapshot.ID),
		AssetID:     strings.TrimSpace(snapshot.AssetID),
		Holders:     holders,
		HolderCount: snapshot.HolderCount,
		TotalHeld:   snapshot.TotalHeld.String(),
		CapturedAt:  snapshot.CapturedAt.UTC(),
	}, nil
}

func (m snapshotModel) toEntity() (entities.HolderSnapshot, error) {
	totalHeld, err := decimal.NewFromString(m.TotalHeld)
	if err != nil {
		return entities.HolderSnapshot{}, err
	}
	var holders []entities.SnapshotHolder
	if len(m.Holders) > 0 {
		if err := json.Unmarshal(m.Holders, &holders); err != nil {
			return entities.HolderSnapshot{}, err
		}
	}
	return entities.HolderSnapshot{
		ID:          m.ID,
		AssetID:     m.AssetID,
		Holders:     holders,
		HolderCount: m.HolderCount,
		TotalHeld:   totalHeld,
		CapturedAt:  m.CapturedAt.UTC(),
	}, nil
}

var _ ports.SnapshotRepository = (*Repository)(nil)
