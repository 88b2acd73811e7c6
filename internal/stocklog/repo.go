package stocklog

import (
	"context"

	"github.com/calebmonroy/stocktrail-backend/pkg/db"
	"github.com/calebmonroy/stocktrail-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Repository manages persistence for stock update log entries.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Append(ctx context.Context, entry *models.StockUpdateLog) (bool, error)
	FindByIdempotencyKey(ctx context.Context, key string) (*models.StockUpdateLog, error)
	ListByInventory(ctx context.Context, inventoryID uuid.UUID, beforeID int64, limit int) ([]models.StockUpdateLog, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a stock log repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

// Append inserts the entry, relying on the unique idempotency key index to
// swallow replays. The boolean reports whether the row was actually written.
func (r *repository) Append(ctx context.Context, entry *models.StockUpdateLog) (bool, error) {
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "idempotency_key"}},
			DoNothing: true,
		}).
		Create(entry)
	if result.Error != nil {
		// A raw unique violation on the key index is still a replay, not
		// a failure.
		if db.IsUniqueViolation(result.Error, "ux_stock_update_logs_idempotency_key") {
			return false, nil
		}
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repository) FindByIdempotencyKey(ctx context.Context, key string) (*models.StockUpdateLog, error) {
	var entry models.StockUpdateLog
	if err := r.db.WithContext(ctx).First(&entry, "idempotency_key = ?", key).Error; err != nil {
		return nil, err
	}
	return &entry, nil
}

// ListByInventory pages the ledger newest first using the sequential id as
// the keyset cursor.
func (r *repository) ListByInventory(ctx context.Context, inventoryID uuid.UUID, beforeID int64, limit int) ([]models.StockUpdateLog, error) {
	qb := r.db.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Order("id DESC").
		Limit(limit)
	if beforeID > 0 {
		qb = qb.Where("id < ?", beforeID)
	}
	var rows []models.StockUpdateLog
	err := qb.Find(&rows).Error
	return rows, err
}
