package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/calebmonroy/stocktrail-backend/pkg/enums"
)

// StockUpdateLog is one immutable ledger entry per stock quantity change.
// The unique idempotency_key index makes replayed writes a no-op; rows are
// never updated or deleted outside the inventory cascade.
type StockUpdateLog struct {
	ID             int64                   `gorm:"column:id;primaryKey;autoIncrement"`
	InventoryID    uuid.UUID               `gorm:"column:inventory_id;type:uuid;not null"`
	ItemID         uuid.UUID               `gorm:"column:item_id;type:uuid;not null"`
	QuantityChange int                     `gorm:"column:quantity_change;not null"`
	QuantityBefore int                     `gorm:"column:quantity_before;not null"`
	QuantityAfter  int                     `gorm:"column:quantity_after;not null"`
	Source         enums.StockUpdateSource `gorm:"column:source;type:stock_update_source;not null"`
	IdempotencyKey string                  `gorm:"column:idempotency_key;not null;uniqueIndex:ux_stock_update_logs_idempotency_key"`
	Metadata       json.RawMessage         `gorm:"column:metadata;type:jsonb"`
	CreatedAt      time.Time               `gorm:"column:created_at;autoCreateTime"`
}

func (StockUpdateLog) TableName() string {
	return "stock_update_logs"
}
