package stocklog

import (
	"encoding/json"
	"time"

	"github.com/calebmonroy/stocktrail-backend/pkg/db/models"
	"github.com/google/uuid"
)

// StockUpdateLogDTO is one immutable ledger entry as served to owners.
type StockUpdateLogDTO struct {
	ID             int64           `json:"id"`
	InventoryID    uuid.UUID       `json:"inventory_id"`
	ItemID         uuid.UUID       `json:"item_id"`
	QuantityChange int             `json:"quantity_change"`
	QuantityBefore int             `json:"quantity_before"`
	QuantityAfter  int             `json:"quantity_after"`
	Source         string          `json:"source"`
	IdempotencyKey string          `json:"idempotency_key"`
	Metadata       json.RawMessage `json:"metadata,omitempty"`
	CreatedAt      time.Time       `json:"created_at"`
}

// StockLogPage is a keyset page of ledger entries, newest first.
type StockLogPage struct {
	Logs       []StockUpdateLogDTO `json:"logs"`
	NextCursor string              `json:"next_cursor,omitempty"`
}

// NewStockUpdateLogDTO builds the DTO from the persisted model.
func NewStockUpdateLogDTO(entry *models.StockUpdateLog) *StockUpdateLogDTO {
	return &StockUpdateLogDTO{
		ID:             entry.ID,
		InventoryID:    entry.InventoryID,
		ItemID:         entry.ItemID,
		QuantityChange: entry.QuantityChange,
		QuantityBefore: entry.QuantityBefore,
		QuantityAfter:  entry.QuantityAfter,
		Source:         string(entry.Source),
		IdempotencyKey: entry.IdempotencyKey,
		Metadata:       entry.Metadata,
		CreatedAt:      entry.CreatedAt,
	}
}
