package stocklog

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/calebmonroy/stocktrail-backend/pkg/db/models"
	"github.com/calebmonroy/stocktrail-backend/pkg/enums"
	pkgerrors "github.com/calebmonroy/stocktrail-backend/pkg/errors"
	"github.com/calebmonroy/stocktrail-backend/pkg/metrics"
	"github.com/calebmonroy/stocktrail-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type inventoryLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Inventory, error)
}

// Service records and serves the append-only stock mutation ledger.
type Service interface {
	Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*StockUpdateLogDTO, bool, error)
	List(ctx context.Context, userID, inventoryID uuid.UUID, params pagination.Params) (*StockLogPage, error)
}

// RecordInput captures one quantity mutation. Before and after are read
// from real item state by the caller, never fabricated.
type RecordInput struct {
	InventoryID    uuid.UUID
	ItemID         uuid.UUID
	QuantityChange int
	QuantityBefore int
	QuantityAfter  int
	Source         enums.StockUpdateSource
	IdempotencyKey string
	Metadata       json.RawMessage
}

type service struct {
	repo        Repository
	inventories inventoryLoader
	metrics     *metrics.StockMetrics
}

// NewService wires a stock log service with the provided repository.
func NewService(repo Repository, inventories inventoryLoader, stockMetrics *metrics.StockMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("stock log repository required")
	}
	if inventories == nil {
		return nil, fmt.Errorf("inventory loader required")
	}
	return &service{repo: repo, inventories: inventories, metrics: stockMetrics}, nil
}

// Record appends one ledger entry inside the caller's transaction. A replay
// of an already-recorded idempotency key is a no-op: the existing entry is
// returned untouched and the second return value is true.
func (s *service) Record(ctx context.Context, tx *gorm.DB, input RecordInput) (*StockUpdateLogDTO, bool, error) {
	if input.InventoryID == uuid.Nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "inventory id is required")
	}
	if input.ItemID == uuid.Nil {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	if input.IdempotencyKey == "" {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "idempotency key is required")
	}
	if !input.Source.IsValid() {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stock update source %q", input.Source))
	}
	if input.QuantityAfter != input.QuantityBefore+input.QuantityChange {
		return nil, false, pkgerrors.New(pkgerrors.CodeValidation, "quantity_after must equal quantity_before plus quantity_change")
	}

	repo := s.repo.WithTx(tx)
	entry := &models.StockUpdateLog{
		InventoryID:    input.InventoryID,
		ItemID:         input.ItemID,
		QuantityChange: input.QuantityChange,
		QuantityBefore: input.QuantityBefore,
		QuantityAfter:  input.QuantityAfter,
		Source:         input.Source,
		IdempotencyKey: input.IdempotencyKey,
		Metadata:       input.Metadata,
	}

	written, err := repo.Append(ctx, entry)
	if err != nil {
		return nil, false, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: append stock update log")
	}
	if written {
		s.metrics.IncMutation(string(input.Source))
		return NewStockUpdateLogDTO(entry), false, nil
	}

	s.metrics.IncDuplicate(string(input.Source))
	existing, err := repo.FindByIdempotencyKey(ctx, input.IdempotencyKey)
	if err != nil {
		return nil, true, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load replayed stock update log")
	}
	return NewStockUpdateLogDTO(existing), true, nil
}

// List pages the owner's ledger newest first. The cursor is the numeric id
// of the last entry on the previous page.
func (s *service) List(ctx context.Context, userID, inventoryID uuid.UUID, params pagination.Params) (*StockLogPage, error) {
	if err := s.ensureOwnedInventory(ctx, userID, inventoryID); err != nil {
		return nil, err
	}

	beforeID, err := parseLogCursor(params.Cursor)
	if err != nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "invalid cursor")
	}

	pageSize := pagination.NormalizeLimit(params.Limit)
	rows, err := s.repo.ListByInventory(ctx, inventoryID, beforeID, pageSize+1)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list stock update logs")
	}

	nextCursor := ""
	if len(rows) > pageSize {
		rows = rows[:pageSize]
		nextCursor = strconv.FormatInt(rows[len(rows)-1].ID, 10)
	}

	dtos := make([]StockUpdateLogDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewStockUpdateLogDTO(&rows[i]))
	}
	return &StockLogPage{Logs: dtos, NextCursor: nextCursor}, nil
}

func (s *service) ensureOwnedInventory(ctx context.Context, userID, inventoryID uuid.UUID) error {
	inv, err := s.inventories.FindByID(ctx, inventoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "inventory not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load inventory")
	}
	if inv.UserID != userID {
		return pkgerrors.New(pkgerrors.CodeNotFound, "inventory not found")
	}
	return nil
}

func parseLogCursor(cursor string) (int64, error) {
	if cursor == "" {
		return 0, nil
	}
	id, err := strconv.ParseInt(cursor, 10, 64)
	if err != nil || id <= 0 {
		return 0, fmt.Errorf("invalid log cursor %q", cursor)
	}
	return id, nil
}
