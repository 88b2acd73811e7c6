package items

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/calebmonroy/stocktrail-backend/internal/authz"
	"github.com/calebmonroy/stocktrail-backend/internal/stocklog"
	"github.com/calebmonroy/stocktrail-backend/pkg/db/models"
	"github.com/calebmonroy/stocktrail-backend/pkg/enums"
	pkgerrors "github.com/calebmonroy/stocktrail-backend/pkg/errors"
	"github.com/calebmonroy/stocktrail-backend/pkg/metrics"
	"github.com/calebmonroy/stocktrail-backend/pkg/pagination"
	"github.com/calebmonroy/stocktrail-backend/pkg/tags"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type inventoryLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Inventory, error)
}

type managerLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Manager, error)
}

type auditRecorder interface {
	Record(ctx context.Context, tx *gorm.DB, input stocklog.RecordInput) (*stocklog.StockUpdateLogDTO, bool, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes the item lifecycle: owner CRUD, manager CRUD behind the
// tag-scope gate, and the quantity mutation paths.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateItemInput) (*ItemDTO, error)
	Update(ctx context.Context, userID, itemID uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	Delete(ctx context.Context, userID, itemID uuid.UUID) error
	ListOwner(ctx context.Context, userID, inventoryID uuid.UUID, input ListItemsInput) (*ItemListResult, error)
	ListPublic(ctx context.Context, inventoryID uuid.UUID, input ListItemsInput) (*PublicItemListResult, error)
	DecrementQuantities(ctx context.Context, userID, inventoryID uuid.UUID, input DecrementInput) ([]QuantityResult, error)

	ManagerCreate(ctx context.Context, managerID uuid.UUID, input CreateItemInput) (*ItemDTO, error)
	ManagerUpdate(ctx context.Context, managerID, itemID uuid.UUID, input UpdateItemInput) (*ItemDTO, error)
	ManagerDelete(ctx context.Context, managerID, itemID uuid.UUID) error
	ManagerSetQuantity(ctx context.Context, managerID, itemID uuid.UUID, input SetQuantityInput) (*ItemDTO, error)
	ManagerListItems(ctx context.Context, managerID uuid.UUID) ([]ItemDTO, error)
}

// ListItemsInput carries listing filters. Tags filters with OR semantics
// on the decoded tag lists.
type ListItemsInput struct {
	Pagination pagination.Params
	ActiveOnly bool
	Tags       []string
	Search     string
}

// DecrementInput is the bulk consumption request: parallel id/delta lists
// plus the caller's idempotency key for the audit trail.
type DecrementInput struct {
	ItemIDs        []uuid.UUID
	Deltas         []int
	IdempotencyKey string
	Source         enums.StockUpdateSource
	Metadata       json.RawMessage
}

// SetQuantityInput is the manager's absolute quantity write.
type SetQuantityInput struct {
	Quantity       int
	IdempotencyKey string
	Metadata       json.RawMessage
}

type service struct {
	repo        Repository
	inventories inventoryLoader
	managers    managerLoader
	audit       auditRecorder
	tx          txRunner
	metrics     *metrics.StockMetrics
}

// NewService constructs an item service instance.
func NewService(repo Repository, inventories inventoryLoader, managers managerLoader, audit auditRecorder, tx txRunner, stockMetrics *metrics.StockMetrics) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("item repository required")
	}
	if inventories == nil {
		return nil, fmt.Errorf("inventory loader required")
	}
	if managers == nil {
		return nil, fmt.Errorf("manager loader required")
	}
	if audit == nil {
		return nil, fmt.Errorf("audit recorder required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{
		repo:        repo,
		inventories: inventories,
		managers:    managers,
		audit:       audit,
		tx:          tx,
		metrics:     stockMetrics,
	}, nil
}

// Create persists a new owner-managed item. Owner-created items are
// approved by default; the payload may opt out.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateItemInput) (*ItemDTO, error) {
	if err := validateQuantity(input.QuantityInStock); err != nil {
		return nil, err
	}
	if err := s.ensureOwnedInventory(ctx, userID, input.InventoryID); err != nil {
		return nil, err
	}

	item := newItemFromInput(input)
	item.IsApproved = true
	if input.IsApproved != nil {
		item.IsApproved = *input.IsApproved
	}

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert item")
	}
	return NewItemDTO(created), nil
}

// Update merges the submitted fields onto the owned item. An owner touching
// an item approves its resulting state, prior manager edits included.
func (s *service) Update(ctx context.Context, userID, itemID uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	if input.QuantityInStock != nil {
		if err := validateQuantity(input.QuantityInStock); err != nil {
			return nil, err
		}
	}

	item, err := s.loadOwnedItem(ctx, userID, itemID)
	if err != nil {
		return nil, err
	}

	applyItemInput(item, input)
	forceOwnerApproval(item)

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update item")
	}
	return NewItemDTO(updated), nil
}

// Delete removes an item from the caller's inventory.
func (s *service) Delete(ctx context.Context, userID, itemID uuid.UUID) error {
	item, err := s.loadOwnedItem(ctx, userID, itemID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete item")
	}
	return nil
}

// ListOwner returns one cursor page of full item DTOs for the owner.
func (s *service) ListOwner(ctx context.Context, userID, inventoryID uuid.UUID, input ListItemsInput) (*ItemListResult, error) {
	if err := s.ensureOwnedInventory(ctx, userID, inventoryID); err != nil {
		return nil, err
	}
	rows, nextCursor, err := s.listPage(ctx, inventoryID, input)
	if err != nil {
		return nil, err
	}
	dtos := make([]ItemDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewItemDTO(&rows[i]))
	}
	return &ItemListResult{Items: dtos, NextCursor: nextCursor}, nil
}

// ListPublic returns one cursor page of reduced item DTOs.
func (s *service) ListPublic(ctx context.Context, inventoryID uuid.UUID, input ListItemsInput) (*PublicItemListResult, error) {
	if _, err := s.inventories.FindByID(ctx, inventoryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load inventory")
	}
	rows, nextCursor, err := s.listPage(ctx, inventoryID, input)
	if err != nil {
		return nil, err
	}
	dtos := make([]PublicItemDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewPublicItemDTO(&rows[i]))
	}
	return &PublicItemListResult{Items: dtos, NextCursor: nextCursor}, nil
}

// listPage fetches one cursor page and then applies the tag filter on the
// decoded column. A filtered page can therefore come back shorter than the
// requested limit while the cursor still advances over the full fetched
// page; callers page until the cursor is empty.
func (s *service) listPage(ctx context.Context, inventoryID uuid.UUID, input ListItemsInput) ([]models.Item, string, error) {
	rows, nextCursor, err := s.repo.ListPage(ctx, ListItemsQuery{
		InventoryID: inventoryID,
		Pagination:  input.Pagination,
		ActiveOnly:  input.ActiveOnly,
		Search:      input.Search,
	})
	if err != nil {
		return nil, "", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list items")
	}
	if len(input.Tags) == 0 {
		return rows, nextCursor, nil
	}
	filtered := rows[:0]
	for i := range rows {
		if authz.TagsAllowed(input.Tags, tags.Split(rows[i].Tags)) {
			filtered = append(filtered, rows[i])
		}
	}
	return filtered, nextCursor, nil
}

// DecrementQuantities consumes stock for many items at once. The id and
// delta lists are parallel and must be the same length. Unknown items and
// items with untracked stock are skipped, never errors; quantities floor
// at zero. Each applied mutation appends one ledger entry keyed by the
// request idempotency key plus the item id, and a replayed key leaves the
// item untouched.
func (s *service) DecrementQuantities(ctx context.Context, userID, inventoryID uuid.UUID, input DecrementInput) ([]QuantityResult, error) {
	if len(input.ItemIDs) != len(input.Deltas) {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "ids and deltas must have the same length")
	}
	if input.IdempotencyKey == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "idempotency key is required")
	}
	source := input.Source
	if source == "" {
		source = enums.StockUpdateSourceManual
	}
	if !source.IsValid() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid stock update source %q", source))
	}
	if err := s.ensureOwnedInventory(ctx, userID, inventoryID); err != nil {
		return nil, err
	}

	started := time.Now()
	var results []QuantityResult
	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		for i, itemID := range input.ItemIDs {
			item, err := txRepo.FindByIDForUpdate(ctx, itemID)
			if err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					continue
				}
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lock item")
			}
			if item.InventoryID != inventoryID || item.QuantityInStock == nil {
				continue
			}

			before := *item.QuantityInStock
			after := before - input.Deltas[i]
			if after < 0 {
				after = 0
			}

			entry, replayed, err := s.audit.Record(ctx, tx, stocklog.RecordInput{
				InventoryID:    inventoryID,
				ItemID:         item.ID,
				QuantityChange: after - before,
				QuantityBefore: before,
				QuantityAfter:  after,
				Source:         source,
				IdempotencyKey: fmt.Sprintf("%s:%s", input.IdempotencyKey, item.ID),
				Metadata:       input.Metadata,
			})
			if err != nil {
				return err
			}
			if replayed {
				results = append(results, QuantityResult{
					ItemID:         item.ID,
					QuantityBefore: entry.QuantityBefore,
					QuantityAfter:  entry.QuantityAfter,
					Replayed:       true,
				})
				continue
			}

			item.QuantityInStock = &after
			if _, err := txRepo.Update(ctx, item); err != nil {
				return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update item quantity")
			}
			results = append(results, QuantityResult{
				ItemID:         item.ID,
				QuantityBefore: before,
				QuantityAfter:  after,
			})
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decrement quantities")
	}

	s.metrics.ObserveBatchDuration(string(source), time.Since(started))
	return results, nil
}

// loadOwnedItem fetches the item and verifies the caller owns its
// inventory. Missing and unreachable both come back as NotFound.
func (s *service) loadOwnedItem(ctx context.Context, userID, itemID uuid.UUID) (*models.Item, error) {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load item")
	}
	if err := s.ensureOwnedInventory(ctx, userID, item.InventoryID); err != nil {
		return nil, err
	}
	return item, nil
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

func validateQuantity(quantity *int) error {
	if quantity != nil && *quantity < 0 {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity_in_stock cannot be negative")
	}
	return nil
}
