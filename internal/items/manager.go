package items

import (
	"context"
	"errors"
	"fmt"

	"github.com/calebmonroy/stocktrail-backend/internal/authz"
	"github.com/calebmonroy/stocktrail-backend/internal/stocklog"
	"github.com/calebmonroy/stocktrail-backend/pkg/db/models"
	"github.com/calebmonroy/stocktrail-backend/pkg/enums"
	pkgerrors "github.com/calebmonroy/stocktrail-backend/pkg/errors"
	"github.com/calebmonroy/stocktrail-backend/pkg/tags"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ManagerCreate persists an item on behalf of a manager. The declared tags
// must sit fully inside the manager's scope; the created item is pinned to
// the manager and left unapproved for owner review.
func (s *service) ManagerCreate(ctx context.Context, managerID uuid.UUID, input CreateItemInput) (*ItemDTO, error) {
	if err := validateQuantity(input.QuantityInStock); err != nil {
		return nil, err
	}
	manager, err := s.loadManager(ctx, managerID)
	if err != nil {
		return nil, err
	}
	if input.InventoryID != manager.InventoryID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item inventory does not match manager inventory")
	}
	if !authz.ManagerAllowsTags(manager, input.Tags) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "item tags exceed manager scope")
	}

	item := newItemFromInput(input)
	forceManagerOwnership(item, manager.ID)
	item.IsApproved = false

	created, err := s.repo.Create(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert item")
	}
	return NewItemDTO(created), nil
}

// ManagerUpdate edits an item the manager owns. Checks run in a fixed
// order: existence, inventory linkage, manager binding, then tag scope
// against the item's new tag set. A manager edit re-pins the item and
// retires it from active listing pending owner review.
func (s *service) ManagerUpdate(ctx context.Context, managerID, itemID uuid.UUID, input UpdateItemInput) (*ItemDTO, error) {
	if input.QuantityInStock != nil {
		if err := validateQuantity(input.QuantityInStock); err != nil {
			return nil, err
		}
	}

	manager, err := s.loadManager(ctx, managerID)
	if err != nil {
		return nil, err
	}
	item, err := s.loadManagedItem(ctx, manager, itemID)
	if err != nil {
		return nil, err
	}

	newTags := tags.Split(item.Tags)
	if input.Tags != nil {
		newTags = *input.Tags
	}
	if !authz.ManagerAllowsTags(manager, newTags) {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, "item tags exceed manager scope")
	}

	applyItemInput(item, input)
	forceManagerOwnership(item, manager.ID)
	retireFromListing(item)

	updated, err := s.repo.Update(ctx, item)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update item")
	}
	return NewItemDTO(updated), nil
}

// ManagerDelete removes an item the manager owns.
func (s *service) ManagerDelete(ctx context.Context, managerID, itemID uuid.UUID) error {
	manager, err := s.loadManager(ctx, managerID)
	if err != nil {
		return err
	}
	item, err := s.loadManagedItem(ctx, manager, itemID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, item.ID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete item")
	}
	return nil
}

// ManagerSetQuantity writes an absolute stock quantity on an item inside
// the manager's scope. When the caller supplies an idempotency key and the
// item tracks stock, the write is recorded in the ledger; an untracked
// before-state is never fabricated into an audit row.
func (s *service) ManagerSetQuantity(ctx context.Context, managerID, itemID uuid.UUID, input SetQuantityInput) (*ItemDTO, error) {
	if input.Quantity < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity cannot be negative")
	}

	manager, err := s.loadManager(ctx, managerID)
	if err != nil {
		return nil, err
	}

	var dto *ItemDTO
	err = s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		item, err := txRepo.FindByIDForUpdate(ctx, itemID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
			}
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: lock item")
		}
		if !authz.ManagerCanAccessItem(manager, item) {
			return pkgerrors.New(pkgerrors.CodeForbidden, "item is outside manager scope")
		}

		before := item.QuantityInStock
		quantity := input.Quantity
		item.QuantityInStock = &quantity

		if input.IdempotencyKey != "" && before != nil {
			if _, _, err := s.audit.Record(ctx, tx, stocklog.RecordInput{
				InventoryID:    item.InventoryID,
				ItemID:         item.ID,
				QuantityChange: quantity - *before,
				QuantityBefore: *before,
				QuantityAfter:  quantity,
				Source:         enums.StockUpdateSourceManual,
				IdempotencyKey: input.IdempotencyKey,
				Metadata:       input.Metadata,
			}); err != nil {
				return err
			}
		}

		updated, err := txRepo.Update(ctx, item)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update item quantity")
		}
		dto = NewItemDTO(updated)
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return nil, err
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "set item quantity")
	}
	return dto, nil
}

// ManagerListItems returns the manager's visible slice of the inventory.
// Listing uses the looser membership check: one shared tag is enough, and
// an empty grant hides nothing. The strict subset gate applies to writes
// only.
func (s *service) ManagerListItems(ctx context.Context, managerID uuid.UUID) ([]ItemDTO, error) {
	manager, err := s.loadManager(ctx, managerID)
	if err != nil {
		return nil, err
	}

	rows, err := s.repo.ListByInventory(ctx, manager.InventoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list items")
	}

	allowed := tags.Split(manager.Tags)
	dtos := make([]ItemDTO, 0, len(rows))
	for i := range rows {
		if !authz.TagsAllowed(allowed, tags.Split(rows[i].Tags)) {
			continue
		}
		dtos = append(dtos, *NewItemDTO(&rows[i]))
	}
	return dtos, nil
}

func (s *service) loadManager(ctx context.Context, managerID uuid.UUID) (*models.Manager, error) {
	manager, err := s.managers.FindByID(ctx, managerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "manager not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load manager")
	}
	return manager, nil
}

// loadManagedItem fetches the item and runs the linkage and binding checks
// shared by the manager write paths.
func (s *service) loadManagedItem(ctx context.Context, manager *models.Manager, itemID uuid.UUID) (*models.Item, error) {
	item, err := s.repo.FindByID(ctx, itemID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "item not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load item")
	}
	if item.InventoryID != manager.InventoryID {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "item inventory does not match manager inventory")
	}
	if item.ManagerID == nil || *item.ManagerID != manager.ID {
		return nil, pkgerrors.New(pkgerrors.CodeForbidden, fmt.Sprintf("item is not managed by manager %s", manager.ID))
	}
	return item, nil
}
