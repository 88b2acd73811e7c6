package transfer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/calebmonroy/stocktrail-backend/internal/items"
	"github.com/calebmonroy/stocktrail-backend/pkg/db/models"
	pkgerrors "github.com/calebmonroy/stocktrail-backend/pkg/errors"
	"github.com/calebmonroy/stocktrail-backend/pkg/tags"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type inventoryLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Inventory, error)
}

type itemLister interface {
	ListByInventory(ctx context.Context, inventoryID uuid.UUID) ([]models.Item, error)
}

type itemCreator interface {
	Create(ctx context.Context, userID uuid.UUID, input items.CreateItemInput) (*items.ItemDTO, error)
}

// Service moves items across the storage boundary: a full decoded dump
// out, a tolerant record-by-record load in.
type Service interface {
	Export(ctx context.Context, userID, inventoryID uuid.UUID) (*ExportResult, error)
	Import(ctx context.Context, userID, inventoryID uuid.UUID, records []ImportItem) (*ImportResult, error)
}

type service struct {
	inventories inventoryLoader
	lister      itemLister
	creator     itemCreator
}

// NewService constructs a transfer service instance.
func NewService(inventories inventoryLoader, lister itemLister, creator itemCreator) (Service, error) {
	if inventories == nil {
		return nil, fmt.Errorf("inventory loader required")
	}
	if lister == nil {
		return nil, fmt.Errorf("item lister required")
	}
	if creator == nil {
		return nil, fmt.Errorf("item creator required")
	}
	return &service{inventories: inventories, lister: lister, creator: creator}, nil
}

// Export dumps every item in the caller's inventory in the decoded bulk
// shape.
func (s *service) Export(ctx context.Context, userID, inventoryID uuid.UUID) (*ExportResult, error) {
	if err := s.ensureOwnedInventory(ctx, userID, inventoryID); err != nil {
		return nil, err
	}
	rows, err := s.lister.ListByInventory(ctx, inventoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list items for export")
	}
	out := make([]ExportedItem, 0, len(rows))
	for i := range rows {
		out = append(out, NewExportedItem(&rows[i]))
	}
	return &ExportResult{Items: out}, nil
}

// Import feeds each record through the owner create path. Imported items
// are always owner-managed; a caller-supplied manager binding is dropped.
// A failed record is reported and the batch keeps going.
func (s *service) Import(ctx context.Context, userID, inventoryID uuid.UUID, records []ImportItem) (*ImportResult, error) {
	if err := s.ensureOwnedInventory(ctx, userID, inventoryID); err != nil {
		return nil, err
	}

	result := &ImportResult{}
	for i, record := range records {
		if strings.TrimSpace(record.Name) == "" {
			result.Failed = append(result.Failed, ImportFailure{Index: i, Error: "name is required"})
			continue
		}
		if _, err := s.creator.Create(ctx, userID, importInput(inventoryID, record)); err != nil {
			result.Failed = append(result.Failed, ImportFailure{Index: i, Name: record.Name, Error: err.Error()})
			continue
		}
		result.Imported++
	}
	return result, nil
}

// importInput maps one inbound record onto the owner create payload. The
// create path already defaults is_active and is_approved to true, so an
// unset flag passes through as nil.
func importInput(inventoryID uuid.UUID, record ImportItem) items.CreateItemInput {
	return items.CreateItemInput{
		InventoryID:        inventoryID,
		Name:               record.Name,
		Description:        record.Description,
		Images:             decodeImages(record.Images),
		SKU:                record.SKU,
		QuantityInStock:    record.QuantityInStock,
		Price:              record.Price,
		DiscountPercentage: record.DiscountPercentage,
		TaxRate:            record.TaxRate,
		ReorderThreshold:   record.ReorderThreshold,
		UnitCost:           record.UnitCost,
		ExternalID:         record.ExternalID,
		Tags:               decodeList(record.Tags),
		OmitTags:           decodeList(record.OmitTags),
		InternalNote:       record.InternalNote,
		IsActive:           record.IsActive,
		IsApproved:         record.IsApproved,
	}
}

func decodeList(value tags.StringOrList) []string {
	if value.IsList {
		return value.Values
	}
	return tags.Split(value.Raw)
}

func decodeImages(value tags.StringOrList) []string {
	if value.IsList {
		return value.Values
	}
	return tags.NormalizeImages(value.Raw)
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
