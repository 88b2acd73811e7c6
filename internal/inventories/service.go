package inventories

import (
	"context"
	"errors"
	"fmt"

	"github.com/calebmonroy/stocktrail-backend/pkg/db/models"
	pkgerrors "github.com/calebmonroy/stocktrail-backend/pkg/errors"
	"github.com/calebmonroy/stocktrail-backend/pkg/tags"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type inventoryRepository interface {
	Create(ctx context.Context, inv *models.Inventory) (*models.Inventory, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Inventory, error)
	ListByUser(ctx context.Context, userID uuid.UUID) ([]models.Inventory, error)
	Update(ctx context.Context, inv *models.Inventory) (*models.Inventory, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Service exposes inventory CRUD for owners plus the public read.
type Service interface {
	Create(ctx context.Context, userID uuid.UUID, input CreateInventoryInput) (*InventoryDTO, error)
	Get(ctx context.Context, userID, inventoryID uuid.UUID) (*InventoryDTO, error)
	GetPublic(ctx context.Context, inventoryID uuid.UUID) (*PublicInventoryDTO, error)
	List(ctx context.Context, userID uuid.UUID) ([]InventoryDTO, error)
	Update(ctx context.Context, userID, inventoryID uuid.UUID, input UpdateInventoryInput) (*InventoryDTO, error)
	Delete(ctx context.Context, userID, inventoryID uuid.UUID) error
}

// CreateInventoryInput holds the validated payload to create an inventory.
type CreateInventoryInput struct {
	Name                     string
	Currency                 string
	GlobalDiscountPercentage decimal.Decimal
	DefaultTaxRate           decimal.Decimal
	IsTaxInclusive           bool
	Tags                     []string
	OmitTags                 []string
}

// UpdateInventoryInput holds optional mutation values for an inventory.
type UpdateInventoryInput struct {
	Name                     *string
	Currency                 *string
	GlobalDiscountPercentage *decimal.Decimal
	DefaultTaxRate           *decimal.Decimal
	IsTaxInclusive           *bool
	Tags                     *[]string
	OmitTags                 *[]string
}

type service struct {
	repo inventoryRepository
}

// NewService constructs an inventory service instance.
func NewService(repo inventoryRepository) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("inventory repository required")
	}
	return &service{repo: repo}, nil
}

// Create persists a new inventory owned by the caller.
func (s *service) Create(ctx context.Context, userID uuid.UUID, input CreateInventoryInput) (*InventoryDTO, error) {
	inv := &models.Inventory{
		UserID:                   userID,
		Name:                     input.Name,
		Currency:                 input.Currency,
		GlobalDiscountPercentage: input.GlobalDiscountPercentage,
		DefaultTaxRate:           input.DefaultTaxRate,
		IsTaxInclusive:           input.IsTaxInclusive,
		Tags:                     tags.Join(input.Tags),
		OmitTags:                 tags.Join(input.OmitTags),
	}
	created, err := s.repo.Create(ctx, inv)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert inventory")
	}
	return NewInventoryDTO(created), nil
}

// Get returns the owner view of one inventory.
func (s *service) Get(ctx context.Context, userID, inventoryID uuid.UUID) (*InventoryDTO, error) {
	inv, err := s.loadOwned(ctx, userID, inventoryID)
	if err != nil {
		return nil, err
	}
	return NewInventoryDTO(inv), nil
}

// GetPublic returns the reduced inventory view served to non-owners.
func (s *service) GetPublic(ctx context.Context, inventoryID uuid.UUID) (*PublicInventoryDTO, error) {
	inv, err := s.repo.FindByID(ctx, inventoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load inventory")
	}
	return NewPublicInventoryDTO(inv), nil
}

// List returns all inventories owned by the caller.
func (s *service) List(ctx context.Context, userID uuid.UUID) ([]InventoryDTO, error) {
	rows, err := s.repo.ListByUser(ctx, userID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list inventories")
	}
	dtos := make([]InventoryDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewInventoryDTO(&rows[i]))
	}
	return dtos, nil
}

// Update merges the submitted fields onto the owned inventory and saves it.
func (s *service) Update(ctx context.Context, userID, inventoryID uuid.UUID, input UpdateInventoryInput) (*InventoryDTO, error) {
	inv, err := s.loadOwned(ctx, userID, inventoryID)
	if err != nil {
		return nil, err
	}

	applyInventoryInput(inv, input)

	updated, err := s.repo.Update(ctx, inv)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update inventory")
	}
	return NewInventoryDTO(updated), nil
}

// Delete removes the owned inventory; items, managers, and logs cascade.
func (s *service) Delete(ctx context.Context, userID, inventoryID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, userID, inventoryID); err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, inventoryID); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete inventory")
	}
	return nil
}

// loadOwned fetches the inventory and verifies ownership. A missing row and
// a row owned by someone else both come back as NotFound so callers cannot
// probe for existence.
func (s *service) loadOwned(ctx context.Context, userID, inventoryID uuid.UUID) (*models.Inventory, error) {
	inv, err := s.repo.FindByID(ctx, inventoryID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load inventory")
	}
	if inv.UserID != userID {
		return nil, pkgerrors.New(pkgerrors.CodeNotFound, "inventory not found")
	}
	return inv, nil
}

// applyInventoryInput enumerates the externally settable fields. Ownership
// and id are never merged from input.
func applyInventoryInput(inv *models.Inventory, input UpdateInventoryInput) {
	if input.Name != nil {
		inv.Name = *input.Name
	}
	if input.Currency != nil {
		inv.Currency = *input.Currency
	}
	if input.GlobalDiscountPercentage != nil {
		inv.GlobalDiscountPercentage = *input.GlobalDiscountPercentage
	}
	if input.DefaultTaxRate != nil {
		inv.DefaultTaxRate = *input.DefaultTaxRate
	}
	if input.IsTaxInclusive != nil {
		inv.IsTaxInclusive = *input.IsTaxInclusive
	}
	if input.Tags != nil {
		inv.Tags = tags.Join(*input.Tags)
	}
	if input.OmitTags != nil {
		inv.OmitTags = tags.Join(*input.OmitTags)
	}
}
