package managers

import (
	"context"
	"errors"
	"fmt"

	"github.com/calebmonroy/stocktrail-backend/pkg/db/models"
	pkgerrors "github.com/calebmonroy/stocktrail-backend/pkg/errors"
	"github.com/calebmonroy/stocktrail-backend/pkg/tags"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type inventoryLoader interface {
	FindByID(ctx context.Context, id uuid.UUID) (*models.Inventory, error)
}

type txRunner interface {
	WithTx(ctx context.Context, fn func(tx *gorm.DB) error) error
}

// Service exposes owner-gated manager administration.
type Service interface {
	Create(ctx context.Context, userID, inventoryID uuid.UUID, input ManagerInput) (*ManagerDTO, error)
	Get(ctx context.Context, userID, managerID uuid.UUID) (*ManagerDTO, error)
	List(ctx context.Context, userID, inventoryID uuid.UUID) ([]ManagerDTO, error)
	Update(ctx context.Context, userID, managerID uuid.UUID, input ManagerInput) (*ManagerDTO, error)
	Delete(ctx context.Context, userID, managerID uuid.UUID) error
}

// ManagerInput is the full manager representation for create and replace.
// Tags keeps the tri-state scope: nil means unrestricted, an empty list is
// the explicit deny-all scope, and a populated list restricts the grant.
type ManagerInput struct {
	Name  string
	Email *string
	Tags  *[]string
}

type service struct {
	repo        Repository
	inventories inventoryLoader
	tx          txRunner
}

// NewService constructs a manager service instance.
func NewService(repo Repository, inventories inventoryLoader, tx txRunner) (Service, error) {
	if repo == nil {
		return nil, fmt.Errorf("manager repository required")
	}
	if inventories == nil {
		return nil, fmt.Errorf("inventory loader required")
	}
	if tx == nil {
		return nil, fmt.Errorf("tx runner required")
	}
	return &service{repo: repo, inventories: inventories, tx: tx}, nil
}

// Create adds a manager to the caller's inventory.
func (s *service) Create(ctx context.Context, userID, inventoryID uuid.UUID, input ManagerInput) (*ManagerDTO, error) {
	if err := s.ensureOwnedInventory(ctx, userID, inventoryID); err != nil {
		return nil, err
	}

	manager := &models.Manager{
		InventoryID: inventoryID,
		Name:        input.Name,
		Email:       input.Email,
		Tags:        scopeColumn(input.Tags),
	}
	created, err := s.repo.Create(ctx, manager)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: insert manager")
	}
	return NewManagerDTO(created), nil
}

// Get returns one manager of an inventory the caller owns.
func (s *service) Get(ctx context.Context, userID, managerID uuid.UUID) (*ManagerDTO, error) {
	manager, err := s.loadOwned(ctx, userID, managerID)
	if err != nil {
		return nil, err
	}
	return NewManagerDTO(manager), nil
}

// List returns all managers of the caller's inventory.
func (s *service) List(ctx context.Context, userID, inventoryID uuid.UUID) ([]ManagerDTO, error) {
	if err := s.ensureOwnedInventory(ctx, userID, inventoryID); err != nil {
		return nil, err
	}
	rows, err := s.repo.ListByInventory(ctx, inventoryID)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: list managers")
	}
	dtos := make([]ManagerDTO, 0, len(rows))
	for i := range rows {
		dtos = append(dtos, *NewManagerDTO(&rows[i]))
	}
	return dtos, nil
}

// Update replaces the manager's representation. The inventory binding is
// immutable; only name, email, and scope are settable.
func (s *service) Update(ctx context.Context, userID, managerID uuid.UUID, input ManagerInput) (*ManagerDTO, error) {
	manager, err := s.loadOwned(ctx, userID, managerID)
	if err != nil {
		return nil, err
	}

	manager.Name = input.Name
	manager.Email = input.Email
	manager.Tags = scopeColumn(input.Tags)

	updated, err := s.repo.Update(ctx, manager)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: update manager")
	}
	return NewManagerDTO(updated), nil
}

// Delete removes the manager and, in the same transaction, nulls the
// manager reference on every item they managed so those items revert to
// owner management instead of dangling.
func (s *service) Delete(ctx context.Context, userID, managerID uuid.UUID) error {
	if _, err := s.loadOwned(ctx, userID, managerID); err != nil {
		return err
	}

	err := s.tx.WithTx(ctx, func(tx *gorm.DB) error {
		txRepo := s.repo.WithTx(tx)
		if err := txRepo.DetachItems(ctx, managerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: detach manager items")
		}
		if err := txRepo.Delete(ctx, managerID); err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: delete manager")
		}
		return nil
	})
	if err != nil {
		if pkgerrors.As(err) != nil {
			return err
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete manager")
	}
	return nil
}

// loadOwned fetches the manager and walks the ownership chain. Missing
// managers and managers of someone else's inventory both surface as
// NotFound.
func (s *service) loadOwned(ctx context.Context, userID, managerID uuid.UUID) (*models.Manager, error) {
	manager, err := s.repo.FindByID(ctx, managerID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "manager not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "db: load manager")
	}
	if err := s.ensureOwnedInventory(ctx, userID, manager.InventoryID); err != nil {
		return nil, err
	}
	return manager, nil
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

// scopeColumn encodes the tri-state scope onto the persisted column: nil
// stays NULL (unrestricted) and an explicit empty list becomes the empty
// string (deny all), never NULL.
func scopeColumn(scope *[]string) *string {
	if scope == nil {
		return nil
	}
	joined := tags.Join(*scope)
	if joined == nil {
		empty := ""
		return &empty
	}
	return joined
}
