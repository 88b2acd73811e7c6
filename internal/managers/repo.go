package managers

import (
	"context"

	"github.com/calebmonroy/stocktrail-backend/pkg/db/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Repository manages persistence for managers.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, manager *models.Manager) (*models.Manager, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Manager, error)
	ListByInventory(ctx context.Context, inventoryID uuid.UUID) ([]models.Manager, error)
	Update(ctx context.Context, manager *models.Manager) (*models.Manager, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DetachItems(ctx context.Context, managerID uuid.UUID) error
}

type repository struct {
	db *gorm.DB
}

// NewRepository returns a manager repository bound to the provided database.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, manager *models.Manager) (*models.Manager, error) {
	if err := r.db.WithContext(ctx).Create(manager).Error; err != nil {
		return nil, err
	}
	return manager, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Manager, error) {
	var manager models.Manager
	if err := r.db.WithContext(ctx).First(&manager, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &manager, nil
}

func (r *repository) ListByInventory(ctx context.Context, inventoryID uuid.UUID) ([]models.Manager, error) {
	var rows []models.Manager
	err := r.db.WithContext(ctx).
		Where("inventory_id = ?", inventoryID).
		Order("created_at DESC").
		Find(&rows).
		Error
	return rows, err
}

func (r *repository) Update(ctx context.Context, manager *models.Manager) (*models.Manager, error) {
	if err := r.db.WithContext(ctx).Save(manager).Error; err != nil {
		return nil, err
	}
	return manager, nil
}

func (r *repository) Delete(ctx context.Context, id uuid.UUID) error {
	return r.db.WithContext(ctx).Where("id = ?", id).Delete(&models.Manager{}).Error
}

// DetachItems nulls out manager_id on every item the manager owns so the
// rows fall back to owner management.
func (r *repository) DetachItems(ctx context.Context, managerID uuid.UUID) error {
	return r.db.WithContext(ctx).
		Model(&models.Item{}).
		Where("manager_id = ?", managerID).
		Update("manager_id", nil).
		Error
}
