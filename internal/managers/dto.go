package managers

import (
	"time"

	"github.com/calebmonroy/stocktrail-backend/pkg/db/models"
	"github.com/calebmonroy/stocktrail-backend/pkg/tags"
	"github.com/google/uuid"
)

// ManagerDTO is the owner-facing manager payload. Tags is null for an
// unrestricted manager, an empty list for the deny-all scope, and a
// populated list otherwise; the three states are never conflated.
type ManagerDTO struct {
	ID          uuid.UUID `json:"id"`
	InventoryID uuid.UUID `json:"inventory_id"`
	Name        string    `json:"name"`
	Email       *string   `json:"email,omitempty"`
	Tags        *[]string `json:"tags"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// NewManagerDTO builds the DTO from the persisted model.
func NewManagerDTO(manager *models.Manager) *ManagerDTO {
	dto := &ManagerDTO{
		ID:          manager.ID,
		InventoryID: manager.InventoryID,
		Name:        manager.Name,
		Email:       manager.Email,
		CreatedAt:   manager.CreatedAt,
		UpdatedAt:   manager.UpdatedAt,
	}
	if manager.Tags != nil {
		scope := tags.Split(manager.Tags)
		dto.Tags = &scope
	}
	return dto
}
