package inventories

import (
	"time"

	"github.com/calebmonroy/stocktrail-backend/pkg/db/models"
	"github.com/calebmonroy/stocktrail-backend/pkg/tags"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// InventoryDTO is the owner-facing inventory payload.
type InventoryDTO struct {
	ID                       uuid.UUID       `json:"id"`
	UserID                   uuid.UUID       `json:"user_id"`
	Name                     string          `json:"name"`
	Currency                 string          `json:"currency"`
	GlobalDiscountPercentage decimal.Decimal `json:"global_discount_percentage"`
	DefaultTaxRate           decimal.Decimal `json:"default_tax_rate"`
	IsTaxInclusive           bool            `json:"is_tax_inclusive"`
	Tags                     []string        `json:"tags"`
	OmitTags                 []string        `json:"omit_tags"`
	CreatedAt                time.Time       `json:"created_at"`
	UpdatedAt                time.Time       `json:"updated_at"`
}

// PublicInventoryDTO is the reduced shape served to non-owners.
type PublicInventoryDTO struct {
	ID             uuid.UUID       `json:"id"`
	Name           string          `json:"name"`
	Currency       string          `json:"currency"`
	DefaultTaxRate decimal.Decimal `json:"default_tax_rate"`
	IsTaxInclusive bool            `json:"is_tax_inclusive"`
	Tags           []string        `json:"tags"`
}

// NewInventoryDTO builds the owner DTO from the persisted model.
func NewInventoryDTO(inv *models.Inventory) *InventoryDTO {
	return &InventoryDTO{
		ID:                       inv.ID,
		UserID:                   inv.UserID,
		Name:                     inv.Name,
		Currency:                 inv.Currency,
		GlobalDiscountPercentage: inv.GlobalDiscountPercentage,
		DefaultTaxRate:           inv.DefaultTaxRate,
		IsTaxInclusive:           inv.IsTaxInclusive,
		Tags:                     tags.Split(inv.Tags),
		OmitTags:                 tags.Split(inv.OmitTags),
		CreatedAt:                inv.CreatedAt,
		UpdatedAt:                inv.UpdatedAt,
	}
}

// NewPublicInventoryDTO builds the non-owner DTO from the persisted model.
func NewPublicInventoryDTO(inv *models.Inventory) *PublicInventoryDTO {
	return &PublicInventoryDTO{
		ID:             inv.ID,
		Name:           inv.Name,
		Currency:       inv.Currency,
		DefaultTaxRate: inv.DefaultTaxRate,
		IsTaxInclusive: inv.IsTaxInclusive,
		Tags:           tags.Split(inv.Tags),
	}
}
