package transfer

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/calebmonroy/stocktrail-backend/internal/items"
	"github.com/calebmonroy/stocktrail-backend/pkg/db/models"
	pkgerrors "github.com/calebmonroy/stocktrail-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeInventoryLoader struct {
	rows map[uuid.UUID]*models.Inventory
}

func (f *fakeInventoryLoader) FindByID(_ context.Context, id uuid.UUID) (*models.Inventory, error) {
	inv, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return inv, nil
}

type fakeItemLister struct {
	rows []models.Item
}

func (f *fakeItemLister) ListByInventory(_ context.Context, _ uuid.UUID) ([]models.Item, error) {
	return f.rows, nil
}

type fakeItemCreator struct {
	created []items.CreateItemInput
	failOn  string
}

func (f *fakeItemCreator) Create(_ context.Context, _ uuid.UUID, input items.CreateItemInput) (*items.ItemDTO, error) {
	if f.failOn != "" && input.Name == f.failOn {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "quantity_in_stock cannot be negative")
	}
	f.created = append(f.created, input)
	return &items.ItemDTO{ID: uuid.New(), Name: input.Name}, nil
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }

func newTransferFixture(t *testing.T) (Service, *fakeItemLister, *fakeItemCreator, uuid.UUID, uuid.UUID) {
	t.Helper()
	owner := uuid.New()
	invID := uuid.New()
	inventories := &fakeInventoryLoader{rows: map[uuid.UUID]*models.Inventory{
		invID: {ID: invID, UserID: owner},
	}}
	lister := &fakeItemLister{}
	creator := &fakeItemCreator{}
	svc, err := NewService(inventories, lister, creator)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, lister, creator, owner, invID
}

func TestExportDecodesColumnsAndStripsBindings(t *testing.T) {
	svc, lister, _, owner, invID := newTransferFixture(t)

	managerID := uuid.New()
	lister.rows = []models.Item{
		{
			ID:          uuid.New(),
			InventoryID: invID,
			Name:        "Pen",
			Tags:        strPtr("vape,flower"),
			OmitTags:    strPtr("edible"),
			Images:      strPtr("https://cdn/a.png|||https://cdn/b.png"),
			Price:       decimal.NewFromInt(12),
			ManagerID:   &managerID,
			IsActive:    true,
			IsApproved:  true,
		},
		{
			ID:          uuid.New(),
			InventoryID: invID,
			Name:        "Legacy",
			Images:      strPtr("https://cdn/c.png,https://cdn/d.png"),
		},
	}

	result, err := svc.Export(context.Background(), owner, invID)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if len(result.Items) != 2 {
		t.Fatalf("expected 2 exported items, got %d", len(result.Items))
	}

	first := result.Items[0]
	if first.ID != lister.rows[0].ID {
		t.Fatalf("exported item must keep its id, got %s", first.ID)
	}
	if got := first.Tags; len(got) != 2 || got[0] != "vape" || got[1] != "flower" {
		t.Fatalf("expected decoded tag list, got %v", got)
	}
	if got := first.Images; len(got) != 2 || got[0] != "https://cdn/a.png" {
		t.Fatalf("expected pipe-decoded images, got %v", got)
	}
	if got := result.Items[1].Images; len(got) != 2 || got[1] != "https://cdn/d.png" {
		t.Fatalf("expected comma fallback images, got %v", got)
	}

	raw, err := json.Marshal(first)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	for _, field := range []string{"inventory_id", "manager_id"} {
		var asMap map[string]any
		if err := json.Unmarshal(raw, &asMap); err != nil {
			t.Fatalf("unmarshal: %v", err)
		}
		if _, ok := asMap[field]; ok {
			t.Fatalf("exported shape must not carry %s", field)
		}
	}
}

func TestExportRequiresOwnership(t *testing.T) {
	svc, _, _, _, invID := newTransferFixture(t)

	_, err := svc.Export(context.Background(), uuid.New(), invID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestImportAcceptsBothFieldShapes(t *testing.T) {
	svc, _, creator, owner, invID := newTransferFixture(t)

	payload := []byte(`[
		{"name": "List shape", "price": "10", "tags": ["vape", "flower"], "images": ["https://cdn/a.png"]},
		{"name": "String shape", "price": "4", "tags": "vape, flower", "images": "https://cdn/a.png|||https://cdn/b.png", "manager_id": "` + uuid.NewString() + `"}
	]`)
	var records []ImportItem
	if err := json.Unmarshal(payload, &records); err != nil {
		t.Fatalf("decode payload: %v", err)
	}

	result, err := svc.Import(context.Background(), owner, invID, records)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Imported != 2 || len(result.Failed) != 0 {
		t.Fatalf("expected clean import, got %+v", result)
	}

	for _, input := range creator.created {
		if len(input.Tags) != 2 || input.Tags[0] != "vape" || input.Tags[1] != "flower" {
			t.Fatalf("expected normalized tags for %q, got %v", input.Name, input.Tags)
		}
		if input.InventoryID != invID {
			t.Fatalf("import must pin the target inventory, got %s", input.InventoryID)
		}
	}
	if got := creator.created[1].Images; len(got) != 2 || got[1] != "https://cdn/b.png" {
		t.Fatalf("expected pipe-decoded images, got %v", got)
	}
}

func TestImportDefaultsFlagsWhenUnset(t *testing.T) {
	svc, _, creator, owner, invID := newTransferFixture(t)

	inactive := false
	records := []ImportItem{
		{Name: "Defaults", Price: decimal.NewFromInt(1)},
		{Name: "Explicit", Price: decimal.NewFromInt(1), IsActive: &inactive},
	}
	if _, err := svc.Import(context.Background(), owner, invID, records); err != nil {
		t.Fatalf("import: %v", err)
	}

	if creator.created[0].IsActive != nil || creator.created[0].IsApproved != nil {
		t.Fatal("unset flags must pass through as nil so the create path defaults them")
	}
	if creator.created[1].IsActive == nil || *creator.created[1].IsActive {
		t.Fatal("explicit is_active=false must survive the import")
	}
}

func TestImportContinuesPastFailedRecords(t *testing.T) {
	svc, _, creator, owner, invID := newTransferFixture(t)
	creator.failOn = "Broken"

	records := []ImportItem{
		{Name: "Good", Price: decimal.NewFromInt(1)},
		{Name: "Broken", Price: decimal.NewFromInt(1), QuantityInStock: intPtr(-3)},
		{Name: "  "},
		{Name: "Also good", Price: decimal.NewFromInt(1)},
	}
	result, err := svc.Import(context.Background(), owner, invID, records)
	if err != nil {
		t.Fatalf("import: %v", err)
	}
	if result.Imported != 2 {
		t.Fatalf("expected 2 imported, got %d", result.Imported)
	}
	if len(result.Failed) != 2 {
		t.Fatalf("expected 2 failures, got %+v", result.Failed)
	}
	if result.Failed[0].Index != 1 || result.Failed[1].Index != 2 {
		t.Fatalf("failure indexes must track the input order, got %+v", result.Failed)
	}
	if len(creator.created) != 2 {
		t.Fatalf("expected the batch to keep going, created %d", len(creator.created))
	}
}
