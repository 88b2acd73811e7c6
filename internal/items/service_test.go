package items

import (
	"context"
	"fmt"
	"testing"

	"github.com/calebmonroy/stocktrail-backend/internal/stocklog"
	"github.com/calebmonroy/stocktrail-backend/pkg/db/models"
	"github.com/calebmonroy/stocktrail-backend/pkg/enums"
	pkgerrors "github.com/calebmonroy/stocktrail-backend/pkg/errors"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type fakeItemRepo struct {
	rows       map[uuid.UUID]*models.Item
	deleted    []uuid.UUID
	nextCursor string
}

func newFakeItemRepo() *fakeItemRepo {
	return &fakeItemRepo{rows: make(map[uuid.UUID]*models.Item)}
}

func (f *fakeItemRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeItemRepo) Create(_ context.Context, item *models.Item) (*models.Item, error) {
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	copied := *item
	f.rows[item.ID] = &copied
	return item, nil
}

func (f *fakeItemRepo) FindByID(_ context.Context, id uuid.UUID) (*models.Item, error) {
	item, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	copied := *item
	return &copied, nil
}

func (f *fakeItemRepo) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*models.Item, error) {
	return f.FindByID(ctx, id)
}

func (f *fakeItemRepo) ListByInventory(_ context.Context, inventoryID uuid.UUID) ([]models.Item, error) {
	var out []models.Item
	for _, item := range f.rows {
		if item.InventoryID == inventoryID {
			out = append(out, *item)
		}
	}
	return out, nil
}

func (f *fakeItemRepo) ListPage(ctx context.Context, query ListItemsQuery) ([]models.Item, string, error) {
	rows, err := f.ListByInventory(ctx, query.InventoryID)
	if err != nil {
		return nil, "", err
	}
	if query.ActiveOnly {
		filtered := rows[:0]
		for _, item := range rows {
			if item.IsActive {
				filtered = append(filtered, item)
			}
		}
		rows = filtered
	}
	return rows, f.nextCursor, nil
}

func (f *fakeItemRepo) Update(_ context.Context, item *models.Item) (*models.Item, error) {
	copied := *item
	f.rows[item.ID] = &copied
	return item, nil
}

func (f *fakeItemRepo) Delete(_ context.Context, id uuid.UUID) error {
	delete(f.rows, id)
	f.deleted = append(f.deleted, id)
	return nil
}

type fakeInventories struct {
	rows map[uuid.UUID]*models.Inventory
}

func (f *fakeInventories) FindByID(_ context.Context, id uuid.UUID) (*models.Inventory, error) {
	inv, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return inv, nil
}

type fakeManagers struct {
	rows map[uuid.UUID]*models.Manager
}

func (f *fakeManagers) FindByID(_ context.Context, id uuid.UUID) (*models.Manager, error) {
	manager, ok := f.rows[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return manager, nil
}

type fakeAudit struct {
	entries []stocklog.RecordInput
}

func (f *fakeAudit) Record(_ context.Context, _ *gorm.DB, input stocklog.RecordInput) (*stocklog.StockUpdateLogDTO, bool, error) {
	for _, prev := range f.entries {
		if prev.IdempotencyKey == input.IdempotencyKey {
			return &stocklog.StockUpdateLogDTO{
				InventoryID:    prev.InventoryID,
				ItemID:         prev.ItemID,
				QuantityChange: prev.QuantityChange,
				QuantityBefore: prev.QuantityBefore,
				QuantityAfter:  prev.QuantityAfter,
				Source:         string(prev.Source),
				IdempotencyKey: prev.IdempotencyKey,
			}, true, nil
		}
	}
	f.entries = append(f.entries, input)
	return &stocklog.StockUpdateLogDTO{
		InventoryID:    input.InventoryID,
		ItemID:         input.ItemID,
		QuantityChange: input.QuantityChange,
		QuantityBefore: input.QuantityBefore,
		QuantityAfter:  input.QuantityAfter,
		Source:         string(input.Source),
		IdempotencyKey: input.IdempotencyKey,
	}, false, nil
}

type fakeTx struct{}

func (fakeTx) WithTx(_ context.Context, fn func(tx *gorm.DB) error) error {
	return fn(nil)
}

type fixture struct {
	svc         Service
	repo        *fakeItemRepo
	inventories *fakeInventories
	managers    *fakeManagers
	audit       *fakeAudit
	owner       uuid.UUID
	invID       uuid.UUID
}

func strPtr(s string) *string { return &s }
func intPtr(i int) *int       { return &i }
func boolPtr(b bool) *bool    { return &b }

func newFixture(t *testing.T) *fixture {
	t.Helper()
	repo := newFakeItemRepo()
	inventories := &fakeInventories{rows: make(map[uuid.UUID]*models.Inventory)}
	managers := &fakeManagers{rows: make(map[uuid.UUID]*models.Manager)}
	audit := &fakeAudit{}
	svc, err := NewService(repo, inventories, managers, audit, fakeTx{}, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	owner := uuid.New()
	invID := uuid.New()
	inventories.rows[invID] = &models.Inventory{ID: invID, UserID: owner}
	return &fixture{svc: svc, repo: repo, inventories: inventories, managers: managers, audit: audit, owner: owner, invID: invID}
}

func (fx *fixture) addItem(t *testing.T, item *models.Item) *models.Item {
	t.Helper()
	if item.ID == uuid.Nil {
		item.ID = uuid.New()
	}
	if item.InventoryID == uuid.Nil {
		item.InventoryID = fx.invID
	}
	fx.repo.rows[item.ID] = item
	return item
}

func (fx *fixture) addManager(t *testing.T, scope *string) *models.Manager {
	t.Helper()
	manager := &models.Manager{ID: uuid.New(), InventoryID: fx.invID, Name: "mgr", Tags: scope}
	fx.managers.rows[manager.ID] = manager
	return manager
}

func TestOwnerCreateDefaultsToApproved(t *testing.T) {
	fx := newFixture(t)

	dto, err := fx.svc.Create(context.Background(), fx.owner, CreateItemInput{
		InventoryID: fx.invID,
		Name:        "Widget",
		Price:       decimal.NewFromInt(10),
		Tags:        []string{"vape"},
		Images:      []string{"https://cdn/a.png?x=1,2", "https://cdn/b.png"},
	})
	if err != nil {
		t.Fatalf("create: %v", err)
	}
	if !dto.IsApproved {
		t.Fatal("owner-created item must be approved by default")
	}
	if !dto.IsActive {
		t.Fatal("items default to active")
	}
	if dto.ManagerID != nil {
		t.Fatal("owner-created item must not carry a manager binding")
	}

	stored := fx.repo.rows[dto.ID]
	if stored.Images == nil || *stored.Images != "https://cdn/a.png?x=1,2|||https://cdn/b.png" {
		t.Fatalf("expected triple-pipe image column, got %v", stored.Images)
	}

	t.Run("explicitOverride", func(t *testing.T) {
		dto, err := fx.svc.Create(context.Background(), fx.owner, CreateItemInput{
			InventoryID: fx.invID,
			Name:        "Draft",
			Price:       decimal.NewFromInt(5),
			IsApproved:  boolPtr(false),
		})
		if err != nil {
			t.Fatalf("create: %v", err)
		}
		if dto.IsApproved {
			t.Fatal("explicit approval override must be honored")
		}
	})
}

func TestOwnerCreateForeignInventoryIsNotFound(t *testing.T) {
	fx := newFixture(t)

	_, err := fx.svc.Create(context.Background(), uuid.New(), CreateItemInput{
		InventoryID: fx.invID,
		Name:        "Nope",
		Price:       decimal.NewFromInt(1),
	})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestOwnerUpdateForcesApproval(t *testing.T) {
	fx := newFixture(t)
	item := fx.addItem(t, &models.Item{Name: "Pending", IsApproved: false, IsActive: false})

	dto, err := fx.svc.Update(context.Background(), fx.owner, item.ID, UpdateItemInput{
		Name: strPtr("Reviewed"),
	})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if !dto.IsApproved {
		t.Fatal("owner update must force approval")
	}
	if dto.Name != "Reviewed" {
		t.Fatalf("expected merged name, got %s", dto.Name)
	}
	if dto.IsActive {
		t.Fatal("owner update must not silently re-activate")
	}
}

func TestManagerCreateEnforcesScopeAndForcesFlags(t *testing.T) {
	fx := newFixture(t)
	manager := fx.addManager(t, strPtr("vape,flower"))

	t.Run("outOfScope", func(t *testing.T) {
		_, err := fx.svc.ManagerCreate(context.Background(), manager.ID, CreateItemInput{
			InventoryID: fx.invID,
			Name:        "Edible",
			Price:       decimal.NewFromInt(3),
			Tags:        []string{"vape", "edible"},
		})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
			t.Fatalf("expected forbidden, got %v", err)
		}
		if len(fx.repo.rows) != 0 {
			t.Fatal("denied create must not persist anything")
		}
	})

	t.Run("inventoryMismatch", func(t *testing.T) {
		_, err := fx.svc.ManagerCreate(context.Background(), manager.ID, CreateItemInput{
			InventoryID: uuid.New(),
			Name:        "Foreign",
			Price:       decimal.NewFromInt(3),
			Tags:        []string{"vape"},
		})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("inScope", func(t *testing.T) {
		dto, err := fx.svc.ManagerCreate(context.Background(), manager.ID, CreateItemInput{
			InventoryID: fx.invID,
			Name:        "Pen",
			Price:       decimal.NewFromInt(3),
			Tags:        []string{"vape"},
			IsApproved:  boolPtr(true),
		})
		if err != nil {
			t.Fatalf("manager create: %v", err)
		}
		if dto.IsApproved {
			t.Fatal("manager-created item must be unapproved regardless of input")
		}
		if dto.ManagerID == nil || *dto.ManagerID != manager.ID {
			t.Fatal("manager-created item must be pinned to the acting manager")
		}
	})
}

func TestManagerUpdateChecksBindingAndRetiresItem(t *testing.T) {
	fx := newFixture(t)
	manager := fx.addManager(t, strPtr("vape"))
	other := fx.addManager(t, nil)

	item := fx.addItem(t, &models.Item{
		Name:      "Pen",
		Tags:      strPtr("vape"),
		IsActive:  true,
		ManagerID: &manager.ID,
	})

	t.Run("foreignManagerDenied", func(t *testing.T) {
		_, err := fx.svc.ManagerUpdate(context.Background(), other.ID, item.ID, UpdateItemInput{Name: strPtr("Hijack")})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
			t.Fatalf("expected forbidden for unbound manager, got %v", err)
		}
	})

	t.Run("newTagsOutOfScope", func(t *testing.T) {
		newTags := []string{"vape", "edible"}
		_, err := fx.svc.ManagerUpdate(context.Background(), manager.ID, item.ID, UpdateItemInput{Tags: &newTags})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
			t.Fatalf("expected forbidden for out-of-scope tags, got %v", err)
		}
	})

	t.Run("success", func(t *testing.T) {
		activeTrue := true
		dto, err := fx.svc.ManagerUpdate(context.Background(), manager.ID, item.ID, UpdateItemInput{
			Name:     strPtr("Pen v2"),
			IsActive: &activeTrue,
		})
		if err != nil {
			t.Fatalf("manager update: %v", err)
		}
		if dto.IsActive {
			t.Fatal("manager update must retire the item regardless of input")
		}
		if dto.ManagerID == nil || *dto.ManagerID != manager.ID {
			t.Fatal("manager update must re-pin the item")
		}
		if dto.Name != "Pen v2" {
			t.Fatalf("expected merged name, got %s", dto.Name)
		}
	})
}

func TestManagerDeleteRequiresBinding(t *testing.T) {
	fx := newFixture(t)
	manager := fx.addManager(t, nil)
	item := fx.addItem(t, &models.Item{Name: "Owned by owner"})

	err := fx.svc.ManagerDelete(context.Background(), manager.ID, item.ID)
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
		t.Fatalf("expected forbidden, got %v", err)
	}

	bound := fx.addItem(t, &models.Item{Name: "Bound", ManagerID: &manager.ID})
	if err := fx.svc.ManagerDelete(context.Background(), manager.ID, bound.ID); err != nil {
		t.Fatalf("manager delete: %v", err)
	}
	if len(fx.repo.deleted) != 1 || fx.repo.deleted[0] != bound.ID {
		t.Fatalf("expected delete of %s, got %v", bound.ID, fx.repo.deleted)
	}
}

func TestManagerSetQuantity(t *testing.T) {
	fx := newFixture(t)
	manager := fx.addManager(t, strPtr("vape"))

	t.Run("outOfScopeForbidden", func(t *testing.T) {
		item := fx.addItem(t, &models.Item{Name: "Edible", Tags: strPtr("edible"), QuantityInStock: intPtr(4)})
		_, err := fx.svc.ManagerSetQuantity(context.Background(), manager.ID, item.ID, SetQuantityInput{Quantity: 9})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeForbidden {
			t.Fatalf("expected forbidden, got %v", err)
		}
	})

	t.Run("setsAbsoluteValueAndAudits", func(t *testing.T) {
		item := fx.addItem(t, &models.Item{Name: "Pen", Tags: strPtr("vape"), QuantityInStock: intPtr(4)})
		dto, err := fx.svc.ManagerSetQuantity(context.Background(), manager.ID, item.ID, SetQuantityInput{
			Quantity:       9,
			IdempotencyKey: "mgr-set-1",
		})
		if err != nil {
			t.Fatalf("set quantity: %v", err)
		}
		if dto.QuantityInStock == nil || *dto.QuantityInStock != 9 {
			t.Fatalf("expected absolute quantity 9, got %v", dto.QuantityInStock)
		}
		if len(fx.audit.entries) != 1 {
			t.Fatalf("expected one audit entry, got %d", len(fx.audit.entries))
		}
		entry := fx.audit.entries[0]
		if entry.QuantityBefore != 4 || entry.QuantityAfter != 9 || entry.QuantityChange != 5 {
			t.Fatalf("unexpected audit arithmetic %+v", entry)
		}
		if entry.Source != enums.StockUpdateSourceManual {
			t.Fatalf("expected manual source, got %s", entry.Source)
		}
	})

	t.Run("untrackedStockSkipsAudit", func(t *testing.T) {
		item := fx.addItem(t, &models.Item{Name: "Untracked", Tags: strPtr("vape")})
		before := len(fx.audit.entries)
		dto, err := fx.svc.ManagerSetQuantity(context.Background(), manager.ID, item.ID, SetQuantityInput{
			Quantity:       3,
			IdempotencyKey: "mgr-set-2",
		})
		if err != nil {
			t.Fatalf("set quantity: %v", err)
		}
		if dto.QuantityInStock == nil || *dto.QuantityInStock != 3 {
			t.Fatalf("expected quantity 3, got %v", dto.QuantityInStock)
		}
		if len(fx.audit.entries) != before {
			t.Fatal("a nil before-state must not produce an audit row")
		}
	})

	t.Run("negativeRejected", func(t *testing.T) {
		item := fx.addItem(t, &models.Item{Name: "Pen2", Tags: strPtr("vape"), QuantityInStock: intPtr(1)})
		_, err := fx.svc.ManagerSetQuantity(context.Background(), manager.ID, item.ID, SetQuantityInput{Quantity: -1})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestDecrementQuantities(t *testing.T) {
	fx := newFixture(t)

	tracked := fx.addItem(t, &models.Item{Name: "Tracked", QuantityInStock: intPtr(5)})
	low := fx.addItem(t, &models.Item{Name: "Low", QuantityInStock: intPtr(2)})
	untracked := fx.addItem(t, &models.Item{Name: "Untracked"})
	missing := uuid.New()

	t.Run("lengthMismatch", func(t *testing.T) {
		_, err := fx.svc.DecrementQuantities(context.Background(), fx.owner, fx.invID, DecrementInput{
			ItemIDs:        []uuid.UUID{tracked.ID},
			Deltas:         []int{1, 2},
			IdempotencyKey: "batch-0",
		})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("appliesFloorsAndSkips", func(t *testing.T) {
		results, err := fx.svc.DecrementQuantities(context.Background(), fx.owner, fx.invID, DecrementInput{
			ItemIDs:        []uuid.UUID{tracked.ID, low.ID, untracked.ID, missing},
			Deltas:         []int{3, 8, 1, 1},
			IdempotencyKey: "batch-1",
			Source:         enums.StockUpdateSourceWebhook,
		})
		if err != nil {
			t.Fatalf("decrement: %v", err)
		}
		if len(results) != 2 {
			t.Fatalf("expected 2 applied results, got %d", len(results))
		}
		if results[0].ItemID != tracked.ID || results[0].QuantityAfter != 2 {
			t.Fatalf("unexpected first result %+v", results[0])
		}
		if results[1].ItemID != low.ID || results[1].QuantityAfter != 0 {
			t.Fatalf("expected floor at zero, got %+v", results[1])
		}
		if got := *fx.repo.rows[low.ID].QuantityInStock; got != 0 {
			t.Fatalf("expected persisted floor 0, got %d", got)
		}
		if fx.repo.rows[untracked.ID].QuantityInStock != nil {
			t.Fatal("untracked item must stay untracked")
		}
		if len(fx.audit.entries) != 2 {
			t.Fatalf("expected one ledger entry per applied mutation, got %d", len(fx.audit.entries))
		}
		wantKey := fmt.Sprintf("batch-1:%s", tracked.ID)
		if fx.audit.entries[0].IdempotencyKey != wantKey {
			t.Fatalf("expected per-item key %s, got %s", wantKey, fx.audit.entries[0].IdempotencyKey)
		}
		if fx.audit.entries[1].QuantityChange != -2 {
			t.Fatalf("ledger change must reflect the applied floor, got %d", fx.audit.entries[1].QuantityChange)
		}
	})

	t.Run("replayLeavesItemUntouched", func(t *testing.T) {
		results, err := fx.svc.DecrementQuantities(context.Background(), fx.owner, fx.invID, DecrementInput{
			ItemIDs:        []uuid.UUID{tracked.ID},
			Deltas:         []int{3},
			IdempotencyKey: "batch-1",
		})
		if err != nil {
			t.Fatalf("replay: %v", err)
		}
		if len(results) != 1 || !results[0].Replayed {
			t.Fatalf("expected replayed result, got %+v", results)
		}
		if got := *fx.repo.rows[tracked.ID].QuantityInStock; got != 2 {
			t.Fatalf("replay must not re-apply the delta, quantity is %d", got)
		}
	})

	t.Run("notOwner", func(t *testing.T) {
		_, err := fx.svc.DecrementQuantities(context.Background(), uuid.New(), fx.invID, DecrementInput{
			ItemIDs:        []uuid.UUID{tracked.ID},
			Deltas:         []int{1},
			IdempotencyKey: "batch-2",
		})
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
			t.Fatalf("expected not found, got %v", err)
		}
	})
}

func TestManagerListItemsUsesMembershipCheck(t *testing.T) {
	fx := newFixture(t)

	fx.addItem(t, &models.Item{Name: "Vape", Tags: strPtr("vape")})
	fx.addItem(t, &models.Item{Name: "Edible", Tags: strPtr("edible")})
	fx.addItem(t, &models.Item{Name: "Untagged"})

	t.Run("scopedManagerSeesOverlap", func(t *testing.T) {
		manager := fx.addManager(t, strPtr("vape"))
		dtos, err := fx.svc.ManagerListItems(context.Background(), manager.ID)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(dtos) != 1 || dtos[0].Name != "Vape" {
			t.Fatalf("expected only the vape item, got %+v", dtos)
		}
	})

	t.Run("unrestrictedManagerSeesAll", func(t *testing.T) {
		manager := fx.addManager(t, nil)
		dtos, err := fx.svc.ManagerListItems(context.Background(), manager.ID)
		if err != nil {
			t.Fatalf("list: %v", err)
		}
		if len(dtos) != 3 {
			t.Fatalf("expected all items for discovery, got %d", len(dtos))
		}
	})
}

func TestListOwnerTagFilterShortensPageNotCursor(t *testing.T) {
	fx := newFixture(t)
	fx.repo.nextCursor = "next-page"

	fx.addItem(t, &models.Item{Name: "Vape", Tags: strPtr("vape")})
	fx.addItem(t, &models.Item{Name: "Flower", Tags: strPtr("flower")})
	fx.addItem(t, &models.Item{Name: "Untagged"})

	result, err := fx.svc.ListOwner(context.Background(), fx.owner, fx.invID, ListItemsInput{
		Tags: []string{"vape"},
	})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(result.Items) != 1 || result.Items[0].Name != "Vape" {
		t.Fatalf("expected only the tagged item, got %+v", result.Items)
	}
	if result.NextCursor != "next-page" {
		t.Fatalf("cursor must advance over the fetched page, got %q", result.NextCursor)
	}
}
