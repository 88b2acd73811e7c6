package stocklog

import (
	"context"
	"testing"

	"github.com/calebmonroy/stocktrail-backend/pkg/db/models"
	"github.com/calebmonroy/stocktrail-backend/pkg/enums"
	pkgerrors "github.com/calebmonroy/stocktrail-backend/pkg/errors"
	"github.com/calebmonroy/stocktrail-backend/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type fakeLogRepo struct {
	entries []models.StockUpdateLog
	nextID  int64
}

func (f *fakeLogRepo) WithTx(tx *gorm.DB) Repository { return f }

func (f *fakeLogRepo) Append(_ context.Context, entry *models.StockUpdateLog) (bool, error) {
	for i := range f.entries {
		if f.entries[i].IdempotencyKey == entry.IdempotencyKey {
			return false, nil
		}
	}
	f.nextID++
	entry.ID = f.nextID
	f.entries = append(f.entries, *entry)
	return true, nil
}

func (f *fakeLogRepo) FindByIdempotencyKey(_ context.Context, key string) (*models.StockUpdateLog, error) {
	for i := range f.entries {
		if f.entries[i].IdempotencyKey == key {
			copied := f.entries[i]
			return &copied, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeLogRepo) ListByInventory(_ context.Context, inventoryID uuid.UUID, beforeID int64, limit int) ([]models.StockUpdateLog, error) {
	var out []models.StockUpdateLog
	for i := len(f.entries) - 1; i >= 0; i-- {
		entry := f.entries[i]
		if entry.InventoryID != inventoryID {
			continue
		}
		if beforeID > 0 && entry.ID >= beforeID {
			continue
		}
		out = append(out, entry)
		if len(out) == limit {
			break
		}
	}
	return out, nil
}

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

func newTestService(t *testing.T) (Service, *fakeLogRepo, *fakeInventoryLoader) {
	t.Helper()
	repo := &fakeLogRepo{}
	inventories := &fakeInventoryLoader{rows: make(map[uuid.UUID]*models.Inventory)}
	svc, err := NewService(repo, inventories, nil)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	return svc, repo, inventories
}

func validInput() RecordInput {
	return RecordInput{
		InventoryID:    uuid.New(),
		ItemID:         uuid.New(),
		QuantityChange: -3,
		QuantityBefore: 10,
		QuantityAfter:  7,
		Source:         enums.StockUpdateSourceManual,
		IdempotencyKey: "key-1",
	}
}

func TestRecordAppendsEntry(t *testing.T) {
	svc, repo, _ := newTestService(t)

	dto, duplicate, err := svc.Record(context.Background(), nil, validInput())
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if duplicate {
		t.Fatal("first write must not be a duplicate")
	}
	if dto.QuantityAfter != 7 || dto.QuantityBefore != 10 || dto.QuantityChange != -3 {
		t.Fatalf("unexpected dto %+v", dto)
	}
	if len(repo.entries) != 1 {
		t.Fatalf("expected one persisted entry, got %d", len(repo.entries))
	}
}

func TestRecordReplayIsNoOp(t *testing.T) {
	svc, repo, _ := newTestService(t)

	input := validInput()
	first, _, err := svc.Record(context.Background(), nil, input)
	if err != nil {
		t.Fatalf("record: %v", err)
	}

	replay := input
	replay.QuantityBefore = 100
	replay.QuantityAfter = 97
	second, duplicate, err := svc.Record(context.Background(), nil, replay)
	if err != nil {
		t.Fatalf("replay: %v", err)
	}
	if !duplicate {
		t.Fatal("replayed key must be reported as duplicate")
	}
	if second.ID != first.ID || second.QuantityBefore != first.QuantityBefore {
		t.Fatalf("replay must return the original entry untouched: %+v vs %+v", second, first)
	}
	if len(repo.entries) != 1 {
		t.Fatalf("replay must not append, got %d entries", len(repo.entries))
	}
}

func TestRecordValidation(t *testing.T) {
	svc, _, _ := newTestService(t)

	t.Run("arithmeticInvariant", func(t *testing.T) {
		input := validInput()
		input.QuantityAfter = 99
		_, _, err := svc.Record(context.Background(), nil, input)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("missingKey", func(t *testing.T) {
		input := validInput()
		input.IdempotencyKey = ""
		_, _, err := svc.Record(context.Background(), nil, input)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})

	t.Run("badSource", func(t *testing.T) {
		input := validInput()
		input.Source = enums.StockUpdateSource("carrier-pigeon")
		_, _, err := svc.Record(context.Background(), nil, input)
		if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeValidation {
			t.Fatalf("expected validation error, got %v", err)
		}
	})
}

func TestListPagesNewestFirst(t *testing.T) {
	svc, repo, inventories := newTestService(t)

	owner := uuid.New()
	invID := uuid.New()
	inventories.rows[invID] = &models.Inventory{ID: invID, UserID: owner}

	itemID := uuid.New()
	for i := 0; i < 3; i++ {
		input := RecordInput{
			InventoryID:    invID,
			ItemID:         itemID,
			QuantityChange: -1,
			QuantityBefore: 10 - i,
			QuantityAfter:  9 - i,
			Source:         enums.StockUpdateSourceSystem,
			IdempotencyKey: uuid.NewString(),
		}
		if _, _, err := svc.Record(context.Background(), nil, input); err != nil {
			t.Fatalf("record %d: %v", i, err)
		}
	}

	page, err := svc.List(context.Background(), owner, invID, pagination.Params{Limit: 2})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(page.Logs) != 2 {
		t.Fatalf("expected 2 logs, got %d", len(page.Logs))
	}
	if page.Logs[0].ID != 3 || page.Logs[1].ID != 2 {
		t.Fatalf("expected newest first, got ids %d,%d", page.Logs[0].ID, page.Logs[1].ID)
	}
	if page.NextCursor == "" {
		t.Fatal("expected next cursor")
	}

	rest, err := svc.List(context.Background(), owner, invID, pagination.Params{Limit: 2, Cursor: page.NextCursor})
	if err != nil {
		t.Fatalf("list rest: %v", err)
	}
	if len(rest.Logs) != 1 || rest.Logs[0].ID != 1 {
		t.Fatalf("expected final entry, got %+v", rest.Logs)
	}
	if rest.NextCursor != "" {
		t.Fatal("expected no further cursor")
	}
	_ = repo
}

func TestListRequiresOwnership(t *testing.T) {
	svc, _, inventories := newTestService(t)

	invID := uuid.New()
	inventories.rows[invID] = &models.Inventory{ID: invID, UserID: uuid.New()}

	_, err := svc.List(context.Background(), uuid.New(), invID, pagination.Params{})
	if typed := pkgerrors.As(err); typed == nil || typed.Code() != pkgerrors.CodeNotFound {
		t.Fatalf("expected not found, got %v", err)
	}
}
