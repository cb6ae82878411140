package repo

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"

	"storefront-backend/internal/domain"
)

func TestMemoryCatalogRepo_KeepsInsertionOrder(t *testing.T) {
	r := NewMemoryCatalogRepo()
	for _, id := range []domain.ItemID{"b", "a", "c"} {
		if err := r.PutMenuItem(&domain.MenuItem{ID: id, Name: string(id), Price: decimal.NewFromInt(1)}); err != nil {
			t.Fatalf("put: %v", err)
		}
	}
	_ = r.PutMenuItem(&domain.MenuItem{ID: "a", Name: "A2", Price: decimal.NewFromInt(2)})

	items, _ := r.ListMenu()
	if len(items) != 3 || items[0].ID != "b" || items[1].ID != "a" || items[2].ID != "c" {
		t.Fatalf("unexpected order %+v", items)
	}
	if items[1].Name != "A2" {
		t.Fatalf("update not applied: %+v", items[1])
	}

	ok, _ := r.DeleteMenuItem("a")
	if !ok {
		t.Fatalf("delete reported missing")
	}
	if ok, _ := r.DeleteMenuItem("a"); ok {
		t.Fatalf("second delete reported present")
	}
	items, _ = r.ListMenu()
	if len(items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(items))
	}
}

func TestMemoryArchiveRepo_PagesNewestFirst(t *testing.T) {
	r := NewMemoryArchiveRepo()
	base := time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)
	for i, id := range []string{"o1", "o2", "o3"} {
		_ = r.PutArchived(&domain.ArchivedOrder{ID: id, Date: base.Add(time.Duration(i) * time.Hour)})
	}
	page, total, _ := r.ListArchived(1, 2)
	if total != 3 || len(page) != 2 || page[0].ID != "o3" || page[1].ID != "o2" {
		t.Fatalf("page 1 = %+v total=%d", page, total)
	}
	page, _, _ = r.ListArchived(2, 2)
	if len(page) != 1 || page[0].ID != "o1" {
		t.Fatalf("page 2 = %+v", page)
	}
	page, _, _ = r.ListArchived(5, 2)
	if len(page) != 0 {
		t.Fatalf("out of range page = %+v", page)
	}
}
