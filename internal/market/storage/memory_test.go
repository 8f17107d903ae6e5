package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"surplusmarket_api/internal/market/models"
)

func memRow(title string, posted time.Time, featured, hidden bool) models.ListingRow {
	return models.ListingRow{
		Title:    title,
		Location: "Hamburg",
		Category: "Lumber",
		PostedAt: posted.UTC().Format(time.RFC3339),
		Price:    100,
		SaleMode: "fixed",
		Featured: featured,
		Hidden:   hidden,
	}
}

func TestMemoryQueryOrderAndHidden(t *testing.T) {
	s := NewMemoryStore()
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	s.Load([]models.ListingRow{
		memRow("old", base, false, false),
		memRow("new", base.Add(time.Hour), false, false),
		memRow("featured old", base.Add(-time.Hour), true, false),
		memRow("hidden", base.Add(2*time.Hour), false, true),
	})

	rows, err := s.QueryListings(context.Background(), DefaultQueryOptions(200))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 3 {
		t.Fatalf("hidden row must be excluded, got %d rows", len(rows))
	}
	// Featured first even when older, then newest first.
	if rows[0].Title != "featured old" || rows[1].Title != "new" || rows[2].Title != "old" {
		t.Fatalf("order: %q, %q, %q", rows[0].Title, rows[1].Title, rows[2].Title)
	}

	rows, err = s.QueryListings(context.Background(), QueryOptions{IncludeHidden: true, Limit: 200})
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 4 {
		t.Fatalf("IncludeHidden must return everything, got %d", len(rows))
	}
}

func TestMemoryQueryLimit(t *testing.T) {
	s := NewMemoryStore()
	base := time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC)
	s.Load([]models.ListingRow{
		memRow("a", base, false, false),
		memRow("b", base.Add(time.Hour), false, false),
		memRow("c", base.Add(2*time.Hour), false, false),
	})
	rows, err := s.QueryListings(context.Background(), DefaultQueryOptions(2))
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(rows) != 2 || rows[0].Title != "c" {
		t.Fatalf("limit must cap after ordering, got %d rows", len(rows))
	}
}

func TestMemoryInsertAssignsID(t *testing.T) {
	s := NewMemoryStore()
	row, err := s.InsertListing(context.Background(), memRow("a", time.Now(), false, false))
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if row.ID == 0 {
		t.Fatalf("insert must assign a row id")
	}
	row2, _ := s.InsertListing(context.Background(), memRow("b", time.Now(), false, false))
	if row2.ID == row.ID {
		t.Fatalf("row ids must be unique")
	}
}

func TestMemoryUpdatePatch(t *testing.T) {
	s := NewMemoryStore()
	row, _ := s.InsertListing(context.Background(), memRow("a", time.Now(), false, false))
	rowID := int64(row.ID)

	err := s.UpdateListing(context.Background(), rowID, models.RowPatch{"hidden": true, "price": 250.0})
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	rows, _ := s.QueryListings(context.Background(), QueryOptions{IncludeHidden: true, Limit: 10})
	if !rows[0].Hidden || rows[0].Price != 250 {
		t.Fatalf("patch must apply, got %+v", rows[0])
	}

	err = s.UpdateListing(context.Background(), rowID, models.RowPatch{"seller_id": "nope"})
	var rerr *RemoteError
	if !errors.As(err, &rerr) || rerr.Status != 400 {
		t.Fatalf("non-patchable column must be rejected, got %v", err)
	}

	err = s.UpdateListing(context.Background(), 9999, models.RowPatch{"hidden": true})
	if !errors.As(err, &rerr) || rerr.Status != 404 {
		t.Fatalf("unknown row must 404, got %v", err)
	}
}

func TestMemoryDelete(t *testing.T) {
	s := NewMemoryStore()
	row, _ := s.InsertListing(context.Background(), memRow("a", time.Now(), false, false))

	if err := s.DeleteListing(context.Background(), int64(row.ID)); err != nil {
		t.Fatalf("delete: %v", err)
	}
	var rerr *RemoteError
	if err := s.DeleteListing(context.Background(), int64(row.ID)); !errors.As(err, &rerr) {
		t.Fatalf("double delete must 404, got %v", err)
	}
}

func TestSeedRowsAreDecodable(t *testing.T) {
	rows := SeedRows()
	if len(rows) == 0 {
		t.Fatalf("seed catalogue must not be empty")
	}
	modes := map[string]bool{}
	for _, row := range rows {
		if row.SellerID != nil {
			t.Fatalf("seed rows must carry no seller: %+v", row)
		}
		if row.Title == "" || row.Location == "" || row.Category == "" {
			t.Fatalf("seed row missing required fields: %+v", row)
		}
		if _, err := time.Parse(time.RFC3339, row.PostedAt); err != nil {
			t.Fatalf("seed timestamps must be RFC 3339: %v", err)
		}
		modes[row.SaleMode] = true
	}
	for _, mode := range []string{"fixed", "auction", "offer"} {
		if !modes[mode] {
			t.Fatalf("seed catalogue must cover the %s mode", mode)
		}
	}
}
