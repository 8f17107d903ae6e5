package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"surplusmarket_api/internal/market/models"
)

// MemoryStore is an in-process Store used for demos and tests. It applies
// the same ordering contract as the remote store.
type MemoryStore struct {
	mu     sync.Mutex
	rows   map[int64]models.ListingRow
	nextID int64
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{rows: make(map[int64]models.ListingRow), nextID: 0}
}

// Load replaces the store contents with the given rows, assigning ids to
// rows that have none.
func (s *MemoryStore) Load(rows []models.ListingRow) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.rows = make(map[int64]models.ListingRow, len(rows))
	for _, row := range rows {
		if row.ID == 0 {
			s.nextID++
			row.ID = models.RowNumber(s.nextID)
		} else if int64(row.ID) > s.nextID {
			s.nextID = int64(row.ID)
		}
		s.rows[int64(row.ID)] = row
	}
}

func (s *MemoryStore) QueryListings(_ context.Context, opts QueryOptions) ([]models.ListingRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]models.ListingRow, 0, len(s.rows))
	for _, row := range s.rows {
		if row.Hidden && !opts.IncludeHidden {
			continue
		}
		out = append(out, row)
	}
	// Contract order: featured desc, posted_at desc.
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Featured != out[j].Featured {
			return out[i].Featured
		}
		return postedAt(out[i]).After(postedAt(out[j]))
	})
	if opts.Limit > 0 && len(out) > opts.Limit {
		out = out[:opts.Limit]
	}
	return out, nil
}

func (s *MemoryStore) InsertListing(_ context.Context, row models.ListingRow) (models.ListingRow, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	row.ID = models.RowNumber(s.nextID)
	s.rows[s.nextID] = row
	return row, nil
}

func (s *MemoryStore) UpdateListing(_ context.Context, rowID int64, patch models.RowPatch) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.rows[rowID]
	if !ok {
		return &RemoteError{Op: "update", Status: 404, Msg: fmt.Sprintf("row %d not found", rowID)}
	}
	for col, v := range patch {
		switch col {
		case "title":
			row.Title, _ = v.(string)
		case "location":
			row.Location, _ = v.(string)
		case "category":
			row.Category, _ = v.(string)
		case "price":
			if f, ok := v.(float64); ok {
				row.Price = models.RowNumber(f)
			}
		case "featured":
			row.Featured, _ = v.(bool)
		case "hidden":
			row.Hidden, _ = v.(bool)
		default:
			return &RemoteError{Op: "update", Status: 400, Msg: fmt.Sprintf("column %q not patchable", col)}
		}
	}
	s.rows[rowID] = row
	return nil
}

func (s *MemoryStore) DeleteListing(_ context.Context, rowID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.rows[rowID]; !ok {
		return &RemoteError{Op: "delete", Status: 404, Msg: fmt.Sprintf("row %d not found", rowID)}
	}
	delete(s.rows, rowID)
	return nil
}

func postedAt(row models.ListingRow) time.Time {
	t, err := time.Parse(time.RFC3339, row.PostedAt)
	if err != nil {
		return time.Time{}
	}
	return t
}
