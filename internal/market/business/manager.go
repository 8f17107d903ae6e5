package business

import (
	"context"
	"fmt"
	"io"
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"surplusmarket_api/config/values"
	"surplusmarket_api/internal/market/models"
	"surplusmarket_api/internal/market/storage"
	"surplusmarket_api/metrics"
	"surplusmarket_api/pkg/logger"
)

// Draft is the user input for a new listing. Everything arrives as the
// form provided it; the manager validates and derives the rest.
type Draft struct {
	Title        string              `json:"title"`
	Location     string              `json:"location"`
	Category     string              `json:"category"`
	Condition    string              `json:"condition"`
	Quantity     string              `json:"quantity"`
	Image        string              `json:"image"`
	Description  string              `json:"description"`
	Price        float64             `json:"price"`
	SaleMode     models.SaleMode     `json:"sale_mode"`
	Materialpass models.Materialpass `json:"materialpass"`
}

// Validate applies the creation rules: title and location required, price
// a non-negative number, sale mode one of the three known modes when set.
func (d Draft) Validate() error {
	if strings.TrimSpace(d.Title) == "" {
		return &ValidationError{Field: "title", Reason: "required"}
	}
	if strings.TrimSpace(d.Location) == "" {
		return &ValidationError{Field: "location", Reason: "required"}
	}
	if math.IsNaN(d.Price) || math.IsInf(d.Price, 0) || d.Price < 0 {
		return &ValidationError{Field: "price", Reason: "must be a non-negative number"}
	}
	if d.SaleMode != "" && !d.SaleMode.Valid() {
		return &ValidationError{Field: "sale_mode", Reason: fmt.Sprintf("unknown mode %q", d.SaleMode)}
	}
	return nil
}

// EditPatch is the owner-editable subset of a listing. Nil fields stay
// untouched.
type EditPatch struct {
	Title    *string  `json:"title,omitempty"`
	Price    *float64 `json:"price,omitempty"`
	Location *string  `json:"location,omitempty"`
	Category *string  `json:"category,omitempty"`
}

func (p EditPatch) empty() bool {
	return p.Title == nil && p.Price == nil && p.Location == nil && p.Category == nil
}

// CanEdit reports whether the actor owns the listing. Advisory only, used
// to gate edit/delete affordances; the remote store's row policies are the
// real boundary.
func CanEdit(actor *models.Actor, l *models.Listing) bool {
	if actor == nil || actor.ID == "" || l == nil {
		return false
	}
	return l.SellerID != "" && l.SellerID == actor.ID
}

// Manager owns the canonical in-memory listing set and every mutation
// path to it. Mutations apply locally first and then attempt remote
// persistence exactly once; the journal records how each attempt ended.
//
// The set is a copy-on-write snapshot: entries are never mutated in place,
// every change swaps in a new slice. Listings handed out by reads are
// therefore safe to share and must be treated as read-only.
type Manager struct {
	store   storage.Store
	files   storage.FileStore
	journal *Journal
	metrics *metrics.LifecycleMetrics
	log     logger.Logger
	vals    values.MarketValues
	now     func() time.Time

	wg sync.WaitGroup

	mu       sync.RWMutex
	listings []*models.Listing
}

// NewManager wires a manager to its store. files may be nil when the
// deployment has no image bucket; uploads then degrade to "no image".
func NewManager(store storage.Store, files storage.FileStore, log logger.Logger, vals values.MarketValues) *Manager {
	vals.ApplyDefaults()
	return &Manager{
		store:   store,
		files:   files,
		journal: NewJournal(),
		metrics: &metrics.LifecycleMetrics{},
		log:     log,
		vals:    vals,
		now:     time.Now,
	}
}

// Journal exposes the sync journal for inspection.
func (m *Manager) Journal() *Journal { return m.journal }

// Metrics exposes the mutation counters.
func (m *Manager) Metrics() *metrics.LifecycleMetrics { return m.metrics }

// Flush blocks until every in-flight remote persistence attempt has
// settled. Used on shutdown and in tests.
func (m *Manager) Flush() { m.wg.Wait() }

// Refresh replaces the local set with the remote store's current view
// (featured first, newest first, hidden excluded, capped at the configured
// limit). Unsynced local-only listings do not survive a refresh, same as a
// browser reload.
func (m *Manager) Refresh(ctx context.Context) error {
	return m.refresh(ctx, storage.DefaultQueryOptions(m.vals.QueryLimit))
}

// RefreshAll is Refresh with hidden rows included, for moderation sessions
// that need to see what non-admins cannot.
func (m *Manager) RefreshAll(ctx context.Context) error {
	return m.refresh(ctx, storage.QueryOptions{IncludeHidden: true, Limit: m.vals.QueryLimit})
}

func (m *Manager) refresh(ctx context.Context, opts storage.QueryOptions) error {
	rows, err := m.store.QueryListings(ctx, opts)
	if err != nil {
		return fmt.Errorf("refresh listings: %w", err)
	}
	next := make([]*models.Listing, 0, len(rows))
	for _, row := range rows {
		next = append(next, models.DecodeRow(row, m.vals))
	}
	m.mu.Lock()
	m.listings = next
	m.mu.Unlock()
	m.log.Log("refreshed %d listings from remote store", len(next))
	return nil
}

// Visible computes the actor's view: hidden listings are excluded for
// everyone but admins, then the query's filters and order apply.
func (m *Manager) Visible(actor *models.Actor, q Query) []*models.Listing {
	m.mu.RLock()
	snapshot := m.listings
	m.mu.RUnlock()

	in := make([]*models.Listing, 0, len(snapshot))
	for _, l := range snapshot {
		if l.Hidden && !actor.IsAdmin() {
			continue
		}
		in = append(in, l)
	}
	return ApplyQuery(in, q)
}

// Get looks a listing up by its local id.
func (m *Manager) Get(listingID string) (*models.Listing, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, l := range m.listings {
		if l.ID == listingID {
			return l, true
		}
	}
	return nil, false
}

// Len reports the size of the full set, hidden included.
func (m *Manager) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.listings)
}

// ResolveImage uploads a draft image and returns its public URL. Upload
// failure degrades to "" so listing creation proceeds with the category
// placeholder instead of failing.
func (m *Manager) ResolveImage(ctx context.Context, actor *models.Actor, filename string, r io.Reader) string {
	if m.files == nil || actor == nil {
		return ""
	}
	url, err := m.files.UploadImage(ctx, actor.ID, filename, r)
	if err != nil {
		m.log.Error("image upload failed, continuing without image: %v", err)
		return ""
	}
	return url
}

// Create validates the draft, builds the listing with its mode-derived
// fields, prepends it to the local set and persists it remotely in the
// background. A remote failure keeps the local listing (this session's
// state is authoritative) and is recorded in the journal.
func (m *Manager) Create(actor *models.Actor, draft Draft) (*models.Listing, error) {
	if actor == nil || actor.ID == "" {
		return nil, &AuthorizationError{Op: "create", Reason: "sign in to publish a listing"}
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	l := m.buildListing(actor, draft)

	m.mu.Lock()
	next := make([]*models.Listing, 0, len(m.listings)+1)
	next = append(next, l)
	next = append(next, m.listings...)
	m.listings = next
	m.mu.Unlock()

	m.metrics.CreatedCount.Add(1)
	opID := m.journal.Begin(OpCreate, l.ID, 0)
	m.wg.Add(1)
	go m.persistCreate(opID, l.Clone())

	return l, nil
}

func (m *Manager) buildListing(actor *models.Actor, d Draft) *models.Listing {
	now := m.now().UTC()
	mode := d.SaleMode
	if mode == "" {
		mode = models.SaleModeFixed
	}
	l := &models.Listing{
		ID:          uuid.NewString(),
		SellerID:    actor.ID,
		Title:       strings.TrimSpace(d.Title),
		Location:    strings.TrimSpace(d.Location),
		Category:    d.Category,
		Condition:   d.Condition,
		Quantity:    d.Quantity,
		Image:       d.Image,
		Description: d.Description,
		PostedAt:    now,
		Price:       d.Price,
		SaleMode:    mode,
	}
	if l.Image == "" {
		l.Image = models.PlaceholderImage(l.Category, m.vals)
	}
	if len(d.Materialpass) > 0 {
		l.Materialpass = make(models.Materialpass, len(d.Materialpass))
		for k, v := range d.Materialpass {
			l.Materialpass[k] = v
		}
	}
	switch mode {
	case models.SaleModeAuction:
		// The running bid starts absent, which reads as 0.
		deadline := now.Add(time.Duration(m.vals.BidWindowHours) * time.Hour)
		l.BidDeadline = &deadline
	case models.SaleModeOffer:
		floor := math.Floor(d.Price * m.vals.OfferFloorRatio)
		l.MinAcceptable = &floor
	}
	return l
}

// persistCreate runs the one remote insert attempt for a freshly created
// listing. No cancellation: the attempt outlives the request that started
// it.
func (m *Manager) persistCreate(opID string, l *models.Listing) {
	defer m.wg.Done()
	row, err := m.store.InsertListing(context.Background(), models.EncodeRow(l))
	if err != nil {
		m.journal.Fail(opID, err)
		m.metrics.FailedCount.Add(1)
		m.log.Error("listing %s: remote insert failed, keeping local copy: %v", l.ID, err)
		return
	}
	rowID := int64(row.ID)
	m.journal.Confirm(opID, rowID)
	m.metrics.ConfirmedCount.Add(1)

	m.mu.Lock()
	defer m.mu.Unlock()
	for i, cur := range m.listings {
		if cur.ID != l.ID {
			continue
		}
		patched := cur.Clone()
		patched.RowID = rowID
		next := make([]*models.Listing, len(m.listings))
		copy(next, m.listings)
		next[i] = patched
		m.listings = next
		return
	}
	// Deleted locally while the insert was in flight. The journal keeps
	// both operations, so the divergence is visible.
	m.log.Error("listing %s confirmed remotely but no longer present locally (row %d)", l.ID, rowID)
}

// Delete removes a listing. Owner-only. The local removal happens first;
// a remote failure puts the listing back and is returned to the caller,
// since a half-done destructive operation must not go unnoticed.
func (m *Manager) Delete(ctx context.Context, actor *models.Actor, listingID string) error {
	m.mu.Lock()
	idx, l := m.locked(listingID)
	if l == nil {
		m.mu.Unlock()
		return &ValidationError{Field: "listing", Reason: "not found"}
	}
	if !CanEdit(actor, l) {
		m.mu.Unlock()
		return &AuthorizationError{Op: "delete", Reason: "only the seller can remove this listing"}
	}
	next := make([]*models.Listing, 0, len(m.listings)-1)
	next = append(next, m.listings[:idx]...)
	next = append(next, m.listings[idx+1:]...)
	m.listings = next
	m.mu.Unlock()

	opID := m.journal.Begin(OpDelete, l.ID, l.RowID)
	if !l.Persisted() {
		// Never reached the remote store; nothing to delete there.
		m.journal.Confirm(opID, 0)
		m.metrics.ConfirmedCount.Add(1)
		return nil
	}
	if err := m.store.DeleteListing(ctx, l.RowID); err != nil {
		m.journal.Revert(opID, err)
		m.metrics.RevertedCount.Add(1)
		m.restore(idx, l)
		return fmt.Errorf("delete listing %s: %w", l.ID, err)
	}
	m.journal.Confirm(opID, l.RowID)
	m.metrics.ConfirmedCount.Add(1)
	return nil
}

// Update edits the owner-mutable fields of a listing. The local set is
// patched first; a remote failure restores the previous version and is
// returned.
func (m *Manager) Update(ctx context.Context, actor *models.Actor, listingID string, patch EditPatch) (*models.Listing, error) {
	if patch.empty() {
		return nil, &ValidationError{Field: "patch", Reason: "nothing to change"}
	}
	if patch.Title != nil && strings.TrimSpace(*patch.Title) == "" {
		return nil, &ValidationError{Field: "title", Reason: "required"}
	}
	if patch.Location != nil && strings.TrimSpace(*patch.Location) == "" {
		return nil, &ValidationError{Field: "location", Reason: "required"}
	}
	if patch.Price != nil && (math.IsNaN(*patch.Price) || math.IsInf(*patch.Price, 0) || *patch.Price < 0) {
		return nil, &ValidationError{Field: "price", Reason: "must be a non-negative number"}
	}

	m.mu.Lock()
	idx, prev := m.locked(listingID)
	if prev == nil {
		m.mu.Unlock()
		return nil, &ValidationError{Field: "listing", Reason: "not found"}
	}
	if !CanEdit(actor, prev) {
		m.mu.Unlock()
		return nil, &AuthorizationError{Op: "update", Reason: "only the seller can edit this listing"}
	}
	patched := prev.Clone()
	remote := models.RowPatch{}
	if patch.Title != nil {
		patched.Title = strings.TrimSpace(*patch.Title)
		remote["title"] = patched.Title
	}
	if patch.Price != nil {
		patched.Price = *patch.Price
		remote["price"] = patched.Price
	}
	if patch.Location != nil {
		patched.Location = strings.TrimSpace(*patch.Location)
		remote["location"] = patched.Location
	}
	if patch.Category != nil {
		patched.Category = *patch.Category
		remote["category"] = patched.Category
	}
	m.swapLocked(idx, patched)
	m.mu.Unlock()

	opID := m.journal.Begin(OpUpdate, prev.ID, prev.RowID)
	if !prev.Persisted() {
		m.journal.Confirm(opID, 0)
		m.metrics.ConfirmedCount.Add(1)
		return patched, nil
	}
	if err := m.store.UpdateListing(ctx, prev.RowID, remote); err != nil {
		m.journal.Revert(opID, err)
		m.metrics.RevertedCount.Add(1)
		m.swap(patched.ID, prev)
		return nil, fmt.Errorf("update listing %s: %w", prev.ID, err)
	}
	m.journal.Confirm(opID, prev.RowID)
	m.metrics.ConfirmedCount.Add(1)
	return patched, nil
}

// AdminUpdate toggles the moderation flags. Admin capability required;
// featured and hidden are the only fields mutable through this path. Same
// optimistic-then-revert contract as Update.
func (m *Manager) AdminUpdate(ctx context.Context, actor *models.Actor, listingID string, featured, hidden *bool) (*models.Listing, error) {
	if !actor.IsAdmin() {
		return nil, &AuthorizationError{Op: "moderate", Reason: "admin capability required"}
	}
	if featured == nil && hidden == nil {
		return nil, &ValidationError{Field: "patch", Reason: "nothing to change"}
	}

	m.mu.Lock()
	idx, prev := m.locked(listingID)
	if prev == nil {
		m.mu.Unlock()
		return nil, &ValidationError{Field: "listing", Reason: "not found"}
	}
	patched := prev.Clone()
	if featured != nil {
		patched.Featured = *featured
	}
	if hidden != nil {
		patched.Hidden = *hidden
	}
	m.swapLocked(idx, patched)
	m.mu.Unlock()

	opID := m.journal.Begin(OpUpdate, prev.ID, prev.RowID)
	if !prev.Persisted() {
		m.journal.Confirm(opID, 0)
		m.metrics.ConfirmedCount.Add(1)
		return patched, nil
	}
	if err := m.store.UpdateListing(ctx, prev.RowID, models.ModerationPatch(featured, hidden)); err != nil {
		m.journal.Revert(opID, err)
		m.metrics.RevertedCount.Add(1)
		m.swap(patched.ID, prev)
		return nil, fmt.Errorf("moderate listing %s: %w", prev.ID, err)
	}
	m.journal.Confirm(opID, prev.RowID)
	m.metrics.ConfirmedCount.Add(1)
	return patched, nil
}

// locked finds a listing by local id. Callers hold m.mu.
func (m *Manager) locked(listingID string) (int, *models.Listing) {
	for i, l := range m.listings {
		if l.ID == listingID {
			return i, l
		}
	}
	return -1, nil
}

// swapLocked replaces one snapshot entry. Callers hold m.mu.
func (m *Manager) swapLocked(idx int, l *models.Listing) {
	next := make([]*models.Listing, len(m.listings))
	copy(next, m.listings)
	next[idx] = l
	m.listings = next
}

// swap replaces the entry with the given local id, if still present.
func (m *Manager) swap(listingID string, l *models.Listing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx, cur := m.locked(listingID); cur != nil {
		m.swapLocked(idx, l)
	}
}

// restore reinserts a listing that a failed delete had removed, as close
// to its previous position as the current set allows.
func (m *Manager) restore(idx int, l *models.Listing) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if idx < 0 || idx > len(m.listings) {
		idx = len(m.listings)
	}
	next := make([]*models.Listing, 0, len(m.listings)+1)
	next = append(next, m.listings[:idx]...)
	next = append(next, l)
	next = append(next, m.listings[idx:]...)
	m.listings = next
}
