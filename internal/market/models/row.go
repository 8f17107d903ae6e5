package models

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"

	"surplusmarket_api/config/values"
)

// RowNumber is a numeric column as the remote store serves it: sometimes a
// JSON number, sometimes a quoted string. It always marshals back as a
// plain number.
type RowNumber float64

func (n *RowNumber) UnmarshalJSON(data []byte) error {
	s := strings.TrimSpace(string(data))
	if s == "null" {
		*n = 0
		return nil
	}
	s = strings.TrimSpace(strings.Trim(s, `"`))
	if s == "" {
		*n = 0
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return fmt.Errorf("numeric row field %q: %w", s, err)
	}
	*n = RowNumber(v)
	return nil
}

func (n RowNumber) MarshalJSON() ([]byte, error) {
	return []byte(strconv.FormatFloat(float64(n), 'f', -1, 64)), nil
}

// ListingRow is the remote listings table record. The schema is an external
// contract; column names are fixed. Optional columns are pointers and are
// serialized as explicit nulls (not omitted) so a partial write never leaves
// a stale remote value behind.
type ListingRow struct {
	ID            RowNumber    `json:"id,omitempty"`
	SellerID      *string      `json:"seller_id"`
	Title         string       `json:"title"`
	Location      string       `json:"location"`
	Category      string       `json:"category"`
	Condition     string       `json:"condition"`
	Quantity      string       `json:"quantity"`
	Image         string       `json:"image"`
	Description   string       `json:"description"`
	PostedAt      string       `json:"posted_at"`
	Price         RowNumber    `json:"price"`
	SaleMode      string       `json:"sale_mode"`
	CurrentBid    *RowNumber   `json:"current_bid"`
	BidDeadline   *string      `json:"bid_deadline"`
	MinAcceptable *RowNumber   `json:"min_acceptable"`
	Materialpass  Materialpass `json:"materialpass"`
	Featured      bool         `json:"featured"`
	Hidden        bool         `json:"hidden"`
}

// RowPatch is a partial update: column name to new value. Only the columns
// present are touched on the remote side.
type RowPatch map[string]interface{}

// ModerationPatch builds the patch an admin toggle produces. Featured and
// hidden are the only columns mutable through the moderation path.
func ModerationPatch(featured, hidden *bool) RowPatch {
	patch := RowPatch{}
	if featured != nil {
		patch["featured"] = *featured
	}
	if hidden != nil {
		patch["hidden"] = *hidden
	}
	return patch
}

// timestampLayouts are the wire formats the remote store has been seen
// emitting. The first is also the canonical encode format.
var timestampLayouts = []string{
	time.RFC3339,
	"2006-01-02T15:04:05.999999",
	"2006-01-02 15:04:05",
}

func parseTimestamp(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return time.Time{}, false
	}
	for _, layout := range timestampLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), true
		}
	}
	return time.Time{}, false
}

// PlaceholderImage picks the stock image for a category, falling back to
// the generic one for categories outside the canonical set.
func PlaceholderImage(category string, defaults values.MarketValues) string {
	if url, ok := defaults.PlaceholderImages[category]; ok {
		return url
	}
	return defaults.PlaceholderImage
}

// DecodeRow maps a remote row to the canonical Listing.
//
// Numerics arrive coerced by RowNumber. A missing image is substituted with
// the category placeholder. A missing or unparseable posted_at defaults to
// now. Optional commercial columns decode to "absent" whenever the stored
// value is null or zero: a real bid of 0 is indistinguishable from "no bid
// yet" on this path (known ambiguity, kept deliberately).
func DecodeRow(row ListingRow, defaults values.MarketValues) *Listing {
	l := &Listing{
		ID:          uuid.NewString(),
		RowID:       int64(row.ID),
		Title:       row.Title,
		Location:    row.Location,
		Category:    row.Category,
		Condition:   row.Condition,
		Quantity:    row.Quantity,
		Image:       row.Image,
		Description: row.Description,
		Price:       float64(row.Price),
		Featured:    row.Featured,
		Hidden:      row.Hidden,
	}
	if row.SellerID != nil {
		l.SellerID = *row.SellerID
	}
	if l.Image == "" {
		l.Image = PlaceholderImage(row.Category, defaults)
	}
	if t, ok := parseTimestamp(row.PostedAt); ok {
		l.PostedAt = t
	} else {
		l.PostedAt = time.Now().UTC()
	}

	mode := SaleMode(row.SaleMode)
	if !mode.Valid() {
		mode = SaleModeFixed
	}
	l.SaleMode = mode

	switch mode {
	case SaleModeAuction:
		if row.CurrentBid != nil && *row.CurrentBid != 0 {
			v := float64(*row.CurrentBid)
			l.CurrentBid = &v
		}
		if row.BidDeadline != nil {
			if t, ok := parseTimestamp(*row.BidDeadline); ok {
				l.BidDeadline = &t
			}
		}
	case SaleModeOffer:
		if row.MinAcceptable != nil && *row.MinAcceptable != 0 {
			v := float64(*row.MinAcceptable)
			l.MinAcceptable = &v
		}
	}

	if len(row.Materialpass) > 0 {
		l.Materialpass = make(Materialpass, len(row.Materialpass))
		for k, v := range row.Materialpass {
			l.Materialpass[k] = v
		}
	}
	return l
}

// EncodeRow maps a Listing back to its remote row. The local ID is not a
// persisted field; RowID lands in the id column (zero means "not assigned
// yet" and is omitted so the store can assign one).
func EncodeRow(l *Listing) ListingRow {
	row := ListingRow{
		ID:          RowNumber(l.RowID),
		Title:       l.Title,
		Location:    l.Location,
		Category:    l.Category,
		Condition:   l.Condition,
		Quantity:    l.Quantity,
		Image:       l.Image,
		Description: l.Description,
		PostedAt:    l.PostedAt.UTC().Format(time.RFC3339),
		Price:       RowNumber(l.Price),
		SaleMode:    string(l.SaleMode),
		Featured:    l.Featured,
		Hidden:      l.Hidden,
	}
	if l.SellerID != "" {
		seller := l.SellerID
		row.SellerID = &seller
	}
	if l.CurrentBid != nil {
		v := RowNumber(*l.CurrentBid)
		row.CurrentBid = &v
	}
	if l.BidDeadline != nil {
		s := l.BidDeadline.UTC().Format(time.RFC3339)
		row.BidDeadline = &s
	}
	if l.MinAcceptable != nil {
		v := RowNumber(*l.MinAcceptable)
		row.MinAcceptable = &v
	}
	if len(l.Materialpass) > 0 {
		row.Materialpass = make(Materialpass, len(l.Materialpass))
		for k, v := range l.Materialpass {
			row.Materialpass[k] = v
		}
	}
	return row
}
