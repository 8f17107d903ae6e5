package models

import (
	"fmt"
	"time"
)

// SaleMode is the pricing mechanism of a listing. It is fixed at creation
// time; there is no mode transition.
type SaleMode string

const (
	SaleModeFixed   SaleMode = "fixed"
	SaleModeAuction SaleMode = "auction"
	SaleModeOffer   SaleMode = "offer"
)

func (m SaleMode) Valid() bool {
	switch m {
	case SaleModeFixed, SaleModeAuction, SaleModeOffer:
		return true
	}
	return false
}

// CategoryAll and ConditionAll are the query sentinels meaning "no filter".
const (
	CategoryAll  = "all"
	ConditionAll = "all"
)

var categories = []string{
	"Lumber",
	"Steel",
	"Brick & Masonry",
	"Concrete",
	"Insulation",
	"Windows & Doors",
	"Flooring",
	"Roofing",
	"Plumbing",
	"Electrical",
	"Fixtures",
}

var conditions = []string{
	"New",
	"Like New",
	"Good",
	"Fair",
	"Salvage",
}

func Categories() []string {
	out := make([]string, len(categories))
	copy(out, categories)
	return out
}

// Conditions returns the canonical condition labels. Free-text conditions
// are accepted on listings; this set drives filter dropdowns only.
func Conditions() []string {
	out := make([]string, len(conditions))
	copy(out, conditions)
	return out
}

func KnownCategory(category string) bool {
	for _, c := range categories {
		if c == category {
			return true
		}
	}
	return false
}

// Materialpass is open provenance/specification metadata attached to a
// listing: brand, model, dimensions, certification, documentation link,
// year and whatever else the seller provides. Absent keys mean
// "not provided"; values are strings or numbers as given on the wire.
type Materialpass map[string]interface{}

// Listing is the canonical in-memory representation of a marketplace item.
//
// ID is the local key: always present, generated on creation or decode,
// never persisted. RowID is the remote store's key and stays zero until the
// row has been persisted. SellerID is empty for seed/demo rows and is
// immutable for the listing's lifetime.
//
// Which of the optional commercial fields are set follows SaleMode:
// auction listings carry CurrentBid and BidDeadline, offer listings carry
// MinAcceptable, fixed listings carry neither. Fields of other modes are
// nil, never partially populated.
type Listing struct {
	ID       string `json:"id"`
	RowID    int64  `json:"row_id,omitempty"`
	SellerID string `json:"seller_id,omitempty"`

	Title       string    `json:"title"`
	Location    string    `json:"location"`
	Category    string    `json:"category"`
	Condition   string    `json:"condition"`
	Quantity    string    `json:"quantity"`
	Image       string    `json:"image"`
	Description string    `json:"description"`
	PostedAt    time.Time `json:"posted_at"`

	Price    float64  `json:"price"`
	SaleMode SaleMode `json:"sale_mode"`

	CurrentBid    *float64   `json:"current_bid,omitempty"`
	BidDeadline   *time.Time `json:"bid_deadline,omitempty"`
	MinAcceptable *float64   `json:"min_acceptable,omitempty"`

	Materialpass Materialpass `json:"materialpass,omitempty"`

	Featured bool `json:"featured"`
	Hidden   bool `json:"hidden"`
}

// CurrentBidValue reads the running bid, treating "no bid yet" as 0.
func (l *Listing) CurrentBidValue() float64 {
	if l.CurrentBid == nil {
		return 0
	}
	return *l.CurrentBid
}

func (l *Listing) Persisted() bool {
	return l.RowID != 0
}

// Clone returns a shallow copy with its own pointer fields, so patching a
// snapshot entry never mutates a listing another reader still holds.
func (l *Listing) Clone() *Listing {
	out := *l
	if l.CurrentBid != nil {
		v := *l.CurrentBid
		out.CurrentBid = &v
	}
	if l.BidDeadline != nil {
		v := *l.BidDeadline
		out.BidDeadline = &v
	}
	if l.MinAcceptable != nil {
		v := *l.MinAcceptable
		out.MinAcceptable = &v
	}
	if l.Materialpass != nil {
		mp := make(Materialpass, len(l.Materialpass))
		for k, v := range l.Materialpass {
			mp[k] = v
		}
		out.Materialpass = mp
	}
	return &out
}

// Validate checks the structural invariants of the entity itself.
// Draft validation (required fields) happens in the lifecycle manager
// before a Listing ever exists.
func (l *Listing) Validate() error {
	if l.ID == "" {
		return fmt.Errorf("listing has no local id")
	}
	if l.Price < 0 {
		return fmt.Errorf("listing %s: negative price %v", l.ID, l.Price)
	}
	if !l.SaleMode.Valid() {
		return fmt.Errorf("listing %s: unknown sale mode %q", l.ID, l.SaleMode)
	}
	if l.SaleMode != SaleModeAuction && (l.CurrentBid != nil || l.BidDeadline != nil) {
		return fmt.Errorf("listing %s: auction fields set on %q listing", l.ID, l.SaleMode)
	}
	if l.SaleMode != SaleModeOffer && l.MinAcceptable != nil {
		return fmt.Errorf("listing %s: offer fields set on %q listing", l.ID, l.SaleMode)
	}
	return nil
}
