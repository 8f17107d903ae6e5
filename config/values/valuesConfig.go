package values

// MarketValues are the marketplace defaults applied when a listing or a
// query leaves a knob unset.
type MarketValues struct {
	// Currency tag used by the pricing formatter, e.g. "EUR".
	Currency string `yaml:"currency"`
	// BidWindowHours is the auction deadline offset from creation time.
	BidWindowHours int `yaml:"bid-window-hours"`
	// OfferFloorRatio derives the default minimum acceptable offer from the
	// reference price. The result is floored to a whole amount.
	OfferFloorRatio float64 `yaml:"offer-floor-ratio"`
	// QueryLimit caps a single remote listings fetch.
	QueryLimit int `yaml:"query-limit"`

	PlaceholderImages map[string]string `yaml:"placeholder-images"`
	PlaceholderImage  string            `yaml:"placeholder-image"`
}

const (
	DefaultCurrency        = "EUR"
	DefaultBidWindowHours  = 72
	DefaultOfferFloorRatio = 0.7
	DefaultQueryLimit      = 200
)

// DefaultPlaceholderImages maps each listing category to the stock image
// shown when a seller uploads none.
func DefaultPlaceholderImages() map[string]string {
	return map[string]string{
		"Lumber":          "https://static.surplusmarket.app/placeholders/lumber.jpg",
		"Steel":           "https://static.surplusmarket.app/placeholders/steel.jpg",
		"Brick & Masonry": "https://static.surplusmarket.app/placeholders/masonry.jpg",
		"Concrete":        "https://static.surplusmarket.app/placeholders/concrete.jpg",
		"Insulation":      "https://static.surplusmarket.app/placeholders/insulation.jpg",
		"Windows & Doors": "https://static.surplusmarket.app/placeholders/windows.jpg",
		"Flooring":        "https://static.surplusmarket.app/placeholders/flooring.jpg",
		"Roofing":         "https://static.surplusmarket.app/placeholders/roofing.jpg",
		"Plumbing":        "https://static.surplusmarket.app/placeholders/plumbing.jpg",
		"Electrical":      "https://static.surplusmarket.app/placeholders/electrical.jpg",
		"Fixtures":        "https://static.surplusmarket.app/placeholders/fixtures.jpg",
	}
}

const DefaultPlaceholderImage = "https://static.surplusmarket.app/placeholders/generic.jpg"

// ApplyDefaults fills any zero-valued field.
func (v *MarketValues) ApplyDefaults() {
	if v.Currency == "" {
		v.Currency = DefaultCurrency
	}
	if v.BidWindowHours <= 0 {
		v.BidWindowHours = DefaultBidWindowHours
	}
	if v.OfferFloorRatio <= 0 || v.OfferFloorRatio >= 1 {
		v.OfferFloorRatio = DefaultOfferFloorRatio
	}
	if v.QueryLimit <= 0 {
		v.QueryLimit = DefaultQueryLimit
	}
	if v.PlaceholderImages == nil {
		v.PlaceholderImages = DefaultPlaceholderImages()
	}
	if v.PlaceholderImage == "" {
		v.PlaceholderImage = DefaultPlaceholderImage
	}
}
