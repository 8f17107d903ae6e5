package business

import (
	"math"

	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"surplusmarket_api/config/values"
	"surplusmarket_api/internal/market/models"
)

// Presentation is the set of derived display strings for one listing: a
// short mode badge, the call-to-action label, the card summary and the
// detail-view price block. The presentation layer renders these verbatim.
type Presentation struct {
	Badge  string `json:"badge"`
	CTA    string `json:"cta"`
	Card   string `json:"card"`
	Detail string `json:"detail"`
}

var currencySymbols = map[string]string{
	"EUR": "€",
	"USD": "$",
	"GBP": "£",
}

// PriceFormatter renders amounts with digit grouping and the configured
// currency tag.
type PriceFormatter struct {
	printer *message.Printer
	symbol  string
}

func NewPriceFormatter(vals values.MarketValues) *PriceFormatter {
	vals.ApplyDefaults()
	symbol, ok := currencySymbols[vals.Currency]
	if !ok {
		symbol = vals.Currency + " "
	}
	return &PriceFormatter{
		printer: message.NewPrinter(language.English),
		symbol:  symbol,
	}
}

// Format renders an amount: whole amounts without decimals, everything
// else with two.
func (f *PriceFormatter) Format(v float64) string {
	if v == math.Trunc(v) && !math.IsInf(v, 0) {
		return f.printer.Sprintf("%s%d", f.symbol, int64(v))
	}
	return f.printer.Sprintf("%s%.2f", f.symbol, v)
}

// Presentation derives the display strings for a listing from its sale
// mode. Modes are fixed at creation, so these never change for a listing's
// lifetime except through the running bid.
func (f *PriceFormatter) Presentation(l *models.Listing) Presentation {
	switch l.SaleMode {
	case models.SaleModeAuction:
		bid := f.Format(l.CurrentBidValue())
		p := Presentation{
			Badge:  "Auction",
			CTA:    "Place bid",
			Card:   "Current bid " + bid,
			Detail: "Current bid " + bid,
		}
		if l.BidDeadline != nil {
			p.Detail += ", ends " + l.BidDeadline.UTC().Format("Jan 2, 2006 15:04 MST")
		}
		return p
	case models.SaleModeOffer:
		return Presentation{
			Badge:  "Make an offer",
			CTA:    "Make an offer",
			Card:   "Make an offer",
			Detail: "Guide price " + f.Format(l.Price) + ". Open to offers.",
		}
	default:
		price := f.Format(l.Price)
		return Presentation{
			Badge:  "Fixed price",
			CTA:    "Buy now",
			Card:   price,
			Detail: price,
		}
	}
}
