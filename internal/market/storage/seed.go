package storage

import (
	"time"

	"surplusmarket_api/internal/market/models"
)

func rn(v float64) *models.RowNumber {
	n := models.RowNumber(v)
	return &n
}

func iso(t time.Time) string { return t.UTC().Format(time.RFC3339) }

// SeedRows returns the demo catalogue: a spread of categories, conditions
// and all three sale modes. Seed rows carry no seller, so nobody can edit
// or delete them through the owner path.
func SeedRows() []models.ListingRow {
	base := time.Date(2025, 2, 10, 9, 0, 0, 0, time.UTC)
	deadline := iso(base.Add(14 * 24 * time.Hour))
	return []models.ListingRow{
		{
			Title:       "Reclaimed oak glulam beams, 6m",
			Location:    "Rotterdam",
			Category:    "Lumber",
			Condition:   "Good",
			Quantity:    "18 pieces",
			Description: "Surplus from a cancelled sports hall project. Stored indoors, stamped and certified.",
			PostedAt:    iso(base.Add(96 * time.Hour)),
			Price:       2400,
			SaleMode:    "fixed",
			Featured:    true,
			Materialpass: models.Materialpass{
				"brand":         "Derix",
				"certification": "PEFC",
				"dimensions":    "6000x200x400 mm",
				"year":          2024,
			},
		},
		{
			Title:       "Structural steel I-beams HEB 200",
			Location:    "Duisburg",
			Category:    "Steel",
			Condition:   "Like New",
			Quantity:    "24 pieces, 8m each",
			Description: "Over-ordered for a warehouse build. Mill certificates available.",
			PostedAt:    iso(base.Add(72 * time.Hour)),
			Price:       7800,
			SaleMode:    "auction",
			CurrentBid:  rn(5200),
			BidDeadline: &deadline,
			Materialpass: models.Materialpass{
				"brand":         "ArcelorMittal",
				"certification": "EN 10025-2",
			},
		},
		{
			Title:         "Clay facing bricks, waterstruck red",
			Location:      "Antwerp",
			Category:      "Brick & Masonry",
			Condition:     "New",
			Quantity:      "6 pallets (~3,000 bricks)",
			Description:   "Leftover batch after a facade redesign. Full pallets only.",
			PostedAt:      iso(base.Add(48 * time.Hour)),
			Price:         1850,
			SaleMode:      "offer",
			MinAcceptable: rn(1295),
		},
		{
			Title:       "PIR insulation boards 100mm",
			Location:    "Utrecht",
			Category:    "Insulation",
			Condition:   "New",
			Quantity:    "40 boards, 1200x600",
			Description: "Unopened packs, dry storage. Collection only.",
			PostedAt:    iso(base.Add(30 * time.Hour)),
			Price:       640,
			SaleMode:    "fixed",
		},
		{
			Title:         "Triple-glazed windows, oak frames",
			Location:      "Hamburg",
			Category:      "Windows & Doors",
			Condition:     "Like New",
			Quantity:      "12 units, 1200x1400",
			Description:   "Removed during a project change, never installed outdoors.",
			PostedAt:      iso(base.Add(20 * time.Hour)),
			Price:         5400,
			SaleMode:      "offer",
			MinAcceptable: rn(3780),
			Materialpass:  models.Materialpass{"brand": "Velfac", "u_value": "0.8 W/m2K"},
		},
		{
			Title:       "Smoked oak parquet, 22mm",
			Location:    "Copenhagen",
			Category:    "Flooring",
			Condition:   "New",
			Quantity:    "160 m2",
			Description: "Surplus after quantity recalculation. Original packaging.",
			PostedAt:    iso(base.Add(12 * time.Hour)),
			Price:       4160,
			SaleMode:    "auction",
			BidDeadline: &deadline,
		},
		{
			Title:       "Concrete paving slabs 500x500",
			Location:    "Gent",
			Category:    "Concrete",
			Condition:   "Fair",
			Quantity:    "3 pallets",
			Description: "Used site hardstanding, pressure washed. Minor edge chips.",
			PostedAt:    iso(base.Add(6 * time.Hour)),
			Price:       210,
			SaleMode:    "fixed",
		},
		{
			Title:         "Copper pipe bundle 22mm",
			Location:      "Bremen",
			Category:      "Plumbing",
			Condition:     "Salvage",
			Quantity:      "~85 kg",
			Description:   "Stripped from a decommissioned office block.",
			PostedAt:      iso(base),
			Price:         720,
			SaleMode:      "offer",
			MinAcceptable: rn(504),
		},
	}
}
