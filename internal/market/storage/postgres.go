package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"sort"
	"strings"
	"time"

	"surplusmarket_api/internal/market/models"
	"surplusmarket_api/pkg/logger"
)

// PostgresStore serves the listings table from a self-hosted Postgres,
// for deployments that bypass the hosted REST layer. Same contract, same
// ordering.
type PostgresStore struct {
	db  *sql.DB
	log logger.Logger
}

func NewPostgresStore(db *sql.DB, log logger.Logger) *PostgresStore {
	log.Log("Successfully created listings repository")
	return &PostgresStore{db: db, log: log}
}

const listingColumns = `id, seller_id, title, location, category, condition, quantity, image, description,
	posted_at, price, sale_mode, current_bid, bid_deadline, min_acceptable, materialpass, featured, hidden`

// patchableColumns are the columns partial updates may touch: the owner
// edit set plus the moderation flags.
var patchableColumns = map[string]bool{
	"title":    true,
	"location": true,
	"category": true,
	"price":    true,
	"featured": true,
	"hidden":   true,
}

func (s *PostgresStore) QueryListings(ctx context.Context, opts QueryOptions) ([]models.ListingRow, error) {
	query := fmt.Sprintf(`SELECT %s FROM market.listings`, listingColumns)
	if !opts.IncludeHidden {
		query += ` WHERE hidden = false`
	}
	query += ` ORDER BY featured DESC, posted_at DESC`
	if opts.Limit > 0 {
		query += fmt.Sprintf(` LIMIT %d`, opts.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to query listings: %w", err)
	}
	defer rows.Close()

	var out []models.ListingRow
	for rows.Next() {
		row, err := scanListingRow(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan listing row: %w", err)
		}
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate listing rows: %w", err)
	}
	return out, nil
}

func (s *PostgresStore) InsertListing(ctx context.Context, row models.ListingRow) (models.ListingRow, error) {
	query := `
		INSERT INTO market.listings (seller_id, title, location, category, condition, quantity, image,
			description, posted_at, price, sale_mode, current_bid, bid_deadline, min_acceptable,
			materialpass, featured, hidden)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16, $17)
		RETURNING id`

	materialpass, err := marshalMaterialpass(row.Materialpass)
	if err != nil {
		return models.ListingRow{}, err
	}

	var id int64
	err = s.db.QueryRowContext(ctx, query,
		row.SellerID,
		row.Title,
		row.Location,
		row.Category,
		row.Condition,
		row.Quantity,
		row.Image,
		row.Description,
		parseWireTime(row.PostedAt),
		float64(row.Price),
		row.SaleMode,
		nullableNumber(row.CurrentBid),
		nullableTime(row.BidDeadline),
		nullableNumber(row.MinAcceptable),
		materialpass,
		row.Featured,
		row.Hidden,
	).Scan(&id)
	if err != nil {
		return models.ListingRow{}, &RemoteError{Op: "insert", Msg: "insert rejected", Err: err}
	}

	row.ID = models.RowNumber(id)
	return row, nil
}

func (s *PostgresStore) UpdateListing(ctx context.Context, rowID int64, patch models.RowPatch) error {
	if len(patch) == 0 {
		return nil
	}
	cols := make([]string, 0, len(patch))
	for col := range patch {
		if !patchableColumns[col] {
			return &RemoteError{Op: "update", Msg: fmt.Sprintf("column %q not patchable", col)}
		}
		cols = append(cols, col)
	}
	sort.Strings(cols)

	set := make([]string, len(cols))
	args := make([]interface{}, 0, len(cols)+1)
	for i, col := range cols {
		set[i] = fmt.Sprintf("%s = $%d", col, i+1)
		args = append(args, patch[col])
	}
	args = append(args, rowID)

	query := fmt.Sprintf(`UPDATE market.listings SET %s WHERE id = $%d`, strings.Join(set, ", "), len(args))
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return &RemoteError{Op: "update", Msg: "update rejected", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read update result: %w", err)
	}
	if affected == 0 {
		return &RemoteError{Op: "update", Msg: fmt.Sprintf("row %d not found", rowID)}
	}
	return nil
}

func (s *PostgresStore) DeleteListing(ctx context.Context, rowID int64) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM market.listings WHERE id = $1`, rowID)
	if err != nil {
		return &RemoteError{Op: "delete", Msg: "delete rejected", Err: err}
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to read delete result: %w", err)
	}
	if affected == 0 {
		return &RemoteError{Op: "delete", Msg: fmt.Sprintf("row %d not found", rowID)}
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListingRow(rs rowScanner) (models.ListingRow, error) {
	var (
		row          models.ListingRow
		id           int64
		sellerID     sql.NullString
		postedAt     time.Time
		price        float64
		currentBid   sql.NullFloat64
		bidDeadline  sql.NullTime
		minAccept    sql.NullFloat64
		materialpass []byte
	)
	err := rs.Scan(
		&id,
		&sellerID,
		&row.Title,
		&row.Location,
		&row.Category,
		&row.Condition,
		&row.Quantity,
		&row.Image,
		&row.Description,
		&postedAt,
		&price,
		&row.SaleMode,
		&currentBid,
		&bidDeadline,
		&minAccept,
		&materialpass,
		&row.Featured,
		&row.Hidden,
	)
	if err != nil {
		return models.ListingRow{}, err
	}

	row.ID = models.RowNumber(id)
	row.Price = models.RowNumber(price)
	row.PostedAt = postedAt.UTC().Format(time.RFC3339)
	if sellerID.Valid {
		row.SellerID = &sellerID.String
	}
	if currentBid.Valid {
		n := models.RowNumber(currentBid.Float64)
		row.CurrentBid = &n
	}
	if bidDeadline.Valid {
		s := bidDeadline.Time.UTC().Format(time.RFC3339)
		row.BidDeadline = &s
	}
	if minAccept.Valid {
		n := models.RowNumber(minAccept.Float64)
		row.MinAcceptable = &n
	}
	if len(materialpass) > 0 {
		if err := json.Unmarshal(materialpass, &row.Materialpass); err != nil {
			return models.ListingRow{}, fmt.Errorf("failed to decode materialpass: %w", err)
		}
	}
	return row, nil
}

func marshalMaterialpass(mp models.Materialpass) (interface{}, error) {
	if len(mp) == 0 {
		return nil, nil
	}
	data, err := json.Marshal(mp)
	if err != nil {
		return nil, fmt.Errorf("failed to encode materialpass: %w", err)
	}
	return data, nil
}

func nullableNumber(n *models.RowNumber) interface{} {
	if n == nil {
		return nil
	}
	return float64(*n)
}

func nullableTime(s *string) interface{} {
	if s == nil {
		return nil
	}
	return parseWireTime(*s)
}

// parseWireTime converts a wire timestamp to a DB value, defaulting to now
// like the decode path does.
func parseWireTime(s string) time.Time {
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return t.UTC()
	}
	return time.Now().UTC()
}
