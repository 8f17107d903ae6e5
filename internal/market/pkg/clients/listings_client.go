package clients

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"surplusmarket_api/internal/market/models"
	"surplusmarket_api/internal/market/storage"
)

const listingsEndpoint = "/rest/v1/listings"

// ListingsClient serves the listings table through the store's REST layer.
// Writes ask for the affected rows back, both to learn the assigned id and
// to tell "row missing" apart from "nothing to report": the REST layer
// answers 2xx with an empty set when a filter matches no rows.
type ListingsClient struct {
	*BaseClient
}

func NewListingsClient(base *BaseClient) *ListingsClient {
	return &ListingsClient{BaseClient: base}
}

func (c *ListingsClient) QueryListings(ctx context.Context, opts storage.QueryOptions) ([]models.ListingRow, error) {
	params := url.Values{}
	params.Set("select", "*")
	params.Set("order", "featured.desc,posted_at.desc")
	if !opts.IncludeHidden {
		params.Set("hidden", "eq.false")
	}
	if opts.Limit > 0 {
		params.Set("limit", strconv.Itoa(opts.Limit))
	}

	var rows []models.ListingRow
	if err := c.request(ctx, http.MethodGet, listingsEndpoint+"?"+params.Encode(), nil, &rows); err != nil {
		return nil, err
	}
	return rows, nil
}

func (c *ListingsClient) InsertListing(ctx context.Context, row models.ListingRow) (models.ListingRow, error) {
	var created []models.ListingRow
	ctx = withPrefer(ctx, "return=representation")
	if err := c.request(ctx, http.MethodPost, listingsEndpoint, row, &created); err != nil {
		return models.ListingRow{}, err
	}
	if len(created) == 0 {
		return models.ListingRow{}, &storage.RemoteError{
			Op:     "insert listing",
			Status: http.StatusOK,
			Msg:    "store returned no row for the insert",
		}
	}
	return created[0], nil
}

func (c *ListingsClient) UpdateListing(ctx context.Context, rowID int64, patch models.RowPatch) error {
	if len(patch) == 0 {
		return nil
	}
	var updated []models.ListingRow
	ctx = withPrefer(ctx, "return=representation")
	if err := c.request(ctx, http.MethodPatch, rowEndpoint(rowID), patch, &updated); err != nil {
		return err
	}
	if len(updated) == 0 {
		return rowMissing("update", rowID)
	}
	return nil
}

func (c *ListingsClient) DeleteListing(ctx context.Context, rowID int64) error {
	var deleted []models.ListingRow
	ctx = withPrefer(ctx, "return=representation")
	if err := c.request(ctx, http.MethodDelete, rowEndpoint(rowID), nil, &deleted); err != nil {
		return err
	}
	if len(deleted) == 0 {
		return rowMissing("delete", rowID)
	}
	return nil
}

func rowEndpoint(rowID int64) string {
	return fmt.Sprintf("%s?id=eq.%d", listingsEndpoint, rowID)
}

func rowMissing(op string, rowID int64) error {
	return &storage.RemoteError{
		Op:     op + " listing",
		Status: http.StatusNotFound,
		Msg:    fmt.Sprintf("row %d not found", rowID),
	}
}
