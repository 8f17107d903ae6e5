// Package storage defines the contract with the external data/auth
// collaborator and its adapters. The remote row schema is an external
// contract; authorization is enforced by the store's own row policies, not
// by anything in this module.
package storage

import (
	"context"
	"io"

	"surplusmarket_api/internal/market/models"
)

// QueryOptions shape a listings fetch. The ordering is fixed by contract:
// featured first, then newest.
type QueryOptions struct {
	// IncludeHidden keeps hidden rows in the result. Default fetches
	// exclude them.
	IncludeHidden bool
	// Limit caps the result size. Zero means the adapter's default.
	Limit int
}

// DefaultQueryOptions is the standard browse fetch: hidden rows excluded,
// capped at limit.
func DefaultQueryOptions(limit int) QueryOptions {
	return QueryOptions{Limit: limit}
}

// Store is the listings table as the remote collaborator exposes it.
type Store interface {
	// QueryListings returns rows ordered by featured desc, posted_at desc.
	QueryListings(ctx context.Context, opts QueryOptions) ([]models.ListingRow, error)
	// InsertListing persists a new row and returns it with the
	// store-assigned id.
	InsertListing(ctx context.Context, row models.ListingRow) (models.ListingRow, error)
	// UpdateListing applies a partial update to one row.
	UpdateListing(ctx context.Context, rowID int64, patch models.RowPatch) error
	// DeleteListing removes one row.
	DeleteListing(ctx context.Context, rowID int64) error
}

// AuthService is the passwordless auth collaborator.
type AuthService interface {
	// CurrentSession returns the signed-in actor, or nil when anonymous.
	CurrentSession(ctx context.Context) (*models.Actor, error)
	// SignInWithEmailLink starts the magic-link flow for an address. The
	// flow completes out of band.
	SignInWithEmailLink(ctx context.Context, email string) error
	SignOut(ctx context.Context) error
}

// FileStore is the image bucket.
type FileStore interface {
	// UploadImage stores a listing image under the owner's prefix and
	// returns its public URL.
	UploadImage(ctx context.Context, ownerID, filename string, r io.Reader) (string, error)
}
