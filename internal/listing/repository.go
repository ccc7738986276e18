package listing

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"arkom-be/internal/browse"
	"arkom-be/internal/logger"

	"github.com/lib/pq"
	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, artistID int64, input CreateListingInput) (*Listing, error)
	Get(ctx context.Context, id int64) (*Listing, error)
	Update(ctx context.Context, id int64, input UpdateListingInput) (*Listing, error)
	Delete(ctx context.Context, id int64) error
	ListByArtist(ctx context.Context, artistID int64) ([]*Listing, error)
	// ListDiscoverable returns active, not opted-out listings narrowed by
	// state: catalogue and category by equality, options by overlap.
	ListDiscoverable(ctx context.Context, state browse.FilterState) ([]*Listing, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const listingColumns = `id, artist_id, title, description, price_cents, currency, status,
	is_discoverable, catalogue_id, category_id, sub_category_selections, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanListing(row rowScanner) (*Listing, error) {
	var (
		l            Listing
		discoverable sql.NullBool
		catalogueID  sql.NullInt64
		categoryID   sql.NullInt64
		selections   pq.Int64Array
	)
	err := row.Scan(
		&l.ID, &l.ArtistID, &l.Title, &l.Description, &l.PriceCents, &l.Currency, &l.Status,
		&discoverable, &catalogueID, &categoryID, &selections, &l.CreatedAt, &l.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	if discoverable.Valid {
		v := discoverable.Bool
		l.IsDiscoverable = &v
	}
	if catalogueID.Valid {
		v := catalogueID.Int64
		l.CatalogueID = &v
	}
	if categoryID.Valid {
		v := categoryID.Int64
		l.CategoryID = &v
	}
	l.SubCategorySelections = []int64(selections)
	if l.SubCategorySelections == nil {
		l.SubCategorySelections = []int64{}
	}
	return &l, nil
}

func nullableID(id *int64) interface{} {
	if id == nil {
		return nil
	}
	return *id
}

func nullableBool(b *bool) interface{} {
	if b == nil {
		return nil
	}
	return *b
}

func selectionsArg(ids []int64) interface{} {
	if ids == nil {
		ids = []int64{}
	}
	return pq.Array(ids)
}

func (r *repository) Create(ctx context.Context, artistID int64, input CreateListingInput) (*Listing, error) {
	log := logger.FromCtx(ctx).With(zap.Int64("artist_id", artistID))

	query := `
		INSERT INTO listings (artist_id, title, description, price_cents, currency, status,
			is_discoverable, catalogue_id, category_id, sub_category_selections)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		RETURNING ` + listingColumns

	status := StatusActive
	if input.Status != nil {
		status = *input.Status
	}

	l, err := scanListing(r.db.QueryRowContext(ctx, query,
		artistID,
		input.Title,
		input.Description,
		input.PriceCents,
		input.Currency,
		status,
		nullableBool(input.IsDiscoverable),
		nullableID(input.CatalogueID),
		nullableID(input.CategoryID),
		selectionsArg(input.SubCategorySelections),
	))
	if err != nil {
		log.Error("CreateListing DB query failed", zap.Error(err))
		return nil, fmt.Errorf("create listing failed: %w", err)
	}
	return l, nil
}

func (r *repository) Get(ctx context.Context, id int64) (*Listing, error) {
	l, err := scanListing(r.db.QueryRowContext(ctx,
		"SELECT "+listingColumns+" FROM listings WHERE id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return l, nil
}

func (r *repository) Update(ctx context.Context, id int64, input UpdateListingInput) (*Listing, error) {
	parts := []string{}
	args := []interface{}{}
	set := func(column string, value interface{}) {
		args = append(args, value)
		parts = append(parts, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if input.Title != nil {
		set("title", *input.Title)
	}
	if input.Description != nil {
		set("description", *input.Description)
	}
	if input.PriceCents != nil {
		set("price_cents", *input.PriceCents)
	}
	if input.Currency != nil {
		set("currency", *input.Currency)
	}
	if input.Status != nil {
		set("status", *input.Status)
	}
	if d := input.Discovery; d != nil {
		set("is_discoverable", nullableBool(d.IsDiscoverable))
		set("catalogue_id", nullableID(d.CatalogueID))
		set("category_id", nullableID(d.CategoryID))
		set("sub_category_selections", selectionsArg(d.SubCategorySelections))
	}
	if len(parts) == 0 {
		return nil, ErrNoChanges
	}

	parts = append(parts, "updated_at = NOW()")
	args = append(args, id)
	query := fmt.Sprintf("UPDATE listings SET %s WHERE id = $%d RETURNING %s",
		strings.Join(parts, ", "), len(args), listingColumns)

	l, err := scanListing(r.db.QueryRowContext(ctx, query, args...))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrListingNotFound
	}
	if err != nil {
		logger.FromCtx(ctx).Error("UpdateListing DB query failed", zap.Int64("listing_id", id), zap.Error(err))
		return nil, fmt.Errorf("update listing failed: %w", err)
	}
	return l, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, "DELETE FROM listings WHERE id = $1", id)
	if err != nil {
		return fmt.Errorf("delete listing failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrListingNotFound
	}
	return nil
}

func (r *repository) ListByArtist(ctx context.Context, artistID int64) ([]*Listing, error) {
	rows, err := r.db.QueryContext(ctx,
		"SELECT "+listingColumns+" FROM listings WHERE artist_id = $1 ORDER BY created_at DESC, id DESC",
		artistID)
	if err != nil {
		logger.FromCtx(ctx).Error("DB query failed ListByArtist", zap.Int64("artist_id", artistID), zap.Error(err))
		return nil, fmt.Errorf("list listings by artist: %w", err)
	}
	return collect(rows)
}

func (r *repository) ListDiscoverable(ctx context.Context, state browse.FilterState) ([]*Listing, error) {
	where := []string{
		"status = '" + StatusActive + "'",
		"(is_discoverable IS NULL OR is_discoverable = TRUE)",
	}
	args := []interface{}{}

	if state.CatalogueID != nil {
		args = append(args, *state.CatalogueID)
		where = append(where, fmt.Sprintf("catalogue_id = $%d", len(args)))
	}
	if state.CategoryID != nil {
		args = append(args, *state.CategoryID)
		where = append(where, fmt.Sprintf("category_id = $%d", len(args)))
	}
	if len(state.SubCategorySelections) > 0 {
		args = append(args, pq.Array(state.SubCategorySelections))
		where = append(where, fmt.Sprintf("sub_category_selections && $%d", len(args)))
	}

	query := "SELECT " + listingColumns + " FROM listings WHERE " +
		strings.Join(where, " AND ") + " ORDER BY created_at DESC, id DESC"

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("DB query failed ListDiscoverable", zap.Error(err))
		return nil, fmt.Errorf("list discoverable listings: %w", err)
	}
	return collect(rows)
}

func collect(rows *sql.Rows) ([]*Listing, error) {
	defer rows.Close()

	listings := []*Listing{}
	for rows.Next() {
		l, err := scanListing(rows)
		if err != nil {
			return nil, fmt.Errorf("scan listing: %w", err)
		}
		listings = append(listings, l)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate listings: %w", err)
	}
	return listings, nil
}
