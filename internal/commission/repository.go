package commission

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"arkom-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, listingID, clientID int64, message string) (*Request, error)
	Get(ctx context.Context, id int64) (*Request, error)
	ListForArtist(ctx context.Context, artistID int64) ([]*Request, error)
	ListForClient(ctx context.Context, clientID int64) ([]*Request, error)
	// UpdateStatus moves a request out of from. It fails with ErrNotPending
	// when the stored status is no longer from.
	UpdateStatus(ctx context.Context, id int64, from, to string) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const requestSelect = `
	SELECT r.id, r.listing_id, l.title, l.artist_id, r.client_id, r.message, r.status, r.created_at, r.updated_at
	FROM commission_requests r
	JOIN listings l ON l.id = r.listing_id`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanRequest(row rowScanner) (*Request, error) {
	var r Request
	err := row.Scan(&r.ID, &r.ListingID, &r.ListingTitle, &r.ArtistID, &r.ClientID,
		&r.Message, &r.Status, &r.CreatedAt, &r.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (r *repository) Create(ctx context.Context, listingID, clientID int64, message string) (*Request, error) {
	var id int64
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO commission_requests (listing_id, client_id, message, status)
		VALUES ($1, $2, $3, $4)
		RETURNING id`,
		listingID, clientID, message, StatusPending,
	).Scan(&id)
	if err != nil {
		logger.FromCtx(ctx).Error("CreateCommissionRequest DB query failed",
			zap.Int64("listing_id", listingID), zap.Error(err))
		return nil, fmt.Errorf("create commission request failed: %w", err)
	}
	return r.Get(ctx, id)
}

func (r *repository) Get(ctx context.Context, id int64) (*Request, error) {
	req, err := scanRequest(r.db.QueryRowContext(ctx, requestSelect+" WHERE r.id = $1", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrRequestNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get commission request: %w", err)
	}
	return req, nil
}

func (r *repository) ListForArtist(ctx context.Context, artistID int64) ([]*Request, error) {
	return r.list(ctx, requestSelect+" WHERE l.artist_id = $1 ORDER BY r.created_at DESC, r.id DESC", artistID)
}

func (r *repository) ListForClient(ctx context.Context, clientID int64) ([]*Request, error) {
	return r.list(ctx, requestSelect+" WHERE r.client_id = $1 ORDER BY r.created_at DESC, r.id DESC", clientID)
}

func (r *repository) list(ctx context.Context, query string, arg int64) ([]*Request, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		logger.FromCtx(ctx).Error("DB query failed ListCommissionRequests", zap.Error(err))
		return nil, fmt.Errorf("list commission requests: %w", err)
	}
	defer rows.Close()

	out := []*Request{}
	for rows.Next() {
		req, err := scanRequest(rows)
		if err != nil {
			return nil, fmt.Errorf("scan commission request: %w", err)
		}
		out = append(out, req)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate commission requests: %w", err)
	}
	return out, nil
}

func (r *repository) UpdateStatus(ctx context.Context, id int64, from, to string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE commission_requests SET status = $1, updated_at = NOW() WHERE id = $2 AND status = $3",
		to, id, from)
	if err != nil {
		return fmt.Errorf("update commission request status: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotPending
	}
	return nil
}
