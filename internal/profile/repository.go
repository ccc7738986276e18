package profile

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"arkom-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Get(ctx context.Context, userID int64) (*Profile, error)
	Upsert(ctx context.Context, userID int64, input UpsertInput) (*Profile, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const profileColumns = "user_id, display_name, email, bio, avatar_url, created_at, updated_at"

func scanProfile(row *sql.Row) (*Profile, error) {
	var p Profile
	err := row.Scan(&p.UserID, &p.DisplayName, &p.Email, &p.Bio, &p.AvatarURL, &p.CreatedAt, &p.UpdatedAt)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *repository) Get(ctx context.Context, userID int64) (*Profile, error) {
	p, err := scanProfile(r.db.QueryRowContext(ctx,
		"SELECT "+profileColumns+" FROM profiles WHERE user_id = $1", userID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrProfileNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get profile: %w", err)
	}
	return p, nil
}

func (r *repository) Upsert(ctx context.Context, userID int64, input UpsertInput) (*Profile, error) {
	query := `
		INSERT INTO profiles (user_id, display_name, email, bio, avatar_url)
		VALUES ($1, $2, $3, $4, $5)
		ON CONFLICT (user_id) DO UPDATE SET
			display_name = EXCLUDED.display_name,
			email = EXCLUDED.email,
			bio = EXCLUDED.bio,
			avatar_url = EXCLUDED.avatar_url,
			updated_at = NOW()
		RETURNING ` + profileColumns

	p, err := scanProfile(r.db.QueryRowContext(ctx, query,
		userID, input.DisplayName, input.Email, input.Bio, input.AvatarURL))
	if err != nil {
		logger.FromCtx(ctx).Error("UpsertProfile DB query failed", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("upsert profile failed: %w", err)
	}
	return p, nil
}
