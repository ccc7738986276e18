package theme

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"arkom-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	// Get returns nil without error when the user has no stored palette.
	Get(ctx context.Context, userID int64) (*Palette, error)
	Save(ctx context.Context, userID int64, p Palette) error
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

func (r *repository) Get(ctx context.Context, userID int64) (*Palette, error) {
	var raw []byte
	err := r.db.QueryRowContext(ctx, "SELECT palette FROM themes WHERE user_id = $1", userID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get theme: %w", err)
	}

	var p Palette
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode theme palette: %w", err)
	}
	return &p, nil
}

func (r *repository) Save(ctx context.Context, userID int64, p Palette) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return err
	}

	_, err = r.db.ExecContext(ctx, `
		INSERT INTO themes (user_id, palette, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE SET palette = EXCLUDED.palette, updated_at = NOW()`,
		userID, raw)
	if err != nil {
		logger.FromCtx(ctx).Error("SaveTheme DB query failed", zap.Int64("user_id", userID), zap.Error(err))
		return fmt.Errorf("save theme failed: %w", err)
	}
	return nil
}
