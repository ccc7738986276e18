package notification

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"arkom-be/internal/logger"

	"go.uber.org/zap"
)

type Repository interface {
	Create(ctx context.Context, p NotifyParams) (*Notification, error)
	List(ctx context.Context, userID int64, since *time.Time, unreadOnly bool, limit int) ([]*Notification, error)
	CountUnread(ctx context.Context, userID int64) (int, error)
	MarkRead(ctx context.Context, userID, id int64) error
	MarkAllRead(ctx context.Context, userID int64) (int64, error)
}

type repository struct {
	db *sql.DB
}

func NewRepository(db *sql.DB) Repository {
	return &repository{db: db}
}

const notificationColumns = "id, user_id, type, title, message, link, is_read, created_at"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanNotification(row rowScanner) (*Notification, error) {
	var n Notification
	if err := row.Scan(&n.ID, &n.UserID, &n.Type, &n.Title, &n.Message, &n.Link, &n.IsRead, &n.CreatedAt); err != nil {
		return nil, err
	}
	return &n, nil
}

func (r *repository) Create(ctx context.Context, p NotifyParams) (*Notification, error) {
	query := `
		INSERT INTO notifications (user_id, type, title, message, link)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING ` + notificationColumns

	n, err := scanNotification(r.db.QueryRowContext(ctx, query, p.UserID, p.Type, p.Title, p.Message, p.Link))
	if err != nil {
		logger.FromCtx(ctx).Error("CreateNotification DB query failed",
			zap.Int64("user_id", p.UserID), zap.Error(err))
		return nil, fmt.Errorf("create notification failed: %w", err)
	}
	return n, nil
}

func (r *repository) List(ctx context.Context, userID int64, since *time.Time, unreadOnly bool, limit int) ([]*Notification, error) {
	where := []string{"user_id = $1"}
	args := []interface{}{userID}

	if since != nil {
		args = append(args, *since)
		where = append(where, fmt.Sprintf("created_at > $%d", len(args)))
	}
	if unreadOnly {
		where = append(where, "is_read = FALSE")
	}
	args = append(args, limit)

	query := fmt.Sprintf("SELECT %s FROM notifications WHERE %s ORDER BY created_at DESC, id DESC LIMIT $%d",
		notificationColumns, strings.Join(where, " AND "), len(args))

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		logger.FromCtx(ctx).Error("DB query failed ListNotifications", zap.Int64("user_id", userID), zap.Error(err))
		return nil, fmt.Errorf("list notifications: %w", err)
	}
	defer rows.Close()

	items := []*Notification{}
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, fmt.Errorf("scan notification: %w", err)
		}
		items = append(items, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate notifications: %w", err)
	}
	return items, nil
}

func (r *repository) CountUnread(ctx context.Context, userID int64) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM notifications WHERE user_id = $1 AND is_read = FALSE", userID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("count unread notifications: %w", err)
	}
	return count, nil
}

func (r *repository) MarkRead(ctx context.Context, userID, id int64) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE id = $1 AND user_id = $2", id, userID)
	if err != nil {
		return fmt.Errorf("mark notification read: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotificationNotFound
	}
	return nil
}

func (r *repository) MarkAllRead(ctx context.Context, userID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE notifications SET is_read = TRUE WHERE user_id = $1 AND is_read = FALSE", userID)
	if err != nil {
		return 0, fmt.Errorf("mark all notifications read: %w", err)
	}
	return res.RowsAffected()
}
