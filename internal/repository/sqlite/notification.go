package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/xid"

	"github.com/sakif/skillshare/internal/apperror"
	"github.com/sakif/skillshare/internal/model"
)

const notificationColumns = `id, recipient_id, sender_id, sender_name, message, type, status, created_at`

func (db *DB) CreateNotification(ctx context.Context, n *model.Notification) error {
	n.ID = xid.New().String()
	n.CreatedAt = time.Now()
	if n.Type == "" {
		n.Type = model.NotifGeneral
	}
	if n.Status == "" {
		n.Status = model.NotifUnread
	}

	_, err := db.conn.ExecContext(ctx,
		`INSERT INTO notifications (`+notificationColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID,
		n.RecipientID,
		n.SenderID,
		n.SenderName,
		n.Message,
		n.Type,
		n.Status,
		n.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("sqlite: creating notification: %w", err)
	}

	return nil
}

func (db *DB) GetNotificationByID(ctx context.Context, id string) (*model.Notification, error) {
	var n model.Notification
	err := db.conn.QueryRowContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications WHERE id = ?`, id,
	).Scan(
		&n.ID,
		&n.RecipientID,
		&n.SenderID,
		&n.SenderName,
		&n.Message,
		&n.Type,
		&n.Status,
		&n.CreatedAt,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperror.NotFound("notification", id)
		}
		return nil, fmt.Errorf("sqlite: getting notification %s: %w", id, err)
	}
	return &n, nil
}

// ListByRecipient returns a recipient's notifications, newest first.
func (db *DB) ListByRecipient(ctx context.Context, recipientID string) ([]model.Notification, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT `+notificationColumns+` FROM notifications
		 WHERE recipient_id = ?
		 ORDER BY created_at DESC`,
		recipientID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing notifications for %s: %w", recipientID, err)
	}
	defer rows.Close()

	notifications := []model.Notification{}
	for rows.Next() {
		var n model.Notification
		if err := rows.Scan(
			&n.ID,
			&n.RecipientID,
			&n.SenderID,
			&n.SenderName,
			&n.Message,
			&n.Type,
			&n.Status,
			&n.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("sqlite: scanning notification row: %w", err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating notifications: %w", err)
	}

	return notifications, nil
}

// DeleteNotification removes a notification, reporting NotFound when the id
// doesn't exist so a caller racing with another accept/reject can tell it
// lost.
func (db *DB) DeleteNotification(ctx context.Context, id string) error {
	result, err := db.conn.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("sqlite: deleting notification %s: %w", id, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("notification", id)
	}

	return nil
}
