package sqlite

import (
	"context"
	"fmt"
	"time"

	"github.com/sakif/skillshare/internal/apperror"
)

// orderPair returns the two IDs in canonical order (low, high). A connected
// pair is stored exactly once under this ordering, so "A is connected to B"
// and "B is connected to A" are the same row — symmetry holds by
// construction instead of by two mutations that must both land.
func orderPair(a, b string) (string, string) {
	if a < b {
		return a, b
	}
	return b, a
}

// AcceptRequest establishes the connection and consumes the notification in
// one transaction. The pair insert is add-if-absent (INSERT OR IGNORE); the
// notification delete is the step that decides the race — if another accept
// already consumed it, RowsAffected is 0, the transaction rolls back, and
// the caller gets NotFound with no state applied.
func (db *DB) AcceptRequest(ctx context.Context, notificationID, userID, peerID string) error {
	tx, err := db.conn.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("sqlite: beginning accept transaction: %w", err)
	}
	defer tx.Rollback()

	low, high := orderPair(userID, peerID)
	if _, err := tx.ExecContext(ctx,
		`INSERT OR IGNORE INTO connections (user_a, user_b, created_at) VALUES (?, ?, ?)`,
		low, high, time.Now(),
	); err != nil {
		return fmt.Errorf("sqlite: inserting connection %s/%s: %w", low, high, err)
	}

	result, err := tx.ExecContext(ctx,
		`DELETE FROM notifications WHERE id = ?`, notificationID)
	if err != nil {
		return fmt.Errorf("sqlite: deleting notification %s: %w", notificationID, err)
	}
	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("sqlite: checking rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return apperror.NotFound("notification", notificationID)
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("sqlite: committing accept transaction: %w", err)
	}
	return nil
}

// RemoveConnection deletes the pair row. Removing an absent pair is a no-op;
// the caller can't tell the difference and doesn't need to.
func (db *DB) RemoveConnection(ctx context.Context, userID, peerID string) error {
	low, high := orderPair(userID, peerID)
	_, err := db.conn.ExecContext(ctx,
		`DELETE FROM connections WHERE user_a = ? AND user_b = ?`, low, high)
	if err != nil {
		return fmt.Errorf("sqlite: removing connection %s/%s: %w", low, high, err)
	}
	return nil
}

// ConnectionIDs returns the IDs of every account connected to userID,
// oldest connection first.
func (db *DB) ConnectionIDs(ctx context.Context, userID string) ([]string, error) {
	rows, err := db.conn.QueryContext(ctx,
		`SELECT user_b AS peer, created_at FROM connections WHERE user_a = ?
		 UNION ALL
		 SELECT user_a AS peer, created_at FROM connections WHERE user_b = ?
		 ORDER BY created_at`,
		userID, userID,
	)
	if err != nil {
		return nil, fmt.Errorf("sqlite: listing connections for %s: %w", userID, err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var (
			peer      string
			createdAt time.Time
		)
		if err := rows.Scan(&peer, &createdAt); err != nil {
			return nil, fmt.Errorf("sqlite: scanning connection row: %w", err)
		}
		ids = append(ids, peer)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("sqlite: iterating connections: %w", err)
	}

	return ids, nil
}
