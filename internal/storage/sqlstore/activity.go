package sqlstore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"github.com/mmynk/sidepot/internal/models"
)

// insertActivity appends an entry to the user's feed. seq numbers a user's
// entries in insertion order and breaks ties between entries written in the
// same millisecond. SQLite runs one writer at a time; concurrent PostgreSQL
// writers for the same user may share a seq.
func (s *Store) insertActivity(ctx context.Context, tx *sql.Tx, e *models.ActivityEntry) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}

	var seq int64
	if err := tx.QueryRowContext(ctx,
		s.rebind("SELECT COALESCE(MAX(seq), 0) + 1 FROM activity WHERE user_id = ?"), e.UserID,
	).Scan(&seq); err != nil {
		return fmt.Errorf("failed to compute activity sequence: %w", err)
	}

	_, err := tx.ExecContext(ctx,
		s.rebind(`INSERT INTO activity (id, user_id, seq, created_at, title, detail, delta)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		e.ID, e.UserID, seq, e.CreatedAt, e.Title, e.Detail, e.Delta.Cents(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert activity entry: %w", err)
	}
	return nil
}

// ListActivity retrieves a user's activity entries, newest first.
func (s *Store) ListActivity(ctx context.Context, userID string) ([]*models.ActivityEntry, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT id, user_id, created_at, title, detail, delta
		 FROM activity WHERE user_id = ? ORDER BY created_at DESC, seq DESC`),
		userID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	defer rows.Close()

	var entries []*models.ActivityEntry
	for rows.Next() {
		e := &models.ActivityEntry{}
		if err := rows.Scan(&e.ID, &e.UserID, &e.CreatedAt, &e.Title, &e.Detail, &e.Delta); err != nil {
			return nil, fmt.Errorf("failed to scan activity entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate activity: %w", err)
	}
	return entries, nil
}
