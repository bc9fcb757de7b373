package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/sidepot/internal/models"
	"github.com/mmynk/sidepot/internal/storage"
)

// PlaceWager records a wager, bumps its outcome's pot and appends the
// matching activity entry in one transaction. wager.Seq is set on success.
func (s *Store) PlaceWager(ctx context.Context, wager *models.Wager, entry *models.ActivityEntry) error {
	if wager.ID == "" {
		wager.ID = uuid.New().String()
	}
	if wager.CreatedAt == 0 {
		wager.CreatedAt = time.Now().UnixMilli()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var seq int64
	if err := tx.QueryRowContext(ctx,
		s.rebind("SELECT COALESCE(MAX(seq), 0) + 1 FROM wagers WHERE bet_id = ?"), wager.BetID,
	).Scan(&seq); err != nil {
		return fmt.Errorf("failed to compute wager sequence: %w", err)
	}

	_, err = tx.ExecContext(ctx,
		s.rebind(`INSERT INTO wagers (id, bet_id, outcome_id, user_id, amount, seq, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		wager.ID, wager.BetID, wager.OutcomeID, wager.UserID, wager.Amount.Cents(), seq, wager.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert wager: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		s.rebind("UPDATE outcomes SET pot = pot + ? WHERE id = ? AND bet_id = ?"),
		wager.Amount.Cents(), wager.OutcomeID, wager.BetID,
	)
	if err != nil {
		return fmt.Errorf("failed to update outcome pot: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n != 1 {
		return storage.ErrNotFound
	}

	if entry != nil {
		if entry.CreatedAt == 0 {
			entry.CreatedAt = wager.CreatedAt
		}
		if err := s.insertActivity(ctx, tx, entry); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	wager.Seq = seq
	return nil
}

// ListWagers retrieves a bet's wagers in placement order.
func (s *Store) ListWagers(ctx context.Context, betID string) ([]*models.Wager, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT id, bet_id, outcome_id, user_id, amount, seq, created_at
		 FROM wagers WHERE bet_id = ? ORDER BY seq`),
		betID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list wagers: %w", err)
	}
	defer rows.Close()

	var wagers []*models.Wager
	for rows.Next() {
		w := &models.Wager{}
		if err := rows.Scan(&w.ID, &w.BetID, &w.OutcomeID, &w.UserID, &w.Amount, &w.Seq, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan wager: %w", err)
		}
		wagers = append(wagers, w)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate wagers: %w", err)
	}
	return wagers, nil
}
