package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/sidepot/internal/models"
	"github.com/mmynk/sidepot/internal/storage"
)

const betColumns = `id, group_id, title, details, lock_at, resolve_at, rule, status,
	creator_id, winning_outcome_id, created_at, settled_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanBet(row scanner) (*models.Bet, error) {
	bet := &models.Bet{}
	err := row.Scan(&bet.ID, &bet.GroupID, &bet.Title, &bet.Details, &bet.LockAt, &bet.ResolveAt,
		&bet.Rule, &bet.Status, &bet.CreatorID, &bet.WinningOutcomeID, &bet.CreatedAt, &bet.SettledAt)
	return bet, err
}

// CreateBet persists a new bet and its outcomes.
func (s *Store) CreateBet(ctx context.Context, bet *models.Bet) error {
	if bet.ID == "" {
		bet.ID = uuid.New().String()
	}
	if bet.CreatedAt == 0 {
		bet.CreatedAt = time.Now().UnixMilli()
	}
	if bet.Status == "" {
		bet.Status = models.BetActive
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		s.rebind(`INSERT INTO bets (id, group_id, title, details, lock_at, resolve_at, rule, status,
		 creator_id, winning_outcome_id, created_at, settled_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`),
		bet.ID, bet.GroupID, bet.Title, bet.Details, bet.LockAt, bet.ResolveAt, string(bet.Rule),
		string(bet.Status), bet.CreatorID, bet.WinningOutcomeID, bet.CreatedAt, bet.SettledAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert bet: %w", err)
	}

	for i := range bet.Outcomes {
		outcome := &bet.Outcomes[i]
		if outcome.ID == "" {
			outcome.ID = uuid.New().String()
		}
		_, err = tx.ExecContext(ctx,
			s.rebind("INSERT INTO outcomes (id, bet_id, position, label, pot) VALUES (?, ?, ?, ?, ?)"),
			outcome.ID, bet.ID, i, outcome.Label, outcome.Pot.Cents(),
		)
		if err != nil {
			return fmt.Errorf("failed to insert outcome: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// GetBet retrieves a bet by ID with its outcomes.
func (s *Store) GetBet(ctx context.Context, betID string) (*models.Bet, error) {
	bet, err := scanBet(s.db.QueryRowContext(ctx,
		s.rebind("SELECT "+betColumns+" FROM bets WHERE id = ?"), betID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get bet: %w", err)
	}

	outcomes, err := s.loadOutcomes(ctx, "bet_id = ?", betID)
	if err != nil {
		return nil, err
	}
	bet.Outcomes = outcomes[bet.ID]

	return bet, nil
}

// ListBets retrieves every bet in a group ordered by lock time.
func (s *Store) ListBets(ctx context.Context, groupID string) ([]*models.Bet, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind("SELECT "+betColumns+" FROM bets WHERE group_id = ? ORDER BY lock_at, created_at, id"),
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}

	var bets []*models.Bet
	for rows.Next() {
		bet, err := scanBet(rows)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan bet: %w", err)
		}
		bets = append(bets, bet)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bets: %w", err)
	}

	if len(bets) == 0 {
		return bets, nil
	}

	outcomes, err := s.loadOutcomes(ctx, "bet_id IN (SELECT id FROM bets WHERE group_id = ?)", groupID)
	if err != nil {
		return nil, err
	}
	for _, bet := range bets {
		bet.Outcomes = outcomes[bet.ID]
	}

	return bets, nil
}

// loadOutcomes returns outcomes matching where, keyed by bet ID, each slice
// in creation order.
func (s *Store) loadOutcomes(ctx context.Context, where string, args ...any) (map[string][]models.Outcome, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind("SELECT bet_id, id, label, pot FROM outcomes WHERE "+where+" ORDER BY bet_id, position"),
		args...,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to get outcomes: %w", err)
	}
	defer rows.Close()

	out := make(map[string][]models.Outcome)
	for rows.Next() {
		var betID string
		var o models.Outcome
		if err := rows.Scan(&betID, &o.ID, &o.Label, &o.Pot); err != nil {
			return nil, fmt.Errorf("failed to scan outcome: %w", err)
		}
		out[betID] = append(out[betID], o)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate outcomes: %w", err)
	}
	return out, nil
}

// UpdateBetStatus changes the status of a bet that is not settled.
func (s *Store) UpdateBetStatus(ctx context.Context, betID string, status models.BetStatus) error {
	if status == models.BetSettled {
		return fmt.Errorf("use SettleBet to settle bet %s", betID)
	}

	res, err := s.db.ExecContext(ctx,
		s.rebind("UPDATE bets SET status = ? WHERE id = ? AND status <> ?"),
		string(status), betID, string(models.BetSettled),
	)
	if err != nil {
		return fmt.Errorf("failed to update bet status: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return s.missingOrSettled(ctx, s.db, betID)
	}
	return nil
}

// SettleBet writes a settlement atomically. The status guard makes a second
// settlement of the same bet fail with ErrAlreadySettled and write nothing.
func (s *Store) SettleBet(ctx context.Context, st *models.Settlement) error {
	if st.SettledAt == 0 {
		st.SettledAt = time.Now().UnixMilli()
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	res, err := tx.ExecContext(ctx,
		s.rebind(`UPDATE bets SET status = ?, winning_outcome_id = ?, settled_at = ?
		 WHERE id = ? AND status <> ?`),
		string(models.BetSettled), st.WinningOutcomeID, st.SettledAt, st.BetID, string(models.BetSettled),
	)
	if err != nil {
		return fmt.Errorf("failed to mark bet settled: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return s.missingOrSettled(ctx, tx, st.BetID)
	}

	for i := range st.Debts {
		d := &st.Debts[i]
		if d.ID == "" {
			d.ID = uuid.New().String()
		}
		if d.CreatedAt == 0 {
			d.CreatedAt = st.SettledAt
		}
		if d.Status == "" {
			d.Status = models.DebtOpen
		}
		if err := s.insertDebt(ctx, tx, d); err != nil {
			return err
		}
	}

	for i := range st.Entries {
		e := &st.Entries[i]
		if e.CreatedAt == 0 {
			e.CreatedAt = st.SettledAt
		}
		if err := s.insertActivity(ctx, tx, e); err != nil {
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// missingOrSettled explains why a guarded bet update touched no rows.
func (s *Store) missingOrSettled(ctx context.Context, q queryer, betID string) error {
	var count int
	if err := q.QueryRowContext(ctx,
		s.rebind("SELECT COUNT(*) FROM bets WHERE id = ?"), betID,
	).Scan(&count); err != nil {
		return fmt.Errorf("failed to check bet: %w", err)
	}
	if count == 0 {
		return storage.ErrNotFound
	}
	return storage.ErrAlreadySettled
}
