package sqlstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/mmynk/sidepot/internal/models"
	"github.com/mmynk/sidepot/internal/storage"
)

const debtColumns = `id, group_id, bet_id, debtor_id, creditor_id, amount, status, created_at, resolved_at`

func scanDebt(row scanner) (*models.Debt, error) {
	d := &models.Debt{}
	err := row.Scan(&d.ID, &d.GroupID, &d.BetID, &d.DebtorID, &d.CreditorID,
		&d.Amount, &d.Status, &d.CreatedAt, &d.ResolvedAt)
	return d, err
}

func (s *Store) insertDebt(ctx context.Context, tx *sql.Tx, d *models.Debt) error {
	_, err := tx.ExecContext(ctx,
		s.rebind("INSERT INTO debts ("+debtColumns+") VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)"),
		d.ID, d.GroupID, d.BetID, d.DebtorID, d.CreditorID, d.Amount.Cents(),
		string(d.Status), d.CreatedAt, d.ResolvedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert debt: %w", err)
	}
	return nil
}

// GetDebt retrieves a debt by ID.
func (s *Store) GetDebt(ctx context.Context, debtID string) (*models.Debt, error) {
	d, err := scanDebt(s.db.QueryRowContext(ctx,
		s.rebind("SELECT "+debtColumns+" FROM debts WHERE id = ?"), debtID,
	))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get debt: %w", err)
	}
	return d, nil
}

// ListDebtsByGroup retrieves all debts for a group, newest first.
func (s *Store) ListDebtsByGroup(ctx context.Context, groupID string) ([]*models.Debt, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind("SELECT "+debtColumns+" FROM debts WHERE group_id = ? ORDER BY created_at DESC, id"),
		groupID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts by group: %w", err)
	}
	defer rows.Close()

	var debts []*models.Debt
	for rows.Next() {
		d, err := scanDebt(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan debt: %w", err)
		}
		debts = append(debts, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate debts: %w", err)
	}
	return debts, nil
}

// HasOpenDebt reports whether userID owes anything unresolved in groupID.
func (s *Store) HasOpenDebt(ctx context.Context, groupID, userID string) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx,
		s.rebind("SELECT COUNT(*) FROM debts WHERE group_id = ? AND debtor_id = ? AND status = ?"),
		groupID, userID, string(models.DebtOpen),
	).Scan(&count)
	if err != nil {
		return false, fmt.Errorf("failed to check open debts: %w", err)
	}
	return count > 0, nil
}

// ResolveDebt marks an open debt resolved.
func (s *Store) ResolveDebt(ctx context.Context, debtID string, resolvedAt int64) error {
	res, err := s.db.ExecContext(ctx,
		s.rebind("UPDATE debts SET status = ?, resolved_at = ? WHERE id = ? AND status = ?"),
		string(models.DebtResolved), resolvedAt, debtID, string(models.DebtOpen),
	)
	if err != nil {
		return fmt.Errorf("failed to resolve debt: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		// Either already resolved (a no-op) or missing.
		if _, err := s.GetDebt(ctx, debtID); err != nil {
			return err
		}
	}
	return nil
}
