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

// CreateInvite persists a new invite.
func (s *Store) CreateInvite(ctx context.Context, invite *models.Invite) error {
	if invite.ID == "" {
		invite.ID = uuid.New().String()
	}
	if invite.CreatedAt == 0 {
		invite.CreatedAt = time.Now().UnixMilli()
	}

	_, err := s.db.ExecContext(ctx,
		s.rebind(`INSERT INTO invites (id, group_id, code, created_by, created_at, expires_at, used_by)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`),
		invite.ID, invite.GroupID, invite.Code, invite.CreatedBy, invite.CreatedAt, invite.ExpiresAt, invite.UsedBy,
	)
	if err != nil {
		return fmt.Errorf("failed to insert invite: %w", err)
	}
	return nil
}

// GetInviteByCode retrieves an invite by its code.
func (s *Store) GetInviteByCode(ctx context.Context, code string) (*models.Invite, error) {
	invite := &models.Invite{}
	err := s.db.QueryRowContext(ctx,
		s.rebind(`SELECT id, group_id, code, created_by, created_at, expires_at, used_by
		 FROM invites WHERE code = ?`),
		code,
	).Scan(&invite.ID, &invite.GroupID, &invite.Code, &invite.CreatedBy,
		&invite.CreatedAt, &invite.ExpiresAt, &invite.UsedBy)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, storage.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get invite: %w", err)
	}
	return invite, nil
}

// RedeemInvite marks an invite used and adds the user to its group.
// A user who is already a member keeps their original join time.
func (s *Store) RedeemInvite(ctx context.Context, inviteID, userID string, joinedAt int64) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var groupID string
	err = tx.QueryRowContext(ctx,
		s.rebind("SELECT group_id FROM invites WHERE id = ?"), inviteID,
	).Scan(&groupID)
	if errors.Is(err, sql.ErrNoRows) {
		return storage.ErrNotFound
	}
	if err != nil {
		return fmt.Errorf("failed to get invite: %w", err)
	}

	res, err := tx.ExecContext(ctx,
		s.rebind("UPDATE invites SET used_by = ? WHERE id = ? AND used_by = ''"),
		userID, inviteID,
	)
	if err != nil {
		return fmt.Errorf("failed to mark invite used: %w", err)
	}
	n, err := rowsAffected(res)
	if err != nil {
		return err
	}
	if n == 0 {
		return storage.ErrInviteUsed
	}

	var count int
	if err := tx.QueryRowContext(ctx,
		s.rebind("SELECT COUNT(*) FROM group_members WHERE group_id = ? AND user_id = ?"),
		groupID, userID,
	).Scan(&count); err != nil {
		return fmt.Errorf("failed to check membership: %w", err)
	}
	if count == 0 {
		_, err = tx.ExecContext(ctx,
			s.rebind("INSERT INTO group_members (group_id, user_id, joined_at) VALUES (?, ?, ?)"),
			groupID, userID, joinedAt,
		)
		if err != nil {
			return fmt.Errorf("failed to insert group member: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}
	return nil
}

// DeleteExpiredInvites removes unused invites that expired before the cutoff.
func (s *Store) DeleteExpiredInvites(ctx context.Context, before int64) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		s.rebind("DELETE FROM invites WHERE used_by = '' AND expires_at < ?"), before,
	)
	if err != nil {
		return 0, fmt.Errorf("failed to delete expired invites: %w", err)
	}
	return rowsAffected(res)
}
