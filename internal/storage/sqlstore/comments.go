package sqlstore

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mmynk/sidepot/internal/models"
)

// AddComment persists a comment on a bet.
func (s *Store) AddComment(ctx context.Context, c *models.Comment) error {
	if c.ID == "" {
		c.ID = uuid.New().String()
	}
	if c.CreatedAt == 0 {
		c.CreatedAt = time.Now().UnixMilli()
	}

	_, err := s.db.ExecContext(ctx,
		s.rebind("INSERT INTO comments (id, bet_id, user_id, body, created_at) VALUES (?, ?, ?, ?, ?)"),
		c.ID, c.BetID, c.UserID, c.Body, c.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert comment: %w", err)
	}
	return nil
}

// ListComments retrieves a bet's comments oldest first. AuthorName is the
// author's display name, or empty if the account no longer exists.
func (s *Store) ListComments(ctx context.Context, betID string) ([]*models.Comment, error) {
	rows, err := s.db.QueryContext(ctx,
		s.rebind(`SELECT c.id, c.bet_id, c.user_id, COALESCE(u.display_name, ''), c.body, c.created_at
		 FROM comments c
		 LEFT JOIN users u ON u.id = c.user_id
		 WHERE c.bet_id = ?
		 ORDER BY c.created_at, c.id`),
		betID,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	defer rows.Close()

	var comments []*models.Comment
	for rows.Next() {
		c := &models.Comment{}
		if err := rows.Scan(&c.ID, &c.BetID, &c.UserID, &c.AuthorName, &c.Body, &c.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan comment: %w", err)
		}
		comments = append(comments, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate comments: %w", err)
	}
	return comments, nil
}
