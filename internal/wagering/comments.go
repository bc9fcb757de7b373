package wagering

import (
	"context"
	"fmt"
	"strings"

	"github.com/mmynk/sidepot/internal/apperr"
	"github.com/mmynk/sidepot/internal/models"
)

// AddComment posts a comment on a bet. Members only; open debts do not
// block discussion.
func (e *Engine) AddComment(ctx context.Context, actor, betID, body string) (*models.Comment, error) {
	if actor == "" {
		return nil, apperr.ErrNotSignedIn
	}

	bet, err := e.store.GetBet(ctx, betID)
	if err != nil {
		return nil, notFound(err)
	}
	if err := e.requireMember(ctx, bet.GroupID, actor); err != nil {
		return nil, err
	}

	body = strings.TrimSpace(body)
	if body == "" {
		return nil, apperr.Validation("Comment cannot be empty.")
	}

	comment := &models.Comment{
		BetID:     betID,
		UserID:    actor,
		Body:      body,
		CreatedAt: e.now().UnixMilli(),
	}
	if err := e.store.AddComment(ctx, comment); err != nil {
		return nil, fmt.Errorf("failed to add comment: %w", err)
	}
	return comment, nil
}

// ListComments returns a bet's comments, oldest first. Members only.
func (e *Engine) ListComments(ctx context.Context, actor, betID string) ([]*models.Comment, error) {
	if actor == "" {
		return nil, apperr.ErrNotSignedIn
	}

	bet, err := e.store.GetBet(ctx, betID)
	if err != nil {
		return nil, notFound(err)
	}
	if err := e.requireMember(ctx, bet.GroupID, actor); err != nil {
		return nil, err
	}

	comments, err := e.store.ListComments(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments: %w", err)
	}
	return comments, nil
}
