package wagering

import (
	"context"
	"fmt"

	"github.com/mmynk/sidepot/internal/apperr"
	"github.com/mmynk/sidepot/internal/models"
)

// ListActivity returns a user's ledger entries, newest first. Users can
// only read their own ledger.
func (e *Engine) ListActivity(ctx context.Context, actor, userID string) ([]*models.ActivityEntry, error) {
	if actor == "" {
		return nil, apperr.ErrNotSignedIn
	}
	if userID == "" {
		userID = actor
	}
	if userID != actor {
		return nil, apperr.ErrForbidden
	}

	entries, err := e.store.ListActivity(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list activity: %w", err)
	}
	return entries, nil
}
