package wagering

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mmynk/sidepot/internal/apperr"
	"github.com/mmynk/sidepot/internal/models"
	"github.com/mmynk/sidepot/internal/storage"
)

const (
	defaultBetTitle   = "Untitled Bet"
	defaultBetDetails = "No description."
	minOutcomes       = 2
)

// CreateBetParams describes a new bet.
type CreateBetParams struct {
	GroupID   string
	Title     string
	Details   string
	LockAt    int64 // Unix milliseconds
	ResolveAt int64 // Unix milliseconds
	Rule      models.BetRule
	Outcomes  []string
}

// CreateBet creates an active bet in a group. The actor must be a member
// with no open debt in the group.
func (e *Engine) CreateBet(ctx context.Context, actor string, p CreateBetParams) (*models.Bet, error) {
	if actor == "" {
		return nil, apperr.ErrNotSignedIn
	}

	unlock := e.readGroup(p.GroupID)
	defer unlock()

	if err := e.requireMember(ctx, p.GroupID, actor); err != nil {
		return nil, err
	}
	if err := e.requireNoOpenDebt(ctx, p.GroupID, actor); err != nil {
		return nil, err
	}

	labels := normalizeOutcomes(p.Outcomes)
	if len(labels) < minOutcomes {
		return nil, apperr.Validation("Add at least 2 outcomes.")
	}
	if p.ResolveAt <= p.LockAt {
		return nil, apperr.Validation("Resolve time must be after lock time.")
	}

	rule := p.Rule
	if rule == "" {
		rule = models.RuleCreatorDecides
	}
	if !rule.Valid() {
		return nil, apperr.Validationf("Unknown rule %q.", rule)
	}

	bet := &models.Bet{
		GroupID:   p.GroupID,
		Title:     orDefault(p.Title, defaultBetTitle),
		Details:   orDefault(p.Details, defaultBetDetails),
		LockAt:    p.LockAt,
		ResolveAt: p.ResolveAt,
		Rule:      rule,
		Status:    models.BetActive,
		CreatorID: actor,
		CreatedAt: e.now().UnixMilli(),
	}
	for _, label := range labels {
		bet.Outcomes = append(bet.Outcomes, models.Outcome{Label: label})
	}

	if err := e.store.CreateBet(ctx, bet); err != nil {
		return nil, fmt.Errorf("failed to create bet: %w", err)
	}

	e.logger.Info("Bet created", "bet_id", bet.ID, "group_id", bet.GroupID, "outcomes", len(bet.Outcomes))
	return bet, nil
}

// ToggleDispute flips a bet between active and disputed. Only the group
// owner or the bet's creator may do this, and never on a settled bet.
func (e *Engine) ToggleDispute(ctx context.Context, actor, betID string) (*models.Bet, error) {
	if actor == "" {
		return nil, apperr.ErrNotSignedIn
	}

	unlock := e.lockBet(betID)
	defer unlock()

	bet, err := e.store.GetBet(ctx, betID)
	if err != nil {
		return nil, notFound(err)
	}
	e.forgetSettled(bet)

	allowed, err := e.isOwnerOr(ctx, bet.GroupID, actor, bet.CreatorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.ErrForbidden
	}

	next := models.BetDisputed
	switch bet.Status {
	case models.BetSettled:
		return nil, apperr.Validation("Bet is already settled.")
	case models.BetDisputed:
		next = models.BetActive
	}

	err = e.store.UpdateBetStatus(ctx, betID, next)
	if errors.Is(err, storage.ErrAlreadySettled) {
		return nil, apperr.Validation("Bet is already settled.")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update bet status: %w", err)
	}
	bet.Status = next

	e.logger.Info("Bet dispute toggled", "bet_id", betID, "status", next)
	return bet, nil
}

// ListBets returns a group's bets ordered by lock time. Members only.
func (e *Engine) ListBets(ctx context.Context, actor, groupID string) ([]*models.Bet, error) {
	if actor == "" {
		return nil, apperr.ErrNotSignedIn
	}
	if err := e.requireMember(ctx, groupID, actor); err != nil {
		return nil, err
	}
	bets, err := e.store.ListBets(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list bets: %w", err)
	}
	return bets, nil
}

// GetBet returns a bet and its wagers in placement order. Members only.
func (e *Engine) GetBet(ctx context.Context, actor, betID string) (*models.Bet, []*models.Wager, error) {
	if actor == "" {
		return nil, nil, apperr.ErrNotSignedIn
	}
	bet, err := e.store.GetBet(ctx, betID)
	if err != nil {
		return nil, nil, notFound(err)
	}
	if err := e.requireMember(ctx, bet.GroupID, actor); err != nil {
		return nil, nil, err
	}
	wagers, err := e.store.ListWagers(ctx, betID)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to list wagers: %w", err)
	}
	return bet, wagers, nil
}

// normalizeOutcomes trims labels, drops empty ones and removes
// case-insensitive duplicates, keeping the first spelling and order.
func normalizeOutcomes(raw []string) []string {
	seen := make(map[string]bool, len(raw))
	var out []string
	for _, label := range raw {
		label = strings.TrimSpace(label)
		if label == "" {
			continue
		}
		key := strings.ToLower(label)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, label)
	}
	return out
}

func orDefault(s, def string) string {
	if s = strings.TrimSpace(s); s == "" {
		return def
	}
	return s
}
