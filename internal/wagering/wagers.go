package wagering

import (
	"context"
	"fmt"

	"github.com/mmynk/sidepot/internal/apperr"
	"github.com/mmynk/sidepot/internal/events"
	"github.com/mmynk/sidepot/internal/models"
	"github.com/mmynk/sidepot/internal/money"
)

// Stakes are whole dollars in this range; requests outside it are clamped.
const (
	MinStakeDollars = 1
	MaxStakeDollars = 50
)

// PlaceWager stakes dollars on an outcome of an active, unlocked bet.
// The amount is clamped to [MinStakeDollars, MaxStakeDollars]. The wager,
// the outcome pot and the actor's "Pledge placed" entry commit together.
func (e *Engine) PlaceWager(ctx context.Context, actor, betID, outcomeID string, dollars int64) (*models.Wager, error) {
	if actor == "" {
		return nil, apperr.ErrNotSignedIn
	}

	// The group is only known after reading the bet; it never changes.
	bet, err := e.store.GetBet(ctx, betID)
	if err != nil {
		return nil, notFound(err)
	}

	unlockGroup := e.readGroup(bet.GroupID)
	defer unlockGroup()
	unlockBet := e.lockBet(betID)
	defer unlockBet()

	bet, err = e.store.GetBet(ctx, betID)
	if err != nil {
		return nil, notFound(err)
	}
	e.forgetSettled(bet)

	if err := e.requireMember(ctx, bet.GroupID, actor); err != nil {
		return nil, err
	}
	if err := e.requireNoOpenDebt(ctx, bet.GroupID, actor); err != nil {
		return nil, err
	}
	if bet.Status != models.BetActive {
		return nil, apperr.Validation("Bet is not active.")
	}
	if bet.IsLocked(e.now()) {
		return nil, apperr.Validation("Bet is locked.")
	}
	if !bet.HasOutcome(outcomeID) {
		return nil, apperr.Validation("Invalid outcome.")
	}

	amount := money.FromDollars(money.Clamp(dollars, MinStakeDollars, MaxStakeDollars))
	now := e.now().UnixMilli()

	wager := &models.Wager{
		BetID:     betID,
		OutcomeID: outcomeID,
		UserID:    actor,
		Amount:    amount,
		CreatedAt: now,
	}
	entry := &models.ActivityEntry{
		UserID:    actor,
		CreatedAt: now,
		Title:     "Pledge placed",
		Detail:    "Bet: " + bet.Title,
		Delta:     amount.Neg(),
	}
	if err := e.store.PlaceWager(ctx, wager, entry); err != nil {
		return nil, fmt.Errorf("failed to place wager: %w", err)
	}

	e.metrics.WagersPlaced.Inc()
	e.metrics.StakeCents.Add(float64(amount.Cents()))
	e.logger.Info("Wager placed",
		"bet_id", betID,
		"outcome_id", outcomeID,
		"user_id", actor,
		"amount", amount,
		"seq", wager.Seq,
	)
	e.publish(ctx, events.TypeWagerPlaced, bet.GroupID, events.WagerPlaced{
		WagerID:    wager.ID,
		BetID:      betID,
		GroupID:    bet.GroupID,
		OutcomeID:  outcomeID,
		UserID:     actor,
		StakeCents: amount.Cents(),
		Seq:        wager.Seq,
	})

	return wager, nil
}
