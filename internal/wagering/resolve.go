package wagering

import (
	"context"
	"errors"
	"fmt"

	"github.com/mmynk/sidepot/internal/apperr"
	"github.com/mmynk/sidepot/internal/calculator"
	"github.com/mmynk/sidepot/internal/events"
	"github.com/mmynk/sidepot/internal/models"
	"github.com/mmynk/sidepot/internal/money"
	"github.com/mmynk/sidepot/internal/storage"
)

// ResolveBet settles a bet in favour of winningOutcomeID. Only the group
// owner or the bet's creator may resolve. Resolving a bet that is already
// settled succeeds without changing anything, whatever outcome is given.
//
// Settlement runs under the group write lock, so the group's debt set and
// the bet's wagers are frozen while payouts are computed, and the status
// change, debts and activity entries commit in one transaction.
func (e *Engine) ResolveBet(ctx context.Context, actor, betID, winningOutcomeID string) (*models.Bet, error) {
	if actor == "" {
		return nil, apperr.ErrNotSignedIn
	}

	bet, err := e.store.GetBet(ctx, betID)
	if err != nil {
		return nil, notFound(err)
	}

	unlockGroup := e.writeGroup(bet.GroupID)
	defer unlockGroup()
	unlockBet := e.lockBet(betID)
	defer unlockBet()

	bet, err = e.store.GetBet(ctx, betID)
	if err != nil {
		return nil, notFound(err)
	}

	allowed, err := e.isOwnerOr(ctx, bet.GroupID, actor, bet.CreatorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.ErrForbidden
	}

	switch bet.Status {
	case models.BetSettled:
		e.logger.Info("Bet already settled", "bet_id", betID)
		e.forgetSettled(bet)
		return bet, nil
	case models.BetDisputed:
		return nil, apperr.Validation("Bet is disputed.")
	}
	if !bet.HasOutcome(winningOutcomeID) {
		return nil, apperr.Validation("Invalid outcome.")
	}

	wagers, err := e.store.ListWagers(ctx, betID)
	if err != nil {
		return nil, fmt.Errorf("failed to list wagers: %w", err)
	}

	result := calculator.Settle(toStakes(wagers), winningOutcomeID)
	settlement := e.buildSettlement(bet, actor, winningOutcomeID, result)

	err = e.store.SettleBet(ctx, settlement)
	if errors.Is(err, storage.ErrAlreadySettled) {
		// Another engine settled it first.
		e.locks.forgetBet(betID)
		return e.reload(ctx, betID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to settle bet: %w", err)
	}
	e.locks.forgetBet(betID)

	kind := "paid"
	if result.NoWinners {
		kind = "no_winners"
	}
	e.metrics.BetsSettled.WithLabelValues(kind).Inc()
	e.metrics.DebtsCreated.Add(float64(len(settlement.Debts)))
	e.metrics.DustCents.Add(float64(result.Dust.Cents()))

	e.logger.Info("Bet settled",
		"bet_id", betID,
		"winning_outcome_id", winningOutcomeID,
		"total_pot", result.TotalPot,
		"dust", result.Dust,
		"debts", len(settlement.Debts),
		"no_winners", result.NoWinners,
	)
	e.publish(ctx, events.TypeBetSettled, bet.GroupID, events.BetSettled{
		BetID:            betID,
		GroupID:          bet.GroupID,
		WinningOutcomeID: winningOutcomeID,
		ResolvedBy:       actor,
		NoWinners:        result.NoWinners,
		TotalPotCents:    result.TotalPot.Cents(),
		DustCents:        result.Dust.Cents(),
		DebtCount:        len(settlement.Debts),
	})

	bet.Status = models.BetSettled
	bet.WinningOutcomeID = winningOutcomeID
	bet.SettledAt = settlement.SettledAt
	return bet, nil
}

// buildSettlement turns a computed result into the rows to write.
func (e *Engine) buildSettlement(bet *models.Bet, actor, winningOutcomeID string, result calculator.SettlementResult) *models.Settlement {
	now := e.now().UnixMilli()
	detail := "Bet: " + bet.Title

	st := &models.Settlement{
		BetID:            bet.ID,
		WinningOutcomeID: winningOutcomeID,
		SettledAt:        now,
	}

	if result.NoWinners {
		st.Entries = append(st.Entries, models.ActivityEntry{
			UserID:    actor,
			CreatedAt: now,
			Title:     "Settled (no winners)",
			Detail:    detail,
			Delta:     money.Zero,
		})
		return st
	}

	for _, tr := range result.Transfers {
		st.Debts = append(st.Debts, models.Debt{
			GroupID:    bet.GroupID,
			BetID:      bet.ID,
			DebtorID:   tr.From,
			CreditorID: tr.To,
			Amount:     tr.Amount,
			Status:     models.DebtOpen,
			CreatedAt:  now,
		})
	}
	for _, p := range result.Positions {
		st.Entries = append(st.Entries, models.ActivityEntry{
			UserID:    p.UserID,
			CreatedAt: now,
			Title:     "Bet settled",
			Detail:    detail,
			Delta:     p.Net,
		})
	}
	return st
}

func (e *Engine) reload(ctx context.Context, betID string) (*models.Bet, error) {
	bet, err := e.store.GetBet(ctx, betID)
	if err != nil {
		return nil, notFound(err)
	}
	return bet, nil
}

func toStakes(wagers []*models.Wager) []calculator.Stake {
	stakes := make([]calculator.Stake, len(wagers))
	for i, w := range wagers {
		stakes[i] = calculator.Stake{UserID: w.UserID, OutcomeID: w.OutcomeID, Amount: w.Amount}
	}
	return stakes
}
