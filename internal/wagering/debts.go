package wagering

import (
	"context"
	"fmt"

	"github.com/mmynk/sidepot/internal/apperr"
	"github.com/mmynk/sidepot/internal/calculator"
	"github.com/mmynk/sidepot/internal/events"
	"github.com/mmynk/sidepot/internal/models"
)

// ResolveDebt marks a debt paid. Only the group owner or the creditor may
// resolve it; resolving a resolved debt is a no-op. Once a debtor has no
// open debts left in the group they can bet there again.
func (e *Engine) ResolveDebt(ctx context.Context, actor, debtID string) (*models.Debt, error) {
	if actor == "" {
		return nil, apperr.ErrNotSignedIn
	}

	debt, err := e.store.GetDebt(ctx, debtID)
	if err != nil {
		return nil, notFound(err)
	}

	unlock := e.writeGroup(debt.GroupID)
	defer unlock()

	debt, err = e.store.GetDebt(ctx, debtID)
	if err != nil {
		return nil, notFound(err)
	}

	allowed, err := e.isOwnerOr(ctx, debt.GroupID, actor, debt.CreditorID)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, apperr.ErrForbidden
	}

	if debt.Status == models.DebtResolved {
		return debt, nil
	}

	resolvedAt := e.now().UnixMilli()
	if err := e.store.ResolveDebt(ctx, debtID, resolvedAt); err != nil {
		return nil, fmt.Errorf("failed to resolve debt: %w", err)
	}
	debt.Status = models.DebtResolved
	debt.ResolvedAt = resolvedAt

	e.metrics.DebtsResolved.Inc()
	e.logger.Info("Debt resolved", "debt_id", debtID, "group_id", debt.GroupID, "resolved_by", actor)
	e.publish(ctx, events.TypeDebtResolved, debt.GroupID, events.DebtResolved{
		DebtID:      debt.ID,
		GroupID:     debt.GroupID,
		DebtorID:    debt.DebtorID,
		CreditorID:  debt.CreditorID,
		AmountCents: debt.Amount.Cents(),
		ResolvedBy:  actor,
	})

	return debt, nil
}

// ListDebts returns every debt in a group, newest first. Members only.
func (e *Engine) ListDebts(ctx context.Context, actor, groupID string) ([]*models.Debt, error) {
	if actor == "" {
		return nil, apperr.ErrNotSignedIn
	}
	if err := e.requireMember(ctx, groupID, actor); err != nil {
		return nil, err
	}
	debts, err := e.store.ListDebtsByGroup(ctx, groupID)
	if err != nil {
		return nil, fmt.Errorf("failed to list debts: %w", err)
	}
	return debts, nil
}

// GroupBalances nets the group's open debts per member and suggests the
// fewest payments that would clear them. Members only.
func (e *Engine) GroupBalances(ctx context.Context, actor, groupID string) ([]calculator.MemberBalance, []calculator.DebtEdge, error) {
	debts, err := e.ListDebts(ctx, actor, groupID)
	if err != nil {
		return nil, nil, err
	}

	var open []calculator.DebtForBalance
	for _, d := range debts {
		if d.Status != models.DebtOpen {
			continue
		}
		open = append(open, calculator.DebtForBalance{
			DebtorID:   d.DebtorID,
			CreditorID: d.CreditorID,
			Amount:     d.Amount,
		})
	}

	balances, edges := calculator.CalculateGroupBalances(open)
	return balances, edges, nil
}
