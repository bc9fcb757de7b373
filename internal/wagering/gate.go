package wagering

import (
	"context"
	"fmt"

	"github.com/mmynk/sidepot/internal/apperr"
	"github.com/mmynk/sidepot/internal/storage"
)

// Membership answers who belongs to and who owns a group. Both return
// apperr.ErrNotFound for a group that does not exist.
type Membership interface {
	IsMember(ctx context.Context, groupID, userID string) (bool, error)
	IsOwner(ctx context.Context, groupID, userID string) (bool, error)
}

// Gate is consulted before every mutating operation.
type Gate interface {
	Membership

	// HasOpenDebt reports whether userID is the debtor on any open debt in
	// groupID. The lockout is per group: debts elsewhere do not count.
	HasOpenDebt(ctx context.Context, groupID, userID string) (bool, error)
}

type gate struct {
	Membership
	debts storage.DebtStore
}

// NewGate combines a membership source with the debt ledger.
func NewGate(m Membership, debts storage.DebtStore) Gate {
	return &gate{Membership: m, debts: debts}
}

func (g *gate) HasOpenDebt(ctx context.Context, groupID, userID string) (bool, error) {
	open, err := g.debts.HasOpenDebt(ctx, groupID, userID)
	if err != nil {
		return false, fmt.Errorf("failed to check open debts: %w", err)
	}
	return open, nil
}

// requireMember fails with ErrForbidden unless actor belongs to groupID.
func (e *Engine) requireMember(ctx context.Context, groupID, actor string) error {
	ok, err := e.gate.IsMember(ctx, groupID, actor)
	if err != nil {
		return err
	}
	if !ok {
		return apperr.ErrForbidden
	}
	return nil
}

// requireNoOpenDebt fails with a validation error while actor owes money in groupID.
func (e *Engine) requireNoOpenDebt(ctx context.Context, groupID, actor string) error {
	open, err := e.gate.HasOpenDebt(ctx, groupID, actor)
	if err != nil {
		return err
	}
	if open {
		return apperr.Validation("Resolve your debt in this group first.")
	}
	return nil
}

// isOwnerOr reports whether actor owns groupID or is the given user.
func (e *Engine) isOwnerOr(ctx context.Context, groupID, actor, userID string) (bool, error) {
	if actor == userID {
		return true, nil
	}
	return e.gate.IsOwner(ctx, groupID, actor)
}

// LockedOut reports whether actor is barred from creating bets and placing
// wagers in groupID because of an open debt.
func (e *Engine) LockedOut(ctx context.Context, actor, groupID string) (bool, error) {
	if actor == "" {
		return false, apperr.ErrNotSignedIn
	}
	if err := e.requireMember(ctx, groupID, actor); err != nil {
		return false, err
	}
	return e.gate.HasOpenDebt(ctx, groupID, actor)
}
