package calculator

import (
	"cmp"
	"slices"

	"github.com/mmynk/sidepot/internal/money"
)

// DebtForBalance is an open debt with the minimal information needed for
// balance calculations.
type DebtForBalance struct {
	DebtorID   string
	CreditorID string
	Amount     money.Money
}

// MemberBalance represents the balance information for one group member.
type MemberBalance struct {
	UserID     string
	NetBalance money.Money // Positive = owed money, Negative = owes money
	OwedToMe   money.Money // Sum of open debts where this member is the creditor
	IOwe       money.Money // Sum of open debts where this member is the debtor
}

// DebtEdge represents a suggested payment from one person to another.
type DebtEdge struct {
	From   string // Person who owes
	To     string // Person who is owed
	Amount money.Money
}

// CalculateGroupBalances aggregates open debts into per-member balances and a
// simplified payment plan.
//
// Algorithm:
// - For each debt: creditor is owed +amount, debtor owes -amount
// - Aggregate: net_balance = owed_to_me - i_owe
// - Payment plan: greedy matching of largest debtor with largest creditor
//
// Results are sorted by user ID (balances) and by amount descending (edges,
// equal amounts in matching order) so the output is stable across calls.
func CalculateGroupBalances(debts []DebtForBalance) ([]MemberBalance, []DebtEdge) {
	balances := make(map[string]*MemberBalance)
	get := func(userID string) *MemberBalance {
		b, ok := balances[userID]
		if !ok {
			b = &MemberBalance{UserID: userID}
			balances[userID] = b
		}
		return b
	}

	for _, d := range debts {
		if !d.Amount.IsPositive() || d.DebtorID == d.CreditorID {
			continue
		}
		get(d.DebtorID).IOwe += d.Amount
		get(d.CreditorID).OwedToMe += d.Amount
	}

	memberBalances := make([]MemberBalance, 0, len(balances))
	for _, b := range balances {
		b.NetBalance = b.OwedToMe.Sub(b.IOwe)
		memberBalances = append(memberBalances, *b)
	}
	slices.SortFunc(memberBalances, func(a, b MemberBalance) int {
		return cmp.Compare(a.UserID, b.UserID)
	})

	// Create lists of creditors (owed money) and debtors (owe money)
	var creditors, debtors []MemberBalance
	for _, b := range memberBalances {
		switch {
		case b.NetBalance.IsPositive():
			creditors = append(creditors, b)
		case b.NetBalance.IsNegative():
			debtors = append(debtors, b)
		}
	}
	byMagnitude := func(a, b MemberBalance) int {
		if c := cmp.Compare(abs(b.NetBalance), abs(a.NetBalance)); c != 0 {
			return c
		}
		return cmp.Compare(a.UserID, b.UserID)
	}
	slices.SortStableFunc(creditors, byMagnitude)
	slices.SortStableFunc(debtors, byMagnitude)

	var edges []DebtEdge
	debtorLeft := make([]money.Money, len(debtors))
	for k, d := range debtors {
		debtorLeft[k] = d.NetBalance.Neg()
	}
	creditorLeft := make([]money.Money, len(creditors))
	for k, c := range creditors {
		creditorLeft[k] = c.NetBalance
	}

	// Greedy algorithm: match largest debts with largest credits
	i, j := 0, 0
	for i < len(debtors) && j < len(creditors) {
		amount := min(debtorLeft[i], creditorLeft[j])
		if amount.IsPositive() {
			edges = append(edges, DebtEdge{
				From:   debtors[i].UserID,
				To:     creditors[j].UserID,
				Amount: amount,
			})
		}

		debtorLeft[i] -= amount
		creditorLeft[j] -= amount

		if debtorLeft[i] == 0 {
			i++
		}
		if creditorLeft[j] == 0 {
			j++
		}
	}

	slices.SortStableFunc(edges, func(a, b DebtEdge) int {
		return cmp.Compare(b.Amount, a.Amount)
	})

	return memberBalances, edges
}

func abs(m money.Money) money.Money {
	if m.IsNegative() {
		return m.Neg()
	}
	return m
}
