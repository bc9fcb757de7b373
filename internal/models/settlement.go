package models

import "github.com/mmynk/sidepot/internal/money"

// DebtStatus is the state of a debt. Transitions only open -> resolved.
type DebtStatus string

const (
	DebtOpen     DebtStatus = "open"
	DebtResolved DebtStatus = "resolved"
)

// Debt is a virtual obligation created when a bet settles: the debtor lost
// and owes the creditor part of what they lost.
type Debt struct {
	// ID is the unique identifier for the debt (UUID format).
	ID string

	// GroupID is the group the originating bet belongs to.
	GroupID string

	// BetID is the bet whose settlement created this debt.
	BetID string

	// DebtorID is the user who owes.
	DebtorID string

	// CreditorID is the user who is owed.
	CreditorID string

	// Amount is always positive.
	Amount money.Money

	Status DebtStatus

	CreatedAt int64

	// ResolvedAt is zero while the debt is open.
	ResolvedAt int64
}

// ActivityEntry is an append-only record of one balance change for a user.
type ActivityEntry struct {
	ID        string
	UserID    string
	CreatedAt int64
	Title     string
	Detail    string

	// Delta is negative for stakes and losses, positive for gains.
	Delta money.Money
}

// Settlement is everything that must be written when a bet resolves.
// It is committed as a single unit.
type Settlement struct {
	BetID            string
	WinningOutcomeID string
	SettledAt        int64

	Debts   []Debt
	Entries []ActivityEntry
}
