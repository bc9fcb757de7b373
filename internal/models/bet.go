package models

import (
	"time"

	"github.com/mmynk/sidepot/internal/money"
)

// BetStatus is the stored lifecycle state of a bet.
// "Locked" is not a status: it is derived from LockAt at read time.
type BetStatus string

const (
	BetActive   BetStatus = "active"
	BetDisputed BetStatus = "disputed"
	BetSettled  BetStatus = "settled"
)

// BetRule records how the group agreed the bet would be decided.
// It is informational only; resolution is always authorized by the
// owner-or-creator check.
type BetRule string

const (
	RuleUnanimousVote  BetRule = "unanimous_vote"
	RuleCreatorDecides BetRule = "creator_decides"
	RuleGroupVote      BetRule = "group_vote"
)

// Valid reports whether r is a known rule.
func (r BetRule) Valid() bool {
	switch r {
	case RuleUnanimousVote, RuleCreatorDecides, RuleGroupVote:
		return true
	}
	return false
}

// Bet is a proposition members of a group wager on.
type Bet struct {
	// ID is the unique identifier for the bet (UUID format).
	ID string

	// GroupID is the group that owns this bet.
	GroupID string

	Title   string
	Details string

	// LockAt is when pledges stop being accepted (Unix milliseconds).
	LockAt int64

	// ResolveAt is when the bet is expected to be decided (Unix milliseconds).
	// Always after LockAt.
	ResolveAt int64

	Rule   BetRule
	Status BetStatus

	// Outcomes are ordered as the creator listed them.
	Outcomes []Outcome

	// CreatorID is the member who created the bet.
	CreatorID string

	// WinningOutcomeID is set once the bet is settled.
	WinningOutcomeID string

	CreatedAt int64
	SettledAt int64
}

// Outcome is one of a bet's mutually exclusive results.
type Outcome struct {
	ID    string
	Label string

	// Pot is the sum of every wager placed on this outcome.
	Pot money.Money
}

// IsLocked reports whether pledges are closed at the given time.
func (b *Bet) IsLocked(now time.Time) bool {
	return now.UnixMilli() >= b.LockAt
}

// HasOutcome reports whether outcomeID belongs to this bet.
func (b *Bet) HasOutcome(outcomeID string) bool {
	_, ok := b.Outcome(outcomeID)
	return ok
}

// Outcome looks up an outcome by ID.
func (b *Bet) Outcome(outcomeID string) (*Outcome, bool) {
	for i := range b.Outcomes {
		if b.Outcomes[i].ID == outcomeID {
			return &b.Outcomes[i], true
		}
	}
	return nil, false
}

// TotalPot is the sum of all outcome pots.
func (b *Bet) TotalPot() money.Money {
	pots := make([]money.Money, len(b.Outcomes))
	for i, o := range b.Outcomes {
		pots[i] = o.Pot
	}
	return money.Sum(pots...)
}

// Wager is a single stake by one user on one outcome. Immutable once recorded.
type Wager struct {
	ID        string
	BetID     string
	OutcomeID string
	UserID    string
	Amount    money.Money

	// Seq is the 1-based order in which the wager was placed on its bet.
	Seq int64

	CreatedAt int64
}

// Comment is a message posted on a bet.
type Comment struct {
	ID         string
	BetID      string
	UserID     string
	AuthorName string
	Body       string
	CreatedAt  int64
}
