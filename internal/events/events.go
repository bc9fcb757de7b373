// Package events publishes domain events after state changes commit.
// Publishing is best-effort: a failure is logged by the caller and never
// undoes the change it describes.
package events

import (
	"context"
	"sync"
)

// Event types.
const (
	TypeWagerPlaced  = "wager.placed"
	TypeBetSettled   = "bet.settled"
	TypeDebtResolved = "debt.resolved"
)

// Envelope wraps an event payload with its type and time.
type Envelope struct {
	Type     string `json:"type"`
	TsUnixMs int64  `json:"ts_unix_ms"`
	Data     any    `json:"data"`

	// Key partitions the stream; events for the same group stay ordered.
	Key string `json:"-"`
}

// WagerPlaced is emitted after a wager commits.
type WagerPlaced struct {
	WagerID    string `json:"wager_id"`
	BetID      string `json:"bet_id"`
	GroupID    string `json:"group_id"`
	OutcomeID  string `json:"outcome_id"`
	UserID     string `json:"user_id"`
	StakeCents int64  `json:"stake_cents"`
	Seq        int64  `json:"seq"`
}

// BetSettled is emitted after a settlement commits.
type BetSettled struct {
	BetID            string `json:"bet_id"`
	GroupID          string `json:"group_id"`
	WinningOutcomeID string `json:"winning_outcome_id"`
	ResolvedBy       string `json:"resolved_by"`
	NoWinners        bool   `json:"no_winners"`
	TotalPotCents    int64  `json:"total_pot_cents"`
	DustCents        int64  `json:"dust_cents"`
	DebtCount        int    `json:"debt_count"`
}

// DebtResolved is emitted after a debt moves to resolved.
type DebtResolved struct {
	DebtID      string `json:"debt_id"`
	GroupID     string `json:"group_id"`
	DebtorID    string `json:"debtor_id"`
	CreditorID  string `json:"creditor_id"`
	AmountCents int64  `json:"amount_cents"`
	ResolvedBy  string `json:"resolved_by"`
}

// Publisher delivers envelopes to a broker.
type Publisher interface {
	Publish(ctx context.Context, e Envelope) error
	Close() error
}

// Nop discards every event.
type Nop struct{}

func (Nop) Publish(context.Context, Envelope) error { return nil }
func (Nop) Close() error                            { return nil }

// Recorder keeps published events in memory.
type Recorder struct {
	mu     sync.Mutex
	events []Envelope
}

func (r *Recorder) Publish(_ context.Context, e Envelope) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, e)
	return nil
}

func (r *Recorder) Close() error { return nil }

// Events returns a copy of everything published so far.
func (r *Recorder) Events() []Envelope {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]Envelope(nil), r.events...)
}

// OfType returns the recorded events with the given type.
func (r *Recorder) OfType(eventType string) []Envelope {
	var out []Envelope
	for _, e := range r.Events() {
		if e.Type == eventType {
			out = append(out, e)
		}
	}
	return out
}
