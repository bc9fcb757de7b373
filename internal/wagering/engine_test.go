package wagering

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/mmynk/sidepot/internal/apperr"
	"github.com/mmynk/sidepot/internal/events"
	"github.com/mmynk/sidepot/internal/groups"
	"github.com/mmynk/sidepot/internal/models"
	"github.com/mmynk/sidepot/internal/money"
	"github.com/mmynk/sidepot/internal/storage/sqlstore"
)

type fakeClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.t = c.t.Add(d)
}

type fixture struct {
	engine *Engine
	store  *sqlstore.Store
	clock  *fakeClock
	events *events.Recorder
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	store, err := sqlstore.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "wagering.db"))
	if err != nil {
		t.Fatalf("Failed to create store: %v", err)
	}
	t.Cleanup(func() { store.Close() })

	clock := &fakeClock{t: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
	recorder := &events.Recorder{}
	dir := groups.NewDirectory(store, groups.WithClock(clock.Now))
	engine := New(store, NewGate(dir, store),
		WithClock(clock.Now),
		WithPublisher(recorder),
	)

	return &fixture{engine: engine, store: store, clock: clock, events: recorder}
}

// group creates a group owned by the first member.
func (f *fixture) group(t *testing.T, members ...string) string {
	t.Helper()
	g := &models.Group{Name: "Crew", OwnerID: members[0], MemberIDs: members}
	if err := f.store.CreateGroup(context.Background(), g); err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	return g.ID
}

// bet creates a yes/no bet that locks in an hour.
func (f *fixture) bet(t *testing.T, creator, groupID string) *models.Bet {
	t.Helper()
	now := f.clock.Now()
	bet, err := f.engine.CreateBet(context.Background(), creator, CreateBetParams{
		GroupID:   groupID,
		Title:     "Will it rain?",
		LockAt:    now.Add(time.Hour).UnixMilli(),
		ResolveAt: now.Add(2 * time.Hour).UnixMilli(),
		Outcomes:  []string{"Yes", "No"},
	})
	if err != nil {
		t.Fatalf("CreateBet failed: %v", err)
	}
	return bet
}

func (f *fixture) wager(t *testing.T, actor string, bet *models.Bet, outcome int, dollars int64) *models.Wager {
	t.Helper()
	w, err := f.engine.PlaceWager(context.Background(), actor, bet.ID, bet.Outcomes[outcome].ID, dollars)
	if err != nil {
		t.Fatalf("PlaceWager(%s, %d) failed: %v", actor, dollars, err)
	}
	return w
}

func (f *fixture) debts(t *testing.T, groupID string) []*models.Debt {
	t.Helper()
	debts, err := f.store.ListDebtsByGroup(context.Background(), groupID)
	if err != nil {
		t.Fatalf("ListDebtsByGroup failed: %v", err)
	}
	return debts
}

func (f *fixture) activity(t *testing.T, userID string) []*models.ActivityEntry {
	t.Helper()
	entries, err := f.engine.ListActivity(context.Background(), userID, userID)
	if err != nil {
		t.Fatalf("ListActivity failed: %v", err)
	}
	return entries
}

const (
	yes = 0
	no  = 1
)

func TestSettlementScenarios(t *testing.T) {
	ctx := context.Background()

	t.Run("one winner one loser", func(t *testing.T) {
		f := newFixture(t)
		g := f.group(t, "alice", "bob")
		bet := f.bet(t, "alice", g)
		f.wager(t, "alice", bet, yes, 10)
		f.wager(t, "bob", bet, no, 10)

		f.clock.Advance(time.Minute)
		settled, err := f.engine.ResolveBet(ctx, "alice", bet.ID, bet.Outcomes[yes].ID)
		if err != nil {
			t.Fatalf("ResolveBet failed: %v", err)
		}
		if settled.Status != models.BetSettled || settled.WinningOutcomeID != bet.Outcomes[yes].ID {
			t.Errorf("unexpected bet after resolve: %+v", settled)
		}

		debts := f.debts(t, g)
		if len(debts) != 1 {
			t.Fatalf("expected 1 debt, got %d", len(debts))
		}
		d := debts[0]
		if d.DebtorID != "bob" || d.CreditorID != "alice" || d.Amount != money.FromDollars(10) || d.Status != models.DebtOpen {
			t.Errorf("unexpected debt: %+v", d)
		}

		alice := f.activity(t, "alice")
		if len(alice) != 2 || alice[0].Title != "Bet settled" || alice[0].Delta != money.FromDollars(10) {
			t.Errorf("unexpected alice ledger: %+v", alice)
		}
		if alice[1].Title != "Pledge placed" || alice[1].Detail != "Bet: Will it rain?" || alice[1].Delta != money.FromDollars(-10) {
			t.Errorf("unexpected pledge entry: %+v", alice[1])
		}
		bob := f.activity(t, "bob")
		if bob[0].Title != "Bet settled" || bob[0].Delta != money.FromDollars(-10) {
			t.Errorf("unexpected bob ledger: %+v", bob)
		}
	})

	t.Run("two losers one winner", func(t *testing.T) {
		f := newFixture(t)
		g := f.group(t, "owner", "l1", "l2", "w")
		bet := f.bet(t, "owner", g)
		f.wager(t, "l1", bet, no, 10)
		f.wager(t, "l1", bet, no, 20)
		f.wager(t, "l2", bet, no, 30)
		f.wager(t, "w", bet, yes, 15)

		if _, err := f.engine.ResolveBet(ctx, "owner", bet.ID, bet.Outcomes[yes].ID); err != nil {
			t.Fatalf("ResolveBet failed: %v", err)
		}

		owed := map[string]money.Money{}
		for _, d := range f.debts(t, g) {
			if d.CreditorID != "w" {
				t.Errorf("unexpected creditor %s", d.CreditorID)
			}
			owed[d.DebtorID] = owed[d.DebtorID].Add(d.Amount)
		}
		if owed["l1"] != money.FromDollars(30) || owed["l2"] != money.FromDollars(30) || len(owed) != 2 {
			t.Errorf("unexpected debts: %v", owed)
		}
	})

	t.Run("no winners", func(t *testing.T) {
		f := newFixture(t)
		g := f.group(t, "alice", "bob", "carol")
		bet := f.bet(t, "alice", g)
		f.wager(t, "bob", bet, no, 10)
		f.wager(t, "carol", bet, no, 20)

		f.clock.Advance(time.Minute)
		settled, err := f.engine.ResolveBet(ctx, "alice", bet.ID, bet.Outcomes[yes].ID)
		if err != nil {
			t.Fatalf("ResolveBet failed: %v", err)
		}
		if settled.Status != models.BetSettled {
			t.Errorf("Status = %s, want settled", settled.Status)
		}
		if debts := f.debts(t, g); len(debts) != 0 {
			t.Errorf("expected no debts, got %+v", debts)
		}

		alice := f.activity(t, "alice")
		if len(alice) != 1 || alice[0].Title != "Settled (no winners)" || alice[0].Delta != money.Zero {
			t.Errorf("unexpected resolver ledger: %+v", alice)
		}
		if bob := f.activity(t, "bob"); len(bob) != 1 || bob[0].Title != "Pledge placed" {
			t.Errorf("bob should only have his pledge entry: %+v", bob)
		}
	})

	t.Run("stake is clamped", func(t *testing.T) {
		f := newFixture(t)
		g := f.group(t, "alice")
		bet := f.bet(t, "alice", g)

		tests := []struct {
			dollars int64
			want    money.Money
		}{
			{1000, money.FromDollars(50)},
			{0, money.FromDollars(1)},
			{-5, money.FromDollars(1)},
			{25, money.FromDollars(25)},
		}
		var total money.Money
		for _, tt := range tests {
			w := f.wager(t, "alice", bet, yes, tt.dollars)
			if w.Amount != tt.want {
				t.Errorf("PlaceWager(%d) stored %v, want %v", tt.dollars, w.Amount, tt.want)
			}
			total = total.Add(tt.want)
		}

		got, err := f.store.GetBet(ctx, bet.ID)
		if err != nil {
			t.Fatalf("GetBet failed: %v", err)
		}
		if got.Outcomes[yes].Pot != total {
			t.Errorf("pot = %v, want %v", got.Outcomes[yes].Pot, total)
		}
	})
}

func TestResolveIsIdempotent(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.group(t, "alice", "bob")
	bet := f.bet(t, "alice", g)
	f.wager(t, "alice", bet, yes, 10)
	f.wager(t, "bob", bet, no, 10)

	if _, err := f.engine.ResolveBet(ctx, "alice", bet.ID, bet.Outcomes[yes].ID); err != nil {
		t.Fatalf("ResolveBet failed: %v", err)
	}

	// A retry naming the other outcome changes nothing.
	again, err := f.engine.ResolveBet(ctx, "alice", bet.ID, bet.Outcomes[no].ID)
	if err != nil {
		t.Fatalf("second ResolveBet failed: %v", err)
	}
	if again.WinningOutcomeID != bet.Outcomes[yes].ID {
		t.Errorf("winning outcome changed to %s", again.WinningOutcomeID)
	}
	if debts := f.debts(t, g); len(debts) != 1 {
		t.Errorf("expected 1 debt after retry, got %d", len(debts))
	}
	if n := len(f.events.OfType(events.TypeBetSettled)); n != 1 {
		t.Errorf("published %d settle events, want 1", n)
	}
}

func TestSettledBetLocksAreDropped(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.group(t, "alice", "bob")
	settled := f.bet(t, "alice", g)
	open := f.bet(t, "alice", g)
	f.wager(t, "alice", settled, yes, 10)
	f.wager(t, "bob", open, no, 10)

	if _, err := f.engine.ResolveBet(ctx, "alice", settled.ID, settled.Outcomes[yes].ID); err != nil {
		t.Fatalf("ResolveBet failed: %v", err)
	}
	if _, bets := f.engine.locks.size(); bets != 1 {
		t.Errorf("expected only the open bet's lock, got %d bet locks", bets)
	}

	// Later calls on the settled bet must not bring its entry back.
	if _, err := f.engine.ResolveBet(ctx, "alice", settled.ID, settled.Outcomes[no].ID); err != nil {
		t.Fatalf("repeat ResolveBet failed: %v", err)
	}
	if _, err := f.engine.PlaceWager(ctx, "alice", settled.ID, settled.Outcomes[yes].ID, 5); err == nil {
		t.Error("expected wager on settled bet to fail")
	}
	if _, err := f.engine.ToggleDispute(ctx, "alice", settled.ID); err == nil {
		t.Error("expected dispute on settled bet to fail")
	}

	groups, bets := f.engine.locks.size()
	if groups != 1 || bets != 1 {
		t.Errorf("lock table holds %d groups and %d bets, want 1 and 1", groups, bets)
	}
}

func TestDebtGating(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.group(t, "alice", "bob")
	other := f.group(t, "carol", "bob")

	bet := f.bet(t, "alice", g)
	f.wager(t, "alice", bet, yes, 10)
	f.wager(t, "bob", bet, no, 10)
	if _, err := f.engine.ResolveBet(ctx, "alice", bet.ID, bet.Outcomes[yes].ID); err != nil {
		t.Fatalf("ResolveBet failed: %v", err)
	}

	next := f.bet(t, "alice", g)

	t.Run("debtor cannot wager or create in the group", func(t *testing.T) {
		_, err := f.engine.PlaceWager(ctx, "bob", next.ID, next.Outcomes[yes].ID, 5)
		if !apperr.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
		_, err = f.engine.CreateBet(ctx, "bob", CreateBetParams{
			GroupID: g, LockAt: 1, ResolveAt: 2, Outcomes: []string{"a", "b"},
		})
		if !apperr.IsValidation(err) {
			t.Errorf("expected validation error, got %v", err)
		}
		locked, err := f.engine.LockedOut(ctx, "bob", g)
		if err != nil || !locked {
			t.Errorf("LockedOut = %v, %v; want true", locked, err)
		}
	})

	t.Run("lockout is scoped to the group", func(t *testing.T) {
		elsewhere := f.bet(t, "carol", other)
		if _, err := f.engine.PlaceWager(ctx, "bob", elsewhere.ID, elsewhere.Outcomes[no].ID, 5); err != nil {
			t.Errorf("bob should still wager in another group: %v", err)
		}
		locked, _ := f.engine.LockedOut(ctx, "bob", other)
		if locked {
			t.Error("bob should not be locked out of the other group")
		}
	})

	t.Run("debtor cannot resolve their own debt", func(t *testing.T) {
		d := f.debts(t, g)[0]
		if _, err := f.engine.ResolveDebt(ctx, "bob", d.ID); !errors.Is(err, apperr.ErrForbidden) {
			t.Errorf("expected ErrForbidden, got %v", err)
		}
	})

	t.Run("creditor resolves and the debtor is re-enabled", func(t *testing.T) {
		d := f.debts(t, g)[0]
		resolved, err := f.engine.ResolveDebt(ctx, "alice", d.ID)
		if err != nil {
			t.Fatalf("ResolveDebt failed: %v", err)
		}
		if resolved.Status != models.DebtResolved || resolved.ResolvedAt == 0 {
			t.Errorf("unexpected debt: %+v", resolved)
		}

		if _, err := f.engine.PlaceWager(ctx, "bob", next.ID, next.Outcomes[yes].ID, 5); err != nil {
			t.Errorf("bob should be able to wager again: %v", err)
		}
	})

	t.Run("resolving again is a no-op", func(t *testing.T) {
		d := f.debts(t, g)[0]
		before := d.ResolvedAt
		f.clock.Advance(time.Hour)
		again, err := f.engine.ResolveDebt(ctx, "alice", d.ID)
		if err != nil {
			t.Fatalf("second ResolveDebt failed: %v", err)
		}
		if again.ResolvedAt != before {
			t.Errorf("ResolvedAt moved from %d to %d", before, again.ResolvedAt)
		}
		if n := len(f.events.OfType(events.TypeDebtResolved)); n != 1 {
			t.Errorf("published %d debt events, want 1", n)
		}
	})

	t.Run("unknown debt", func(t *testing.T) {
		if _, err := f.engine.ResolveDebt(ctx, "alice", "missing"); !errors.Is(err, apperr.ErrNotFound) {
			t.Errorf("expected ErrNotFound, got %v", err)
		}
	})
}

func TestPlaceWagerRules(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name    string
		setup   func(t *testing.T, f *fixture, bet *models.Bet)
		actor   string
		outcome func(bet *models.Bet) string
		betID   func(bet *models.Bet) string
		wantErr func(error) bool
	}{
		{
			name:    "unknown bet",
			actor:   "alice",
			betID:   func(*models.Bet) string { return "missing" },
			wantErr: func(err error) bool { return errors.Is(err, apperr.ErrNotFound) },
		},
		{
			name:    "not a member",
			actor:   "mallory",
			wantErr: func(err error) bool { return errors.Is(err, apperr.ErrForbidden) },
		},
		{
			name:    "no actor",
			actor:   "",
			wantErr: func(err error) bool { return errors.Is(err, apperr.ErrNotSignedIn) },
		},
		{
			name:    "outcome from another bet",
			actor:   "alice",
			outcome: func(*models.Bet) string { return "not-an-outcome" },
			wantErr: apperr.IsValidation,
		},
		{
			name: "locked at exactly lock time",
			setup: func(t *testing.T, f *fixture, bet *models.Bet) {
				f.clock.Advance(time.Hour)
			},
			actor:   "alice",
			wantErr: apperr.IsValidation,
		},
		{
			name: "disputed",
			setup: func(t *testing.T, f *fixture, bet *models.Bet) {
				if _, err := f.engine.ToggleDispute(ctx, "alice", bet.ID); err != nil {
					t.Fatalf("ToggleDispute failed: %v", err)
				}
			},
			actor:   "bob",
			wantErr: apperr.IsValidation,
		},
		{
			name: "settled",
			setup: func(t *testing.T, f *fixture, bet *models.Bet) {
				if _, err := f.engine.ResolveBet(ctx, "alice", bet.ID, bet.Outcomes[yes].ID); err != nil {
					t.Fatalf("ResolveBet failed: %v", err)
				}
			},
			actor:   "bob",
			wantErr: apperr.IsValidation,
		},
		{
			name:    "accepted",
			actor:   "bob",
			wantErr: func(err error) bool { return err == nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			g := f.group(t, "alice", "bob")
			bet := f.bet(t, "alice", g)
			if tt.setup != nil {
				tt.setup(t, f, bet)
			}

			betID, outcomeID := bet.ID, bet.Outcomes[yes].ID
			if tt.betID != nil {
				betID = tt.betID(bet)
			}
			if tt.outcome != nil {
				outcomeID = tt.outcome(bet)
			}

			_, err := f.engine.PlaceWager(ctx, tt.actor, betID, outcomeID, 10)
			if !tt.wantErr(err) {
				t.Errorf("unexpected error: %v", err)
			}
			if err != nil {
				got, gerr := f.store.GetBet(ctx, bet.ID)
				if gerr != nil {
					t.Fatalf("GetBet failed: %v", gerr)
				}
				if got.TotalPot() != money.Zero {
					t.Errorf("rejected wager changed the pot to %v", got.TotalPot())
				}
			}
		})
	}
}

func TestCreateBet(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := f.group(t, "alice", "bob")

	t.Run("normalizes outcomes and fills defaults", func(t *testing.T) {
		bet, err := f.engine.CreateBet(ctx, "bob", CreateBetParams{
			GroupID:   g,
			Title:     "  ",
			LockAt:    100,
			ResolveAt: 200,
			Outcomes:  []string{" Yes ", "", "yes", "No", "NO", "Maybe"},
		})
		if err != nil {
			t.Fatalf("CreateBet failed: %v", err)
		}
		var labels []string
		for _, o := range bet.Outcomes {
			labels = append(labels, o.Label)
		}
		if len(labels) != 3 || labels[0] != "Yes" || labels[1] != "No" || labels[2] != "Maybe" {
			t.Errorf("outcomes = %v, want [Yes No Maybe]", labels)
		}
		if bet.Title != "Untitled Bet" || bet.Details != "No description." {
			t.Errorf("defaults not applied: %q %q", bet.Title, bet.Details)
		}
		if bet.Rule != models.RuleCreatorDecides || bet.Status != models.BetActive || bet.CreatorID != "bob" {
			t.Errorf("unexpected bet: %+v", bet)
		}
	})

	tests := []struct {
		name    string
		actor   string
		params  CreateBetParams
		wantErr func(error) bool
	}{
		{
			name:    "one distinct outcome",
			actor:   "alice",
			params:  CreateBetParams{GroupID: g, LockAt: 1, ResolveAt: 2, Outcomes: []string{"Yes", "YES", " "}},
			wantErr: apperr.IsValidation,
		},
		{
			name:    "resolve before lock",
			actor:   "alice",
			params:  CreateBetParams{GroupID: g, LockAt: 2, ResolveAt: 2, Outcomes: []string{"a", "b"}},
			wantErr: apperr.IsValidation,
		},
		{
			name:    "unknown rule",
			actor:   "alice",
			params:  CreateBetParams{GroupID: g, LockAt: 1, ResolveAt: 2, Rule: "coin_flip", Outcomes: []string{"a", "b"}},
			wantErr: apperr.IsValidation,
		},
		{
			name:    "not a member",
			actor:   "mallory",
			params:  CreateBetParams{GroupID: g, LockAt: 1, ResolveAt: 2, Outcomes: []string{"a", "b"}},
			wantErr: func(err error) bool { return errors.Is(err, apperr.ErrForbidden) },
		},
		{
			name:    "unknown group",
			actor:   "alice",
			params:  CreateBetParams{GroupID: "missing", LockAt: 1, ResolveAt: 2, Outcomes: []string{"a", "b"}},
			wantErr: func(err error) bool { return errors.Is(err, apperr.ErrNotFound) },
		},
		{
			name:    "recorded rule",
			actor:   "alice",
			params:  CreateBetParams{GroupID: g, LockAt: 1, ResolveAt: 2, Rule: models.RuleGroupVote, Outcomes: []string{"a", "b"}},
			wantErr: func(err error) bool { return err == nil },
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.engine.CreateBet(ctx, tt.actor, tt.params)
			if !tt.wantErr(err) {
				t.Errorf("unexpected error: %v", err)
			}
		})
	}
}

func TestResolvePermissionsAndDisputes(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t)
	g := f.group(t, "owner", "creator", "member")
	bet := f.bet(t, "creator", g)
	f.wager(t, "member", bet, yes, 5)

	if _, err := f.engine.ResolveBet(ctx, "member", bet.ID, bet.Outcomes[yes].ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("plain member resolve: expected ErrForbidden, got %v", err)
	}
	if _, err := f.engine.ToggleDispute(ctx, "member", bet.ID); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("plain member dispute: expected ErrForbidden, got %v", err)
	}

	disputed, err := f.engine.ToggleDispute(ctx, "owner", bet.ID)
	if err != nil || disputed.Status != models.BetDisputed {
		t.Fatalf("ToggleDispute = %+v, %v", disputed, err)
	}
	if _, err := f.engine.ResolveBet(ctx, "creator", bet.ID, bet.Outcomes[yes].ID); !apperr.IsValidation(err) {
		t.Errorf("resolving a disputed bet: expected validation error, got %v", err)
	}

	active, err := f.engine.ToggleDispute(ctx, "creator", bet.ID)
	if err != nil || active.Status != models.BetActive {
		t.Fatalf("ToggleDispute back = %+v, %v", active, err)
	}
	if _, err := f.engine.ResolveBet(ctx, "creator", bet.ID, "bogus"); !apperr.IsValidation(err) {
		t.Errorf("invalid outcome: expected validation error, got %v", err)
	}
	if _, err := f.engine.ResolveBet(ctx, "creator", bet.ID, bet.Outcomes[no].ID); err != nil {
		t.Fatalf("creator resolve failed: %v", err)
	}
	if _, err := f.engine.ToggleDispute(ctx, "owner", bet.ID); !apperr.IsValidation(err) {
		t.Errorf("disputing a settled bet: expected validation error, got %v", err)
	}
	if _, err := f.engine.ResolveBet(ctx, "owner", "missing", "x"); !errors.Is(err, apperr.ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
}

func TestActivityIsPrivate(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	if _, err := f.engine.ListActivity(ctx, "alice", "bob"); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
	if _, err := f.engine.ListActivity(ctx, "", "bob"); !errors.Is(err, apperr.ErrNotSignedIn) {
		t.Errorf("expected ErrNotSignedIn, got %v", err)
	}
}

func TestGroupBalances(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.group(t, "alice", "bob", "carol")

	bet := f.bet(t, "alice", g)
	f.wager(t, "alice", bet, yes, 10)
	f.wager(t, "bob", bet, no, 6)
	f.wager(t, "carol", bet, no, 4)
	if _, err := f.engine.ResolveBet(ctx, "alice", bet.ID, bet.Outcomes[yes].ID); err != nil {
		t.Fatalf("ResolveBet failed: %v", err)
	}

	balances, edges, err := f.engine.GroupBalances(ctx, "carol", g)
	if err != nil {
		t.Fatalf("GroupBalances failed: %v", err)
	}
	net := map[string]money.Money{}
	for _, b := range balances {
		net[b.UserID] = b.NetBalance
	}
	if net["alice"] != money.FromDollars(10) || net["bob"] != money.FromDollars(-6) || net["carol"] != money.FromDollars(-4) {
		t.Errorf("unexpected balances: %v", net)
	}
	if len(edges) != 2 {
		t.Errorf("expected 2 suggested payments, got %+v", edges)
	}

	if _, _, err := f.engine.GroupBalances(ctx, "mallory", g); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}
}

func TestComments(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.group(t, "alice", "bob")
	bet := f.bet(t, "alice", g)

	if _, err := f.engine.AddComment(ctx, "bob", bet.ID, "  "); !apperr.IsValidation(err) {
		t.Errorf("expected validation error, got %v", err)
	}
	if _, err := f.engine.AddComment(ctx, "mallory", bet.ID, "hi"); !errors.Is(err, apperr.ErrForbidden) {
		t.Errorf("expected ErrForbidden, got %v", err)
	}

	if _, err := f.engine.AddComment(ctx, "bob", bet.ID, " it will pour "); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}
	f.clock.Advance(time.Second)
	if _, err := f.engine.AddComment(ctx, "alice", bet.ID, "no chance"); err != nil {
		t.Fatalf("AddComment failed: %v", err)
	}

	comments, err := f.engine.ListComments(ctx, "alice", bet.ID)
	if err != nil {
		t.Fatalf("ListComments failed: %v", err)
	}
	if len(comments) != 2 || comments[0].Body != "it will pour" || comments[1].UserID != "alice" {
		t.Errorf("unexpected comments: %+v", comments)
	}
}

func TestEventsPublishedAfterCommit(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.group(t, "alice", "bob")
	bet := f.bet(t, "alice", g)
	f.wager(t, "alice", bet, yes, 10)
	f.wager(t, "bob", bet, no, 10)
	if _, err := f.engine.ResolveBet(ctx, "alice", bet.ID, bet.Outcomes[yes].ID); err != nil {
		t.Fatalf("ResolveBet failed: %v", err)
	}

	placed := f.events.OfType(events.TypeWagerPlaced)
	if len(placed) != 2 {
		t.Fatalf("expected 2 wager events, got %d", len(placed))
	}
	first, ok := placed[0].Data.(events.WagerPlaced)
	if !ok || first.Seq != 1 || first.StakeCents != 1000 || placed[0].Key != g {
		t.Errorf("unexpected wager event: %+v", placed[0])
	}

	settled := f.events.OfType(events.TypeBetSettled)
	if len(settled) != 1 {
		t.Fatalf("expected 1 settle event, got %d", len(settled))
	}
	if data := settled[0].Data.(events.BetSettled); data.DebtCount != 1 || data.TotalPotCents != 2000 {
		t.Errorf("unexpected settle event: %+v", data)
	}
}

func TestConcurrentWagersAndResolve(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.group(t, "owner", "y1", "y2", "n1", "n2")
	bet := f.bet(t, "owner", g)

	sides := map[string]int{"y1": yes, "y2": yes, "n1": no, "n2": no}
	const perUser = 20

	var wg sync.WaitGroup
	errs := make(chan error, len(sides)*perUser+1)
	for user, outcome := range sides {
		wg.Add(1)
		go func(user string, outcome int) {
			defer wg.Done()
			for i := 0; i < perUser; i++ {
				_, err := f.engine.PlaceWager(ctx, user, bet.ID, bet.Outcomes[outcome].ID, int64(i%MaxStakeDollars)+1)
				if err != nil && !apperr.IsValidation(err) {
					errs <- err
				}
			}
		}(user, outcome)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		if _, err := f.engine.ResolveBet(ctx, "owner", bet.ID, bet.Outcomes[yes].ID); err != nil {
			errs <- err
		}
	}()
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Errorf("unexpected error: %v", err)
	}

	settled, wagers, err := f.engine.GetBet(ctx, "owner", bet.ID)
	if err != nil {
		t.Fatalf("GetBet failed: %v", err)
	}
	if settled.Status != models.BetSettled {
		t.Fatalf("Status = %s, want settled", settled.Status)
	}

	pots := map[string]money.Money{}
	for i, w := range wagers {
		if w.Seq != int64(i+1) {
			t.Errorf("wager %d has seq %d", i, w.Seq)
		}
		pots[w.OutcomeID] = pots[w.OutcomeID].Add(w.Amount)
	}
	for _, o := range settled.Outcomes {
		if o.Pot != pots[o.ID] {
			t.Errorf("outcome %s pot = %v, wagers sum to %v", o.Label, o.Pot, pots[o.ID])
		}
	}

	// Winners and losers never hedge here, so the debts cover the losing
	// pot exactly, or nothing at all when nobody backed the winner.
	var owed money.Money
	for _, d := range f.debts(t, g) {
		owed = owed.Add(d.Amount)
	}
	want := settled.Outcomes[no].Pot
	if !settled.Outcomes[yes].Pot.IsPositive() {
		want = money.Zero
	}
	if owed != want {
		t.Errorf("debts total %v, want %v", owed, want)
	}
}

func TestConcurrentResolveSettlesOnce(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.group(t, "owner", "alice", "bob")
	bet := f.bet(t, "owner", g)
	f.wager(t, "alice", bet, yes, 10)
	f.wager(t, "bob", bet, no, 10)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			if _, err := f.engine.ResolveBet(ctx, "owner", bet.ID, bet.Outcomes[i%2].ID); err != nil {
				t.Errorf("ResolveBet failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	if n := len(f.events.OfType(events.TypeBetSettled)); n != 1 {
		t.Errorf("settled %d times, want 1", n)
	}
	if debts := f.debts(t, g); len(debts) != 1 {
		t.Errorf("expected 1 debt, got %d", len(debts))
	}
}

type failingSettleStore struct {
	Store
	err error
}

func (s *failingSettleStore) SettleBet(context.Context, *models.Settlement) error {
	return s.err
}

func TestResolveFailureLeavesBetActive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	g := f.group(t, "alice", "bob")
	bet := f.bet(t, "alice", g)
	f.wager(t, "alice", bet, yes, 10)
	f.wager(t, "bob", bet, no, 10)

	diskErr := errors.New("disk full")
	dir := groups.NewDirectory(f.store, groups.WithClock(f.clock.Now))
	broken := New(&failingSettleStore{Store: f.store, err: diskErr}, NewGate(dir, f.store),
		WithClock(f.clock.Now),
		WithPublisher(f.events),
	)

	if _, err := broken.ResolveBet(ctx, "alice", bet.ID, bet.Outcomes[yes].ID); !errors.Is(err, diskErr) {
		t.Fatalf("expected disk error, got %v", err)
	}
	if n := len(f.events.OfType(events.TypeBetSettled)); n != 0 {
		t.Errorf("published %d settle events for a failed commit", n)
	}

	got, err := f.store.GetBet(ctx, bet.ID)
	if err != nil {
		t.Fatalf("GetBet failed: %v", err)
	}
	if got.Status != models.BetActive {
		t.Errorf("Status = %s, want active", got.Status)
	}

	if _, err := f.engine.ResolveBet(ctx, "alice", bet.ID, bet.Outcomes[yes].ID); err != nil {
		t.Fatalf("retry failed: %v", err)
	}
	if debts := f.debts(t, g); len(debts) != 1 {
		t.Errorf("expected 1 debt after retry, got %d", len(debts))
	}
}
