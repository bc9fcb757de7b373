package calculator

import (
	"math/rand"
	"testing"

	"github.com/mmynk/sidepot/internal/money"
)

func dollars(d int64) money.Money { return money.FromDollars(d) }

func findPosition(t *testing.T, res SettlementResult, userID string) Position {
	t.Helper()
	for _, p := range res.Positions {
		if p.UserID == userID {
			return p
		}
	}
	t.Fatalf("no position for %s", userID)
	return Position{}
}

func owedByLoser(transfers []Transfer) map[string]money.Money {
	out := make(map[string]money.Money)
	for _, tr := range transfers {
		out[tr.From] = out[tr.From].Add(tr.Amount)
	}
	return out
}

func TestSettle(t *testing.T) {
	tests := []struct {
		name          string
		stakes        []Stake
		winner        string
		wantTransfers []Transfer
		wantNet       map[string]money.Money
		wantDust      money.Money
		wantNoWinners bool
	}{
		{
			name: "two members opposite sides",
			stakes: []Stake{
				{UserID: "alice", OutcomeID: "yes", Amount: dollars(10)},
				{UserID: "bob", OutcomeID: "no", Amount: dollars(10)},
			},
			winner: "yes",
			wantTransfers: []Transfer{
				{From: "bob", To: "alice", Amount: dollars(10)},
			},
			wantNet: map[string]money.Money{"alice": dollars(10), "bob": dollars(-10)},
		},
		{
			name: "two losers one winner",
			stakes: []Stake{
				{UserID: "carol", OutcomeID: "no", Amount: dollars(10)},
				{UserID: "carol", OutcomeID: "no", Amount: dollars(20)},
				{UserID: "dave", OutcomeID: "no", Amount: dollars(30)},
				{UserID: "erin", OutcomeID: "yes", Amount: dollars(15)},
			},
			winner: "yes",
			wantTransfers: []Transfer{
				{From: "carol", To: "erin", Amount: dollars(30)},
				{From: "dave", To: "erin", Amount: dollars(30)},
			},
			wantNet: map[string]money.Money{
				"carol": dollars(-30),
				"dave":  dollars(-30),
				"erin":  dollars(60),
			},
		},
		{
			name: "nobody picked the winner",
			stakes: []Stake{
				{UserID: "alice", OutcomeID: "no", Amount: dollars(10)},
				{UserID: "bob", OutcomeID: "maybe", Amount: dollars(5)},
			},
			winner:        "yes",
			wantNoWinners: true,
		},
		{
			name:          "no stakes at all",
			winner:        "yes",
			wantNoWinners: true,
		},
		{
			name: "floor dust stays unallocated and last winner absorbs remainder",
			stakes: []Stake{
				{UserID: "w1", OutcomeID: "yes", Amount: money.Cents(100)},
				{UserID: "w2", OutcomeID: "yes", Amount: money.Cents(100)},
				{UserID: "w3", OutcomeID: "yes", Amount: money.Cents(100)},
				{UserID: "l1", OutcomeID: "no", Amount: money.Cents(100)},
			},
			winner: "yes",
			wantTransfers: []Transfer{
				{From: "l1", To: "w1", Amount: money.Cents(33)},
				{From: "l1", To: "w2", Amount: money.Cents(33)},
				{From: "l1", To: "w3", Amount: money.Cents(34)},
			},
			wantNet: map[string]money.Money{
				"w1": money.Cents(33),
				"w2": money.Cents(33),
				"w3": money.Cents(33),
				"l1": money.Cents(-100),
			},
			wantDust: money.Cents(1),
		},
		{
			name: "tiny share is bumped to one cent",
			stakes: []Stake{
				{UserID: "w1", OutcomeID: "yes", Amount: money.Cents(900)},
				{UserID: "w2", OutcomeID: "yes", Amount: money.Cents(100)},
				{UserID: "l1", OutcomeID: "no", Amount: money.Cents(1)},
				{UserID: "l2", OutcomeID: "no", Amount: money.Cents(999)},
			},
			winner: "yes",
			wantTransfers: []Transfer{
				{From: "l1", To: "w1", Amount: money.Cents(1)},
				{From: "l2", To: "w1", Amount: money.Cents(899)},
				{From: "l2", To: "w2", Amount: money.Cents(100)},
			},
			wantNet: map[string]money.Money{
				"w1": money.Cents(900),
				"w2": money.Cents(100),
				"l1": money.Cents(-1),
				"l2": money.Cents(-999),
			},
		},
		{
			name: "equal winners keep first-pledge order",
			stakes: []Stake{
				{UserID: "w1", OutcomeID: "yes", Amount: money.Cents(100)},
				{UserID: "w2", OutcomeID: "yes", Amount: money.Cents(100)},
				{UserID: "l1", OutcomeID: "no", Amount: money.Cents(101)},
			},
			winner: "yes",
			wantTransfers: []Transfer{
				{From: "l1", To: "w1", Amount: money.Cents(50)},
				{From: "l1", To: "w2", Amount: money.Cents(51)},
			},
			wantNet: map[string]money.Money{
				"w1": money.Cents(50),
				"w2": money.Cents(50),
				"l1": money.Cents(-101),
			},
			wantDust: money.Cents(1),
		},
		{
			name: "hedged user nets stakes across outcomes",
			stakes: []Stake{
				{UserID: "hedger", OutcomeID: "yes", Amount: dollars(5)},
				{UserID: "hedger", OutcomeID: "no", Amount: dollars(5)},
				{UserID: "vic", OutcomeID: "no", Amount: dollars(10)},
			},
			winner: "yes",
			wantTransfers: []Transfer{
				{From: "vic", To: "hedger", Amount: dollars(10)},
			},
			wantNet: map[string]money.Money{
				"hedger": dollars(10),
				"vic":    dollars(-10),
			},
		},
		{
			name: "rounding can leave a lone loser with nobody to pay",
			stakes: []Stake{
				{UserID: "cam", OutcomeID: "x", Amount: dollars(43)},
				{UserID: "cam", OutcomeID: "x", Amount: dollars(17)},
				{UserID: "cam", OutcomeID: "y", Amount: dollars(43)},
			},
			winner:   "x",
			wantNet:  map[string]money.Money{"cam": money.Cents(-1)},
			wantDust: money.Cents(1),
		},
		{
			name: "everyone on the winning side produces no debts",
			stakes: []Stake{
				{UserID: "alice", OutcomeID: "yes", Amount: dollars(10)},
				{UserID: "bob", OutcomeID: "yes", Amount: dollars(10)},
			},
			winner: "yes",
			wantNet: map[string]money.Money{
				"alice": money.Zero,
				"bob":   money.Zero,
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			res := Settle(tt.stakes, tt.winner)

			if res.NoWinners != tt.wantNoWinners {
				t.Fatalf("NoWinners = %v, want %v", res.NoWinners, tt.wantNoWinners)
			}
			if res.Dust != tt.wantDust {
				t.Errorf("Dust = %v, want %v", res.Dust, tt.wantDust)
			}
			if len(res.Transfers) != len(tt.wantTransfers) {
				t.Fatalf("transfers: got %d (%+v), want %d", len(res.Transfers), res.Transfers, len(tt.wantTransfers))
			}
			for i, want := range tt.wantTransfers {
				if res.Transfers[i] != want {
					t.Errorf("transfer %d = %+v, want %+v", i, res.Transfers[i], want)
				}
			}
			for userID, want := range tt.wantNet {
				if got := findPosition(t, res, userID).Net; got != want {
					t.Errorf("%s net = %v, want %v", userID, got, want)
				}
			}
		})
	}
}

func TestSettleNoWinnersHasNoPositions(t *testing.T) {
	res := Settle([]Stake{{UserID: "alice", OutcomeID: "no", Amount: dollars(10)}}, "yes")
	if len(res.Positions) != 0 || len(res.Transfers) != 0 {
		t.Errorf("expected no positions or transfers, got %+v", res)
	}
	if res.TotalPot != dollars(10) {
		t.Errorf("TotalPot = %v, want $10.00", res.TotalPot)
	}
}

// TestSettleConservation checks, over many generated bets, that each loser's
// debts sum exactly to what they lost and that only floor dust goes missing.
func TestSettleConservation(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	users := []string{"a", "b", "c", "d", "e", "f", "g"}
	outcomes := []string{"x", "y", "z"}

	for round := 0; round < 500; round++ {
		var stakes []Stake
		n := 1 + rng.Intn(12)
		for i := 0; i < n; i++ {
			stakes = append(stakes, Stake{
				UserID:    users[rng.Intn(len(users))],
				OutcomeID: outcomes[rng.Intn(len(outcomes))],
				Amount:    dollars(int64(1 + rng.Intn(50))),
			})
		}
		winner := outcomes[rng.Intn(len(outcomes))]
		res := Settle(stakes, winner)

		if res.NoWinners {
			continue
		}

		nets := make([]money.Money, 0, len(res.Positions))
		var gains []money.Money
		for _, p := range res.Positions {
			nets = append(nets, p.Net)
			if p.Net.IsPositive() {
				gains = append(gains, p.Net)
			}
		}
		if netSum := money.Sum(nets...); netSum != res.Dust.Neg() {
			t.Fatalf("round %d: sum of nets %v, want %v", round, netSum, res.Dust.Neg())
		}

		// Floor rounding can wipe out every gain; then nobody is owed anything.
		totalWinnerNet := money.Sum(gains...)
		if totalWinnerNet == 0 {
			if len(res.Transfers) != 0 {
				t.Fatalf("round %d: transfers without any winner gain: %+v", round, res.Transfers)
			}
			continue
		}

		owed := owedByLoser(res.Transfers)
		for _, p := range res.Positions {
			if !p.Net.IsNegative() {
				if owed[p.UserID] != 0 {
					t.Fatalf("round %d: non-loser %s owes %v", round, p.UserID, owed[p.UserID])
				}
				continue
			}
			if owed[p.UserID] != p.Net.Neg() {
				t.Fatalf("round %d: %s owes %v in debts, lost %v", round, p.UserID, owed[p.UserID], p.Net.Neg())
			}
		}

		for _, tr := range res.Transfers {
			if !tr.Amount.IsPositive() {
				t.Fatalf("round %d: non-positive transfer %+v", round, tr)
			}
			if tr.From == tr.To {
				t.Fatalf("round %d: self transfer %+v", round, tr)
			}
		}
	}
}
