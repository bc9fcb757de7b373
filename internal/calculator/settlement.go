package calculator

import (
	"sort"

	"github.com/mmynk/sidepot/internal/money"
)

// Stake is the minimal view of a wager needed to settle a bet.
// Stakes must be passed in the order they were placed.
type Stake struct {
	UserID    string
	OutcomeID string
	Amount    money.Money
}

// Position is one participant's result for a settled bet.
type Position struct {
	UserID string
	Staked money.Money
	Payout money.Money
	Net    money.Money // Payout - Staked
}

// Transfer is a debt generated by settlement: From owes To Amount.
type Transfer struct {
	From   string
	To     string
	Amount money.Money
}

// SettlementResult is the outcome of Settle.
type SettlementResult struct {
	TotalPot         money.Money
	TotalWinnerStake money.Money

	// Dust is what floor division left unpaid. It is not owed to or by anyone.
	Dust money.Money

	// NoWinners is true when nobody staked on the winning outcome.
	// Positions and Transfers are empty in that case.
	NoWinners bool

	// Positions lists every participant in first-pledge order.
	Positions []Position

	// Transfers lists debts grouped by loser, losers in first-pledge order.
	Transfers []Transfer
}

// Settle computes payouts, net positions and the debts that losers owe
// winners when winningOutcomeID wins.
//
// Algorithm:
//   - payout per winning stake = floor(totalPot * stake / totalWinnerStake)
//   - net per user = total payout - total staked (across all outcomes)
//   - each loser's shortfall is split across winners in proportion to their
//     net gain; winners are ordered by net descending and the last one
//     absorbs the rounding remainder, so every loser's debts sum exactly to
//     what they lost
func Settle(stakes []Stake, winningOutcomeID string) SettlementResult {
	var res SettlementResult

	// First-pledge order keeps tie-breaks deterministic.
	var order []string
	seen := make(map[string]bool)
	stakeByUser := make(map[string]money.Money)

	for _, s := range stakes {
		res.TotalPot = res.TotalPot.Add(s.Amount)
		stakeByUser[s.UserID] = stakeByUser[s.UserID].Add(s.Amount)
		if s.OutcomeID == winningOutcomeID {
			res.TotalWinnerStake = res.TotalWinnerStake.Add(s.Amount)
		}
		if !seen[s.UserID] {
			seen[s.UserID] = true
			order = append(order, s.UserID)
		}
	}

	if res.TotalWinnerStake == 0 {
		res.NoWinners = true
		return res
	}

	payoutByUser := make(map[string]money.Money)
	var paid money.Money
	for _, s := range stakes {
		if s.OutcomeID != winningOutcomeID {
			continue
		}
		payout := res.TotalPot.MulDiv(s.Amount.Cents(), res.TotalWinnerStake.Cents())
		payoutByUser[s.UserID] = payoutByUser[s.UserID].Add(payout)
		paid = paid.Add(payout)
	}
	res.Dust = res.TotalPot.Sub(paid)

	var winners, losers []Position
	var totalWinnerNet money.Money
	for _, userID := range order {
		p := Position{
			UserID: userID,
			Staked: stakeByUser[userID],
			Payout: payoutByUser[userID],
		}
		p.Net = p.Payout.Sub(p.Staked)
		res.Positions = append(res.Positions, p)

		switch {
		case p.Net.IsPositive():
			winners = append(winners, p)
			totalWinnerNet = totalWinnerNet.Add(p.Net)
		case p.Net.IsNegative():
			losers = append(losers, p)
		}
	}

	if totalWinnerNet == 0 {
		return res
	}

	sort.SliceStable(winners, func(i, j int) bool {
		return winners[i].Net > winners[j].Net
	})

	for _, loser := range losers {
		res.Transfers = append(res.Transfers, distribute(loser, winners, totalWinnerNet)...)
	}

	return res
}

// distribute splits what one loser owes across the sorted winners.
func distribute(loser Position, winners []Position, totalWinnerNet money.Money) []Transfer {
	owed := loser.Net.Neg()
	remaining := owed
	var out []Transfer

	for i, w := range winners {
		if remaining <= 0 {
			break
		}

		var share money.Money
		if i == len(winners)-1 {
			share = remaining
		} else {
			share = owed.MulDiv(w.Net.Cents(), totalWinnerNet.Cents())
			if share == 0 && owed.IsPositive() && w.Net.IsPositive() {
				share = 1
			}
			share = min(share, remaining)
		}

		if share > 0 {
			out = append(out, Transfer{From: loser.UserID, To: w.UserID, Amount: share})
		}
		remaining = remaining.Sub(share)
	}

	return out
}
