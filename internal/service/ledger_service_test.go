package service

import (
	"context"
	"errors"
	"testing"

	"connectrpc.com/connect"

	pb "github.com/mmynk/sidepot/pkg/api"
)

func TestDebtLockout(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	alice := c.register(t, "alice")
	bob := c.register(t, "bob")
	groupID := c.groupWith(t, alice, bob)

	bet := createBet(t, c, alice, groupID)
	placeWager(t, c, alice, bet, 0, 10)
	placeWager(t, c, bob, bet, 1, 10)
	if _, err := c.bets.ResolveBet(ctx, as(alice, &pb.ResolveBetRequest{BetId: bet.Id, WinningOutcomeId: bet.Outcomes[0].Id})); err != nil {
		t.Fatalf("ResolveBet failed: %v", err)
	}

	debts, err := c.ledger.ListDebts(ctx, as(bob, &pb.ListDebtsRequest{GroupId: groupID}))
	if err != nil {
		t.Fatalf("ListDebts failed: %v", err)
	}
	if len(debts.Msg.Debts) != 1 {
		t.Fatalf("expected 1 debt, got %d", len(debts.Msg.Debts))
	}
	debt := debts.Msg.Debts[0]
	if debt.DebtorId != bob.userID || debt.CreditorId != alice.userID || debt.AmountCents != 1000 || debt.Status != "open" {
		t.Errorf("unexpected debt: %+v", debt)
	}

	lockout, err := c.ledger.GetLockout(ctx, as(bob, &pb.GetLockoutRequest{GroupId: groupID}))
	if err != nil || !lockout.Msg.LockedOut {
		t.Fatalf("GetLockout = %+v, %v; want locked out", lockout, err)
	}

	next := createBet(t, c, alice, groupID)
	_, err = c.bets.PlaceWager(ctx, as(bob, &pb.PlaceWagerRequest{BetId: next.Id, OutcomeId: next.Outcomes[0].Id, Dollars: 5}))
	assertCode(t, err, connect.CodeInvalidArgument)
	var connectErr *connect.Error
	if errors.As(err, &connectErr) && connectErr.Message() != "Resolve your debt in this group first." {
		t.Errorf("message = %q", connectErr.Message())
	}

	balances, err := c.ledger.GetGroupBalances(ctx, as(alice, &pb.GetGroupBalancesRequest{GroupId: groupID}))
	if err != nil {
		t.Fatalf("GetGroupBalances failed: %v", err)
	}
	if len(balances.Msg.Payments) != 1 || balances.Msg.Payments[0].FromUserId != bob.userID {
		t.Errorf("unexpected payments: %+v", balances.Msg.Payments)
	}

	_, err = c.ledger.ResolveDebt(ctx, as(bob, &pb.ResolveDebtRequest{DebtId: debt.Id}))
	assertCode(t, err, connect.CodePermissionDenied)

	resolved, err := c.ledger.ResolveDebt(ctx, as(alice, &pb.ResolveDebtRequest{DebtId: debt.Id}))
	if err != nil {
		t.Fatalf("ResolveDebt failed: %v", err)
	}
	if resolved.Msg.Debt.Status != "resolved" || resolved.Msg.Debt.ResolvedAt == 0 {
		t.Errorf("unexpected resolved debt: %+v", resolved.Msg.Debt)
	}

	lockout, err = c.ledger.GetLockout(ctx, as(bob, &pb.GetLockoutRequest{GroupId: groupID}))
	if err != nil || lockout.Msg.LockedOut {
		t.Fatalf("GetLockout = %+v, %v; want unlocked", lockout, err)
	}
	placeWager(t, c, bob, next, 0, 5)
}

func TestListActivity(t *testing.T) {
	c := setupTestServer(t)
	ctx := context.Background()
	alice := c.register(t, "alice")
	bob := c.register(t, "bob")
	groupID := c.groupWith(t, alice)
	bet := createBet(t, c, alice, groupID)
	placeWager(t, c, alice, bet, 0, 7)

	resp, err := c.ledger.ListActivity(ctx, as(alice, &pb.ListActivityRequest{}))
	if err != nil {
		t.Fatalf("ListActivity failed: %v", err)
	}
	if len(resp.Msg.Entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(resp.Msg.Entries))
	}
	e := resp.Msg.Entries[0]
	if e.Title != "Pledge placed" || e.Detail != "Bet: Will it rain?" || e.DeltaCents != -700 {
		t.Errorf("unexpected entry: %+v", e)
	}

	_, err = c.ledger.ListActivity(ctx, as(bob, &pb.ListActivityRequest{UserId: alice.userID}))
	assertCode(t, err, connect.CodePermissionDenied)
}
