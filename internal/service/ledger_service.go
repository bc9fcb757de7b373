package service

import (
	"context"
	"log/slog"

	"connectrpc.com/connect"

	"github.com/mmynk/sidepot/internal/middleware"
	"github.com/mmynk/sidepot/internal/wagering"
	pb "github.com/mmynk/sidepot/pkg/api"
	"github.com/mmynk/sidepot/pkg/api/apiconnect"
)

// LedgerService implements the Connect LedgerService: debts, balances and
// the per-user activity ledger.
type LedgerService struct {
	apiconnect.UnimplementedLedgerServiceHandler
	engine *wagering.Engine
	logger *slog.Logger
}

// NewLedgerService creates a LedgerService over the wagering engine.
func NewLedgerService(engine *wagering.Engine, logger *slog.Logger) *LedgerService {
	return &LedgerService{engine: engine, logger: logger}
}

// ListDebts returns every debt in a group, newest first.
func (s *LedgerService) ListDebts(ctx context.Context, req *connect.Request[pb.ListDebtsRequest]) (*connect.Response[pb.ListDebtsResponse], error) {
	debts, err := s.engine.ListDebts(ctx, middleware.GetUserID(ctx), req.Msg.GroupId)
	if err != nil {
		s.logger.Warn("ListDebts failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*pb.Debt, len(debts))
	for i, d := range debts {
		out[i] = debtToAPI(d)
	}
	return connect.NewResponse(&pb.ListDebtsResponse{Debts: out}), nil
}

// ResolveDebt marks a debt paid.
func (s *LedgerService) ResolveDebt(ctx context.Context, req *connect.Request[pb.ResolveDebtRequest]) (*connect.Response[pb.ResolveDebtResponse], error) {
	s.logger.Info("ResolveDebt request received", "debt_id", req.Msg.DebtId)

	debt, err := s.engine.ResolveDebt(ctx, middleware.GetUserID(ctx), req.Msg.DebtId)
	if err != nil {
		s.logger.Warn("ResolveDebt failed", "debt_id", req.Msg.DebtId, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&pb.ResolveDebtResponse{Debt: debtToAPI(debt)}), nil
}

// GetGroupBalances returns net open-debt positions and suggested payments.
func (s *LedgerService) GetGroupBalances(ctx context.Context, req *connect.Request[pb.GetGroupBalancesRequest]) (*connect.Response[pb.GetGroupBalancesResponse], error) {
	balances, edges, err := s.engine.GroupBalances(ctx, middleware.GetUserID(ctx), req.Msg.GroupId)
	if err != nil {
		s.logger.Warn("GetGroupBalances failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, toConnectError(err)
	}

	resp := &pb.GetGroupBalancesResponse{
		Balances: make([]*pb.MemberBalance, len(balances)),
		Payments: make([]*pb.Payment, len(edges)),
	}
	for i, b := range balances {
		resp.Balances[i] = balanceToAPI(b)
	}
	for i, e := range edges {
		resp.Payments[i] = paymentToAPI(e)
	}
	return connect.NewResponse(resp), nil
}

// ListActivity returns the caller's ledger entries, newest first.
func (s *LedgerService) ListActivity(ctx context.Context, req *connect.Request[pb.ListActivityRequest]) (*connect.Response[pb.ListActivityResponse], error) {
	entries, err := s.engine.ListActivity(ctx, middleware.GetUserID(ctx), req.Msg.UserId)
	if err != nil {
		s.logger.Warn("ListActivity failed", "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*pb.ActivityEntry, len(entries))
	for i, e := range entries {
		out[i] = activityToAPI(e)
	}
	return connect.NewResponse(&pb.ListActivityResponse{Entries: out}), nil
}

// GetLockout reports whether the caller's open debts bar them from betting
// in a group.
func (s *LedgerService) GetLockout(ctx context.Context, req *connect.Request[pb.GetLockoutRequest]) (*connect.Response[pb.GetLockoutResponse], error) {
	locked, err := s.engine.LockedOut(ctx, middleware.GetUserID(ctx), req.Msg.GroupId)
	if err != nil {
		s.logger.Warn("GetLockout failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&pb.GetLockoutResponse{LockedOut: locked}), nil
}
