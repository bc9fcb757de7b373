package service

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/sidepot/internal/middleware"
	"github.com/mmynk/sidepot/internal/models"
	"github.com/mmynk/sidepot/internal/storage"
	"github.com/mmynk/sidepot/internal/wagering"
	pb "github.com/mmynk/sidepot/pkg/api"
	"github.com/mmynk/sidepot/pkg/api/apiconnect"
)

// BetService implements the Connect BetService.
type BetService struct {
	apiconnect.UnimplementedBetServiceHandler
	engine *wagering.Engine
	users  storage.UserStore
	logger *slog.Logger
	now    func() time.Time
}

// NewBetService creates a BetService over the wagering engine.
func NewBetService(engine *wagering.Engine, users storage.UserStore, logger *slog.Logger) *BetService {
	return &BetService{engine: engine, users: users, logger: logger, now: time.Now}
}

// CreateBet creates a bet in one of the caller's groups.
func (s *BetService) CreateBet(ctx context.Context, req *connect.Request[pb.CreateBetRequest]) (*connect.Response[pb.CreateBetResponse], error) {
	s.logger.Info("CreateBet request received",
		"group_id", req.Msg.GroupId,
		"title", req.Msg.Title,
		"outcomes_count", len(req.Msg.Outcomes),
	)

	bet, err := s.engine.CreateBet(ctx, middleware.GetUserID(ctx), wagering.CreateBetParams{
		GroupID:   req.Msg.GroupId,
		Title:     req.Msg.Title,
		Details:   req.Msg.Details,
		LockAt:    req.Msg.LockAt,
		ResolveAt: req.Msg.ResolveAt,
		Rule:      models.BetRule(req.Msg.Rule),
		Outcomes:  req.Msg.Outcomes,
	})
	if err != nil {
		s.logger.Warn("CreateBet failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&pb.CreateBetResponse{Bet: betToAPI(bet, s.now())}), nil
}

// GetBet returns a bet with its wagers in placement order.
func (s *BetService) GetBet(ctx context.Context, req *connect.Request[pb.GetBetRequest]) (*connect.Response[pb.GetBetResponse], error) {
	bet, wagers, err := s.engine.GetBet(ctx, middleware.GetUserID(ctx), req.Msg.BetId)
	if err != nil {
		s.logger.Warn("GetBet failed", "bet_id", req.Msg.BetId, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*pb.Wager, len(wagers))
	for i, w := range wagers {
		out[i] = wagerToAPI(w)
	}
	return connect.NewResponse(&pb.GetBetResponse{
		Bet:    betToAPI(bet, s.now()),
		Wagers: out,
	}), nil
}

// ListBets returns a group's bets ordered by lock time.
func (s *BetService) ListBets(ctx context.Context, req *connect.Request[pb.ListBetsRequest]) (*connect.Response[pb.ListBetsResponse], error) {
	bets, err := s.engine.ListBets(ctx, middleware.GetUserID(ctx), req.Msg.GroupId)
	if err != nil {
		s.logger.Warn("ListBets failed", "group_id", req.Msg.GroupId, "error", err)
		return nil, toConnectError(err)
	}

	now := s.now()
	out := make([]*pb.Bet, len(bets))
	for i, b := range bets {
		out[i] = betToAPI(b, now)
	}
	return connect.NewResponse(&pb.ListBetsResponse{Bets: out}), nil
}

// PlaceWager stakes the caller's dollars on an outcome.
func (s *BetService) PlaceWager(ctx context.Context, req *connect.Request[pb.PlaceWagerRequest]) (*connect.Response[pb.PlaceWagerResponse], error) {
	s.logger.Info("PlaceWager request received",
		"bet_id", req.Msg.BetId,
		"outcome_id", req.Msg.OutcomeId,
		"dollars", req.Msg.Dollars,
	)

	wager, err := s.engine.PlaceWager(ctx, middleware.GetUserID(ctx), req.Msg.BetId, req.Msg.OutcomeId, req.Msg.Dollars)
	if err != nil {
		s.logger.Warn("PlaceWager failed", "bet_id", req.Msg.BetId, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&pb.PlaceWagerResponse{Wager: wagerToAPI(wager)}), nil
}

// ResolveBet settles a bet. Resolving a settled bet returns it unchanged.
func (s *BetService) ResolveBet(ctx context.Context, req *connect.Request[pb.ResolveBetRequest]) (*connect.Response[pb.ResolveBetResponse], error) {
	s.logger.Info("ResolveBet request received",
		"bet_id", req.Msg.BetId,
		"winning_outcome_id", req.Msg.WinningOutcomeId,
	)

	bet, err := s.engine.ResolveBet(ctx, middleware.GetUserID(ctx), req.Msg.BetId, req.Msg.WinningOutcomeId)
	if err != nil {
		s.logger.Warn("ResolveBet failed", "bet_id", req.Msg.BetId, "error", err)
		return nil, toConnectError(err)
	}

	return connect.NewResponse(&pb.ResolveBetResponse{Bet: betToAPI(bet, s.now())}), nil
}

// ToggleDispute flips a bet between active and disputed.
func (s *BetService) ToggleDispute(ctx context.Context, req *connect.Request[pb.ToggleDisputeRequest]) (*connect.Response[pb.ToggleDisputeResponse], error) {
	bet, err := s.engine.ToggleDispute(ctx, middleware.GetUserID(ctx), req.Msg.BetId)
	if err != nil {
		s.logger.Warn("ToggleDispute failed", "bet_id", req.Msg.BetId, "error", err)
		return nil, toConnectError(err)
	}
	return connect.NewResponse(&pb.ToggleDisputeResponse{Bet: betToAPI(bet, s.now())}), nil
}

// AddComment posts a comment on a bet.
func (s *BetService) AddComment(ctx context.Context, req *connect.Request[pb.AddCommentRequest]) (*connect.Response[pb.AddCommentResponse], error) {
	actor := middleware.GetUserID(ctx)
	comment, err := s.engine.AddComment(ctx, actor, req.Msg.BetId, req.Msg.Body)
	if err != nil {
		s.logger.Warn("AddComment failed", "bet_id", req.Msg.BetId, "error", err)
		return nil, toConnectError(err)
	}

	if user, err := s.users.GetUserByID(ctx, actor); err == nil {
		comment.AuthorName = user.DisplayName
	}
	return connect.NewResponse(&pb.AddCommentResponse{Comment: commentToAPI(comment)}), nil
}

// ListComments returns a bet's comments oldest first.
func (s *BetService) ListComments(ctx context.Context, req *connect.Request[pb.ListCommentsRequest]) (*connect.Response[pb.ListCommentsResponse], error) {
	comments, err := s.engine.ListComments(ctx, middleware.GetUserID(ctx), req.Msg.BetId)
	if err != nil {
		s.logger.Warn("ListComments failed", "bet_id", req.Msg.BetId, "error", err)
		return nil, toConnectError(err)
	}

	out := make([]*pb.Comment, len(comments))
	for i, c := range comments {
		out[i] = commentToAPI(c)
	}
	return connect.NewResponse(&pb.ListCommentsResponse{Comments: out}), nil
}
