package apiconnect

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/sidepot/pkg/api"
)

// BetServiceName is the fully-qualified name of the BetService.
const BetServiceName = "sidepot.v1.BetService"

// Procedure paths of the BetService.
const (
	BetServiceCreateBetProcedure     = "/" + BetServiceName + "/CreateBet"
	BetServiceGetBetProcedure        = "/" + BetServiceName + "/GetBet"
	BetServiceListBetsProcedure      = "/" + BetServiceName + "/ListBets"
	BetServicePlaceWagerProcedure    = "/" + BetServiceName + "/PlaceWager"
	BetServiceResolveBetProcedure    = "/" + BetServiceName + "/ResolveBet"
	BetServiceToggleDisputeProcedure = "/" + BetServiceName + "/ToggleDispute"
	BetServiceAddCommentProcedure    = "/" + BetServiceName + "/AddComment"
	BetServiceListCommentsProcedure  = "/" + BetServiceName + "/ListComments"
)

// BetServiceHandler is implemented by the server. BetService manages bets, wagers, settlement and comments.
type BetServiceHandler interface {
	CreateBet(context.Context, *connect.Request[api.CreateBetRequest]) (*connect.Response[api.CreateBetResponse], error)
	GetBet(context.Context, *connect.Request[api.GetBetRequest]) (*connect.Response[api.GetBetResponse], error)
	ListBets(context.Context, *connect.Request[api.ListBetsRequest]) (*connect.Response[api.ListBetsResponse], error)
	PlaceWager(context.Context, *connect.Request[api.PlaceWagerRequest]) (*connect.Response[api.PlaceWagerResponse], error)
	ResolveBet(context.Context, *connect.Request[api.ResolveBetRequest]) (*connect.Response[api.ResolveBetResponse], error)
	ToggleDispute(context.Context, *connect.Request[api.ToggleDisputeRequest]) (*connect.Response[api.ToggleDisputeResponse], error)
	AddComment(context.Context, *connect.Request[api.AddCommentRequest]) (*connect.Response[api.AddCommentResponse], error)
	ListComments(context.Context, *connect.Request[api.ListCommentsRequest]) (*connect.Response[api.ListCommentsResponse], error)
}

// NewBetServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewBetServiceHandler(svc BetServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	createBetHandler := connect.NewUnaryHandler(BetServiceCreateBetProcedure, svc.CreateBet, opts...)
	getBetHandler := connect.NewUnaryHandler(BetServiceGetBetProcedure, svc.GetBet, opts...)
	listBetsHandler := connect.NewUnaryHandler(BetServiceListBetsProcedure, svc.ListBets, opts...)
	placeWagerHandler := connect.NewUnaryHandler(BetServicePlaceWagerProcedure, svc.PlaceWager, opts...)
	resolveBetHandler := connect.NewUnaryHandler(BetServiceResolveBetProcedure, svc.ResolveBet, opts...)
	toggleDisputeHandler := connect.NewUnaryHandler(BetServiceToggleDisputeProcedure, svc.ToggleDispute, opts...)
	addCommentHandler := connect.NewUnaryHandler(BetServiceAddCommentProcedure, svc.AddComment, opts...)
	listCommentsHandler := connect.NewUnaryHandler(BetServiceListCommentsProcedure, svc.ListComments, opts...)
	return "/" + BetServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case BetServiceCreateBetProcedure:
			createBetHandler.ServeHTTP(w, r)
		case BetServiceGetBetProcedure:
			getBetHandler.ServeHTTP(w, r)
		case BetServiceListBetsProcedure:
			listBetsHandler.ServeHTTP(w, r)
		case BetServicePlaceWagerProcedure:
			placeWagerHandler.ServeHTTP(w, r)
		case BetServiceResolveBetProcedure:
			resolveBetHandler.ServeHTTP(w, r)
		case BetServiceToggleDisputeProcedure:
			toggleDisputeHandler.ServeHTTP(w, r)
		case BetServiceAddCommentProcedure:
			addCommentHandler.ServeHTTP(w, r)
		case BetServiceListCommentsProcedure:
			listCommentsHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedBetServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedBetServiceHandler struct{}

func (UnimplementedBetServiceHandler) CreateBet(context.Context, *connect.Request[api.CreateBetRequest]) (*connect.Response[api.CreateBetResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("sidepot.v1.BetService.CreateBet is not implemented"))
}

func (UnimplementedBetServiceHandler) GetBet(context.Context, *connect.Request[api.GetBetRequest]) (*connect.Response[api.GetBetResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("sidepot.v1.BetService.GetBet is not implemented"))
}

func (UnimplementedBetServiceHandler) ListBets(context.Context, *connect.Request[api.ListBetsRequest]) (*connect.Response[api.ListBetsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("sidepot.v1.BetService.ListBets is not implemented"))
}

func (UnimplementedBetServiceHandler) PlaceWager(context.Context, *connect.Request[api.PlaceWagerRequest]) (*connect.Response[api.PlaceWagerResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("sidepot.v1.BetService.PlaceWager is not implemented"))
}

func (UnimplementedBetServiceHandler) ResolveBet(context.Context, *connect.Request[api.ResolveBetRequest]) (*connect.Response[api.ResolveBetResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("sidepot.v1.BetService.ResolveBet is not implemented"))
}

func (UnimplementedBetServiceHandler) ToggleDispute(context.Context, *connect.Request[api.ToggleDisputeRequest]) (*connect.Response[api.ToggleDisputeResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("sidepot.v1.BetService.ToggleDispute is not implemented"))
}

func (UnimplementedBetServiceHandler) AddComment(context.Context, *connect.Request[api.AddCommentRequest]) (*connect.Response[api.AddCommentResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("sidepot.v1.BetService.AddComment is not implemented"))
}

func (UnimplementedBetServiceHandler) ListComments(context.Context, *connect.Request[api.ListCommentsRequest]) (*connect.Response[api.ListCommentsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("sidepot.v1.BetService.ListComments is not implemented"))
}

// BetServiceClient is a client for the BetService.
type BetServiceClient interface {
	CreateBet(context.Context, *connect.Request[api.CreateBetRequest]) (*connect.Response[api.CreateBetResponse], error)
	GetBet(context.Context, *connect.Request[api.GetBetRequest]) (*connect.Response[api.GetBetResponse], error)
	ListBets(context.Context, *connect.Request[api.ListBetsRequest]) (*connect.Response[api.ListBetsResponse], error)
	PlaceWager(context.Context, *connect.Request[api.PlaceWagerRequest]) (*connect.Response[api.PlaceWagerResponse], error)
	ResolveBet(context.Context, *connect.Request[api.ResolveBetRequest]) (*connect.Response[api.ResolveBetResponse], error)
	ToggleDispute(context.Context, *connect.Request[api.ToggleDisputeRequest]) (*connect.Response[api.ToggleDisputeResponse], error)
	AddComment(context.Context, *connect.Request[api.AddCommentRequest]) (*connect.Response[api.AddCommentResponse], error)
	ListComments(context.Context, *connect.Request[api.ListCommentsRequest]) (*connect.Response[api.ListCommentsResponse], error)
}

// NewBetServiceClient constructs a client for the BetService. baseURL is the
// server root, e.g. http://localhost:8080.
func NewBetServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) BetServiceClient {
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &betServiceClient{
		createBet:     connect.NewClient[api.CreateBetRequest, api.CreateBetResponse](httpClient, baseURL+BetServiceCreateBetProcedure, opts...),
		getBet:        connect.NewClient[api.GetBetRequest, api.GetBetResponse](httpClient, baseURL+BetServiceGetBetProcedure, opts...),
		listBets:      connect.NewClient[api.ListBetsRequest, api.ListBetsResponse](httpClient, baseURL+BetServiceListBetsProcedure, opts...),
		placeWager:    connect.NewClient[api.PlaceWagerRequest, api.PlaceWagerResponse](httpClient, baseURL+BetServicePlaceWagerProcedure, opts...),
		resolveBet:    connect.NewClient[api.ResolveBetRequest, api.ResolveBetResponse](httpClient, baseURL+BetServiceResolveBetProcedure, opts...),
		toggleDispute: connect.NewClient[api.ToggleDisputeRequest, api.ToggleDisputeResponse](httpClient, baseURL+BetServiceToggleDisputeProcedure, opts...),
		addComment:    connect.NewClient[api.AddCommentRequest, api.AddCommentResponse](httpClient, baseURL+BetServiceAddCommentProcedure, opts...),
		listComments:  connect.NewClient[api.ListCommentsRequest, api.ListCommentsResponse](httpClient, baseURL+BetServiceListCommentsProcedure, opts...),
	}
}

type betServiceClient struct {
	createBet     *connect.Client[api.CreateBetRequest, api.CreateBetResponse]
	getBet        *connect.Client[api.GetBetRequest, api.GetBetResponse]
	listBets      *connect.Client[api.ListBetsRequest, api.ListBetsResponse]
	placeWager    *connect.Client[api.PlaceWagerRequest, api.PlaceWagerResponse]
	resolveBet    *connect.Client[api.ResolveBetRequest, api.ResolveBetResponse]
	toggleDispute *connect.Client[api.ToggleDisputeRequest, api.ToggleDisputeResponse]
	addComment    *connect.Client[api.AddCommentRequest, api.AddCommentResponse]
	listComments  *connect.Client[api.ListCommentsRequest, api.ListCommentsResponse]
}

func (c *betServiceClient) CreateBet(ctx context.Context, req *connect.Request[api.CreateBetRequest]) (*connect.Response[api.CreateBetResponse], error) {
	return c.createBet.CallUnary(ctx, req)
}

func (c *betServiceClient) GetBet(ctx context.Context, req *connect.Request[api.GetBetRequest]) (*connect.Response[api.GetBetResponse], error) {
	return c.getBet.CallUnary(ctx, req)
}

func (c *betServiceClient) ListBets(ctx context.Context, req *connect.Request[api.ListBetsRequest]) (*connect.Response[api.ListBetsResponse], error) {
	return c.listBets.CallUnary(ctx, req)
}

func (c *betServiceClient) PlaceWager(ctx context.Context, req *connect.Request[api.PlaceWagerRequest]) (*connect.Response[api.PlaceWagerResponse], error) {
	return c.placeWager.CallUnary(ctx, req)
}

func (c *betServiceClient) ResolveBet(ctx context.Context, req *connect.Request[api.ResolveBetRequest]) (*connect.Response[api.ResolveBetResponse], error) {
	return c.resolveBet.CallUnary(ctx, req)
}

func (c *betServiceClient) ToggleDispute(ctx context.Context, req *connect.Request[api.ToggleDisputeRequest]) (*connect.Response[api.ToggleDisputeResponse], error) {
	return c.toggleDispute.CallUnary(ctx, req)
}

func (c *betServiceClient) AddComment(ctx context.Context, req *connect.Request[api.AddCommentRequest]) (*connect.Response[api.AddCommentResponse], error) {
	return c.addComment.CallUnary(ctx, req)
}

func (c *betServiceClient) ListComments(ctx context.Context, req *connect.Request[api.ListCommentsRequest]) (*connect.Response[api.ListCommentsResponse], error) {
	return c.listComments.CallUnary(ctx, req)
}
