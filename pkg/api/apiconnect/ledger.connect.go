package apiconnect

import (
	"context"
	"errors"
	"net/http"

	"connectrpc.com/connect"

	"github.com/mmynk/sidepot/pkg/api"
)

// LedgerServiceName is the fully-qualified name of the LedgerService.
const LedgerServiceName = "sidepot.v1.LedgerService"

// Procedure paths of the LedgerService.
const (
	LedgerServiceListDebtsProcedure        = "/" + LedgerServiceName + "/ListDebts"
	LedgerServiceResolveDebtProcedure      = "/" + LedgerServiceName + "/ResolveDebt"
	LedgerServiceGetGroupBalancesProcedure = "/" + LedgerServiceName + "/GetGroupBalances"
	LedgerServiceListActivityProcedure     = "/" + LedgerServiceName + "/ListActivity"
	LedgerServiceGetLockoutProcedure       = "/" + LedgerServiceName + "/GetLockout"
)

// LedgerServiceHandler is implemented by the server. LedgerService exposes debts, balances and the activity ledger.
type LedgerServiceHandler interface {
	ListDebts(context.Context, *connect.Request[api.ListDebtsRequest]) (*connect.Response[api.ListDebtsResponse], error)
	ResolveDebt(context.Context, *connect.Request[api.ResolveDebtRequest]) (*connect.Response[api.ResolveDebtResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
	ListActivity(context.Context, *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error)
	GetLockout(context.Context, *connect.Request[api.GetLockoutRequest]) (*connect.Response[api.GetLockoutResponse], error)
}

// NewLedgerServiceHandler builds an HTTP handler from the service implementation.
// It returns the path on which to mount the handler and the handler itself.
func NewLedgerServiceHandler(svc LedgerServiceHandler, opts ...connect.HandlerOption) (string, http.Handler) {
	opts = append([]connect.HandlerOption{WithJSON()}, opts...)
	listDebtsHandler := connect.NewUnaryHandler(LedgerServiceListDebtsProcedure, svc.ListDebts, opts...)
	resolveDebtHandler := connect.NewUnaryHandler(LedgerServiceResolveDebtProcedure, svc.ResolveDebt, opts...)
	getGroupBalancesHandler := connect.NewUnaryHandler(LedgerServiceGetGroupBalancesProcedure, svc.GetGroupBalances, opts...)
	listActivityHandler := connect.NewUnaryHandler(LedgerServiceListActivityProcedure, svc.ListActivity, opts...)
	getLockoutHandler := connect.NewUnaryHandler(LedgerServiceGetLockoutProcedure, svc.GetLockout, opts...)
	return "/" + LedgerServiceName + "/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case LedgerServiceListDebtsProcedure:
			listDebtsHandler.ServeHTTP(w, r)
		case LedgerServiceResolveDebtProcedure:
			resolveDebtHandler.ServeHTTP(w, r)
		case LedgerServiceGetGroupBalancesProcedure:
			getGroupBalancesHandler.ServeHTTP(w, r)
		case LedgerServiceListActivityProcedure:
			listActivityHandler.ServeHTTP(w, r)
		case LedgerServiceGetLockoutProcedure:
			getLockoutHandler.ServeHTTP(w, r)
		default:
			http.NotFound(w, r)
		}
	})
}

// UnimplementedLedgerServiceHandler returns CodeUnimplemented from all methods.
type UnimplementedLedgerServiceHandler struct{}

func (UnimplementedLedgerServiceHandler) ListDebts(context.Context, *connect.Request[api.ListDebtsRequest]) (*connect.Response[api.ListDebtsResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("sidepot.v1.LedgerService.ListDebts is not implemented"))
}

func (UnimplementedLedgerServiceHandler) ResolveDebt(context.Context, *connect.Request[api.ResolveDebtRequest]) (*connect.Response[api.ResolveDebtResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("sidepot.v1.LedgerService.ResolveDebt is not implemented"))
}

func (UnimplementedLedgerServiceHandler) GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("sidepot.v1.LedgerService.GetGroupBalances is not implemented"))
}

func (UnimplementedLedgerServiceHandler) ListActivity(context.Context, *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("sidepot.v1.LedgerService.ListActivity is not implemented"))
}

func (UnimplementedLedgerServiceHandler) GetLockout(context.Context, *connect.Request[api.GetLockoutRequest]) (*connect.Response[api.GetLockoutResponse], error) {
	return nil, connect.NewError(connect.CodeUnimplemented, errors.New("sidepot.v1.LedgerService.GetLockout is not implemented"))
}

// LedgerServiceClient is a client for the LedgerService.
type LedgerServiceClient interface {
	ListDebts(context.Context, *connect.Request[api.ListDebtsRequest]) (*connect.Response[api.ListDebtsResponse], error)
	ResolveDebt(context.Context, *connect.Request[api.ResolveDebtRequest]) (*connect.Response[api.ResolveDebtResponse], error)
	GetGroupBalances(context.Context, *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error)
	ListActivity(context.Context, *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error)
	GetLockout(context.Context, *connect.Request[api.GetLockoutRequest]) (*connect.Response[api.GetLockoutResponse], error)
}

// NewLedgerServiceClient constructs a client for the LedgerService. baseURL is the
// server root, e.g. http://localhost:8080.
func NewLedgerServiceClient(httpClient connect.HTTPClient, baseURL string, opts ...connect.ClientOption) LedgerServiceClient {
	opts = append([]connect.ClientOption{WithJSON()}, opts...)
	return &ledgerServiceClient{
		listDebts:        connect.NewClient[api.ListDebtsRequest, api.ListDebtsResponse](httpClient, baseURL+LedgerServiceListDebtsProcedure, opts...),
		resolveDebt:      connect.NewClient[api.ResolveDebtRequest, api.ResolveDebtResponse](httpClient, baseURL+LedgerServiceResolveDebtProcedure, opts...),
		getGroupBalances: connect.NewClient[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse](httpClient, baseURL+LedgerServiceGetGroupBalancesProcedure, opts...),
		listActivity:     connect.NewClient[api.ListActivityRequest, api.ListActivityResponse](httpClient, baseURL+LedgerServiceListActivityProcedure, opts...),
		getLockout:       connect.NewClient[api.GetLockoutRequest, api.GetLockoutResponse](httpClient, baseURL+LedgerServiceGetLockoutProcedure, opts...),
	}
}

type ledgerServiceClient struct {
	listDebts        *connect.Client[api.ListDebtsRequest, api.ListDebtsResponse]
	resolveDebt      *connect.Client[api.ResolveDebtRequest, api.ResolveDebtResponse]
	getGroupBalances *connect.Client[api.GetGroupBalancesRequest, api.GetGroupBalancesResponse]
	listActivity     *connect.Client[api.ListActivityRequest, api.ListActivityResponse]
	getLockout       *connect.Client[api.GetLockoutRequest, api.GetLockoutResponse]
}

func (c *ledgerServiceClient) ListDebts(ctx context.Context, req *connect.Request[api.ListDebtsRequest]) (*connect.Response[api.ListDebtsResponse], error) {
	return c.listDebts.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ResolveDebt(ctx context.Context, req *connect.Request[api.ResolveDebtRequest]) (*connect.Response[api.ResolveDebtResponse], error) {
	return c.resolveDebt.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetGroupBalances(ctx context.Context, req *connect.Request[api.GetGroupBalancesRequest]) (*connect.Response[api.GetGroupBalancesResponse], error) {
	return c.getGroupBalances.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) ListActivity(ctx context.Context, req *connect.Request[api.ListActivityRequest]) (*connect.Response[api.ListActivityResponse], error) {
	return c.listActivity.CallUnary(ctx, req)
}

func (c *ledgerServiceClient) GetLockout(ctx context.Context, req *connect.Request[api.GetLockoutRequest]) (*connect.Response[api.GetLockoutResponse], error) {
	return c.getLockout.CallUnary(ctx, req)
}
