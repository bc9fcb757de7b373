package service

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/sidepot/internal/auth"
	"github.com/mmynk/sidepot/internal/events"
	"github.com/mmynk/sidepot/internal/groups"
	"github.com/mmynk/sidepot/internal/metrics"
	"github.com/mmynk/sidepot/internal/middleware"
	"github.com/mmynk/sidepot/internal/storage/sqlstore"
	"github.com/mmynk/sidepot/internal/wagering"
	pb "github.com/mmynk/sidepot/pkg/api"
	"github.com/mmynk/sidepot/pkg/api/apiconnect"
)

type testClients struct {
	auth   apiconnect.AuthServiceClient
	groups apiconnect.GroupServiceClient
	bets   apiconnect.BetServiceClient
	ledger apiconnect.LedgerServiceClient
	events *events.Recorder
}

// setupTestServer wires every service the way cmd/server does, over a
// temp-file SQLite store.
func setupTestServer(t *testing.T) *testClients {
	t.Helper()

	store, err := sqlstore.Open(context.Background(), "sqlite", filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	m := metrics.Discard()
	recorder := &events.Recorder{}

	jwtManager := auth.NewJWTManager("test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store, auth.WithCost(bcrypt.MinCost))
	dir := groups.NewDirectory(store, groups.WithLogger(logger))
	engine := wagering.New(store, wagering.NewGate(dir, store),
		wagering.WithLogger(logger),
		wagering.WithMetrics(m),
		wagering.WithPublisher(recorder),
	)

	public := connect.WithInterceptors(middleware.OptionalAuth(jwtManager), middleware.LoggingInterceptor(logger, m))
	private := connect.WithInterceptors(middleware.RequireAuth(jwtManager), middleware.LoggingInterceptor(logger, m))

	mux := http.NewServeMux()
	mux.Handle(apiconnect.NewAuthServiceHandler(NewAuthService(authenticator, jwtManager, store, logger), public))
	mux.Handle(apiconnect.NewGroupServiceHandler(NewGroupService(dir, store, logger), private))
	mux.Handle(apiconnect.NewBetServiceHandler(NewBetService(engine, store, logger), private))
	mux.Handle(apiconnect.NewLedgerServiceHandler(NewLedgerService(engine, logger), private))

	server := httptest.NewServer(mux)
	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return &testClients{
		auth:   apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		groups: apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL),
		bets:   apiconnect.NewBetServiceClient(http.DefaultClient, server.URL),
		ledger: apiconnect.NewLedgerServiceClient(http.DefaultClient, server.URL),
		events: recorder,
	}
}

type session struct {
	userID string
	token  string
}

func (c *testClients) register(t *testing.T, username string) session {
	t.Helper()
	resp, err := c.auth.Register(context.Background(), connect.NewRequest(&pb.RegisterRequest{
		Username:    username,
		DisplayName: "User " + username,
		Password:    "password",
	}))
	if err != nil {
		t.Fatalf("Register(%s) failed: %v", username, err)
	}
	return session{userID: resp.Msg.User.Id, token: resp.Msg.Token}
}

// as builds a request authenticated as s.
func as[T any](s session, msg *T) *connect.Request[T] {
	req := connect.NewRequest(msg)
	req.Header().Set("Authorization", "Bearer "+s.token)
	return req
}

// groupWith creates a group owned by owner and joins every other session
// through an invite.
func (c *testClients) groupWith(t *testing.T, owner session, others ...session) string {
	t.Helper()
	ctx := context.Background()

	g, err := c.groups.CreateGroup(ctx, as(owner, &pb.CreateGroupRequest{Name: "Crew"}))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	groupID := g.Msg.Group.Id

	for _, s := range others {
		inv, err := c.groups.CreateInvite(ctx, as(owner, &pb.CreateInviteRequest{GroupId: groupID}))
		if err != nil {
			t.Fatalf("CreateInvite failed: %v", err)
		}
		if _, err := c.groups.AcceptInvite(ctx, as(s, &pb.AcceptInviteRequest{Code: inv.Msg.Invite.Code})); err != nil {
			t.Fatalf("AcceptInvite failed: %v", err)
		}
	}
	return groupID
}

func assertCode(t *testing.T, err error, want connect.Code) {
	t.Helper()
	if err == nil {
		t.Fatalf("expected %v, got nil error", want)
	}
	if got := connect.CodeOf(err); got != want {
		t.Fatalf("expected %v, got %v (%v)", want, got, err)
	}
}
