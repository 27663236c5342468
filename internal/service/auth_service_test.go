package service

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"connectrpc.com/connect"
	"golang.org/x/crypto/bcrypt"

	"github.com/mmynk/spendwise/internal/auth"
	"github.com/mmynk/spendwise/internal/middleware"
	"github.com/mmynk/spendwise/internal/storage/sqlite"
	"github.com/mmynk/spendwise/pkg/api"
	"github.com/mmynk/spendwise/pkg/api/apiconnect"
)

// setupAuthServer wires the real auth interceptors: OptionalAuth on the auth
// service and RequireAuth on the group service.
func setupAuthServer(t *testing.T) (*apiconnect.AuthServiceClient, *apiconnect.GroupServiceClient) {
	t.Helper()

	store, err := sqlite.New(filepath.Join(t.TempDir(), "auth.db"))
	if err != nil {
		t.Fatalf("failed to create store: %v", err)
	}

	jwtManager := auth.NewJWTManager("test-secret-test-secret-test-secret", time.Hour)
	authenticator := auth.NewPasswordAuthenticator(store).WithCost(bcrypt.MinCost)

	authPath, authHandler := apiconnect.NewAuthServiceHandler(
		NewAuthService(authenticator, jwtManager, store, nil),
		connect.WithInterceptors(middleware.OptionalAuth(jwtManager)),
	)
	groupPath, groupHandler := apiconnect.NewGroupServiceHandler(
		NewGroupService(store),
		connect.WithInterceptors(middleware.RequireAuth(jwtManager)),
	)

	mux := http.NewServeMux()
	mux.Handle(authPath, authHandler)
	mux.Handle(groupPath, groupHandler)
	server := httptest.NewServer(mux)

	t.Cleanup(func() {
		server.Close()
		store.Close()
	})

	return apiconnect.NewAuthServiceClient(http.DefaultClient, server.URL),
		apiconnect.NewGroupServiceClient(http.DefaultClient, server.URL)
}

func withToken[T any](req *connect.Request[T], token string) *connect.Request[T] {
	req.Header().Set("Authorization", "Bearer "+token)
	return req
}

func TestAuthFlow(t *testing.T) {
	authClient, groupClient := setupAuthServer(t)
	ctx := context.Background()

	reg, err := authClient.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email:       "Alice@Example.com",
		DisplayName: "Alice",
		Password:    "supersecret",
	}))
	if err != nil {
		t.Fatalf("Register failed: %v", err)
	}
	if reg.Msg.Token == "" || reg.Msg.User.Email != "alice@example.com" {
		t.Fatalf("unexpected register response %+v", reg.Msg)
	}

	login, err := authClient.Login(ctx, connect.NewRequest(&api.LoginRequest{
		Email:    "alice@example.com",
		Password: "supersecret",
	}))
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	token := login.Msg.Token

	me, err := authClient.GetCurrentUser(ctx, withToken(connect.NewRequest(&api.GetCurrentUserRequest{}), token))
	if err != nil {
		t.Fatalf("GetCurrentUser failed: %v", err)
	}
	if me.Msg.User.DisplayName != "Alice" || me.Msg.User.ID != reg.Msg.User.ID {
		t.Errorf("unexpected user %+v", me.Msg.User)
	}

	created, err := groupClient.CreateGroup(ctx, withToken(connect.NewRequest(&api.CreateGroupRequest{
		Name: "Authenticated", Members: []string{"Alice"},
	}), token))
	if err != nil {
		t.Fatalf("CreateGroup failed: %v", err)
	}
	if created.Msg.Group.OwnerID != reg.Msg.User.ID {
		t.Errorf("owner = %s, want %s", created.Msg.Group.OwnerID, reg.Msg.User.ID)
	}
}

func TestAuthErrors(t *testing.T) {
	authClient, groupClient := setupAuthServer(t)
	ctx := context.Background()

	if _, err := authClient.Register(ctx, connect.NewRequest(&api.RegisterRequest{
		Email: "bob@example.com", DisplayName: "Bob", Password: "password1",
	})); err != nil {
		t.Fatalf("Register failed: %v", err)
	}

	t.Run("duplicate email", func(t *testing.T) {
		_, err := authClient.Register(ctx, connect.NewRequest(&api.RegisterRequest{
			Email: "BOB@example.com", DisplayName: "Bob 2", Password: "password2",
		}))
		assertCode(t, err, connect.CodeAlreadyExists)
	})

	t.Run("weak password", func(t *testing.T) {
		_, err := authClient.Register(ctx, connect.NewRequest(&api.RegisterRequest{
			Email: "carol@example.com", DisplayName: "Carol", Password: "short",
		}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("missing display name", func(t *testing.T) {
		_, err := authClient.Register(ctx, connect.NewRequest(&api.RegisterRequest{
			Email: "dave@example.com", Password: "password1",
		}))
		assertCode(t, err, connect.CodeInvalidArgument)
	})

	t.Run("wrong password", func(t *testing.T) {
		_, err := authClient.Login(ctx, connect.NewRequest(&api.LoginRequest{
			Email: "bob@example.com", Password: "password2",
		}))
		assertCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("current user without token", func(t *testing.T) {
		_, err := authClient.GetCurrentUser(ctx, connect.NewRequest(&api.GetCurrentUserRequest{}))
		assertCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("group call without token", func(t *testing.T) {
		_, err := groupClient.ListGroups(ctx, connect.NewRequest(&api.ListGroupsRequest{}))
		assertCode(t, err, connect.CodeUnauthenticated)
	})

	t.Run("group call with garbage token", func(t *testing.T) {
		_, err := groupClient.ListGroups(ctx, withToken(connect.NewRequest(&api.ListGroupsRequest{}), "garbage"))
		assertCode(t, err, connect.CodeUnauthenticated)
	})
}
