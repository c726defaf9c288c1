package handlers

import (
	"context"
	"errors"
	"net"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"github.com/vova4o/passkeeper/internal/client/storage"
	"github.com/vova4o/passkeeper/internal/models"
	serverhandlers "github.com/vova4o/passkeeper/internal/server/handlers"
	"github.com/vova4o/passkeeper/internal/server/metrics"
	"github.com/vova4o/passkeeper/internal/server/service"
	serverstorage "github.com/vova4o/passkeeper/internal/server/storage"
	"github.com/vova4o/passkeeper/package/jwtauth"
	"github.com/vova4o/passkeeper/package/logger"
	"github.com/vova4o/passkeeper/package/passrpc"
	"github.com/vova4o/passkeeper/package/passwordhash"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

// MockPassServiceClient - мок для клиента gRPC
type MockPassServiceClient struct {
	mock.Mock
}

func (m *MockPassServiceClient) Pair(ctx context.Context, in *passrpc.PairRequest, opts ...grpc.CallOption) (*passrpc.PairResponse, error) {
	args := m.Called(ctx, in)
	if res, ok := args.Get(0).(*passrpc.PairResponse); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPassServiceClient) ListPasses(ctx context.Context, in *passrpc.ListPassesRequest, opts ...grpc.CallOption) (*passrpc.ListPassesResponse, error) {
	args := m.Called(ctx, in)
	if res, ok := args.Get(0).(*passrpc.ListPassesResponse); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPassServiceClient) GetPass(ctx context.Context, in *passrpc.GetPassRequest, opts ...grpc.CallOption) (*passrpc.PassResponse, error) {
	return passResponse(m.MethodCalled("GetPass", ctx, in))
}

func (m *MockPassServiceClient) CreatePass(ctx context.Context, in *passrpc.CreatePassRequest, opts ...grpc.CallOption) (*passrpc.PassResponse, error) {
	return passResponse(m.MethodCalled("CreatePass", ctx, in))
}

func (m *MockPassServiceClient) UpdatePass(ctx context.Context, in *passrpc.UpdatePassRequest, opts ...grpc.CallOption) (*passrpc.PassResponse, error) {
	return passResponse(m.MethodCalled("UpdatePass", ctx, in))
}

func (m *MockPassServiceClient) ActivePass(ctx context.Context, in *passrpc.ActivePassRequest, opts ...grpc.CallOption) (*passrpc.PassResponse, error) {
	return passResponse(m.MethodCalled("ActivePass", ctx, in))
}

func passResponse(args mock.Arguments) (*passrpc.PassResponse, error) {
	if res, ok := args.Get(0).(*passrpc.PassResponse); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *MockPassServiceClient) DeletePass(ctx context.Context, in *passrpc.DeletePassRequest, opts ...grpc.CallOption) (*passrpc.Empty, error) {
	args := m.Called(ctx, in)
	return &passrpc.Empty{}, args.Error(0)
}

func (m *MockPassServiceClient) SetDestination(ctx context.Context, in *passrpc.SetDestinationRequest, opts ...grpc.CallOption) (*passrpc.Empty, error) {
	args := m.Called(ctx, in)
	return &passrpc.Empty{}, args.Error(0)
}

func (m *MockPassServiceClient) RenderPass(ctx context.Context, in *passrpc.RenderPassRequest, opts ...grpc.CallOption) (*passrpc.RenderPassResponse, error) {
	args := m.Called(ctx, in)
	if res, ok := args.Get(0).(*passrpc.RenderPassResponse); ok {
		return res, args.Error(1)
	}
	return nil, args.Error(1)
}

// MockSessions - мок хранилища сессий
type MockSessions struct {
	mock.Mock
}

func (m *MockSessions) SaveSession(ctx context.Context, server, token string, expiresAt time.Time) error {
	args := m.Called(ctx, server, token, expiresAt)
	return args.Error(0)
}

func (m *MockSessions) GetSession(ctx context.Context, server string) (storage.Session, error) {
	args := m.Called(ctx, server)
	return args.Get(0).(storage.Session), args.Error(1)
}

func (m *MockSessions) DeleteSession(ctx context.Context, server string) error {
	args := m.Called(ctx, server)
	return args.Error(0)
}

func hasToken(token string) interface{} {
	return mock.MatchedBy(func(ctx context.Context) bool {
		md, ok := metadata.FromOutgoingContext(ctx)
		return ok && len(md["authorization"]) == 1 && md["authorization"][0] == token
	})
}

func TestPair(t *testing.T) {
	expires := time.Unix(1700000000, 0)

	tests := []struct {
		name          string
		mockResponse  *passrpc.PairResponse
		mockError     error
		expectedError error
	}{
		{
			name:         "successful pairing",
			mockResponse: &passrpc.PairResponse{Token: "access_token", ExpiresAt: expires.Unix()},
		},
		{
			name:          "wrong passphrase",
			mockError:     status.Error(codes.Unauthenticated, "invalid passphrase"),
			expectedError: ErrUnauthenticated,
		},
		{
			name:          "empty token",
			mockResponse:  &passrpc.PairResponse{},
			expectedError: ErrUnauthenticated,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			client := &MockPassServiceClient{}
			sessions := &MockSessions{}
			c := NewWithClient(client, "srv", sessions, logger.NewLogger("error"))

			req := &passrpc.PairRequest{Device: "phone", Passphrase: "open sesame"}
			client.On("Pair", mock.Anything, req).Return(tt.mockResponse, tt.mockError)
			sessions.On("SaveSession", mock.Anything, "srv", "access_token", expires).Return(nil)

			err := c.Pair(context.Background(), "phone", "open sesame")

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				sessions.AssertNotCalled(t, "SaveSession", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, "access_token", c.token)
			sessions.AssertExpectations(t)
		})
	}
}

func TestAuthContextLoadsSession(t *testing.T) {
	client := &MockPassServiceClient{}
	sessions := &MockSessions{}
	c := NewWithClient(client, "srv", sessions, logger.NewLogger("error"))

	sessions.On("GetSession", mock.Anything, "srv").Once().Return(storage.Session{Token: "stored"}, nil)
	client.On("GetPass", hasToken("stored"), &passrpc.GetPassRequest{ID: "id-1"}).
		Return(&passrpc.PassResponse{Pass: &passrpc.Pass{ID: "id-1", Title: "Gym"}}, nil)

	for i := 0; i < 2; i++ {
		pass, err := c.Get(context.Background(), "id-1")
		require.NoError(t, err)
		assert.Equal(t, "Gym", pass.Title)
	}
	sessions.AssertExpectations(t)
}

func TestUnpair(t *testing.T) {
	client := &MockPassServiceClient{}
	sessions := &MockSessions{}
	c := NewWithClient(client, "srv", sessions, logger.NewLogger("error"))

	client.On("Pair", mock.Anything, &passrpc.PairRequest{Device: "phone", Passphrase: "open sesame"}).
		Return(&passrpc.PairResponse{Token: "tok"}, nil)
	sessions.On("SaveSession", mock.Anything, "srv", "tok", time.Time{}).Return(nil)
	sessions.On("DeleteSession", mock.Anything, "srv").Return(nil)
	sessions.On("GetSession", mock.Anything, "srv").Return(storage.Session{}, storage.ErrNoSession)

	require.NoError(t, c.Pair(context.Background(), "phone", "open sesame"))
	require.NoError(t, c.Unpair(context.Background()))

	_, err := c.List(context.Background())
	assert.ErrorIs(t, err, storage.ErrNoSession)
	sessions.AssertExpectations(t)
	client.AssertNotCalled(t, "ListPasses", mock.Anything, mock.Anything)
}

func TestNotPaired(t *testing.T) {
	client := &MockPassServiceClient{}
	sessions := &MockSessions{}
	c := NewWithClient(client, "srv", sessions, logger.NewLogger("error"))
	sessions.On("GetSession", mock.Anything, "srv").Return(storage.Session{}, storage.ErrNoSession)

	_, err := c.List(context.Background())
	assert.ErrorIs(t, err, storage.ErrNoSession)
	client.AssertNotCalled(t, "ListPasses", mock.Anything, mock.Anything)
}

func TestFromStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"invalid argument", status.Error(codes.InvalidArgument, "bad"), models.ErrValidationFailed},
		{"not found", status.Error(codes.NotFound, "gone"), models.ErrNotFound},
		{"unauthenticated", status.Error(codes.Unauthenticated, "no"), ErrUnauthenticated},
		{"internal", status.Error(codes.Internal, "boom"), models.ErrStoreFailure},
		{"unavailable", status.Error(codes.Unavailable, "down"), models.ErrStoreFailure},
		{"deadline", status.Error(codes.DeadlineExceeded, "slow"), context.DeadlineExceeded},
		{"plain error", errors.New("plain"), models.ErrStoreFailure},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.ErrorIs(t, fromStatus(tt.err), tt.want)
		})
	}
}

// startServer runs the real server stack on a bufconn listener
func startServer(t *testing.T) *GRPCClient {
	t.Helper()
	ctx := context.Background()
	log := logger.NewLogger("error")

	stor, err := serverstorage.NewStorage(ctx, serverstorage.DriverSQLite3, filepath.Join(t.TempDir(), "server.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { stor.Close() })

	hash, err := passwordhash.HashPassphrase("open sesame")
	require.NoError(t, err)

	serv := service.NewService(stor, metrics.New(), log)
	passService := serverhandlers.NewHandlersService(jwtauth.NewJWTService("secret", "test"), serv, hash, time.Hour, log)

	lis := bufconn.Listen(1 << 20)
	srv := grpc.NewServer(grpc.ForceServerCodec(passrpc.Codec{}), grpc.UnaryInterceptor(passService.AuthFuncOverride))
	passrpc.RegisterPassServiceServer(srv, passService)
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(passrpc.Codec{})),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	sessions, err := storage.NewStorage(filepath.Join(t.TempDir(), "client.db"), log)
	require.NoError(t, err)
	t.Cleanup(func() { sessions.Close() })

	return NewWithClient(passrpc.NewPassServiceClient(conn), "bufnet", sessions, log)
}

func TestEndToEnd(t *testing.T) {
	c := startServer(t)
	ctx := context.Background()

	_, err := c.List(ctx)
	require.ErrorIs(t, err, storage.ErrNoSession)

	require.ErrorIs(t, c.Pair(ctx, "phone", "wrong"), ErrUnauthenticated)
	require.NoError(t, c.Pair(ctx, "phone", "open sesame"))

	_, err = c.Create(ctx, "Gym", "héllo", true)
	assert.ErrorIs(t, err, models.ErrValidationFailed)

	gym, err := c.Create(ctx, " Gym ", "ABC-1", true)
	require.NoError(t, err)
	assert.Equal(t, "Gym", gym.Title)

	pool, err := c.Create(ctx, "Pool", "héllo", false)
	require.NoError(t, err)

	require.NoError(t, c.SetExclusiveFlag(ctx, gym.ID, models.Watch, true))
	require.NoError(t, c.SetExclusiveFlag(ctx, pool.ID, models.Watch, true))

	active, err := c.Active(ctx, models.Watch)
	require.NoError(t, err)
	assert.Equal(t, pool.ID, active.ID)

	passes, err := c.List(ctx)
	require.NoError(t, err)
	require.Len(t, passes, 2)
	holders := 0
	for _, p := range passes {
		if p.IsOnWatch {
			holders++
		}
	}
	assert.Equal(t, 1, holders)

	title := "Gym 24/7"
	updated, err := c.Update(ctx, gym.ID, models.PassPatch{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Gym 24/7", updated.Title)
	assert.Equal(t, "ABC-1", updated.Code)

	png, err := c.Render(ctx, gym.ID, 0, false)
	require.NoError(t, err)
	assert.NotEmpty(t, png)

	require.NoError(t, c.Delete(ctx, pool.ID))
	_, err = c.Active(ctx, models.Watch)
	assert.ErrorIs(t, err, models.ErrNotFound)

	err = c.SetExclusiveFlag(ctx, pool.ID, models.Widget, true)
	assert.ErrorIs(t, err, models.ErrNotFound)
	_, err = c.Get(ctx, pool.ID)
	assert.ErrorIs(t, err, models.ErrNotFound)
}
