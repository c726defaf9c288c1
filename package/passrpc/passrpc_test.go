package passrpc

import (
	"context"
	"net"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"
	"google.golang.org/grpc/test/bufconn"
)

func TestCodec(t *testing.T) {
	var codec Codec
	assert.Equal(t, "json", codec.Name())

	title := "Pool"
	data, err := codec.Marshal(&UpdatePassRequest{ID: "id-1", Title: &title})
	require.NoError(t, err)
	assert.JSONEq(t, `{"id":"id-1","title":"Pool"}`, string(data))

	var req UpdatePassRequest
	require.NoError(t, codec.Unmarshal(data, &req))
	assert.Nil(t, req.Code)
	assert.Equal(t, "Pool", *req.Title)

	var empty Empty
	assert.NoError(t, codec.Unmarshal(nil, &empty))
}

type echoServer struct {
	UnimplementedPassServiceServer
}

func (echoServer) GetPass(_ context.Context, req *GetPassRequest) (*PassResponse, error) {
	return &PassResponse{Pass: &Pass{ID: req.ID, Title: "Gym"}}, nil
}

func (echoServer) RenderPass(_ context.Context, req *RenderPassRequest) (*RenderPassResponse, error) {
	return &RenderPassResponse{PNG: []byte{byte(req.Size)}}, nil
}

func dial(t *testing.T, opts ...grpc.ServerOption) PassServiceClient {
	t.Helper()
	lis := bufconn.Listen(1 << 20)

	srv := grpc.NewServer(append([]grpc.ServerOption{grpc.ForceServerCodec(Codec{})}, opts...)...)
	RegisterPassServiceServer(srv, echoServer{})
	go func() { _ = srv.Serve(lis) }()
	t.Cleanup(srv.Stop)

	conn, err := grpc.NewClient("passthrough:///bufnet",
		grpc.WithContextDialer(func(ctx context.Context, _ string) (net.Conn, error) {
			return lis.DialContext(ctx)
		}),
		grpc.WithTransportCredentials(insecure.NewCredentials()),
		grpc.WithDefaultCallOptions(grpc.ForceCodec(Codec{})),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	return NewPassServiceClient(conn)
}

func TestServiceRoundTrip(t *testing.T) {
	client := dial(t)

	resp, err := client.GetPass(context.Background(), &GetPassRequest{ID: "id-1"})
	require.NoError(t, err)
	assert.Equal(t, &Pass{ID: "id-1", Title: "Gym"}, resp.Pass)

	img, err := client.RenderPass(context.Background(), &RenderPassRequest{Size: 7})
	require.NoError(t, err)
	assert.Equal(t, []byte{7}, img.PNG)

	_, err = client.DeletePass(context.Background(), &DeletePassRequest{ID: "id-1"})
	assert.Equal(t, codes.Unimplemented, status.Code(err))
}

func TestServiceInterceptorSeesFullMethod(t *testing.T) {
	var seen []string
	interceptor := func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		seen = append(seen, info.FullMethod)
		return handler(ctx, req)
	}
	client := dial(t, grpc.UnaryInterceptor(interceptor))

	_, err := client.GetPass(context.Background(), &GetPassRequest{ID: "id-1"})
	require.NoError(t, err)

	assert.Equal(t, []string{MethodGetPass}, seen)
}
