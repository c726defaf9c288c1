package passrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// ServiceName is the fully qualified gRPC service name
const ServiceName = "pass.PassService"

// Full method names
const (
	MethodPair           = "/" + ServiceName + "/Pair"
	MethodListPasses     = "/" + ServiceName + "/ListPasses"
	MethodGetPass        = "/" + ServiceName + "/GetPass"
	MethodCreatePass     = "/" + ServiceName + "/CreatePass"
	MethodUpdatePass     = "/" + ServiceName + "/UpdatePass"
	MethodDeletePass     = "/" + ServiceName + "/DeletePass"
	MethodSetDestination = "/" + ServiceName + "/SetDestination"
	MethodActivePass     = "/" + ServiceName + "/ActivePass"
	MethodRenderPass     = "/" + ServiceName + "/RenderPass"
)

// PassServiceServer is implemented by the server handlers
type PassServiceServer interface {
	Pair(context.Context, *PairRequest) (*PairResponse, error)
	ListPasses(context.Context, *ListPassesRequest) (*ListPassesResponse, error)
	GetPass(context.Context, *GetPassRequest) (*PassResponse, error)
	CreatePass(context.Context, *CreatePassRequest) (*PassResponse, error)
	UpdatePass(context.Context, *UpdatePassRequest) (*PassResponse, error)
	DeletePass(context.Context, *DeletePassRequest) (*Empty, error)
	SetDestination(context.Context, *SetDestinationRequest) (*Empty, error)
	ActivePass(context.Context, *ActivePassRequest) (*PassResponse, error)
	RenderPass(context.Context, *RenderPassRequest) (*RenderPassResponse, error)
}

// UnimplementedPassServiceServer answers every call with codes.Unimplemented
type UnimplementedPassServiceServer struct{}

func (UnimplementedPassServiceServer) Pair(context.Context, *PairRequest) (*PairResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method Pair not implemented")
}
func (UnimplementedPassServiceServer) ListPasses(context.Context, *ListPassesRequest) (*ListPassesResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ListPasses not implemented")
}
func (UnimplementedPassServiceServer) GetPass(context.Context, *GetPassRequest) (*PassResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method GetPass not implemented")
}
func (UnimplementedPassServiceServer) CreatePass(context.Context, *CreatePassRequest) (*PassResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method CreatePass not implemented")
}
func (UnimplementedPassServiceServer) UpdatePass(context.Context, *UpdatePassRequest) (*PassResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method UpdatePass not implemented")
}
func (UnimplementedPassServiceServer) DeletePass(context.Context, *DeletePassRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method DeletePass not implemented")
}
func (UnimplementedPassServiceServer) SetDestination(context.Context, *SetDestinationRequest) (*Empty, error) {
	return nil, status.Error(codes.Unimplemented, "method SetDestination not implemented")
}
func (UnimplementedPassServiceServer) ActivePass(context.Context, *ActivePassRequest) (*PassResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method ActivePass not implemented")
}
func (UnimplementedPassServiceServer) RenderPass(context.Context, *RenderPassRequest) (*RenderPassResponse, error) {
	return nil, status.Error(codes.Unimplemented, "method RenderPass not implemented")
}

// RegisterPassServiceServer registers srv on s
func RegisterPassServiceServer(s grpc.ServiceRegistrar, srv PassServiceServer) {
	s.RegisterService(&serviceDesc, srv)
}

// unary builds a grpc.MethodDesc handler for one typed method
func unary[Req any, Resp any](fullMethod string, call func(PassServiceServer, context.Context, *Req) (*Resp, error)) func(any, context.Context, func(any) error, grpc.UnaryServerInterceptor) (any, error) {
	return func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
		in := new(Req)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(PassServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{Server: srv, FullMethod: fullMethod}
		handler := func(ctx context.Context, req any) (any, error) {
			return call(srv.(PassServiceServer), ctx, req.(*Req))
		}
		return interceptor(ctx, in, info, handler)
	}
}

var serviceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*PassServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Pair", Handler: unary(MethodPair, PassServiceServer.Pair)},
		{MethodName: "ListPasses", Handler: unary(MethodListPasses, PassServiceServer.ListPasses)},
		{MethodName: "GetPass", Handler: unary(MethodGetPass, PassServiceServer.GetPass)},
		{MethodName: "CreatePass", Handler: unary(MethodCreatePass, PassServiceServer.CreatePass)},
		{MethodName: "UpdatePass", Handler: unary(MethodUpdatePass, PassServiceServer.UpdatePass)},
		{MethodName: "DeletePass", Handler: unary(MethodDeletePass, PassServiceServer.DeletePass)},
		{MethodName: "SetDestination", Handler: unary(MethodSetDestination, PassServiceServer.SetDestination)},
		{MethodName: "ActivePass", Handler: unary(MethodActivePass, PassServiceServer.ActivePass)},
		{MethodName: "RenderPass", Handler: unary(MethodRenderPass, PassServiceServer.RenderPass)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "pass.proto",
}

// PassServiceClient is the typed client of pass.PassService
type PassServiceClient interface {
	Pair(ctx context.Context, in *PairRequest, opts ...grpc.CallOption) (*PairResponse, error)
	ListPasses(ctx context.Context, in *ListPassesRequest, opts ...grpc.CallOption) (*ListPassesResponse, error)
	GetPass(ctx context.Context, in *GetPassRequest, opts ...grpc.CallOption) (*PassResponse, error)
	CreatePass(ctx context.Context, in *CreatePassRequest, opts ...grpc.CallOption) (*PassResponse, error)
	UpdatePass(ctx context.Context, in *UpdatePassRequest, opts ...grpc.CallOption) (*PassResponse, error)
	DeletePass(ctx context.Context, in *DeletePassRequest, opts ...grpc.CallOption) (*Empty, error)
	SetDestination(ctx context.Context, in *SetDestinationRequest, opts ...grpc.CallOption) (*Empty, error)
	ActivePass(ctx context.Context, in *ActivePassRequest, opts ...grpc.CallOption) (*PassResponse, error)
	RenderPass(ctx context.Context, in *RenderPassRequest, opts ...grpc.CallOption) (*RenderPassResponse, error)
}

type passServiceClient struct {
	cc grpc.ClientConnInterface
}

// NewPassServiceClient wraps a connection. The connection must use Codec,
// see grpc.ForceCodec.
func NewPassServiceClient(cc grpc.ClientConnInterface) PassServiceClient {
	return &passServiceClient{cc: cc}
}

func invoke[Resp any](ctx context.Context, cc grpc.ClientConnInterface, method string, in any, opts []grpc.CallOption) (*Resp, error) {
	out := new(Resp)
	if err := cc.Invoke(ctx, method, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *passServiceClient) Pair(ctx context.Context, in *PairRequest, opts ...grpc.CallOption) (*PairResponse, error) {
	return invoke[PairResponse](ctx, c.cc, MethodPair, in, opts)
}

func (c *passServiceClient) ListPasses(ctx context.Context, in *ListPassesRequest, opts ...grpc.CallOption) (*ListPassesResponse, error) {
	return invoke[ListPassesResponse](ctx, c.cc, MethodListPasses, in, opts)
}

func (c *passServiceClient) GetPass(ctx context.Context, in *GetPassRequest, opts ...grpc.CallOption) (*PassResponse, error) {
	return invoke[PassResponse](ctx, c.cc, MethodGetPass, in, opts)
}

func (c *passServiceClient) CreatePass(ctx context.Context, in *CreatePassRequest, opts ...grpc.CallOption) (*PassResponse, error) {
	return invoke[PassResponse](ctx, c.cc, MethodCreatePass, in, opts)
}

func (c *passServiceClient) UpdatePass(ctx context.Context, in *UpdatePassRequest, opts ...grpc.CallOption) (*PassResponse, error) {
	return invoke[PassResponse](ctx, c.cc, MethodUpdatePass, in, opts)
}

func (c *passServiceClient) DeletePass(ctx context.Context, in *DeletePassRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodDeletePass, in, opts)
}

func (c *passServiceClient) SetDestination(ctx context.Context, in *SetDestinationRequest, opts ...grpc.CallOption) (*Empty, error) {
	return invoke[Empty](ctx, c.cc, MethodSetDestination, in, opts)
}

func (c *passServiceClient) ActivePass(ctx context.Context, in *ActivePassRequest, opts ...grpc.CallOption) (*PassResponse, error) {
	return invoke[PassResponse](ctx, c.cc, MethodActivePass, in, opts)
}

func (c *passServiceClient) RenderPass(ctx context.Context, in *RenderPassRequest, opts ...grpc.CallOption) (*RenderPassResponse, error) {
	return invoke[RenderPassResponse](ctx, c.cc, MethodRenderPass, in, opts)
}
