// Package grpc serves the internal movie lookup API used by other services.
//
// The wire contract uses protobuf well-known types only, so the service
// descriptor is declared here instead of being generated from a .proto file.
package grpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
	"google.golang.org/protobuf/types/known/wrapperspb"
)

const (
	ServiceName = "catalog.v1.MovieInterService"

	getMovieInfoMethod     = "/" + ServiceName + "/GetMovieInfo"
	checkMovieExistsMethod = "/" + ServiceName + "/CheckMovieExists"
)

// MovieInterServer is the server side of catalog.v1.MovieInterService.
type MovieInterServer interface {
	GetMovieInfo(context.Context, *wrapperspb.Int64Value) (*structpb.Struct, error)
	CheckMovieExists(context.Context, *wrapperspb.Int64Value) (*wrapperspb.BoolValue, error)
}

// ServiceDesc describes catalog.v1.MovieInterService for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*MovieInterServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "GetMovieInfo", Handler: getMovieInfoHandler},
		{MethodName: "CheckMovieExists", Handler: checkMovieExistsHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "catalog/v1/movie_inter.proto",
}

// RegisterMovieInterServer attaches srv to s.
func RegisterMovieInterServer(s grpc.ServiceRegistrar, srv MovieInterServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func getMovieInfoHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MovieInterServer).GetMovieInfo(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: getMovieInfoMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MovieInterServer).GetMovieInfo(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

func checkMovieExistsHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(wrapperspb.Int64Value)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(MovieInterServer).CheckMovieExists(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: checkMovieExistsMethod}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(MovieInterServer).CheckMovieExists(ctx, req.(*wrapperspb.Int64Value))
	}
	return interceptor(ctx, in, info, handler)
}

// movieInterClient is the raw stub; MovieClient wraps it with logging and timeouts.
type movieInterClient struct {
	cc grpc.ClientConnInterface
}

func (c *movieInterClient) GetMovieInfo(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*structpb.Struct, error) {
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, getMovieInfoMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *movieInterClient) CheckMovieExists(ctx context.Context, in *wrapperspb.Int64Value, opts ...grpc.CallOption) (*wrapperspb.BoolValue, error) {
	out := new(wrapperspb.BoolValue)
	if err := c.cc.Invoke(ctx, checkMovieExistsMethod, in, out, opts...); err != nil {
		return nil, err
	}
	return out, nil
}
