// Package geomrpc exposes the surface geometry operations over gRPC as
// surfacegeom.v1.GeometryService. Requests and responses are
// google.protobuf.Struct messages.
package geomrpc

import (
	"context"

	"google.golang.org/grpc"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully-qualified gRPC service name.
const ServiceName = "surfacegeom.v1.GeometryService"

// Method names.
const (
	MethodSurfaceIntercept = "SurfaceIntercept"
	MethodNearPoint        = "NearPoint"
	MethodLineNearPoint    = "LineNearPoint"
	MethodGetFOV           = "GetFOV"
	MethodConvertUnits     = "ConvertUnits"
	MethodLimb             = "Limb"
)

// FullMethod returns the "/service/method" path of a GeometryService method.
func FullMethod(method string) string {
	return "/" + ServiceName + "/" + method
}

// GeometryServiceServer is the server API for GeometryService.
type GeometryServiceServer interface {
	SurfaceIntercept(context.Context, *structpb.Struct) (*structpb.Struct, error)
	NearPoint(context.Context, *structpb.Struct) (*structpb.Struct, error)
	LineNearPoint(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetFOV(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ConvertUnits(context.Context, *structpb.Struct) (*structpb.Struct, error)
	Limb(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

// RegisterGeometryServiceServer registers srv on s.
func RegisterGeometryServiceServer(s grpc.ServiceRegistrar, srv GeometryServiceServer) {
	s.RegisterService(&GeometryServiceDesc, srv)
}

type unaryMethod func(GeometryServiceServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

func unaryHandler(method string, call unaryMethod) func(interface{}, context.Context, func(interface{}) error, grpc.UnaryServerInterceptor) (interface{}, error) {
	return func(srv interface{}, ctx context.Context, dec func(interface{}) error, interceptor grpc.UnaryServerInterceptor) (interface{}, error) {
		in := new(structpb.Struct)
		if err := dec(in); err != nil {
			return nil, err
		}
		if interceptor == nil {
			return call(srv.(GeometryServiceServer), ctx, in)
		}
		info := &grpc.UnaryServerInfo{
			Server:     srv,
			FullMethod: FullMethod(method),
		}
		handler := func(ctx context.Context, req interface{}) (interface{}, error) {
			return call(srv.(GeometryServiceServer), ctx, req.(*structpb.Struct))
		}
		return interceptor(ctx, in, info, handler)
	}
}

// GeometryServiceDesc is the grpc.ServiceDesc for GeometryService.
var GeometryServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*GeometryServiceServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: MethodSurfaceIntercept, Handler: unaryHandler(MethodSurfaceIntercept, GeometryServiceServer.SurfaceIntercept)},
		{MethodName: MethodNearPoint, Handler: unaryHandler(MethodNearPoint, GeometryServiceServer.NearPoint)},
		{MethodName: MethodLineNearPoint, Handler: unaryHandler(MethodLineNearPoint, GeometryServiceServer.LineNearPoint)},
		{MethodName: MethodGetFOV, Handler: unaryHandler(MethodGetFOV, GeometryServiceServer.GetFOV)},
		{MethodName: MethodConvertUnits, Handler: unaryHandler(MethodConvertUnits, GeometryServiceServer.ConvertUnits)},
		{MethodName: MethodLimb, Handler: unaryHandler(MethodLimb, GeometryServiceServer.Limb)},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "surfacegeom/v1/geometry.proto",
}
