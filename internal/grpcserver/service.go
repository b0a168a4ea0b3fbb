package grpcserver

import (
	"context"
	"encoding/json"
	"time"

	"github.com/sirupsen/logrus"
	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/encoding/protojson"
	"google.golang.org/protobuf/types/known/structpb"
)

// ServiceName is the fully qualified gRPC service name.
const ServiceName = "listings.v1.Listings"

// ListingsServer is the server API for the listings.v1.Listings service.
// Every message is a google.protobuf.Struct carrying the JSON shape of the
// HTTP API.
type ListingsServer interface {
	ListJobs(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetJob(context.Context, *structpb.Struct) (*structpb.Struct, error)
	CreateJob(context.Context, *structpb.Struct) (*structpb.Struct, error)
	UpdateJob(context.Context, *structpb.Struct) (*structpb.Struct, error)
	DeleteJob(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ToggleFavorite(context.Context, *structpb.Struct) (*structpb.Struct, error)
	ListFavorites(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	SaveProfile(context.Context, *structpb.Struct) (*structpb.Struct, error)
	AddSkill(context.Context, *structpb.Struct) (*structpb.Struct, error)
	RemoveSkill(context.Context, *structpb.Struct) (*structpb.Struct, error)
	GetView(context.Context, *structpb.Struct) (*structpb.Struct, error)
}

type rpc func(ListingsServer, context.Context, *structpb.Struct) (*structpb.Struct, error)

// ServiceDesc describes listings.v1.Listings for grpc.Server.RegisterService.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: ServiceName,
	HandlerType: (*ListingsServer)(nil),
	Methods: []grpc.MethodDesc{
		unary("ListJobs", ListingsServer.ListJobs),
		unary("GetJob", ListingsServer.GetJob),
		unary("CreateJob", ListingsServer.CreateJob),
		unary("UpdateJob", ListingsServer.UpdateJob),
		unary("DeleteJob", ListingsServer.DeleteJob),
		unary("ToggleFavorite", ListingsServer.ToggleFavorite),
		unary("ListFavorites", ListingsServer.ListFavorites),
		unary("GetProfile", ListingsServer.GetProfile),
		unary("SaveProfile", ListingsServer.SaveProfile),
		unary("AddSkill", ListingsServer.AddSkill),
		unary("RemoveSkill", ListingsServer.RemoveSkill),
		unary("GetView", ListingsServer.GetView),
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "listings/v1/listings.proto",
}

func unary(name string, call rpc) grpc.MethodDesc {
	return grpc.MethodDesc{
		MethodName: name,
		Handler: func(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
			in := new(structpb.Struct)
			if err := dec(in); err != nil {
				return nil, err
			}
			if interceptor == nil {
				return call(srv.(ListingsServer), ctx, in)
			}
			info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + ServiceName + "/" + name}
			handler := func(ctx context.Context, req any) (any, error) {
				return call(srv.(ListingsServer), ctx, req.(*structpb.Struct))
			}
			return interceptor(ctx, in, info, handler)
		},
	}
}

// Register attaches srv to s.
func Register(s grpc.ServiceRegistrar, srv ListingsServer) {
	s.RegisterService(&ServiceDesc, srv)
}

// NewGRPCServer returns a grpc.Server with srv registered and every call
// logged at debug level.
func NewGRPCServer(srv ListingsServer, log logrus.FieldLogger) *grpc.Server {
	s := grpc.NewServer(grpc.UnaryInterceptor(loggingInterceptor(log.WithField("component", "grpc"))))
	Register(s, srv)
	return s
}

func loggingInterceptor(log logrus.FieldLogger) grpc.UnaryServerInterceptor {
	return func(ctx context.Context, req any, info *grpc.UnaryServerInfo, handler grpc.UnaryHandler) (any, error) {
		start := time.Now()
		resp, err := handler(ctx, req)
		entry := log.WithFields(logrus.Fields{
			"method":   info.FullMethod,
			"code":     status.Code(err).String(),
			"duration": time.Since(start).String(),
		})
		if status.Code(err) == codes.Internal {
			entry.Warn("grpc call failed")
		} else {
			entry.Debug("grpc call")
		}
		return resp, err
	}
}

// ─── Client ──────────────────────────────────────────────────────────────────

// Client calls listings.v1.Listings and converts plain Go values to and
// from Struct messages.
type Client struct {
	cc grpc.ClientConnInterface
}

// NewClient wraps cc.
func NewClient(cc grpc.ClientConnInterface) *Client {
	return &Client{cc: cc}
}

// Call invokes method with req encoded as a Struct and decodes the reply
// into resp. resp may be nil.
func (c *Client) Call(ctx context.Context, method string, req, resp any) error {
	in, err := toStruct(req)
	if err != nil {
		return err
	}
	out := new(structpb.Struct)
	if err := c.cc.Invoke(ctx, "/"+ServiceName+"/"+method, in, out); err != nil {
		return err
	}
	if resp == nil {
		return nil
	}
	return fromStruct(out, resp)
}

// ─── Struct conversion ───────────────────────────────────────────────────────

// toStruct converts v through its JSON encoding. v must encode as an object.
func toStruct(v any) (*structpb.Struct, error) {
	if v == nil {
		return &structpb.Struct{}, nil
	}
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, status.Errorf(codes.Internal, "encode: %v", err)
	}
	s := new(structpb.Struct)
	if err := protojson.Unmarshal(raw, s); err != nil {
		return nil, status.Errorf(codes.Internal, "encode: %v", err)
	}
	return s, nil
}

// fromStruct decodes s into dst through JSON.
func fromStruct(s *structpb.Struct, dst any) error {
	if s == nil {
		s = &structpb.Struct{}
	}
	raw, err := protojson.Marshal(s)
	if err != nil {
		return status.Errorf(codes.InvalidArgument, "decode: %v", err)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return status.Errorf(codes.InvalidArgument, "decode: %v", err)
	}
	return nil
}
