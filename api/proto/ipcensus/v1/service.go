package ipcensusv1

import (
	"context"

	"google.golang.org/grpc"
)

// IPCensusServer is the service contract, in the shape protoc-gen-go-grpc
// would emit from an ipcensus.proto: one method per RPC, each an
// unadorned (context, *Request) (*Response, error).
type IPCensusServer interface {
	Lookup(context.Context, *LookupRequest) (*LookupResponse, error)
	BatchLookup(context.Context, *BatchLookupRequest) (*BatchLookupResponse, error)
	RunUpdate(context.Context, *RunUpdateRequest) (*RunUpdateResponse, error)
	Health(context.Context, *HealthRequest) (*HealthResponse, error)
	ListFeedSources(context.Context, *ListFeedSourcesRequest) (*ListFeedSourcesResponse, error)
	CreateFeedSource(context.Context, *CreateFeedSourceRequest) (*Empty, error)
	UpdateFeedSource(context.Context, *UpdateFeedSourceRequest) (*Empty, error)
	DeleteFeedSource(context.Context, *DeleteFeedSourceRequest) (*Empty, error)
	mustEmbedUnimplementedIPCensusServer()
}

// UnimplementedIPCensusServer must be embedded by every implementation so
// adding a method to IPCensusServer later is not a breaking change,
// exactly as protoc-gen-go-grpc's generated Unimplemented types work.
type UnimplementedIPCensusServer struct{}

func (UnimplementedIPCensusServer) Lookup(context.Context, *LookupRequest) (*LookupResponse, error) {
	return nil, errUnimplemented("Lookup")
}

func (UnimplementedIPCensusServer) BatchLookup(
	context.Context, *BatchLookupRequest,
) (*BatchLookupResponse, error) {
	return nil, errUnimplemented("BatchLookup")
}

func (UnimplementedIPCensusServer) RunUpdate(
	context.Context, *RunUpdateRequest,
) (*RunUpdateResponse, error) {
	return nil, errUnimplemented("RunUpdate")
}

func (UnimplementedIPCensusServer) Health(context.Context, *HealthRequest) (*HealthResponse, error) {
	return nil, errUnimplemented("Health")
}

func (UnimplementedIPCensusServer) ListFeedSources(
	context.Context, *ListFeedSourcesRequest,
) (*ListFeedSourcesResponse, error) {
	return nil, errUnimplemented("ListFeedSources")
}

func (UnimplementedIPCensusServer) CreateFeedSource(context.Context, *CreateFeedSourceRequest) (*Empty, error) {
	return nil, errUnimplemented("CreateFeedSource")
}

func (UnimplementedIPCensusServer) UpdateFeedSource(context.Context, *UpdateFeedSourceRequest) (*Empty, error) {
	return nil, errUnimplemented("UpdateFeedSource")
}

func (UnimplementedIPCensusServer) DeleteFeedSource(context.Context, *DeleteFeedSourceRequest) (*Empty, error) {
	return nil, errUnimplemented("DeleteFeedSource")
}

func (UnimplementedIPCensusServer) mustEmbedUnimplementedIPCensusServer() {}

func errUnimplemented(method string) error {
	return &unimplementedError{method: method}
}

type unimplementedError struct{ method string }

func (e *unimplementedError) Error() string {
	return "ipcensusv1: method " + e.method + " not implemented"
}

const serviceName = "ipcensus.v1.IPCensus"

// ServiceDesc is the grpc.ServiceDesc protoc-gen-go-grpc would generate;
// RegisterIPCensusServer wires it against a *grpc.Server the same way
// generated code does.
var ServiceDesc = grpc.ServiceDesc{
	ServiceName: serviceName,
	HandlerType: (*IPCensusServer)(nil),
	Methods: []grpc.MethodDesc{
		{MethodName: "Lookup", Handler: lookupHandler},
		{MethodName: "BatchLookup", Handler: batchLookupHandler},
		{MethodName: "RunUpdate", Handler: runUpdateHandler},
		{MethodName: "Health", Handler: healthHandler},
		{MethodName: "ListFeedSources", Handler: listFeedSourcesHandler},
		{MethodName: "CreateFeedSource", Handler: createFeedSourceHandler},
		{MethodName: "UpdateFeedSource", Handler: updateFeedSourceHandler},
		{MethodName: "DeleteFeedSource", Handler: deleteFeedSourceHandler},
	},
	Streams:  []grpc.StreamDesc{},
	Metadata: "ipcensus/v1/ipcensus.proto",
}

func RegisterIPCensusServer(s grpc.ServiceRegistrar, srv IPCensusServer) {
	s.RegisterService(&ServiceDesc, srv)
}

func lookupHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(LookupRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IPCensusServer).Lookup(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Lookup"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IPCensusServer).Lookup(ctx, req.(*LookupRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func batchLookupHandler(
	srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(BatchLookupRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IPCensusServer).BatchLookup(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/BatchLookup"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IPCensusServer).BatchLookup(ctx, req.(*BatchLookupRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func runUpdateHandler(
	srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(RunUpdateRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IPCensusServer).RunUpdate(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/RunUpdate"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IPCensusServer).RunUpdate(ctx, req.(*RunUpdateRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func healthHandler(srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor) (any, error) {
	in := new(HealthRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IPCensusServer).Health(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/Health"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IPCensusServer).Health(ctx, req.(*HealthRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func listFeedSourcesHandler(
	srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(ListFeedSourcesRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IPCensusServer).ListFeedSources(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/ListFeedSources"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IPCensusServer).ListFeedSources(ctx, req.(*ListFeedSourcesRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func createFeedSourceHandler(
	srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(CreateFeedSourceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IPCensusServer).CreateFeedSource(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/CreateFeedSource"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IPCensusServer).CreateFeedSource(ctx, req.(*CreateFeedSourceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func updateFeedSourceHandler(
	srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(UpdateFeedSourceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IPCensusServer).UpdateFeedSource(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/UpdateFeedSource"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IPCensusServer).UpdateFeedSource(ctx, req.(*UpdateFeedSourceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

func deleteFeedSourceHandler(
	srv any, ctx context.Context, dec func(any) error, interceptor grpc.UnaryServerInterceptor,
) (any, error) {
	in := new(DeleteFeedSourceRequest)
	if err := dec(in); err != nil {
		return nil, err
	}
	if interceptor == nil {
		return srv.(IPCensusServer).DeleteFeedSource(ctx, in)
	}
	info := &grpc.UnaryServerInfo{Server: srv, FullMethod: "/" + serviceName + "/DeleteFeedSource"}
	handler := func(ctx context.Context, req any) (any, error) {
		return srv.(IPCensusServer).DeleteFeedSource(ctx, req.(*DeleteFeedSourceRequest))
	}
	return interceptor(ctx, in, info, handler)
}

// IPCensusClient is the client-side stub protoc-gen-go-grpc would emit.
type IPCensusClient interface {
	Lookup(ctx context.Context, in *LookupRequest, opts ...grpc.CallOption) (*LookupResponse, error)
	BatchLookup(ctx context.Context, in *BatchLookupRequest, opts ...grpc.CallOption) (*BatchLookupResponse, error)
	RunUpdate(ctx context.Context, in *RunUpdateRequest, opts ...grpc.CallOption) (*RunUpdateResponse, error)
	Health(ctx context.Context, in *HealthRequest, opts ...grpc.CallOption) (*HealthResponse, error)
	ListFeedSources(
		ctx context.Context, in *ListFeedSourcesRequest, opts ...grpc.CallOption,
	) (*ListFeedSourcesResponse, error)
	CreateFeedSource(ctx context.Context, in *CreateFeedSourceRequest, opts ...grpc.CallOption) (*Empty, error)
	UpdateFeedSource(ctx context.Context, in *UpdateFeedSourceRequest, opts ...grpc.CallOption) (*Empty, error)
	DeleteFeedSource(ctx context.Context, in *DeleteFeedSourceRequest, opts ...grpc.CallOption) (*Empty, error)
}

type ipCensusClient struct {
	cc grpc.ClientConnInterface
}

// NewIPCensusClient wraps cc, forcing every call onto the JSON codec so
// no protobuf-generated marshaling is required client-side either.
func NewIPCensusClient(cc grpc.ClientConnInterface) IPCensusClient {
	return &ipCensusClient{cc: cc}
}

func withJSONCodec(opts []grpc.CallOption) []grpc.CallOption {
	return append(opts, grpc.CallContentSubtype(codecName))
}

func (c *ipCensusClient) Lookup(
	ctx context.Context, in *LookupRequest, opts ...grpc.CallOption,
) (*LookupResponse, error) {
	out := new(LookupResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Lookup", in, out, withJSONCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ipCensusClient) BatchLookup(
	ctx context.Context, in *BatchLookupRequest, opts ...grpc.CallOption,
) (*BatchLookupResponse, error) {
	out := new(BatchLookupResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/BatchLookup", in, out, withJSONCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ipCensusClient) RunUpdate(
	ctx context.Context, in *RunUpdateRequest, opts ...grpc.CallOption,
) (*RunUpdateResponse, error) {
	out := new(RunUpdateResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/RunUpdate", in, out, withJSONCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ipCensusClient) Health(
	ctx context.Context, in *HealthRequest, opts ...grpc.CallOption,
) (*HealthResponse, error) {
	out := new(HealthResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/Health", in, out, withJSONCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ipCensusClient) ListFeedSources(
	ctx context.Context, in *ListFeedSourcesRequest, opts ...grpc.CallOption,
) (*ListFeedSourcesResponse, error) {
	out := new(ListFeedSourcesResponse)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/ListFeedSources", in, out, withJSONCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ipCensusClient) CreateFeedSource(
	ctx context.Context, in *CreateFeedSourceRequest, opts ...grpc.CallOption,
) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/CreateFeedSource", in, out, withJSONCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ipCensusClient) UpdateFeedSource(
	ctx context.Context, in *UpdateFeedSourceRequest, opts ...grpc.CallOption,
) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/UpdateFeedSource", in, out, withJSONCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}

func (c *ipCensusClient) DeleteFeedSource(
	ctx context.Context, in *DeleteFeedSourceRequest, opts ...grpc.CallOption,
) (*Empty, error) {
	out := new(Empty)
	if err := c.cc.Invoke(ctx, "/"+serviceName+"/DeleteFeedSource", in, out, withJSONCodec(opts)...); err != nil {
		return nil, err
	}
	return out, nil
}
