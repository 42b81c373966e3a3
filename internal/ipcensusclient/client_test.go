package ipcensusclient

import (
	"context"
	"net"
	"reflect"
	"testing"
	"unsafe"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/status"

	pbv1 "github.com/snisarenko-labs/ipcensus/api/proto/ipcensus/v1"
)

type fakePBClient struct {
	lookupResp *pbv1.LookupResponse
	lookupErr  error
	healthResp *pbv1.HealthResponse
	listResp   *pbv1.ListFeedSourcesResponse
	createErr  error
	deleteErr  error

	lastLookup *pbv1.LookupRequest
	lastCreate *pbv1.CreateFeedSourceRequest
	lastDelete *pbv1.DeleteFeedSourceRequest
}

func (f *fakePBClient) Lookup(
	_ context.Context, in *pbv1.LookupRequest, _ ...grpc.CallOption,
) (*pbv1.LookupResponse, error) {
	f.lastLookup = in
	return f.lookupResp, f.lookupErr
}

func (f *fakePBClient) BatchLookup(
	_ context.Context, _ *pbv1.BatchLookupRequest, _ ...grpc.CallOption,
) (*pbv1.BatchLookupResponse, error) {
	return &pbv1.BatchLookupResponse{}, nil
}

func (f *fakePBClient) RunUpdate(
	_ context.Context, in *pbv1.RunUpdateRequest, _ ...grpc.CallOption,
) (*pbv1.RunUpdateResponse, error) {
	return &pbv1.RunUpdateResponse{Skipped: !in.Async}, nil
}

func (f *fakePBClient) Health(
	_ context.Context, _ *pbv1.HealthRequest, _ ...grpc.CallOption,
) (*pbv1.HealthResponse, error) {
	return f.healthResp, nil
}

func (f *fakePBClient) ListFeedSources(
	_ context.Context, _ *pbv1.ListFeedSourcesRequest, _ ...grpc.CallOption,
) (*pbv1.ListFeedSourcesResponse, error) {
	return f.listResp, nil
}

func (f *fakePBClient) CreateFeedSource(
	_ context.Context, in *pbv1.CreateFeedSourceRequest, _ ...grpc.CallOption,
) (*pbv1.Empty, error) {
	f.lastCreate = in
	return &pbv1.Empty{}, f.createErr
}

func (f *fakePBClient) UpdateFeedSource(
	_ context.Context, _ *pbv1.UpdateFeedSourceRequest, _ ...grpc.CallOption,
) (*pbv1.Empty, error) {
	return &pbv1.Empty{}, nil
}

func (f *fakePBClient) DeleteFeedSource(
	_ context.Context, in *pbv1.DeleteFeedSourceRequest, _ ...grpc.CallOption,
) (*pbv1.Empty, error) {
	f.lastDelete = in
	return &pbv1.Empty{}, f.deleteErr
}

func setPBClient(c *Client, pb pbv1.IPCensusClient) {
	v := reflect.ValueOf(c).Elem()
	f := v.FieldByName("client")
	fv := reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
	fv.Set(reflect.ValueOf(pb))
}

func setConn(c *Client, conn *grpc.ClientConn) {
	v := reflect.ValueOf(c).Elem()
	f := v.FieldByName("conn")
	fv := reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
	fv.Set(reflect.ValueOf(conn))
}

func TestLookupAndRegistryMethods_ForwardToPB(t *testing.T) {
	c := &Client{}
	fake := &fakePBClient{
		lookupResp: &pbv1.LookupResponse{Outcome: "FOUND"},
		healthResp: &pbv1.HealthResponse{Status: "healthy"},
		listResp:   &pbv1.ListFeedSourcesResponse{Sources: []*pbv1.FeedSourceConfig{{Name: "aws_ip_ranges"}}},
	}
	setPBClient(c, fake)

	resp, err := c.Lookup(context.Background(), "1.2.3.4", true)
	if err != nil {
		t.Fatalf("Lookup returned error: %v", err)
	}
	if resp.Outcome != "FOUND" {
		t.Fatalf("Outcome = %q, want FOUND", resp.Outcome)
	}
	if fake.lastLookup.Ip != "1.2.3.4" || !fake.lastLookup.IncludeDnsbl {
		t.Fatalf("unexpected Lookup args: %+v", fake.lastLookup)
	}

	fake.lookupErr = status.Errorf(codes.Unavailable, "boom")
	if _, err := c.Lookup(context.Background(), "1.2.3.4", false); err == nil {
		t.Fatalf("expected error from Lookup, got nil")
	}

	health, err := c.Health(context.Background())
	if err != nil || health.Status != "healthy" {
		t.Fatalf("Health = %+v, err=%v", health, err)
	}

	list, err := c.ListFeedSources(context.Background())
	if err != nil || len(list.Sources) != 1 || list.Sources[0].Name != "aws_ip_ranges" {
		t.Fatalf("ListFeedSources = %+v, err=%v", list, err)
	}

	if err := c.CreateFeedSource(context.Background(), &pbv1.FeedSourceConfig{Name: "spamhaus_drop"}); err != nil {
		t.Fatalf("CreateFeedSource error: %v", err)
	}
	if fake.lastCreate.Source.Name != "spamhaus_drop" {
		t.Fatalf("unexpected CreateFeedSource arg: %+v", fake.lastCreate)
	}

	fake.deleteErr = status.Errorf(codes.NotFound, "no such source")
	if err := c.DeleteFeedSource(context.Background(), "spamhaus_drop"); err == nil {
		t.Fatalf("expected error from DeleteFeedSource, got nil")
	}
	if fake.lastDelete.Name != "spamhaus_drop" {
		t.Fatalf("unexpected DeleteFeedSource arg: %+v", fake.lastDelete)
	}
}

func TestClose_NilAndRealConn(t *testing.T) {
	c := &Client{}
	if err := c.Close(); err != nil {
		t.Fatalf("Close on empty client returned error: %v", err)
	}

	lis, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen failed: %v", err)
	}
	srv := grpc.NewServer()
	pbv1.RegisterIPCensusServer(srv, &pbv1.UnimplementedIPCensusServer{})

	go srv.Serve(lis)
	defer srv.Stop()

	addr := lis.Addr().String()
	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("dial failed: %v", err)
	}

	c2 := &Client{}
	setConn(c2, conn)
	setPBClient(c2, pbv1.NewIPCensusClient(conn))

	if err := c2.Close(); err != nil {
		t.Fatalf("Close returned error: %v", err)
	}
}
