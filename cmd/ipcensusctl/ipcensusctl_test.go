package main

import (
	"bytes"
	"context"
	"errors"
	"reflect"
	"testing"
	"unsafe"

	"google.golang.org/grpc"

	pbv1 "github.com/snisarenko-labs/ipcensus/api/proto/ipcensus/v1"
	"github.com/snisarenko-labs/ipcensus/internal/ipcensusclient"
)

type fakePBClient struct {
	lookupResp *pbv1.LookupResponse
	lookupErr  error
	updateResp *pbv1.RunUpdateResponse
	healthResp *pbv1.HealthResponse
	listResp   *pbv1.ListFeedSourcesResponse
	createErr  error
	deleteErr  error

	lastCreate *pbv1.CreateFeedSourceRequest
	lastDelete *pbv1.DeleteFeedSourceRequest
}

func (f *fakePBClient) Lookup(
	_ context.Context, _ *pbv1.LookupRequest, _ ...grpc.CallOption,
) (*pbv1.LookupResponse, error) {
	return f.lookupResp, f.lookupErr
}

func (f *fakePBClient) BatchLookup(
	_ context.Context, in *pbv1.BatchLookupRequest, _ ...grpc.CallOption,
) (*pbv1.BatchLookupResponse, error) {
	results := make([]*pbv1.LookupResponse, len(in.Ips))
	for i := range in.Ips {
		results[i] = &pbv1.LookupResponse{Outcome: "NOT_FOUND"}
	}
	return &pbv1.BatchLookupResponse{Results: results}, nil
}

func (f *fakePBClient) RunUpdate(
	_ context.Context, _ *pbv1.RunUpdateRequest, _ ...grpc.CallOption,
) (*pbv1.RunUpdateResponse, error) {
	return f.updateResp, nil
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

// setPBClient sets the unexported pb client field on ipcensusclient.Client
// using reflection, so tests can inject a fake implementation.
func setPBClient(c *ipcensusclient.Client, pb pbv1.IPCensusClient) {
	v := reflect.ValueOf(c).Elem()
	f := v.FieldByName("client")
	fv := reflect.NewAt(f.Type(), unsafe.Pointer(f.UnsafeAddr())).Elem()
	fv.Set(reflect.ValueOf(pb))
}

func TestLookupCmd_PrintsOutcome(t *testing.T) {
	cmd := newLookupCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	_ = cmd.Flags().Set("ip", "1.2.3.4")

	fake := &fakePBClient{lookupResp: &pbv1.LookupResponse{Outcome: "FOUND"}}
	c := &ipcensusclient.Client{}
	setPBClient(c, fake)
	cmd.SetContext(context.WithValue(context.Background(), clientKey, c))

	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("RunE returned error: %v", err)
	}
	if got := out.String(); !bytes.Contains([]byte(got), []byte("FOUND")) {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestLookupCmd_ErrorFromClient(t *testing.T) {
	cmd := newLookupCmd()
	_ = cmd.Flags().Set("ip", "1.2.3.4")

	fake := &fakePBClient{lookupErr: errors.New("rpc failed")}
	c := &ipcensusclient.Client{}
	setPBClient(c, fake)
	cmd.SetContext(context.WithValue(context.Background(), clientKey, c))

	if err := cmd.RunE(cmd, nil); err == nil {
		t.Fatalf("expected error, got nil")
	}
}

func TestBatchLookupCmd_SplitsIPs(t *testing.T) {
	cmd := newBatchLookupCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	_ = cmd.Flags().Set("ips", "1.1.1.1,2.2.2.2")

	fake := &fakePBClient{}
	c := &ipcensusclient.Client{}
	setPBClient(c, fake)
	cmd.SetContext(context.WithValue(context.Background(), clientKey, c))

	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := out.String(); bytes.Count([]byte(got), []byte("NOT_FOUND")) != 2 {
		t.Fatalf("expected two NOT_FOUND lines, got %q", got)
	}
}

func TestUpdateCmd_ReportsSkipped(t *testing.T) {
	cmd := newUpdateCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	fake := &fakePBClient{updateResp: &pbv1.RunUpdateResponse{Skipped: true}}
	c := &ipcensusclient.Client{}
	setPBClient(c, fake)
	cmd.SetContext(context.WithValue(context.Background(), clientKey, c))

	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := out.String(); !bytes.Contains([]byte(got), []byte("skipped")) {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestHealthCmd_PrintsFields(t *testing.T) {
	cmd := newHealthCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)

	fake := &fakePBClient{healthResp: &pbv1.HealthResponse{Status: "healthy", IndexReady: true, DataSize: 42}}
	c := &ipcensusclient.Client{}
	setPBClient(c, fake)
	cmd.SetContext(context.WithValue(context.Background(), clientKey, c))

	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	got := out.String()
	if !bytes.Contains([]byte(got), []byte("status: healthy")) || !bytes.Contains([]byte(got), []byte("data_size: 42")) {
		t.Fatalf("unexpected output: %q", got)
	}
}

func TestFeedSourceCreateCmd_ParsesParams(t *testing.T) {
	cmd := newFeedSourceCreateCmd()
	_ = cmd.Flags().Set("name", "aws_ip_ranges")
	_ = cmd.Flags().Set("kind", "structuredjson")
	_ = cmd.Flags().Set("param", "array_path=prefixes")
	_ = cmd.Flags().Set("param", "prefix_key=ip_prefix")

	fake := &fakePBClient{}
	c := &ipcensusclient.Client{}
	setPBClient(c, fake)
	cmd.SetContext(context.WithValue(context.Background(), clientKey, c))

	if err := cmd.RunE(cmd, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fake.lastCreate.Source.Params["array_path"] != "prefixes" || fake.lastCreate.Source.Params["prefix_key"] != "ip_prefix" {
		t.Fatalf("unexpected params: %+v", fake.lastCreate.Source.Params)
	}
}

func TestFeedSourceCreateCmd_RejectsMalformedParam(t *testing.T) {
	cmd := newFeedSourceCreateCmd()
	_ = cmd.Flags().Set("name", "aws_ip_ranges")
	_ = cmd.Flags().Set("kind", "structuredjson")
	_ = cmd.Flags().Set("param", "not-a-key-value")

	c := &ipcensusclient.Client{}
	setPBClient(c, &fakePBClient{})
	cmd.SetContext(context.WithValue(context.Background(), clientKey, c))

	if err := cmd.RunE(cmd, nil); err == nil {
		t.Fatalf("expected error for malformed --param, got nil")
	}
}

func TestFeedSourceDeleteCmd_ForwardsError(t *testing.T) {
	cmd := newFeedSourceDeleteCmd()
	_ = cmd.Flags().Set("name", "spamhaus_drop")

	fake := &fakePBClient{deleteErr: errors.New("not found")}
	c := &ipcensusclient.Client{}
	setPBClient(c, fake)
	cmd.SetContext(context.WithValue(context.Background(), clientKey, c))

	if err := cmd.RunE(cmd, nil); err == nil {
		t.Fatalf("expected error, got nil")
	}
	if fake.lastDelete.Name != "spamhaus_drop" {
		t.Fatalf("unexpected delete arg: %+v", fake.lastDelete)
	}
}
