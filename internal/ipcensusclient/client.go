// Package ipcensusclient is a thin gRPC client wrapper around the
// ipcensus service, used by ipcensusctl and integration tests so
// neither has to touch the generated-shaped stubs directly.
package ipcensusclient

import (
	"context"
	"fmt"

	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	pbv1 "github.com/snisarenko-labs/ipcensus/api/proto/ipcensus/v1"
)

type Client struct {
	conn   *grpc.ClientConn
	client pbv1.IPCensusClient
}

// New dials address (e.g. "localhost:50051") and wraps the connection.
func New(address string) (*Client, error) {
	conn, err := grpc.NewClient(address, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		return nil, fmt.Errorf("ipcensusclient: dial %s: %w", address, err)
	}

	return &Client{
		conn:   conn,
		client: pbv1.NewIPCensusClient(conn),
	}, nil
}

// Close closes the underlying gRPC connection.
func (c *Client) Close() error {
	if c == nil || c.conn == nil {
		return nil
	}
	return c.conn.Close()
}

// Lookup classifies a single IP address.
func (c *Client) Lookup(ctx context.Context, ip string, includeDNSBL bool) (*pbv1.LookupResponse, error) {
	return c.client.Lookup(ctx, &pbv1.LookupRequest{Ip: ip, IncludeDnsbl: includeDNSBL})
}

// BatchLookup classifies many IP addresses in one round trip.
func (c *Client) BatchLookup(ctx context.Context, ips []string, includeDNSBL bool) (*pbv1.BatchLookupResponse, error) {
	return c.client.BatchLookup(ctx, &pbv1.BatchLookupRequest{Ips: ips, IncludeDnsbl: includeDNSBL})
}

// RunUpdate triggers an out-of-band update cycle.
func (c *Client) RunUpdate(ctx context.Context, async bool) (*pbv1.RunUpdateResponse, error) {
	return c.client.RunUpdate(ctx, &pbv1.RunUpdateRequest{Async: async})
}

// Health reports the current index/update state.
func (c *Client) Health(ctx context.Context) (*pbv1.HealthResponse, error) {
	return c.client.Health(ctx, &pbv1.HealthRequest{})
}

// ListFeedSources returns every configured feed source.
func (c *Client) ListFeedSources(ctx context.Context) (*pbv1.ListFeedSourcesResponse, error) {
	return c.client.ListFeedSources(ctx, &pbv1.ListFeedSourcesRequest{})
}

// CreateFeedSource registers a new feed source.
func (c *Client) CreateFeedSource(ctx context.Context, src *pbv1.FeedSourceConfig) error {
	_, err := c.client.CreateFeedSource(ctx, &pbv1.CreateFeedSourceRequest{Source: src})
	return err
}

// UpdateFeedSource replaces an existing feed source's configuration.
func (c *Client) UpdateFeedSource(ctx context.Context, src *pbv1.FeedSourceConfig) error {
	_, err := c.client.UpdateFeedSource(ctx, &pbv1.UpdateFeedSourceRequest{Source: src})
	return err
}

// DeleteFeedSource removes a feed source by name.
func (c *Client) DeleteFeedSource(ctx context.Context, name string) error {
	_, err := c.client.DeleteFeedSource(ctx, &pbv1.DeleteFeedSourceRequest{Name: name})
	return err
}
