//go:build integration
// +build integration

package integration_test

import (
	"context"
	"net"
	"os"
	"os/exec"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	pbv1 "github.com/snisarenko-labs/ipcensus/api/proto/ipcensus/v1"
	"github.com/snisarenko-labs/ipcensus/internal/ipcensusclient"
)

const (
	project    = "ipcensus-it"
	composeYml = "../../docker-compose-it.yml"
	grpcAddr   = "127.0.0.1:50061"

	// fixtureURL is served by the compose stack's fixture HTTP server; it
	// holds a simplelist feed of known-denylisted addresses so update runs
	// have something deterministic to fetch and flatten.
	fixtureURL = "http://fixtures/denylist.txt"
)

func TestMain(m *testing.M) {
	ctx, cancel := context.WithTimeout(context.Background(), 4*time.Minute)
	defer cancel()

	must(ctx, "docker", "compose", "-f", composeYml, "-p", project, "up", "-d", "--build")
	mustWaitTCP(ctx, grpcAddr, 90*time.Second)
	mustWaitReady(grpcAddr, 90*time.Second)

	code := m.Run()

	if code != 0 {
		_ = exec.Command("docker", "compose", "-f", composeYml, "-p", project, "logs").Run()
	}

	_ = exec.CommandContext(context.Background(),
		"docker", "compose", "-f", composeYml, "-p", project, "down", "-v",
	).Run()

	os.Exit(code)
}

func Test_Lookup_InvalidAndNotFound(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	cl, err := ipcensusclient.New(grpcAddr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cl.Close() })

	resp, err := cl.Lookup(ctx, "not-an-ip", false)
	require.NoError(t, err)
	require.Equal(t, "INVALID", resp.Outcome)

	resp, err = cl.Lookup(ctx, "203.0.113.9", false)
	require.NoError(t, err)
	require.Equal(t, "NOT_FOUND", resp.Outcome)
}

func Test_FeedSourceLifecycle_UpdateThenLookup(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Second)
	defer cancel()

	cl, err := ipcensusclient.New(grpcAddr)
	require.NoError(t, err)
	t.Cleanup(func() { _ = cl.Close() })

	source := &pbv1.FeedSourceConfig{
		Name:    "it_denylist",
		Kind:    "simplelist",
		Enabled: true,
		Params: map[string]string{
			"url":         fixtureURL,
			"tag_type":    "denylist",
			"version":     "1",
			"description": "integration test fixture",
		},
	}
	require.NoError(t, cl.CreateFeedSource(ctx, source))
	t.Cleanup(func() { _ = cl.DeleteFeedSource(context.Background(), source.Name) })

	list, err := cl.ListFeedSources(ctx)
	require.NoError(t, err)
	require.Contains(t, feedSourceNames(list.Sources), source.Name)

	_, err = cl.RunUpdate(ctx, false)
	require.NoError(t, err)

	require.Eventually(t, func() bool {
		h, err := cl.Health(ctx)
		return err == nil && h.Status == "healthy" && h.LastUpdatePhas == "completed"
	}, 30*time.Second, 500*time.Millisecond, "expected update to complete")

	resp, err := cl.Lookup(ctx, "198.51.100.23", false)
	require.NoError(t, err)
	require.Equal(t, "FOUND", resp.Outcome)
	require.Contains(t, resp.Tags, "denylist")

	batch, err := cl.BatchLookup(ctx, []string{"198.51.100.23", "203.0.113.9", "bad"}, false)
	require.NoError(t, err)
	require.Len(t, batch.Results, 3)
	require.Equal(t, "FOUND", batch.Results[0].Outcome)
	require.Equal(t, "NOT_FOUND", batch.Results[1].Outcome)
	require.Equal(t, "INVALID", batch.Results[2].Outcome)
}

func feedSourceNames(sources []*pbv1.FeedSourceConfig) []string {
	names := make([]string, len(sources))
	for i, s := range sources {
		names[i] = s.Name
	}
	return names
}

func must(ctx context.Context, name string, args ...string) {
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = os.Stdout
	cmd.Stderr = os.Stderr
	if err := cmd.Run(); err != nil {
		panic(err)
	}
}

func mustWaitTCP(ctx context.Context, address string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)
	for time.Now().Before(deadline) {
		d := net.Dialer{Timeout: 500 * time.Millisecond}
		c, err := d.DialContext(ctx, "tcp", address)
		if err == nil {
			_ = c.Close()
			return
		}
		time.Sleep(500 * time.Millisecond)
	}
	panic("timeout waiting for tcp " + address)
}

func mustWaitReady(addr string, timeout time.Duration) {
	deadline := time.Now().Add(timeout)

	for time.Now().Before(deadline) {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)

		c, err := ipcensusclient.New(addr)
		if err == nil {
			_, err = c.Health(ctx)
			c.Close()
			cancel()

			if err == nil {
				return
			}
		} else {
			cancel()
		}

		time.Sleep(400 * time.Millisecond)
	}

	panic("timeout waiting for ipcensusd grpc ready " + addr)
}
