// Package grpcserver is the thin admin/query surface over the lookup
// service and update coordinator: every method does input validation and
// response shaping only, delegating the actual work to app/*, the way
// the teacher's grpcserver.Server delegates to app.RateLimiterUseCase and
// app.SubnetListUseCase.
package grpcserver

import (
	"context"
	"encoding/json"
	"net"

	pbv1 "github.com/snisarenko-labs/ipcensus/api/proto/ipcensus/v1"
	"github.com/snisarenko-labs/ipcensus/internal/app/lookup"
	"github.com/snisarenko-labs/ipcensus/internal/app/update"
	"github.com/snisarenko-labs/ipcensus/internal/ports"
)

var _ pbv1.IPCensusServer = (*Server)(nil)

// UpdateRunner is the subset of *update.Coordinator the server needs:
// triggering a cycle and reporting health.
type UpdateRunner interface {
	RunUpdate(ctx context.Context) error
	Health(ctx context.Context, liveKey string) (update.Health, error)
}

type Server struct {
	pbv1.UnimplementedIPCensusServer
	lookup   lookup.Service
	updater  UpdateRunner
	registry ports.FeedSourceRegistry
	liveKey  string
}

func NewServer(lookupSvc lookup.Service, updater UpdateRunner, registry ports.FeedSourceRegistry, liveKey string) *Server {
	return &Server{
		lookup:   lookupSvc,
		updater:  updater,
		registry: registry,
		liveKey:  liveKey,
	}
}

func (s *Server) Lookup(ctx context.Context, req *pbv1.LookupRequest) (*pbv1.LookupResponse, error) {
	if s.lookup == nil {
		return nil, ErrLookupNotConfigured
	}
	if net.ParseIP(req.Ip) == nil {
		return &pbv1.LookupResponse{Outcome: "INVALID"}, nil
	}

	res, err := s.lookup.Lookup(ctx, req.Ip, req.IncludeDnsbl)
	if err != nil {
		return nil, err
	}
	return toLookupResponse(res), nil
}

func (s *Server) BatchLookup(ctx context.Context, req *pbv1.BatchLookupRequest) (*pbv1.BatchLookupResponse, error) {
	if s.lookup == nil {
		return nil, ErrLookupNotConfigured
	}

	out := make([]*pbv1.LookupResponse, len(req.Ips))
	for i, ip := range req.Ips {
		if net.ParseIP(ip) == nil {
			out[i] = &pbv1.LookupResponse{Outcome: "INVALID"}
			continue
		}
		res, err := s.lookup.Lookup(ctx, ip, req.IncludeDnsbl)
		if err != nil {
			return nil, err
		}
		out[i] = toLookupResponse(res)
	}
	return &pbv1.BatchLookupResponse{Results: out}, nil
}

func (s *Server) RunUpdate(ctx context.Context, req *pbv1.RunUpdateRequest) (*pbv1.RunUpdateResponse, error) {
	if s.updater == nil {
		return nil, ErrUpdateNotConfigured
	}

	run := func() error { return s.updater.RunUpdate(ctx) }
	if req.Async {
		go func() { _ = run() }()
		return &pbv1.RunUpdateResponse{}, nil
	}

	if err := run(); err != nil {
		if err == update.ErrSkipped {
			return &pbv1.RunUpdateResponse{Skipped: true}, nil
		}
		return &pbv1.RunUpdateResponse{Error: err.Error()}, nil
	}
	return &pbv1.RunUpdateResponse{}, nil
}

func (s *Server) Health(ctx context.Context, _ *pbv1.HealthRequest) (*pbv1.HealthResponse, error) {
	if s.updater == nil {
		return nil, ErrUpdateNotConfigured
	}
	h, err := s.updater.Health(ctx, s.liveKey)
	if err != nil {
		return nil, err
	}
	return &pbv1.HealthResponse{
		Status:         h.Status,
		IndexReady:     h.IndexReady,
		UpdateInProg:   h.Update.InProgress,
		LockStale:      h.Update.LockStale,
		LastUpdatePhas: string(h.Update.Status),
		DataSize:       h.Update.DataSize,
	}, nil
}

func (s *Server) ListFeedSources(
	ctx context.Context, _ *pbv1.ListFeedSourcesRequest,
) (*pbv1.ListFeedSourcesResponse, error) {
	if s.registry == nil {
		return nil, ErrRegistryNotConfigured
	}
	cfgs, err := s.registry.ListEnabled(ctx)
	if err != nil {
		return nil, err
	}
	out := make([]*pbv1.FeedSourceConfig, len(cfgs))
	for i, c := range cfgs {
		out[i] = &pbv1.FeedSourceConfig{
			Name: c.Name, Kind: c.Kind, Enabled: c.Enabled, AbortOnFail: c.AbortOnFail, Params: c.Params,
		}
	}
	return &pbv1.ListFeedSourcesResponse{Sources: out}, nil
}

func (s *Server) CreateFeedSource(ctx context.Context, req *pbv1.CreateFeedSourceRequest) (*pbv1.Empty, error) {
	if s.registry == nil {
		return nil, ErrRegistryNotConfigured
	}
	if req.Source == nil || req.Source.Name == "" {
		return nil, ErrEmptyFeedSourceName
	}
	if err := s.registry.Create(ctx, fromWireFeedSource(req.Source)); err != nil {
		return nil, err
	}
	return &pbv1.Empty{}, nil
}

func (s *Server) UpdateFeedSource(ctx context.Context, req *pbv1.UpdateFeedSourceRequest) (*pbv1.Empty, error) {
	if s.registry == nil {
		return nil, ErrRegistryNotConfigured
	}
	if req.Source == nil || req.Source.Name == "" {
		return nil, ErrEmptyFeedSourceName
	}
	if err := s.registry.Update(ctx, fromWireFeedSource(req.Source)); err != nil {
		return nil, err
	}
	return &pbv1.Empty{}, nil
}

func (s *Server) DeleteFeedSource(ctx context.Context, req *pbv1.DeleteFeedSourceRequest) (*pbv1.Empty, error) {
	if s.registry == nil {
		return nil, ErrRegistryNotConfigured
	}
	if req.Name == "" {
		return nil, ErrEmptyFeedSourceName
	}
	if err := s.registry.Delete(ctx, req.Name); err != nil {
		return nil, err
	}
	return &pbv1.Empty{}, nil
}

func fromWireFeedSource(c *pbv1.FeedSourceConfig) ports.FeedSourceConfig {
	return ports.FeedSourceConfig{
		Name: c.Name, Kind: c.Kind, Enabled: c.Enabled, AbortOnFail: c.AbortOnFail, Params: c.Params,
	}
}

func toLookupResponse(res lookup.Result) *pbv1.LookupResponse {
	switch res.Outcome {
	case lookup.Invalid:
		return &pbv1.LookupResponse{Outcome: "INVALID"}
	case lookup.NotFound:
		return &pbv1.LookupResponse{Outcome: "NOT_FOUND"}
	default:
		return &pbv1.LookupResponse{Outcome: "FOUND", Tags: toWireTags(res.Payload)}
	}
}

// toWireTags reconstructs the on-the-wire Tag list from a Record's
// payload: each entry is stored keyed by type with the type field itself
// stripped out (interval.Tag.withoutType), so Type is restored from the
// map key.
func toWireTags(payload map[string][]json.RawMessage) map[string][]pbv1.Tag {
	if payload == nil {
		return nil
	}
	out := make(map[string][]pbv1.Tag, len(payload))
	for typ, bodies := range payload {
		wire := make([]pbv1.Tag, 0, len(bodies))
		for _, body := range bodies {
			var t pbv1.Tag
			if err := json.Unmarshal(body, &t); err != nil {
				continue
			}
			t.Type = typ
			wire = append(wire, t)
		}
		out[typ] = wire
	}
	return out
}
