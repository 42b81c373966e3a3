// Package lookup implements the read path: given an IP, answer whether it
// is present on any indexed list and which ones.
package lookup

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/snisarenko-labs/ipcensus/internal/domain/interval"
	"github.com/snisarenko-labs/ipcensus/internal/domain/ipaddr"
	"github.com/snisarenko-labs/ipcensus/internal/ports"
)

// Outcome classifies a Lookup result so callers never have to distinguish
// "no tags" from "not found" from "bad input" by inspecting zero values.
type Outcome int

const (
	Found Outcome = iota
	NotFound
	Invalid
)

// Result is what Lookup returns; Payload is populated only when Outcome
// is Found.
type Result struct {
	Outcome Outcome
	Payload map[string][]json.RawMessage
}

// Service is the interface the delivery layer depends on.
type Service interface {
	Lookup(ctx context.Context, ipString string, includeDNSBL bool) (Result, error)
}

// Проверка реализации интерфейса Service на этапе компиляции.
var _ Service = (*LookupService)(nil)

const cacheTTL = 48 * time.Hour

// LookupService implements §4.E against the live sorted interval index,
// with an optional result cache and optional external DNSBL enrichment.
type LookupService struct {
	store   ports.IntervalStore
	cache   ports.CacheStore
	dnsbl   ports.DNSBLResolver
	liveKey string
}

func NewLookupService(store ports.IntervalStore, cache ports.CacheStore, dnsbl ports.DNSBLResolver, liveKey string) *LookupService {
	return &LookupService{store: store, cache: cache, dnsbl: dnsbl, liveKey: liveKey}
}

func (s *LookupService) Lookup(ctx context.Context, ipString string, includeDNSBL bool) (Result, error) {
	q, err := ipaddr.ToInt(ipString)
	if err != nil {
		return Result{Outcome: Invalid}, nil
	}

	cacheKey := cacheKeyFor(ipString, includeDNSBL)
	if s.cache != nil {
		if res, hit := s.readCache(ctx, cacheKey); hit {
			return res, nil
		}
	}

	// The DNSBL enrichment query runs concurrently with the index query:
	// it depends only on ipString, not on the index result, so there is
	// no reason to pay its latency sequentially.
	var dnsblTag interval.Tag
	var dnsblHit bool
	g, gctx := errgroup.WithContext(ctx)
	if includeDNSBL && s.dnsbl != nil {
		g.Go(func() error {
			tag, hit, err := s.dnsbl.Lookup(gctx, ipString)
			if err != nil {
				return nil // enrichment is best-effort, never fails the lookup
			}
			dnsblTag, dnsblHit = tag, hit
			return nil
		})
	}

	member, found, err := s.store.QueryFirstGE(ctx, s.liveKey, int64(q))
	if err != nil {
		_ = g.Wait()
		return Result{}, fmt.Errorf("lookup: query index: %w", err)
	}
	if !found {
		_ = g.Wait()
		s.writeCacheMiss(ctx, cacheKey)
		return Result{Outcome: NotFound}, nil
	}

	rec, err := interval.Parse(member)
	if err != nil {
		_ = g.Wait()
		return Result{}, fmt.Errorf("lookup: parse record: %w", err)
	}
	if !rec.Contains(q) {
		// The returned member is the nearest record at or past q, but q
		// falls in the gap before it.
		_ = g.Wait()
		s.writeCacheMiss(ctx, cacheKey)
		return Result{Outcome: NotFound}, nil
	}

	_ = g.Wait()
	payload := rec.Payload
	if dnsblHit {
		payload, _ = interval.AppendTag(payload, dnsblTag)
	}

	s.writeCacheHit(ctx, cacheKey, payload)
	return Result{Outcome: Found, Payload: payload}, nil
}

func (s *LookupService) readCache(ctx context.Context, key string) (Result, bool) {
	v, found, err := s.cache.Get(ctx, key)
	if err != nil || !found {
		return Result{}, false
	}
	if v == "null" {
		return Result{Outcome: NotFound}, true
	}
	var payload map[string][]json.RawMessage
	if err := json.Unmarshal([]byte(v), &payload); err != nil {
		// Corrupted entry: treated as a miss, not an error.
		return Result{}, false
	}
	return Result{Outcome: Found, Payload: payload}, true
}

func (s *LookupService) writeCacheMiss(ctx context.Context, key string) {
	if s.cache == nil {
		return
	}
	// Cache-write errors are swallowed: a lookup must never fail because
	// the cache is unavailable.
	_ = s.cache.Set(ctx, key, "null", cacheTTL)
}

func (s *LookupService) writeCacheHit(ctx context.Context, key string, payload map[string][]json.RawMessage) {
	if s.cache == nil {
		return
	}
	b, err := json.Marshal(payload)
	if err != nil {
		return
	}
	_ = s.cache.Set(ctx, key, string(b), cacheTTL)
}

func cacheKeyFor(ip string, includeDNSBL bool) string {
	if includeDNSBL {
		return fmt.Sprintf("cache:%s:dronebl", ip)
	}
	return fmt.Sprintf("cache:%s", ip)
}
