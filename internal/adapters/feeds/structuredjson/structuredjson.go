// Package structuredjson implements the FeedPlugin contract for cloud
// provider JSON prefix feeds (AWS ip-ranges.json, GCP cloud.json,
// Fastly's public ranges) — a top-level array of prefix objects, each
// carrying the CIDR under one field name and assorted metadata under
// others. Fields are read with buger/jsonparser's streaming accessors
// rather than unmarshaling into per-provider structs, so one plugin
// configuration covers any feed sharing this array-of-objects shape.
package structuredjson

import (
	"bufio"
	"context"
	"fmt"
	"net/http"
	"os"
	"time"

	"github.com/buger/jsonparser"

	"github.com/snisarenko-labs/ipcensus/internal/adapters/feedutil"
	"github.com/snisarenko-labs/ipcensus/internal/domain/interval"
	"github.com/snisarenko-labs/ipcensus/internal/domain/ipaddr"
	"github.com/snisarenko-labs/ipcensus/internal/ports"
)

const fetchTimeout = 30 * time.Second

// FieldMap names the JSON keys this feed uses for the array of prefix
// entries and the metadata carried on each one. PrefixKey and
// ArrayPath are required; the rest are read best-effort and left blank
// in the tag when absent.
type FieldMap struct {
	ArrayPath []string // path to the prefix array, e.g. {"prefixes"}
	PrefixKey string   // key holding the CIDR string, e.g. "ip_prefix" or "ipv4Prefix"
	Service   string   // key holding the service name, if any
	Region    string   // key holding the region/scope name, if any
}

// Plugin fetches a structured JSON prefix feed over HTTPS and writes
// each parsed CIDR as a canonical staging line.
type Plugin struct {
	meta       ports.FeedMetadata
	url        string
	tagType    string
	provider   string
	fields     FieldMap
	httpClient *http.Client
}

var _ ports.FeedPlugin = (*Plugin)(nil)

// New builds a plugin for the given source URL and field layout.
// provider labels the cloud vendor (e.g. "aws", "gcp") in emitted tags.
func New(name, version, description, url, tagType, provider string, fields FieldMap, abortOnFail bool, client *http.Client) *Plugin {
	if client == nil {
		client = http.DefaultClient
	}
	return &Plugin{
		meta: ports.FeedMetadata{
			Name:        name,
			Version:     version,
			Description: description,
			AbortOnFail: abortOnFail,
		},
		url:        url,
		tagType:    tagType,
		provider:   provider,
		fields:     fields,
		httpClient: client,
	}
}

func (p *Plugin) Metadata() ports.FeedMetadata {
	return p.meta
}

// Load fetches the feed and walks its prefix array, emitting one
// staging line per entry whose prefix key parses as an IPv4 CIDR.
// IPv6 entries (ipv6_prefixes-style arrays, or dual-stack entries under
// the same array) are skipped, not errored: the system does not index
// IPv6.
func (p *Plugin) Load(ctx context.Context, stagingPath string) error {
	body, err := feedutil.Fetch(ctx, p.httpClient, p.url, fetchTimeout)
	if err != nil {
		return fmt.Errorf("structuredjson %s: %w", p.meta.Name, err)
	}

	f, err := os.Create(stagingPath)
	if err != nil {
		return fmt.Errorf("structuredjson %s: create staging file: %w", p.meta.Name, err)
	}
	defer f.Close()
	w := bufio.NewWriter(f)

	var entryErr error
	_, arrErr := jsonparser.ArrayEach(body, func(entry []byte, dataType jsonparser.ValueType, offset int, err error) {
		if entryErr != nil || err != nil {
			return
		}
		if writeErr := p.writeEntry(w, entry); writeErr != nil {
			entryErr = writeErr
		}
	}, p.fields.ArrayPath...)
	if arrErr != nil {
		return fmt.Errorf("structuredjson %s: walk prefix array: %w", p.meta.Name, arrErr)
	}
	if entryErr != nil {
		return fmt.Errorf("structuredjson %s: %w", p.meta.Name, entryErr)
	}
	return w.Flush()
}

func (p *Plugin) writeEntry(w *bufio.Writer, entry []byte) error {
	prefix, err := jsonparser.GetString(entry, p.fields.PrefixKey)
	if err != nil {
		// Missing prefix field (e.g. this entry is the ipv6 sibling array
		// under a different key); skip rather than fail the whole feed.
		return nil
	}
	start, end, err := ipaddr.CIDRRange(prefix)
	if err != nil {
		return nil
	}

	tag := interval.Tag{
		Type:     p.tagType,
		Source:   p.meta.Name,
		Provider: p.provider,
	}
	if p.fields.Service != "" {
		if v, err := jsonparser.GetString(entry, p.fields.Service); err == nil {
			tag.Service = v
		}
	}
	if p.fields.Region != "" {
		if v, err := jsonparser.GetString(entry, p.fields.Region); err == nil {
			tag.Region = v
		}
	}

	line, err := feedutil.FormatLine(start, end, tag)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, line)
	return err
}

// Validate reparses every staging line, failing on the first malformed
// one, and rejects a staging file with no usable lines at all.
func (p *Plugin) Validate(stagingPath string) error {
	f, err := os.Open(stagingPath)
	if err != nil {
		return fmt.Errorf("structuredjson %s: open staging file: %w", p.meta.Name, err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if _, _, _, err := feedutil.ParseLine(scanner.Text()); err != nil {
			return fmt.Errorf("structuredjson %s: %w", p.meta.Name, err)
		}
		lines++
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if lines == 0 {
		return fmt.Errorf("structuredjson %s: staging file is empty", p.meta.Name)
	}
	return nil
}
