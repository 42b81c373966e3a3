// Package simplelist implements the FeedPlugin contract for plain CIDR/IP
// line-list sources such as Spamhaus DROP and Cloudflare's published
// ranges: one prefix or address per line, '#'/';' comment lines and
// trailing inline comments stripped.
package simplelist

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"net/http"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/snisarenko-labs/ipcensus/internal/adapters/feedutil"
	"github.com/snisarenko-labs/ipcensus/internal/domain/interval"
	"github.com/snisarenko-labs/ipcensus/internal/domain/ipaddr"
	"github.com/snisarenko-labs/ipcensus/internal/ports"
)

// entryPattern matches the prefix/address token a candidate line must
// start with; anything else (blank lines, stray text) is discarded.
var entryPattern = regexp.MustCompile(`^[0-9./]+`)

const fetchTimeout = 30 * time.Second

// Plugin fetches a plain-text list of CIDR ranges and single IPs over
// HTTPS and writes each as a canonical staging line.
type Plugin struct {
	meta       ports.FeedMetadata
	url        string
	tagType    string
	httpClient *http.Client
}

var _ ports.FeedPlugin = (*Plugin)(nil)

// New builds a plugin for the given source URL. tagType labels the
// emitted tags (e.g. "denylist"); name/version/description/abortOnFail
// populate the reported metadata.
func New(name, version, description, url, tagType string, abortOnFail bool, client *http.Client) *Plugin {
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
		httpClient: client,
	}
}

func (p *Plugin) Metadata() ports.FeedMetadata {
	return p.meta
}

// Load fetches the source, retrying with backoff, and writes one staging
// line per parsed entry to stagingPath. IPv6 lines and lines that don't
// start with a dotted-quad/CIDR token are silently dropped.
func (p *Plugin) Load(ctx context.Context, stagingPath string) error {
	body, err := feedutil.Fetch(ctx, p.httpClient, p.url, fetchTimeout)
	if err != nil {
		return fmt.Errorf("simplelist %s: %w", p.meta.Name, err)
	}

	f, err := os.Create(stagingPath)
	if err != nil {
		return fmt.Errorf("simplelist %s: create staging file: %w", p.meta.Name, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	scanner := bufio.NewScanner(bytes.NewReader(body))
	for scanner.Scan() {
		line, ok := p.parseLine(scanner.Text())
		if !ok {
			continue
		}
		out, err := feedutil.FormatLine(line.start, line.end, interval.Tag{
			Type:   p.tagType,
			Source: p.meta.Name,
		})
		if err != nil {
			return fmt.Errorf("simplelist %s: %w", p.meta.Name, err)
		}
		if _, err := fmt.Fprintln(w, out); err != nil {
			return fmt.Errorf("simplelist %s: write staging line: %w", p.meta.Name, err)
		}
	}
	if err := scanner.Err(); err != nil {
		return fmt.Errorf("simplelist %s: scan body: %w", p.meta.Name, err)
	}
	return w.Flush()
}

type entryRange struct {
	start, end uint32
}

// parseLine strips comments and whitespace, then parses the remaining
// token as either a bare IPv4 address or a CIDR prefix.
func (p *Plugin) parseLine(raw string) (entryRange, bool) {
	line := raw
	if i := strings.IndexAny(line, "#;"); i >= 0 {
		line = line[:i]
	}
	line = strings.TrimSpace(line)
	if line == "" {
		return entryRange{}, false
	}
	if !entryPattern.MatchString(line) {
		return entryRange{}, false
	}

	if strings.Contains(line, "/") {
		start, end, err := ipaddr.CIDRRange(line)
		if err != nil {
			return entryRange{}, false
		}
		return entryRange{start, end}, true
	}
	n, err := ipaddr.ToInt(line)
	if err != nil {
		return entryRange{}, false
	}
	return entryRange{n, n}, true
}

// Validate reparses every staging line, failing on the first malformed
// one, and rejects a staging file with no usable lines at all. Called by
// the coordinator before a feed's output is merged in.
func (p *Plugin) Validate(stagingPath string) error {
	f, err := os.Open(stagingPath)
	if err != nil {
		return fmt.Errorf("simplelist %s: open staging file: %w", p.meta.Name, err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if _, _, _, err := feedutil.ParseLine(scanner.Text()); err != nil {
			return fmt.Errorf("simplelist %s: %w", p.meta.Name, err)
		}
		lines++
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if lines == 0 {
		return fmt.Errorf("simplelist %s: staging file is empty", p.meta.Name)
	}
	return nil
}
