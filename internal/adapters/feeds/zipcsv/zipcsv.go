// Package zipcsv implements the FeedPlugin contract for MaxMind's
// GeoLite2-ASN-CSV feed: a zip archive containing an IPv4 blocks CSV
// (network, autonomous_system_number, autonomous_system_organization)
// joined against an ASN name is unnecessary here since the organization
// name already rides along on each row.
package zipcsv

import (
	"archive/zip"
	"bufio"
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/snisarenko-labs/ipcensus/internal/adapters/feedutil"
	"github.com/snisarenko-labs/ipcensus/internal/domain/interval"
	"github.com/snisarenko-labs/ipcensus/internal/domain/ipaddr"
	"github.com/snisarenko-labs/ipcensus/internal/ports"
)

const fetchTimeout = 60 * time.Second

// Plugin fetches a zipped CSV feed over HTTPS and writes each IPv4 block
// row as a canonical staging line tagged as type "asn" with the row's
// organization name; the AS number itself is not carried in the tag.
type Plugin struct {
	meta         ports.FeedMetadata
	url          string
	csvEntryName string // zip member to read, e.g. "GeoLite2-ASN-Blocks-IPv4.csv"
	httpClient   *http.Client
}

var _ ports.FeedPlugin = (*Plugin)(nil)

// New builds a plugin for the given source URL. csvEntryName is the
// archive member holding the IPv4 blocks table.
func New(name, version, description, url, csvEntryName string, abortOnFail bool, client *http.Client) *Plugin {
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
		url:          url,
		csvEntryName: csvEntryName,
		httpClient:   client,
	}
}

func (p *Plugin) Metadata() ports.FeedMetadata {
	return p.meta
}

// Load fetches the zip archive, extracts the IPv4 blocks CSV and writes
// one staging line per row: network -> closed uint32 interval, tagged
// type "asn" with the feed name as source and the row's organization name.
func (p *Plugin) Load(ctx context.Context, stagingPath string) error {
	body, err := feedutil.Fetch(ctx, p.httpClient, p.url, fetchTimeout)
	if err != nil {
		return fmt.Errorf("zipcsv %s: %w", p.meta.Name, err)
	}

	zr, err := zip.NewReader(bytes.NewReader(body), int64(len(body)))
	if err != nil {
		return fmt.Errorf("zipcsv %s: open archive: %w", p.meta.Name, err)
	}
	var entry *zip.File
	for _, f := range zr.File {
		if strings.HasSuffix(f.Name, p.csvEntryName) {
			entry = f
			break
		}
	}
	if entry == nil {
		return fmt.Errorf("zipcsv %s: archive member %q not found", p.meta.Name, p.csvEntryName)
	}

	rc, err := entry.Open()
	if err != nil {
		return fmt.Errorf("zipcsv %s: open %s: %w", p.meta.Name, p.csvEntryName, err)
	}
	defer rc.Close()

	out, err := os.Create(stagingPath)
	if err != nil {
		return fmt.Errorf("zipcsv %s: create staging file: %w", p.meta.Name, err)
	}
	defer out.Close()
	w := bufio.NewWriter(out)

	if err := p.writeRows(rc, w); err != nil {
		return fmt.Errorf("zipcsv %s: %w", p.meta.Name, err)
	}
	return w.Flush()
}

func (p *Plugin) writeRows(r io.Reader, w *bufio.Writer) error {
	cr := csv.NewReader(r)
	header, err := cr.Read()
	if err != nil {
		return fmt.Errorf("read header: %w", err)
	}
	col := columnIndex(header)

	for {
		row, err := cr.Read()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			return fmt.Errorf("read row: %w", err)
		}
		start, end, err := ipaddr.CIDRRange(row[col["network"]])
		if err != nil {
			// IPv6 networks or malformed rows are skipped, not fatal.
			continue
		}
		tag := interval.Tag{
			Type:   "asn",
			Source: p.meta.Name,
			Name:   row[col["autonomous_system_organization"]],
		}
		line, err := feedutil.FormatLine(start, end, tag)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintln(w, line); err != nil {
			return err
		}
	}
}

func columnIndex(header []string) map[string]int {
	idx := make(map[string]int, len(header))
	for i, name := range header {
		idx[name] = i
	}
	return idx
}

// Validate reparses every staging line, failing on the first malformed
// one, and rejects a staging file with no usable rows at all.
func (p *Plugin) Validate(stagingPath string) error {
	f, err := os.Open(stagingPath)
	if err != nil {
		return fmt.Errorf("zipcsv %s: open staging file: %w", p.meta.Name, err)
	}
	defer f.Close()

	var lines int
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		if _, _, _, err := feedutil.ParseLine(scanner.Text()); err != nil {
			return fmt.Errorf("zipcsv %s: %w", p.meta.Name, err)
		}
		lines++
	}
	if err := scanner.Err(); err != nil {
		return err
	}
	if lines == 0 {
		return fmt.Errorf("zipcsv %s: staging file is empty", p.meta.Name)
	}
	return nil
}
