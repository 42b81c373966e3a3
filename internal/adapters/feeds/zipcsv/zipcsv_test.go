package zipcsv

import (
	"archive/zip"
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/snisarenko-labs/ipcensus/internal/adapters/feedutil"
	"github.com/snisarenko-labs/ipcensus/internal/domain/ipaddr"
)

func buildArchive(t *testing.T) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	f, err := zw.Create("GeoLite2-ASN-Blocks-IPv4.csv")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	csvBody := "network,autonomous_system_number,autonomous_system_organization\n" +
		"1.0.0.0/24,13335,\"Cloudflare, Inc.\"\n" +
		"2001:db8::/32,64512,Example IPv6 Org\n" +
		"8.8.8.0/24,15169,Google LLC\n"
	if _, err := f.Write([]byte(csvBody)); err != nil {
		t.Fatalf("Write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}
	return buf.Bytes()
}

func TestLoadExtractsIPv4RowsAndSkipsIPv6(t *testing.T) {
	archive := buildArchive(t)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(archive)
	}))
	defer srv.Close()

	p := New("maxmind_asn", "v1", "MaxMind GeoLite2 ASN", srv.URL, "GeoLite2-ASN-Blocks-IPv4.csv", true, srv.Client())
	staging := filepath.Join(t.TempDir(), "staging.txt")

	if err := p.Load(context.Background(), staging); err != nil {
		t.Fatalf("Load: %v", err)
	}
	if err := p.Validate(staging); err != nil {
		t.Fatalf("Validate: %v", err)
	}

	data, err := os.ReadFile(staging)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	lines := strings.Split(strings.TrimRight(string(data), "\n"), "\n")
	if len(lines) != 2 {
		t.Fatalf("got %d lines, want 2: %v", len(lines), lines)
	}

	start, end, tag, err := feedutil.ParseLine(lines[0])
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	wantStart, wantEnd, _ := ipaddr.CIDRRange("1.0.0.0/24")
	if start != wantStart || end != wantEnd {
		t.Fatalf("got range (%d,%d), want (%d,%d)", start, end, wantStart, wantEnd)
	}
	if tag.Type != "asn" || tag.Source != "maxmind_asn" {
		t.Fatalf("got tag %+v", tag)
	}
}

func TestLoadFailsOnMissingArchiveMember(t *testing.T) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	_, _ = zw.Create("Other-File.csv")
	zw.Close()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write(buf.Bytes())
	}))
	defer srv.Close()

	p := New("maxmind_asn", "v1", "", srv.URL, "GeoLite2-ASN-Blocks-IPv4.csv", true, srv.Client())
	staging := filepath.Join(t.TempDir(), "staging.txt")
	if err := p.Load(context.Background(), staging); err == nil {
		t.Fatalf("expected error for missing archive member")
	}
}

func TestValidateRejectsEmptyStagingFile(t *testing.T) {
	p := New("x", "v1", "", "https://example.invalid", "GeoLite2-ASN-Blocks-IPv4.csv", false, nil)
	staging := filepath.Join(t.TempDir(), "staging.txt")
	if err := os.WriteFile(staging, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := p.Validate(staging); err == nil {
		t.Fatalf("expected error for empty staging file")
	}
}
