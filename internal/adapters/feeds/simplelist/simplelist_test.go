package simplelist

import (
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

const body = `# Spamhaus DROP list
; semicolon comment line
10.0.0.0/24
1.2.3.4   # single host, inline comment
not-an-entry

203.0.113.0/25
`

func TestLoadParsesEntriesAndSkipsComments(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(body))
	}))
	defer srv.Close()

	p := New("spamhaus_drop", "v1", "Spamhaus DROP list", srv.URL, "denylist", true, srv.Client())
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
	if len(lines) != 3 {
		t.Fatalf("got %d lines, want 3: %v", len(lines), lines)
	}

	start, end, tag, err := feedutil.ParseLine(lines[0])
	if err != nil {
		t.Fatalf("ParseLine: %v", err)
	}
	wantStart, wantEnd, _ := ipaddr.CIDRRange("10.0.0.0/24")
	if start != wantStart || end != wantEnd {
		t.Fatalf("got range (%d,%d), want (%d,%d)", start, end, wantStart, wantEnd)
	}
	if tag.Type != "denylist" || tag.Source != "spamhaus_drop" {
		t.Fatalf("got tag %+v", tag)
	}

	_, _, _, err = feedutil.ParseLine(lines[1])
	if err != nil {
		t.Fatalf("ParseLine single host: %v", err)
	}
}

func TestMetadataReportsAbortOnFail(t *testing.T) {
	p := New("cloudflare_ranges", "v1", "Cloudflare published ranges", "https://example.invalid", "denylist", false, nil)
	meta := p.Metadata()
	if meta.Name != "cloudflare_ranges" || meta.AbortOnFail {
		t.Fatalf("got %+v", meta)
	}
}

func TestValidateRejectsCorruptStagingFile(t *testing.T) {
	p := New("x", "v1", "", "https://example.invalid", "denylist", false, nil)
	staging := filepath.Join(t.TempDir(), "staging.txt")
	if err := os.WriteFile(staging, []byte("not-a-valid-line\n"), 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := p.Validate(staging); err == nil {
		t.Fatalf("expected error for corrupt staging file")
	}
}

func TestValidateRejectsEmptyStagingFile(t *testing.T) {
	p := New("x", "v1", "", "https://example.invalid", "denylist", false, nil)
	staging := filepath.Join(t.TempDir(), "staging.txt")
	if err := os.WriteFile(staging, nil, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	if err := p.Validate(staging); err == nil {
		t.Fatalf("expected error for empty staging file")
	}
}
