package interval

import (
	"encoding/json"
	"testing"
)

func TestRecordSerializeParseRoundTrip(t *testing.T) {
	r := Record{
		Start: 10,
		End:   20,
		Payload: map[string][]json.RawMessage{
			"denylist": {json.RawMessage(`{"source":"spamhaus"}`)},
		},
	}
	s, err := r.Serialize()
	if err != nil {
		t.Fatalf("Serialize: %v", err)
	}
	got, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	if got.Start != r.Start || got.End != r.End {
		t.Fatalf("round-trip range mismatch: got (%d,%d), want (%d,%d)", got.Start, got.End, r.Start, r.End)
	}
	if len(got.Payload["denylist"]) != 1 {
		t.Fatalf("round-trip payload mismatch: %+v", got.Payload)
	}
}

func TestParseRejectsMalformed(t *testing.T) {
	cases := []string{
		"",
		"10|20",
		"abc|20|{}",
		"10|abc|{}",
		"10|20|not-json",
	}
	for _, c := range cases {
		if _, err := Parse(c); err == nil {
			t.Fatalf("Parse(%q): expected error", c)
		}
	}
}

func TestRecordContains(t *testing.T) {
	r := Record{Start: 10, End: 20}
	if r.Contains(9) {
		t.Fatalf("Contains(9): expected false")
	}
	if !r.Contains(10) {
		t.Fatalf("Contains(10): expected true")
	}
	if !r.Contains(20) {
		t.Fatalf("Contains(20): expected true")
	}
	if r.Contains(21) {
		t.Fatalf("Contains(21): expected false")
	}
}

func TestPayloadFromTagsDedupesAndGroupsByType(t *testing.T) {
	tags := []Tag{
		{Type: "denylist", Source: "spamhaus"},
		{Type: "denylist", Source: "spamhaus"}, // exact duplicate, dropped
		{Type: "denylist", Source: "abuseipdb"},
		{Type: "cloud", Source: "aws", Provider: "aws", Region: "us-east-1"},
	}
	payload, err := PayloadFromTags(tags)
	if err != nil {
		t.Fatalf("PayloadFromTags: %v", err)
	}
	if len(payload["denylist"]) != 2 {
		t.Fatalf("denylist bucket: got %d entries, want 2", len(payload["denylist"]))
	}
	if len(payload["cloud"]) != 1 {
		t.Fatalf("cloud bucket: got %d entries, want 1", len(payload["cloud"]))
	}
	for _, body := range payload["denylist"] {
		var m map[string]any
		if err := json.Unmarshal(body, &m); err != nil {
			t.Fatalf("unmarshal tag body: %v", err)
		}
		if _, hasType := m["type"]; hasType {
			t.Fatalf("tag body retained type field: %s", body)
		}
	}
}
