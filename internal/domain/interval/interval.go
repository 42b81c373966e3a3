// Package interval defines the canonical tagged-interval records the
// ingestion pipeline produces and the sorted index stores.
package interval

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// Tag is a small structured record of source metadata. Type and Source are
// the only semantically mandatory fields; everything else is provider
// specific and carried opaquely.
type Tag struct {
	Type     string `json:"type,omitempty"`
	Source   string `json:"source"`
	Name     string `json:"name,omitempty"`
	Provider string `json:"provider,omitempty"`
	Service  string `json:"service,omitempty"`
	Region   string `json:"region,omitempty"`
	Scope    string `json:"scope,omitempty"`
}

// Key returns the exact-JSON-form identity used for deduplication: two tags
// with identical fields (including Type) collapse to the same key.
func (t Tag) Key() (string, error) {
	b, err := json.Marshal(t)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// withoutType renders the tag's JSON payload stripped of the Type field,
// matching the wire shape stored under payload[type] in a Record.
func (t Tag) withoutType() json.RawMessage {
	t.Type = ""
	b, _ := json.Marshal(t)
	return b
}

// Raw is an input interval: a source's claimed range plus its tag. This is
// the shape feed plugins emit and the merger/flattener consume.
type Raw struct {
	Start uint32
	End   uint32
	Tag   Tag
}

// Record is a flattened, non-overlapping output interval: the closed range
// [Start, End] and the union of tags (grouped by type, deduplicated) that
// cover every coordinate in that range.
type Record struct {
	Start   uint32
	End     uint32
	Payload map[string][]json.RawMessage // tag type -> ordered, deduped tag bodies
}

// Serialize renders a Record as the canonical index member string
// "<start>|<end>|<payload_json>".
func (r Record) Serialize() (string, error) {
	payload, err := json.Marshal(r.Payload)
	if err != nil {
		return "", fmt.Errorf("interval: marshal payload: %w", err)
	}
	return fmt.Sprintf("%d|%d|%s", r.Start, r.End, payload), nil
}

// Parse reverses Serialize, validating the member's basic shape (three
// pipe-separated fields, the first two integers).
func Parse(member string) (Record, error) {
	parts := strings.SplitN(member, "|", 3)
	if len(parts) != 3 {
		return Record{}, fmt.Errorf("interval: malformed member %q: want 3 fields", member)
	}
	start, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return Record{}, fmt.Errorf("interval: malformed start in %q: %w", member, err)
	}
	end, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return Record{}, fmt.Errorf("interval: malformed end in %q: %w", member, err)
	}
	var payload map[string][]json.RawMessage
	if err := json.Unmarshal([]byte(parts[2]), &payload); err != nil {
		return Record{}, fmt.Errorf("interval: malformed payload in %q: %w", member, err)
	}
	return Record{Start: uint32(start), End: uint32(end), Payload: payload}, nil
}

// Contains reports whether q falls within the record's closed range.
func (r Record) Contains(q uint32) bool {
	return q >= r.Start && q <= r.End
}

// PayloadFromTags groups a deduplicated set of tags by Type, preserving
// first-seen order within each type bucket — used by the flattener when it
// closes out an active set into an emitted Record.
func PayloadFromTags(tags []Tag) (map[string][]json.RawMessage, error) {
	seen := make(map[string]struct{}, len(tags))
	payload := make(map[string][]json.RawMessage)
	for _, t := range tags {
		k, err := t.Key()
		if err != nil {
			return nil, err
		}
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		payload[t.Type] = append(payload[t.Type], t.withoutType())
	}
	return payload, nil
}

// AppendTag merges a single extra tag (e.g. a DNSBL hit) into an existing
// payload, grouped under the tag's own Type bucket. A tag already present
// under exact-JSON equality is a no-op.
func AppendTag(payload map[string][]json.RawMessage, t Tag) (map[string][]json.RawMessage, error) {
	body := t.withoutType()
	for _, existing := range payload[t.Type] {
		if string(existing) == string(body) {
			return payload, nil
		}
	}
	if payload == nil {
		payload = make(map[string][]json.RawMessage)
	}
	payload[t.Type] = append(payload[t.Type], body)
	return payload, nil
}
