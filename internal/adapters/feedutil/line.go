// Package feedutil holds helpers shared by feed plugins and by the
// merger/loader that consume their output: the canonical staging line
// codec and a bounded-retry HTTP fetch helper. Composed as free
// functions a plugin calls, not inherited behavior.
package feedutil

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/snisarenko-labs/ipcensus/internal/domain/interval"
)

// FormatLine renders one staging line: "<start>|<end>|<tag_json>". If the
// tag's JSON form contains the field delimiter '|', it is wrapped in
// '~...~' so the parser can still split on '|' unambiguously.
func FormatLine(start, end uint32, tag interval.Tag) (string, error) {
	b, err := json.Marshal(tag)
	if err != nil {
		return "", fmt.Errorf("feedutil: marshal tag: %w", err)
	}
	body := string(b)
	if strings.ContainsRune(body, '|') {
		body = "~" + body + "~"
	}
	return fmt.Sprintf("%d|%d|%s", start, end, body), nil
}

// ParseLine reverses FormatLine, unwrapping a '~...~'-quoted tag body
// before unmarshaling it.
func ParseLine(line string) (start, end uint32, tag interval.Tag, err error) {
	parts := strings.SplitN(line, "|", 3)
	if len(parts) != 3 {
		return 0, 0, interval.Tag{}, fmt.Errorf("feedutil: malformed line %q: want 3 fields", line)
	}
	s, err := strconv.ParseUint(parts[0], 10, 32)
	if err != nil {
		return 0, 0, interval.Tag{}, fmt.Errorf("feedutil: malformed start in %q: %w", line, err)
	}
	e, err := strconv.ParseUint(parts[1], 10, 32)
	if err != nil {
		return 0, 0, interval.Tag{}, fmt.Errorf("feedutil: malformed end in %q: %w", line, err)
	}
	body := parts[2]
	if len(body) >= 2 && body[0] == '~' && body[len(body)-1] == '~' {
		body = body[1 : len(body)-1]
	}
	var t interval.Tag
	if err := json.Unmarshal([]byte(body), &t); err != nil {
		return 0, 0, interval.Tag{}, fmt.Errorf("feedutil: malformed tag in %q: %w", line, err)
	}
	return uint32(s), uint32(e), t, nil
}
