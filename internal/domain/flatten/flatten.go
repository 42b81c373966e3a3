// Package flatten implements the sweep-line algorithm that turns an
// arbitrary, possibly overlapping collection of tagged intervals into a
// sorted partition of disjoint intervals, each carrying the union of the
// tags whose source range covers it. It is pure and side-effect free: no
// I/O, no global state, callable from both the ingestion pipeline and
// tests.
package flatten

import (
	"fmt"
	"math"
	"sort"

	"github.com/snisarenko-labs/ipcensus/internal/domain/interval"
)

// event is one endpoint of an input interval, unfolded for the sweep.
type event struct {
	n     uint32
	isEnd bool
	tag   interval.Tag
	key   string
}

// Flatten runs the sweep and returns the emitted records in ascending
// (start, end) order. Input order is irrelevant; output order is not.
func Flatten(raws []interval.Raw) ([]interval.Record, error) {
	events := make([]event, 0, len(raws)*2)
	for _, r := range raws {
		if r.Start > r.End {
			return nil, fmt.Errorf("flatten: malformed interval [%d,%d]", r.Start, r.End)
		}
		key, err := r.Tag.Key()
		if err != nil {
			return nil, fmt.Errorf("flatten: tag key: %w", err)
		}
		events = append(events,
			event{n: r.Start, isEnd: false, tag: r.Tag, key: key},
			event{n: r.End, isEnd: true, tag: r.Tag, key: key},
		)
	}
	if len(events) == 0 {
		return nil, nil
	}

	// Starts before ends at a shared coordinate: a source opening exactly
	// where another closes must be treated as covering that coordinate.
	sort.SliceStable(events, func(i, j int) bool {
		if events[i].n != events[j].n {
			return events[i].n < events[j].n
		}
		return !events[i].isEnd && events[j].isEnd
	})

	active := make(map[string]int)
	activeKeys := make([]string, 0)
	tagByKey := make(map[string]interval.Tag)

	addTag := func(e event) {
		if active[e.key] == 0 {
			activeKeys = append(activeKeys, e.key)
			tagByKey[e.key] = e.tag
		}
		active[e.key]++
	}
	removeTag := func(e event) {
		active[e.key]--
		if active[e.key] <= 0 {
			delete(active, e.key)
			for i, k := range activeKeys {
				if k == e.key {
					activeKeys = append(activeKeys[:i], activeKeys[i+1:]...)
					break
				}
			}
		}
	}

	var records []interval.Record
	for i := 0; i < len(events)-1; i++ {
		cur := events[i]
		nex := events[i+1]

		if !cur.isEnd {
			addTag(cur)
		} else {
			removeTag(cur)
		}

		// int64 intermediaries so the ±1 adjustments at the uint32 edges
		// (n=0, n=2^32-1) compare cleanly instead of wrapping.
		var n, m int64
		if cur.isEnd {
			n = int64(cur.n) + 1
		} else {
			n = int64(cur.n)
		}
		if nex.isEnd {
			m = int64(nex.n)
		} else {
			m = int64(nex.n) - 1
		}

		if n > m || len(activeKeys) == 0 {
			continue
		}
		if n < 0 || m > math.MaxUint32 {
			continue
		}

		tags := make([]interval.Tag, len(activeKeys))
		for j, k := range activeKeys {
			tags[j] = tagByKey[k]
		}
		payload, err := interval.PayloadFromTags(tags)
		if err != nil {
			return nil, fmt.Errorf("flatten: payload: %w", err)
		}
		records = append(records, interval.Record{
			Start:   uint32(n),
			End:     uint32(m),
			Payload: payload,
		})
	}

	return records, nil
}
