package ports

import (
	"context"

	"github.com/snisarenko-labs/ipcensus/internal/domain/interval"
)

// DNSBLResolver performs the optional reverse-octet DNSBL query of §4.E
// step 6: a lookup against an external blocklist DNS zone, independent of
// the sorted interval index.
type DNSBLResolver interface {
	Lookup(ctx context.Context, ip string) (tag interval.Tag, found bool, err error)
}
