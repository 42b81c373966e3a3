// Package dnsbl implements the optional reverse-octet DNSBL A-record
// query of spec.md §4.E step 6 against an external blocklist DNS zone.
package dnsbl

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/miekg/dns"

	"github.com/snisarenko-labs/ipcensus/internal/domain/interval"
	"github.com/snisarenko-labs/ipcensus/internal/ports"
)

var _ ports.DNSBLResolver = (*Resolver)(nil)

// Resolver queries a single DNSBL provider zone (e.g. "zen.spamhaus.org")
// by reversing the queried IP's octets and appending the zone, per the
// standard DNSBL convention.
type Resolver struct {
	provider   string // zone suffix, e.g. "zen.spamhaus.org"
	nameserver string // "host:port" of the resolver to query
	client     *dns.Client
}

// New builds a resolver for provider's zone, querying nameserver with a
// bounded per-query timeout.
func New(provider, nameserver string, timeout time.Duration) *Resolver {
	return &Resolver{
		provider:   provider,
		nameserver: nameserver,
		client:     &dns.Client{Timeout: timeout},
	}
}

// Lookup queries "<reversed-octets>.<provider>" for an A record. A
// NOERROR response with at least one A record means a hit; NXDOMAIN
// means the address is clean. Any other failure is returned as an error
// so the caller can decide whether to treat it as a soft miss.
func (r *Resolver) Lookup(ctx context.Context, ip string) (interval.Tag, bool, error) {
	reversed, err := reverseOctets(ip)
	if err != nil {
		return interval.Tag{}, false, fmt.Errorf("dnsbl: %w", err)
	}

	qname := dns.Fqdn(reversed + "." + r.provider)
	msg := new(dns.Msg)
	msg.SetQuestion(qname, dns.TypeA)
	msg.RecursionDesired = true

	in, _, err := r.client.ExchangeContext(ctx, msg, r.nameserver)
	if err != nil {
		return interval.Tag{}, false, fmt.Errorf("dnsbl: query %s: %w", qname, err)
	}
	if in.Rcode == dns.RcodeNameError {
		return interval.Tag{}, false, nil
	}
	if in.Rcode != dns.RcodeSuccess {
		return interval.Tag{}, false, fmt.Errorf("dnsbl: query %s: rcode %s", qname, dns.RcodeToString[in.Rcode])
	}

	for _, rr := range in.Answer {
		if _, ok := rr.(*dns.A); ok {
			return interval.Tag{
				Type:   "dnsbl",
				Source: r.provider,
			}, true, nil
		}
	}
	return interval.Tag{}, false, nil
}

// reverseOctets turns "1.2.3.4" into "4.3.2.1", the DNSBL query convention.
func reverseOctets(ip string) (string, error) {
	parts := strings.Split(ip, ".")
	if len(parts) != 4 {
		return "", fmt.Errorf("not a dotted-quad IPv4 address: %q", ip)
	}
	for i, j := 0, len(parts)-1; i < j; i, j = i+1, j-1 {
		parts[i], parts[j] = parts[j], parts[i]
	}
	return strings.Join(parts, "."), nil
}
