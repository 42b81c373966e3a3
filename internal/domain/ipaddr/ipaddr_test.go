package ipaddr

import "testing"

func TestToIntFromIntRoundTrip(t *testing.T) {
	cases := []string{"0.0.0.0", "255.255.255.255", "10.0.0.1", "1.1.1.1", "192.168.1.200"}
	for _, s := range cases {
		n, err := ToInt(s)
		if err != nil {
			t.Fatalf("ToInt(%q): %v", s, err)
		}
		if got := FromInt(n); got != s {
			t.Fatalf("round-trip mismatch: %q -> %d -> %q", s, n, got)
		}
	}
}

func TestToIntRejectsInvalid(t *testing.T) {
	cases := []string{"not.an.ip", "256.1.1.1", "1.2.3", "::1", "::ffff:1.2.3.4", ""}
	for _, s := range cases {
		if _, err := ToInt(s); err == nil {
			t.Fatalf("expected error for %q", s)
		}
	}
}

func TestCIDRRange(t *testing.T) {
	tests := []struct {
		cidr       string
		start, end uint32
	}{
		{"10.0.0.0/24", mustInt("10.0.0.0"), mustInt("10.0.0.255")},
		{"10.0.0.128/25", mustInt("10.0.0.128"), mustInt("10.0.0.255")},
		{"1.1.1.1/32", mustInt("1.1.1.1"), mustInt("1.1.1.1")},
		{"0.0.0.0/0", 0, 0xFFFFFFFF},
	}
	for _, tt := range tests {
		s, e, err := CIDRRange(tt.cidr)
		if err != nil {
			t.Fatalf("CIDRRange(%q): %v", tt.cidr, err)
		}
		if s != tt.start || e != tt.end {
			t.Fatalf("CIDRRange(%q) = (%d,%d), want (%d,%d)", tt.cidr, s, e, tt.start, tt.end)
		}
	}
}

func TestCIDRRangeRejectsIPv6(t *testing.T) {
	if _, _, err := CIDRRange("2001:db8::/32"); err == nil {
		t.Fatalf("expected error for IPv6 CIDR")
	}
}

func mustInt(s string) uint32 {
	n, err := ToInt(s)
	if err != nil {
		panic(err)
	}
	return n
}
