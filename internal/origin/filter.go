package origin

import (
	"fmt"
	"net"
	"net/netip"
	"strings"
)

// Filter classifies source addresses against a fixed set of allowed
// network ranges. It is built once at startup and is safe for concurrent
// use; an empty range set denies everything.
type Filter struct {
	prefixes []netip.Prefix
}

// NewFilter parses the configured ranges. Each entry is CIDR notation or a
// bare address (treated as a single-host range). Invalid entries are a
// startup error, never silently skipped.
func NewFilter(ranges []string) (*Filter, error) {
	var prefixes []netip.Prefix
	for _, r := range ranges {
		r = strings.TrimSpace(r)
		if r == "" {
			continue
		}
		prefix, err := netip.ParsePrefix(r)
		if err != nil {
			addr, addrErr := netip.ParseAddr(r)
			if addrErr != nil {
				return nil, fmt.Errorf("invalid allowed range %q: %w", r, err)
			}
			prefix = netip.PrefixFrom(addr, addr.BitLen())
		}
		prefixes = append(prefixes, prefix.Masked())
	}
	return &Filter{prefixes: prefixes}, nil
}

// Allowed reports whether addr falls inside any configured range.
func (f *Filter) Allowed(addr netip.Addr) bool {
	// IPv4 peers on a dual-stack listener arrive as 4-in-6 addresses.
	addr = addr.Unmap()
	for _, p := range f.prefixes {
		if p.Contains(addr) {
			return true
		}
	}
	return false
}

// AllowedRemote applies the filter to a connection remote address as seen
// on net.Conn / http.Request.RemoteAddr ("ip:port" or a bare IP).
// Unparsable addresses are denied.
func (f *Filter) AllowedRemote(remoteAddr string) bool {
	host, _, err := net.SplitHostPort(remoteAddr)
	if err != nil {
		host = remoteAddr
	}
	addr, err := netip.ParseAddr(host)
	if err != nil {
		return false
	}
	return f.Allowed(addr)
}

// Ranges returns the normalized configured ranges, for the startup banner.
func (f *Filter) Ranges() []string {
	out := make([]string, len(f.prefixes))
	for i, p := range f.prefixes {
		out[i] = p.String()
	}
	return out
}
