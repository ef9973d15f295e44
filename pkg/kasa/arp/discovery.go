package arp

import (
	"context"
	"errors"
	"net"
	"sync"
	"time"
)

// DefaultTimeout is the default timeout for one ARP request.
const DefaultTimeout = 1 * time.Second

var (
	// ErrNotSupported is returned when ARP is called on unsupported platforms.
	ErrNotSupported = errors.New("ARP lookup is not supported on this platform")
	// ErrInvalidIP is returned when an invalid IP address is provided.
	ErrInvalidIP = errors.New("invalid IP address")
	// ErrIPv6NotSupported is returned when attempting ARP on an IPv6 address.
	ErrIPv6NotSupported = errors.New("ARP is not supported for IPv6 addresses")
)

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from ARP operations.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Result contains the result of an ARP lookup.
type Result struct {
	IP       string
	MAC      string
	Duration time.Duration
	Error    error
}

// Discovery resolves MAC addresses.
type Discovery struct {
	Timeout time.Duration
}

// NewDiscovery creates a new ARP helper with defaults.
func NewDiscovery() *Discovery {
	return &Discovery{Timeout: DefaultTimeout}
}

func (a *Discovery) timeout() time.Duration {
	if a.Timeout <= 0 {
		return DefaultTimeout
	}
	return a.Timeout
}

func parseIPv4(ip string) (net.IP, error) {
	parsed := net.ParseIP(ip)
	if parsed == nil {
		return nil, ErrInvalidIP
	}
	if parsed.To4() == nil {
		return nil, ErrIPv6NotSupported
	}
	return parsed.To4(), nil
}

// LookupMultiple resolves several IPs. Results are in input order.
func (a *Discovery) LookupMultiple(ctx context.Context, ips []string) []*Result {
	if len(ips) == 0 {
		return nil
	}

	results := make([]*Result, len(ips))
	var wg sync.WaitGroup
	for i, ip := range ips {
		wg.Add(1)
		go func(idx int, ipAddr string) {
			defer wg.Done()
			results[idx], _ = a.LookupAddr(ctx, ipAddr)
		}(i, ip)
	}
	wg.Wait()
	return results
}
