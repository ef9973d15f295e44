// Package rdns resolves hostnames of discovered devices with reverse DNS
// (PTR) queries. Queries go straight to the configured nameservers using
// github.com/miekg/dns, so the router's DHCP hostname is returned even when
// the local resolver caches or rewrites answers. With no nameserver
// available it falls back to the system resolver.
package rdns

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"sync"
	"time"

	"github.com/miekg/dns"
)

const (
	// DefaultTimeout is the default timeout for one lookup.
	DefaultTimeout = 2 * time.Second
	// DefaultWorkers is the default number of concurrent lookups.
	DefaultWorkers = 32
	// ResolvConf is where nameservers are read from when none are set.
	ResolvConf = "/etc/resolv.conf"
)

// ErrNoRecord is returned when every server answered without a PTR record.
var ErrNoRecord = errors.New("no PTR record")

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from reverse DNS operations.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Result contains the result of a reverse DNS lookup.
type Result struct {
	IP       string
	Hostname string   // Primary hostname (first result)
	All      []string // All returned hostnames
	Server   string   // Server that answered, empty for the system resolver
	Error    error
}

// Discovery performs reverse DNS lookups.
type Discovery struct {
	Timeout time.Duration
	Workers int
	// Servers are host:port nameserver addresses. Empty means read ResolvConf.
	Servers []string
}

// NewDiscovery creates a new reverse DNS helper with defaults.
func NewDiscovery() *Discovery {
	return &Discovery{
		Timeout: DefaultTimeout,
		Workers: DefaultWorkers,
	}
}

func (d *Discovery) servers() []string {
	if len(d.Servers) > 0 {
		return d.Servers
	}
	cfg, err := dns.ClientConfigFromFile(ResolvConf)
	if err != nil {
		debugLog("reading %s: %v", ResolvConf, err)
		return nil
	}
	res := make([]string, 0, len(cfg.Servers))
	for _, s := range cfg.Servers {
		res = append(res, net.JoinHostPort(s, cfg.Port))
	}
	return res
}

// LookupAddr performs a PTR lookup for the given IP address.
func (d *Discovery) LookupAddr(ctx context.Context, ip string) (*Result, error) {
	res := &Result{IP: ip}

	arpa, err := dns.ReverseAddr(ip)
	if err != nil {
		res.Error = fmt.Errorf("invalid IP address: %s", ip)
		return res, res.Error
	}

	timeout := d.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	lookupCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	servers := d.servers()
	if len(servers) == 0 {
		return d.lookupSystem(lookupCtx, res)
	}

	msg := new(dns.Msg)
	msg.SetQuestion(arpa, dns.TypePTR)
	client := &dns.Client{Net: "udp", Timeout: timeout}

	var lastErr error
	for _, srv := range servers {
		resp, _, err := client.ExchangeContext(lookupCtx, msg, srv)
		if err != nil {
			lastErr = fmt.Errorf("%s: %w", srv, err)
			continue
		}
		if resp.Rcode != dns.RcodeSuccess {
			lastErr = fmt.Errorf("%s: %s: %w", srv, dns.RcodeToString[resp.Rcode], ErrNoRecord)
			continue
		}
		for _, rr := range resp.Answer {
			if ptr, ok := rr.(*dns.PTR); ok {
				res.All = append(res.All, strings.TrimSuffix(ptr.Ptr, "."))
			}
		}
		if len(res.All) > 0 {
			res.Hostname = res.All[0]
			res.Server = srv
			debugLog("%s -> %s (via %s)", ip, res.Hostname, srv)
			return res, nil
		}
		lastErr = fmt.Errorf("%s: %w", srv, ErrNoRecord)
	}

	res.Error = lastErr
	debugLog("%s: lookup failed: %v", ip, lastErr)
	return res, lastErr
}

func (d *Discovery) lookupSystem(ctx context.Context, res *Result) (*Result, error) {
	names, err := net.DefaultResolver.LookupAddr(ctx, res.IP)
	if err != nil {
		res.Error = err
		debugLog("%s: lookup failed: %v", res.IP, err)
		return res, err
	}
	for i, name := range names {
		names[i] = strings.TrimSuffix(name, ".")
	}
	res.All = names
	if len(names) > 0 {
		res.Hostname = names[0]
		debugLog("%s -> %s", res.IP, res.Hostname)
	}
	return res, nil
}

// LookupMultiple performs reverse DNS lookups on multiple IPs concurrently.
// Results are in input order.
func (d *Discovery) LookupMultiple(ctx context.Context, ips []string) []*Result {
	if len(ips) == 0 {
		return nil
	}

	workers := d.Workers
	if workers <= 0 {
		workers = DefaultWorkers
	}

	results := make([]*Result, len(ips))
	jobs := make(chan int, len(ips))
	var wg sync.WaitGroup

	worker := func() {
		defer wg.Done()
		for idx := range jobs {
			results[idx], _ = d.LookupAddr(ctx, ips[idx])
		}
	}

	for i := 0; i < workers && i < len(ips); i++ {
		wg.Add(1)
		go worker()
	}

	for i := range ips {
		jobs <- i
	}
	close(jobs)
	wg.Wait()

	return results
}
