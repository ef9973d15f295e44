// Package kasa: Per-device enrichment after discovery.
package kasa

import (
	"context"
	"sync"
	"time"

	"github.com/marcuoli/go-kasa/pkg/kasa/arp"
	"github.com/marcuoli/go-kasa/pkg/kasa/oui"
	"github.com/marcuoli/go-kasa/pkg/kasa/rdns"
)

// EnrichOptions configures the lookups run on discovered devices.
type EnrichOptions struct {
	// EnableARP resolves each device's MAC address (needs raw socket privileges)
	EnableARP bool
	// EnableVendor maps the MAC to a vendor name. Implies EnableARP.
	EnableVendor bool
	// EnableDNS resolves each device's hostname by PTR lookup
	EnableDNS bool

	// OUIDatabase is the path of the IEEE oui.txt file used for vendors
	OUIDatabase string
	// DNSServers overrides the nameservers from /etc/resolv.conf (host:port)
	DNSServers []string
	// Timeout per lookup
	Timeout time.Duration
}

// DefaultEnrichOptions returns options with every lookup disabled.
func DefaultEnrichOptions() EnrichOptions {
	return EnrichOptions{Timeout: 2 * time.Second}
}

// Enabled reports whether any lookup is enabled.
func (o EnrichOptions) Enabled() bool {
	return o.EnableARP || o.EnableVendor || o.EnableDNS
}

// DeviceInfo is a discovered device plus enrichment results.
type DeviceInfo struct {
	Device
	MAC      string
	Vendor   string
	Hostname string
	Errors   map[Component]error
}

// DisplayName returns the best human name: alias, then hostname, then IP.
func (d *DeviceInfo) DisplayName() string {
	for _, name := range []string{d.Alias, d.Hostname, d.IP} {
		if name != "" {
			return name
		}
	}
	return ""
}

// Enrich runs the enabled lookups for every device. ARP (with the vendor
// lookup that depends on it) and DNS run concurrently. Lookup failures are
// recorded per device in Errors and never fail the call.
func Enrich(ctx context.Context, devices []Device, opts EnrichOptions) []*DeviceInfo {
	results := make([]*DeviceInfo, len(devices))
	ips := make([]string, len(devices))
	for i, d := range devices {
		results[i] = &DeviceInfo{Device: d, Errors: make(map[Component]error)}
		ips[i] = d.IP
	}
	if len(devices) == 0 {
		return results
	}

	var mu sync.Mutex
	setErr := func(i int, c Component, err error) {
		mu.Lock()
		results[i].Errors[c] = err
		mu.Unlock()
	}

	var wg sync.WaitGroup

	// ARP, then vendor from the MAC
	if opts.EnableARP || opts.EnableVendor {
		wg.Add(1)
		go func() {
			defer wg.Done()
			a := arp.NewDiscovery()
			if opts.Timeout > 0 {
				a.Timeout = opts.Timeout
			}
			for i, r := range a.LookupMultiple(ctx, ips) {
				if r == nil {
					continue
				}
				if r.Error != nil {
					setErr(i, ComponentARP, r.Error)
					continue
				}
				results[i].MAC = r.MAC
			}

			if !opts.EnableVendor {
				return
			}
			if opts.OUIDatabase != "" {
				if err := oui.SetDatabase(opts.OUIDatabase); err != nil {
					for i := range results {
						setErr(i, ComponentOUI, err)
					}
					return
				}
			}
			for i, r := range results {
				if r.MAC == "" {
					continue
				}
				vendor, err := oui.Lookup(r.MAC)
				if err != nil {
					setErr(i, ComponentOUI, err)
					continue
				}
				if vendor != nil {
					r.Vendor = vendor.Manufacturer
				}
			}
		}()
	}

	// Reverse DNS
	if opts.EnableDNS {
		wg.Add(1)
		go func() {
			defer wg.Done()
			d := rdns.NewDiscovery()
			if opts.Timeout > 0 {
				d.Timeout = opts.Timeout
			}
			d.Servers = opts.DNSServers
			for i, r := range d.LookupMultiple(ctx, ips) {
				if r == nil {
					continue
				}
				if r.Error != nil {
					setErr(i, ComponentDNS, r.Error)
					continue
				}
				results[i].Hostname = r.Hostname
			}
		}()
	}

	wg.Wait()
	debugLog(ComponentKasa, "enriched %d devices", len(results))
	return results
}
