//go:build linux || darwin || freebsd || netbsd || openbsd

// Package arp resolves the MAC address of a discovered device with an ARP
// request. The MAC feeds the OUI vendor lookup.
// Sending ARP requests needs raw socket privileges (root or CAP_NET_RAW).
// Platform support: Linux and BSD only (not Windows).
package arp

import (
	"context"
	"net"
	"sync"
	"time"

	"github.com/j-keck/arping"
)

// arping keeps its timeout in a package global, so lookups are serialised.
var arpingMu sync.Mutex

// LookupAddr sends an ARP request for ip and waits for the reply.
func (a *Discovery) LookupAddr(ctx context.Context, ip string) (*Result, error) {
	result := &Result{IP: ip}

	parsedIP, err := parseIPv4(ip)
	if err != nil {
		result.Error = err
		return result, err
	}

	type arpResponse struct {
		mac net.HardwareAddr
		dur time.Duration
		err error
	}
	responseChan := make(chan arpResponse, 1)
	start := time.Now()

	go func() {
		arpingMu.Lock()
		defer arpingMu.Unlock()
		arping.SetTimeout(a.timeout())
		mac, dur, err := arping.Ping(parsedIP)
		responseChan <- arpResponse{mac: mac, dur: dur, err: err}
	}()

	select {
	case <-ctx.Done():
		result.Duration = time.Since(start)
		result.Error = ctx.Err()
		debugLog("%s: context cancelled", ip)
		return result, ctx.Err()
	case resp := <-responseChan:
		result.Duration = resp.dur
		if resp.err != nil {
			result.Error = resp.err
			debugLog("%s: %v", ip, resp.err)
			return result, resp.err
		}
		result.MAC = resp.mac.String()
		debugLog("%s -> %s (%.2fms)", ip, result.MAC, float64(resp.dur.Microseconds())/1000)
		return result, nil
	}
}

// IsSupported reports whether ARP lookups work on this platform.
func IsSupported() bool {
	return true
}
