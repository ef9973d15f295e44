// Package kasa: Discovery and single-command entry points.
package kasa

import (
	"context"
	"time"

	"github.com/marcuoli/go-kasa/pkg/kasa/command"
	"github.com/marcuoli/go-kasa/pkg/kasa/network"
	"github.com/marcuoli/go-kasa/pkg/kasa/scan"
	"github.com/marcuoli/go-kasa/pkg/kasa/transport"
)

// DiscoveryResult is the outcome of Discover.
type DiscoveryResult struct {
	Devices  []Device
	Info     []*DeviceInfo // Set only when enrichment is enabled
	Ranges   []network.HostRange
	Skipped  []network.Skipped
	Duration time.Duration
}

// Discover finds devices on the locally attached subnets, or on
// opts.CIDRs when set. Subnets wider than opts.MaxHosts are skipped and
// reported in the result. A transport failure aborts the whole scan.
func Discover(ctx context.Context, opts Options) (*DiscoveryResult, error) {
	opts = opts.withDefaults()

	addrs, err := opts.addrs()
	if err != nil {
		return nil, err
	}
	ranges, skipped := network.ComputeRanges(addrs, opts.MaxHosts)
	for _, s := range skipped {
		debugLog(ComponentNetwork, "skipping %s: %v", s.Addr, s.Err)
	}

	conn, err := transport.Listen()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	res, err := discover(ctx, conn, ranges, opts)
	if res != nil {
		res.Skipped = skipped
	}
	return res, err
}

func discover(ctx context.Context, conn scan.PacketConn, ranges []network.HostRange, opts Options) (*DiscoveryResult, error) {
	start := time.Now()
	res := &DiscoveryResult{Ranges: ranges}

	s := scan.NewScanner()
	s.Timeout = opts.Timeout
	s.Port = opts.Port

	debugLog(ComponentKasa, "discovering on %d ranges (timeout %v)", len(ranges), opts.Timeout)
	devices, err := s.Scan(ctx, conn, ranges)
	res.Devices = devices
	res.Duration = time.Since(start)
	if err != nil {
		return res, err
	}
	debugLog(ComponentKasa, "discovery found %d devices in %v", len(devices), res.Duration)

	if opts.Enrich.Enabled() && len(devices) > 0 {
		res.Info = Enrich(ctx, devices, opts.Enrich)
	}
	return res, nil
}

// Send delivers one command to target (an IPv4 address, optionally with
// a port) and waits for the reply. A device that does not answer within
// opts.Timeout yields a result with Answered false and a nil error.
// An invalid target fails before any socket is opened.
func Send(ctx context.Context, target string, cmd string, opts Options) (*command.Result, error) {
	opts = opts.withDefaults()

	dst, err := command.ParseTarget(target, opts.Port)
	if err != nil {
		return nil, err
	}

	conn, err := transport.Listen()
	if err != nil {
		return nil, err
	}
	defer conn.Close()

	debugLogVerbose(ComponentCommand, "%s <- %s", dst, FormatBytes([]byte(cmd), 64))
	r := command.NewRunner()
	r.Timeout = opts.Timeout
	return r.Run(ctx, conn, dst, []byte(cmd))
}
