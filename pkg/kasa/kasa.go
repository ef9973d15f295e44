// Package kasa is a client for the local control protocol spoken by TP-Link
// Kasa smart plugs and switches on UDP port 9999.
//
// Every frame is JSON text obfuscated with an autokey XOR (see the cipher
// subpackage). Two operations are provided:
//   - Send delivers one command to one device and returns the decrypted reply.
//   - Discover probes every host of the locally attached subnets with
//     get_sysinfo and collects replies until the network goes quiet.
//
// Discovered devices can optionally be enriched with their MAC address (ARP),
// vendor (IEEE OUI) and reverse DNS hostname.
package kasa

import (
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/marcuoli/go-kasa/pkg/kasa/network"
	"github.com/marcuoli/go-kasa/pkg/kasa/scan"
)

// Port is the device control port.
const Port = 9999

// DefaultTimeout is the reply and quiescence timeout.
const DefaultTimeout = 5 * time.Second

// SysinfoCommand asks a device for its system information.
const SysinfoCommand = scan.Probe

// ErrInvalidCIDR is returned when an explicit scan range cannot be parsed.
var ErrInvalidCIDR = errors.New("invalid CIDR")

// Device is a discovered device.
type Device = scan.Device

// Options configures Send and Discover.
type Options struct {
	// Timeout for a command reply, and the quiescence window of a scan.
	Timeout time.Duration
	// Port is the device port.
	Port int
	// MaxHosts is the widest range a scan will probe.
	MaxHosts int
	// Interfaces restricts discovery to these interface names (nil = all).
	Interfaces []string
	// CIDRs replaces interface enumeration with explicit ranges.
	CIDRs []string
	// Enrich controls per-device lookups after discovery.
	Enrich EnrichOptions
}

// DefaultOptions returns options with the protocol defaults and no enrichment.
func DefaultOptions() Options {
	return Options{
		Timeout:  DefaultTimeout,
		Port:     Port,
		MaxHosts: network.DefaultMaxHosts,
		Enrich:   DefaultEnrichOptions(),
	}
}

func (o Options) withDefaults() Options {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.Port <= 0 {
		o.Port = Port
	}
	if o.MaxHosts <= 0 {
		o.MaxHosts = network.DefaultMaxHosts
	}
	return o
}

// localInterfaces is replaced in tests.
var localInterfaces = network.LocalInterfaces

// addrs returns the (address, mask) pairs discovery should cover.
func (o Options) addrs() ([]network.InterfaceAddr, error) {
	if len(o.CIDRs) == 0 {
		return localInterfaces(o.Interfaces...)
	}

	res := make([]network.InterfaceAddr, 0, len(o.CIDRs))
	for _, c := range o.CIDRs {
		ip, ipnet, err := net.ParseCIDR(c)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidCIDR, err)
		}
		res = append(res, network.InterfaceAddr{Name: "cidr", IP: ip, Mask: ipnet.Mask})
	}
	return res, nil
}
