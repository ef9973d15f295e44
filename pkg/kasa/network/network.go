// Package network computes the IPv4 host ranges probed during discovery.
package network

import (
	"errors"
	"fmt"
	"net"
)

// DefaultMaxHosts is the widest range discovery will probe. A /24 fits.
// Anything larger is skipped entirely rather than partially probed.
const DefaultMaxHosts = 255

var (
	// ErrNotIPv4 is returned for IPv6 addresses or non-IPv4 masks.
	ErrNotIPv4 = errors.New("not an IPv4 address")
	// ErrLoopback is returned for loopback addresses.
	ErrLoopback = errors.New("loopback address")
	// ErrEmptyRange is returned when no host remains after dropping the
	// network and broadcast addresses (/31 and /32).
	ErrEmptyRange = errors.New("no usable hosts")
	// ErrRangeTooLarge is returned when the range exceeds the host limit.
	ErrRangeTooLarge = errors.New("host range too large")
)

// HostRange is an inclusive range of IPv4 hosts in integer form.
type HostRange struct {
	Start uint32
	End   uint32
}

// Len returns the number of hosts in the range.
func (r HostRange) Len() int {
	if r.End < r.Start {
		return 0
	}
	return int(uint64(r.End) - uint64(r.Start) + 1)
}

// Contains reports whether ip falls inside the range.
func (r HostRange) Contains(ip net.IP) bool {
	ip4 := ip.To4()
	if ip4 == nil {
		return false
	}
	u := IPToUint32(ip4)
	return u >= r.Start && u <= r.End
}

// Each calls fn for every host in ascending order until fn returns false.
func (r HostRange) Each(fn func(ip net.IP) bool) {
	if r.End < r.Start {
		return
	}
	for u := r.Start; ; u++ {
		if !fn(Uint32ToIP(u)) || u == r.End {
			return
		}
	}
}

// IPs returns every host in the range.
func (r HostRange) IPs() []net.IP {
	res := make([]net.IP, 0, r.Len())
	r.Each(func(ip net.IP) bool {
		res = append(res, ip)
		return true
	})
	return res
}

func (r HostRange) String() string {
	return fmt.Sprintf("%s-%s", Uint32ToIP(r.Start), Uint32ToIP(r.End))
}

// ComputeRange returns the hosts of the subnet addr/mask, excluding the
// network and broadcast addresses. maxHosts <= 0 means DefaultMaxHosts.
func ComputeRange(addr net.IP, mask net.IPMask, maxHosts int) (HostRange, error) {
	ip4 := addr.To4()
	if ip4 == nil {
		return HostRange{}, fmt.Errorf("%v: %w", addr, ErrNotIPv4)
	}
	m4 := mask4(mask)
	if m4 == nil {
		return HostRange{}, fmt.Errorf("mask %v: %w", mask, ErrNotIPv4)
	}
	if ip4.IsLoopback() {
		return HostRange{}, fmt.Errorf("%v: %w", addr, ErrLoopback)
	}
	if maxHosts <= 0 {
		maxHosts = DefaultMaxHosts
	}

	u := IPToUint32(ip4)
	m := IPToUint32(net.IP(m4))
	network := u & m
	broadcast := u | ^m
	if broadcast-network < 2 {
		return HostRange{}, fmt.Errorf("%v/%d: %w", addr, maskBits(m4), ErrEmptyRange)
	}

	r := HostRange{Start: network + 1, End: broadcast - 1}
	if r.Len() > maxHosts {
		return HostRange{}, fmt.Errorf("%v/%d has %d hosts (max %d): %w",
			addr, maskBits(m4), r.Len(), maxHosts, ErrRangeTooLarge)
	}
	return r, nil
}

// RangeFromCIDR computes the host range of an explicit CIDR string.
func RangeFromCIDR(cidr string, maxHosts int) (HostRange, error) {
	ip, ipnet, err := net.ParseCIDR(cidr)
	if err != nil {
		return HostRange{}, err
	}
	return ComputeRange(ip, ipnet.Mask, maxHosts)
}

// Skipped records an interface address that produced no range.
type Skipped struct {
	Addr InterfaceAddr
	Err  error
}

// ComputeRanges computes the range of every address. Failures are returned
// as skips, not errors. Identical ranges are kept once, in first-seen order.
func ComputeRanges(addrs []InterfaceAddr, maxHosts int) ([]HostRange, []Skipped) {
	var ranges []HostRange
	var skipped []Skipped
	seen := make(map[HostRange]bool)

	for _, a := range addrs {
		r, err := ComputeRange(a.IP, a.Mask, maxHosts)
		if err != nil {
			skipped = append(skipped, Skipped{Addr: a, Err: err})
			continue
		}
		if seen[r] {
			continue
		}
		seen[r] = true
		ranges = append(ranges, r)
	}
	return ranges, skipped
}

// mask4 returns the 4-byte form of an IPv4 mask, or nil.
func mask4(mask net.IPMask) net.IPMask {
	switch len(mask) {
	case net.IPv4len:
		return mask
	case net.IPv6len:
		for _, b := range mask[:12] {
			if b != 0xff {
				return nil
			}
		}
		return mask[12:]
	}
	return nil
}

func maskBits(m net.IPMask) int {
	ones, _ := m.Size()
	return ones
}

// IPToUint32 converts an IPv4 address to its integer form.
func IPToUint32(ip net.IP) uint32 {
	ip = ip.To4()
	return uint32(ip[0])<<24 | uint32(ip[1])<<16 | uint32(ip[2])<<8 | uint32(ip[3])
}

// Uint32ToIP converts an integer back to an IPv4 address.
func Uint32ToIP(u uint32) net.IP {
	return net.IPv4(byte(u>>24), byte(u>>16), byte(u>>8), byte(u))
}
