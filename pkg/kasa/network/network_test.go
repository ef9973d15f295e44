// Package network tests for host range computation.
package network

import (
	"errors"
	"net"
	"testing"
)

func TestComputeRange_Slash24(t *testing.T) {
	r, err := ComputeRange(net.ParseIP("192.168.1.10"), net.CIDRMask(24, 32), DefaultMaxHosts)
	if err != nil {
		t.Fatalf("ComputeRange failed: %v", err)
	}
	if got := Uint32ToIP(r.Start).String(); got != "192.168.1.1" {
		t.Errorf("Expected start 192.168.1.1, got %s", got)
	}
	if got := Uint32ToIP(r.End).String(); got != "192.168.1.254" {
		t.Errorf("Expected end 192.168.1.254, got %s", got)
	}
	if r.Len() != 254 {
		t.Errorf("Expected 254 hosts, got %d", r.Len())
	}
	if r.String() != "192.168.1.1-192.168.1.254" {
		t.Errorf("Unexpected String(): %s", r.String())
	}
}

func TestComputeRange_Sizes(t *testing.T) {
	tests := []struct {
		cidr     string
		expected int
	}{
		{"192.168.1.0/30", 2},   // 4 total - network - broadcast = 2
		{"192.168.1.0/29", 6},   // 8 total - network - broadcast = 6
		{"192.168.1.0/28", 14},  // 16 total - network - broadcast = 14
		{"192.168.1.0/27", 30},  // 32 total - network - broadcast = 30
		{"192.168.1.0/26", 62},  // 64 total - network - broadcast = 62
		{"192.168.1.0/24", 254}, // 256 total - network - broadcast = 254
	}

	for _, tt := range tests {
		t.Run(tt.cidr, func(t *testing.T) {
			r, err := RangeFromCIDR(tt.cidr, DefaultMaxHosts)
			if err != nil {
				t.Fatalf("RangeFromCIDR(%s) failed: %v", tt.cidr, err)
			}
			if r.Len() != tt.expected {
				t.Errorf("RangeFromCIDR(%s) returned %d hosts, expected %d", tt.cidr, r.Len(), tt.expected)
			}
			if len(r.IPs()) != tt.expected {
				t.Errorf("IPs() returned %d, expected %d", len(r.IPs()), tt.expected)
			}
		})
	}
}

func TestComputeRange_Errors(t *testing.T) {
	tests := []struct {
		name string
		ip   string
		mask net.IPMask
		want error
	}{
		{"slash8 too large", "10.1.2.3", net.CIDRMask(8, 32), ErrRangeTooLarge},
		{"slash23 too large", "192.168.0.5", net.CIDRMask(23, 32), ErrRangeTooLarge},
		{"loopback", "127.0.0.1", net.CIDRMask(8, 32), ErrLoopback},
		{"ipv6", "2001:db8::1", net.CIDRMask(64, 128), ErrNotIPv4},
		{"ipv6 mask", "192.168.1.1", net.CIDRMask(64, 128), ErrNotIPv4},
		{"slash31", "192.168.1.0", net.CIDRMask(31, 32), ErrEmptyRange},
		{"slash32", "192.168.1.1", net.CIDRMask(32, 32), ErrEmptyRange},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ComputeRange(net.ParseIP(tt.ip), tt.mask, DefaultMaxHosts)
			if !errors.Is(err, tt.want) {
				t.Errorf("Expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestComputeRange_CustomMax(t *testing.T) {
	if _, err := RangeFromCIDR("192.168.1.0/24", 100); !errors.Is(err, ErrRangeTooLarge) {
		t.Errorf("Expected ErrRangeTooLarge with max 100, got %v", err)
	}
	r, err := RangeFromCIDR("10.0.0.0/22", 1022)
	if err != nil {
		t.Fatalf("Expected /22 to fit max 1022, got %v", err)
	}
	if r.Len() != 1022 {
		t.Errorf("Expected 1022 hosts, got %d", r.Len())
	}
}

func TestComputeRange_ZeroMaxUsesDefault(t *testing.T) {
	if _, err := RangeFromCIDR("192.168.1.0/24", 0); err != nil {
		t.Errorf("Expected default max to allow /24, got %v", err)
	}
}

func TestComputeRange_SixteenByteMask(t *testing.T) {
	mask := net.CIDRMask(120, 128)
	r, err := ComputeRange(net.ParseIP("192.168.7.7"), mask, DefaultMaxHosts)
	if err != nil {
		t.Fatalf("ComputeRange failed: %v", err)
	}
	if r.Len() != 254 {
		t.Errorf("Expected 254 hosts, got %d", r.Len())
	}
}

func TestRangeFromCIDR_Invalid(t *testing.T) {
	invalid := []string{
		"invalid",
		"192.168.1.0",     // No mask
		"192.168.1.0/abc", // Invalid mask
		"",
	}

	for _, cidr := range invalid {
		t.Run(cidr, func(t *testing.T) {
			if _, err := RangeFromCIDR(cidr, DefaultMaxHosts); err == nil {
				t.Errorf("Expected error for invalid CIDR %q", cidr)
			}
		})
	}
}

func TestHostRange_EachOrderAndStop(t *testing.T) {
	r := HostRange{Start: IPToUint32(net.ParseIP("10.0.0.1")), End: IPToUint32(net.ParseIP("10.0.0.5"))}

	var got []string
	r.Each(func(ip net.IP) bool {
		got = append(got, ip.String())
		return len(got) < 3
	})
	want := []string{"10.0.0.1", "10.0.0.2", "10.0.0.3"}
	if len(got) != len(want) {
		t.Fatalf("Expected %v, got %v", want, got)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Expected %s at %d, got %s", want[i], i, got[i])
		}
	}
}

func TestHostRange_EachTopOfAddressSpace(t *testing.T) {
	r := HostRange{Start: 0xFFFFFFFE, End: 0xFFFFFFFF}
	n := 0
	r.Each(func(net.IP) bool { n++; return true })
	if n != 2 {
		t.Errorf("Expected 2 iterations without wrap-around, got %d", n)
	}
}

func TestHostRange_Contains(t *testing.T) {
	r, _ := RangeFromCIDR("192.168.1.0/24", DefaultMaxHosts)
	if !r.Contains(net.ParseIP("192.168.1.100")) {
		t.Error("Expected 192.168.1.100 in range")
	}
	if r.Contains(net.ParseIP("192.168.1.255")) {
		t.Error("Broadcast must not be in range")
	}
	if r.Contains(net.ParseIP("::1")) {
		t.Error("IPv6 must not be in range")
	}
}

func TestComputeRanges_SkipsAndDedups(t *testing.T) {
	addrs := []InterfaceAddr{
		{Name: "eth0", IP: net.ParseIP("192.168.1.10"), Mask: net.CIDRMask(24, 32)},
		{Name: "eth0", IP: net.ParseIP("192.168.1.11"), Mask: net.CIDRMask(24, 32)},
		{Name: "eth1", IP: net.ParseIP("10.0.0.2"), Mask: net.CIDRMask(8, 32)},
		{Name: "wlan0", IP: net.ParseIP("172.16.5.1"), Mask: net.CIDRMask(28, 32)},
	}

	ranges, skipped := ComputeRanges(addrs, DefaultMaxHosts)
	if len(ranges) != 2 {
		t.Fatalf("Expected 2 ranges, got %d: %v", len(ranges), ranges)
	}
	if ranges[0].String() != "192.168.1.1-192.168.1.254" {
		t.Errorf("Unexpected first range %s", ranges[0])
	}
	if ranges[1].String() != "172.16.5.1-172.16.5.14" {
		t.Errorf("Unexpected second range %s", ranges[1])
	}
	if len(skipped) != 1 {
		t.Fatalf("Expected 1 skipped, got %d", len(skipped))
	}
	if skipped[0].Addr.Name != "eth1" || !errors.Is(skipped[0].Err, ErrRangeTooLarge) {
		t.Errorf("Unexpected skip: %+v", skipped[0])
	}
}

func TestInterfaceAddr_String(t *testing.T) {
	a := InterfaceAddr{Name: "eth0", IP: net.ParseIP("192.168.1.10"), Mask: net.CIDRMask(24, 32)}
	if got := a.String(); got != "eth0 192.168.1.10/24" {
		t.Errorf("Unexpected String(): %q", got)
	}
}

func TestLocalInterfaces_NoLoopback(t *testing.T) {
	addrs, err := LocalInterfaces()
	if err != nil {
		t.Skipf("interfaces unavailable: %v", err)
	}
	for _, a := range addrs {
		if a.IP.IsLoopback() {
			t.Errorf("Loopback address returned: %s", a)
		}
		if a.IP.To4() == nil {
			t.Errorf("Non-IPv4 address returned: %s", a)
		}
	}
}

func TestLocalInterfaces_UnknownName(t *testing.T) {
	addrs, err := LocalInterfaces("no-such-interface0")
	if err != nil {
		t.Skipf("interfaces unavailable: %v", err)
	}
	if len(addrs) != 0 {
		t.Errorf("Expected no addresses, got %v", addrs)
	}
}

func TestIPToUint32(t *testing.T) {
	tests := []struct {
		ip       string
		expected uint32
	}{
		{"0.0.0.0", 0},
		{"0.0.0.1", 1},
		{"0.0.1.0", 256},
		{"0.1.0.0", 65536},
		{"1.0.0.0", 16777216},
		{"192.168.1.1", 3232235777},
		{"255.255.255.255", 4294967295},
	}

	for _, tt := range tests {
		t.Run(tt.ip, func(t *testing.T) {
			got := IPToUint32(net.ParseIP(tt.ip))
			if got != tt.expected {
				t.Errorf("IPToUint32(%s) = %d, want %d", tt.ip, got, tt.expected)
			}
		})
	}
}

func TestRoundTrip_IPConversion(t *testing.T) {
	original := "192.168.1.100"
	u := IPToUint32(net.ParseIP(original))
	if result := Uint32ToIP(u); result.String() != original {
		t.Errorf("Round trip failed: %s -> %d -> %s", original, u, result)
	}
}

func BenchmarkComputeRange(b *testing.B) {
	ip := net.ParseIP("192.168.1.100")
	mask := net.CIDRMask(24, 32)
	for i := 0; i < b.N; i++ {
		_, _ = ComputeRange(ip, mask, DefaultMaxHosts)
	}
}
