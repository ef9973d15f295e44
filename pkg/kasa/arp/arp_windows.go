//go:build windows

package arp

import "context"

// LookupAddr always fails with ErrNotSupported on Windows.
func (a *Discovery) LookupAddr(ctx context.Context, ip string) (*Result, error) {
	return &Result{IP: ip, Error: ErrNotSupported}, ErrNotSupported
}

// IsSupported reports whether ARP lookups work on this platform.
func IsSupported() bool {
	return false
}
