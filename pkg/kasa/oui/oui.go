// Package oui maps MAC addresses to vendor names using an IEEE OUI
// database file (oui.txt) loaded with github.com/klauspost/oui.
//
// The database is opened lazily on the first lookup after SetDatabase.
// Without a database every lookup returns ErrNoDatabase.
package oui

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"sync"

	"github.com/klauspost/oui"
)

var (
	// ErrNoDatabase is returned when no database path has been set.
	ErrNoDatabase = errors.New("no OUI database configured")
	// ErrInvalidMAC is returned for malformed MAC addresses.
	ErrInvalidMAC = errors.New("invalid MAC address format")
)

var (
	mu     sync.Mutex
	dbPath string
	db     oui.OuiDB
	dbErr  error
	loaded bool
)

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from OUI operations.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// VendorInfo contains information about a MAC address vendor.
type VendorInfo struct {
	Manufacturer string
	Address      []string
	Country      string
	Prefix       string
}

// SetDatabase sets the path of the OUI database file. The file is opened
// on the next lookup.
func SetDatabase(path string) error {
	if _, err := os.Stat(path); err != nil {
		return fmt.Errorf("OUI database: %w", err)
	}

	mu.Lock()
	defer mu.Unlock()
	dbPath = path
	db, dbErr, loaded = nil, nil, false
	debugLog("OUI database path set: %s", path)
	return nil
}

func database() (oui.OuiDB, error) {
	mu.Lock()
	defer mu.Unlock()

	if dbPath == "" {
		return nil, ErrNoDatabase
	}
	if !loaded {
		loaded = true
		debugLog("loading OUI database from %s", dbPath)
		db, dbErr = oui.OpenStaticFile(dbPath)
		if dbErr != nil {
			dbErr = fmt.Errorf("open OUI database: %w", dbErr)
		}
	}
	return db, dbErr
}

// Lookup returns vendor information for a MAC address in any of the
// formats accepted by NormalizeMAC. An unknown prefix returns (nil, nil).
func Lookup(mac string) (*VendorInfo, error) {
	norm := NormalizeMAC(mac)
	if norm == "" {
		return nil, ErrInvalidMAC
	}

	d, err := database()
	if err != nil {
		return nil, err
	}

	hwAddr, err := net.ParseMAC(norm)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidMAC, err)
	}

	entry, err := d.Query(hwAddr.String())
	if err != nil {
		if err == oui.ErrNotFound {
			debugLog("%s: vendor not found", norm)
			return nil, nil
		}
		return nil, fmt.Errorf("OUI lookup failed: %w", err)
	}

	vendor := &VendorInfo{
		Manufacturer: entry.Manufacturer,
		Address:      entry.Address,
		Country:      entry.Country,
		Prefix:       entry.Prefix.String(),
	}
	debugLog("%s -> %s", norm, vendor.Manufacturer)
	return vendor, nil
}

// LookupName returns just the manufacturer name, or "" if unknown.
func LookupName(mac string) string {
	vendor, err := Lookup(mac)
	if err != nil || vendor == nil {
		return ""
	}
	return vendor.Manufacturer
}

// NormalizeMAC converts "00-11-22-33-44-55", "0011.2233.4455" and similar
// to "00:11:22:33:44:55". Returns "" if invalid.
func NormalizeMAC(mac string) string {
	mac = strings.ToLower(mac)
	mac = strings.NewReplacer("-", "", ":", "", ".", "").Replace(mac)

	if len(mac) != 12 {
		return ""
	}
	for _, c := range mac {
		if !((c >= '0' && c <= '9') || (c >= 'a' && c <= 'f')) {
			return ""
		}
	}

	return fmt.Sprintf("%s:%s:%s:%s:%s:%s",
		mac[0:2], mac[2:4], mac[4:6], mac[6:8], mac[8:10], mac[10:12])
}
