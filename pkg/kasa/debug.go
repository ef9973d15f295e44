// Package kasa: Debug logging support.
package kasa

import (
	"fmt"
	"sync"

	"github.com/marcuoli/go-kasa/pkg/kasa/arp"
	"github.com/marcuoli/go-kasa/pkg/kasa/command"
	"github.com/marcuoli/go-kasa/pkg/kasa/oui"
	"github.com/marcuoli/go-kasa/pkg/kasa/rdns"
	"github.com/marcuoli/go-kasa/pkg/kasa/scan"
	"github.com/marcuoli/go-kasa/pkg/kasa/transport"
)

// DebugLevel represents the verbosity level for debug logging.
type DebugLevel int

const (
	// DebugOff disables all debug logging.
	DebugOff DebugLevel = iota
	// DebugBasic logs scan progress, command outcomes and dropped replies.
	DebugBasic
	// DebugVerbose also logs every datagram and enrichment lookup.
	DebugVerbose
)

// DebugLogger is a callback function for debug logging.
// The component parameter indicates which part of the client generated the message.
type DebugLogger func(component Component, format string, args ...interface{})

var (
	debugLogger DebugLogger
	debugLevel  DebugLevel
	debugMu     sync.RWMutex
)

// SetDebugLogger sets a custom debug logger callback and routes the
// subpackage loggers through it. Pass nil to disable debug logging.
func SetDebugLogger(logger DebugLogger) {
	debugMu.Lock()
	debugLogger = logger
	debugMu.Unlock()

	if logger == nil {
		transport.DebugLogger = nil
		scan.DebugLogger = nil
		command.DebugLogger = nil
		arp.DebugLogger = nil
		oui.DebugLogger = nil
		rdns.DebugLogger = nil
		return
	}
	transport.DebugLogger = subLogger(ComponentTransport, true)
	scan.DebugLogger = subLogger(ComponentScan, false)
	command.DebugLogger = subLogger(ComponentCommand, false)
	arp.DebugLogger = subLogger(ComponentARP, true)
	oui.DebugLogger = subLogger(ComponentOUI, true)
	rdns.DebugLogger = subLogger(ComponentDNS, true)
}

// subLogger adapts a subpackage callback to the leveled logger.
// Verbose components only log at DebugVerbose.
func subLogger(c Component, verbose bool) func(string, ...interface{}) {
	if verbose {
		return func(format string, args ...interface{}) { debugLogVerbose(c, format, args...) }
	}
	return func(format string, args ...interface{}) { debugLog(c, format, args...) }
}

// SetDebugLevel sets the debug verbosity level.
func SetDebugLevel(level DebugLevel) {
	debugMu.Lock()
	defer debugMu.Unlock()
	debugLevel = level
}

// GetDebugLevel returns the current debug level.
func GetDebugLevel() DebugLevel {
	debugMu.RLock()
	defer debugMu.RUnlock()
	return debugLevel
}

// debugLog logs a message if debug logging is enabled.
func debugLog(component Component, format string, args ...interface{}) {
	debugMu.RLock()
	logger := debugLogger
	level := debugLevel
	debugMu.RUnlock()

	if logger != nil && level >= DebugBasic {
		logger(component, format, args...)
	}
}

// debugLogVerbose logs a verbose message if verbose debug logging is enabled.
func debugLogVerbose(component Component, format string, args ...interface{}) {
	debugMu.RLock()
	logger := debugLogger
	level := debugLevel
	debugMu.RUnlock()

	if logger != nil && level >= DebugVerbose {
		logger(component, format, args...)
	}
}

// FormatBytes returns a hex dump preview of bytes for debugging.
func FormatBytes(data []byte, maxLen int) string {
	if len(data) == 0 {
		return "(empty)"
	}
	if maxLen <= 0 {
		maxLen = 64
	}
	if len(data) > maxLen {
		return fmt.Sprintf("%x... (%d bytes total)", data[:maxLen], len(data))
	}
	return fmt.Sprintf("%x", data)
}
