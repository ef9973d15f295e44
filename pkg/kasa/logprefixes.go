// Package kasa: Log prefix constants for consistent log tagging.
// These constants are exported so consumers can use them for consistent logging,
// but they are not required - consumers can use their own prefixes via SetDebugLogger.
package kasa

// Component identifies the part of the client that produced a log line.
type Component string

const (
	ComponentKasa      Component = "kasa"
	ComponentTransport Component = "transport"
	ComponentScan      Component = "scan"
	ComponentCommand   Component = "command"
	ComponentNetwork   Component = "network"
	ComponentARP       Component = "arp"
	ComponentOUI       Component = "oui"
	ComponentDNS       Component = "dns"
)

// Log prefix constants for components.
// Format follows [Component] or [Component:Subcomponent] pattern.
const (
	LogPrefixKasa      = "[Kasa]"
	LogPrefixTransport = "[Kasa:Transport]"
	LogPrefixScan      = "[Kasa:Scan]"
	LogPrefixCommand   = "[Kasa:Command]"
	LogPrefixNetwork   = "[Kasa:Network]"
	LogPrefixARP       = "[Kasa:ARP]"
	LogPrefixOUI       = "[Kasa:OUI]"
	LogPrefixDNS       = "[Kasa:DNS]"

	// Debug prefix - use as "[DEBUG][Kasa:*]" format
	LogPrefixDebug = "[DEBUG]"
)

// ComponentToPrefix returns the log prefix for a component.
func ComponentToPrefix(c Component) string {
	switch c {
	case ComponentTransport:
		return LogPrefixTransport
	case ComponentScan:
		return LogPrefixScan
	case ComponentCommand:
		return LogPrefixCommand
	case ComponentNetwork:
		return LogPrefixNetwork
	case ComponentARP:
		return LogPrefixARP
	case ComponentOUI:
		return LogPrefixOUI
	case ComponentDNS:
		return LogPrefixDNS
	default:
		return LogPrefixKasa
	}
}
