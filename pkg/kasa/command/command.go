// Package command sends a single command to a single device and returns
// its decrypted reply.
package command

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strconv"
	"time"

	"github.com/marcuoli/go-kasa/pkg/kasa/cipher"
	"github.com/marcuoli/go-kasa/pkg/kasa/transport"
)

const (
	// Port is the device control port.
	Port = 9999
	// DefaultTimeout is how long Run waits for the reply.
	DefaultTimeout = 5 * time.Second
)

// ErrInvalidAddress is returned by ParseTarget for anything that is not an
// IPv4 literal, optionally followed by a port.
var ErrInvalidAddress = errors.New("invalid device address")

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from command operations.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// PacketConn is the socket a command is sent on. *transport.Conn implements it.
type PacketConn interface {
	Send(dst *net.UDPAddr, frame []byte) error
	Receive(timeout time.Duration) (*transport.Datagram, error)
}

// Result is the outcome of one command. Answered is false when the device
// stayed silent for the whole timeout, which is not an error.
type Result struct {
	Target   string
	Answered bool
	From     *net.UDPAddr
	Response string // Decrypted reply, verbatim
	Duration time.Duration
}

// Runner sends commands.
type Runner struct {
	Timeout time.Duration
}

// NewRunner creates a runner with the default timeout.
func NewRunner() *Runner {
	return &Runner{Timeout: DefaultTimeout}
}

// ParseTarget validates a device address. s is an IPv4 literal, or
// ip:port. defaultPort is used when no port is given.
func ParseTarget(s string, defaultPort int) (*net.UDPAddr, error) {
	host, portStr := s, ""
	if h, p, err := net.SplitHostPort(s); err == nil {
		host, portStr = h, p
	}

	ip := net.ParseIP(host)
	if ip == nil || ip.To4() == nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidAddress, s)
	}

	port := defaultPort
	if portStr != "" {
		p, err := strconv.Atoi(portStr)
		if err != nil || p <= 0 || p > 65535 {
			return nil, fmt.Errorf("%w: bad port in %q", ErrInvalidAddress, s)
		}
		port = p
	}
	return &net.UDPAddr{IP: ip.To4(), Port: port}, nil
}

// Run sends cmd to dst and waits for exactly one reply.
func (r *Runner) Run(ctx context.Context, conn PacketConn, dst *net.UDPAddr, cmd []byte) (*Result, error) {
	res := &Result{Target: dst.String()}
	if err := ctx.Err(); err != nil {
		return res, err
	}

	timeout := r.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if d, ok := ctx.Deadline(); ok {
		if left := time.Until(d); left < timeout {
			timeout = left
		}
	}

	start := time.Now()
	if err := conn.Send(dst, cipher.Encrypt(cmd)); err != nil {
		return res, fmt.Errorf("send to %s: %w", dst, err)
	}
	debugLog("%s: sent %d bytes", dst, len(cmd))

	d, err := conn.Receive(timeout)
	res.Duration = time.Since(start)
	if errors.Is(err, transport.ErrTimeout) {
		debugLog("%s: no response after %v", dst, timeout)
		return res, nil
	}
	if err != nil {
		return res, fmt.Errorf("receive from %s: %w", dst, err)
	}

	res.Answered = true
	res.From = d.From
	res.Response = cipher.DecryptString(d.Data)
	debugLog("%s: %d byte reply in %v", dst, len(d.Data), res.Duration)
	return res, nil
}
