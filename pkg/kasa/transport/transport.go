// Package transport owns the single UDP socket used to talk to devices.
//
// One Conn is bound to an OS-assigned port on the wildcard address and is
// used both to send frames and to receive every reply for the lifetime of
// a command or scan. Receive blocks on a read deadline, so waiting is done
// by the runtime netpoller rather than by polling.
package transport

import (
	"errors"
	"fmt"
	"net"
	"os"
	"time"
)

const (
	// BufferSize is the receive buffer size. Longer datagrams are truncated.
	BufferSize = 4096
	// Network is the socket family used for all traffic.
	Network = "udp4"
)

// ErrTimeout is returned by Receive when the wait elapses with no datagram.
// It is an expected outcome, not a failure.
var ErrTimeout = errors.New("receive timeout")

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from transport operations.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// Error is a fatal socket failure. Callers are expected to abort the
// current operation when they see one; nothing in this module retries.
type Error struct {
	Op  string // listen, send, deadline, receive
	Err error
}

func (e *Error) Error() string {
	return fmt.Sprintf("transport %s: %v", e.Op, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// IsFatal reports whether err carries a transport *Error.
func IsFatal(err error) bool {
	var te *Error
	return errors.As(err, &te)
}

// Datagram is one received UDP payload, still in wire form.
type Datagram struct {
	From     *net.UDPAddr
	Data     []byte
	Received time.Time
}

// Conn is a UDP socket for frames to and from devices.
type Conn struct {
	pc  net.PacketConn
	buf []byte
}

// Listen binds a new socket on 0.0.0.0 with an OS-assigned port.
func Listen() (*Conn, error) {
	return ListenAddr(":0")
}

// ListenAddr binds a new socket on the given local address.
func ListenAddr(addr string) (*Conn, error) {
	pc, err := net.ListenPacket(Network, addr)
	if err != nil {
		return nil, &Error{Op: "listen", Err: err}
	}
	debugLog("listening on %s", pc.LocalAddr())
	return &Conn{pc: pc, buf: make([]byte, BufferSize)}, nil
}

// LocalAddr returns the bound local address.
func (c *Conn) LocalAddr() *net.UDPAddr {
	if a, ok := c.pc.LocalAddr().(*net.UDPAddr); ok {
		return a
	}
	return nil
}

// Send writes one frame to dst. There is no retry.
func (c *Conn) Send(dst *net.UDPAddr, frame []byte) error {
	if dst == nil {
		return &Error{Op: "send", Err: errors.New("nil destination")}
	}
	if _, err := c.pc.WriteTo(frame, dst); err != nil {
		return &Error{Op: "send", Err: err}
	}
	return nil
}

// Receive waits up to timeout for a single datagram.
// It returns ErrTimeout if nothing arrives in time.
func (c *Conn) Receive(timeout time.Duration) (*Datagram, error) {
	if err := c.pc.SetReadDeadline(time.Now().Add(timeout)); err != nil {
		return nil, &Error{Op: "deadline", Err: err}
	}

	n, from, err := c.pc.ReadFrom(c.buf)
	if err != nil {
		if errors.Is(err, os.ErrDeadlineExceeded) {
			return nil, ErrTimeout
		}
		var ne net.Error
		if errors.As(err, &ne) && ne.Timeout() {
			return nil, ErrTimeout
		}
		return nil, &Error{Op: "receive", Err: err}
	}

	d := &Datagram{
		Data:     append([]byte(nil), c.buf[:n]...),
		Received: time.Now(),
	}
	if udpAddr, ok := from.(*net.UDPAddr); ok {
		d.From = udpAddr
	} else {
		d.From, _ = net.ResolveUDPAddr(Network, from.String())
	}
	debugLog("received %d bytes from %s", n, from)
	return d, nil
}

// Close releases the socket.
func (c *Conn) Close() error {
	return c.pc.Close()
}
