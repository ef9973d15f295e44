// Package scan discovers devices by sending the sysinfo probe to every host
// in a set of ranges and collecting replies until the network goes quiet.
//
// A scan is a three-state sequence. In StateSending the encrypted probe is
// written to every host, ranges in input order and hosts ascending. In
// StateCollecting the scanner waits up to Timeout for a reply, and every
// reply restarts the full window. The first window that passes in silence
// moves the scan to StateDone.
package scan

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/marcuoli/go-kasa/pkg/kasa/cipher"
	"github.com/marcuoli/go-kasa/pkg/kasa/network"
	"github.com/marcuoli/go-kasa/pkg/kasa/transport"
)

const (
	// Port is the device control port.
	Port = 9999
	// DefaultTimeout is the quiescence window.
	DefaultTimeout = 5 * time.Second
	// Probe is the command sent to every host.
	Probe = `{"system":{"get_sysinfo":{}}}`
)

// DebugLogger is a callback for debug logging.
// Set this to receive debug messages from scan operations.
var DebugLogger func(format string, args ...interface{})

func debugLog(format string, args ...interface{}) {
	if DebugLogger != nil {
		DebugLogger(format, args...)
	}
}

// PacketConn is the socket a scan runs on. *transport.Conn implements it.
// Receive must return transport.ErrTimeout when the wait elapses.
type PacketConn interface {
	Send(dst *net.UDPAddr, frame []byte) error
	Receive(timeout time.Duration) (*transport.Datagram, error)
}

// Clock supplies the current time.
type Clock interface {
	Now() time.Time
}

type wallClock struct{}

func (wallClock) Now() time.Time { return time.Now() }

// State is the phase of a running scan.
type State int

const (
	StateSending State = iota
	StateCollecting
	StateDone
)

func (s State) String() string {
	switch s {
	case StateSending:
		return "sending"
	case StateCollecting:
		return "collecting"
	case StateDone:
		return "done"
	default:
		return fmt.Sprintf("State(%d)", int(s))
	}
}

// Device is a reply that carried both an alias and a model.
type Device struct {
	IP       string
	Port     int
	Alias    string
	Model    string
	Received time.Time
	Raw      string // Decrypted reply text
}

// Scanner holds the scan parameters. The zero value is not usable; use NewScanner.
type Scanner struct {
	Timeout time.Duration
	Port    int
	Probe   []byte
	Clock   Clock

	// OnState is called on every state transition, if set.
	OnState func(State)
}

// NewScanner creates a scanner with the default probe, port and timeout.
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultTimeout,
		Port:    Port,
		Probe:   []byte(Probe),
		Clock:   wallClock{},
	}
}

// Scan probes every host of ranges through conn and returns the devices
// whose replies carried both fields. Replies missing a field are dropped.
// Any send or receive error other than a timeout aborts the scan.
func (s *Scanner) Scan(ctx context.Context, conn PacketConn, ranges []network.HostRange) ([]Device, error) {
	run := &session{
		scanner: s,
		conn:    conn,
		ranges:  ranges,
		clock:   s.Clock,
		state:   StateSending,
	}
	if run.clock == nil {
		run.clock = wallClock{}
	}

	for run.state != StateDone {
		if err := ctx.Err(); err != nil {
			return run.devices, err
		}
		if err := run.step(); err != nil {
			return run.devices, err
		}
	}
	return run.devices, nil
}

// session is the mutable state of one Scan call.
type session struct {
	scanner *Scanner
	conn    PacketConn
	ranges  []network.HostRange
	clock   Clock

	state   State
	sent    int
	replies int
	devices []Device
	// lastEvent is when the current window started: the end of sending, then each reply.
	lastEvent time.Time
}

func (r *session) setState(st State) {
	r.state = st
	debugLog("state -> %s", st)
	if r.scanner.OnState != nil {
		r.scanner.OnState(st)
	}
}

func (r *session) step() error {
	switch r.state {
	case StateSending:
		if err := r.sendAll(); err != nil {
			return err
		}
		r.lastEvent = r.clock.Now()
		r.setState(StateCollecting)
	case StateCollecting:
		d, err := r.conn.Receive(r.scanner.Timeout)
		if errors.Is(err, transport.ErrTimeout) {
			debugLog("quiet for %v since %s: %d replies, %d devices",
				r.scanner.Timeout, r.lastEvent.Format(time.RFC3339Nano), r.replies, len(r.devices))
			r.setState(StateDone)
			return nil
		}
		if err != nil {
			return fmt.Errorf("collect replies: %w", err)
		}
		r.replies++
		r.lastEvent = r.clock.Now()
		r.handle(d)
	}
	return nil
}

func (r *session) sendAll() error {
	frame := cipher.Encrypt(r.scanner.Probe)
	for _, hr := range r.ranges {
		debugLog("probing %s (%d hosts)", hr, hr.Len())
		var sendErr error
		hr.Each(func(ip net.IP) bool {
			dst := &net.UDPAddr{IP: ip, Port: r.scanner.Port}
			if err := r.conn.Send(dst, frame); err != nil {
				sendErr = fmt.Errorf("probe %s: %w", dst, err)
				return false
			}
			r.sent++
			return true
		})
		if sendErr != nil {
			return sendErr
		}
	}
	debugLog("sent %d probes", r.sent)
	return nil
}

func (r *session) handle(d *transport.Datagram) {
	text := cipher.Decrypt(d.Data)

	var ip string
	var port int
	if d.From != nil {
		ip = d.From.IP.String()
		port = d.From.Port
	}

	alias, okAlias := ExtractField(text, "alias")
	model, okModel := ExtractField(text, "model")
	if !okAlias || !okModel {
		debugLog("%s: reply without alias/model dropped (%d bytes)", ip, len(text))
		return
	}

	received := d.Received
	if received.IsZero() {
		received = r.lastEvent
	}
	r.devices = append(r.devices, Device{
		IP:       ip,
		Port:     port,
		Alias:    alias,
		Model:    model,
		Received: received,
		Raw:      string(text),
	})
	debugLog("%s -> %q (%s)", ip, alias, model)
}
