// Package artnet sends the DMX universe to the network as ArtDMX packets.
package artnet

import (
	"errors"
	"fmt"
	"net"
	"time"

	"artnetctl/internal/logger"
)

// ErrBind is returned when the output socket cannot be opened.
var ErrBind = errors.New("failed to bind art-net socket")

// ErrMode is returned for an unknown or incomplete transport selection.
var ErrMode = errors.New("invalid art-net mode")

type sender interface {
	send(data [Channels]byte) error
	close() error
	String() string
}

// Interface is the rate-limited output. It is used from the engine loop only.
type Interface struct {
	logger   logger.Logger
	mode     Mode
	sender   sender
	interval time.Duration
	lastSent time.Time
	sent     bool
	now      func() time.Time
}

// Output is what the engine needs from a transport.
type Output interface {
	Update(data []byte) bool
	Flush(data []byte) error
}

// New opens the transport described by s.
func New(log logger.Logger, s Settings) (*Interface, error) {
	var (
		snd sender
		err error
	)
	switch s.Mode {
	case Broadcast:
		snd, err = newUDPSender(
			&net.UDPAddr{IP: net.IPv4zero, Port: port(s.SourcePort, BroadcastBindPort)},
			&net.UDPAddr{IP: net.IPv4bcast, Port: port(s.DestinationPort, NodePort)},
			s.Universe,
		)
	case Unicast:
		src, dst := net.ParseIP(s.Interface), net.ParseIP(s.Destination)
		if src == nil || dst == nil {
			return nil, fmt.Errorf("%w: unicast needs interface and destination, got %q and %q", ErrMode, s.Interface, s.Destination)
		}
		snd, err = newUDPSender(
			&net.UDPAddr{IP: src, Port: port(s.SourcePort, UnicastBindPort)},
			&net.UDPAddr{IP: dst, Port: port(s.DestinationPort, NodePort)},
			s.Universe,
		)
	case Nodes:
		snd, err = newNodeSender(log, s)
	default:
		return nil, fmt.Errorf("%w: %q", ErrMode, s.Mode)
	}
	if err != nil {
		return nil, err
	}
	i := newInterface(log, s, snd)
	log.With(logger.Fields{"module": "art-net"}).Infof("%s output %s at most every %v", s.Mode, snd, i.interval)
	return i, nil
}

func newInterface(log logger.Logger, s Settings, snd sender) *Interface {
	return &Interface{
		logger:   log,
		mode:     s.Mode,
		sender:   snd,
		interval: s.Interval(),
		now:      time.Now,
	}
}

func port(p, def int) int {
	if p != 0 {
		return p
	}
	return def
}

// Mode reports the transport in use.
func (i *Interface) Mode() Mode {
	return i.mode
}

// Update sends data unless the previous successful send was less than one
// interval ago. It reports whether a packet was sent. Failures are logged and
// retried on the next call.
func (i *Interface) Update(data []byte) bool {
	now := i.now()
	if i.sent && now.Sub(i.lastSent) < i.interval {
		return false
	}
	if err := i.sender.send(frame(data)); err != nil {
		i.logger.With(logger.Fields{"module": "art-net"}).Errorf("send failed: %v", err)
		return false
	}
	i.lastSent, i.sent = now, true
	return true
}

// Flush sends data regardless of the rate limit.
func (i *Interface) Flush(data []byte) error {
	if err := i.sender.send(frame(data)); err != nil {
		return err
	}
	i.lastSent, i.sent = i.now(), true
	return nil
}

// Close releases the socket or controller.
func (i *Interface) Close() error {
	return i.sender.close()
}

func frame(data []byte) (f [Channels]byte) {
	copy(f[:], data)
	return f
}
