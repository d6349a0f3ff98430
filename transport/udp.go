// Package transport runs the UDP listener the KDC daemon serves
// TGS-REQ/TGS-REP datagrams over, adapted from the teacher's
// authsrv/transport.go udpTransport: same poison-pill shutdown channel
// and Listen/Join/Close lifecycle, generalized from "read and log a
// packet" to "read a packet, hand it to a Handler, write back whatever
// bytes it returns."
package transport

import (
	"net"
	"time"

	"github.com/chemikadze/dirkdc/logging"
)

// Handler processes one request datagram from addr and returns the
// response datagram to write back. A nil response (with a nil error)
// means the request was silently dropped, matching RFC 4120's guidance
// that a KDC need not reply to an unparseable datagram.
type Handler func(addr *net.UDPAddr, request []byte) (response []byte, err error)

// Transport is the listener lifecycle: Listen starts accepting
// datagrams in the background, Join blocks until the listener has
// fully stopped, Close requests that stop.
type Transport interface {
	Listen() error
	Join() error
	Close()
}

const maxDatagramSize = 65507

type udpTransport struct {
	addr       *net.UDPAddr
	conn       *net.UDPConn
	handler    Handler
	poisonPill chan struct{}
	closed     chan error
}

// NewUdpTransport builds a Transport bound to 0.0.0.0:port, dispatching
// every received datagram to handler.
func NewUdpTransport(port int, handler Handler) Transport {
	return &udpTransport{
		addr:       &net.UDPAddr{IP: net.IPv4zero, Port: port},
		handler:    handler,
		poisonPill: make(chan struct{}),
		closed:     make(chan error, 1),
	}
}

func (t *udpTransport) shouldStop() bool {
	select {
	case <-t.poisonPill:
		return true
	default:
		return false
	}
}

func (t *udpTransport) Listen() error {
	conn, err := net.ListenUDP("udp", t.addr)
	if err != nil {
		logging.Errorf("Failed to bind to %v: %v", t.addr, err)
		return err
	}
	logging.Infof("Listening on %v", t.addr)
	t.conn = conn
	go t.doListen()
	return nil
}

func (t *udpTransport) doListen() {
	buffer := make([]byte, maxDatagramSize)
	for {
		if t.shouldStop() {
			logging.Infof("Closing server on %v", t.addr)
			t.closed <- t.conn.Close()
			return
		}

		n, addr, err := t.conn.ReadFromUDP(buffer)
		if err != nil {
			if t.shouldStop() {
				t.closed <- nil
				return
			}
			logging.Errorf("Failed to read packet from %v: %v", addr, err)
			continue
		}

		request := make([]byte, n)
		copy(request, buffer[:n])
		go t.respond(addr, request)
	}
}

func (t *udpTransport) respond(addr *net.UDPAddr, request []byte) {
	response, err := t.handler(addr, request)
	if err != nil {
		logging.Warn("request handling failed", logging.Fields{"addr": addr, "error": err})
		return
	}
	if response == nil {
		return
	}
	if _, err := t.conn.WriteToUDP(response, addr); err != nil {
		logging.Errorf("Failed to write response to %v: %v", addr, err)
	}
}

func (t *udpTransport) Close() {
	close(t.poisonPill)
	if t.conn != nil {
		// unblock a pending ReadFromUDP so doListen observes the poison pill
		_ = t.conn.SetReadDeadline(time.Now())
	}
}

func (t *udpTransport) Join() error {
	return <-t.closed
}
