package transport

import (
	"net"
	"testing"
	"time"
)

func TestPoisonPill(t *testing.T) {
	tr := NewUdpTransport(0, nil).(*udpTransport)
	if tr.shouldStop() {
		t.Error("newly created transport should not stop")
	}
	tr.Close()
	if !tr.shouldStop() {
		t.Error("transport should stop after close called")
	}
}

func TestListenRespondsViaHandler(t *testing.T) {
	var gotAddr *net.UDPAddr
	handler := func(addr *net.UDPAddr, request []byte) ([]byte, error) {
		gotAddr = addr
		echoed := append([]byte(nil), request...)
		return echoed, nil
	}

	tr := NewUdpTransport(0, handler).(*udpTransport)
	if err := tr.Listen(); err != nil {
		t.Fatalf("listen: %v", err)
	}
	defer tr.Close()

	serverAddr := tr.conn.LocalAddr().(*net.UDPAddr)
	client, err := net.DialUDP("udp", nil, serverAddr)
	if err != nil {
		t.Fatalf("dial: %v", err)
	}
	defer client.Close()

	if _, err := client.Write([]byte("ping")); err != nil {
		t.Fatalf("write: %v", err)
	}

	_ = client.SetReadDeadline(time.Now().Add(2 * time.Second))
	buf := make([]byte, 64)
	n, err := client.Read(buf)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if string(buf[:n]) != "ping" {
		t.Fatalf("expected echoed ping, got %q", buf[:n])
	}
	if gotAddr == nil {
		t.Fatal("expected handler to observe the client's address")
	}
}

func TestCloseStopsListener(t *testing.T) {
	tr := NewUdpTransport(0, func(*net.UDPAddr, []byte) ([]byte, error) { return nil, nil }).(*udpTransport)
	if err := tr.Listen(); err != nil {
		t.Fatalf("listen: %v", err)
	}
	tr.Close()
	if err := tr.Join(); err != nil {
		t.Fatalf("expected clean shutdown, got %v", err)
	}
}
