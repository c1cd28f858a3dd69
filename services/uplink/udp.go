//go:build !rp2040 && !rp2350

package uplink

import (
	"net"
	"time"

	"capturelink-go/errcode"
)

// UDPTransport is a connected UDP socket.
type UDPTransport struct {
	conn    *net.UDPConn
	timeout time.Duration
}

// DialUDP binds a socket to the collector at addr ("host:port").
func DialUDP(addr string) (*UDPTransport, error) {
	ra, err := net.ResolveUDPAddr("udp", addr)
	if err != nil {
		return nil, errcode.Wrap(errcode.NotConfigured, "uplink.resolve", err)
	}
	c, err := net.DialUDP("udp", nil, ra)
	if err != nil {
		return nil, errcode.Wrap(errcode.NotInitialized, "uplink.dial", err)
	}
	return &UDPTransport{conn: c}, nil
}

// WithWriteTimeout bounds each datagram write; zero leaves writes unbounded.
func (u *UDPTransport) WithWriteTimeout(d time.Duration) *UDPTransport {
	u.timeout = d
	return u
}

func (u *UDPTransport) Send(p []byte) (int, error) {
	if u.timeout > 0 {
		_ = u.conn.SetWriteDeadline(time.Now().Add(u.timeout))
	}
	return u.conn.Write(p)
}

func (u *UDPTransport) LocalAddr() net.Addr { return u.conn.LocalAddr() }

func (u *UDPTransport) Close() error { return u.conn.Close() }
