package wled

import (
	"fmt"
	"net"
	"time"
)

// UDPSender streams frames as DDP datagrams over a connected socket. Sends
// are fire-and-forget: a failed datagram is reported, never retried.
type UDPSender struct {
	conn    net.Conn
	seq     Sequence
	timeout time.Duration
}

// DialUDP connects to addr ("host:port"). timeout bounds each datagram write.
func DialUDP(addr string, timeout time.Duration) (*UDPSender, error) {
	c, err := net.Dial("udp", addr)
	if err != nil {
		return nil, fmt.Errorf("dial ddp %s: %w", addr, err)
	}
	return NewUDPSender(c, timeout), nil
}

// NewUDPSender wraps an already connected conn.
func NewUDPSender(c net.Conn, timeout time.Duration) *UDPSender {
	if timeout <= 0 {
		timeout = 100 * time.Millisecond
	}
	return &UDPSender{conn: c, timeout: timeout}
}

func (u *UDPSender) Send(rgb []byte) error {
	seq := u.seq.Next()
	for _, pkt := range Encode(rgb, seq) {
		if err := u.conn.SetWriteDeadline(time.Now().Add(u.timeout)); err != nil {
			return err
		}
		if _, err := u.conn.Write(pkt); err != nil {
			return fmt.Errorf("ddp send: %w", err)
		}
	}
	return nil
}

func (u *UDPSender) Close() error { return u.conn.Close() }
