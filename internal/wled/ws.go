package wled

import (
	"fmt"
	"net"
	"net/url"
	"strconv"
	"time"

	"github.com/gorilla/websocket"
)

// WSSender pushes frames as JSON state messages over WLED's /ws socket.
// The connection is dialed on first use and again after any failure.
type WSSender struct {
	url     string
	dialer  *websocket.Dialer
	conn    *websocket.Conn
	timeout time.Duration
}

func NewWSSender(host string, port int, timeout time.Duration) *WSSender {
	u := url.URL{Scheme: "ws", Host: net.JoinHostPort(host, strconv.Itoa(port)), Path: "/ws"}
	return NewWSSenderURL(u.String(), timeout)
}

// NewWSSenderURL targets a full ws:// URL.
func NewWSSenderURL(u string, timeout time.Duration) *WSSender {
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	d := *websocket.DefaultDialer
	d.HandshakeTimeout = timeout
	return &WSSender{url: u, dialer: &d, timeout: timeout}
}

func (w *WSSender) connect() error {
	if w.conn != nil {
		return nil
	}
	c, _, err := w.dialer.Dial(w.url, nil)
	if err != nil {
		return fmt.Errorf("ws dial %s: %w", w.url, err)
	}
	w.conn = c
	go w.drain(c)
	return nil
}

// drain discards the state echoes WLED sends back so the socket's read
// buffer never fills.
func (w *WSSender) drain(c *websocket.Conn) {
	for {
		if _, _, err := c.ReadMessage(); err != nil {
			return
		}
	}
}

func (w *WSSender) Send(rgb []byte) error {
	if err := w.connect(); err != nil {
		return err
	}
	for _, body := range FramePayloads(rgb) {
		_ = w.conn.SetWriteDeadline(time.Now().Add(w.timeout))
		if err := w.conn.WriteJSON(body); err != nil {
			_ = w.conn.Close()
			w.conn = nil
			return fmt.Errorf("ws frame: %w", err)
		}
	}
	return nil
}

func (w *WSSender) Close() error {
	if w.conn == nil {
		return nil
	}
	msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "")
	_ = w.conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(w.timeout))
	err := w.conn.Close()
	w.conn = nil
	return err
}
