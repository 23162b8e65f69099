// Package wled drives a WLED controller: DDP frames over UDP, JSON frames
// over WebSocket or HTTP, and the JSON control API.
package wled

import (
	"context"
	"fmt"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"go.uber.org/multierr"
)

// Transport selects how frames reach the device.
type Transport string

const (
	TransportUDP  Transport = "udp"
	TransportWS   Transport = "ws"
	TransportHTTP Transport = "http"
)

type Options struct {
	Host      string
	HTTPPort  int
	WSPort    int
	UDPPort   int
	Transport Transport
	// Timeout bounds every network call the client makes.
	Timeout time.Duration
	// RealtimeTimeout is the "lor" value sent by EnableRealtime, 1..255.
	RealtimeTimeout int

	// HTTPClient and BaseURL override the control endpoint in tests.
	HTTPClient *http.Client
	BaseURL    string
	Logger     zerolog.Logger
}

type sender interface {
	Send(rgb []byte) error
	Close() error
}

// Client owns the control API and one frame transport.
type Client struct {
	api       *HTTPClient
	stream    sender
	transport Transport
	timeout   time.Duration
	lor       int
	log       zerolog.Logger
}

func New(o Options) (*Client, error) {
	if o.Timeout <= 0 {
		o.Timeout = 2 * time.Second
	}
	if o.RealtimeTimeout <= 0 || o.RealtimeTimeout > 255 {
		o.RealtimeTimeout = 255
	}
	if o.Transport == "" {
		o.Transport = TransportUDP
	}
	c := &Client{transport: o.Transport, timeout: o.Timeout, lor: o.RealtimeTimeout, log: o.Logger}

	if o.BaseURL != "" {
		api, err := NewHTTPClientURL(o.BaseURL, o.HTTPClient)
		if err != nil {
			return nil, err
		}
		c.api = api
	} else {
		c.api = NewHTTPClient(o.Host, orDefault(o.HTTPPort, 80), o.HTTPClient, o.Timeout)
	}

	switch o.Transport {
	case TransportUDP:
		u, err := DialUDP(net.JoinHostPort(o.Host, strconv.Itoa(orDefault(o.UDPPort, DefaultPort))), o.Timeout)
		if err != nil {
			return nil, err
		}
		c.stream = u
	case TransportWS:
		c.stream = NewWSSender(o.Host, orDefault(o.WSPort, 80), o.Timeout)
	case TransportHTTP:
		c.stream = &httpSender{api: c.api, timeout: o.Timeout}
	default:
		return nil, fmt.Errorf("unknown transport %q", o.Transport)
	}
	c.log.Debug().Str("transport", string(o.Transport)).Str("host", o.Host).Msg("wled client ready")
	return c, nil
}

func orDefault(v, def int) int {
	if v <= 0 {
		return def
	}
	return v
}

func (c *Client) Transport() Transport { return c.transport }

// API exposes the JSON control client.
func (c *Client) API() *HTTPClient { return c.api }

// Write sends one frame of RGB triples in LED index order.
func (c *Client) Write(rgb []byte) error { return c.stream.Send(rgb) }

func (c *Client) ctx(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, c.timeout)
}

// EnableRealtime puts the device in live override so streamed frames win
// over its own effects.
func (c *Client) EnableRealtime(ctx context.Context) error {
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	return c.api.SetLiveLock(ctx, c.lor)
}

func (c *Client) DisableRealtime(ctx context.Context) error {
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	return c.api.SetLiveLock(ctx, 0)
}

// SetBrightness sets the device master brightness, 0..255.
func (c *Client) SetBrightness(ctx context.Context, b int) error {
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	return c.api.SetBrightness(ctx, b)
}

func (c *Client) SetPower(ctx context.Context, on bool) error {
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	return c.api.SetPower(ctx, on)
}

func (c *Client) Info(ctx context.Context) (*Info, error) {
	ctx, cancel := c.ctx(ctx)
	defer cancel()
	return c.api.Info(ctx)
}

// Close shuts the frame transport and the control client's idle connections.
func (c *Client) Close() error {
	return multierr.Combine(c.stream.Close(), c.api.Close())
}

type httpSender struct {
	api     *HTTPClient
	timeout time.Duration
}

func (h *httpSender) Send(rgb []byte) error {
	ctx, cancel := context.WithTimeout(context.Background(), h.timeout)
	defer cancel()
	return h.api.SendFrame(ctx, rgb)
}

func (h *httpSender) Close() error { return nil }
