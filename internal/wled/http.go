package wled

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/coreman2200/treelights/internal/colors"
)

// FrameChunk is how many LEDs one fallback frame request carries. WLED
// rejects larger JSON bodies on small boards.
const FrameChunk = 256

// Info is the subset of /json/info the controller uses.
type Info struct {
	Version string `json:"ver"`
	Name    string `json:"name"`
	Arch    string `json:"arch"`
	LEDs    struct {
		Count int `json:"count"`
		FPS   int `json:"fps"`
	} `json:"leds"`
	UDPPort int `json:"udpport"`
}

// State is the subset of /json/state read back from the device.
type State struct {
	On         bool `json:"on"`
	Brightness int  `json:"bri"`
	LiveLock   int  `json:"lor"`
}

// StateUpdate is a partial /json/state body; nil fields are omitted.
type StateUpdate struct {
	On         *bool `json:"on,omitempty"`
	Brightness *int  `json:"bri,omitempty"`
	LiveLock   *int  `json:"lor,omitempty"`
	Seg        any   `json:"seg,omitempty"`
}

// HTTPClient talks to WLED's JSON API.
type HTTPClient struct {
	base   url.URL
	client *http.Client
}

// NewHTTPClient targets host:port. If client is nil one with timeout is used.
func NewHTTPClient(host string, port int, client *http.Client, timeout time.Duration) *HTTPClient {
	if client == nil {
		if timeout <= 0 {
			timeout = 2 * time.Second
		}
		client = &http.Client{Timeout: timeout}
	}
	return &HTTPClient{
		base:   url.URL{Scheme: "http", Host: net.JoinHostPort(host, strconv.Itoa(port))},
		client: client,
	}
}

// NewHTTPClientURL targets a base URL such as an httptest server.
func NewHTTPClientURL(base string, client *http.Client) (*HTTPClient, error) {
	u, err := url.Parse(base)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Second}
	}
	return &HTTPClient{base: *u, client: client}, nil
}

// Close drops idle keep-alive connections.
func (c *HTTPClient) Close() error {
	c.client.CloseIdleConnections()
	return nil
}

func (c *HTTPClient) do(ctx context.Context, method, path string, body, out any) error {
	u := c.base
	u.Path = path
	var rd io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			return err
		}
		rd = bytes.NewReader(b)
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), rd)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	res, err := c.client.Do(req)
	if err != nil {
		return err
	}
	defer res.Body.Close()
	if res.StatusCode < 200 || res.StatusCode > 299 {
		return fmt.Errorf("%s %s: unexpected status code %d", method, path, res.StatusCode)
	}
	if out == nil {
		_, _ = io.Copy(io.Discard, res.Body)
		return nil
	}
	return json.NewDecoder(res.Body).Decode(out)
}

// Info fetches /json/info.
func (c *HTTPClient) Info(ctx context.Context) (*Info, error) {
	info := &Info{}
	if err := c.do(ctx, http.MethodGet, "/json/info", nil, info); err != nil {
		return nil, err
	}
	return info, nil
}

// State fetches /json/state.
func (c *HTTPClient) State(ctx context.Context) (*State, error) {
	st := &State{}
	if err := c.do(ctx, http.MethodGet, "/json/state", nil, st); err != nil {
		return nil, err
	}
	return st, nil
}

// SetState posts a partial state.
func (c *HTTPClient) SetState(ctx context.Context, u StateUpdate) error {
	return c.do(ctx, http.MethodPost, "/json/state", u, nil)
}

func (c *HTTPClient) SetPower(ctx context.Context, on bool) error {
	return c.SetState(ctx, StateUpdate{On: &on})
}

// SetBrightness clamps b into 0..255.
func (c *HTTPClient) SetBrightness(ctx context.Context, b int) error {
	b = min(max(b, 0), 255)
	return c.SetState(ctx, StateUpdate{Brightness: &b})
}

// SetLiveLock sets the realtime override: 1..255 seconds (255 = until
// released) enables it, 0 releases it.
func (c *HTTPClient) SetLiveLock(ctx context.Context, seconds int) error {
	seconds = min(max(seconds, 0), 255)
	return c.SetState(ctx, StateUpdate{LiveLock: &seconds})
}

// SetColor fills segment 0 with one color using the device's own renderer.
func (c *HTTPClient) SetColor(ctx context.Context, r, g, b uint8) error {
	seg := []map[string]any{{"col": [][]uint8{{r, g, b}}}}
	return c.SetState(ctx, StateUpdate{Seg: seg})
}

// SetDeviceEffect selects one of the device's built-in effects by id.
func (c *HTTPClient) SetDeviceEffect(ctx context.Context, fx int) error {
	seg := []map[string]any{{"fx": fx}}
	return c.SetState(ctx, StateUpdate{Seg: seg})
}

// FramePayloads builds the per-LED "i" bodies for rgb, FrameChunk LEDs per
// body: {"seg":{"i":[start,"RRGGBB","RRGGBB",...]}}.
func FramePayloads(rgb []byte) []StateUpdate {
	n := len(rgb) / 3
	var out []StateUpdate
	for start := 0; start < n; start += FrameChunk {
		end := min(start+FrameChunk, n)
		ind := make([]any, 0, end-start+1)
		ind = append(ind, start)
		for i := start; i < end; i++ {
			ind = append(ind, colors.RGB{R: rgb[i*3], G: rgb[i*3+1], B: rgb[i*3+2]}.Hex())
		}
		out = append(out, StateUpdate{Seg: map[string]any{"i": ind}})
	}
	return out
}

// SendFrame pushes a whole frame through the JSON API. This is the slow
// fallback path used when UDP streaming is off.
func (c *HTTPClient) SendFrame(ctx context.Context, rgb []byte) error {
	for _, body := range FramePayloads(rgb) {
		if err := c.SetState(ctx, body); err != nil {
			return fmt.Errorf("json frame: %w", err)
		}
	}
	return nil
}
