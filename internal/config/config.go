// Package config loads the controller's YAML configuration.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"reflect"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/coreman2200/treelights/internal/layout"
)

type WLED struct {
	Host             string        `yaml:"host"`
	HTTPPort         int           `yaml:"http_port"`
	WSPort           int           `yaml:"ws_port"`
	UseUDP           bool          `yaml:"use_udp"`
	UseWS            bool          `yaml:"use_ws"`
	UDPPort          int           `yaml:"udp_port"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold int           `yaml:"failure_threshold"`
	RealtimeTimeout  int           `yaml:"realtime_timeout"`
}

type LEDs struct {
	Count         int     `yaml:"count"`
	FPS           int     `yaml:"fps"`
	Brightness    int     `yaml:"brightness"` // 0..255
	CountMismatch string  `yaml:"count_mismatch"`
	Normalize     bool    `yaml:"normalize"`
	Gamma         float64 `yaml:"gamma"`
	WhiteCap      float64 `yaml:"white_cap"`
	BudgetMA      float64 `yaml:"budget_ma"`
	ChanMA        float64 `yaml:"chan_ma"`
}

type Effects struct {
	Default            string   `yaml:"default"`
	SmoothTransitions  bool     `yaml:"smooth_transitions"`
	TransitionDuration float64  `yaml:"transition_duration"` // seconds
	TransitionEase     string   `yaml:"transition_ease"`
	AutoCycle          bool     `yaml:"auto_cycle"`
	AutoCycleInterval  float64  `yaml:"auto_cycle_interval"` // seconds
	Playlist           []string `yaml:"playlist"`
	Seed               uint64   `yaml:"seed"`
	Speed              float64  `yaml:"speed"` // 0 keeps each effect's own
}

type Output struct {
	Driver      string `yaml:"driver"` // "wled" | "spi" | "sim"
	SPIDev      string `yaml:"spi_dev"`
	ColorOrder  string `yaml:"color_order"`
	ClearOnExit bool   `yaml:"clear_on_exit"`
}

type Preview struct {
	Addr string `yaml:"addr"` // "" disables the server
}

type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // "console" | "json"
}

type Config struct {
	WLED    WLED    `yaml:"wled"`
	LEDs    LEDs    `yaml:"leds"`
	Effects Effects `yaml:"effects"`
	Output  Output  `yaml:"output"`
	Preview Preview `yaml:"preview"`
	Logging Logging `yaml:"logging"`
}

// Error names the offending dot-separated key.
type Error struct {
	Key string
	Msg string
}

func (e *Error) Error() string {
	if e.Key == "" {
		return "config: " + e.Msg
	}
	return fmt.Sprintf("config: %s: %s", e.Key, e.Msg)
}

func Default() *Config {
	return &Config{
		WLED: WLED{
			Host:             "localhost",
			HTTPPort:         80,
			WSPort:           80,
			UseUDP:           true,
			UDPPort:          4048,
			Timeout:          2 * time.Second,
			FailureThreshold: 30,
			RealtimeTimeout:  255,
		},
		LEDs: LEDs{
			Count:         1610,
			FPS:           30,
			Brightness:    128,
			CountMismatch: string(layout.Reject),
			Normalize:     true,
			Gamma:         1.0,
			ChanMA:        20,
		},
		Effects: Effects{
			Default:            "height_gradient",
			SmoothTransitions:  true,
			TransitionDuration: 2.0,
			TransitionEase:     "smooth",
			AutoCycleInterval:  60,
			Seed:               1,
		},
		Output:  Output{Driver: "wled", SPIDev: "", ColorOrder: "GRB", ClearOnExit: true},
		Logging: Logging{Level: "info", Format: "console"},
	}
}

// Load reads path over the defaults. Unknown keys are rejected.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, &Error{Msg: err.Error()}
	}
	return Parse(bytes.NewReader(b))
}

var lineRE = regexp.MustCompile(`line (\d+)`)

// Parse decodes YAML from r over the defaults and validates the result.
func Parse(r io.Reader) (*Config, error) {
	c := Default()
	var root yaml.Node
	if err := yaml.NewDecoder(r).Decode(&root); err != nil {
		if errors.Is(err, io.EOF) {
			return c, c.Validate()
		}
		return nil, &Error{Msg: err.Error()}
	}
	lines := map[int]string{}
	if err := checkKeys(&root, reflect.TypeOf(*c), "", lines); err != nil {
		return nil, err
	}
	if err := root.Decode(c); err != nil {
		var te *yaml.TypeError
		if errors.As(err, &te) && len(te.Errors) > 0 {
			msg := te.Errors[0]
			key := ""
			if m := lineRE.FindStringSubmatch(msg); m != nil {
				n, _ := strconv.Atoi(m[1])
				key = lines[n]
			}
			return nil, &Error{Key: key, Msg: msg}
		}
		return nil, &Error{Msg: err.Error()}
	}
	if err := c.Validate(); err != nil {
		return nil, err
	}
	return c, nil
}

// checkKeys rejects mapping keys with no matching yaml tag in t and records
// the dot key found on each line.
func checkKeys(n *yaml.Node, t reflect.Type, prefix string, lines map[int]string) error {
	if n.Kind == yaml.DocumentNode {
		for _, c := range n.Content {
			if err := checkKeys(c, t, prefix, lines); err != nil {
				return err
			}
		}
		return nil
	}
	if t.Kind() != reflect.Struct || n.Kind != yaml.MappingNode {
		return nil
	}
	fields := yamlFields(t)
	for i := 0; i+1 < len(n.Content); i += 2 {
		k, v := n.Content[i], n.Content[i+1]
		key := k.Value
		if prefix != "" {
			key = prefix + "." + k.Value
		}
		f, ok := fields[k.Value]
		if !ok {
			return &Error{Key: key, Msg: "unknown key"}
		}
		lines[k.Line] = key
		lines[v.Line] = key
		if err := checkKeys(v, f.Type, key, lines); err != nil {
			return err
		}
	}
	return nil
}

func yamlFields(t reflect.Type) map[string]reflect.StructField {
	out := map[string]reflect.StructField{}
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "" || name == "-" {
			continue
		}
		out[name] = f
	}
	return out
}

// Keys lists every dot key in sorted order.
func Keys() []string {
	var out []string
	var walk func(t reflect.Type, prefix string)
	walk = func(t reflect.Type, prefix string) {
		for name, f := range yamlFields(t) {
			key := prefix + name
			if f.Type.Kind() == reflect.Struct && f.Type != reflect.TypeOf(time.Duration(0)) {
				walk(f.Type, key+".")
				continue
			}
			out = append(out, key)
		}
	}
	walk(reflect.TypeOf(Config{}), "")
	sort.Strings(out)
	return out
}

// Lookup returns the value at a dot key such as "wled.host".
func (c *Config) Lookup(key string) (any, bool) {
	v := reflect.ValueOf(*c)
	for _, part := range strings.Split(key, ".") {
		if v.Kind() != reflect.Struct {
			return nil, false
		}
		f, ok := yamlFields(v.Type())[part]
		if !ok {
			return nil, false
		}
		v = v.FieldByIndex(f.Index)
	}
	if v.Kind() == reflect.Struct {
		return nil, false
	}
	return v.Interface(), true
}

// Validate checks ranges and enumerations.
func (c *Config) Validate() error {
	bad := func(key, format string, a ...any) error {
		return &Error{Key: key, Msg: fmt.Sprintf(format, a...)}
	}
	if c.Output.Driver == "wled" && strings.TrimSpace(c.WLED.Host) == "" {
		return bad("wled.host", "required for the wled driver")
	}
	ports := []struct {
		key string
		v   int
	}{{"wled.http_port", c.WLED.HTTPPort}, {"wled.ws_port", c.WLED.WSPort}, {"wled.udp_port", c.WLED.UDPPort}}
	for _, p := range ports {
		if p.v < 1 || p.v > 65535 {
			return bad(p.key, "port %d out of range 1..65535", p.v)
		}
	}
	switch {
	case c.WLED.Timeout <= 0:
		return bad("wled.timeout", "must be positive")
	case c.WLED.FailureThreshold < 1:
		return bad("wled.failure_threshold", "must be at least 1")
	case c.WLED.RealtimeTimeout < 1 || c.WLED.RealtimeTimeout > 255:
		return bad("wled.realtime_timeout", "must be within 1..255")
	case c.LEDs.Count <= 0:
		return bad("leds.count", "must be positive")
	case c.LEDs.FPS < 1 || c.LEDs.FPS > 240:
		return bad("leds.fps", "must be within 1..240")
	case c.LEDs.Brightness < 0 || c.LEDs.Brightness > 255:
		return bad("leds.brightness", "must be within 0..255")
	case c.LEDs.Gamma <= 0:
		return bad("leds.gamma", "must be positive")
	case c.LEDs.WhiteCap < 0 || c.LEDs.WhiteCap > 3:
		return bad("leds.white_cap", "must be within 0..3")
	case c.LEDs.BudgetMA < 0:
		return bad("leds.budget_ma", "must not be negative")
	case c.LEDs.ChanMA <= 0:
		return bad("leds.chan_ma", "must be positive")
	case c.Effects.Default == "":
		return bad("effects.default", "must name an effect")
	case c.Effects.TransitionDuration < 0:
		return bad("effects.transition_duration", "must not be negative")
	case c.Effects.AutoCycleInterval <= 0:
		return bad("effects.auto_cycle_interval", "must be positive")
	case c.Effects.Speed < 0:
		return bad("effects.speed", "must not be negative")
	}
	if _, err := layout.ParsePolicy(c.LEDs.CountMismatch); err != nil {
		return bad("leds.count_mismatch", "%v", err)
	}
	switch c.Effects.TransitionEase {
	case "", "linear", "smooth", "cubic":
	default:
		return bad("effects.transition_ease", "unknown ease %q", c.Effects.TransitionEase)
	}
	switch c.Output.Driver {
	case "wled", "spi", "sim":
	default:
		return bad("output.driver", "unknown driver %q (want wled, spi or sim)", c.Output.Driver)
	}
	if _, err := zerolog.ParseLevel(c.Logging.Level); err != nil {
		return bad("logging.level", "%v", err)
	}
	switch c.Logging.Format {
	case "console", "json":
	default:
		return bad("logging.format", "unknown format %q (want console or json)", c.Logging.Format)
	}
	return nil
}

// Brightness01 is leds.brightness scaled to 0..1.
func (c *Config) Brightness01() float64 { return float64(c.LEDs.Brightness) / 255 }

// Transition is the crossfade length in seconds, 0 when transitions are off.
func (c *Config) Transition() float64 {
	if !c.Effects.SmoothTransitions {
		return 0
	}
	return c.Effects.TransitionDuration
}

func Save(path string, c *Config) error {
	b, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, b, 0644)
}
