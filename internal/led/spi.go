package led

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"go.uber.org/multierr"
	"periph.io/x/conn/v3/physic"
	"periph.io/x/conn/v3/spi"
	"periph.io/x/conn/v3/spi/spireg"
	"periph.io/x/devices/v3/nrzled"
	"periph.io/x/host/v3"
)

// SPIOptions configure a WS2812-style strip driven from an SPI port.
type SPIOptions struct {
	Dev        string // "" picks the first registered port
	Count      int
	Freq       physic.Frequency // NRZ bit rate, default 800kHz
	ColorOrder string           // wire order of the strip, default "GRB"
}

// SPI drives a strip directly through periph's nrzled encoder.
type SPI struct {
	mu     sync.Mutex
	dev    *nrzled.Dev
	closer io.Closer
	count  int
	perm   [3]int
	buf    []byte
}

// OpenSPI initializes the host drivers and opens the named SPI port.
func OpenSPI(o SPIOptions) (*SPI, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("periph host init: %w", err)
	}
	p, err := spireg.Open(o.Dev)
	if err != nil {
		return nil, fmt.Errorf("open spi %q: %w", o.Dev, err)
	}
	s, err := NewSPIOn(p, o)
	if err != nil {
		_ = p.Close()
		return nil, err
	}
	return s, nil
}

// NewSPIOn drives the strip on an already open port. If p is an io.Closer
// it is closed with the driver.
func NewSPIOn(p spi.Port, o SPIOptions) (*SPI, error) {
	if o.Count <= 0 {
		return nil, fmt.Errorf("invalid LED count: %d", o.Count)
	}
	if o.Freq == 0 {
		o.Freq = 800 * physic.KiloHertz
	}
	perm, err := wirePerm(o.ColorOrder)
	if err != nil {
		return nil, err
	}
	d, err := nrzled.NewSPI(p, &nrzled.Opts{NumPixels: o.Count, Channels: 3, Freq: o.Freq})
	if err != nil {
		return nil, fmt.Errorf("nrzled: %w", err)
	}
	s := &SPI{dev: d, count: o.Count, perm: perm, buf: make([]byte, o.Count*3)}
	if c, ok := p.(io.Closer); ok {
		s.closer = c
	}
	return s, nil
}

// wirePerm maps a strip's wire order onto nrzled's input, which it emits as
// GRB. perm[k] is the source RGB channel fed to input slot k.
func wirePerm(order string) ([3]int, error) {
	if order == "" {
		order = "GRB"
	}
	order = strings.ToUpper(order)
	if len(order) != 3 {
		return [3]int{}, fmt.Errorf("color order %q: want three of R, G, B", order)
	}
	var src [3]int
	seen := 0
	for k := 0; k < 3; k++ {
		i := strings.IndexByte("RGB", order[k])
		if i < 0 || seen&(1<<i) != 0 {
			return [3]int{}, fmt.Errorf("color order %q: want three of R, G, B", order)
		}
		seen |= 1 << i
		src[k] = i
	}
	// nrzled output slot 0 takes input 1, slot 1 takes input 0, slot 2 input 2.
	return [3]int{src[1], src[0], src[2]}, nil
}

func (s *SPI) Write(rgb []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return fmt.Errorf("spi closed")
	}
	if len(rgb) != s.count*3 {
		return fmt.Errorf("rgb length %d does not match count %d", len(rgb), s.count)
	}
	for i := 0; i < s.count; i++ {
		px := rgb[i*3 : i*3+3]
		s.buf[i*3+0] = px[s.perm[0]]
		s.buf[i*3+1] = px[s.perm[1]]
		s.buf[i*3+2] = px[s.perm[2]]
	}
	if _, err := s.dev.Write(s.buf); err != nil {
		return fmt.Errorf("spi write: %w", err)
	}
	return nil
}

// Close blanks the strip and releases the port.
func (s *SPI) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.dev == nil {
		return nil
	}
	err := s.dev.Halt()
	if s.closer != nil {
		err = multierr.Append(err, s.closer.Close())
	}
	s.dev = nil
	return err
}
