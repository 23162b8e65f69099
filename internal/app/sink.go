package app

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/coreman2200/treelights/internal/config"
	"github.com/coreman2200/treelights/internal/led"
	"github.com/coreman2200/treelights/internal/wled"
)

// Sink is the opened output plus, for the wled driver, the device client
// used for control calls on exit.
type Sink struct {
	led.Driver
	WLED *wled.Client
}

// Transport maps the wled.use_udp / wled.use_ws switches to a transport.
func Transport(c *config.Config) wled.Transport {
	switch {
	case c.WLED.UseUDP:
		return wled.TransportUDP
	case c.WLED.UseWS:
		return wled.TransportWS
	default:
		return wled.TransportHTTP
	}
}

// OpenSink opens the configured output driver for count LEDs. A device
// that does not answer control calls is logged and streamed to anyway; a
// spi port that cannot be opened falls back to the simulator.
func OpenSink(ctx context.Context, cfg *config.Config, count int, log zerolog.Logger) (*Sink, error) {
	switch cfg.Output.Driver {
	case "wled", "":
		c, err := wled.New(wled.Options{
			Host:            cfg.WLED.Host,
			HTTPPort:        cfg.WLED.HTTPPort,
			WSPort:          cfg.WLED.WSPort,
			UDPPort:         cfg.WLED.UDPPort,
			Transport:       Transport(cfg),
			Timeout:         cfg.WLED.Timeout,
			RealtimeTimeout: cfg.WLED.RealtimeTimeout,
			Logger:          log.With().Str("component", "wled").Logger(),
		})
		if err != nil {
			return nil, fmt.Errorf("wled: %w", err)
		}
		if info, err := c.Info(ctx); err != nil {
			log.Warn().Err(err).Str("host", cfg.WLED.Host).Msg("controller did not answer /json/info")
		} else {
			log.Info().Str("name", info.Name).Str("version", info.Version).Int("leds", info.LEDs.Count).Msg("controller found")
			if info.LEDs.Count > 0 && info.LEDs.Count != count {
				log.Warn().Int("controller", info.LEDs.Count).Int("configured", count).Msg("LED count differs from controller")
			}
		}
		if err := c.SetBrightness(ctx, cfg.LEDs.Brightness); err != nil {
			log.Warn().Err(err).Msg("set brightness failed")
		}
		if err := c.EnableRealtime(ctx); err != nil {
			log.Warn().Err(err).Msg("enable realtime failed")
		}
		log.Info().Str("transport", string(c.Transport())).Str("host", cfg.WLED.Host).Msg("streaming to wled")
		return &Sink{Driver: c, WLED: c}, nil

	case "spi":
		drv, err := led.OpenSPI(led.SPIOptions{Dev: cfg.Output.SPIDev, Count: count, ColorOrder: cfg.Output.ColorOrder})
		if err != nil {
			log.Warn().Err(err).Str("driver", "spi").Str("dev", cfg.Output.SPIDev).Msg("SPI init failed; falling back to SIM")
			return &Sink{Driver: led.NewSim(log, cfg.LEDs.FPS)}, nil
		}
		return &Sink{Driver: drv}, nil

	case "sim":
		return &Sink{Driver: led.NewSim(log, cfg.LEDs.FPS)}, nil
	}
	return nil, &config.Error{Key: "output.driver", Msg: fmt.Sprintf("unknown driver %q", cfg.Output.Driver)}
}

// Release disables realtime mode on a wled sink so the controller resumes
// its own effects.
func (s *Sink) Release(ctx context.Context) error {
	if s.WLED == nil {
		return nil
	}
	return s.WLED.DisableRealtime(ctx)
}
