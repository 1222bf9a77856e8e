// internal/config/validate.go
package config

import (
	"fmt"
	"net/url"
)

const maxSlots = 64

// Validate checks configuration correctness.
// It performs declarative validation only.
// It MUST NOT mutate configuration.
func Validate(cfg *Config) error {
	d := &cfg.GroundControl

	// ------------------------------------------------------------
	// POLL
	// ------------------------------------------------------------

	if d.Poll.IntervalMs < 0 {
		return fmt.Errorf("poll: interval_ms must not be negative")
	}

	// ------------------------------------------------------------
	// FEED
	// ------------------------------------------------------------

	if d.Feed.Endpoint == "" {
		return fmt.Errorf("feed: endpoint is required")
	}

	u, err := url.Parse(d.Feed.Endpoint)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return fmt.Errorf("feed: endpoint %q must be an http(s) URL", d.Feed.Endpoint)
	}

	if d.Feed.TimeoutMs < 0 {
		return fmt.Errorf("feed: timeout_ms must not be negative")
	}

	switch d.Feed.PriorityMode {
	case "", "field", "recency":
	default:
		return fmt.Errorf("feed: priority_mode %q not recognised (want field or recency)", d.Feed.PriorityMode)
	}

	for _, code := range d.Feed.Watchlist {
		if len(code) != 4 {
			return fmt.Errorf("feed: watchlist squawk %q must be 4 digits", code)
		}
		for i := 0; i < len(code); i++ {
			if code[i] < '0' || code[i] > '7' {
				return fmt.Errorf("feed: watchlist squawk %q must be octal digits", code)
			}
		}
	}

	// ------------------------------------------------------------
	// DISPLAY
	// ------------------------------------------------------------

	if d.Display.Slots < 0 || d.Display.Slots > maxSlots {
		return fmt.Errorf("display: slots must be between 1 and %d", maxSlots)
	}

	switch d.Display.Backend {
	case "", "sim", "gpio", "lcd", "modbus":
	default:
		return fmt.Errorf("display: backend %q not recognised (want sim, gpio, lcd or modbus)", d.Display.Backend)
	}

	if d.Display.Backend == "gpio" {
		if len(d.Display.GPIO.Pins) == 0 {
			return fmt.Errorf("display: gpio backend requires at least one pin")
		}
		seen := make(map[int]bool)
		for _, pin := range d.Display.GPIO.Pins {
			if pin < 0 || pin > 27 {
				return fmt.Errorf("display: gpio pin %d out of BCM range 0-27", pin)
			}
			if seen[pin] {
				return fmt.Errorf("display: gpio pin %d assigned to more than one slot", pin)
			}
			seen[pin] = true
		}
		if d.Display.Slots != 0 && d.Display.Slots != len(d.Display.GPIO.Pins) {
			return fmt.Errorf(
				"display: slots=%d does not match %d configured gpio pins",
				d.Display.Slots, len(d.Display.GPIO.Pins),
			)
		}
	}

	if d.Display.Backend == "modbus" {
		m := d.Display.Modbus
		if m.Endpoint == "" {
			return fmt.Errorf("display: modbus backend requires an endpoint")
		}
		// device_name sanity (ASCII only)
		for i := 0; i < len(m.DeviceName); i++ {
			if m.DeviceName[i] > 0x7F {
				return fmt.Errorf("display: modbus device_name must contain ASCII characters only")
			}
		}
		// status block must not overlap the coil range
		if m.StatusBase != nil {
			slots := uint16(d.Display.Slots)
			if *m.StatusBase >= m.CoilBase && *m.StatusBase < m.CoilBase+slots {
				return fmt.Errorf(
					"display: modbus status_base %d overlaps coil range %d-%d",
					*m.StatusBase, m.CoilBase, m.CoilBase+slots-1,
				)
			}
		}
	}

	if d.Display.WriteTimeoutMs < 0 {
		return fmt.Errorf("display: write_timeout_ms must not be negative")
	}

	// ------------------------------------------------------------
	// LOG
	// ------------------------------------------------------------

	switch d.Log.Level {
	case "", "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("log: level %q not recognised", d.Log.Level)
	}

	return nil
}
