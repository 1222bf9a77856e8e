// internal/config/normalize.go
package config

// Defaults applied by Normalize.
const (
	defaultIntervalMs     = 5000
	defaultFeedTimeoutMs  = 2000
	defaultWriteTimeoutMs = 500
	defaultSlots          = 8
)

// Normalize applies post-validation normalization.
// It is allowed to mutate configuration.
// It MUST be called only after Validate().
func Normalize(cfg *Config) {
	if cfg == nil {
		return
	}

	d := &cfg.GroundControl

	if d.Poll.IntervalMs == 0 {
		d.Poll.IntervalMs = defaultIntervalMs
	}

	// ------------------------------------------------------------
	// FEED DEFAULTS (dump1090 aircraft.json shape)
	// ------------------------------------------------------------

	if d.Feed.TimeoutMs == 0 {
		d.Feed.TimeoutMs = defaultFeedTimeoutMs
	}
	if d.Feed.EntitiesKey == "" {
		d.Feed.EntitiesKey = "aircraft"
	}
	if d.Feed.Fields.ID == "" {
		d.Feed.Fields.ID = "hex"
	}
	if d.Feed.Fields.Priority == "" {
		d.Feed.Fields.Priority = "seen"
	}
	if d.Feed.Fields.Label == "" {
		d.Feed.Fields.Label = "flight"
	}
	if d.Feed.Fields.Squawk == "" {
		d.Feed.Fields.Squawk = "squawk"
	}
	if d.Feed.PriorityMode == "" {
		d.Feed.PriorityMode = "recency"
	}
	if d.Feed.Watchlist == nil {
		// Hijack, radio failure, general emergency.
		d.Feed.Watchlist = []string{"7500", "7600", "7700"}
	}

	// ------------------------------------------------------------
	// DISPLAY DEFAULTS
	// ------------------------------------------------------------

	if d.Display.Backend == "" {
		d.Display.Backend = "sim"
	}
	if d.Display.WriteTimeoutMs == 0 {
		d.Display.WriteTimeoutMs = defaultWriteTimeoutMs
	}
	if d.Display.LCD.Cols == 0 {
		d.Display.LCD.Cols = 16
	}
	if d.Display.LCD.Rows == 0 {
		d.Display.LCD.Rows = 2
	}
	if d.Display.LCD.Bus == "" {
		d.Display.LCD.Bus = "1"
	}

	switch d.Display.Backend {
	case "gpio":
		// Slot count follows the wired pins unless given explicitly.
		if d.Display.Slots == 0 {
			d.Display.Slots = len(d.Display.GPIO.Pins)
		}
	case "lcd":
		// The panel cannot show more slots than it has lines.
		if d.Display.Slots == 0 || d.Display.Slots > d.Display.LCD.Rows {
			d.Display.Slots = d.Display.LCD.Rows
		}
	default:
		if d.Display.Slots == 0 {
			d.Display.Slots = defaultSlots
		}
	}

	// Truncate modbus device_name to the status block's capacity.
	// ASCII already validated.
	if len(d.Display.Modbus.DeviceName) > 16 {
		d.Display.Modbus.DeviceName = d.Display.Modbus.DeviceName[:16]
	}

	if d.Log.Level == "" {
		d.Log.Level = "info"
	}
}
