// internal/display/lcd/lcd.go
package lcd

import (
	"fmt"

	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/host/v3"

	"github.com/groundctl/groundcontrol/internal/feed"
	"github.com/groundctl/groundcontrol/internal/status"
)

// Backend maps indicator slots onto display lines: slot n is line n.
// The config layer guarantees the slot count never exceeds the row count.
// The backlight doubles as a summary lamp: white when quiet, red while
// any displayed entity is an emergency, blue while the feed is stale.
type Backend struct {
	dev *RGB1602
	bus i2c.BusCloser

	emergency []bool
	stale     bool
}

type Config struct {
	Bus  string
	Cols int
	Rows int
}

// New opens the I2C bus and initialises the panel. Errors here are
// hardware init failures and must abort startup.
func New(cfg Config) (*Backend, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("lcd: host init: %w", err)
	}

	bus, err := i2creg.Open(cfg.Bus)
	if err != nil {
		return nil, fmt.Errorf("lcd: open i2c bus %q: %w", cfg.Bus, err)
	}

	dev, err := NewRGB1602(bus, cfg.Cols, cfg.Rows)
	if err != nil {
		bus.Close()
		return nil, err
	}

	return &Backend{
		dev:       dev,
		bus:       bus,
		emergency: make([]bool, cfg.Rows),
	}, nil
}

func (b *Backend) SetSlot(slot int, e feed.Entity) error {
	if err := b.dev.PrintLine(slot, renderLine(e)); err != nil {
		return err
	}
	b.emergency[slot] = e.Emergency
	return b.updateBacklight()
}

func (b *Backend) ClearSlot(slot int) error {
	if err := b.dev.PrintLine(slot, ""); err != nil {
		return err
	}
	b.emergency[slot] = false
	return b.updateBacklight()
}

func (b *Backend) WriteHealth(s status.Snapshot) error {
	b.stale = s.Health == status.HealthStale || s.Health == status.HealthDegraded
	if s.Health == status.HealthDegraded {
		// Slots are already cleared when the fail-safe engages; say why
		// the panel went dark instead of leaving a silent blank.
		if err := b.dev.PrintLine(0, " -- FEED LOST --"); err != nil {
			return err
		}
	}
	return b.updateBacklight()
}

func (b *Backend) updateBacklight() error {
	for _, em := range b.emergency {
		if em {
			return b.dev.SetRGB(255, 0, 0)
		}
	}
	if b.stale {
		return b.dev.SetRGB(0, 0, 255)
	}
	return b.dev.SetRGB(255, 255, 255)
}

// Close blanks the panel and shuts the backlight off, then releases the bus.
func (b *Backend) Close() error {
	b.dev.Clear()
	b.dev.SetRGB(0, 0, 0)
	return b.bus.Close()
}

// renderLine lays out one entity on one 16-column line: label (falling
// back to the hex id) on the left, squawk on the right, bang prefix for
// emergencies.
func renderLine(e feed.Entity) string {
	name := e.Label
	if name == "" {
		name = e.ID
	}
	if e.Emergency {
		name = "!" + name
	}
	if e.Squawk == "" {
		return name
	}
	return fmt.Sprintf("%-11.11s %4.4s", name, e.Squawk)
}
