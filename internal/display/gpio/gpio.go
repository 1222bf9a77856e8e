// internal/display/gpio/gpio.go
package gpio

import (
	"fmt"

	pgpio "periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/groundctl/groundcontrol/internal/feed"
)

// Backend drives one output line per slot. Pins are addressed by their
// BCM numbers. A lit line means the slot is occupied; the entity's label
// has no physical representation on bare LEDs.
type Backend struct {
	pins []pgpio.PinIO
}

// New initialises periph host state and resolves every configured pin.
// Any failure here is a hardware init failure: the caller must treat it
// as fatal and exit before entering the control loop.
func New(bcmPins []int) (*Backend, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("gpio: host init: %w", err)
	}

	pins := make([]pgpio.PinIO, 0, len(bcmPins))
	for _, n := range bcmPins {
		p := gpioreg.ByName(fmt.Sprintf("GPIO%d", n))
		if p == nil {
			return nil, fmt.Errorf("gpio: pin GPIO%d not found", n)
		}
		// Start dark.
		if err := p.Out(pgpio.Low); err != nil {
			return nil, fmt.Errorf("gpio: pin GPIO%d: %w", n, err)
		}
		pins = append(pins, p)
	}

	return &Backend{pins: pins}, nil
}

func (b *Backend) SetSlot(slot int, _ feed.Entity) error {
	if slot < 0 || slot >= len(b.pins) {
		return fmt.Errorf("gpio: slot %d out of range", slot)
	}
	return b.pins[slot].Out(pgpio.High)
}

func (b *Backend) ClearSlot(slot int) error {
	if slot < 0 || slot >= len(b.pins) {
		return fmt.Errorf("gpio: slot %d out of range", slot)
	}
	return b.pins[slot].Out(pgpio.Low)
}

// Close turns every line off. Best effort; the first error wins but all
// pins are still attempted.
func (b *Backend) Close() error {
	var first error
	for _, p := range b.pins {
		if err := p.Out(pgpio.Low); err != nil && first == nil {
			first = err
		}
	}
	return first
}
