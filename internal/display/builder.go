// internal/display/builder.go
package display

import (
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/groundctl/groundcontrol/internal/config"
	"github.com/groundctl/groundcontrol/internal/display/gpio"
	"github.com/groundctl/groundcontrol/internal/display/lcd"
	mpanel "github.com/groundctl/groundcontrol/internal/display/modbus"
	"github.com/groundctl/groundcontrol/internal/display/sim"
)

// Build constructs the configured backend. Construction failure means
// the hardware could not be initialised; callers must exit non-zero
// without entering the control loop.
func Build(cfg config.DisplayConfig, log *logrus.Entry) (Backend, error) {
	switch cfg.Backend {
	case "sim":
		return sim.New(cfg.Slots, log), nil

	case "gpio":
		return gpio.New(cfg.GPIO.Pins)

	case "lcd":
		return lcd.New(lcd.Config{
			Bus:  cfg.LCD.Bus,
			Cols: cfg.LCD.Cols,
			Rows: cfg.LCD.Rows,
		})

	case "modbus":
		return mpanel.New(mpanel.Config{
			Endpoint:   cfg.Modbus.Endpoint,
			UnitID:     cfg.Modbus.UnitID,
			CoilBase:   cfg.Modbus.CoilBase,
			StatusBase: cfg.Modbus.StatusBase,
			DeviceName: cfg.Modbus.DeviceName,
			Timeout:    time.Duration(cfg.WriteTimeoutMs) * time.Millisecond,
		})

	default:
		return nil, fmt.Errorf("display: unknown backend %q", cfg.Backend)
	}
}
