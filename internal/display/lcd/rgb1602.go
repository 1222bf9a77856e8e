// internal/display/lcd/rgb1602.go
package lcd

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/i2c"
)

// WaveShare RGB1602: an AiP31068-style 16x2 character LCD plus a PCA9633
// RGB backlight controller, both on the same I2C bus.
const (
	lcdAddr = 0x7c >> 1 // 0x3e
	rgbAddr = 0xc0 >> 1 // 0x60
)

// Backlight controller registers.
const (
	regRed    = 0x04
	regGreen  = 0x03
	regBlue   = 0x02
	regMode1  = 0x00
	regMode2  = 0x01
	regOutput = 0x08
)

// LCD commands.
const (
	cmdClearDisplay   = 0x01
	cmdEntryModeSet   = 0x04
	cmdDisplayControl = 0x08
	cmdFunctionSet    = 0x20
)

// Entry mode flags.
const (
	entryLeft           = 0x02
	entryShiftDecrement = 0x00
)

// Display control flags.
const (
	displayOn = 0x04
	cursorOff = 0x00
	blinkOff  = 0x00
)

// Function set flags.
const (
	mode4Bit = 0x00
	twoLine  = 0x08
	oneLine  = 0x00
	dots5x8  = 0x00
)

// RGB1602 is the raw display device.
type RGB1602 struct {
	lcd  *i2c.Dev
	rgb  *i2c.Dev
	cols int
	rows int
}

// NewRGB1602 opens the two devices on the given bus and runs the power-on
// init sequence from the controller datasheet.
func NewRGB1602(bus i2c.Bus, cols, rows int) (*RGB1602, error) {
	d := &RGB1602{
		lcd:  &i2c.Dev{Bus: bus, Addr: lcdAddr},
		rgb:  &i2c.Dev{Bus: bus, Addr: rgbAddr},
		cols: cols,
		rows: rows,
	}
	if err := d.begin(); err != nil {
		return nil, fmt.Errorf("rgb1602: init: %w", err)
	}
	return d, nil
}

func (d *RGB1602) command(cmd byte) error {
	return d.lcd.Tx([]byte{0x80, cmd}, nil)
}

func (d *RGB1602) write(data byte) error {
	return d.lcd.Tx([]byte{0x40, data}, nil)
}

func (d *RGB1602) setReg(reg, data byte) error {
	return d.rgb.Tx([]byte{reg, data}, nil)
}

func (d *RGB1602) begin() error {
	function := byte(mode4Bit | dots5x8)
	if d.rows > 1 {
		function |= twoLine
	} else {
		function |= oneLine
	}

	time.Sleep(50 * time.Millisecond)

	// The controller wants the function set repeated; first write needs
	// more than 4.1ms to settle.
	for i := 0; i < 3; i++ {
		if err := d.command(cmdFunctionSet | function); err != nil {
			return err
		}
		time.Sleep(5 * time.Millisecond)
	}
	if err := d.command(cmdFunctionSet | function); err != nil {
		return err
	}

	if err := d.command(cmdDisplayControl | displayOn | cursorOff | blinkOff); err != nil {
		return err
	}
	if err := d.Clear(); err != nil {
		return err
	}
	if err := d.command(cmdEntryModeSet | entryLeft | entryShiftDecrement); err != nil {
		return err
	}

	// Backlight controller: wake, all outputs PWM-controllable, group blink.
	if err := d.setReg(regMode1, 0x00); err != nil {
		return err
	}
	if err := d.setReg(regOutput, 0xff); err != nil {
		return err
	}
	if err := d.setReg(regMode2, 0x20); err != nil {
		return err
	}

	return d.SetRGB(255, 255, 255)
}

// SetRGB sets the backlight colour.
func (d *RGB1602) SetRGB(r, g, b byte) error {
	if err := d.setReg(regRed, r); err != nil {
		return err
	}
	if err := d.setReg(regGreen, g); err != nil {
		return err
	}
	return d.setReg(regBlue, b)
}

// Clear blanks the whole display.
func (d *RGB1602) Clear() error {
	if err := d.command(cmdClearDisplay); err != nil {
		return err
	}
	// Clear needs 2ms before the next command.
	time.Sleep(2 * time.Millisecond)
	return nil
}

func (d *RGB1602) setCursor(col, row int) error {
	b := byte(col)
	if row == 0 {
		b |= 0x80
	} else {
		b |= 0xc0
	}
	return d.command(b)
}

// PrintLine fills one whole display line, padding or truncating to the
// column count so stale characters never linger.
func (d *RGB1602) PrintLine(row int, text string) error {
	if row < 0 || row >= d.rows {
		return fmt.Errorf("rgb1602: row %d out of range", row)
	}

	if len(text) > d.cols {
		text = text[:d.cols]
	}
	for len(text) < d.cols {
		text += " "
	}

	if err := d.setCursor(0, row); err != nil {
		return err
	}
	for i := 0; i < len(text); i++ {
		c := text[i]
		if c < 0x20 || c > 0x7e {
			c = '?'
		}
		if err := d.write(c); err != nil {
			return err
		}
	}
	return nil
}
