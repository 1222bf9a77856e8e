// internal/display/modbus/panel.go
package modbus

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/goburrow/modbus"

	"github.com/groundctl/groundcontrol/internal/feed"
	"github.com/groundctl/groundcontrol/internal/status"
)

// Panel drives a networked annunciator over Modbus TCP: one coil per
// slot starting at CoilBase, plus an optional loop health block written
// as holding registers at StatusBase. It serializes requests because the
// underlying handler is a single connection.
type Panel struct {
	mu      sync.Mutex
	handler *modbus.TCPClientHandler
	client  modbus.Client

	coilBase   uint16
	statusBase *uint16
	deviceName string
}

type Config struct {
	Endpoint   string
	UnitID     uint8
	CoilBase   uint16
	StatusBase *uint16
	DeviceName string
	Timeout    time.Duration
}

// New connects to the panel. Fail fast at startup: a panel that cannot
// be reached is a hardware init failure.
func New(cfg Config) (*Panel, error) {
	if cfg.Endpoint == "" {
		return nil, errors.New("modbus panel: endpoint required")
	}

	h := modbus.NewTCPClientHandler(cfg.Endpoint)
	h.Timeout = cfg.Timeout
	h.SlaveId = cfg.UnitID

	if err := h.Connect(); err != nil {
		return nil, fmt.Errorf("modbus panel: connect %s: %w", cfg.Endpoint, err)
	}

	return &Panel{
		handler:    h,
		client:     modbus.NewClient(h),
		coilBase:   cfg.CoilBase,
		statusBase: cfg.StatusBase,
		deviceName: cfg.DeviceName,
	}, nil
}

func (p *Panel) SetSlot(slot int, _ feed.Entity) error {
	return p.writeCoil(slot, true)
}

func (p *Panel) ClearSlot(slot int) error {
	return p.writeCoil(slot, false)
}

func (p *Panel) writeCoil(slot int, on bool) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	var value uint16
	if on {
		value = 0xFF00
	}

	_, err := p.client.WriteSingleCoil(p.coilBase+uint16(slot), value)
	return err
}

// WriteHealth delivers the full health block. No-op unless status_base
// was configured.
func (p *Panel) WriteHealth(s status.Snapshot) error {
	if p.statusBase == nil {
		return nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	regs := status.Encode(s, p.deviceName)
	buf := make([]byte, 2*len(regs))
	for i, r := range regs {
		binary.BigEndian.PutUint16(buf[2*i:], r)
	}

	_, err := p.client.WriteMultipleRegisters(*p.statusBase, uint16(len(regs)), buf)
	return err
}

func (p *Panel) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handler.Close()
}
