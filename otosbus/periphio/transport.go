// Package periphio adapts a periph.io I2C bus and GPIO registry to the
// otosbus transport and pin capabilities.
package periphio

import (
	"context"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/conn/v3/i2c"
	"periph.io/x/conn/v3/i2c/i2creg"
	"periph.io/x/conn/v3/physic"
)

// Transport drives an OTOS through a periph.io I2C bus. periph only exposes
// combined write-then-read transactions, so a write issued with the hold
// flag is deferred and sent together with the read that follows it as one
// transaction with a repeated start. Reads asked to hold the bus cannot do
// so; split region reads still come back consecutive because the device
// keeps its register pointer across transactions.
type Transport struct {
	busName string
	bus     i2c.BusCloser
	pending []byte
	logger  golog.Logger
}

// NewTransport returns a transport over the named host I2C bus ("1",
// "/dev/i2c-1", ...). The bus is not opened until Init.
func NewTransport(busName string, logger golog.Logger) *Transport {
	return &Transport{busName: busName, logger: logger}
}

// NewTransportFromBus wraps an already-open bus, for hosts that do their own
// bus discovery.
func NewTransportFromBus(bus i2c.BusCloser, logger golog.Logger) *Transport {
	return &Transport{bus: bus, logger: logger}
}

// Init opens the bus and sets its clock. Init on an open transport is a
// no-op.
func (t *Transport) Init(busFreq physic.Frequency) error {
	if t.bus == nil {
		bus, err := i2creg.Open(t.busName)
		if err != nil {
			return errors.Wrapf(err, "opening i2c bus %q", t.busName)
		}
		t.bus = bus
	}
	if err := t.bus.SetSpeed(busFreq); err != nil {
		// Many hosts fix the bus clock in the device tree and reject
		// SetSpeed; run at whatever the bus already does.
		t.logger.Debugw("cannot set bus clock", "freq", busFreq, "error", err)
	}
	return nil
}

// Deinit closes the bus.
func (t *Transport) Deinit() error {
	if t.bus == nil {
		return nil
	}
	err := t.bus.Close()
	t.bus = nil
	t.pending = nil
	return err
}

// Tx writes w to addr, deferring the write when hold is set.
func (t *Transport) Tx(ctx context.Context, addr byte, w []byte, hold bool) (int, error) {
	if t.bus == nil {
		return 0, errors.New("i2c bus not open")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	if hold {
		t.pending = append(t.pending[:0], w...)
		return len(w), nil
	}
	if err := t.bus.Tx(uint16(addr), w, nil); err != nil {
		return 0, err
	}
	return len(w), nil
}

// Rx reads len(r) bytes from addr, folding in any deferred held write.
func (t *Transport) Rx(ctx context.Context, addr byte, r []byte, hold bool) (int, error) {
	if t.bus == nil {
		return 0, errors.New("i2c bus not open")
	}
	if err := ctx.Err(); err != nil {
		return 0, err
	}
	w := t.pending
	t.pending = nil
	if err := t.bus.Tx(uint16(addr), w, r); err != nil {
		return 0, err
	}
	return len(r), nil
}

// Pins looks the bus lines up by host pin name, for use with the bus
// recovery procedure.
func Pins(sdaName, sclName string) (sda, scl gpio.PinIO, err error) {
	sda = gpioreg.ByName(sdaName)
	if sda == nil {
		return nil, nil, errors.Errorf("no gpio pin named %q", sdaName)
	}
	scl = gpioreg.ByName(sclName)
	if scl == nil {
		return nil, nil, errors.Errorf("no gpio pin named %q", sclName)
	}
	return sda, scl, nil
}
