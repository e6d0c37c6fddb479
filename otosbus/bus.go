// Package otosbus implements the addressed, chunked transaction layer the
// OTOS register protocol runs on: single-byte and region reads and writes to
// a fixed 7-bit device address, with region reads split into bus-held chunks,
// plus the electrical recovery procedure for a stuck bus.
//
// A Bus is a session handle over an injected Transport. It does no locking of
// its own; a single logical owner must serialize all transactions.
package otosbus

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/physic"
)

const (
	// DefaultAddress is the fixed 7-bit I2C address of the OTOS.
	DefaultAddress byte = 0x17

	// DefaultFrequency is the bus clock the transport is initialized at.
	DefaultFrequency = 350 * physic.KiloHertz

	// chunkSize caps a single read transfer; longer regions are split and
	// the bus held between the pieces.
	chunkSize = 32
)

// Options configure Open.
type Options struct {
	// Address overrides DefaultAddress for carrier boards that remap it.
	Address byte

	// SDA and SCL are the bus lines, used for recovery and for parking the
	// pins around transport init. Either may be nil on hosts whose
	// controller owns its pins entirely, in which case recovery is
	// unavailable.
	SDA, SCL gpio.PinIO

	// ForceRecovery runs the bus recovery procedure before the transport
	// comes up.
	ForceRecovery bool

	// Clock substitutes the delay source, for tests.
	Clock clock.Clock
}

// Bus is an open session on the transport.
type Bus struct {
	transport Transport
	addr      byte
	sda, scl  gpio.PinIO
	clk       clock.Clock
	logger    golog.Logger
	closed    bool
}

// Open initializes the transport and returns a session handle. Both pins are
// parked with pulls disabled before the transport comes up: re-initializing
// the controller while the pins keep a stale function can leave the bus in an
// inconsistent electrical state. The transport's Init then reassigns them to
// the bus function with pull-ups enabled.
func Open(transport Transport, opts Options, logger golog.Logger) (*Bus, error) {
	if transport == nil {
		return nil, errors.New("no transport supplied")
	}
	addr := opts.Address
	if addr == 0 {
		addr = DefaultAddress
	}
	clk := opts.Clock
	if clk == nil {
		clk = clock.New()
	}

	if opts.ForceRecovery {
		if err := Recover(opts.SDA, opts.SCL, clk); err != nil {
			return nil, errors.Wrap(err, "recovering bus")
		}
	}
	for _, pin := range []gpio.PinIO{opts.SDA, opts.SCL} {
		if pin == nil {
			continue
		}
		if err := pin.In(gpio.Float, gpio.NoEdge); err != nil {
			return nil, errors.Wrapf(err, "parking pin %s", pin.Name())
		}
	}
	if err := transport.Init(DefaultFrequency); err != nil {
		return nil, errors.Wrap(err, "initializing transport")
	}
	logger.Debugf("bus up at %s, device address 0x%02X", DefaultFrequency, addr)

	return &Bus{
		transport: transport,
		addr:      addr,
		sda:       opts.SDA,
		scl:       opts.SCL,
		clk:       clk,
		logger:    logger,
	}, nil
}

// Close de-initializes the transport and parks the pins in a safe floating
// state. Further operations on the bus return ErrBusClosed. Close is
// idempotent.
func (b *Bus) Close() error {
	if b.closed {
		return nil
	}
	b.closed = true
	err := b.transport.Deinit()
	for _, pin := range []gpio.PinIO{b.sda, b.scl} {
		if pin == nil {
			continue
		}
		err = multierr.Combine(err, pin.In(gpio.Float, gpio.NoEdge))
	}
	return err
}

// Probe addresses the device with a single zero data byte and no register
// context, reporting whether it acknowledged.
func (b *Bus) Probe(ctx context.Context) error {
	if b == nil || b.closed {
		return ErrBusClosed
	}
	if _, err := b.transport.Tx(ctx, b.addr, []byte{0}, false); err != nil {
		return errors.Wrap(err, "device did not acknowledge")
	}
	return nil
}

// ReadByte reads the single register reg. The register write holds the bus so
// the read that follows belongs to the same transaction.
func (b *Bus) ReadByte(ctx context.Context, reg byte) (byte, error) {
	if b == nil || b.closed {
		return 0, ErrBusClosed
	}
	if _, err := b.transport.Tx(ctx, b.addr, []byte{reg}, true); err != nil {
		return 0, errors.Wrapf(err, "selecting register 0x%02X", reg)
	}
	var buf [1]byte
	n, err := b.transport.Rx(ctx, b.addr, buf[:], false)
	if err != nil {
		return 0, errors.Wrapf(err, "reading register 0x%02X", reg)
	}
	if n != 1 {
		return 0, errors.Errorf("read %d bytes from register 0x%02X, expected 1", n, reg)
	}
	return buf[0], nil
}

// ReadRegion fills buf from the contiguous registers starting at reg and
// returns how many bytes actually arrived. Transfers longer than 32 bytes are
// split into chunks; every chunk but the last holds the bus so the whole
// region stays one logical transaction. A short total yields an
// UnderReadError, which is distinct from a transfer failure.
func (b *Bus) ReadRegion(ctx context.Context, reg byte, buf []byte) (int, error) {
	return b.ReadRegionAddr(ctx, []byte{reg}, buf)
}

// ReadRegionAddr is ReadRegion for devices whose register addresses span
// multiple bytes; regs is written as-is before the chunked reads begin.
func (b *Bus) ReadRegionAddr(ctx context.Context, regs, buf []byte) (int, error) {
	if b == nil || b.closed {
		return 0, ErrBusClosed
	}
	if buf == nil {
		return 0, ErrNilBuffer
	}

	if _, err := b.transport.Tx(ctx, b.addr, regs, true); err != nil {
		return 0, errors.Wrap(err, "selecting register region")
	}
	read := 0
	for start := 0; start < len(buf); start += chunkSize {
		end := start + chunkSize
		if end > len(buf) {
			end = len(buf)
		}
		n, err := b.transport.Rx(ctx, b.addr, buf[start:end], end < len(buf))
		read += n
		if err != nil {
			return read, errors.Wrap(err, "reading register region")
		}
		if n < end-start {
			return read, &UnderReadError{Requested: len(buf), Read: read}
		}
	}
	return read, nil
}

// WriteByte writes value to the single register reg as one two-byte
// transaction.
func (b *Bus) WriteByte(ctx context.Context, reg, value byte) error {
	if b == nil || b.closed {
		return ErrBusClosed
	}
	n, err := b.transport.Tx(ctx, b.addr, []byte{reg, value}, false)
	if err != nil {
		return errors.Wrapf(err, "writing register 0x%02X", reg)
	}
	if n != 2 {
		return errors.Errorf("wrote %d of 2 bytes to register 0x%02X", n, reg)
	}
	return nil
}

// WriteRegion writes data to the contiguous registers starting at reg.
func (b *Bus) WriteRegion(ctx context.Context, reg byte, data []byte) error {
	return b.WriteRegionAddr(ctx, []byte{reg}, data)
}

// WriteRegionAddr writes the register address bytes followed by data as one
// contiguous transaction. Writes are never chunked; the device must accept
// the exact byte count.
func (b *Bus) WriteRegionAddr(ctx context.Context, regs, data []byte) error {
	if b == nil || b.closed {
		return ErrBusClosed
	}
	tx := make([]byte, 0, len(regs)+len(data))
	tx = append(tx, regs...)
	tx = append(tx, data...)
	n, err := b.transport.Tx(ctx, b.addr, tx, false)
	if err != nil {
		return errors.Wrap(err, "writing register region")
	}
	if n != len(tx) {
		return errors.Errorf("wrote %d of %d bytes to register region", n, len(tx))
	}
	return nil
}
