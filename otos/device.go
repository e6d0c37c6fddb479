// Package otos implements a driver for the SparkFun Qwiic Optical Tracking
// Odometry Sensor: its register protocol, the fixed-point pose codec with
// selectable units, and the self-test and IMU calibration procedures. All
// bus traffic goes through the otosbus transaction layer.
//
// A datasheet and register map for the sensor is at
// https://www.sparkfun.com/products/24904. The device tracks its own 2D pose
// optically, so reads return position, velocity and acceleration directly;
// the host never integrates anything.
//
// The driver is fully synchronous and keeps no background goroutines. Like
// the bus layer it expects a single logical owner; callers sharing a Device
// across goroutines must serialize externally.
package otos

import (
	"context"

	"github.com/benbjohnson/clock"
	"github.com/edaniels/golog"
	"github.com/pkg/errors"

	"github.com/viam-labs/qwiic-otos/otosbus"
)

// Device is an OTOS reached over an open bus session. Units default to
// inches and degrees.
type Device struct {
	bus    *otosbus.Bus
	clk    clock.Clock
	logger golog.Logger

	linearUnit  LinearUnit
	angularUnit AngularUnit
	meterToUnit float64
	radToUnit   float64
}

// New wraps an open bus session.
func New(bus *otosbus.Bus, logger golog.Logger) *Device {
	return NewWithClock(bus, clock.New(), logger)
}

// NewWithClock is New with a substitute delay source, for tests.
func NewWithClock(bus *otosbus.Bus, clk clock.Clock, logger golog.Logger) *Device {
	return &Device{
		bus:         bus,
		clk:         clk,
		logger:      logger,
		linearUnit:  LinearUnitInches,
		angularUnit: AngularUnitDegrees,
		meterToUnit: meterToInch,
		radToUnit:   radianToDegree,
	}
}

// Connected probes the device address and verifies the product ID register.
// Identity checking should precede all other use: the driver talks to a
// fixed address that another board could be occupying.
func (d *Device) Connected(ctx context.Context) error {
	if err := d.bus.Probe(ctx); err != nil {
		return err
	}
	id, err := d.bus.ReadByte(ctx, regProductID)
	if err != nil {
		return err
	}
	if id != productID {
		return errors.Errorf("unexpected product ID 0x%02X, want 0x%02X", id, productID)
	}
	return nil
}

// VersionInfo reads the hardware and firmware version registers.
func (d *Device) VersionInfo(ctx context.Context) (hw, fw Version, err error) {
	var raw [2]byte
	if err := d.readRegion(ctx, regHwVersion, raw[:]); err != nil {
		return 0, 0, err
	}
	return Version(raw[0]), Version(raw[1]), nil
}

// Status reads the device status register.
func (d *Device) Status(ctx context.Context) (Status, error) {
	b, err := d.bus.ReadByte(ctx, regStatus)
	return Status(b), err
}

// SignalProcessConfig reads the signal-processing configuration register.
func (d *Device) SignalProcessConfig(ctx context.Context) (SignalProcessConfig, error) {
	b, err := d.bus.ReadByte(ctx, regSignalProcess)
	return SignalProcessConfig(b), err
}

// SetSignalProcessConfig writes the signal-processing configuration
// register.
func (d *Device) SetSignalProcessConfig(ctx context.Context, cfg SignalProcessConfig) error {
	return d.bus.WriteByte(ctx, regSignalProcess, byte(cfg))
}

// ResetTracking restarts tracking from a pose of all zeros.
func (d *Device) ResetTracking(ctx context.Context) error {
	return d.bus.WriteByte(ctx, regReset, 0x01)
}

// readRegion reads a fixed-layout region and insists on the full byte count.
// The bus can report success on a short transfer; the register layout makes
// the expected count known here, so verify it again.
func (d *Device) readRegion(ctx context.Context, reg byte, buf []byte) error {
	n, err := d.bus.ReadRegion(ctx, reg, buf)
	if err != nil {
		return err
	}
	if n != len(buf) {
		return errors.Errorf("read %d of %d bytes from register 0x%02X", n, len(buf), reg)
	}
	return nil
}
