package otos

import "fmt"

// Register addresses in the device memory map. The six pose groups from
// regPosition onward are laid out back to back so they can be fetched as one
// 18- or 36-byte region read.
const (
	regProductID          byte = 0x00
	regHwVersion          byte = 0x01
	regFwVersion          byte = 0x02
	regScalarLinear       byte = 0x04
	regScalarAngular      byte = 0x05
	regIMUCalib           byte = 0x06
	regReset              byte = 0x07
	regSignalProcess      byte = 0x0E
	regSelfTest           byte = 0x0F
	regOffset             byte = 0x10
	regStatus             byte = 0x1F
	regPosition           byte = 0x20
	regVelocity           byte = 0x26
	regAcceleration       byte = 0x2C
	regPositionStdDev     byte = 0x32
	regVelocityStdDev     byte = 0x38
	regAccelerationStdDev byte = 0x3E
)

// productID is the value regProductID always reads as on an OTOS.
const productID byte = 0x5F

// Self-test register bits.
const (
	selfTestStart      byte = 1 << 0
	selfTestInProgress byte = 1 << 1
	selfTestPass       byte = 1 << 2
)

// Version is a hardware or firmware version register value, major in the
// high nibble.
type Version byte

// Major returns the major version number.
func (v Version) Major() uint8 { return uint8(v) >> 4 }

// Minor returns the minor version number.
func (v Version) Minor() uint8 { return uint8(v) & 0x0F }

func (v Version) String() string {
	return fmt.Sprintf("v%d.%d", v.Major(), v.Minor())
}

// Status is the device status register.
type Status byte

// WarnTiltAngle reports the tilt angle warning: the sensor is tipped too far
// for reliable tracking.
func (s Status) WarnTiltAngle() bool { return s&(1<<0) != 0 }

// WarnOpticalTracking reports that the optical sensor has trouble tracking
// the surface.
func (s Status) WarnOpticalTracking() bool { return s&(1<<1) != 0 }

// ErrorPAA reports a fatal error on the optical sensor.
func (s Status) ErrorPAA() bool { return s&(1<<6) != 0 }

// ErrorLSM reports a fatal error on the IMU.
func (s Status) ErrorLSM() bool { return s&(1<<7) != 0 }

// SignalProcessConfig selects which signal-processing stages run on the
// device. The power-on default enables all of them.
type SignalProcessConfig byte

// Signal-processing stages.
const (
	EnableLookupTable   SignalProcessConfig = 1 << 0
	EnableAccelerometer SignalProcessConfig = 1 << 1
	EnableRotation      SignalProcessConfig = 1 << 2
	EnableVariance      SignalProcessConfig = 1 << 3
)
