package otos

import "math"

// LinearUnit selects the length unit pose values are expressed in.
type LinearUnit int

// Supported length units.
const (
	LinearUnitMeters LinearUnit = iota
	LinearUnitInches
)

// AngularUnit selects the angle unit pose headings are expressed in.
type AngularUnit int

// Supported angle units.
const (
	AngularUnitRadians AngularUnit = iota
	AngularUnitDegrees
)

// Conversion factors out of the device's base units (meters, radians).
const (
	meterToInch    = 39.37
	radianToDegree = 180.0 / math.Pi
)

// Fixed-point scale of each register group, in base units per LSB. Each
// group maps the full signed 16-bit range onto its physical measurement
// range.
const (
	int16ToMeter = 10.0 / 32768.0                        // position, offset: +/-10 m
	int16ToRad   = math.Pi / 32768.0                     // heading: +/-pi rad
	int16ToMps   = 5.0 / 32768.0                         // velocity: +/-5 m/s
	int16ToRps   = 2000.0 * (math.Pi / 180.0) / 32768.0  // +/-2000 deg/s
	int16ToMpss  = 157.0 / 32768.0                       // acceleration: +/-16 g
	int16ToRpss  = math.Pi * 1000.0 / 32768.0            // +/-pi krad/s^2
)

// LinearUnit reports the length unit pose values are currently expressed in.
func (d *Device) LinearUnit() LinearUnit { return d.linearUnit }

// SetLinearUnit switches the length unit applied by every pose codec from
// here on. Setting the already-active unit changes nothing; no bus traffic
// happens either way.
func (d *Device) SetLinearUnit(unit LinearUnit) {
	if unit == d.linearUnit {
		return
	}
	d.linearUnit = unit
	if unit == LinearUnitMeters {
		d.meterToUnit = 1.0
	} else {
		d.meterToUnit = meterToInch
	}
}

// AngularUnit reports the angle unit pose headings are currently expressed
// in.
func (d *Device) AngularUnit() AngularUnit { return d.angularUnit }

// SetAngularUnit switches the angle unit applied by every pose codec from
// here on. Setting the already-active unit changes nothing; no bus traffic
// happens either way.
func (d *Device) SetAngularUnit(unit AngularUnit) {
	if unit == d.angularUnit {
		return
	}
	d.angularUnit = unit
	if unit == AngularUnitRadians {
		d.radToUnit = 1.0
	} else {
		d.radToUnit = radianToDegree
	}
}
