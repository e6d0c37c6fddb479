package otos

import (
	"context"

	"github.com/viam-labs/qwiic-otos/utils"
)

// poseBlockSize is the width of one pose register group: three little-endian
// signed 16-bit values (x, y, heading).
const poseBlockSize = 6

// Pose2D is a two-dimensional pose: a position or one of its derivatives on
// the tracking plane, plus the matching heading component. Values are in the
// device's currently configured units.
type Pose2D struct {
	X float64
	Y float64
	H float64
}

// Snapshot is every tracked pose group read in a single 36-byte transaction,
// so the values are mutually consistent.
type Snapshot struct {
	Position           Pose2D
	Velocity           Pose2D
	Acceleration       Pose2D
	PositionStdDev     Pose2D
	VelocityStdDev     Pose2D
	AccelerationStdDev Pose2D
}

// Offset reads the sensor's mounting offset from the robot's center of
// rotation.
func (d *Device) Offset(ctx context.Context) (Pose2D, error) {
	return d.readPose(ctx, regOffset, int16ToMeter, int16ToRad)
}

// SetOffset sets the sensor's mounting offset from the robot's center of
// rotation, so reported poses describe the robot rather than the sensor.
// The offset must be set again after a power cycle.
func (d *Device) SetOffset(ctx context.Context, pose Pose2D) error {
	return d.writePose(ctx, regOffset, pose, int16ToMeter, int16ToRad)
}

// Position reads the tracked position.
func (d *Device) Position(ctx context.Context) (Pose2D, error) {
	return d.readPose(ctx, regPosition, int16ToMeter, int16ToRad)
}

// SetPosition teleports the tracked position, typically to tell the sensor
// where the robot starts on the field.
func (d *Device) SetPosition(ctx context.Context, pose Pose2D) error {
	return d.writePose(ctx, regPosition, pose, int16ToMeter, int16ToRad)
}

// Velocity reads the tracked velocity.
func (d *Device) Velocity(ctx context.Context) (Pose2D, error) {
	return d.readPose(ctx, regVelocity, int16ToMps, int16ToRps)
}

// Acceleration reads the tracked acceleration.
func (d *Device) Acceleration(ctx context.Context) (Pose2D, error) {
	return d.readPose(ctx, regAcceleration, int16ToMpss, int16ToRpss)
}

// PositionStdDev reads the standard deviation of the tracked position. These
// values come from the device's own models; they do not account for wheel
// slip or surface problems.
func (d *Device) PositionStdDev(ctx context.Context) (Pose2D, error) {
	return d.readPose(ctx, regPositionStdDev, int16ToMeter, int16ToRad)
}

// VelocityStdDev reads the standard deviation of the tracked velocity.
func (d *Device) VelocityStdDev(ctx context.Context) (Pose2D, error) {
	return d.readPose(ctx, regVelocityStdDev, int16ToMps, int16ToRps)
}

// AccelerationStdDev reads the standard deviation of the tracked
// acceleration.
func (d *Device) AccelerationStdDev(ctx context.Context) (Pose2D, error) {
	return d.readPose(ctx, regAccelerationStdDev, int16ToMpss, int16ToRpss)
}

// PosVelAcc reads position, velocity and acceleration in one 18-byte bus
// transaction instead of three separate ones.
func (d *Device) PosVelAcc(ctx context.Context) (pos, vel, acc Pose2D, err error) {
	raw := make([]byte, 3*poseBlockSize)
	if err := d.readRegion(ctx, regPosition, raw); err != nil {
		return Pose2D{}, Pose2D{}, Pose2D{}, err
	}
	return d.poseFromRegs(raw[0:6], int16ToMeter, int16ToRad),
		d.poseFromRegs(raw[6:12], int16ToMps, int16ToRps),
		d.poseFromRegs(raw[12:18], int16ToMpss, int16ToRpss),
		nil
}

// PosVelAccStdDev reads the standard deviations of all three pose groups in
// one 18-byte bus transaction.
func (d *Device) PosVelAccStdDev(ctx context.Context) (pos, vel, acc Pose2D, err error) {
	raw := make([]byte, 3*poseBlockSize)
	if err := d.readRegion(ctx, regPositionStdDev, raw); err != nil {
		return Pose2D{}, Pose2D{}, Pose2D{}, err
	}
	return d.poseFromRegs(raw[0:6], int16ToMeter, int16ToRad),
		d.poseFromRegs(raw[6:12], int16ToMps, int16ToRps),
		d.poseFromRegs(raw[12:18], int16ToMpss, int16ToRpss),
		nil
}

// PosVelAccAndStdDev reads all six pose groups in one 36-byte bus
// transaction.
func (d *Device) PosVelAccAndStdDev(ctx context.Context) (Snapshot, error) {
	raw := make([]byte, 6*poseBlockSize)
	if err := d.readRegion(ctx, regPosition, raw); err != nil {
		return Snapshot{}, err
	}
	return Snapshot{
		Position:           d.poseFromRegs(raw[0:6], int16ToMeter, int16ToRad),
		Velocity:           d.poseFromRegs(raw[6:12], int16ToMps, int16ToRps),
		Acceleration:       d.poseFromRegs(raw[12:18], int16ToMpss, int16ToRpss),
		PositionStdDev:     d.poseFromRegs(raw[18:24], int16ToMeter, int16ToRad),
		VelocityStdDev:     d.poseFromRegs(raw[24:30], int16ToMps, int16ToRps),
		AccelerationStdDev: d.poseFromRegs(raw[30:36], int16ToMpss, int16ToRpss),
	}, nil
}

func (d *Device) readPose(ctx context.Context, reg byte, rawToXY, rawToH float64) (Pose2D, error) {
	raw := make([]byte, poseBlockSize)
	if err := d.readRegion(ctx, reg, raw); err != nil {
		return Pose2D{}, err
	}
	return d.poseFromRegs(raw, rawToXY, rawToH), nil
}

func (d *Device) writePose(ctx context.Context, reg byte, pose Pose2D, rawToXY, rawToH float64) error {
	return d.bus.WriteRegion(ctx, reg, d.poseToRegs(pose, rawToXY, rawToH))
}

// poseFromRegs decodes one register block with the group's fixed-point scale
// and the currently configured unit factors.
func (d *Device) poseFromRegs(raw []byte, rawToXY, rawToH float64) Pose2D {
	return Pose2D{
		X: float64(utils.Int16FromBytesLE(raw[0:2])) * rawToXY * d.meterToUnit,
		Y: float64(utils.Int16FromBytesLE(raw[2:4])) * rawToXY * d.meterToUnit,
		H: float64(utils.Int16FromBytesLE(raw[4:6])) * rawToH * d.radToUnit,
	}
}

// poseToRegs encodes a pose back into a register block: divide out the unit
// factor and the fixed-point scale, then truncate to signed 16 bits.
func (d *Device) poseToRegs(pose Pose2D, rawToXY, rawToH float64) []byte {
	raw := make([]byte, 0, poseBlockSize)
	raw = append(raw, utils.BytesFromInt16LE(int16(pose.X/d.meterToUnit/rawToXY))...)
	raw = append(raw, utils.BytesFromInt16LE(int16(pose.Y/d.meterToUnit/rawToXY))...)
	raw = append(raw, utils.BytesFromInt16LE(int16(pose.H/d.radToUnit/rawToH))...)
	return raw
}
