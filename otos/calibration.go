package otos

import (
	"context"
	"math"
	"time"

	"github.com/pkg/errors"

	"github.com/viam-labs/qwiic-otos/utils"
)

// Scalars are stored as a signed byte in 0.1% steps, so the usable
// correction range is 12.5% either side of unity.
const (
	MinScalar = 0.875
	MaxScalar = 1.125
)

const (
	selfTestAttempts     = 10
	selfTestPollInterval = 5 * time.Millisecond

	// One calibration sample takes 2.4 ms on firmware v1.0; 3 ms guarantees
	// the next sample is done before the next poll.
	calibSamplePeriod = 3 * time.Millisecond
)

// LinearScalar reads the linear scaling correction applied to translation
// measurements.
func (d *Device) LinearScalar(ctx context.Context) (float64, error) {
	return d.scalar(ctx, regScalarLinear)
}

// SetLinearScalar sets the linear scaling correction, compensating for
// mounting-height error in translation measurements. Values outside
// [MinScalar, MaxScalar] are rejected before any bus access.
func (d *Device) SetLinearScalar(ctx context.Context, scalar float64) error {
	return d.setScalar(ctx, regScalarLinear, scalar)
}

// AngularScalar reads the angular scaling correction applied to heading
// measurements.
func (d *Device) AngularScalar(ctx context.Context) (float64, error) {
	return d.scalar(ctx, regScalarAngular)
}

// SetAngularScalar sets the angular scaling correction, compensating for
// IMU gain error in heading measurements. Values outside
// [MinScalar, MaxScalar] are rejected before any bus access.
func (d *Device) SetAngularScalar(ctx context.Context, scalar float64) error {
	return d.setScalar(ctx, regScalarAngular, scalar)
}

func (d *Device) scalar(ctx context.Context, reg byte) (float64, error) {
	raw, err := d.bus.ReadByte(ctx, reg)
	if err != nil {
		return 0, err
	}
	return float64(int8(raw))*0.001 + 1.0, nil
}

func (d *Device) setScalar(ctx context.Context, reg byte, scalar float64) error {
	if scalar < MinScalar || scalar > MaxScalar {
		return errors.Errorf("scalar %v out of range [%v, %v]", scalar, MinScalar, MaxScalar)
	}
	raw := int8(math.Round((scalar - 1.0) * 1000))
	return d.bus.WriteByte(ctx, reg, byte(raw))
}

// SelfTest runs the built-in self test, which takes around 20 ms on firmware
// v1.0. It reports failure both when the device flags a failed test and when
// the poll budget runs out with the test still in progress; the two cases
// read identically off the wire.
func (d *Device) SelfTest(ctx context.Context) error {
	if err := d.bus.WriteByte(ctx, regSelfTest, selfTestStart); err != nil {
		return errors.Wrap(err, "starting self test")
	}
	var state byte
	for i := 0; i < selfTestAttempts; i++ {
		if !utils.SelectContextOrWait(ctx, d.clk, selfTestPollInterval) {
			return ctx.Err()
		}
		var err error
		state, err = d.bus.ReadByte(ctx, regSelfTest)
		if err != nil {
			return errors.Wrap(err, "polling self test")
		}
		if state&selfTestInProgress == 0 {
			break
		}
	}
	if state&selfTestPass == 0 {
		return errors.New("self test failed")
	}
	return nil
}

// CalibrateIMU recalibrates the gyroscope and accelerometer biases over
// numSamples samples; the robot must be completely still while it runs.
// With wait unset this is fire and forget: it returns once the sample count
// has been written and latched, and says nothing about the calibration
// outcome. With wait set it polls the countdown register, one poll per
// requested sample at most, and fails if the budget runs out first.
func (d *Device) CalibrateIMU(ctx context.Context, numSamples uint8, wait bool) error {
	if err := d.bus.WriteByte(ctx, regIMUCalib, numSamples); err != nil {
		return errors.Wrap(err, "requesting imu calibration")
	}
	// Give the register one sample period to latch.
	if !utils.SelectContextOrWait(ctx, d.clk, calibSamplePeriod) {
		return ctx.Err()
	}
	if !wait {
		return nil
	}

	// The register counts the samples still to go. One poll per requested
	// sample is budget enough in normal operation because every poll waits
	// at least a full sample period.
	for attempts := numSamples; attempts > 0; attempts-- {
		remaining, err := d.bus.ReadByte(ctx, regIMUCalib)
		if err != nil {
			return errors.Wrap(err, "polling imu calibration")
		}
		if remaining == 0 {
			return nil
		}
		if !utils.SelectContextOrWait(ctx, d.clk, calibSamplePeriod) {
			return ctx.Err()
		}
	}
	return errors.New("imu calibration did not finish in time")
}

// IMUCalibrationProgress reads how many calibration samples remain; zero
// means no calibration is running.
func (d *Device) IMUCalibrationProgress(ctx context.Context) (uint8, error) {
	return d.bus.ReadByte(ctx, regIMUCalib)
}
