package otos

import (
	"context"
	"math"
	"testing"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"go.viam.com/test"

	"github.com/viam-labs/qwiic-otos/otosbus"
	"github.com/viam-labs/qwiic-otos/utils"
)

func TestPoseDecodeInches(t *testing.T) {
	// Known scenario: raw counts 16, 32 and 256 at 1 mm and 1 mrad per LSB,
	// decoded into inches and degrees.
	dev := New(nil, golog.NewTestLogger(t))
	pose := dev.poseFromRegs([]byte{0x10, 0x00, 0x20, 0x00, 0x00, 0x01}, 0.001, 0.001)
	test.That(t, pose.X, test.ShouldAlmostEqual, 0.630, 0.001)
	test.That(t, pose.Y, test.ShouldAlmostEqual, 1.260, 0.001)
	test.That(t, pose.H, test.ShouldAlmostEqual, 14.68, 0.02)
}

func TestPoseRoundTrip(t *testing.T) {
	scales := []struct {
		name  string
		xy, h float64
	}{
		{"position", int16ToMeter, int16ToRad},
		{"velocity", int16ToMps, int16ToRps},
		{"acceleration", int16ToMpss, int16ToRpss},
	}
	raws := []int16{0, 1, -1, 127, -128, 255, 4097, -4097, 16384, -16384, 32767, -32768}

	for _, tc := range scales {
		t.Run(tc.name, func(t *testing.T) {
			for _, units := range []struct {
				linear  LinearUnit
				angular AngularUnit
			}{
				{LinearUnitMeters, AngularUnitRadians},
				{LinearUnitInches, AngularUnitDegrees},
			} {
				dev := New(nil, golog.NewTestLogger(t))
				dev.SetLinearUnit(units.linear)
				dev.SetAngularUnit(units.angular)

				for _, raw := range raws {
					block := append(append(append([]byte{},
						utils.BytesFromInt16LE(raw)...),
						utils.BytesFromInt16LE(-raw)...),
						utils.BytesFromInt16LE(raw)...)
					out := dev.poseToRegs(dev.poseFromRegs(block, tc.xy, tc.h), tc.xy, tc.h)
					for i := 0; i < poseBlockSize; i += 2 {
						want := utils.Int16FromBytesLE(block[i : i+2])
						got := utils.Int16FromBytesLE(out[i : i+2])
						diff := int(got) - int(want)
						if diff < 0 {
							diff = -diff
						}
						test.That(t, diff, test.ShouldBeLessThanOrEqualTo, 1)
					}
				}
			}
		})
	}
}

func TestPositionReadWrite(t *testing.T) {
	ctx := context.Background()
	chip := &fakeChip{}
	dev := newTestDevice(t, chip.transport())
	dev.SetLinearUnit(LinearUnitMeters)
	dev.SetAngularUnit(AngularUnitRadians)

	// Raw 16384 is half scale: 5 m for position, pi/2 for heading.
	copy(chip.regs[regPosition:], []byte{0x00, 0x40, 0x00, 0xC0, 0x00, 0x40})
	pose, err := dev.Position(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pose.X, test.ShouldAlmostEqual, 5.0, 1e-9)
	test.That(t, pose.Y, test.ShouldAlmostEqual, -5.0, 1e-9)
	test.That(t, pose.H, test.ShouldAlmostEqual, math.Pi/2, 1e-9)

	err = dev.SetPosition(ctx, Pose2D{X: 5.0, Y: -5.0, H: math.Pi / 2})
	test.That(t, err, test.ShouldBeNil)
	test.That(t, chip.regs[regPosition:regPosition+6], test.ShouldResemble,
		[]byte{0x00, 0x40, 0x00, 0xC0, 0x00, 0x40})
}

func TestOffsetReadWrite(t *testing.T) {
	ctx := context.Background()
	chip := &fakeChip{}
	dev := newTestDevice(t, chip.transport())
	dev.SetLinearUnit(LinearUnitMeters)
	dev.SetAngularUnit(AngularUnitRadians)

	err := dev.SetOffset(ctx, Pose2D{X: 0.1, Y: -0.05, H: math.Pi})
	test.That(t, err, test.ShouldBeNil)

	got, err := dev.Offset(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.X, test.ShouldAlmostEqual, 0.1, 0.001)
	test.That(t, got.Y, test.ShouldAlmostEqual, -0.05, 0.001)
	test.That(t, got.H, test.ShouldAlmostEqual, math.Pi, 0.001)
}

func TestPosVelAccSingleTransaction(t *testing.T) {
	ctx := context.Background()
	chip := &fakeChip{}
	// Half scale in every slot of all three groups.
	for reg := regPosition; reg < regPosition+18; reg += 2 {
		copy(chip.regs[reg:], []byte{0x00, 0x40})
	}
	dev := newTestDevice(t, chip.transport())
	dev.SetLinearUnit(LinearUnitMeters)
	dev.SetAngularUnit(AngularUnitRadians)

	pos, vel, acc, err := dev.PosVelAcc(ctx)
	test.That(t, err, test.ShouldBeNil)
	// One register select plus one 18-byte read.
	test.That(t, chip.txs, test.ShouldEqual, 1)
	test.That(t, chip.rxs, test.ShouldEqual, 1)

	test.That(t, pos.X, test.ShouldAlmostEqual, 5.0, 1e-9)
	test.That(t, vel.X, test.ShouldAlmostEqual, 2.5, 1e-9)
	test.That(t, acc.X, test.ShouldAlmostEqual, 78.5, 1e-9)
	test.That(t, pos.H, test.ShouldAlmostEqual, math.Pi/2, 1e-9)
	test.That(t, vel.H, test.ShouldAlmostEqual, 1000.0*(math.Pi/180.0), 1e-9)
	test.That(t, acc.H, test.ShouldAlmostEqual, math.Pi*500, 1e-9)
}

func TestSnapshotChunksOnce(t *testing.T) {
	ctx := context.Background()
	chip := &fakeChip{}
	copy(chip.regs[regPosition:], []byte{0x00, 0x40})
	copy(chip.regs[regPositionStdDev:], []byte{0x00, 0x20})
	dev := newTestDevice(t, chip.transport())
	dev.SetLinearUnit(LinearUnitMeters)

	snap, err := dev.PosVelAccAndStdDev(ctx)
	test.That(t, err, test.ShouldBeNil)
	// 36 bytes exceed the 32-byte chunk limit: one select, two reads.
	test.That(t, chip.txs, test.ShouldEqual, 1)
	test.That(t, chip.rxs, test.ShouldEqual, 2)

	test.That(t, snap.Position.X, test.ShouldAlmostEqual, 5.0, 1e-9)
	test.That(t, snap.PositionStdDev.X, test.ShouldAlmostEqual, 2.5, 1e-9)
	test.That(t, snap.Velocity.X, test.ShouldEqual, 0)
	test.That(t, snap.AccelerationStdDev.H, test.ShouldEqual, 0)
}

func TestPosVelAccStdDev(t *testing.T) {
	ctx := context.Background()
	chip := &fakeChip{}
	copy(chip.regs[regPositionStdDev:], []byte{0x00, 0x40})
	dev := newTestDevice(t, chip.transport())
	dev.SetLinearUnit(LinearUnitMeters)

	pos, vel, acc, err := dev.PosVelAccStdDev(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, pos.X, test.ShouldAlmostEqual, 5.0, 1e-9)
	test.That(t, vel, test.ShouldResemble, Pose2D{})
	test.That(t, acc, test.ShouldResemble, Pose2D{})
}

func TestPoseReadShortTransfer(t *testing.T) {
	ctx := context.Background()
	chip := &fakeChip{}
	tport := chip.transport()
	tport.RxFunc = func(_ context.Context, _ byte, r []byte, _ bool) (int, error) {
		// The transport comes up short without a hard error.
		return len(r) - 2, nil
	}
	dev := newTestDevice(t, tport)

	_, err := dev.Position(ctx)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, errors.Is(err, otosbus.ErrUnderRead), test.ShouldBeTrue)
}
