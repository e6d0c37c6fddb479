package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/edaniels/golog"
	"go.viam.com/test"
	"periph.io/x/conn/v3/physic"

	"github.com/viam-labs/qwiic-otos/otos"
	"github.com/viam-labs/qwiic-otos/otosbus"
	"github.com/viam-labs/qwiic-otos/testutils/inject"
)

// fakeChip mirrors the device register file behind an injected transport.
type fakeChip struct {
	regs [0x48]byte
	ptr  byte
}

func (f *fakeChip) transport() *inject.Transport {
	return &inject.Transport{
		InitFunc:   func(physic.Frequency) error { return nil },
		DeinitFunc: func() error { return nil },
		TxFunc: func(_ context.Context, _ byte, w []byte, hold bool) (int, error) {
			if hold {
				f.ptr = w[0]
			} else if len(w) > 1 {
				copy(f.regs[w[0]:], w[1:])
			}
			return len(w), nil
		},
		RxFunc: func(_ context.Context, _ byte, r []byte, _ bool) (int, error) {
			copy(r, f.regs[f.ptr:])
			f.ptr += byte(len(r))
			return len(r), nil
		},
	}
}

func writeProfile(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "profile.json5")
	test.That(t, os.WriteFile(path, []byte(contents), 0o600), test.ShouldBeNil)
	return path
}

func TestReadProfile(t *testing.T) {
	path := writeProfile(t, `{
		// comments are allowed
		linear_unit: "meters",
		angular_unit: "radians",
		linear_scalar: 1.05,
		offset: {X: 0.1, Y: -0.05, H: 1.5},
	}`)

	profile, err := ReadProfile(path)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, profile.LinearUnit, test.ShouldEqual, "meters")
	test.That(t, profile.AngularUnit, test.ShouldEqual, "radians")
	test.That(t, *profile.LinearScalar, test.ShouldEqual, 1.05)
	test.That(t, profile.AngularScalar, test.ShouldBeNil)
	test.That(t, profile.Offset.Y, test.ShouldEqual, -0.05)
}

func TestReadProfileErrors(t *testing.T) {
	_, err := ReadProfile(filepath.Join(t.TempDir(), "missing.json5"))
	test.That(t, err, test.ShouldNotBeNil)

	path := writeProfile(t, `{linear_unit: `)
	_, err = ReadProfile(path)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestProfileApply(t *testing.T) {
	ctx := context.Background()
	logger := golog.NewTestLogger(t)
	chip := &fakeChip{}
	bus, err := otosbus.Open(chip.transport(), otosbus.Options{}, logger)
	test.That(t, err, test.ShouldBeNil)
	t.Cleanup(func() { test.That(t, bus.Close(), test.ShouldBeNil) })
	dev := otos.New(bus, logger)

	linear := 1.05
	offset := otos.Pose2D{X: 0.1, Y: -0.05, H: 1.5}
	profile := &Profile{
		LinearUnit:   "meters",
		AngularUnit:  "radians",
		LinearScalar: &linear,
		Offset:       &offset,
	}
	test.That(t, profile.Apply(ctx, dev), test.ShouldBeNil)

	test.That(t, dev.LinearUnit(), test.ShouldEqual, otos.LinearUnitMeters)
	test.That(t, dev.AngularUnit(), test.ShouldEqual, otos.AngularUnitRadians)

	scalar, err := dev.LinearScalar(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, scalar, test.ShouldAlmostEqual, 1.05, 1e-9)

	got, err := dev.Offset(ctx)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, got.X, test.ShouldAlmostEqual, 0.1, 0.001)
	test.That(t, got.Y, test.ShouldAlmostEqual, -0.05, 0.001)
	test.That(t, got.H, test.ShouldAlmostEqual, 1.5, 0.001)
}

func TestProfileApplyUnknownUnit(t *testing.T) {
	ctx := context.Background()
	profile := &Profile{LinearUnit: "furlongs"}
	err := profile.Apply(ctx, nil)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "furlongs")
}
