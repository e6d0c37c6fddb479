// Package main contains a command to talk to a SparkFun OTOS odometry
// sensor over I2C.
package main

import (
	"context"
	"strconv"
	"time"

	"github.com/edaniels/golog"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"
	"periph.io/x/host/v3"

	"github.com/viam-labs/qwiic-otos/otos"
	"github.com/viam-labs/qwiic-otos/otosbus"
	"github.com/viam-labs/qwiic-otos/otosbus/periphio"
)

var logger = golog.NewDevelopmentLogger("otos")

func main() {
	goutils.ContextualMain(mainWithArgs, logger)
}

func mainWithArgs(ctx context.Context, args []string, logger golog.Logger) error {
	app := newApp(logger)
	return app.RunContext(ctx, args)
}

func newApp(logger golog.Logger) *cli.App {
	return &cli.App{
		Name:            "otos",
		Usage:           "interact with a SparkFun OTOS odometry sensor",
		HideHelpCommand: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:  "i2c-bus",
				Value: "1",
				Usage: "host I2C bus name or number",
			},
			&cli.IntFlag{
				Name:  "address",
				Value: int(otosbus.DefaultAddress),
				Usage: "7-bit I2C device address",
			},
			&cli.StringFlag{
				Name:  "sda",
				Usage: "SDA pin name, for bus recovery",
			},
			&cli.StringFlag{
				Name:  "scl",
				Usage: "SCL pin name, for bus recovery",
			},
			&cli.BoolFlag{
				Name:  "recover",
				Usage: "clock out a stuck bus before connecting (needs --sda and --scl)",
			},
			&cli.PathFlag{
				Name:    "profile",
				Aliases: []string{"p"},
				Usage:   "load sensor configuration from `FILE`",
			},
			&cli.BoolFlag{
				Name:  "debug",
				Usage: "enable debug logging",
			},
		},
		Commands: []*cli.Command{
			{
				Name:   "status",
				Usage:  "print tracking warnings and sensor errors",
				Action: statusAction,
			},
			{
				Name:   "version",
				Usage:  "print hardware and firmware versions",
				Action: versionAction,
			},
			{
				Name:   "selftest",
				Usage:  "run the built-in self test",
				Action: selfTestAction,
			},
			{
				Name:  "calibrate",
				Usage: "calibrate the IMU; keep the robot still",
				Flags: []cli.Flag{
					&cli.UintFlag{
						Name:  "samples",
						Value: 255,
						Usage: "number of calibration samples (max 255)",
					},
					&cli.BoolFlag{
						Name:  "no-wait",
						Usage: "return without waiting for calibration to finish",
					},
				},
				Action: calibrateAction,
			},
			{
				Name:   "reset",
				Usage:  "reset tracking to the origin",
				Action: resetAction,
			},
			{
				Name:            "scalar",
				Usage:           "work with scaling corrections",
				HideHelpCommand: true,
				Subcommands: []*cli.Command{
					{
						Name:   "get",
						Usage:  "print the linear and angular scalars",
						Action: scalarGetAction,
					},
					{
						Name:      "set",
						Usage:     "set the linear and angular scalars",
						ArgsUsage: "<linear> <angular>",
						Action:    scalarSetAction,
					},
				},
			},
			{
				Name:  "track",
				Usage: "stream position, velocity and acceleration",
				Flags: []cli.Flag{
					&cli.DurationFlag{
						Name:  "interval",
						Value: 100 * time.Millisecond,
						Usage: "time between readings",
					},
				},
				Action: trackAction,
			},
		},
	}
}

// withDevice connects to the sensor described by the global flags, applies
// the profile if one was given, runs f and releases the bus.
func withDevice(c *cli.Context, f func(ctx context.Context, dev *otos.Device) error) (err error) {
	ctx := c.Context
	cmdLogger := logger
	if c.Bool("debug") {
		cmdLogger = golog.NewDebugLogger("otos")
	}

	if _, err := host.Init(); err != nil {
		return errors.Wrap(err, "initializing host drivers")
	}

	opts := otosbus.Options{Address: byte(c.Int("address"))}
	if c.Bool("recover") {
		sda, scl, err := periphio.Pins(c.String("sda"), c.String("scl"))
		if err != nil {
			return err
		}
		opts.SDA = sda
		opts.SCL = scl
		opts.ForceRecovery = true
	}

	tport := periphio.NewTransport(c.String("i2c-bus"), cmdLogger)
	bus, err := otosbus.Open(tport, opts, cmdLogger)
	if err != nil {
		return errors.Wrap(err, "opening bus")
	}
	defer func() {
		err = multierr.Combine(err, bus.Close())
	}()

	dev := otos.New(bus, cmdLogger)
	if err := dev.Connected(ctx); err != nil {
		return errors.Wrap(err, "sensor not responding")
	}

	if path := c.Path("profile"); path != "" {
		profile, err := ReadProfile(path)
		if err != nil {
			return err
		}
		if err := profile.Apply(ctx, dev); err != nil {
			return errors.Wrap(err, "applying profile")
		}
	}

	return f(ctx, dev)
}

func statusAction(c *cli.Context) error {
	return withDevice(c, func(ctx context.Context, dev *otos.Device) error {
		status, err := dev.Status(ctx)
		if err != nil {
			return err
		}
		logger.Infow("sensor status",
			"tilt_warning", status.WarnTiltAngle(),
			"tracking_warning", status.WarnOpticalTracking(),
			"optical_error", status.ErrorPAA(),
			"imu_error", status.ErrorLSM(),
		)
		return nil
	})
}

func versionAction(c *cli.Context) error {
	return withDevice(c, func(ctx context.Context, dev *otos.Device) error {
		hw, fw, err := dev.VersionInfo(ctx)
		if err != nil {
			return err
		}
		logger.Infow("sensor versions", "hardware", hw.String(), "firmware", fw.String())
		return nil
	})
}

func selfTestAction(c *cli.Context) error {
	return withDevice(c, func(ctx context.Context, dev *otos.Device) error {
		if err := dev.SelfTest(ctx); err != nil {
			return err
		}
		logger.Info("self test passed")
		return nil
	})
}

func calibrateAction(c *cli.Context) error {
	samples := c.Uint("samples")
	if samples > 255 {
		return errors.Errorf("samples %d out of range [0, 255]", samples)
	}
	return withDevice(c, func(ctx context.Context, dev *otos.Device) error {
		wait := !c.Bool("no-wait")
		if err := dev.CalibrateIMU(ctx, uint8(samples), wait); err != nil {
			return err
		}
		if wait {
			logger.Info("imu calibration finished")
		} else {
			logger.Info("imu calibration started")
		}
		return nil
	})
}

func resetAction(c *cli.Context) error {
	return withDevice(c, func(ctx context.Context, dev *otos.Device) error {
		if err := dev.ResetTracking(ctx); err != nil {
			return err
		}
		logger.Info("tracking reset to origin")
		return nil
	})
}

func scalarGetAction(c *cli.Context) error {
	return withDevice(c, func(ctx context.Context, dev *otos.Device) error {
		linear, err := dev.LinearScalar(ctx)
		if err != nil {
			return err
		}
		angular, err := dev.AngularScalar(ctx)
		if err != nil {
			return err
		}
		logger.Infow("scaling corrections", "linear", linear, "angular", angular)
		return nil
	})
}

func scalarSetAction(c *cli.Context) error {
	if c.NArg() != 2 {
		return errors.New("expected <linear> <angular> arguments")
	}
	var linear, angular float64
	if err := parseFloat(c.Args().Get(0), &linear); err != nil {
		return errors.Wrap(err, "linear scalar")
	}
	if err := parseFloat(c.Args().Get(1), &angular); err != nil {
		return errors.Wrap(err, "angular scalar")
	}
	return withDevice(c, func(ctx context.Context, dev *otos.Device) error {
		if err := dev.SetLinearScalar(ctx, linear); err != nil {
			return err
		}
		if err := dev.SetAngularScalar(ctx, angular); err != nil {
			return err
		}
		logger.Infow("scaling corrections set", "linear", linear, "angular", angular)
		return nil
	})
}

func parseFloat(s string, out *float64) error {
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return err
	}
	*out = v
	return nil
}

func trackAction(c *cli.Context) error {
	interval := c.Duration("interval")
	return withDevice(c, func(ctx context.Context, dev *otos.Device) error {
		for {
			if !goutils.SelectContextOrWait(ctx, interval) {
				return ctx.Err()
			}
			pos, vel, acc, err := dev.PosVelAcc(ctx)
			if err != nil {
				logger.Errorw("failed to read sensor", "error", err)
				continue
			}
			logger.Infow("tracking",
				"x", pos.X, "y", pos.Y, "heading", pos.H,
				"vx", vel.X, "vy", vel.Y, "vh", vel.H,
				"ax", acc.X, "ay", acc.Y, "ah", acc.H,
			)
		}
	})
}
