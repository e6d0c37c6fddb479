package otosbus

import (
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"periph.io/x/conn/v3/gpio"
)

const (
	recoveryClocks = 9
	recoveryTick   = 5 * time.Microsecond
)

// Recover clocks SCL up to nine times while watching for the device to
// release SDA, then drives an explicit stop condition. This is a best-effort
// unstick of a bus a misbehaving party left mid-transaction; it reports pin
// trouble but not whether the bus actually came free, so callers should probe
// the device afterward.
func Recover(sda, scl gpio.PinIO, clk clock.Clock) error {
	if sda == nil || scl == nil {
		return errors.New("bus recovery requires both bus pins")
	}
	if clk == nil {
		clk = clock.New()
	}

	// Watch SDA while clocking SCL by hand.
	if err := sda.In(gpio.PullUp, gpio.NoEdge); err != nil {
		return errors.Wrap(err, "claiming data pin")
	}
	if err := scl.Out(gpio.High); err != nil {
		return errors.Wrap(err, "claiming clock pin")
	}
	for i := 0; i < recoveryClocks; i++ {
		if err := pulse(scl, clk); err != nil {
			return err
		}
		// A high data line means the device let go of the bus.
		if sda.Read() == gpio.High {
			break
		}
	}

	// End any half-finished transaction with an explicit stop condition:
	// data low to high while the clock is high.
	stop := []struct {
		pin   gpio.PinIO
		level gpio.Level
	}{
		{scl, gpio.Low},
		{sda, gpio.Low},
		{scl, gpio.High},
		{sda, gpio.High},
	}
	for _, s := range stop {
		if err := s.pin.Out(s.level); err != nil {
			return errors.Wrap(err, "driving stop condition")
		}
		clk.Sleep(recoveryTick)
	}
	return nil
}

func pulse(scl gpio.PinIO, clk clock.Clock) error {
	if err := scl.Out(gpio.Low); err != nil {
		return errors.Wrap(err, "clocking bus")
	}
	clk.Sleep(recoveryTick)
	if err := scl.Out(gpio.High); err != nil {
		return errors.Wrap(err, "clocking bus")
	}
	clk.Sleep(recoveryTick)
	return nil
}
