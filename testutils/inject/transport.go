// Package inject provides injectable fakes of the hardware capabilities the
// driver depends on. Each fake embeds the real interface and overrides a
// method only when the matching Func field is set, so unmocked calls fall
// through (and panic when there is nothing to fall through to), flagging
// holes in a test's setup.
package inject

import (
	"context"

	"periph.io/x/conn/v3/physic"

	"github.com/viam-labs/qwiic-otos/otosbus"
)

// Transport is an injected otosbus.Transport.
type Transport struct {
	otosbus.Transport
	InitFunc   func(busFreq physic.Frequency) error
	DeinitFunc func() error
	TxFunc     func(ctx context.Context, addr byte, w []byte, hold bool) (int, error)
	RxFunc     func(ctx context.Context, addr byte, r []byte, hold bool) (int, error)
}

// Init calls the injected Init or the real version.
func (t *Transport) Init(busFreq physic.Frequency) error {
	if t.InitFunc == nil {
		return t.Transport.Init(busFreq)
	}
	return t.InitFunc(busFreq)
}

// Deinit calls the injected Deinit or the real version.
func (t *Transport) Deinit() error {
	if t.DeinitFunc == nil {
		return t.Transport.Deinit()
	}
	return t.DeinitFunc()
}

// Tx calls the injected Tx or the real version.
func (t *Transport) Tx(ctx context.Context, addr byte, w []byte, hold bool) (int, error) {
	if t.TxFunc == nil {
		return t.Transport.Tx(ctx, addr, w, hold)
	}
	return t.TxFunc(ctx, addr, w, hold)
}

// Rx calls the injected Rx or the real version.
func (t *Transport) Rx(ctx context.Context, addr byte, r []byte, hold bool) (int, error) {
	if t.RxFunc == nil {
		return t.Transport.Rx(ctx, addr, r, hold)
	}
	return t.RxFunc(ctx, addr, r, hold)
}
