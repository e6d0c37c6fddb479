package otosbus

import (
	"context"

	"periph.io/x/conn/v3/physic"
)

// Transport is the set of blocking controller primitives the transaction
// layer runs on. Implementations are synchronous: every call returns only
// once the transfer has completed or failed.
type Transport interface {
	// Init brings the controller up at the given bus clock and assigns the
	// bus pins to their bus function with pull-ups enabled.
	Init(busFreq physic.Frequency) error

	// Deinit releases the controller.
	Deinit() error

	// Tx writes w to the 7-bit address addr and returns how many bytes the
	// device accepted. With hold set the bus stays claimed for a following
	// transfer instead of ending with a stop condition.
	Tx(ctx context.Context, addr byte, w []byte, hold bool) (int, error)

	// Rx reads len(r) bytes from addr into r and returns how many bytes
	// arrived. hold keeps the bus claimed as in Tx.
	Rx(ctx context.Context, addr byte, r []byte, hold bool) (int, error)
}
